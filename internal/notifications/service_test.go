package notifications_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"bindery/internal/notifications"
	"bindery/internal/testsupport"
)

type captured struct {
	title    string
	tags     string
	priority string
	body     string
}

func newCaptureServer(t *testing.T, out *captured) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		out.title = r.Header.Get("Title")
		out.tags = r.Header.Get("Tags")
		out.priority = r.Header.Get("Priority")
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		out.body = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(cfg)
	if err := svc.NotifyBookFound(context.Background(), "Horst Fjell", "De schreeuw"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNotifyBookFound(t *testing.T) {
	var got captured
	server := newCaptureServer(t, &got)

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = server.URL

	svc := notifications.NewService(cfg)
	if err := svc.NotifyBookFound(context.Background(), "Horst Fjell", "De schreeuw"); err != nil {
		t.Fatalf("notification returned error: %v", err)
	}
	if got.title != "Bindery - Found" {
		t.Errorf("title = %q", got.title)
	}
	if got.body != "Download queued: Horst Fjell - De schreeuw" {
		t.Errorf("body = %q", got.body)
	}
	if got.tags != "bindery,search,found" {
		t.Errorf("tags = %q", got.tags)
	}
}

func TestNotifyBookShelvedIncludesShelf(t *testing.T) {
	var got captured
	server := newCaptureServer(t, &got)

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = server.URL

	svc := notifications.NewService(cfg)
	if err := svc.NotifyBookShelved(context.Background(), "Horst Fjell", "De schreeuw", "Thrillers"); err != nil {
		t.Fatalf("notification returned error: %v", err)
	}
	if got.body != "On the shelf: Horst Fjell - De schreeuw\nShelf: Thrillers" {
		t.Errorf("body = %q", got.body)
	}
	if got.priority != "high" {
		t.Errorf("priority = %q", got.priority)
	}
}

func TestDisabledEventsAreSkipped(t *testing.T) {
	var got captured
	server := newCaptureServer(t, &got)

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Found = false

	svc := notifications.NewService(cfg)
	if err := svc.NotifyBookFound(context.Background(), "Horst Fjell", "De schreeuw"); err != nil {
		t.Fatalf("notification returned error: %v", err)
	}
	if got.title != "" {
		t.Errorf("disabled event reached the server: %+v", got)
	}
}

func TestServerErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic limit", http.StatusTooManyRequests)
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = server.URL

	svc := notifications.NewService(cfg)
	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error for HTTP 429")
	}
}
