package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bindery/internal/config"
)

const userAgent = "Bindery/0.1.0"

// Service defines the notification surface exposed to workflow components.
type Service interface {
	NotifyBookFound(ctx context.Context, author, title string) error
	NotifyBookShelved(ctx context.Context, author, title, shelf string) error
	NotifyItemFailed(ctx context.Context, author, title, reason string) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	endpoint := topic
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://ntfy.sh/" + endpoint
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:    endpoint,
		client:      &http.Client{Timeout: timeout},
		sendFound:   cfg.Notifications.Found,
		sendShelved: cfg.Notifications.Shelved,
		sendErrors:  cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint    string
	client      *http.Client
	sendFound   bool
	sendShelved bool
	sendErrors  bool
}

func (n *ntfyService) NotifyBookFound(ctx context.Context, author, title string) error {
	if !n.sendFound {
		return nil
	}
	data := payload{
		title:   "Bindery - Found",
		message: fmt.Sprintf("Download queued: %s - %s", strings.TrimSpace(author), strings.TrimSpace(title)),
		tags:    []string{"bindery", "search", "found"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyBookShelved(ctx context.Context, author, title, shelf string) error {
	if !n.sendShelved {
		return nil
	}
	message := fmt.Sprintf("On the shelf: %s - %s", strings.TrimSpace(author), strings.TrimSpace(title))
	if shelf = strings.TrimSpace(shelf); shelf != "" {
		message = fmt.Sprintf("%s\nShelf: %s", message, shelf)
	}
	data := payload{
		title:    "Bindery - Shelved",
		message:  message,
		tags:     []string{"bindery", "import", "shelved"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyItemFailed(ctx context.Context, author, title, reason string) error {
	if !n.sendErrors {
		return nil
	}
	message := fmt.Sprintf("Gave up on: %s - %s", strings.TrimSpace(author), strings.TrimSpace(title))
	if reason = strings.TrimSpace(reason); reason != "" {
		message = fmt.Sprintf("%s\nReason: %s", message, reason)
	}
	data := payload{
		title:    "Bindery - Failed",
		message:  message,
		tags:     []string{"bindery", "error", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.sendErrors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Bindery - Error",
		message:  builder.String(),
		tags:     []string{"bindery", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Bindery - Test",
		message:  "Notification system test",
		tags:     []string{"bindery", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyBookFound(context.Context, string, string) error { return nil }

func (noopService) NotifyBookShelved(context.Context, string, string, string) error { return nil }

func (noopService) NotifyItemFailed(context.Context, string, string, string) error { return nil }

func (noopService) NotifyError(context.Context, error, string) error { return nil }

func (noopService) TestNotification(context.Context) error { return nil }
