package spotweb

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"bindery/internal/config"
)

func testConfig(baseURL string) config.Spotweb {
	return config.Spotweb{
		BaseURL:        baseURL,
		APIKey:         "key",
		Category:       "7020",
		TimeoutSeconds: 5,
	}
}

func feedWith(items string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel>` + items + `</channel></rss>`
}

func TestSearchReturnsFirstMatch(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if got := r.URL.Query().Get("apikey"); got != "key" {
			t.Errorf("apikey = %q", got)
		}
		if got := r.URL.Query().Get("t"); got != "search" {
			t.Errorf("t = %q", got)
		}
		fmt.Fprint(w, feedWith(`
<item>
  <title>Horst Fjell - De schreeuw (2024) EPUB</title>
  <enclosure url="https://indexer.test/get/abc" type="application/x-nzb"/>
</item>`))
	}))
	defer server.Close()

	client := New(testConfig(server.URL), nil)
	release, err := client.Search(context.Background(), "Horst Fjell", "De schreeuw")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if release == nil {
		t.Fatal("expected a match")
	}
	if release.NzbURL != "https://indexer.test/get/abc" {
		t.Errorf("nzb url = %q", release.NzbURL)
	}
	if requests.Load() != 1 {
		t.Errorf("expected first variant to match, got %d requests", requests.Load())
	}
}

func TestSearchTriesVariantsInOrder(t *testing.T) {
	var requests []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		requests = append(requests, q)
		if len(requests) < 3 {
			fmt.Fprint(w, feedWith(""))
			return
		}
		fmt.Fprint(w, feedWith(`
<item>
  <title>De schreeuw - Horst Fjell [NL] epub</title>
  <enclosure url="https://indexer.test/get/xyz"/>
</item>`))
	}))
	defer server.Close()

	client := New(testConfig(server.URL), nil)
	release, err := client.Search(context.Background(), "Horst Fjell", "De schreeuw")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if release == nil {
		t.Fatal("expected a match on third variant")
	}
	if requests[0] != "Horst Fjell De schreeuw" {
		t.Errorf("first variant = %q", requests[0])
	}
	if requests[1] != "De schreeuw Horst Fjell" {
		t.Errorf("second variant = %q", requests[1])
	}
}

func TestSearchNotFoundIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feedWith(""))
	}))
	defer server.Close()

	client := New(testConfig(server.URL), nil)
	release, err := client.Search(context.Background(), "Horst Fjell", "De schreeuw")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if release != nil {
		t.Fatalf("expected no match, got %+v", release)
	}
}

func TestSearchSkipsNonMatchingReleases(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feedWith(`
<item>
  <title>Completely Different Book</title>
  <enclosure url="https://indexer.test/get/nope"/>
</item>`))
	}))
	defer server.Close()

	client := New(testConfig(server.URL), nil)
	release, err := client.Search(context.Background(), "Horst Fjell", "De schreeuw")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if release != nil {
		t.Fatalf("matcher accepted wrong release: %+v", release)
	}
}

func TestSearchAllVariantsFailingYieldsNotFound(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(testConfig(server.URL), nil)
	release, err := client.Search(context.Background(), "Horst Fjell", "De schreeuw")
	if err != nil {
		t.Fatalf("variant failures must not surface as errors: %v", err)
	}
	if release != nil {
		t.Fatalf("unexpected release: %+v", release)
	}
	if requests.Load() < 2 {
		t.Errorf("remaining variants not attempted after failure: %d requests", requests.Load())
	}
}

func TestSearchToleratesMalformedFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<rss><channel><item><title>Broken & entity`)
	}))
	defer server.Close()

	client := New(testConfig(server.URL), nil)
	release, err := client.Search(context.Background(), "Horst Fjell", "De schreeuw")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if release != nil {
		t.Fatalf("unexpected match from malformed feed: %+v", release)
	}
}

func TestSearchSkipsItemsWithoutEnclosure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, feedWith(`
<item>
  <title>Horst Fjell - De schreeuw</title>
  <link>https://indexer.test/details/abc</link>
</item>
<item>
  <title>Horst Fjell - De schreeuw EPUB</title>
  <enclosure url="https://indexer.test/get/real.nzb"/>
</item>`))
	}))
	defer server.Close()

	client := New(testConfig(server.URL), nil)
	release, err := client.Search(context.Background(), "Horst Fjell", "De schreeuw")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if release == nil {
		t.Fatal("expected the item with an enclosure to match")
	}
	if release.NzbURL != "https://indexer.test/get/real.nzb" {
		t.Errorf("a link is not a download descriptor; nzb url = %q", release.NzbURL)
	}
}
