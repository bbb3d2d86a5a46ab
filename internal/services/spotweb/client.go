package spotweb

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bindery/internal/config"
	"bindery/internal/logging"
	"bindery/internal/matching"
	"bindery/internal/services"
)

// Release is a single result returned by the indexing service.
type Release struct {
	Title  string
	NzbURL string
}

// Searcher finds a downloadable release for a wishlist entry.
type Searcher interface {
	Search(ctx context.Context, author, title string) (*Release, error)
}

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client queries a Newznab-compatible API over HTTP.
type Client struct {
	baseURL  string
	apiKey   string
	category string
	limit    int
	http     HTTPDoer
	logger   *slog.Logger
}

// New constructs a search client from configuration.
func New(cfg config.Spotweb, logger *slog.Logger) *Client {
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		category: cfg.Category,
		limit:    25,
		http:     &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		logger:   logging.NewComponentLogger(logger, "spotweb"),
	}
}

// NewWithDoer constructs a client with a custom HTTP backend.
func NewWithDoer(cfg config.Spotweb, logger *slog.Logger, doer HTTPDoer) *Client {
	client := New(cfg, logger)
	client.http = doer
	return client
}

// Search runs every query variant for the author and title in order and
// returns the first release whose title matches. A nil release with a nil
// error means no variant produced a match. A failure on one variant is
// logged and the remaining variants still run; not found is the expected
// common outcome even when every variant errored.
func (c *Client) Search(ctx context.Context, author, title string) (*Release, error) {
	variants := matching.Variants(author, title)
	if len(variants) == 0 {
		return nil, services.Wrap(services.ErrValidation, "spotweb", "search", "no usable query terms", nil)
	}

	for _, variant := range variants {
		releases, err := c.query(ctx, variant)
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			c.logger.Warn("search variant failed",
				logging.String("variant", variant),
				logging.Error(err),
			)
			continue
		}
		for _, release := range releases {
			if matching.Matches(author, title, release.Title) {
				found := release
				return &found, nil
			}
		}
	}
	return nil, nil
}

func (c *Client) query(ctx context.Context, term string) ([]Release, error) {
	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("t", "search")
	params.Set("extended", "1")
	params.Set("q", term)
	if c.category != "" {
		params.Set("cat", c.category)
	}
	params.Set("limit", fmt.Sprintf("%d", c.limit))

	endpoint := c.baseURL + "/api?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "spotweb", "search", "build request", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "spotweb", "search", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrTransient, "spotweb", "search", fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "spotweb", "search", "read response", err)
	}

	return parseFeed(body)
}

type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title     string `xml:"title"`
	Enclosure struct {
		URL string `xml:"url,attr"`
	} `xml:"enclosure"`
}

// parseFeed decodes a Newznab RSS response. Real-world feeds frequently
// carry undeclared entities and stray markup, so decoding is lenient and a
// completely unparsable body is treated as an empty result rather than a
// failure. Items without an enclosure URL have no download descriptor and
// are skipped.
func parseFeed(body []byte) ([]Release, error) {
	decoder := xml.NewDecoder(strings.NewReader(string(body)))
	decoder.Strict = false

	var feed rssFeed
	if err := decoder.Decode(&feed); err != nil {
		return nil, nil
	}

	releases := make([]Release, 0, len(feed.Channel.Items))
	for _, item := range feed.Channel.Items {
		title := strings.TrimSpace(item.Title)
		nzbURL := strings.TrimSpace(item.Enclosure.URL)
		if title == "" || nzbURL == "" {
			continue
		}
		releases = append(releases, Release{Title: title, NzbURL: nzbURL})
	}
	return releases, nil
}
