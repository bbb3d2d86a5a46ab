package sabnzbd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bindery/internal/config"
	"bindery/internal/services"
)

// Submitter hands a release off to the download manager.
type Submitter interface {
	Submit(ctx context.Context, nzbURL, jobName string) error
}

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client submits NZB links to a SABnzbd instance.
type Client struct {
	baseURL  string
	apiKey   string
	category string
	http     HTTPDoer
}

// New constructs a submission client from configuration.
func New(cfg config.Sabnzbd) *Client {
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		category: cfg.Category,
		http:     &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
	}
}

// NewWithDoer constructs a client with a custom HTTP backend.
func NewWithDoer(cfg config.Sabnzbd, doer HTTPDoer) *Client {
	client := New(cfg)
	client.http = doer
	return client
}

type addResponse struct {
	Status bool     `json:"status"`
	NzoIDs []string `json:"nzo_ids"`
	Error  string   `json:"error"`
}

// Submit queues the NZB at nzbURL for download under jobName. Acceptance is
// recognized when the response reports a truthy status or at least one
// queue id; SABnzbd versions differ on which field they populate.
func (c *Client) Submit(ctx context.Context, nzbURL, jobName string) error {
	nzbURL = strings.TrimSpace(nzbURL)
	if nzbURL == "" {
		return services.Wrap(services.ErrValidation, "sabnzbd", "submit", "empty nzb url", nil)
	}

	params := url.Values{}
	params.Set("mode", "addurl")
	params.Set("name", nzbURL)
	if jobName = strings.TrimSpace(jobName); jobName != "" {
		params.Set("nzbname", jobName)
	}
	params.Set("apikey", c.apiKey)
	params.Set("output", "json")
	if c.category != "" {
		params.Set("cat", c.category)
	}

	endpoint := c.baseURL + "/api?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return services.Wrap(services.ErrValidation, "sabnzbd", "submit", "build request", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "sabnzbd", "submit", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrTransient, "sabnzbd", "submit", fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return services.Wrap(services.ErrTransient, "sabnzbd", "submit", "read response", err)
	}

	var parsed addResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return services.Wrap(services.ErrTransient, "sabnzbd", "submit", "decode response", err)
	}

	if parsed.Status || len(parsed.NzoIDs) > 0 {
		return nil
	}

	message := strings.TrimSpace(parsed.Error)
	if message == "" {
		message = "download manager rejected the nzb"
	}
	return services.Wrap(services.ErrTransient, "sabnzbd", "submit", message, nil)
}
