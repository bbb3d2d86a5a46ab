package calibreweb

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"bindery/internal/config"
	"bindery/internal/services"
)

// Shelf is a named collection in the catalog.
type Shelf struct {
	ID   int64
	Name string
}

// Book is a catalog entry located through OPDS search.
type Book struct {
	ID     int64
	Title  string
	Author string
}

// Catalog describes the operations the import sweep needs from the library.
type Catalog interface {
	FindBook(ctx context.Context, author, title string) (*Book, error)
	ResolveShelf(ctx context.Context, name string) (*Shelf, error)
	Shelves(ctx context.Context) ([]Shelf, error)
	AddToShelf(ctx context.Context, bookID, shelfID int64) error
}

// Client maintains an authenticated Calibre-Web session. Form endpoints go
// through a cookie-backed session with CSRF tokens; OPDS search uses basic
// auth and needs no session.
type Client struct {
	baseURL       string
	username      string
	password      string
	timeout       time.Duration
	searchTimeout time.Duration

	mu             sync.Mutex
	session        *http.Client
	loggedIn       bool
	shelves        []Shelf
	shelvesFetched time.Time
	shelfTTL       time.Duration

	opds HTTPDoer
	now  func() time.Time
}

// HTTPDoer abstracts http.Client.Do for testing.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// New constructs a catalog client from configuration.
func New(cfg config.Calibreweb) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	searchTimeout := time.Duration(cfg.SearchTimeoutSeconds) * time.Second
	if searchTimeout <= 0 {
		searchTimeout = timeout
	}
	client := &Client{
		baseURL:       strings.TrimRight(cfg.URL, "/"),
		username:      cfg.Username,
		password:      cfg.Password,
		timeout:       timeout,
		searchTimeout: searchTimeout,
		shelfTTL:      time.Duration(cfg.ShelfCacheTTLSeconds) * time.Second,
		opds:          &http.Client{Timeout: searchTimeout},
		now:           time.Now,
	}
	client.resetSession()
	return client
}

// resetSession replaces the cookie jar so stale session cookies cannot leak
// into the next login attempt. Callers hold c.mu.
func (c *Client) resetSession() {
	jar, _ := cookiejar.New(nil)
	c.session = &http.Client{
		Timeout: c.timeout,
		Jar:     jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	c.loggedIn = false
}

// Invalidate drops the current session so the next call logs in again.
// Called after transport failures, where the server side of the session is
// in an unknown state.
func (c *Client) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetSession()
}

func (c *Client) ensureSession(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loggedIn {
		return nil
	}
	return c.loginLocked(ctx)
}

func (c *Client) loginLocked(ctx context.Context) error {
	c.resetSession()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/login", nil)
	if err != nil {
		return services.Wrap(services.ErrValidation, "calibreweb", "login", "build request", err)
	}
	resp, err := c.session.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "calibreweb", "login", "fetch login page", err)
	}
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	resp.Body.Close()
	if readErr != nil {
		return services.Wrap(services.ErrTransient, "calibreweb", "login", "read login page", readErr)
	}
	if resp.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrTransient, "calibreweb", "login", fmt.Sprintf("login page status %d", resp.StatusCode), nil)
	}

	form := url.Values{}
	form.Set("username", c.username)
	form.Set("password", c.password)
	form.Set("submit", "")
	form.Set("next", "/")
	if token := extractCSRFToken(string(body)); token != "" {
		form.Set("csrf_token", token)
	}

	postReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", strings.NewReader(form.Encode()))
	if err != nil {
		return services.Wrap(services.ErrValidation, "calibreweb", "login", "build request", err)
	}
	postReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	postResp, err := c.session.Do(postReq)
	if err != nil {
		return services.Wrap(services.ErrTransient, "calibreweb", "login", "submit credentials", err)
	}
	io.Copy(io.Discard, io.LimitReader(postResp.Body, 1<<20))
	postResp.Body.Close()

	// A successful login redirects away from the login form. A 200 means
	// the form was re-rendered with an error.
	switch postResp.StatusCode {
	case http.StatusFound, http.StatusSeeOther, http.StatusMovedPermanently:
		location := postResp.Header.Get("Location")
		if strings.Contains(location, "login") {
			return services.Wrap(services.ErrAuth, "calibreweb", "login", "credentials rejected", nil)
		}
		c.loggedIn = true
		return nil
	case http.StatusOK:
		return services.Wrap(services.ErrAuth, "calibreweb", "login", "credentials rejected", nil)
	default:
		return services.Wrap(services.ErrTransient, "calibreweb", "login", fmt.Sprintf("unexpected status %d", postResp.StatusCode), nil)
	}
}

// csrfPatterns cover the token markup variants seen across Calibre-Web
// releases: double-quoted and single-quoted form inputs, a meta tag, and a
// value-first attribute ordering.
var csrfPatterns = []*regexp.Regexp{
	regexp.MustCompile(`name="csrf_token"[^>]*value="([^"]+)"`),
	regexp.MustCompile(`name='csrf_token'[^>]*value='([^']+)'`),
	regexp.MustCompile(`<meta[^>]+name="csrf-token"[^>]+content="([^"]+)"`),
	regexp.MustCompile(`value="([^"]+)"[^>]*name="csrf_token"`),
}

func extractCSRFToken(body string) string {
	for _, pattern := range csrfPatterns {
		if match := pattern.FindStringSubmatch(body); match != nil {
			return match[1]
		}
	}
	return ""
}

// fetchPage GETs a session page and returns its body. A redirect to the
// login form reports ErrAuth so callers can refresh the session and retry.
func (c *Client) fetchPage(ctx context.Context, path string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "calibreweb", "fetch", "build request", err)
	}
	resp, err := c.session.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "calibreweb", "fetch", "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		if readErr != nil {
			return "", services.Wrap(services.ErrTransient, "calibreweb", "fetch", "read response", readErr)
		}
		return string(body), nil
	case isRedirect(resp.StatusCode) && strings.Contains(resp.Header.Get("Location"), "login"):
		return "", services.Wrap(services.ErrAuth, "calibreweb", "fetch", "session expired", nil)
	default:
		return "", services.Wrap(services.ErrTransient, "calibreweb", "fetch", fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther, http.StatusTemporaryRedirect:
		return true
	default:
		return false
	}
}
