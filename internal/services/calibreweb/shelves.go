package calibreweb

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"bindery/internal/services"
	"bindery/internal/textutil"
)

var (
	shelfLinkPattern = regexp.MustCompile(`(?s)href="[^"]*/shelf/(\d+)"[^>]*>(.*?)</a>`)
	tagPattern       = regexp.MustCompile(`<[^>]*>`)
	wsPattern        = regexp.MustCompile(`\s+`)
)

// Shelves returns the catalog's shelf list. Results are cached; a fetch only
// happens when the cache has expired.
func (c *Client) Shelves(ctx context.Context) ([]Shelf, error) {
	if err := c.ensureSession(ctx); err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.shelves != nil && c.now().Sub(c.shelvesFetched) < c.shelfTTL {
		cached := make([]Shelf, len(c.shelves))
		copy(cached, c.shelves)
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	body, err := c.fetchWithRetry(ctx, "/")
	if err != nil {
		return nil, err
	}

	shelves := parseShelves(body)

	c.mu.Lock()
	c.shelves = shelves
	c.shelvesFetched = c.now()
	c.mu.Unlock()

	result := make([]Shelf, len(shelves))
	copy(result, shelves)
	return result, nil
}

// fetchWithRetry fetches a session page, refreshing the login once when the
// session has expired server-side.
func (c *Client) fetchWithRetry(ctx context.Context, path string) (string, error) {
	body, err := c.fetchPage(ctx, path)
	if err == nil {
		return body, nil
	}
	if !errors.Is(err, services.ErrAuth) {
		return "", err
	}
	c.Invalidate()
	if err := c.ensureSession(ctx); err != nil {
		return "", err
	}
	return c.fetchPage(ctx, path)
}

func parseShelves(body string) []Shelf {
	matches := shelfLinkPattern.FindAllStringSubmatch(body, -1)
	seen := make(map[int64]struct{}, len(matches))
	shelves := make([]Shelf, 0, len(matches))
	for _, match := range matches {
		id, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil {
			continue
		}
		name := cleanShelfName(match[2])
		if name == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		shelves = append(shelves, Shelf{ID: id, Name: name})
	}
	// Document order is preserved; fuzzy resolution prefers earlier shelves.
	return shelves
}

func cleanShelfName(raw string) string {
	name := tagPattern.ReplaceAllString(raw, " ")
	name = html.UnescapeString(name)
	name = wsPattern.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

// ResolveShelf finds the shelf best matching a requested name. Matching is
// case and accent insensitive, tried in order of decreasing strictness:
// exact name, then name prefix, then all requested words appearing in the
// shelf name. A nil shelf with nil error means nothing matched.
func (c *Client) ResolveShelf(ctx context.Context, name string) (*Shelf, error) {
	wanted := foldName(name)
	if wanted == "" {
		return nil, nil
	}

	shelves, err := c.Shelves(ctx)
	if err != nil {
		return nil, err
	}

	for _, shelf := range shelves {
		if foldName(shelf.Name) == wanted {
			match := shelf
			return &match, nil
		}
	}

	for _, shelf := range shelves {
		if strings.HasPrefix(foldName(shelf.Name), wanted) {
			match := shelf
			return &match, nil
		}
	}

	wantedWords := strings.Fields(wanted)
	for _, shelf := range shelves {
		haystack := foldName(shelf.Name)
		all := true
		for _, word := range wantedWords {
			if !strings.Contains(haystack, word) {
				all = false
				break
			}
		}
		if all {
			match := shelf
			return &match, nil
		}
	}

	return nil, nil
}

func foldName(name string) string {
	return strings.ToLower(strings.TrimSpace(textutil.FoldAccents(name)))
}

// AddToShelf places a book on a shelf. Calibre-Web versions differ in where
// they expect the CSRF token, so the token is offered as a form field with
// header, form field alone, header alone, and finally a bare POST.
func (c *Client) AddToShelf(ctx context.Context, bookID, shelfID int64) error {
	if err := c.ensureSession(ctx); err != nil {
		return err
	}

	err := c.addToShelfOnce(ctx, bookID, shelfID)
	if err == nil || !errors.Is(err, services.ErrAuth) {
		return err
	}
	c.Invalidate()
	if err := c.ensureSession(ctx); err != nil {
		return err
	}
	return c.addToShelfOnce(ctx, bookID, shelfID)
}

func (c *Client) addToShelfOnce(ctx context.Context, bookID, shelfID int64) error {
	token, err := c.csrfTokenForBook(ctx, bookID)
	if err != nil {
		return err
	}

	path := fmt.Sprintf("/shelf/add/%d/%d", shelfID, bookID)

	type strategy struct {
		form   bool
		header bool
	}
	strategies := []strategy{
		{form: true, header: true},
		{form: true},
		{header: true},
		{},
	}

	var lastErr error
	for _, strat := range strategies {
		if (strat.form || strat.header) && token == "" {
			continue
		}

		var body io.Reader
		if strat.form {
			form := url.Values{}
			form.Set("csrf_token", token)
			body = strings.NewReader(form.Encode())
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
		if err != nil {
			return services.Wrap(services.ErrValidation, "calibreweb", "add to shelf", "build request", err)
		}
		if strat.form {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
		if strat.header {
			req.Header.Set("X-CSRFToken", token)
		}

		resp, err := c.session.Do(req)
		if err != nil {
			c.Invalidate()
			return services.Wrap(services.ErrTransient, "calibreweb", "add to shelf", "request failed", err)
		}
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNoContent:
			return nil
		case isRedirect(resp.StatusCode):
			if strings.Contains(resp.Header.Get("Location"), "login") {
				return services.Wrap(services.ErrAuth, "calibreweb", "add to shelf", "session expired", nil)
			}
			return nil
		case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusForbidden:
			lastErr = services.Wrap(services.ErrTransient, "calibreweb", "add to shelf", fmt.Sprintf("rejected with status %d", resp.StatusCode), nil)
			continue
		default:
			return services.Wrap(services.ErrTransient, "calibreweb", "add to shelf", fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
		}
	}
	if lastErr == nil {
		lastErr = services.Wrap(services.ErrTransient, "calibreweb", "add to shelf", "no csrf strategy accepted", nil)
	}
	return lastErr
}

// csrfTokenForBook harvests a CSRF token from the book's detail page, where
// the shelf form lives, falling back to the catalog root. An expired
// session surfaces as an auth error so the caller can re-login.
func (c *Client) csrfTokenForBook(ctx context.Context, bookID int64) (string, error) {
	page, err := c.fetchPage(ctx, fmt.Sprintf("/book/%d", bookID))
	if err != nil {
		if errors.Is(err, services.ErrAuth) {
			return "", err
		}
	} else if token := extractCSRFToken(page); token != "" {
		return token, nil
	}

	page, err = c.fetchPage(ctx, "/")
	if err != nil {
		return "", err
	}
	return extractCSRFToken(page), nil
}
