package calibreweb

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"bindery/internal/services"
	"bindery/internal/textutil"
)

type opdsFeed struct {
	Entries []opdsEntry `xml:"entry"`
}

type opdsEntry struct {
	Title  string `xml:"title"`
	Author struct {
		Name string `xml:"name"`
	} `xml:"author"`
	Links []struct {
		Href string `xml:"href,attr"`
	} `xml:"link"`
	ID string `xml:"id"`
}

// bookIDPatterns extract the numeric book identifier from OPDS entry links.
// Cover and download links carry it directly; some feeds only expose the web
// UI book page.
var bookIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/opds/cover/(\d+)`),
	regexp.MustCompile(`/opds/download/(\d+)`),
	regexp.MustCompile(`/book/(\d+)`),
}

// FindBook searches the catalog for a finished import. The title alone is
// the best OPDS query; when it returns no entries at all the combined author
// and title and then the bare author are tried. The first query yielding any
// entries decides the outcome. Catalog entries carry accents inconsistently,
// so both sides are folded before matching. A nil book with nil error means
// the book has not appeared in the catalog yet.
func (c *Client) FindBook(ctx context.Context, author, title string) (*Book, error) {
	authorTokens := textutil.Tokenize(textutil.FoldAccents(author))
	titleTokens := textutil.Tokenize(textutil.FoldAccents(title))
	queries := []string{title, author + " " + title, author}
	seen := make(map[string]struct{}, len(queries))

	for _, query := range queries {
		query = strings.TrimSpace(query)
		if query == "" {
			continue
		}
		key := strings.ToLower(query)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		entries, err := c.searchOPDS(ctx, query)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			continue
		}
		for _, entry := range entries {
			entryTitle := strings.TrimSpace(entry.Title)
			entryAuthor := strings.TrimSpace(entry.Author.Name)
			if !entryMatches(authorTokens, titleTokens, entryTitle+" "+entryAuthor) {
				continue
			}
			id, ok := extractBookID(entry)
			if !ok {
				continue
			}
			return &Book{ID: id, Title: entryTitle, Author: entryAuthor}, nil
		}
		return nil, nil
	}
	return nil, nil
}

// entryMatches accepts a catalog entry when at least one author token and
// one title token appear in the entry text. A long request title often maps
// to a shorter canonical catalog title, so a single shared title token is
// enough here.
func entryMatches(authorTokens, titleTokens []string, entryText string) bool {
	entrySet := textutil.TokenSet(textutil.FoldAccents(entryText))

	authorOK := false
	for _, token := range authorTokens {
		if _, ok := entrySet[token]; ok {
			authorOK = true
			break
		}
	}
	if !authorOK {
		return false
	}
	for _, token := range titleTokens {
		if _, ok := entrySet[token]; ok {
			return true
		}
	}
	return false
}

func (c *Client) searchOPDS(ctx context.Context, query string) ([]opdsEntry, error) {
	endpoint := c.baseURL + "/opds/search?query=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "calibreweb", "opds search", "build request", err)
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.opds.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "calibreweb", "opds search", "request failed", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, services.Wrap(services.ErrAuth, "calibreweb", "opds search", "credentials rejected", nil)
	default:
		return nil, services.Wrap(services.ErrTransient, "calibreweb", "opds search", fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "calibreweb", "opds search", "read response", err)
	}

	decoder := xml.NewDecoder(strings.NewReader(string(body)))
	decoder.Strict = false

	var feed opdsFeed
	if err := decoder.Decode(&feed); err != nil {
		return nil, nil
	}
	return feed.Entries, nil
}

func extractBookID(entry opdsEntry) (int64, bool) {
	candidates := make([]string, 0, len(entry.Links)+1)
	for _, link := range entry.Links {
		candidates = append(candidates, link.Href)
	}
	candidates = append(candidates, entry.ID)

	for _, pattern := range bookIDPatterns {
		for _, candidate := range candidates {
			if match := pattern.FindStringSubmatch(candidate); match != nil {
				id, err := strconv.ParseInt(match[1], 10, 64)
				if err == nil {
					return id, true
				}
			}
		}
	}
	return 0, false
}
