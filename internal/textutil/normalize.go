package textutil

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Stop-words dropped during tokenization. Dutch plus English; the wishlist
// corpus is predominantly Dutch with English titles mixed in.
var stopWords = map[string]struct{}{
	"de": {}, "het": {}, "een": {}, "van": {}, "en": {}, "der": {}, "den": {},
	"te": {}, "in": {}, "op": {}, "voor": {}, "met": {}, "aan": {}, "bij": {}, "uit": {},
	"the": {}, "a": {}, "an": {}, "of": {}, "and": {}, "to": {}, "on": {}, "for": {}, "with": {},
}

var (
	dashReplacer    = strings.NewReplacer("–", "-", "—", "-")
	strippedPattern = regexp.MustCompile(`[^a-z0-9\x{00e0}-\x{00ff}\s-]`)
	spacePattern    = regexp.MustCompile(`\s+`)
)

// Normalize lowercases text, folds en/em dashes to hyphens, strips characters
// outside the lowercase-latin/digit/accented range, and collapses whitespace.
func Normalize(text string) string {
	s := strings.ToLower(text)
	s = dashReplacer.Replace(s)
	s = strippedPattern.ReplaceAllString(s, " ")
	s = spacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Tokenize normalizes text and splits it into tokens on whitespace and
// hyphens, dropping single-character tokens and stop-words.
func Tokenize(text string) []string {
	normalized := strings.ReplaceAll(Normalize(text), "-", " ")
	parts := strings.Fields(normalized)
	tokens := make([]string, 0, len(parts))
	for _, part := range parts {
		if utf8.RuneCountInString(part) <= 1 {
			continue
		}
		if _, stop := stopWords[part]; stop {
			continue
		}
		tokens = append(tokens, part)
	}
	return tokens
}

// TokenSet returns the tokens of text as a membership set.
func TokenSet(text string) map[string]struct{} {
	tokens := Tokenize(text)
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	return set
}

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldAccents removes diacritical marks via canonical decomposition. Catalog
// entries carry accents inconsistently, so catalog matching folds both sides
// before comparing. Returns the input unchanged when transformation fails.
func FoldAccents(text string) string {
	folded, _, err := transform.String(accentStripper, text)
	if err != nil {
		return text
	}
	return folded
}
