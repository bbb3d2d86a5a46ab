package matching

import "strings"

// Variants produces the ordered list of query strings to try against the
// indexing service for an (author, title) pair. The index ranks compound
// author+title queries unreliably, so shorter and reordered phrasings recover
// hits the primary query misses. The result is de-duplicated
// case-insensitively, preserving first-seen order, with empty variants
// dropped.
func Variants(author, title string) []string {
	author = strings.TrimSpace(author)
	title = strings.TrimSpace(title)

	candidates := []string{
		author + " " + title,
		title + " " + author,
		title,
		author,
	}

	if titleWords := strings.Fields(title); len(titleWords) > 1 {
		candidates = append(candidates, titleWords[len(titleWords)-1])
	}
	if authorWords := strings.Fields(author); len(authorWords) > 1 {
		candidates = append(candidates, authorWords[len(authorWords)-1]+" "+title)
	}

	seen := make(map[string]struct{}, len(candidates))
	variants := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		trimmed := strings.TrimSpace(candidate)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		variants = append(variants, trimmed)
	}
	return variants
}
