package matching

import "bindery/internal/textutil"

// Matches reports whether a raw search-result title is an acceptable match
// for the requested author and title.
//
// At least one author token must appear in the candidate token set; an
// author whose tokens are all stop-words fails closed. The title check
// scales with title length: titles of three or more tokens must share at
// least two tokens with the candidate, shorter titles need only one.
func Matches(author, title, candidateTitle string) bool {
	candidateTokens := textutil.TokenSet(candidateTitle)

	authorTokens := textutil.Tokenize(author)
	authorOK := false
	for _, token := range authorTokens {
		if _, ok := candidateTokens[token]; ok {
			authorOK = true
			break
		}
	}
	if !authorOK {
		return false
	}

	titleTokens := textutil.Tokenize(title)
	if len(titleTokens) >= 3 {
		shared := 0
		for _, token := range titleTokens {
			if _, ok := candidateTokens[token]; ok {
				shared++
			}
		}
		return shared >= 2
	}
	for _, token := range titleTokens {
		if _, ok := candidateTokens[token]; ok {
			return true
		}
	}
	return false
}
