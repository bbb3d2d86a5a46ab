// Package textutil normalizes and tokenizes bibliographic text for matching.
//
// External search results and catalog entries are noisy: inconsistent casing,
// punctuation, dash variants, and diacritics. Normalize reduces a string to a
// canonical lowercase form, Tokenize splits it into stop-word-filtered tokens,
// and FoldAccents strips diacritics for sources that carry them
// inconsistently. All functions are pure and deterministic.
package textutil
