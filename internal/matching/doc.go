// Package matching decides whether noisy external search results correspond
// to a requested book.
//
// The Variants generator widens recall by producing alternative query
// phrasings for an (author, title) pair; the Matches predicate restores
// precision by requiring token overlap between the request and a candidate
// result title. Both operate on textutil tokens so punctuation, casing, and
// stop-words never influence the outcome.
package matching
