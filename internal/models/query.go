// internal/models/query.go
package models

import "strings"

// Turn is a single prior exchange in a conversation.
type Turn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Query is an immutable per-request value. Normalized holds the cache key
// form of the question: lower-cased with whitespace collapsed.
type Query struct {
	Raw        string `json:"raw"`
	Normalized string `json:"normalized"`
	History    []Turn `json:"history,omitempty"`
}

// NewQuery builds a Query from the raw question and optional history.
func NewQuery(raw string, history []Turn) Query {
	return Query{
		Raw:        raw,
		Normalized: NormalizeQuery(raw),
		History:    history,
	}
}

// NormalizeQuery lower-cases the question and collapses runs of whitespace
// to single spaces. Two questions normalizing to the same string share a
// cache entry; paraphrases do not.
func NormalizeQuery(raw string) string {
	return strings.Join(strings.Fields(strings.ToLower(raw)), " ")
}
