// internal/models/query_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"lowercases", "What Is A Pell GRANT?", "what is a pell grant?"},
		{"collapses whitespace", "  what   is\ta \n loan  ", "what is a loan"},
		{"identical after normalization", "How do loans work?", "how do loans work?"},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeQuery(tt.raw))
		})
	}
}

func TestNewQuery(t *testing.T) {
	q := NewQuery("  What IS a loan? ", []Turn{{Question: "hi", Answer: "hello"}})
	assert.Equal(t, "  What IS a loan? ", q.Raw)
	assert.Equal(t, "what is a loan?", q.Normalized)
	assert.Len(t, q.History, 1)
}

func TestContext_TextAndSources(t *testing.T) {
	c := &Context{Passages: []RetrievedPassage{
		{SourceID: "a:0", Text: "first"},
		{SourceID: "b:2", Text: "second"},
	}}

	assert.Equal(t, "first\n\nsecond", c.Text())
	assert.Equal(t, []string{"a:0", "b:2"}, c.SourceIDs())

	empty := &Context{}
	assert.Empty(t, empty.Text())
}

func TestAnswer_Degraded(t *testing.T) {
	assert.False(t, (&Answer{Text: "fine"}).Degraded())
	assert.True(t, (&Answer{Error: "RETRIEVAL_UNAVAILABLE"}).Degraded())
}
