// internal/retrieval/rewrite_test.go
package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"smartborrow/internal/models"
)

func TestRewrite(t *testing.T) {
	tests := []struct {
		name     string
		question string
		history  []models.Turn
		expected string
	}{
		{
			name:     "standalone question passes through",
			question: "What is a subsidized loan?",
			expected: "what is a subsidized loan?",
		},
		{
			name:     "referring question borrows topic from history",
			question: "How do I apply for it?",
			history: []models.Turn{
				{Question: "What is the Pell Grant?", Answer: "A federal grant."},
			},
			expected: "pell grant how do i apply for it?",
		},
		{
			name:     "short question borrows topic from history",
			question: "When exactly?",
			history: []models.Turn{
				{Question: "When does FAFSA open?", Answer: "October."},
			},
			expected: "when fafsa open when exactly?",
		},
		{
			name:     "self-contained question ignores history",
			question: "What interest rate applies to unsubsidized direct loans?",
			history: []models.Turn{
				{Question: "What is the Pell Grant?", Answer: "A federal grant."},
			},
			expected: "what interest rate applies to unsubsidized direct loans?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := models.NewQuery(tt.question, tt.history)
			assert.Equal(t, tt.expected, Rewrite(q))
		})
	}
}

func TestVariants(t *testing.T) {
	t.Run("expands domain vocabulary", func(t *testing.T) {
		variants := Variants("loan forgiveness options")
		assert.Equal(t, "loan forgiveness options", variants[0], "original query always first")
		assert.Len(t, variants, 3)
		assert.Contains(t, variants, "borrowing forgiveness options")
	})

	t.Run("no expansion without domain terms", func(t *testing.T) {
		variants := Variants("how does this work")
		assert.Equal(t, []string{"how does this work"}, variants)
	})

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, Variants("grant eligibility"), Variants("grant eligibility"))
	})
}
