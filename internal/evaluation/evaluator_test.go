// internal/evaluation/evaluator_test.go
package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"smartborrow/internal/models"
)

func TestEvaluate_ScoresStayInUnitInterval(t *testing.T) {
	e := NewEvaluator()

	tests := []struct {
		name   string
		query  string
		answer models.Answer
	}{
		{
			name:  "well-grounded answer",
			query: "What is a subsidized loan?",
			answer: models.Answer{
				Text:       "A subsidized loan is a federal student loan where the government pays the interest while you are enrolled at least half time.",
				Confidence: 0.85,
				Sources:    []string{"a", "b", "c"},
			},
		},
		{
			name:   "empty answer",
			query:  "What is a subsidized loan?",
			answer: models.Answer{},
		},
		{
			name:  "many sources do not overflow faithfulness",
			query: "loans",
			answer: models.Answer{
				Text:       "Loans.",
				Confidence: 1.0,
				Sources:    []string{"a", "b", "c", "d", "e", "f", "g", "h"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scores := e.Evaluate(models.NewQuery(tt.query, nil), tt.answer)
			for name, v := range map[string]float64{
				"faithfulness": scores.Faithfulness,
				"relevance":    scores.Relevance,
				"completeness": scores.Completeness,
				"overall":      scores.Overall(),
			} {
				assert.GreaterOrEqual(t, v, 0.0, name)
				assert.LessOrEqual(t, v, 1.0, name)
			}
		})
	}
}

func TestEvaluate_DegradedAnswerHasZeroFaithfulness(t *testing.T) {
	e := NewEvaluator()
	answer := models.Answer{
		Text:  "Sorry, something went wrong.",
		Error: "RETRIEVAL_UNAVAILABLE",
	}

	scores := e.Evaluate(models.NewQuery("What is a loan?", nil), answer)
	assert.Zero(t, scores.Faithfulness)
}

func TestEvaluate_RelevanceTracksTermOverlap(t *testing.T) {
	e := NewEvaluator()
	q := models.NewQuery("What is the Pell Grant maximum?", nil)

	onTopic := e.Evaluate(q, models.Answer{
		Text: "The Pell Grant maximum changes each award year.", Confidence: 0.8, Sources: []string{"a"},
	})
	offTopic := e.Evaluate(q, models.Answer{
		Text: "Private refinancing reduces your monthly cost.", Confidence: 0.8, Sources: []string{"a"},
	})

	assert.Greater(t, onTopic.Relevance, offTopic.Relevance)
}

func TestEvaluate_CompletenessRewardsSubstance(t *testing.T) {
	e := NewEvaluator()
	q := models.NewQuery("explain loan repayment", nil)

	short := e.Evaluate(q, models.Answer{Text: "Pay monthly."})
	long := e.Evaluate(q, models.Answer{Text: "Repayment begins six months after you leave school. You can choose standard ten year repayment, graduated plans that start lower and rise, or income-driven plans that track your earnings and forgive the remainder after twenty to twenty-five years."})

	assert.Greater(t, long.Completeness, short.Completeness)
}
