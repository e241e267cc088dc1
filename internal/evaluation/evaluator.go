// internal/evaluation/evaluator.go
package evaluation

import (
	"strings"

	"smartborrow/internal/models"
)

// Scores grade one answer. All values are in [0,1].
type Scores struct {
	Faithfulness float64 `json:"faithfulness"`
	Relevance    float64 `json:"relevance"`
	Completeness float64 `json:"completeness"`
}

// Overall is the mean of the three component scores.
func (s Scores) Overall() float64 {
	return (s.Faithfulness + s.Relevance + s.Completeness) / 3
}

// Evaluator grades answers after they are returned. Scoring is pure and
// heuristic: no collaborator calls, so it can run on every answer without
// adding latency or cost to the request path.
type Evaluator struct{}

func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Evaluate scores an answer against its question. Degraded answers floor at
// zero faithfulness since nothing grounds them.
func (e *Evaluator) Evaluate(q models.Query, a models.Answer) Scores {
	return Scores{
		Faithfulness: e.faithfulness(a),
		Relevance:    e.relevance(q, a),
		Completeness: e.completeness(a),
	}
}

// faithfulness approximates grounding by the evidence attached to the
// answer: cited sources and the agent's own confidence.
func (e *Evaluator) faithfulness(a models.Answer) float64 {
	if a.Degraded() {
		return 0
	}
	score := 0.3
	if len(a.Sources) > 0 {
		score += 0.2 + 0.1*float64(len(a.Sources))
	}
	score += 0.2 * a.Confidence
	return clamp(score)
}

// relevance measures lexical overlap between the question's content terms
// and the answer text.
func (e *Evaluator) relevance(q models.Query, a models.Answer) float64 {
	if a.Text == "" {
		return 0
	}
	questionTerms := contentTerms(q.Normalized)
	if len(questionTerms) == 0 {
		return 0.5
	}

	answerText := strings.ToLower(a.Text)
	matched := 0
	for term := range questionTerms {
		if strings.Contains(answerText, term) {
			matched++
		}
	}
	return clamp(0.2 + 0.8*float64(matched)/float64(len(questionTerms)))
}

// completeness rewards substantive answers and penalizes one-liners; answers
// past a few sentences gain nothing more.
func (e *Evaluator) completeness(a models.Answer) float64 {
	n := len(strings.Fields(a.Text))
	switch {
	case n == 0:
		return 0
	case n < 10:
		return 0.3
	case n < 30:
		return 0.6
	case n < 80:
		return 0.85
	default:
		return 1.0
	}
}

var fillerWords = map[string]bool{
	"what": true, "how": true, "is": true, "are": true, "the": true,
	"a": true, "an": true, "do": true, "does": true, "i": true,
	"my": true, "can": true, "for": true, "of": true, "to": true,
	"in": true, "on": true, "and": true, "or": true, "me": true,
	"it": true, "be": true, "with": true, "will": true, "that": true,
}

func contentTerms(normalized string) map[string]bool {
	terms := make(map[string]bool)
	for _, w := range strings.Fields(normalized) {
		w = strings.Trim(w, "?.,!")
		if len(w) > 1 && !fillerWords[w] {
			terms[w] = true
		}
	}
	return terms
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
