// internal/agents/specialist.go
package agents

import (
	"context"
	"fmt"
	"strings"

	"smartborrow/internal/models"
)

// Specialist answers a question with one strategy. Handle either returns a
// complete Answer or an error the coordinator converts or recovers from; a
// specialist never half-answers.
type Specialist interface {
	Route() models.AgentRoute
	Handle(ctx context.Context, q models.Query) (*models.Answer, error)
}

// Retriever is the slice of the hybrid retriever the RAG specialists need.
type Retriever interface {
	Retrieve(ctx context.Context, q models.Query) (*models.Context, error)
}

// Completer produces a text completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// buildPrompt assembles the grounded generation prompt: persona, retrieved
// passages, then the question.
func buildPrompt(persona string, retrieved *models.Context, question string) string {
	var b strings.Builder
	b.WriteString(persona)
	b.WriteString("\n\nUse only the following context to answer. If the context does not contain the answer, say so.\n\nContext:\n")
	b.WriteString(retrieved.Text())
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\nAnswer:")
	return b.String()
}

// ragConfidence scores a grounded answer from the evidence that produced it.
// More supporting passages raise it; a partial context caps it lower.
func ragConfidence(retrieved *models.Context) float64 {
	confidence := 0.6 + 0.1*float64(len(retrieved.Passages))
	if confidence > 0.9 {
		confidence = 0.9
	}
	if retrieved.Partial && confidence > 0.7 {
		confidence = 0.7
	}
	return confidence
}

// containsAny reports whether text holds any of the given terms as
// substrings. Callers pass lower-cased text.
func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func formatMoney(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
