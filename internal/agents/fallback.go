// internal/agents/fallback.go
package agents

import (
	"context"

	"smartborrow/internal/common/logger"
	"smartborrow/internal/models"
)

const generalPersona = "You are a financial aid assistant. You answer questions about paying for college using the provided reference material."

// FallbackAgent is the general-purpose grounded answerer. It is the retry
// target when a specialist declines or times out, and the route for
// questions no specialist claims.
type FallbackAgent struct {
	retriever  Retriever
	completer  Completer
	confidence float64
	logger     logger.Logger
}

func NewFallbackAgent(retriever Retriever, completer Completer, confidence float64, log logger.Logger) *FallbackAgent {
	if confidence <= 0 {
		confidence = 0.6
	}
	return &FallbackAgent{
		retriever:  retriever,
		completer:  completer,
		confidence: confidence,
		logger:     log.WithFields(map[string]interface{}{"agent": string(models.RouteFallback)}),
	}
}

func (a *FallbackAgent) Route() models.AgentRoute {
	return models.RouteFallback
}

func (a *FallbackAgent) Handle(ctx context.Context, q models.Query) (*models.Answer, error) {
	retrieved, err := a.retriever.Retrieve(ctx, q)
	if err != nil {
		return nil, err
	}

	text, err := a.completer.Complete(ctx, buildPrompt(generalPersona, retrieved, q.Raw))
	if err != nil {
		return nil, err
	}

	confidence := a.confidence
	if retrieved.Partial {
		confidence -= 0.1
	}

	return &models.Answer{
		Text:       text,
		Confidence: confidence,
		AgentType:  models.RouteFallback,
		Sources:    retrieved.SourceIDs(),
	}, nil
}
