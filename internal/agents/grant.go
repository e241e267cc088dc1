// internal/agents/grant.go
package agents

import (
	"context"

	"smartborrow/internal/common/logger"
	"smartborrow/internal/models"
)

const grantPersona = "You are a grant and scholarship specialist. You explain Pell Grants, FSEOG, state gift aid, eligibility rules, and application steps in plain language."

// GrantSpecialist answers gift-aid questions grounded in retrieved passages.
type GrantSpecialist struct {
	retriever Retriever
	completer Completer
	logger    logger.Logger
}

func NewGrantSpecialist(retriever Retriever, completer Completer, log logger.Logger) *GrantSpecialist {
	return &GrantSpecialist{
		retriever: retriever,
		completer: completer,
		logger:    log.WithFields(map[string]interface{}{"agent": string(models.RouteGrantSpecialist)}),
	}
}

func (a *GrantSpecialist) Route() models.AgentRoute {
	return models.RouteGrantSpecialist
}

func (a *GrantSpecialist) Handle(ctx context.Context, q models.Query) (*models.Answer, error) {
	retrieved, err := a.retriever.Retrieve(ctx, q)
	if err != nil {
		return nil, err
	}

	text, err := a.completer.Complete(ctx, buildPrompt(grantPersona, retrieved, q.Raw))
	if err != nil {
		return nil, err
	}

	return &models.Answer{
		Text:       text,
		Confidence: ragConfidence(retrieved),
		AgentType:  models.RouteGrantSpecialist,
		Sources:    retrieved.SourceIDs(),
	}, nil
}
