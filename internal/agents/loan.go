// internal/agents/loan.go
package agents

import (
	"context"

	"smartborrow/internal/common/logger"
	"smartborrow/internal/models"
)

const loanPersona = "You are a student loan specialist. You explain federal and private student loans, interest rates, repayment plans, deferment, and forgiveness programs in plain language."

// LoanSpecialist answers borrowing questions grounded in retrieved passages.
type LoanSpecialist struct {
	retriever Retriever
	completer Completer
	logger    logger.Logger
}

func NewLoanSpecialist(retriever Retriever, completer Completer, log logger.Logger) *LoanSpecialist {
	return &LoanSpecialist{
		retriever: retriever,
		completer: completer,
		logger:    log.WithFields(map[string]interface{}{"agent": string(models.RouteLoanSpecialist)}),
	}
}

func (a *LoanSpecialist) Route() models.AgentRoute {
	return models.RouteLoanSpecialist
}

func (a *LoanSpecialist) Handle(ctx context.Context, q models.Query) (*models.Answer, error) {
	retrieved, err := a.retriever.Retrieve(ctx, q)
	if err != nil {
		return nil, err
	}

	text, err := a.completer.Complete(ctx, buildPrompt(loanPersona, retrieved, q.Raw))
	if err != nil {
		return nil, err
	}

	return &models.Answer{
		Text:       text,
		Confidence: ragConfidence(retrieved),
		AgentType:  models.RouteLoanSpecialist,
		Sources:    retrieved.SourceIDs(),
	}, nil
}
