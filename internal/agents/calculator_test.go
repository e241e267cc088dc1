// internal/agents/calculator_test.go
package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "smartborrow/internal/common/errors"
	"smartborrow/internal/common/logger"
	"smartborrow/internal/models"
)

func TestCalculator_MonthlyPayment(t *testing.T) {
	calc := NewCalculator(logger.NewTestLogger(t))

	answer, err := calc.Handle(context.Background(),
		models.NewQuery("What would my monthly payment be on a $10,000 loan at 5% over 10 years?", nil))

	require.NoError(t, err)
	assert.Equal(t, models.RouteCalculator, answer.AgentType)
	assert.Equal(t, 1.0, answer.Confidence)
	// Standard amortization: 10k at 5% over 120 months is about $106.07.
	assert.Contains(t, answer.Text, "$106.07")
	assert.Contains(t, answer.Text, "120 months")
}

func TestCalculator_ZeroRate(t *testing.T) {
	calc := NewCalculator(logger.NewTestLogger(t))

	answer, err := calc.Handle(context.Background(),
		models.NewQuery("monthly payment on a $12,000 loan at 0% over 2 years", nil))

	require.NoError(t, err)
	assert.Contains(t, answer.Text, "$500.00")
}

func TestCalculator_TotalInterest(t *testing.T) {
	calc := NewCalculator(logger.NewTestLogger(t))

	answer, err := calc.Handle(context.Background(),
		models.NewQuery("How much interest will I pay on a $10,000 loan at 5% over 10 years?", nil))

	require.NoError(t, err)
	// 120 payments of ~$106.07 less principal is about $2728 of interest.
	assert.Contains(t, answer.Text, "interest")
	assert.Contains(t, answer.Text, "$2727.")
}

func TestCalculator_CompareRates(t *testing.T) {
	calc := NewCalculator(logger.NewTestLogger(t))

	answer, err := calc.Handle(context.Background(),
		models.NewQuery("Compare a $20,000 loan at 4.5% vs 6.5% over 10 years", nil))

	require.NoError(t, err)
	assert.Contains(t, answer.Text, "4.50%")
	assert.Contains(t, answer.Text, "6.50%")
	assert.Contains(t, answer.Text, "saves")
}

func TestCalculator_AssumesStandardTermWhenMissing(t *testing.T) {
	calc := NewCalculator(logger.NewTestLogger(t))

	answer, err := calc.Handle(context.Background(),
		models.NewQuery("What is my monthly loan payment for $10,000 at 5%?", nil))

	require.NoError(t, err)
	assert.Equal(t, 1.0, answer.Confidence)
	assert.Contains(t, answer.Text, "$106.07")
	assert.Contains(t, answer.Text, "standard 10-year repayment term")
}

func TestCalculator_Deterministic(t *testing.T) {
	calc := NewCalculator(logger.NewTestLogger(t))
	q := models.NewQuery("monthly payment on $8,000 at 4% over 5 years", nil)

	first, err := calc.Handle(context.Background(), q)
	require.NoError(t, err)
	second, err := calc.Handle(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, first.Text, second.Text)
}

func TestCalculator_DeclinesWithoutFigures(t *testing.T) {
	tests := []struct {
		name     string
		question string
	}{
		{"no numbers at all", "What is a good monthly payment?"},
		{"missing rate and term", "Can I afford a $10,000 loan?"},
		{"conceptual question", "How does loan interest work?"},
	}

	calc := NewCalculator(logger.NewTestLogger(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calc.Handle(context.Background(), models.NewQuery(tt.question, nil))
			require.Error(t, err)

			var stdErr *stderrors.StandardError
			require.ErrorAs(t, err, &stdErr)
			assert.Equal(t, stderrors.ErrCodeAgentNotApplicable, stdErr.Code)
		})
	}
}
