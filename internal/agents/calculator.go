// internal/agents/calculator.go
package agents

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	stderrors "smartborrow/internal/common/errors"
	"smartborrow/internal/common/logger"
	"smartborrow/internal/models"
)

var (
	amountPattern = regexp.MustCompile(`\$\s*([\d,]+(?:\.\d+)?)|([\d,]{4,}(?:\.\d+)?)\s*(?:dollars)?`)
	ratePattern   = regexp.MustCompile(`([\d.]+)\s*%`)
	yearsPattern  = regexp.MustCompile(`(\d+)[\s-]*(?:year|yr)`)
	monthsPattern = regexp.MustCompile(`(\d+)[\s-]*month`)
)

// loanInputs are the figures parsed out of a question.
type loanInputs struct {
	principal float64
	rates     []float64 // annual, percent
	months    int
}

// Calculator performs loan math directly: amortized monthly payments, total
// interest over the life of a loan, and rate comparisons. It is pure and
// deterministic, so its answers carry full confidence and cache safely.
type Calculator struct {
	logger logger.Logger
}

func NewCalculator(log logger.Logger) *Calculator {
	return &Calculator{
		logger: log.WithFields(map[string]interface{}{"agent": string(models.RouteCalculator)}),
	}
}

func (a *Calculator) Route() models.AgentRoute {
	return models.RouteCalculator
}

// defaultTermMonths is assumed when a question names an amount and rate but
// no term; ten years matches the standard federal repayment plan.
const defaultTermMonths = 120

func (a *Calculator) Handle(ctx context.Context, q models.Query) (*models.Answer, error) {
	question := q.Normalized
	inputs := parseLoanInputs(question)

	assumedTerm := false
	if inputs.months == 0 && inputs.principal > 0 && len(inputs.rates) > 0 {
		inputs.months = defaultTermMonths
		assumedTerm = true
	}

	var text string
	switch {
	case len(inputs.rates) >= 2 && containsAny(question, []string{"compare", " vs ", " versus ", " or "}):
		text = a.compareRates(inputs)
	case containsAny(question, []string{"total interest", "interest will i pay", "interest would i pay", "how much interest"}):
		text = a.totalInterest(inputs)
	case containsAny(question, []string{"monthly payment", "per month", "a month", "payment be", "payments be"}):
		text = a.monthlyPayment(inputs)
	default:
		// Complete inputs with any computational phrasing still get the
		// payment breakdown.
		if inputs.complete() && containsAny(question, []string{"calculate", "payment", "pay off", "cost"}) {
			text = a.monthlyPayment(inputs)
		}
	}

	if text == "" {
		return nil, stderrors.NewAgentNotApplicableError(string(models.RouteCalculator))
	}
	if assumedTerm {
		text += " This assumes the standard 10-year repayment term."
	}

	return &models.Answer{
		Text:       text,
		Confidence: 1.0,
		AgentType:  models.RouteCalculator,
		Sources:    []string{"loan-calculator"},
	}, nil
}

func (i loanInputs) complete() bool {
	return i.principal > 0 && len(i.rates) > 0 && i.months > 0
}

func parseLoanInputs(question string) loanInputs {
	var inputs loanInputs

	for _, m := range amountPattern.FindAllStringSubmatch(question, -1) {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err == nil && v > inputs.principal {
			inputs.principal = v
		}
	}

	for _, m := range ratePattern.FindAllStringSubmatch(question, -1) {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			inputs.rates = append(inputs.rates, v)
		}
	}

	if m := yearsPattern.FindStringSubmatch(question); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			inputs.months = v * 12
		}
	} else if m := monthsPattern.FindStringSubmatch(question); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			inputs.months = v
		}
	}

	return inputs
}

// amortizedPayment is the standard fixed-payment formula. A zero rate divides
// the principal evenly.
func amortizedPayment(principal, annualRate float64, months int) float64 {
	if months == 0 {
		return 0
	}
	monthlyRate := annualRate / 100 / 12
	if monthlyRate == 0 {
		return principal / float64(months)
	}
	factor := math.Pow(1+monthlyRate, float64(months))
	return principal * monthlyRate * factor / (factor - 1)
}

func (a *Calculator) monthlyPayment(inputs loanInputs) string {
	if !inputs.complete() {
		return ""
	}
	payment := amortizedPayment(inputs.principal, inputs.rates[0], inputs.months)
	total := payment * float64(inputs.months)
	return fmt.Sprintf(
		"For a %s loan at %.2f%% over %d months, the monthly payment is %s. You would pay %s in total, of which %s is interest.",
		formatMoney(inputs.principal), inputs.rates[0], inputs.months,
		formatMoney(payment), formatMoney(total), formatMoney(total-inputs.principal),
	)
}

func (a *Calculator) totalInterest(inputs loanInputs) string {
	if !inputs.complete() {
		return ""
	}
	payment := amortizedPayment(inputs.principal, inputs.rates[0], inputs.months)
	interest := payment*float64(inputs.months) - inputs.principal
	return fmt.Sprintf(
		"On a %s loan at %.2f%% over %d months you would pay %s in interest (monthly payment %s).",
		formatMoney(inputs.principal), inputs.rates[0], inputs.months,
		formatMoney(interest), formatMoney(payment),
	)
}

func (a *Calculator) compareRates(inputs loanInputs) string {
	if inputs.principal <= 0 || inputs.months <= 0 || len(inputs.rates) < 2 {
		return ""
	}
	p1 := amortizedPayment(inputs.principal, inputs.rates[0], inputs.months)
	p2 := amortizedPayment(inputs.principal, inputs.rates[1], inputs.months)
	diff := math.Abs(p1-p2) * float64(inputs.months)

	lower, higher := inputs.rates[0], inputs.rates[1]
	if lower > higher {
		lower, higher = higher, lower
	}
	return fmt.Sprintf(
		"For a %s loan over %d months: at %.2f%% the monthly payment is %s, at %.2f%% it is %s. The lower rate (%.2f%%) saves %s over the life of the loan.",
		formatMoney(inputs.principal), inputs.months,
		inputs.rates[0], formatMoney(p1),
		inputs.rates[1], formatMoney(p2),
		lower, formatMoney(diff),
	)
}
