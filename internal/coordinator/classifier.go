// internal/coordinator/classifier.go
package coordinator

import (
	"regexp"
	"strings"

	"smartborrow/internal/models"
)

// rule maps trigger vocabulary to a route. Rules are evaluated in order and
// the first match wins; adding a rule earlier in the list changes routing
// for every question its vocabulary touches.
type rule struct {
	route    models.AgentRoute
	keywords []string
	// needsNumber restricts the rule to questions carrying figures.
	needsNumber bool
}

var numberPattern = regexp.MustCompile(`\$?[\d,]+(?:\.\d+)?%?`)

var routingRules = []rule{
	{
		route:       models.RouteCalculator,
		keywords:    []string{"calculate", "payment", "per month", "total interest", "how much interest", "pay off", "compare"},
		needsNumber: true,
	},
	{
		route:    models.RouteLoanSpecialist,
		keywords: []string{"loan", "borrow", "repayment", "interest rate", "deferment", "forbearance", "forgiveness", "subsidized", "unsubsidized", "consolidat"},
	},
	{
		route:    models.RouteGrantSpecialist,
		keywords: []string{"grant", "pell", "scholarship", "fseog", "gift aid", "efc", "sai", "work-study", "work study"},
	},
	{
		route:    models.RouteResearcher,
		keywords: []string{"current", "latest", "news", "today", "recent", "this year", "right now", "2025", "2026"},
	},
}

// Classify picks the answering route for a question. Routing is
// deterministic over the normalized text; paraphrases may route differently,
// which is accepted.
func Classify(q models.Query) models.AgentRoute {
	question := q.Normalized
	hasNumber := numberPattern.MatchString(question)

	for _, r := range routingRules {
		if r.needsNumber && !hasNumber {
			continue
		}
		for _, kw := range r.keywords {
			if strings.Contains(question, kw) {
				return r.route
			}
		}
	}
	return models.RouteFallback
}
