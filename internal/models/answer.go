// internal/models/answer.go
package models

// AgentRoute is the closed set of answering strategies. A route is chosen
// once per query and never revisited within a request.
type AgentRoute string

const (
	RouteLoanSpecialist  AgentRoute = "LoanSpecialist"
	RouteGrantSpecialist AgentRoute = "GrantSpecialist"
	RouteCalculator      AgentRoute = "CalculatorAgent"
	RouteResearcher      AgentRoute = "ResearcherAgent"
	RouteFallback        AgentRoute = "rag_fallback"
)

// Answer is the single value returned for every question. Immutable after
// return; cached under the originating normalized query unless Error is set.
type Answer struct {
	Text           string     `json:"text"`
	Confidence     float64    `json:"confidence"`
	AgentType      AgentRoute `json:"agentType"`
	Sources        []string   `json:"sources"`
	ResponseTimeMs int64      `json:"responseTimeMs"`
	Cached         bool       `json:"cached"`
	RequestID      string     `json:"requestId,omitempty"`
	Error          string     `json:"error,omitempty"`
}

// Degraded reports whether the answer was produced on an error path.
func (a *Answer) Degraded() bool {
	return a.Error != ""
}
