// internal/retrieval/rewrite.go
package retrieval

import (
	"strings"

	"smartborrow/internal/models"
)

// synonymGroups expands domain terms so lexical sources catch passages using
// sibling vocabulary. Expansion is deterministic: same question, same
// variants, same cache behavior downstream.
var synonymGroups = map[string][]string{
	"loan":        {"borrowing", "direct loan"},
	"loans":       {"borrowing", "direct loans"},
	"grant":       {"gift aid", "scholarship"},
	"grants":      {"gift aid", "scholarships"},
	"interest":    {"rate", "apr"},
	"repayment":   {"repay", "payment plan"},
	"forgiveness": {"discharge", "cancellation"},
	"fafsa":       {"aid application"},
	"efc":         {"expected family contribution"},
	"sai":         {"student aid index"},
}

// referringWords signal a question that leans on conversation history for
// its subject.
var referringWords = map[string]bool{
	"it": true, "that": true, "this": true, "they": true,
	"them": true, "those": true, "these": true, "one": true,
}

// Rewrite resolves a history-dependent question into a standalone retrieval
// query. A question that already names its subject passes through unchanged.
func Rewrite(q models.Query) string {
	if len(q.History) == 0 {
		return q.Normalized
	}

	words := strings.Fields(q.Normalized)
	needsContext := len(words) < 4
	for _, w := range words {
		if referringWords[strings.Trim(w, "?.,!")] {
			needsContext = true
			break
		}
	}
	if !needsContext {
		return q.Normalized
	}

	// Borrow topic terms from the most recent turn.
	lastTurn := q.History[len(q.History)-1]
	topic := topicTerms(models.NormalizeQuery(lastTurn.Question))
	if topic == "" {
		return q.Normalized
	}

	return topic + " " + q.Normalized
}

// Variants returns the rewritten query plus synonym-expanded forms, the
// original always first. Expansion caps at three variants to bound fan-out.
func Variants(query string) []string {
	variants := []string{query}
	words := strings.Fields(query)

	for _, word := range words {
		expansions, ok := synonymGroups[strings.Trim(word, "?.,!")]
		if !ok {
			continue
		}
		for _, expansion := range expansions {
			if len(variants) >= 3 {
				return variants
			}
			variants = append(variants, strings.Replace(query, word, expansion, 1))
		}
	}

	return variants
}

// stopWords excluded when extracting topic terms from history.
var stopWords = map[string]bool{
	"what": true, "how": true, "is": true, "are": true, "the": true,
	"a": true, "an": true, "do": true, "does": true, "i": true,
	"my": true, "can": true, "for": true, "of": true, "to": true,
	"in": true, "on": true, "and": true, "or": true, "me": true,
	"about": true, "much": true, "many": true, "should": true,
}

func topicTerms(question string) string {
	var terms []string
	for _, w := range strings.Fields(question) {
		w = strings.Trim(w, "?.,!")
		if w != "" && !stopWords[w] {
			terms = append(terms, w)
		}
		if len(terms) == 3 {
			break
		}
	}
	return strings.Join(terms, " ")
}
