// internal/agents/researcher.go
package agents

import (
	"context"
	"fmt"
	"strings"

	"smartborrow/internal/clients/websearch"
	stderrors "smartborrow/internal/common/errors"
	"smartborrow/internal/common/logger"
	"smartborrow/internal/models"
)

const researcherPersona = "You are a research assistant. Summarize the following web search results into a direct answer. Cite nothing the results do not say."

// Researcher answers time-sensitive questions from live web search results,
// cached in Redis under their own TTL. When the web is unreachable it
// declines so the coordinator can fall back to the static corpus.
type Researcher struct {
	provider  websearch.Provider
	cache     *WebCache
	completer Completer
	logger    logger.Logger
}

func NewResearcher(provider websearch.Provider, cache *WebCache, completer Completer, log logger.Logger) *Researcher {
	return &Researcher{
		provider:  provider,
		cache:     cache,
		completer: completer,
		logger:    log.WithFields(map[string]interface{}{"agent": string(models.RouteResearcher)}),
	}
}

func (a *Researcher) Route() models.AgentRoute {
	return models.RouteResearcher
}

func (a *Researcher) Handle(ctx context.Context, q models.Query) (*models.Answer, error) {
	results, cached := a.cache.Get(ctx, q.Normalized)
	if !cached {
		var err error
		results, err = a.provider.Search(ctx, q.Raw)
		if err != nil {
			a.logger.Warn("web search failed, declining", map[string]interface{}{
				"error": err.Error(),
			})
			return nil, stderrors.NewAgentNotApplicableError(string(models.RouteResearcher))
		}
		if len(results) > 0 {
			a.cache.Put(ctx, q.Normalized, results)
		}
	}

	if len(results) == 0 {
		return nil, stderrors.NewAgentNotApplicableError(string(models.RouteResearcher))
	}

	sources := make([]string, 0, len(results))
	for _, r := range results {
		sources = append(sources, r.URL)
	}

	text, err := a.completer.Complete(ctx, a.buildPrompt(q.Raw, results))
	if err != nil {
		// Degrade to raw snippets rather than losing the results.
		a.logger.Warn("summary completion failed, returning snippets", map[string]interface{}{
			"error": err.Error(),
		})
		return &models.Answer{
			Text:       a.snippetAnswer(results),
			Confidence: 0.5,
			AgentType:  models.RouteResearcher,
			Sources:    sources,
		}, nil
	}

	confidence := 0.6 + 0.05*float64(len(results))
	if confidence > 0.85 {
		confidence = 0.85
	}

	return &models.Answer{
		Text:       text,
		Confidence: confidence,
		AgentType:  models.RouteResearcher,
		Sources:    sources,
	}, nil
}

func (a *Researcher) buildPrompt(question string, results []websearch.Result) string {
	var b strings.Builder
	b.WriteString(researcherPersona)
	b.WriteString("\n\nSearch results:\n")
	for i, r := range results {
		fmt.Fprintf(&b, "%d. %s (%s)\n%s\n\n", i+1, r.Title, r.URL, r.Snippet)
	}
	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString("\nAnswer:")
	return b.String()
}

func (a *Researcher) snippetAnswer(results []websearch.Result) string {
	var b strings.Builder
	b.WriteString("Here is what recent sources say:\n")
	for _, r := range results {
		fmt.Fprintf(&b, "- %s: %s\n", r.Title, r.Snippet)
	}
	return b.String()
}
