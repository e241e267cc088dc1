// internal/retrieval/hybrid.go
package retrieval

import (
	"context"
	"sort"
	"sync"
	"time"

	stderrors "smartborrow/internal/common/errors"
	"smartborrow/internal/common/logger"
	"smartborrow/internal/common/metrics"
	"smartborrow/internal/models"
)

// Options tune the retriever. Zero values fall back to sensible defaults.
type Options struct {
	TopK          int
	FetchK        int
	ContextBudget int
	Weights       map[string]float64
	MultiQuery    bool
	SourceTimeout time.Duration
}

// HybridRetriever fans a query out to every configured source, normalizes
// per-source scores to [0,1], fuses them by weighted sum, collapses
// duplicates and assembles a length-bounded Context.
//
// Failure of a subset of sources degrades the Context (Partial=true);
// failure of every source is the only error condition.
type HybridRetriever struct {
	sources []Source
	opts    Options
	logger  logger.Logger
}

func NewHybridRetriever(sources []Source, opts Options, log logger.Logger) *HybridRetriever {
	if opts.TopK <= 0 {
		opts.TopK = 3
	}
	if opts.FetchK <= 0 {
		opts.FetchK = 10
	}
	if opts.ContextBudget <= 0 {
		opts.ContextBudget = models.DefaultContextBudget
	}
	if opts.SourceTimeout <= 0 {
		opts.SourceTimeout = 5 * time.Second
	}
	return &HybridRetriever{
		sources: sources,
		opts:    opts,
		logger:  log.WithFields(map[string]interface{}{"component": "hybrid-retriever"}),
	}
}

type sourceResult struct {
	origin   models.Origin
	passages []models.RetrievedPassage
	err      error
}

// Retrieve builds the generation Context for a query. Returns an error only
// when every source failed; otherwise degraded results come back with
// Partial set.
func (r *HybridRetriever) Retrieve(ctx context.Context, q models.Query) (*models.Context, error) {
	queries := []string{Rewrite(q)}
	if r.opts.MultiQuery {
		queries = Variants(queries[0])
	}

	results := r.fanOut(ctx, queries)

	var failed []models.Origin
	byOrigin := make(map[models.Origin][]models.RetrievedPassage)
	for _, res := range results {
		if res.err != nil {
			failed = append(failed, res.origin)
			metrics.RetrievalSourceErrors.WithLabelValues(string(res.origin)).Inc()
			r.logger.Warn("retrieval source failed", map[string]interface{}{
				"origin": string(res.origin),
				"error":  res.err.Error(),
			})
			continue
		}
		byOrigin[res.origin] = append(byOrigin[res.origin], res.passages...)
	}

	if len(byOrigin) == 0 {
		return nil, stderrors.NewRetrievalUnavailableError("no retrieval source produced results")
	}

	fused := r.fuse(byOrigin)

	ctx2 := r.assemble(fused)
	ctx2.Partial = len(failed) > 0

	r.logger.Info("retrieval completed", map[string]interface{}{
		"passageCount":  len(ctx2.Passages),
		"partial":       ctx2.Partial,
		"failedSources": len(failed),
	})

	return ctx2, nil
}

// fanOut queries each source concurrently, one call per source per query
// variant, and gathers results per origin. A source that fails for every
// variant counts as failed; any variant succeeding keeps it alive.
func (r *HybridRetriever) fanOut(ctx context.Context, queries []string) []sourceResult {
	type call struct {
		source Source
		query  string
	}

	var calls []call
	for _, src := range r.sources {
		for _, query := range queries {
			calls = append(calls, call{source: src, query: query})
		}
	}

	raw := make([]sourceResult, len(calls))
	var wg sync.WaitGroup
	for i, c := range calls {
		wg.Add(1)
		go func(i int, c call) {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, r.opts.SourceTimeout)
			defer cancel()
			passages, err := c.source.Search(callCtx, c.query, r.opts.FetchK)
			raw[i] = sourceResult{origin: c.source.Origin(), passages: passages, err: err}
		}(i, c)
	}
	wg.Wait()

	// Collapse variant calls into one result per origin.
	merged := make(map[models.Origin]*sourceResult)
	order := make([]models.Origin, 0, len(r.sources))
	for _, res := range raw {
		m, ok := merged[res.origin]
		if !ok {
			copied := res
			merged[res.origin] = &copied
			order = append(order, res.origin)
			continue
		}
		if res.err == nil {
			m.passages = append(m.passages, res.passages...)
			m.err = nil
		}
	}

	out := make([]sourceResult, 0, len(order))
	for _, origin := range order {
		out = append(out, *merged[origin])
	}
	return out
}

// fuse rescales each origin's scores to [0,1] by min-max, applies the
// per-origin weight, and collapses duplicate passages keeping the highest
// fused score.
func (r *HybridRetriever) fuse(byOrigin map[models.Origin][]models.RetrievedPassage) []models.RetrievedPassage {
	weights := r.weights(byOrigin)

	best := make(map[string]models.RetrievedPassage)
	for origin, passages := range byOrigin {
		normalized := normalizeScores(passages)
		weight := weights[origin]
		for _, p := range normalized {
			p.Score *= weight
			key := p.DedupeKey()
			if existing, ok := best[key]; !ok || p.Score > existing.Score {
				best[key] = p
			}
		}
	}

	fused := make([]models.RetrievedPassage, 0, len(best))
	for _, p := range best {
		fused = append(fused, p)
	}

	// Ties break toward the shorter passage so the context budget stretches
	// further.
	sort.Slice(fused, func(i, j int) bool {
		if fused[i].Score != fused[j].Score {
			return fused[i].Score > fused[j].Score
		}
		if len(fused[i].Text) != len(fused[j].Text) {
			return len(fused[i].Text) < len(fused[j].Text)
		}
		return fused[i].SourceID < fused[j].SourceID
	})

	return fused
}

// weights resolves configured per-origin weights, defaulting to equal shares
// across the origins that actually returned results.
func (r *HybridRetriever) weights(byOrigin map[models.Origin][]models.RetrievedPassage) map[models.Origin]float64 {
	out := make(map[models.Origin]float64, len(byOrigin))
	if len(r.opts.Weights) == 0 {
		equal := 1.0 / float64(len(byOrigin))
		for origin := range byOrigin {
			out[origin] = equal
		}
		return out
	}

	total := 0.0
	for origin := range byOrigin {
		w, ok := r.opts.Weights[string(origin)]
		if !ok {
			w = 0
		}
		out[origin] = w
		total += w
	}
	if total <= 0 {
		equal := 1.0 / float64(len(byOrigin))
		for origin := range byOrigin {
			out[origin] = equal
		}
		return out
	}
	for origin := range out {
		out[origin] /= total
	}
	return out
}

// normalizeScores min-max rescales one origin's scores to [0,1]. A single
// passage, or a flat score distribution, maps to 1.0.
func normalizeScores(passages []models.RetrievedPassage) []models.RetrievedPassage {
	if len(passages) == 0 {
		return passages
	}

	min, max := passages[0].Score, passages[0].Score
	for _, p := range passages[1:] {
		if p.Score < min {
			min = p.Score
		}
		if p.Score > max {
			max = p.Score
		}
	}

	out := make([]models.RetrievedPassage, len(passages))
	copy(out, passages)
	if max == min {
		for i := range out {
			out[i].Score = 1.0
		}
		return out
	}
	for i := range out {
		out[i].Score = (out[i].Score - min) / (max - min)
	}
	return out
}

// assemble selects the top-k fused passages and enforces the character
// budget, truncating the final passage rather than dropping it outright.
func (r *HybridRetriever) assemble(fused []models.RetrievedPassage) *models.Context {
	if len(fused) > r.opts.TopK {
		fused = fused[:r.opts.TopK]
	}

	out := &models.Context{Budget: r.opts.ContextBudget}
	remaining := r.opts.ContextBudget
	for _, p := range fused {
		if remaining <= 0 {
			out.TruncatedChars += len(p.Text)
			continue
		}
		if len(p.Text) > remaining {
			out.TruncatedChars += len(p.Text) - remaining
			p.Text = p.Text[:remaining]
		}
		remaining -= len(p.Text)
		out.Passages = append(out.Passages, p)
	}

	return out
}
