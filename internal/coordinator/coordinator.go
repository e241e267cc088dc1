// internal/coordinator/coordinator.go
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"smartborrow/internal/agents"
	"smartborrow/internal/cache"
	"smartborrow/internal/clients/completion"
	stderrors "smartborrow/internal/common/errors"
	"smartborrow/internal/common/logger"
	"smartborrow/internal/common/metrics"
	"smartborrow/internal/common/observability"
	"smartborrow/internal/evaluation"
	"smartborrow/internal/models"
)

// HealthChecker probes one dependency.
type HealthChecker func(ctx context.Context) error

// Options wires the coordinator's collaborators.
type Options struct {
	Specialists  map[models.AgentRoute]agents.Specialist
	Fallback     agents.Specialist
	Cache        *cache.ResponseCache
	Evaluator    *evaluation.Evaluator
	Tracker      *evaluation.PerformanceTracker
	Obs          *observability.Observability
	AgentTimeout time.Duration
	Health       map[string]HealthChecker
}

// Coordinator owns the request lifecycle: cache lookup, intent
// classification, specialist dispatch with a time box, the single fallback
// retry, and boundary error conversion. Answer never returns an error; every
// failure mode becomes a degraded Answer.
type Coordinator struct {
	specialists  map[models.AgentRoute]agents.Specialist
	fallback     agents.Specialist
	cache        *cache.ResponseCache
	evaluator    *evaluation.Evaluator
	tracker      *evaluation.PerformanceTracker
	obs          *observability.Observability
	agentTimeout time.Duration
	health       map[string]HealthChecker
	logger       logger.Logger
}

func New(opts Options, log logger.Logger) *Coordinator {
	if opts.AgentTimeout <= 0 {
		opts.AgentTimeout = 10 * time.Second
	}
	return &Coordinator{
		specialists:  opts.Specialists,
		fallback:     opts.Fallback,
		cache:        opts.Cache,
		evaluator:    opts.Evaluator,
		tracker:      opts.Tracker,
		obs:          opts.Obs,
		agentTimeout: opts.AgentTimeout,
		health:       opts.Health,
		logger:       log.WithFields(map[string]interface{}{"component": "coordinator"}),
	}
}

// Answer processes one question end to end.
func (c *Coordinator) Answer(ctx context.Context, question string, history []models.Turn) models.Answer {
	start := time.Now()
	requestID := uuid.New().String()
	log := c.logger.WithFields(map[string]interface{}{"requestId": requestID})

	metrics.ActiveRequests.Inc()
	defer metrics.ActiveRequests.Dec()

	q := models.NewQuery(question, history)

	if cached, ok := c.cache.Get(q.Normalized); ok {
		cached.Cached = true
		cached.RequestID = requestID
		cached.ResponseTimeMs = time.Since(start).Milliseconds()
		log.Info("answered from cache", map[string]interface{}{
			"route": string(cached.AgentType),
		})
		c.finish(ctx, q, cached, start)
		return cached
	}

	route := Classify(q)
	log.Info("question classified", map[string]interface{}{"route": string(route)})

	answer, err := c.dispatch(ctx, route, q)

	// One retry budget: a specialist declining or timing out hands the
	// question to the fallback answerer exactly once.
	if err != nil && route != models.RouteFallback && isFallbackTrigger(err) {
		log.Warn("specialist unavailable, retrying with fallback", map[string]interface{}{
			"route": string(route),
			"error": err.Error(),
		})
		route = models.RouteFallback
		answer, err = c.dispatch(ctx, route, q)
	}

	if err != nil {
		answer = c.degradedAnswer(route, err)
		log.Error("answer degraded", map[string]interface{}{
			"route": string(route),
			"error": err.Error(),
		})
	}

	answer.RequestID = requestID
	answer.ResponseTimeMs = time.Since(start).Milliseconds()

	if !answer.Degraded() {
		c.cache.Put(q.Normalized, *answer)
	}

	c.finish(ctx, q, *answer, start)
	return *answer
}

// dispatch runs one specialist inside the time box. A specialist that
// overruns keeps executing until its context fires, but the caller moves on
// immediately with a timeout error.
func (c *Coordinator) dispatch(ctx context.Context, route models.AgentRoute, q models.Query) (*models.Answer, error) {
	specialist := c.specialistFor(route)
	if specialist == nil {
		return nil, stderrors.NewAgentNotApplicableError(string(route))
	}

	callCtx, cancel := context.WithTimeout(ctx, c.agentTimeout)
	defer cancel()

	type result struct {
		answer *models.Answer
		err    error
	}
	done := make(chan result, 1)
	go func() {
		answer, err := specialist.Handle(callCtx, q)
		done <- result{answer: answer, err: err}
	}()

	select {
	case res := <-done:
		return res.answer, res.err
	case <-callCtx.Done():
		return nil, stderrors.NewAgentTimeoutError(string(route))
	}
}

func (c *Coordinator) specialistFor(route models.AgentRoute) agents.Specialist {
	if route == models.RouteFallback {
		return c.fallback
	}
	if s, ok := c.specialists[route]; ok {
		return s
	}
	return nil
}

// isFallbackTrigger reports whether the error is one of the two recoverable
// dispatch outcomes.
func isFallbackTrigger(err error) bool {
	var stdErr *stderrors.StandardError
	if !errors.As(err, &stdErr) {
		return false
	}
	return stdErr.Code == stderrors.ErrCodeAgentNotApplicable ||
		stdErr.Code == stderrors.ErrCodeAgentTimeout
}

// degradedAnswer is the boundary conversion: whatever failed, the caller
// still receives an Answer.
func (c *Coordinator) degradedAnswer(route models.AgentRoute, err error) *models.Answer {
	code := stderrors.ErrCodeServiceUnavailable
	var stdErr *stderrors.StandardError
	switch {
	case errors.As(err, &stdErr):
		code = stdErr.Code
	case errors.Is(err, completion.ErrRateLimited):
		code = stderrors.ErrCodeRateLimited
	}

	text := "I could not produce an answer for this question right now. Please try again shortly."
	if code == stderrors.ErrCodeRetrievalUnavailable {
		text = "The reference material is temporarily unavailable, so I cannot give a grounded answer right now. Please try again shortly."
	}

	return &models.Answer{
		Text:       text,
		Confidence: 0,
		AgentType:  route,
		Error:      string(code),
	}
}

// finish records metrics and schedules the post-return quality scoring.
// Scoring runs off the request path so it never adds latency.
func (c *Coordinator) finish(ctx context.Context, q models.Query, answer models.Answer, start time.Time) {
	status := "ok"
	switch {
	case answer.Cached:
		status = "cached"
	case answer.Degraded():
		status = "error"
	}

	route := string(answer.AgentType)
	elapsed := time.Since(start)

	metrics.QueriesTotal.WithLabelValues(route, status).Inc()
	metrics.AnswerDuration.WithLabelValues(route).Observe(elapsed.Seconds())
	if c.obs != nil {
		c.obs.RecordQueryProcessed(ctx, route, status)
		c.obs.RecordQueryDuration(ctx, elapsed, route)
	}

	if c.tracker == nil {
		return
	}
	go func() {
		var scores evaluation.Scores
		if c.evaluator != nil {
			scores = c.evaluator.Evaluate(q, answer)
		}
		c.tracker.Record(evaluation.Sample{
			Route:     answer.AgentType,
			LatencyMs: answer.ResponseTimeMs,
			Cached:    answer.Cached,
			Degraded:  answer.Degraded(),
			Scores:    scores,
		})
	}()
}

// Metrics reports the rolling operational summary plus cache counters.
func (c *Coordinator) Metrics() map[string]interface{} {
	out := map[string]interface{}{}
	if c.tracker != nil {
		summary := c.tracker.Summary()
		out["requests"] = summary.Count
		out["avg_latency_ms"] = summary.AvgLatencyMs
		out["error_rate"] = summary.ErrorRate
		out["avg_quality"] = summary.AvgQuality
		out["route_counts"] = summary.RouteCounts
	}
	if c.cache != nil {
		stats := c.cache.Stats()
		out["cache"] = map[string]interface{}{
			"hits":     stats.Hits,
			"misses":   stats.Misses,
			"size":     stats.Size,
			"hit_rate": stats.HitRate,
		}
	}
	return out
}

// Health probes each registered dependency with a short deadline and
// reports per-component status.
func (c *Coordinator) Health(ctx context.Context) map[string]string {
	out := make(map[string]string, len(c.health))
	for name, check := range c.health {
		probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := check(probeCtx); err != nil {
			out[name] = fmt.Sprintf("unhealthy: %v", err)
		} else {
			out[name] = "healthy"
		}
		cancel()
	}
	return out
}
