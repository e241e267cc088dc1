// internal/evaluation/tracker.go
package evaluation

import (
	"sync"

	"smartborrow/internal/models"
)

// Sample is one observed request outcome.
type Sample struct {
	Route     models.AgentRoute
	LatencyMs int64
	Cached    bool
	Degraded  bool
	Scores    Scores
}

// Summary aggregates the tracked window.
type Summary struct {
	Count        int                       `json:"count"`
	AvgLatencyMs float64                   `json:"avgLatencyMs"`
	CacheHitRate float64                   `json:"cacheHitRate"`
	ErrorRate    float64                   `json:"errorRate"`
	AvgQuality   float64                   `json:"avgQuality"`
	RouteCounts  map[models.AgentRoute]int `json:"routeCounts"`
}

// PerformanceTracker keeps a bounded ring of recent request samples so the
// metrics endpoint can report rolling quality and latency without unbounded
// growth.
type PerformanceTracker struct {
	mu      sync.Mutex
	samples []Sample
	next    int
	filled  bool
}

// NewPerformanceTracker creates a tracker holding the most recent `window`
// samples.
func NewPerformanceTracker(window int) *PerformanceTracker {
	if window <= 0 {
		window = 500
	}
	return &PerformanceTracker{samples: make([]Sample, window)}
}

func (t *PerformanceTracker) Record(s Sample) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.samples[t.next] = s
	t.next++
	if t.next == len(t.samples) {
		t.next = 0
		t.filled = true
	}
}

func (t *PerformanceTracker) Summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.next
	if t.filled {
		n = len(t.samples)
	}

	out := Summary{RouteCounts: make(map[models.AgentRoute]int)}
	if n == 0 {
		return out
	}

	var latencySum, qualitySum float64
	var hits, errors int
	for i := 0; i < n; i++ {
		s := t.samples[i]
		latencySum += float64(s.LatencyMs)
		qualitySum += s.Scores.Overall()
		if s.Cached {
			hits++
		}
		if s.Degraded {
			errors++
		}
		out.RouteCounts[s.Route]++
	}

	out.Count = n
	out.AvgLatencyMs = latencySum / float64(n)
	out.CacheHitRate = float64(hits) / float64(n)
	out.ErrorRate = float64(errors) / float64(n)
	out.AvgQuality = qualitySum / float64(n)
	return out
}
