// internal/evaluation/tracker_test.go
package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"smartborrow/internal/models"
)

func TestPerformanceTracker_Summary(t *testing.T) {
	tr := NewPerformanceTracker(10)

	tr.Record(Sample{Route: models.RouteLoanSpecialist, LatencyMs: 100, Cached: false})
	tr.Record(Sample{Route: models.RouteLoanSpecialist, LatencyMs: 10, Cached: true})
	tr.Record(Sample{Route: models.RouteFallback, LatencyMs: 40, Degraded: true})

	s := tr.Summary()
	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 50.0, s.AvgLatencyMs, 1e-9)
	assert.InDelta(t, 1.0/3.0, s.CacheHitRate, 1e-9)
	assert.InDelta(t, 1.0/3.0, s.ErrorRate, 1e-9)
	assert.Equal(t, 2, s.RouteCounts[models.RouteLoanSpecialist])
	assert.Equal(t, 1, s.RouteCounts[models.RouteFallback])
}

func TestPerformanceTracker_BoundedWindow(t *testing.T) {
	tr := NewPerformanceTracker(5)

	for i := 0; i < 20; i++ {
		tr.Record(Sample{Route: models.RouteFallback, LatencyMs: int64(i)})
	}

	s := tr.Summary()
	assert.Equal(t, 5, s.Count, "window must stay bounded")
	// Only the last five samples (15..19) remain.
	assert.InDelta(t, 17.0, s.AvgLatencyMs, 1e-9)
}

func TestPerformanceTracker_EmptySummary(t *testing.T) {
	tr := NewPerformanceTracker(5)
	s := tr.Summary()
	assert.Zero(t, s.Count)
	assert.Zero(t, s.AvgLatencyMs)
}
