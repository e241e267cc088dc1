// internal/retrieval/hybrid_test.go
package retrieval

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "smartborrow/internal/common/errors"
	"smartborrow/internal/common/logger"
	"smartborrow/internal/models"
)

// ==========================
// Test Helpers
// ==========================

type fakeSource struct {
	origin   models.Origin
	passages []models.RetrievedPassage
	err      error
	calls    atomic.Int32
}

func (f *fakeSource) Origin() models.Origin { return f.origin }

func (f *fakeSource) Search(ctx context.Context, query string, k int) ([]models.RetrievedPassage, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.passages, nil
}

func passage(id string, score float64, origin models.Origin, text string) models.RetrievedPassage {
	return models.RetrievedPassage{SourceID: id, Text: text, Score: score, Origin: origin}
}

func newRetriever(t *testing.T, opts Options, sources ...Source) *HybridRetriever {
	t.Helper()
	return NewHybridRetriever(sources, opts, logger.NewTestLogger(t))
}

// ==========================
// Fusion Tests
// ==========================

func TestRetrieve_FusesAcrossSources(t *testing.T) {
	semantic := &fakeSource{origin: models.OriginSemantic, passages: []models.RetrievedPassage{
		passage("doc1:0", 0.9, models.OriginSemantic, "semantic top"),
		passage("doc2:0", 0.5, models.OriginSemantic, "semantic mid"),
	}}
	keyword := &fakeSource{origin: models.OriginKeyword, passages: []models.RetrievedPassage{
		passage("doc3:0", 12.0, models.OriginKeyword, "keyword top"),
		passage("doc4:0", 3.0, models.OriginKeyword, "keyword low"),
	}}

	r := newRetriever(t, Options{TopK: 3}, semantic, keyword)
	ctx, err := r.Retrieve(context.Background(), models.NewQuery("what is a subsidized loan", nil))

	require.NoError(t, err)
	assert.False(t, ctx.Partial)
	assert.Len(t, ctx.Passages, 3)
	// Each source's best passage normalizes to 1.0, so with equal weights
	// the two leaders share the top.
	top := map[string]bool{ctx.Passages[0].SourceID: true, ctx.Passages[1].SourceID: true}
	assert.True(t, top["doc1:0"])
	assert.True(t, top["doc3:0"])
}

func TestRetrieve_DedupesKeepingMaxScore(t *testing.T) {
	semantic := &fakeSource{origin: models.OriginSemantic, passages: []models.RetrievedPassage{
		passage("doc1:0", 0.9, models.OriginSemantic, "shared passage"),
		passage("doc2:0", 0.1, models.OriginSemantic, "weak passage"),
	}}
	keyword := &fakeSource{origin: models.OriginKeyword, passages: []models.RetrievedPassage{
		passage("doc1:0", 1.0, models.OriginKeyword, "shared passage"),
		passage("doc5:0", 9.0, models.OriginKeyword, "other passage"),
	}}

	r := newRetriever(t, Options{TopK: 10}, semantic, keyword)
	ctx, err := r.Retrieve(context.Background(), models.NewQuery("loan question", nil))

	require.NoError(t, err)
	seen := map[string]int{}
	for _, p := range ctx.Passages {
		seen[p.SourceID]++
	}
	assert.Equal(t, 1, seen["doc1:0"], "duplicate passage must collapse to one entry")
	assert.Len(t, ctx.Passages, 3)
}

func TestRetrieve_TieBreaksTowardShorterPassage(t *testing.T) {
	// Single source, two passages with identical raw scores: both normalize
	// to 1.0 and the shorter text must sort first.
	src := &fakeSource{origin: models.OriginSemantic, passages: []models.RetrievedPassage{
		passage("doc-long:0", 0.8, models.OriginSemantic, strings.Repeat("long text ", 20)),
		passage("doc-short:0", 0.8, models.OriginSemantic, "short"),
	}}

	r := newRetriever(t, Options{TopK: 2}, src)
	ctx, err := r.Retrieve(context.Background(), models.NewQuery("anything", nil))

	require.NoError(t, err)
	require.Len(t, ctx.Passages, 2)
	assert.Equal(t, "doc-short:0", ctx.Passages[0].SourceID)
}

func TestRetrieve_AppliesConfiguredWeights(t *testing.T) {
	semantic := &fakeSource{origin: models.OriginSemantic, passages: []models.RetrievedPassage{
		passage("sem:0", 1.0, models.OriginSemantic, "semantic"),
	}}
	keyword := &fakeSource{origin: models.OriginKeyword, passages: []models.RetrievedPassage{
		passage("kw:0", 1.0, models.OriginKeyword, "keyword"),
	}}

	r := newRetriever(t, Options{
		TopK:    2,
		Weights: map[string]float64{"semantic": 0.9, "keyword": 0.1},
	}, semantic, keyword)

	ctx, err := r.Retrieve(context.Background(), models.NewQuery("anything", nil))
	require.NoError(t, err)
	require.Len(t, ctx.Passages, 2)
	assert.Equal(t, "sem:0", ctx.Passages[0].SourceID)
	assert.Greater(t, ctx.Passages[0].Score, ctx.Passages[1].Score)
}

// ==========================
// Degradation Tests
// ==========================

func TestRetrieve_PartialWhenOneSourceFails(t *testing.T) {
	healthy := &fakeSource{origin: models.OriginSemantic, passages: []models.RetrievedPassage{
		passage("doc1:0", 0.9, models.OriginSemantic, "still here"),
	}}
	failing := &fakeSource{origin: models.OriginKeyword, err: stderrors.NewSearchTimeoutError("keyword")}

	r := newRetriever(t, Options{TopK: 3}, healthy, failing)
	ctx, err := r.Retrieve(context.Background(), models.NewQuery("loan question", nil))

	require.NoError(t, err)
	assert.True(t, ctx.Partial)
	assert.Len(t, ctx.Passages, 1)
}

func TestRetrieve_ErrorWhenAllSourcesFail(t *testing.T) {
	failing1 := &fakeSource{origin: models.OriginSemantic, err: stderrors.NewSearchTimeoutError("semantic")}
	failing2 := &fakeSource{origin: models.OriginKeyword, err: stderrors.NewSearchQueryFailedError("keyword", assert.AnError)}

	r := newRetriever(t, Options{TopK: 3}, failing1, failing2)
	_, err := r.Retrieve(context.Background(), models.NewQuery("loan question", nil))

	require.Error(t, err)
	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeRetrievalUnavailable, stdErr.Code)
}

// ==========================
// Budget Tests
// ==========================

func TestRetrieve_EnforcesContextBudget(t *testing.T) {
	src := &fakeSource{origin: models.OriginSemantic, passages: []models.RetrievedPassage{
		passage("doc1:0", 0.9, models.OriginSemantic, strings.Repeat("a", 80)),
		passage("doc2:0", 0.8, models.OriginSemantic, strings.Repeat("b", 80)),
	}}

	r := newRetriever(t, Options{TopK: 2, ContextBudget: 100}, src)
	ctx, err := r.Retrieve(context.Background(), models.NewQuery("anything", nil))

	require.NoError(t, err)
	require.Len(t, ctx.Passages, 2)
	total := 0
	for _, p := range ctx.Passages {
		total += len(p.Text)
	}
	assert.Equal(t, 100, total)
	assert.Equal(t, 60, ctx.TruncatedChars)
}

func TestRetrieve_MultiQueryFansOutVariants(t *testing.T) {
	src := &fakeSource{origin: models.OriginSemantic, passages: []models.RetrievedPassage{
		passage("doc1:0", 0.9, models.OriginSemantic, "text"),
	}}

	r := newRetriever(t, Options{TopK: 3, MultiQuery: true}, src)
	_, err := r.Retrieve(context.Background(), models.NewQuery("loan forgiveness rules", nil))

	require.NoError(t, err)
	assert.Greater(t, src.calls.Load(), int32(1), "multi-query should issue one call per variant")
}

// ==========================
// Normalization Tests
// ==========================

func TestNormalizeScores(t *testing.T) {
	tests := []struct {
		name     string
		scores   []float64
		expected []float64
	}{
		{
			name:     "spread rescales to unit interval",
			scores:   []float64{2, 6, 10},
			expected: []float64{0, 0.5, 1},
		},
		{
			name:     "flat distribution maps to one",
			scores:   []float64{4, 4},
			expected: []float64{1, 1},
		},
		{
			name:     "single passage maps to one",
			scores:   []float64{7.3},
			expected: []float64{1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			passages := make([]models.RetrievedPassage, len(tt.scores))
			for i, s := range tt.scores {
				passages[i] = passage("p", s, models.OriginKeyword, "x")
			}
			out := normalizeScores(passages)
			for i, want := range tt.expected {
				assert.InDelta(t, want, out[i].Score, 1e-9)
			}
		})
	}
}
