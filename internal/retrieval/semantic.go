// internal/retrieval/semantic.go
package retrieval

import (
	"context"
	"errors"
	"fmt"

	"smartborrow/internal/clients/semanticindex"
	stderrors "smartborrow/internal/common/errors"
	"smartborrow/internal/common/logger"
	"smartborrow/internal/models"
)

// SemanticSource retrieves passages by embedding similarity through the
// external index collaborator.
type SemanticSource struct {
	index  semanticindex.Index
	logger logger.Logger
}

func NewSemanticSource(index semanticindex.Index, log logger.Logger) *SemanticSource {
	return &SemanticSource{
		index:  index,
		logger: log.WithFields(map[string]interface{}{"source": "semantic"}),
	}
}

func (s *SemanticSource) Origin() models.Origin {
	return models.OriginSemantic
}

func (s *SemanticSource) Search(ctx context.Context, query string, k int) ([]models.RetrievedPassage, error) {
	hits, err := s.index.Search(ctx, query, k)
	if err != nil {
		if errors.Is(err, semanticindex.ErrIndexTimeout) {
			return nil, stderrors.NewSearchTimeoutError("semantic")
		}
		return nil, stderrors.NewSearchQueryFailedError("semantic", err)
	}

	passages := make([]models.RetrievedPassage, 0, len(hits))
	for _, hit := range hits {
		sourceID := hit.ID
		if docID, ok := hit.Metadata["doc_id"].(string); ok {
			offset := 0
			if v, ok := hit.Metadata["offset"].(float64); ok {
				offset = int(v)
			}
			sourceID = passageID(docID, offset)
		}

		passages = append(passages, models.RetrievedPassage{
			SourceID: sourceID,
			Text:     hit.Text,
			Score:    hit.Score,
			Origin:   models.OriginSemantic,
			Metadata: hit.Metadata,
		})
	}

	s.logger.Debug("semantic search completed", map[string]interface{}{
		"hitCount": len(passages),
	})

	return passages, nil
}

// passageID builds the canonical document+offset identity shared by all
// sources so cross-source duplicates collapse during fusion.
func passageID(docID string, offset int) string {
	return fmt.Sprintf("%s:%d", docID, offset)
}
