// internal/retrieval/metadata.go
package retrieval

import (
	"context"
	"database/sql"

	stderrors "smartborrow/internal/common/errors"
	"smartborrow/internal/common/logger"
	"smartborrow/internal/models"
)

// metadataSearchQuery ranks passages by full-text match over the structured
// passage store. ts_rank scores are already comparable within one result set;
// normalization to [0,1] happens in the retriever.
const metadataSearchQuery = `
	SELECT doc_id, "offset", text, section,
	       ts_rank(search_vector, plainto_tsquery('english', $1)) AS rank
	FROM passages
	WHERE search_vector @@ plainto_tsquery('english', $1)
	ORDER BY rank DESC
	LIMIT $2`

// MetadataSource retrieves passages from the structured PostgreSQL store,
// where each chunk carries document, section and offset columns.
type MetadataSource struct {
	db     *sql.DB
	logger logger.Logger
}

func NewMetadataSource(db *sql.DB, log logger.Logger) *MetadataSource {
	return &MetadataSource{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"source": "metadata"}),
	}
}

func (s *MetadataSource) Origin() models.Origin {
	return models.OriginMetadata
}

func (s *MetadataSource) Search(ctx context.Context, query string, k int) ([]models.RetrievedPassage, error) {
	rows, err := s.db.QueryContext(ctx, metadataSearchQuery, query, k)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, stderrors.NewSearchTimeoutError("metadata")
		}
		return nil, stderrors.NewSearchQueryFailedError("metadata", err)
	}
	defer rows.Close()

	var passages []models.RetrievedPassage
	for rows.Next() {
		var docID, text string
		var section sql.NullString
		var offset int
		var rank float64

		if err := rows.Scan(&docID, &offset, &text, &section, &rank); err != nil {
			return nil, stderrors.NewSearchQueryFailedError("metadata", err)
		}

		metadata := map[string]interface{}{}
		if section.Valid {
			metadata["section"] = section.String
		}

		passages = append(passages, models.RetrievedPassage{
			SourceID: passageID(docID, offset),
			Text:     text,
			Score:    rank,
			Origin:   models.OriginMetadata,
			Metadata: metadata,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, stderrors.NewSearchQueryFailedError("metadata", err)
	}

	s.logger.Debug("metadata search completed", map[string]interface{}{
		"hitCount": len(passages),
	})

	return passages, nil
}
