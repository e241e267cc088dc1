// internal/retrieval/keyword.go
package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"smartborrow/internal/common/database"
	stderrors "smartborrow/internal/common/errors"
	"smartborrow/internal/common/logger"
	"smartborrow/internal/models"
)

// KeywordSource runs lexical match queries against an Elasticsearch index.
type KeywordSource struct {
	es     *database.ElasticsearchClient
	index  string
	logger logger.Logger
}

func NewKeywordSource(es *database.ElasticsearchClient, index string, log logger.Logger) *KeywordSource {
	return &KeywordSource{
		es:     es,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"source": "keyword"}),
	}
}

func (s *KeywordSource) Origin() models.Origin {
	return models.OriginKeyword
}

func (s *KeywordSource) Search(ctx context.Context, query string, k int) ([]models.RetrievedPassage, error) {
	esQuery := map[string]interface{}{
		"size": k,
		"query": map[string]interface{}{
			"match": map[string]interface{}{
				"text": map[string]interface{}{
					"query":     query,
					"operator":  "or",
					"fuzziness": "AUTO",
				},
			},
		},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(esQuery); err != nil {
		return nil, stderrors.NewSearchQueryFailedError("keyword", err)
	}

	res, err := s.es.Client.Search(
		s.es.Client.Search.WithContext(ctx),
		s.es.Client.Search.WithIndex(s.index),
		s.es.Client.Search.WithBody(&buf),
	)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, stderrors.NewSearchTimeoutError("keyword")
		}
		return nil, stderrors.NewSearchQueryFailedError("keyword", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		if res.StatusCode == 404 {
			return nil, stderrors.NewIndexNotFoundError(s.index)
		}
		return nil, stderrors.NewSearchQueryFailedError("keyword", fmt.Errorf("status %s", res.Status()))
	}

	var searchResult struct {
		Hits struct {
			Hits []struct {
				ID     string  `json:"_id"`
				Score  float64 `json:"_score"`
				Source struct {
					DocID   string                 `json:"doc_id"`
					Offset  int                    `json:"offset"`
					Text    string                 `json:"text"`
					Section string                 `json:"section"`
					Extra   map[string]interface{} `json:"extra"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&searchResult); err != nil {
		return nil, stderrors.NewSearchQueryFailedError("keyword", err)
	}

	passages := make([]models.RetrievedPassage, 0, len(searchResult.Hits.Hits))
	for _, hit := range searchResult.Hits.Hits {
		sourceID := hit.Source.DocID
		if sourceID == "" {
			sourceID = hit.ID
		} else {
			sourceID = fmt.Sprintf("%s:%d", sourceID, hit.Source.Offset)
		}

		metadata := map[string]interface{}{}
		if hit.Source.Section != "" {
			metadata["section"] = hit.Source.Section
		}
		for key, value := range hit.Source.Extra {
			metadata[key] = value
		}

		passages = append(passages, models.RetrievedPassage{
			SourceID: sourceID,
			Text:     strings.TrimSpace(hit.Source.Text),
			Score:    hit.Score,
			Origin:   models.OriginKeyword,
			Metadata: metadata,
		})
	}

	s.logger.Debug("keyword search completed", map[string]interface{}{
		"hitCount": len(passages),
	})

	return passages, nil
}
