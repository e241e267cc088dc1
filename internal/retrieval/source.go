// internal/retrieval/source.go
package retrieval

import (
	"context"

	"smartborrow/internal/models"
)

// Source is one retrieval modality. Search returns up to k scored candidate
// passages for the query text; raw scores use the source's native scale and
// are normalized by the retriever before fusion.
type Source interface {
	Origin() models.Origin
	Search(ctx context.Context, query string, k int) ([]models.RetrievedPassage, error)
}
