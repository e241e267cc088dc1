// internal/retrieval/metadata_test.go
package retrieval

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	stderrors "smartborrow/internal/common/errors"
	"smartborrow/internal/common/logger"
	"smartborrow/internal/models"
)

func TestMetadataSource_Search(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"doc_id", "offset", "text", "section", "rank"}).
		AddRow("loan-guide", 0, "Subsidized loans do not accrue interest while enrolled.", "interest", 0.82).
		AddRow("loan-guide", 1, "Unsubsidized loans accrue interest from disbursement.", "interest", 0.63)

	mock.ExpectQuery("SELECT doc_id").
		WithArgs("subsidized loan interest", 5).
		WillReturnRows(rows)

	src := NewMetadataSource(db, logger.NewTestLogger(t))
	passages, err := src.Search(context.Background(), "subsidized loan interest", 5)

	require.NoError(t, err)
	require.Len(t, passages, 2)
	assert.Equal(t, "loan-guide:0", passages[0].SourceID)
	assert.Equal(t, models.OriginMetadata, passages[0].Origin)
	assert.Equal(t, 0.82, passages[0].Score)
	assert.Equal(t, "interest", passages[0].Metadata["section"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMetadataSource_Search_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT doc_id").
		WithArgs("anything", 3).
		WillReturnError(assert.AnError)

	src := NewMetadataSource(db, logger.NewTestLogger(t))
	_, err = src.Search(context.Background(), "anything", 3)

	require.Error(t, err)
	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeSearchQueryFailed, stdErr.Code)
}

func TestMetadataSource_Search_NoResults(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT doc_id").
		WithArgs("nothing relevant", 3).
		WillReturnRows(sqlmock.NewRows([]string{"doc_id", "offset", "text", "section", "rank"}))

	src := NewMetadataSource(db, logger.NewTestLogger(t))
	passages, err := src.Search(context.Background(), "nothing relevant", 3)

	require.NoError(t, err)
	assert.Empty(t, passages)
}
