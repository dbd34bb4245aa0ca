// internal/storage/submissions_test.go
package storage

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gendra-backend/internal/common/database"
	stderrors "gendra-backend/internal/common/errors"
	"gendra-backend/internal/common/logger"
)

func newTestSubmissionStore(t *testing.T) (*SubmissionStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewSubmissionStore(&database.PostgresClient{DB: db}, logger.NewNoOpLogger()), mock
}

func TestSubmissionStore_Save(t *testing.T) {
	store, mock := newTestSubmissionStore(t)

	mock.ExpectExec("INSERT INTO quote_submissions").
		WillReturnResult(sqlmock.NewResult(0, 1))

	sub, err := store.Save(context.Background(), Submission{
		IndustryID:   "cnc-machining",
		Material:     "aluminum",
		Quantity:     100,
		Complexity:   "medium",
		Quote:        740,
		QuoteLow:     666,
		QuoteHigh:    814,
		CalculatedBy: "fallback",
		LeadEstimate: "10-14 business days",
		ContactEmail: "buyer@example.com",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, sub.ID)
	assert.False(t, sub.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionStore_SaveInsertFailure(t *testing.T) {
	store, mock := newTestSubmissionStore(t)

	mock.ExpectExec("INSERT INTO quote_submissions").
		WillReturnError(assert.AnError)

	_, err := store.Save(context.Background(), Submission{IndustryID: "sheet-metal"})

	var stdErr *stderrors.StandardError
	require.ErrorAs(t, err, &stdErr)
	assert.Equal(t, stderrors.ErrCodeDatabaseInsertFailed, stdErr.Code)
}
