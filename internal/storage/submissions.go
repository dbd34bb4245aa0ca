// internal/storage/submissions.go
package storage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"gendra-backend/internal/common/database"
	stderrors "gendra-backend/internal/common/errors"
	"gendra-backend/internal/common/logger"
)

// Submission is a customer-confirmed quote request.
type Submission struct {
	ID           string    `json:"id"`
	DraftID      string    `json:"draftId,omitempty"`
	IndustryID   string    `json:"industryId"`
	Material     string    `json:"material"`
	Quantity     int       `json:"quantity"`
	Complexity   string    `json:"complexity"`
	Quote        float64   `json:"quote"`
	QuoteLow     float64   `json:"quoteLow"`
	QuoteHigh    float64   `json:"quoteHigh"`
	CalculatedBy string    `json:"calculatedBy"`
	LeadEstimate string    `json:"leadEstimate"`
	ContactEmail string    `json:"contactEmail,omitempty"`
	ContactPhone string    `json:"contactPhone,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SubmissionStore persists quote submissions.
type SubmissionStore struct {
	db     *database.PostgresClient
	logger logger.Logger
}

func NewSubmissionStore(db *database.PostgresClient, log logger.Logger) *SubmissionStore {
	return &SubmissionStore{
		db: db,
		logger: log.WithFields(map[string]interface{}{
			"component": "submission-store",
		}),
	}
}

// Save inserts a submission and returns it with its assigned ID.
func (s *SubmissionStore) Save(ctx context.Context, sub Submission) (Submission, error) {
	sub.ID = uuid.NewString()
	sub.CreatedAt = time.Now().UTC()

	const query = `
		INSERT INTO quote_submissions
			(id, draft_id, industry_id, material, quantity, complexity,
			 quote, quote_low, quote_high, calculated_by, lead_estimate,
			 contact_email, contact_phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	if _, err := s.db.Exec(ctx, query,
		sub.ID, sub.DraftID, sub.IndustryID, sub.Material, sub.Quantity, sub.Complexity,
		sub.Quote, sub.QuoteLow, sub.QuoteHigh, sub.CalculatedBy, sub.LeadEstimate,
		sub.ContactEmail, sub.ContactPhone, sub.CreatedAt,
	); err != nil {
		return Submission{}, stderrors.NewDatabaseInsertFailedError(err)
	}

	s.logger.Info("quote submission saved", map[string]interface{}{
		"submissionId": sub.ID,
		"industryId":   sub.IndustryID,
		"quote":        sub.Quote,
	})
	return sub, nil
}
