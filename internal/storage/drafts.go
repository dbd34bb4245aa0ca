// Package storage persists parsed RFQ drafts and submitted quotes in
// Postgres, with a Redis read-through cache in front of draft lookups.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"gendra-backend/internal/common/database"
	stderrors "gendra-backend/internal/common/errors"
	"gendra-backend/internal/common/logger"
	"gendra-backend/internal/rfq"
)

// Draft is a parsed RFQ held for review before quote submission.
type Draft struct {
	ID             string            `json:"id"`
	UserID         string            `json:"userId,omitempty"`
	Record         rfq.StructuredRFQ `json:"record"`
	// SourceText is the raw text the record was extracted from, kept for
	// review and re-parsing.
	SourceText     string    `json:"sourceText,omitempty"`
	Classification string    `json:"classification"`
	ModelUsed      string    `json:"modelUsed"`
	CreatedAt      time.Time `json:"createdAt"`
}

const draftCacheKeyPrefix = "rfq:draft:"

// DraftStore reads and writes drafts. The cache is optional; a nil cache
// client means every read hits Postgres.
type DraftStore struct {
	db       *database.PostgresClient
	cache    *database.RedisClient
	cacheTTL time.Duration
	logger   logger.Logger
}

func NewDraftStore(db *database.PostgresClient, cache *database.RedisClient, cacheTTL time.Duration, log logger.Logger) *DraftStore {
	return &DraftStore{
		db:       db,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger: log.WithFields(map[string]interface{}{
			"component": "draft-store",
		}),
	}
}

// Save inserts a new draft and returns it with its assigned ID. The stored
// record is the full structured RFQ as JSONB.
func (s *DraftStore) Save(ctx context.Context, draft Draft) (Draft, error) {
	draft.ID = uuid.NewString()
	draft.CreatedAt = time.Now().UTC()

	recordJSON, err := json.Marshal(draft.Record)
	if err != nil {
		return Draft{}, stderrors.NewDatabaseInsertFailedError(err)
	}

	const query = `
		INSERT INTO rfq_drafts (id, user_id, record, source_text, classification, model_used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if _, err := s.db.Exec(ctx, query,
		draft.ID, draft.UserID, recordJSON, draft.SourceText, draft.Classification, draft.ModelUsed, draft.CreatedAt,
	); err != nil {
		return Draft{}, stderrors.NewDatabaseInsertFailedError(err)
	}

	s.cacheSet(ctx, draft)

	s.logger.Info("draft saved", map[string]interface{}{
		"draftId":        draft.ID,
		"classification": draft.Classification,
	})
	return draft, nil
}

// Get returns a draft by ID, consulting the cache first.
func (s *DraftStore) Get(ctx context.Context, draftID string) (Draft, error) {
	if draft, ok := s.cacheGet(ctx, draftID); ok {
		return draft, nil
	}

	const query = `
		SELECT id, user_id, record, source_text, classification, model_used, created_at
		FROM rfq_drafts
		WHERE id = $1`

	var (
		draft      Draft
		recordJSON []byte
	)
	err := s.db.QueryRow(ctx, query, draftID).Scan(
		&draft.ID, &draft.UserID, &recordJSON, &draft.SourceText, &draft.Classification, &draft.ModelUsed, &draft.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return Draft{}, stderrors.NewDraftNotFoundError(draftID)
	}
	if err != nil {
		return Draft{}, stderrors.NewDatabaseConnectionFailedError(err)
	}

	if err := json.Unmarshal(recordJSON, &draft.Record); err != nil {
		return Draft{}, stderrors.NewDatabaseConnectionFailedError(err)
	}

	s.cacheSet(ctx, draft)
	return draft, nil
}

// MarkReviewed flips the stored record's review flag and invalidates the
// cached copy.
func (s *DraftStore) MarkReviewed(ctx context.Context, draftID string) error {
	const query = `
		UPDATE rfq_drafts
		SET record = jsonb_set(record, '{is_reviewed}', 'true')
		WHERE id = $1`

	result, err := s.db.Exec(ctx, query, draftID)
	if err != nil {
		return stderrors.NewDatabaseInsertFailedError(err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return stderrors.NewDraftNotFoundError(draftID)
	}

	if s.cache != nil {
		if err := s.cache.Del(ctx, draftCacheKeyPrefix+draftID); err != nil {
			s.logger.Warn("failed to invalidate draft cache", map[string]interface{}{
				"draftId": draftID,
				"error":   err.Error(),
			})
		}
	}
	return nil
}

// cacheGet returns a cached draft. Cache failures degrade to a miss.
func (s *DraftStore) cacheGet(ctx context.Context, draftID string) (Draft, bool) {
	if s.cache == nil {
		return Draft{}, false
	}

	raw, err := s.cache.Get(ctx, draftCacheKeyPrefix+draftID)
	if err != nil {
		return Draft{}, false
	}

	var draft Draft
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return Draft{}, false
	}
	return draft, true
}

func (s *DraftStore) cacheSet(ctx context.Context, draft Draft) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(draft)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, draftCacheKeyPrefix+draft.ID, payload, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache draft", map[string]interface{}{
			"draftId": draft.ID,
			"error":   err.Error(),
		})
	}
}
