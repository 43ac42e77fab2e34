package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/socratia/socratia-backend/internal/platform/logger"
	"github.com/socratia/socratia-backend/internal/types"
)

type FeedbackEventRepo interface {
	Create(ctx context.Context, tx *gorm.DB, event *types.FeedbackEvent) error
	ListRecentForUser(ctx context.Context, tx *gorm.DB, userID string, limit int) ([]*types.FeedbackEvent, error)
}

type feedbackEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFeedbackEventRepo(db *gorm.DB, baseLog *logger.Logger) FeedbackEventRepo {
	return &feedbackEventRepo{
		db:  db,
		log: baseLog.With("repo", "FeedbackEventRepo"),
	}
}

func (r *feedbackEventRepo) Create(ctx context.Context, tx *gorm.DB, event *types.FeedbackEvent) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if event == nil {
		return nil
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	return transaction.WithContext(ctx).Create(event).Error
}

func (r *feedbackEventRepo) ListRecentForUser(ctx context.Context, tx *gorm.DB, userID string, limit int) ([]*types.FeedbackEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if userID == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 100
	}
	var rows []*types.FeedbackEvent
	err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
