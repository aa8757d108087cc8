package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/bandwise/bandwise-go-api/internal/models"
)

// ScoreRecordRepository exposes persistence helpers for scoring history.
type ScoreRecordRepository interface {
	Create(ctx context.Context, record *models.ScoreRecord) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.ScoreRecord, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
}

// NewScoreRecordRepository constructs a score record repository.
func NewScoreRecordRepository(db *gorm.DB) ScoreRecordRepository {
	return &scoreRecordRepository{db: db}
}

type scoreRecordRepository struct {
	db *gorm.DB
}

func (r *scoreRecordRepository) Create(ctx context.Context, record *models.ScoreRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *scoreRecordRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.ScoreRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var records []models.ScoreRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *scoreRecordRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ScoreRecord{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}
