package usage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/upskillworks/roadmap-backend/internal/domain"
	"github.com/upskillworks/roadmap-backend/internal/pkg/logger"
)

type LLMUsageRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.LLMUsageRecord) error
	SumCallsSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) (int, error)
}

type llmUsageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLLMUsageRepo(db *gorm.DB, baseLog *logger.Logger) LLMUsageRepo {
	return &llmUsageRepo{db: db, log: baseLog.With("repo", "LLMUsageRepo")}
}

func (r *llmUsageRepo) Create(ctx context.Context, tx *gorm.DB, row *types.LLMUsageRecord) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return t.WithContext(ctx).Create(row).Error
}

func (r *llmUsageRepo) SumCallsSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) (int, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var total int
	if err := t.WithContext(ctx).
		Model(&types.LLMUsageRecord{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Select("COALESCE(SUM(call_count), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
