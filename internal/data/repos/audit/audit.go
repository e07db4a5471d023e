package audit

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/upskillworks/roadmap-backend/internal/domain"
	"github.com/upskillworks/roadmap-backend/internal/pkg/logger"
)

type AuditLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.AuditLog) error
	ListByTargetID(ctx context.Context, tx *gorm.DB, targetID uuid.UUID) ([]*types.AuditLog, error)
}

type auditLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAuditLogRepo(db *gorm.DB, baseLog *logger.Logger) AuditLogRepo {
	return &auditLogRepo{db: db, log: baseLog.With("repo", "AuditLogRepo")}
}

func (r *auditLogRepo) Create(ctx context.Context, tx *gorm.DB, row *types.AuditLog) error {
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
	return t.WithContext(ctx).Create(row).Error
}

func (r *auditLogRepo) ListByTargetID(ctx context.Context, tx *gorm.DB, targetID uuid.UUID) ([]*types.AuditLog, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var rows []*types.AuditLog
	if err := t.WithContext(ctx).
		Where("target_id = ?", targetID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
