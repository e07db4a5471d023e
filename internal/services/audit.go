package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	auditrepo "github.com/upskillworks/roadmap-backend/internal/data/repos/audit"
	types "github.com/upskillworks/roadmap-backend/internal/domain"
	"github.com/upskillworks/roadmap-backend/internal/pkg/logger"
)

// AuditService records actions against engine entities. Fire and
// forget: a failed write is logged locally and never surfaces to the
// caller.
type AuditService interface {
	Record(ctx context.Context, actorID uuid.UUID, action string, targetType string, targetID uuid.UUID, meta map[string]any, success bool, opErr error)
}

type auditService struct {
	db   *gorm.DB
	log  *logger.Logger
	repo auditrepo.AuditLogRepo
}

func NewAuditService(db *gorm.DB, baseLog *logger.Logger, repo auditrepo.AuditLogRepo) AuditService {
	return &auditService{db: db, log: baseLog.With("service", "AuditService"), repo: repo}
}

func (s *auditService) Record(ctx context.Context, actorID uuid.UUID, action, targetType string, targetID uuid.UUID, meta map[string]any, success bool, opErr error) {
	metaJSON := datatypes.JSON([]byte("{}"))
	if len(meta) > 0 {
		if b, err := json.Marshal(meta); err == nil {
			metaJSON = datatypes.JSON(b)
		}
	}
	row := &types.AuditLog{
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Meta:       metaJSON,
		Success:    success,
	}
	if opErr != nil {
		row.ErrorMsg = opErr.Error()
	}
	if err := s.repo.Create(ctx, nil, row); err != nil {
		s.log.Warn("audit write failed", "action", action, "target_id", targetID, "error", err)
	}
}
