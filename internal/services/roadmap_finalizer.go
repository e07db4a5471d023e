package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/upskillworks/roadmap-backend/internal/domain"
	pkgerrors "github.com/upskillworks/roadmap-backend/internal/pkg/errors"
)

// FinalizeRoadmap promotes a DRAFT version to FINAL, archiving the
// project's previous FINAL in the same transaction. The guarded
// UPDATE predicates make concurrent finalize calls on one project
// resolve to exactly one winner. Export rendering happens after the
// commit and is non-fatal: a failed export is logged and audited but
// the version stays FINAL.
func (s *roadmapService) FinalizeRoadmap(ctx context.Context, actorID, roadmapID uuid.UUID) error {
	version, err := s.versionRepo.GetByID(ctx, nil, roadmapID)
	if err != nil {
		return err
	}
	if _, err := s.requireProjectConsultant(ctx, nil, actorID, version.ProjectID); err != nil {
		return err
	}
	if version.Status != types.RoadmapStatusDraft {
		return fmt.Errorf("%w: only DRAFT versions can be finalized", pkgerrors.ErrInvalidStateTransition)
	}
	if !version.FreeToolValidated || !version.TimeLimitValidated {
		return pkgerrors.ErrValidationBlocked
	}

	var staleExportKey string
	now := time.Now().UTC()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		prior, err := s.versionRepo.GetFinalByProjectID(ctx, tx, version.ProjectID)
		if err != nil {
			return err
		}
		if prior != nil {
			staleExportKey = prior.ExportObjectKey
		}
		if err := s.versionRepo.MarkArchivedIfFinal(ctx, tx, version.ProjectID); err != nil {
			return err
		}
		if err := s.versionRepo.MarkFinal(ctx, tx, roadmapID, now); err != nil {
			return err
		}
		return s.projectRepo.SetStatus(ctx, tx, version.ProjectID, types.ProjectStatusRoadmapDelivered)
	})
	if err != nil {
		s.audit.Record(ctx, actorID, "roadmap.finalize", "roadmap_version", roadmapID, nil, false, err)
		return err
	}

	s.audit.Record(ctx, actorID, "roadmap.finalize", "roadmap_version", roadmapID, map[string]any{
		"project_id":     version.ProjectID,
		"version_number": version.VersionNumber,
	}, true, nil)

	// Post-commit side effects: stale export cleanup and the new
	// canonical export. Both are best-effort.
	if staleExportKey != "" {
		if err := s.export.RemoveExport(ctx, staleExportKey); err != nil {
			s.log.Warn("stale export cleanup failed", "roadmap_id", roadmapID, "key", staleExportKey, "error", err)
		}
	}

	finalized, err := s.versionRepo.GetByID(ctx, nil, roadmapID)
	if err != nil {
		s.log.Warn("reload after finalize failed, skipping export", "roadmap_id", roadmapID, "error", err)
		return nil
	}
	key, err := s.export.ExportFinalRoadmap(ctx, finalized)
	if err != nil {
		s.log.Error("final roadmap export failed", "roadmap_id", roadmapID, "error", err)
		s.audit.Record(ctx, actorID, "roadmap.export", "roadmap_version", roadmapID, nil, false, err)
		return nil
	}
	if err := s.versionRepo.Update(ctx, nil, roadmapID, map[string]any{"export_object_key": key}); err != nil {
		s.log.Warn("recording export key failed", "roadmap_id", roadmapID, "key", key, "error", err)
	}
	return nil
}
