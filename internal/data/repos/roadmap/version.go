package roadmap

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/upskillworks/roadmap-backend/internal/domain"
	pkgerrors "github.com/upskillworks/roadmap-backend/internal/pkg/errors"
	"github.com/upskillworks/roadmap-backend/internal/pkg/logger"
)

// RoadmapVersionRepo is the versioned artifact store. It is
// status-agnostic plumbing: the guarded status helpers exist for the
// finalize flow and are not called from anywhere else.
type RoadmapVersionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.RoadmapVersion) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.RoadmapVersion, error)
	ListByProjectID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.RoadmapVersion, error)
	GetFinalByProjectID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) (*types.RoadmapVersion, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, patch map[string]any) error

	// MarkArchivedIfFinal demotes the project's current FINAL version,
	// if any. Safe to call when none exists.
	MarkArchivedIfFinal(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) error
	// MarkFinal promotes a DRAFT version. It reports
	// ErrInvalidStateTransition when the row is missing or not DRAFT,
	// which is what makes concurrent finalize calls lose cleanly.
	MarkFinal(ctx context.Context, tx *gorm.DB, id uuid.UUID, finalizedAt time.Time) error
}

type roadmapVersionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRoadmapVersionRepo(db *gorm.DB, baseLog *logger.Logger) RoadmapVersionRepo {
	return &roadmapVersionRepo{db: db, log: baseLog.With("repo", "RoadmapVersionRepo")}
}

func (r *roadmapVersionRepo) Create(ctx context.Context, tx *gorm.DB, row *types.RoadmapVersion) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.ProjectID == uuid.Nil {
		return pkgerrors.ErrInvalidArgument
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now

	// The MAX read and the insert share a transaction, and the unique
	// index on (project_id, version_number) rejects the loser of any
	// remaining race, so numbers stay contiguous from 1.
	var maxNumber int
	if err := t.WithContext(ctx).
		Model(&types.RoadmapVersion{}).
		Where("project_id = ?", row.ProjectID).
		Select("COALESCE(MAX(version_number), 0)").
		Scan(&maxNumber).Error; err != nil {
		return err
	}
	row.VersionNumber = maxNumber + 1

	return t.WithContext(ctx).Create(row).Error
}

func (r *roadmapVersionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.RoadmapVersion, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	row := &types.RoadmapVersion{}
	if err := t.WithContext(ctx).
		Where("id = ?", id).
		First(row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrNotFound
		}
		return nil, err
	}
	return row, nil
}

func (r *roadmapVersionRepo) ListByProjectID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.RoadmapVersion, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var rows []*types.RoadmapVersion
	if err := t.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("version_number DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *roadmapVersionRepo) GetFinalByProjectID(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) (*types.RoadmapVersion, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	row := &types.RoadmapVersion{}
	if err := t.WithContext(ctx).
		Where("project_id = ? AND status = ?", projectID, types.RoadmapStatusFinal).
		Limit(1).
		Find(row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return row, nil
}

func (r *roadmapVersionRepo) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, patch map[string]any) error {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(patch) == 0 {
		return nil
	}
	patch["updated_at"] = time.Now().UTC()
	res := t.WithContext(ctx).
		Model(&types.RoadmapVersion{}).
		Where("id = ?", id).
		Updates(patch)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrNotFound
	}
	return nil
}

func (r *roadmapVersionRepo) MarkArchivedIfFinal(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).
		Model(&types.RoadmapVersion{}).
		Where("project_id = ? AND status = ?", projectID, types.RoadmapStatusFinal).
		Updates(map[string]any{
			"status":     types.RoadmapStatusArchived,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *roadmapVersionRepo) MarkFinal(ctx context.Context, tx *gorm.DB, id uuid.UUID, finalizedAt time.Time) error {
	t := tx
	if t == nil {
		t = r.db
	}
	res := t.WithContext(ctx).
		Model(&types.RoadmapVersion{}).
		Where("id = ? AND status = ?", id, types.RoadmapStatusDraft).
		Updates(map[string]any{
			"status":       types.RoadmapStatusFinal,
			"finalized_at": finalizedAt,
			"updated_at":   time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.ErrInvalidStateTransition
	}
	return nil
}
