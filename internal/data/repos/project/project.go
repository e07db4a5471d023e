package project

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/upskillworks/roadmap-backend/internal/domain"
	pkgerrors "github.com/upskillworks/roadmap-backend/internal/pkg/errors"
	"github.com/upskillworks/roadmap-backend/internal/pkg/logger"
)

type ProjectRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Project, error)
	ListInterviewAnswers(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.InterviewAnswer, error)
	ListSelfAssessments(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.SelfAssessment, error)
	SetStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error
}

type projectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	return &projectRepo{db: db, log: baseLog.With("repo", "ProjectRepo")}
}

func (r *projectRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Project, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	row := &types.Project{}
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

func (r *projectRepo) ListInterviewAnswers(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.InterviewAnswer, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var rows []*types.InterviewAnswer
	if err := t.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("ordering ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *projectRepo) ListSelfAssessments(ctx context.Context, tx *gorm.DB, projectID uuid.UUID) ([]*types.SelfAssessment, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var rows []*types.SelfAssessment
	if err := t.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("task_name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *projectRepo) SetStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status string) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).
		Model(&types.Project{}).
		Where("id = ?", id).
		Update("status", status).Error
}
