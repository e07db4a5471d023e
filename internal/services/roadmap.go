package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	projectrepo "github.com/upskillworks/roadmap-backend/internal/data/repos/project"
	roadmaprepo "github.com/upskillworks/roadmap-backend/internal/data/repos/roadmap"
	types "github.com/upskillworks/roadmap-backend/internal/domain"
	pkgerrors "github.com/upskillworks/roadmap-backend/internal/pkg/errors"
	"github.com/upskillworks/roadmap-backend/internal/pkg/logger"
	"github.com/upskillworks/roadmap-backend/internal/platform/openai"
	"github.com/upskillworks/roadmap-backend/internal/roadmap"
)

// RoadmapService is the engine's public surface: generation,
// manual editing, finalization and version reads.
type RoadmapService interface {
	CreateRoadmap(ctx context.Context, actorID, projectID uuid.UUID, revisionPrompt string) (*GenerateResult, error)
	UpdateRoadmapManually(ctx context.Context, actorID, roadmapID uuid.UUID, updates ManualUpdates) (*EditResult, error)
	FinalizeRoadmap(ctx context.Context, actorID, roadmapID uuid.UUID) error
	ListRoadmapVersions(ctx context.Context, actorID, projectID uuid.UUID) ([]*types.RoadmapVersion, error)
	GetRoadmapVersion(ctx context.Context, actorID, roadmapID uuid.UUID) (*types.RoadmapVersion, error)
	ExportURL(ctx context.Context, actorID, roadmapID uuid.UUID) (string, error)
}

// GenerateResult bundles the new DRAFT version with its validation
// outcome so the caller can immediately show pass/fail state.
type GenerateResult struct {
	RoadmapID  uuid.UUID                `json:"roadmap_id"`
	Version    *types.RoadmapVersion    `json:"version"`
	Validation roadmap.ValidationResult `json:"validation"`
}

// EditResult is the manual-edit counterpart of GenerateResult.
type EditResult struct {
	Version    *types.RoadmapVersion    `json:"version"`
	Validation roadmap.ValidationResult `json:"validation"`
}

// ManualUpdates carries a partial edit of a DRAFT version. A matrix
// cell edit is translated into the courses list; the matrix itself is
// never patched directly.
type ManualUpdates struct {
	Courses          *[]types.RoadmapCell `json:"courses,omitempty"`
	MatrixCell       *MatrixCellEdit      `json:"matrix_cell,omitempty"`
	PBLCourse        *types.PBLCourse     `json:"pbl_course,omitempty"`
	DiagnosisSummary *string              `json:"diagnosis_summary,omitempty"`
}

// MatrixCellEdit addresses one cell by row index and level. A nil
// Course clears the cell (removes the backing course).
type MatrixCellEdit struct {
	RowIndex int                `json:"row_index"`
	Level    string             `json:"level"`
	Course   *types.RoadmapCell `json:"course"`
}

type roadmapService struct {
	db  *gorm.DB
	log *logger.Logger

	projectRepo projectrepo.ProjectRepo
	versionRepo roadmaprepo.RoadmapVersionRepo

	ai     openai.Client
	quota  QuotaService
	audit  AuditService
	export ExportService
}

func NewRoadmapService(
	db *gorm.DB,
	baseLog *logger.Logger,
	projectRepo projectrepo.ProjectRepo,
	versionRepo roadmaprepo.RoadmapVersionRepo,
	ai openai.Client,
	quota QuotaService,
	audit AuditService,
	export ExportService,
) RoadmapService {
	return &roadmapService{
		db:          db,
		log:         baseLog.With("service", "RoadmapService"),
		projectRepo: projectRepo,
		versionRepo: versionRepo,
		ai:          ai,
		quota:       quota,
		audit:       audit,
		export:      export,
	}
}

// requireProjectConsultant loads the project and checks that the actor
// is its assigned consultant.
func (s *roadmapService) requireProjectConsultant(ctx context.Context, tx *gorm.DB, actorID, projectID uuid.UUID) (*types.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, tx, projectID)
	if err != nil {
		return nil, err
	}
	if project.ConsultantID != actorID {
		return nil, fmt.Errorf("%w: actor is not the project's consultant", pkgerrors.ErrUnauthorized)
	}
	return project, nil
}

func (s *roadmapService) ListRoadmapVersions(ctx context.Context, actorID, projectID uuid.UUID) ([]*types.RoadmapVersion, error) {
	if _, err := s.requireProjectConsultant(ctx, nil, actorID, projectID); err != nil {
		return nil, err
	}
	return s.versionRepo.ListByProjectID(ctx, nil, projectID)
}

func (s *roadmapService) GetRoadmapVersion(ctx context.Context, actorID, roadmapID uuid.UUID) (*types.RoadmapVersion, error) {
	version, err := s.versionRepo.GetByID(ctx, nil, roadmapID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireProjectConsultant(ctx, nil, actorID, version.ProjectID); err != nil {
		return nil, err
	}
	return version, nil
}

func (s *roadmapService) ExportURL(ctx context.Context, actorID, roadmapID uuid.UUID) (string, error) {
	version, err := s.GetRoadmapVersion(ctx, actorID, roadmapID)
	if err != nil {
		return "", err
	}
	if version.Status != types.RoadmapStatusFinal {
		return "", fmt.Errorf("%w: exports exist only for FINAL versions", pkgerrors.ErrInvalidStateTransition)
	}
	return s.export.SignedExportURL(version.ExportObjectKey, 0)
}
