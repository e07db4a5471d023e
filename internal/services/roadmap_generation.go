package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/upskillworks/roadmap-backend/internal/domain"
	pkgerrors "github.com/upskillworks/roadmap-backend/internal/pkg/errors"
	"github.com/upskillworks/roadmap-backend/internal/roadmap"
)

const roadmapSchemaName = "training_roadmap"

// CreateRoadmap generates a new DRAFT version for the project. The
// quota gate runs before any LLM spend; an LLM or decode failure
// leaves no version behind; usage and audit writes are best-effort.
func (s *roadmapService) CreateRoadmap(ctx context.Context, actorID, projectID uuid.UUID, revisionPrompt string) (*GenerateResult, error) {
	project, err := s.requireProjectConsultant(ctx, nil, actorID, projectID)
	if err != nil {
		return nil, err
	}
	if project.Status != types.ProjectStatusInterviewComplete && project.Status != types.ProjectStatusRoadmapDelivered {
		return nil, fmt.Errorf("%w: project interview is not complete", pkgerrors.ErrInvalidStateTransition)
	}

	if err := s.quota.Check(ctx, actorID); err != nil {
		s.audit.Record(ctx, actorID, "roadmap.generate", "project", projectID, nil, false, err)
		return nil, err
	}

	answers, err := s.projectRepo.ListInterviewAnswers(ctx, nil, projectID)
	if err != nil {
		return nil, fmt.Errorf("load interview answers: %w", err)
	}
	assessments, err := s.projectRepo.ListSelfAssessments(ctx, nil, projectID)
	if err != nil {
		return nil, fmt.Errorf("load self assessments: %w", err)
	}

	gc := GenerationContext{
		Project:         project,
		Answers:         answers,
		SelfAssessments: assessments,
		RevisionPrompt:  revisionPrompt,
	}

	obj, usage, err := s.ai.GenerateJSON(ctx, roadmapSystemPrompt, buildRoadmapUserPrompt(gc), roadmapSchemaName, roadmapSchema())
	s.quota.Record(ctx, actorID, "roadmap.generate", s.ai.Model(), usage)
	if err != nil {
		s.audit.Record(ctx, actorID, "roadmap.generate", "project", projectID, nil, false, err)
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrGenerationFailed, err)
	}

	generated, err := decodeGeneratedRoadmap(obj)
	if err != nil {
		s.audit.Record(ctx, actorID, "roadmap.generate", "project", projectID, nil, false, err)
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrGenerationFailed, err)
	}

	matrix, warnings := roadmap.DeriveMatrix(generated.Courses)
	validation := roadmap.Validate(generated.Courses)
	validation.Warnings = append(validation.Warnings, warnings...)

	version := &types.RoadmapVersion{
		ProjectID:          projectID,
		Status:             types.RoadmapStatusDraft,
		DiagnosisSummary:   generated.DiagnosisSummary,
		Courses:            mustMarshal(generated.Courses),
		RoadmapMatrix:      mustMarshal(matrix),
		PBLCourse:          mustMarshal(generated.PBLCourse),
		FreeToolValidated:  validation.FreeToolValidated,
		TimeLimitValidated: validation.TimeLimitValidated,
		RevisionPrompt:     revisionPrompt,
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.versionRepo.Create(ctx, tx, version)
	}); err != nil {
		s.audit.Record(ctx, actorID, "roadmap.generate", "project", projectID, nil, false, err)
		return nil, fmt.Errorf("persist roadmap version: %w", err)
	}

	s.audit.Record(ctx, actorID, "roadmap.generate", "roadmap_version", version.ID, map[string]any{
		"project_id":     projectID,
		"version_number": version.VersionNumber,
		"is_valid":       validation.IsValid,
	}, true, nil)

	return &GenerateResult{
		RoadmapID:  version.ID,
		Version:    version,
		Validation: validation,
	}, nil
}

// mustMarshal is only used on values the engine just built; marshal
// cannot fail for them.
func mustMarshal(v any) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON([]byte("null"))
	}
	return datatypes.JSON(b)
}
