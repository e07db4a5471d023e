package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/upskillworks/roadmap-backend/internal/domain"
	pkgerrors "github.com/upskillworks/roadmap-backend/internal/pkg/errors"
	"github.com/upskillworks/roadmap-backend/internal/roadmap"
)

// UpdateRoadmapManually applies a partial edit to a DRAFT version,
// rebuilds the matrix from the updated course list and re-runs
// validation. The fresh validation outcome is always returned so the
// caller can reflect whether finalize is currently possible.
func (s *roadmapService) UpdateRoadmapManually(ctx context.Context, actorID, roadmapID uuid.UUID, updates ManualUpdates) (*EditResult, error) {
	version, err := s.versionRepo.GetByID(ctx, nil, roadmapID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireProjectConsultant(ctx, nil, actorID, version.ProjectID); err != nil {
		return nil, err
	}
	if version.Status != types.RoadmapStatusDraft {
		return nil, fmt.Errorf("%w: only DRAFT versions can be edited", pkgerrors.ErrInvalidStateTransition)
	}

	cells, err := version.DecodeCourses()
	if err != nil {
		return nil, fmt.Errorf("decode stored courses: %w", err)
	}

	if updates.Courses != nil {
		cells = *updates.Courses
	}
	if updates.MatrixCell != nil {
		cells, err = applyMatrixCellEdit(cells, *updates.MatrixCell)
		if err != nil {
			return nil, err
		}
	}

	matrix, warnings := roadmap.DeriveMatrix(cells)
	validation := roadmap.Validate(cells)
	validation.Warnings = append(validation.Warnings, warnings...)

	patch := map[string]any{
		"courses":              mustMarshal(cells),
		"roadmap_matrix":       mustMarshal(matrix),
		"free_tool_validated":  validation.FreeToolValidated,
		"time_limit_validated": validation.TimeLimitValidated,
	}
	if updates.PBLCourse != nil {
		patch["pbl_course"] = mustMarshal(*updates.PBLCourse)
	}
	if updates.DiagnosisSummary != nil {
		patch["diagnosis_summary"] = *updates.DiagnosisSummary
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.versionRepo.Update(ctx, tx, roadmapID, patch)
	}); err != nil {
		s.audit.Record(ctx, actorID, "roadmap.edit", "roadmap_version", roadmapID, nil, false, err)
		return nil, fmt.Errorf("persist edit: %w", err)
	}

	s.audit.Record(ctx, actorID, "roadmap.edit", "roadmap_version", roadmapID, map[string]any{
		"is_valid": validation.IsValid,
	}, true, nil)

	updated, err := s.versionRepo.GetByID(ctx, nil, roadmapID)
	if err != nil {
		return nil, err
	}
	return &EditResult{Version: updated, Validation: validation}, nil
}

// applyMatrixCellEdit translates a cell-addressed edit into the course
// list. The row index addresses the derived matrix as the caller last
// saw it; the backing course for that task/level is replaced, removed
// (nil course), or appended when the cell was empty.
func applyMatrixCellEdit(cells []types.RoadmapCell, edit MatrixCellEdit) ([]types.RoadmapCell, error) {
	level := roadmap.NormalizeLevel(edit.Level)
	if level == "" {
		return nil, fmt.Errorf("%w: unknown level %q", pkgerrors.ErrInvalidArgument, edit.Level)
	}

	rows, _ := roadmap.DeriveMatrix(cells)
	if edit.RowIndex < 0 || edit.RowIndex >= len(rows) {
		return nil, fmt.Errorf("%w: row index %d out of range", pkgerrors.ErrInvalidArgument, edit.RowIndex)
	}
	task := rows[edit.RowIndex].TaskName

	out := make([]types.RoadmapCell, 0, len(cells)+1)
	replaced := false
	for _, cell := range cells {
		sameSlot := strings.TrimSpace(cell.TargetTask) == task && roadmap.NormalizeLevel(cell.Level) == level
		if !sameSlot {
			out = append(out, cell)
			continue
		}
		if replaced {
			// Duplicate for the slot; the edit collapses it.
			continue
		}
		replaced = true
		if edit.Course != nil {
			c := *edit.Course
			c.TargetTask = task
			c.Level = level
			out = append(out, c)
		}
	}

	if !replaced && edit.Course != nil {
		c := *edit.Course
		c.TargetTask = task
		c.Level = level
		out = append(out, c)
	}
	return out, nil
}
