package testutil

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/upskillworks/roadmap-backend/internal/domain"
)

func SeedProject(tb testing.TB, ctx context.Context, tx *gorm.DB, consultantID uuid.UUID) *types.Project {
	tb.Helper()
	p := &types.Project{
		ID:           uuid.New(),
		Name:         "project",
		ConsultantID: consultantID,
		Status:       types.ProjectStatusInterviewComplete,
		Industry:     "manufacturing",
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed project: %v", err)
	}
	return p
}

func SeedInterviewAnswer(tb testing.TB, ctx context.Context, tx *gorm.DB, projectID uuid.UUID, ordering int) *types.InterviewAnswer {
	tb.Helper()
	a := &types.InterviewAnswer{
		ID:        uuid.New(),
		ProjectID: projectID,
		Ordering:  ordering,
		Question:  "What does a typical week look like?",
		Answer:    "Mostly spreadsheet reporting and vendor calls.",
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed interview answer: %v", err)
	}
	return a
}

func SeedSelfAssessment(tb testing.TB, ctx context.Context, tx *gorm.DB, projectID uuid.UUID, task string, score int) *types.SelfAssessment {
	tb.Helper()
	sa := &types.SelfAssessment{
		ID:        uuid.New(),
		ProjectID: projectID,
		TaskName:  task,
		Score:     score,
	}
	if err := tx.WithContext(ctx).Create(sa).Error; err != nil {
		tb.Fatalf("seed self assessment: %v", err)
	}
	return sa
}

// SeedCells returns a small valid course list for fixture versions.
func SeedCells() []types.RoadmapCell {
	return []types.RoadmapCell{
		{
			CourseName:       "Spreadsheet Automation Basics",
			Level:            types.LevelBeginner,
			RecommendedHours: 20,
			TargetTask:       "reporting",
			Tools:            []types.CourseTool{{Name: "Google Sheets", FreeTierInfo: "free with a Google account"}},
		},
		{
			CourseName:       "Report Pipeline Design",
			Level:            types.LevelIntermediate,
			RecommendedHours: 30,
			TargetTask:       "reporting",
			Tools:            []types.CourseTool{{Name: "Looker Studio", FreeTierInfo: "free tier available"}},
		},
	}
}

func MustJSON(tb testing.TB, v any) datatypes.JSON {
	tb.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		tb.Fatalf("marshal fixture: %v", err)
	}
	return datatypes.JSON(b)
}

func SeedRoadmapVersion(tb testing.TB, ctx context.Context, tx *gorm.DB, projectID uuid.UUID, number int, status string) *types.RoadmapVersion {
	tb.Helper()
	v := &types.RoadmapVersion{
		ID:                 uuid.New(),
		ProjectID:          projectID,
		VersionNumber:      number,
		Status:             status,
		DiagnosisSummary:   "summary",
		Courses:            MustJSON(tb, SeedCells()),
		RoadmapMatrix:      datatypes.JSON([]byte("[]")),
		PBLCourse:          datatypes.JSON([]byte("{}")),
		FreeToolValidated:  true,
		TimeLimitValidated: true,
	}
	if err := tx.WithContext(ctx).Create(v).Error; err != nil {
		tb.Fatalf("seed roadmap version: %v", err)
	}
	return v
}
