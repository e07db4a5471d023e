package services

import (
	"strings"
	"testing"

	types "github.com/upskillworks/roadmap-backend/internal/domain"
)

func TestBuildRoadmapUserPrompt(t *testing.T) {
	gc := GenerationContext{
		Project: &types.Project{
			Name:           "Acme Reskilling",
			Industry:       "logistics",
			JobDescription: "Dispatch coordinator moving into data analysis.",
		},
		Answers: []*types.InterviewAnswer{
			{Question: "What tools do you use today?", Answer: "Mostly Excel."},
		},
		SelfAssessments: []*types.SelfAssessment{
			{TaskName: "reporting", Score: 2, Comment: "ad hoc only"},
		},
		RevisionPrompt: "less theory, more drills",
	}

	prompt := buildRoadmapUserPrompt(gc)

	for _, want := range []string{
		"Acme Reskilling",
		"logistics",
		"Dispatch coordinator",
		"Mostly Excel.",
		"reporting: 2 (ad hoc only)",
		"REVISION INSTRUCTIONS",
		"less theory, more drills",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildRoadmapUserPromptOmitsEmptyRevision(t *testing.T) {
	gc := GenerationContext{Project: &types.Project{Name: "p"}}
	if strings.Contains(buildRoadmapUserPrompt(gc), "REVISION INSTRUCTIONS") {
		t.Fatalf("revision block present without a revision prompt")
	}
}

func TestDecodeGeneratedRoadmap(t *testing.T) {
	obj := map[string]any{
		"diagnosis_summary": "summary",
		"pbl_course":        map[string]any{"course_name": "capstone"},
		"courses": []any{
			map[string]any{
				"course_name":       "Course A",
				"level":             "basic",
				"recommended_hours": float64(10),
				"target_task":       "reporting",
			},
		},
	}

	got, err := decodeGeneratedRoadmap(obj)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.DiagnosisSummary != "summary" {
		t.Fatalf("summary = %q", got.DiagnosisSummary)
	}
	if got.PBLCourse.CourseName != "capstone" {
		t.Fatalf("pbl = %+v", got.PBLCourse)
	}
	// Loose level spellings are normalized at the boundary.
	if got.Courses[0].Level != types.LevelBeginner {
		t.Fatalf("level = %q, want BEGINNER", got.Courses[0].Level)
	}
}

func TestDecodeGeneratedRoadmapRejectsEmptyCourses(t *testing.T) {
	obj := map[string]any{
		"diagnosis_summary": "summary",
		"pbl_course":        map[string]any{},
		"courses":           []any{},
	}
	if _, err := decodeGeneratedRoadmap(obj); err == nil {
		t.Fatalf("expected error for empty course list")
	}
}
