package services

import (
	"encoding/json"
	"fmt"
	"strings"

	types "github.com/upskillworks/roadmap-backend/internal/domain"
	"github.com/upskillworks/roadmap-backend/internal/roadmap"
)

// GenerationContext aggregates everything the prompt embeds for one
// generation call.
type GenerationContext struct {
	Project         *types.Project
	Answers         []*types.InterviewAnswer
	SelfAssessments []*types.SelfAssessment
	RevisionPrompt  string
}

// generatedRoadmap is the declared output shape of the roadmap
// generation call. The matrix is not part of it: it is derived from
// the course list after decoding.
type generatedRoadmap struct {
	DiagnosisSummary string              `json:"diagnosis_summary"`
	PBLCourse        types.PBLCourse     `json:"pbl_course"`
	Courses          []types.RoadmapCell `json:"courses"`
}

const roadmapSystemPrompt = `ROLE: Reskilling consultant authoring a corporate training roadmap.
TASK: From the diagnostic interview and self-assessment below, produce a diagnosis summary, a per-task course list across beginner/intermediate/advanced levels, and one project-based-learning course.
CONSTRAINTS:
- Every course's recommended_hours must be 40 or less.
- Every tool must be usable free of charge; state the free tier in free_tier_info.
- Emit at most one course per (target_task, level) pair.
- level must be one of BEGINNER, INTERMEDIATE, ADVANCED.
OUTPUT: JSON only, matching the provided schema.`

func buildRoadmapUserPrompt(gc GenerationContext) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "PROJECT: %s\n", gc.Project.Name)
	if gc.Project.Industry != "" {
		fmt.Fprintf(&sb, "INDUSTRY: %s\n", gc.Project.Industry)
	}
	if gc.Project.JobDescription != "" {
		fmt.Fprintf(&sb, "JOB DESCRIPTION:\n%s\n", gc.Project.JobDescription)
	}

	sb.WriteString("\nINTERVIEW:\n")
	for _, a := range gc.Answers {
		fmt.Fprintf(&sb, "Q: %s\nA: %s\n", a.Question, a.Answer)
	}

	sb.WriteString("\nSELF-ASSESSMENT (1=novice, 5=expert):\n")
	for _, sa := range gc.SelfAssessments {
		fmt.Fprintf(&sb, "- %s: %d", sa.TaskName, sa.Score)
		if sa.Comment != "" {
			fmt.Fprintf(&sb, " (%s)", sa.Comment)
		}
		sb.WriteString("\n")
	}

	if rp := strings.TrimSpace(gc.RevisionPrompt); rp != "" {
		fmt.Fprintf(&sb, "\nREVISION INSTRUCTIONS (the previous draft was unsatisfactory):\n%s\n", rp)
	}

	return sb.String()
}

func roadmapSchema() map[string]any {
	toolSchema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":           map[string]any{"type": "string"},
			"free_tier_info": map[string]any{"type": "string"},
		},
		"required":             []string{"name", "free_tier_info"},
		"additionalProperties": false,
	}
	stringList := map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
	courseSchema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"course_name":          map[string]any{"type": "string"},
			"level":                map[string]any{"type": "string", "enum": []string{types.LevelBeginner, types.LevelIntermediate, types.LevelAdvanced}},
			"recommended_hours":    map[string]any{"type": "integer", "minimum": 1, "maximum": roadmap.MaxRecommendedHours},
			"target_task":          map[string]any{"type": "string"},
			"target_audience":      map[string]any{"type": "string"},
			"curriculum":           stringList,
			"practice_assignments": stringList,
			"tools":                map[string]any{"type": "array", "items": toolSchema},
			"expected_outcome":     map[string]any{"type": "string"},
			"measurement_method":   map[string]any{"type": "string"},
			"prerequisites":        stringList,
		},
		"required": []string{
			"course_name", "level", "recommended_hours", "target_task",
			"target_audience", "curriculum", "practice_assignments", "tools",
			"expected_outcome", "measurement_method", "prerequisites",
		},
		"additionalProperties": false,
	}
	pblSchema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"course_name":       map[string]any{"type": "string"},
			"overview":          map[string]any{"type": "string"},
			"curriculum":        stringList,
			"target_tasks":      stringList,
			"expected_outcome":  map[string]any{"type": "string"},
			"recommended_hours": map[string]any{"type": "integer"},
		},
		"required":             []string{"course_name", "overview", "curriculum", "target_tasks", "expected_outcome", "recommended_hours"},
		"additionalProperties": false,
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"diagnosis_summary": map[string]any{"type": "string"},
			"pbl_course":        pblSchema,
			"courses":           map[string]any{"type": "array", "items": courseSchema},
		},
		"required":             []string{"diagnosis_summary", "pbl_course", "courses"},
		"additionalProperties": false,
	}
}

// decodeGeneratedRoadmap converts the gateway's raw object into the
// typed shape at the boundary; untyped maps stop here.
func decodeGeneratedRoadmap(obj map[string]any) (*generatedRoadmap, error) {
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	var out generatedRoadmap
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode generated roadmap: %w", err)
	}
	if len(out.Courses) == 0 {
		return nil, fmt.Errorf("generated roadmap has no courses")
	}
	for i := range out.Courses {
		out.Courses[i].Level = roadmap.NormalizeLevel(out.Courses[i].Level)
	}
	return &out, nil
}
