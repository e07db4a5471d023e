package roadmap

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/upskillworks/roadmap-backend/internal/domain/project"
)

// Lifecycle states of a roadmap version. At most one FINAL exists per
// project at any time.
const (
	StatusDraft    = "DRAFT"
	StatusFinal    = "FINAL"
	StatusArchived = "ARCHIVED"
)

// Proficiency levels of a matrix cell.
const (
	LevelBeginner     = "BEGINNER"
	LevelIntermediate = "INTERMEDIATE"
	LevelAdvanced     = "ADVANCED"
)

// RoadmapVersion is one version of the generated curriculum for a
// project. The courses column is the authoritative flat list; the
// matrix column is a derived view and must never diverge from it.
type RoadmapVersion struct {
	ID        uuid.UUID        `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ProjectID uuid.UUID        `gorm:"type:uuid;not null;index;uniqueIndex:idx_roadmap_project_version,priority:1" json:"project_id"`
	Project   *project.Project `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProjectID;references:ID" json:"project,omitempty"`

	VersionNumber int    `gorm:"column:version_number;not null;uniqueIndex:idx_roadmap_project_version,priority:2" json:"version_number"`
	Status        string `gorm:"column:status;not null;default:'DRAFT';index" json:"status"`

	DiagnosisSummary string         `gorm:"column:diagnosis_summary;type:text" json:"diagnosis_summary"`
	Courses          datatypes.JSON `gorm:"column:courses;type:jsonb" json:"courses"`
	RoadmapMatrix    datatypes.JSON `gorm:"column:roadmap_matrix;type:jsonb" json:"roadmap_matrix"`
	PBLCourse        datatypes.JSON `gorm:"column:pbl_course;type:jsonb" json:"pbl_course"`

	// Computed from the courses list on every change; never hand-set.
	FreeToolValidated  bool `gorm:"column:free_tool_validated;not null;default:false" json:"free_tool_validated"`
	TimeLimitValidated bool `gorm:"column:time_limit_validated;not null;default:false" json:"time_limit_validated"`

	RevisionPrompt  string `gorm:"column:revision_prompt;type:text" json:"revision_prompt,omitempty"`
	ExportObjectKey string `gorm:"column:export_object_key" json:"export_object_key,omitempty"`

	CreatedAt   time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;default:now()" json:"updated_at"`
	FinalizedAt *time.Time `gorm:"column:finalized_at" json:"finalized_at,omitempty"`
}

func (RoadmapVersion) TableName() string { return "roadmap_version" }

// CourseTool is one tool referenced by a course. FreeTierInfo must be
// non-empty for the free-tool rule to pass.
type CourseTool struct {
	Name         string `json:"name"`
	FreeTierInfo string `json:"free_tier_info"`
}

// RoadmapCell is one generated course.
type RoadmapCell struct {
	CourseName          string       `json:"course_name"`
	Level               string       `json:"level"`
	RecommendedHours    int          `json:"recommended_hours"`
	TargetTask          string       `json:"target_task"`
	TargetAudience      string       `json:"target_audience"`
	Curriculum          []string     `json:"curriculum"`
	PracticeAssignments []string     `json:"practice_assignments"`
	Tools               []CourseTool `json:"tools"`
	ExpectedOutcome     string       `json:"expected_outcome"`
	MeasurementMethod   string       `json:"measurement_method"`
	Prerequisites       []string     `json:"prerequisites"`
}

// RoadmapRow is the task-level view over the courses list, one cell
// per proficiency level. A cell may be nil when no course exists for
// that task/level combination.
type RoadmapRow struct {
	TaskName     string       `json:"task_name"`
	Beginner     *RoadmapCell `json:"beginner,omitempty"`
	Intermediate *RoadmapCell `json:"intermediate,omitempty"`
	Advanced     *RoadmapCell `json:"advanced,omitempty"`
}

// PBLCourse is the single project-based-learning course attached to a
// version, distinct from the per-task matrix courses.
type PBLCourse struct {
	CourseName       string   `json:"course_name"`
	Overview         string   `json:"overview"`
	Curriculum       []string `json:"curriculum"`
	TargetTasks      []string `json:"target_tasks"`
	ExpectedOutcome  string   `json:"expected_outcome"`
	RecommendedHours int      `json:"recommended_hours"`
}

// DecodeCourses converts the stored JSONB payload into typed cells.
// Untyped maps never leave the storage boundary.
func (v *RoadmapVersion) DecodeCourses() ([]RoadmapCell, error) {
	var cells []RoadmapCell
	if len(v.Courses) == 0 {
		return cells, nil
	}
	if err := json.Unmarshal(v.Courses, &cells); err != nil {
		return nil, err
	}
	return cells, nil
}

func (v *RoadmapVersion) DecodeMatrix() ([]RoadmapRow, error) {
	var rows []RoadmapRow
	if len(v.RoadmapMatrix) == 0 {
		return rows, nil
	}
	if err := json.Unmarshal(v.RoadmapMatrix, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (v *RoadmapVersion) DecodePBLCourse() (*PBLCourse, error) {
	if len(v.PBLCourse) == 0 {
		return nil, nil
	}
	var pbl PBLCourse
	if err := json.Unmarshal(v.PBLCourse, &pbl); err != nil {
		return nil, err
	}
	return &pbl, nil
}
