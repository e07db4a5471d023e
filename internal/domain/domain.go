// Package domain re-exports the persisted entity types so callers can
// import a single package as "types".
package domain

import (
	"github.com/upskillworks/roadmap-backend/internal/domain/audit"
	"github.com/upskillworks/roadmap-backend/internal/domain/project"
	"github.com/upskillworks/roadmap-backend/internal/domain/roadmap"
	"github.com/upskillworks/roadmap-backend/internal/domain/usage"
)

type Project = project.Project
type InterviewAnswer = project.InterviewAnswer
type SelfAssessment = project.SelfAssessment

type RoadmapVersion = roadmap.RoadmapVersion
type RoadmapCell = roadmap.RoadmapCell
type RoadmapRow = roadmap.RoadmapRow
type CourseTool = roadmap.CourseTool
type PBLCourse = roadmap.PBLCourse

type AuditLog = audit.AuditLog
type LLMUsageRecord = usage.LLMUsageRecord

const (
	RoadmapStatusDraft    = roadmap.StatusDraft
	RoadmapStatusFinal    = roadmap.StatusFinal
	RoadmapStatusArchived = roadmap.StatusArchived

	LevelBeginner     = roadmap.LevelBeginner
	LevelIntermediate = roadmap.LevelIntermediate
	LevelAdvanced     = roadmap.LevelAdvanced

	ProjectStatusIntake            = project.StatusIntake
	ProjectStatusInterviewComplete = project.StatusInterviewComplete
	ProjectStatusRoadmapDelivered  = project.StatusRoadmapDelivered
)
