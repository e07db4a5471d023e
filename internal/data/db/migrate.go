package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/upskillworks/roadmap-backend/internal/domain"
)

// AutoMigrateAll migrates every persisted entity. The composite unique
// index on (project_id, version_number) is what makes concurrent
// version creation safe; it must exist before any roadmap insert.
func (s *PostgresService) AutoMigrateAll() error {
	if err := s.db.AutoMigrate(
		&types.Project{},
		&types.InterviewAnswer{},
		&types.SelfAssessment{},

		&types.RoadmapVersion{},

		&types.AuditLog{},
		&types.LLMUsageRecord{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// MigrateAll is the shared helper used by the test harness, operating
// on a caller-provided DB handle.
func MigrateAll(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&types.Project{},
		&types.InterviewAnswer{},
		&types.SelfAssessment{},
		&types.RoadmapVersion{},
		&types.AuditLog{},
		&types.LLMUsageRecord{},
	)
}
