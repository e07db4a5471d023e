package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	types "github.com/upskillworks/roadmap-backend/internal/domain"
	"github.com/upskillworks/roadmap-backend/internal/pkg/logger"
	"github.com/upskillworks/roadmap-backend/internal/platform/gcs"
)

// ExportService renders the canonical spreadsheet for a finalized
// roadmap and manages its lifetime in the file store. Richer formats
// (XLSX, PDF) live outside this engine.
type ExportService interface {
	ExportFinalRoadmap(ctx context.Context, version *types.RoadmapVersion) (objectKey string, err error)
	RemoveExport(ctx context.Context, objectKey string) error
	SignedExportURL(objectKey string, ttl time.Duration) (string, error)
}

type exportService struct {
	log    *logger.Logger
	bucket gcs.Bucket
}

func NewExportService(baseLog *logger.Logger, bucket gcs.Bucket) ExportService {
	return &exportService{log: baseLog.With("service", "ExportService"), bucket: bucket}
}

func (s *exportService) ExportFinalRoadmap(ctx context.Context, version *types.RoadmapVersion) (string, error) {
	if version == nil {
		return "", fmt.Errorf("nil version")
	}
	if s.bucket == nil {
		return "", fmt.Errorf("export bucket not configured")
	}
	data, err := RenderRoadmapCSV(version)
	if err != nil {
		return "", fmt.Errorf("render export: %w", err)
	}
	key := fmt.Sprintf("exports/%s/roadmap_v%d.csv", version.ProjectID, version.VersionNumber)
	if err := s.bucket.Put(ctx, key, data, "text/csv"); err != nil {
		return "", fmt.Errorf("store export: %w", err)
	}
	return key, nil
}

func (s *exportService) RemoveExport(ctx context.Context, objectKey string) error {
	if strings.TrimSpace(objectKey) == "" || s.bucket == nil {
		return nil
	}
	return s.bucket.Remove(ctx, objectKey)
}

func (s *exportService) SignedExportURL(objectKey string, ttl time.Duration) (string, error) {
	if strings.TrimSpace(objectKey) == "" {
		return "", fmt.Errorf("no export recorded for this version")
	}
	if s.bucket == nil {
		return "", fmt.Errorf("export bucket not configured")
	}
	return s.bucket.SignedURL(objectKey, ttl)
}

// RenderRoadmapCSV lays the matrix out one row per task with one
// column group per proficiency level, followed by the PBL course.
func RenderRoadmapCSV(version *types.RoadmapVersion) ([]byte, error) {
	rows, err := version.DecodeMatrix()
	if err != nil {
		return nil, fmt.Errorf("decode matrix: %w", err)
	}
	pbl, err := version.DecodePBLCourse()
	if err != nil {
		return nil, fmt.Errorf("decode pbl course: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"task"}
	for _, level := range []string{"beginner", "intermediate", "advanced"} {
		header = append(header, level+" course", level+" hours", level+" tools")
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, row := range rows {
		record := []string{row.TaskName}
		for _, cell := range []*types.RoadmapCell{row.Beginner, row.Intermediate, row.Advanced} {
			record = append(record, cellColumns(cell)...)
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	if pbl != nil && pbl.CourseName != "" {
		if err := w.Write([]string{}); err != nil {
			return nil, err
		}
		if err := w.Write([]string{"pbl course", pbl.CourseName, strconv.Itoa(pbl.RecommendedHours), strings.Join(pbl.TargetTasks, "; ")}); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cellColumns(cell *types.RoadmapCell) []string {
	if cell == nil {
		return []string{"", "", ""}
	}
	toolNames := make([]string, 0, len(cell.Tools))
	for _, tool := range cell.Tools {
		toolNames = append(toolNames, tool.Name)
	}
	return []string{
		cell.CourseName,
		strconv.Itoa(cell.RecommendedHours),
		strings.Join(toolNames, "; "),
	}
}
