package services

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/upskillworks/roadmap-backend/internal/data/repos/testutil"
	types "github.com/upskillworks/roadmap-backend/internal/domain"
	"github.com/upskillworks/roadmap-backend/internal/roadmap"
)

func TestRenderRoadmapCSV(t *testing.T) {
	cells := testutil.SeedCells()
	matrix, _ := roadmap.DeriveMatrix(cells)
	version := &types.RoadmapVersion{
		Courses:       testutil.MustJSON(t, cells),
		RoadmapMatrix: testutil.MustJSON(t, matrix),
		PBLCourse: testutil.MustJSON(t, types.PBLCourse{
			CourseName:       "Reporting Capstone",
			TargetTasks:      []string{"reporting"},
			RecommendedHours: 15,
		}),
	}

	data, err := RenderRoadmapCSV(version)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("parse rendered csv: %v", err)
	}
	// Header, one task row, the PBL trailer. The reader drops the
	// blank spacer line.
	if len(records) != 3 {
		t.Fatalf("record count = %d, want 3", len(records))
	}
	header := records[0]
	if header[0] != "task" || len(header) != 10 {
		t.Fatalf("header = %v", header)
	}

	row := records[1]
	if row[0] != "reporting" {
		t.Fatalf("task column = %q", row[0])
	}
	if row[1] != "Spreadsheet Automation Basics" || row[2] != "20" {
		t.Fatalf("beginner columns = %v", row[1:4])
	}
	if !strings.Contains(row[3], "Google Sheets") {
		t.Fatalf("beginner tools = %q", row[3])
	}
	// No advanced course for the task.
	if row[7] != "" || row[8] != "" {
		t.Fatalf("advanced columns = %v, want empty", row[7:10])
	}

	trailer := records[2]
	if trailer[0] != "pbl course" || trailer[1] != "Reporting Capstone" || trailer[2] != "15" {
		t.Fatalf("pbl trailer = %v", trailer)
	}
}

func TestRenderRoadmapCSVWithoutPBL(t *testing.T) {
	cells := testutil.SeedCells()
	matrix, _ := roadmap.DeriveMatrix(cells)
	version := &types.RoadmapVersion{
		Courses:       testutil.MustJSON(t, cells),
		RoadmapMatrix: testutil.MustJSON(t, matrix),
		PBLCourse:     testutil.MustJSON(t, types.PBLCourse{}),
	}

	data, err := RenderRoadmapCSV(version)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parse rendered csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("record count = %d, want header plus one row", len(records))
	}
}
