package services

import (
	"errors"
	"testing"

	"github.com/upskillworks/roadmap-backend/internal/data/repos/testutil"
	types "github.com/upskillworks/roadmap-backend/internal/domain"
	pkgerrors "github.com/upskillworks/roadmap-backend/internal/pkg/errors"
	"github.com/upskillworks/roadmap-backend/internal/roadmap"
)

func findCell(cells []types.RoadmapCell, task, level string) *types.RoadmapCell {
	for i := range cells {
		if cells[i].TargetTask == task && cells[i].Level == level {
			return &cells[i]
		}
	}
	return nil
}

func TestApplyMatrixCellEditReplaces(t *testing.T) {
	cells := testutil.SeedCells()

	out, err := applyMatrixCellEdit(cells, MatrixCellEdit{
		RowIndex: 0,
		Level:    types.LevelBeginner,
		Course: &types.RoadmapCell{
			CourseName:       "Spreadsheet Fundamentals",
			RecommendedHours: 10,
		},
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(out) != len(cells) {
		t.Fatalf("len = %d, want %d", len(out), len(cells))
	}
	got := findCell(out, "reporting", types.LevelBeginner)
	if got == nil || got.CourseName != "Spreadsheet Fundamentals" || got.RecommendedHours != 10 {
		t.Fatalf("replaced cell = %+v", got)
	}
}

func TestApplyMatrixCellEditClears(t *testing.T) {
	cells := testutil.SeedCells()

	out, err := applyMatrixCellEdit(cells, MatrixCellEdit{
		RowIndex: 0,
		Level:    types.LevelIntermediate,
		Course:   nil,
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if len(out) != len(cells)-1 {
		t.Fatalf("len = %d, want %d", len(out), len(cells)-1)
	}
	if findCell(out, "reporting", types.LevelIntermediate) != nil {
		t.Fatalf("cleared cell still present")
	}
}

func TestApplyMatrixCellEditFillsEmptySlot(t *testing.T) {
	cells := testutil.SeedCells()

	out, err := applyMatrixCellEdit(cells, MatrixCellEdit{
		RowIndex: 0,
		Level:    types.LevelAdvanced,
		Course: &types.RoadmapCell{
			CourseName:       "Reporting at Scale",
			RecommendedHours: 25,
			// TargetTask and Level are taken from the addressed cell,
			// whatever the payload says.
			TargetTask: "wrong task",
			Level:      "BEGINNER",
		},
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	got := findCell(out, "reporting", types.LevelAdvanced)
	if got == nil || got.CourseName != "Reporting at Scale" {
		t.Fatalf("appended cell = %+v", got)
	}

	rows, _ := roadmap.DeriveMatrix(out)
	if len(rows) != 1 || rows[0].Advanced == nil {
		t.Fatalf("matrix after fill = %+v", rows)
	}
}

func TestApplyMatrixCellEditCollapsesDuplicates(t *testing.T) {
	cells := append(testutil.SeedCells(), types.RoadmapCell{
		CourseName:       "Shadow Duplicate",
		Level:            types.LevelBeginner,
		RecommendedHours: 5,
		TargetTask:       "reporting",
	})

	out, err := applyMatrixCellEdit(cells, MatrixCellEdit{
		RowIndex: 0,
		Level:    types.LevelBeginner,
		Course:   &types.RoadmapCell{CourseName: "The One Course", RecommendedHours: 12},
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	count := 0
	for _, c := range out {
		if c.TargetTask == "reporting" && c.Level == types.LevelBeginner {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("beginner cells for task = %d, want 1", count)
	}
}

func TestApplyMatrixCellEditRejectsBadAddress(t *testing.T) {
	cells := testutil.SeedCells()

	if _, err := applyMatrixCellEdit(cells, MatrixCellEdit{RowIndex: 5, Level: types.LevelBeginner}); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("out-of-range row: err = %v, want ErrInvalidArgument", err)
	}
	if _, err := applyMatrixCellEdit(cells, MatrixCellEdit{RowIndex: 0, Level: "GURU"}); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Fatalf("unknown level: err = %v, want ErrInvalidArgument", err)
	}
}
