package roadmap

import (
	"strings"
	"testing"

	types "github.com/upskillworks/roadmap-backend/internal/domain"
)

func cell(name, task, level string) types.RoadmapCell {
	return types.RoadmapCell{CourseName: name, TargetTask: task, Level: level, RecommendedHours: 10}
}

func TestDeriveMatrixGroupsByTaskAndLevel(t *testing.T) {
	cells := []types.RoadmapCell{
		cell("a1", "reporting", types.LevelBeginner),
		cell("a2", "reporting", types.LevelAdvanced),
		cell("b1", "vendor management", types.LevelIntermediate),
	}

	rows, warnings := DeriveMatrix(cells)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].TaskName != "reporting" || rows[1].TaskName != "vendor management" {
		t.Fatalf("rows not in first-occurrence order: %+v", rows)
	}
	if rows[0].Beginner == nil || rows[0].Beginner.CourseName != "a1" {
		t.Fatalf("missing beginner cell: %+v", rows[0])
	}
	if rows[0].Intermediate != nil {
		t.Fatalf("intermediate cell should be absent for reporting")
	}
	if rows[0].Advanced == nil || rows[0].Advanced.CourseName != "a2" {
		t.Fatalf("missing advanced cell: %+v", rows[0])
	}
	if rows[1].Intermediate == nil || rows[1].Intermediate.CourseName != "b1" {
		t.Fatalf("missing intermediate cell: %+v", rows[1])
	}
}

func TestDeriveMatrixDuplicateFirstWins(t *testing.T) {
	cells := []types.RoadmapCell{
		cell("first", "reporting", types.LevelBeginner),
		cell("second", "reporting", types.LevelBeginner),
	}

	rows, warnings := DeriveMatrix(cells)
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Beginner == nil || rows[0].Beginner.CourseName != "first" {
		t.Fatalf("first occurrence should win: %+v", rows[0].Beginner)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "second") {
		t.Fatalf("expected one duplicate warning naming the dropped course, got %v", warnings)
	}
}

func TestDeriveMatrixSkipsUnusableCells(t *testing.T) {
	cells := []types.RoadmapCell{
		cell("no task", "", types.LevelBeginner),
		cell("bad level", "reporting", "EXPERT"),
		cell("ok", "reporting", "beginner"),
	}

	rows, warnings := DeriveMatrix(cells)
	if len(rows) != 1 || rows[0].Beginner == nil || rows[0].Beginner.CourseName != "ok" {
		t.Fatalf("expected only the usable cell placed: %+v", rows)
	}
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", warnings)
	}
}

func TestDeriveMatrixCoversExactlyTheCourses(t *testing.T) {
	cells := []types.RoadmapCell{
		cell("a", "t1", types.LevelBeginner),
		cell("b", "t1", types.LevelIntermediate),
		cell("c", "t2", types.LevelAdvanced),
	}

	rows, _ := DeriveMatrix(cells)
	placed := map[string]bool{}
	for _, row := range rows {
		for _, c := range []*types.RoadmapCell{row.Beginner, row.Intermediate, row.Advanced} {
			if c != nil {
				placed[c.CourseName] = true
			}
		}
	}
	if len(placed) != len(cells) {
		t.Fatalf("matrix cells diverge from course list: %v", placed)
	}
	for _, c := range cells {
		if !placed[c.CourseName] {
			t.Fatalf("course %q missing from matrix", c.CourseName)
		}
	}
}

func TestNormalizeLevel(t *testing.T) {
	cases := map[string]string{
		"beginner":     types.LevelBeginner,
		"Intermediate": types.LevelIntermediate,
		"ADVANCED":     types.LevelAdvanced,
		" basic ":      types.LevelBeginner,
		"expert":       "",
	}
	for in, want := range cases {
		if got := NormalizeLevel(in); got != want {
			t.Fatalf("NormalizeLevel(%q)=%q want %q", in, got, want)
		}
	}
}
