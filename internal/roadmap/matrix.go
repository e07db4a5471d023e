package roadmap

import (
	"fmt"
	"strings"

	types "github.com/upskillworks/roadmap-backend/internal/domain"
)

// DeriveMatrix rebuilds the task x level grid from the authoritative
// course list. Rows appear in order of each task's first occurrence;
// when the list carries more than one course for the same task/level
// cell, the first occurrence wins and a warning is returned for each
// dropped duplicate. Generation and manual editing both go through
// this one function, so the matrix can never drift from the list.
func DeriveMatrix(cells []types.RoadmapCell) ([]types.RoadmapRow, []string) {
	rows := []types.RoadmapRow{}
	warnings := []string{}
	rowIndex := map[string]int{}

	for i := range cells {
		cell := cells[i]
		task := strings.TrimSpace(cell.TargetTask)
		if task == "" {
			warnings = append(warnings, fmt.Sprintf(
				"course %q has no target task and was left out of the matrix", cell.CourseName))
			continue
		}

		idx, ok := rowIndex[task]
		if !ok {
			rows = append(rows, types.RoadmapRow{TaskName: task})
			idx = len(rows) - 1
			rowIndex[task] = idx
		}

		slot := levelSlot(&rows[idx], cell.Level)
		if slot == nil {
			warnings = append(warnings, fmt.Sprintf(
				"course %q has unknown level %q and was left out of the matrix", cell.CourseName, cell.Level))
			continue
		}
		if *slot != nil {
			warnings = append(warnings, fmt.Sprintf(
				"duplicate course for task %q level %s: kept %q, dropped %q",
				task, NormalizeLevel(cell.Level), (*slot).CourseName, cell.CourseName))
			continue
		}
		*slot = &cells[i]
	}

	return rows, warnings
}

// NormalizeLevel maps the accepted spellings onto the canonical level
// constants; it returns "" for anything unrecognized.
func NormalizeLevel(level string) string {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case types.LevelBeginner, "BASIC":
		return types.LevelBeginner
	case types.LevelIntermediate:
		return types.LevelIntermediate
	case types.LevelAdvanced:
		return types.LevelAdvanced
	default:
		return ""
	}
}

func levelSlot(row *types.RoadmapRow, level string) **types.RoadmapCell {
	switch NormalizeLevel(level) {
	case types.LevelBeginner:
		return &row.Beginner
	case types.LevelIntermediate:
		return &row.Intermediate
	case types.LevelAdvanced:
		return &row.Advanced
	default:
		return nil
	}
}
