// Package roadmap holds the pure engine core: business-rule validation
// of generated course lists and derivation of the task/level matrix.
// Nothing in this package performs I/O.
package roadmap

import (
	"fmt"
	"strings"

	types "github.com/upskillworks/roadmap-backend/internal/domain"
)

// MaxRecommendedHours caps any single course.
const MaxRecommendedHours = 40

// paidToolKeywords is the fixed denylist matched case-insensitively
// against tool names and their free-tier descriptions.
var paidToolKeywords = []string{
	"paid plan",
	"paid only",
	"paid subscription",
	"subscription required",
	"license required",
	"premium only",
	"enterprise only",
	"no free tier",
	"photoshop",
	"illustrator",
	"creative cloud",
	"tableau desktop",
	"matlab",
	"spss",
	"acrobat pro",
	"microsoft project",
}

// ValidationResult is the outcome of checking a course list against
// the two business rules. Both flag fields are computed, never
// authored; IsValid is their conjunction.
type ValidationResult struct {
	IsValid            bool     `json:"is_valid"`
	TimeLimitValidated bool     `json:"time_limit_validated"`
	FreeToolValidated  bool     `json:"free_tool_validated"`
	Errors             []string `json:"errors"`
	Warnings           []string `json:"warnings"`
}

// Validate checks every course against the time-limit and free-tool
// rules. It is deterministic and safe to call repeatedly on the same
// input.
func Validate(cells []types.RoadmapCell) ValidationResult {
	res := ValidationResult{
		TimeLimitValidated: true,
		FreeToolValidated:  true,
		Errors:             []string{},
		Warnings:           []string{},
	}

	for _, cell := range cells {
		if cell.RecommendedHours > MaxRecommendedHours {
			res.TimeLimitValidated = false
			res.Errors = append(res.Errors, fmt.Sprintf(
				"course %q: recommended_hours %d exceeds the %d hour limit",
				cell.CourseName, cell.RecommendedHours, MaxRecommendedHours))
		}

		for _, tool := range cell.Tools {
			if strings.TrimSpace(tool.FreeTierInfo) == "" {
				res.FreeToolValidated = false
				res.Errors = append(res.Errors, fmt.Sprintf(
					"course %q: tool %q has no free-tier description",
					cell.CourseName, tool.Name))
				continue
			}
			if kw := matchPaidKeyword(tool); kw != "" {
				res.FreeToolValidated = false
				res.Errors = append(res.Errors, fmt.Sprintf(
					"course %q: tool %q matches paid-tool keyword %q",
					cell.CourseName, tool.Name, kw))
			}
		}
	}

	res.IsValid = res.TimeLimitValidated && res.FreeToolValidated
	return res
}

func matchPaidKeyword(tool types.CourseTool) string {
	name := strings.ToLower(tool.Name)
	info := strings.ToLower(tool.FreeTierInfo)
	for _, kw := range paidToolKeywords {
		if strings.Contains(name, kw) || strings.Contains(info, kw) {
			return kw
		}
	}
	return ""
}
