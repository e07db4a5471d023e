package roadmap

import (
	"strings"
	"testing"

	types "github.com/upskillworks/roadmap-backend/internal/domain"
)

func freeTool(name string) types.CourseTool {
	return types.CourseTool{Name: name, FreeTierInfo: "free tier available"}
}

func TestValidateTimeLimit(t *testing.T) {
	cells := []types.RoadmapCell{
		{CourseName: "ok", RecommendedHours: 40, Tools: []types.CourseTool{freeTool("Google Sheets")}},
		{CourseName: "too long", RecommendedHours: 45, Tools: []types.CourseTool{freeTool("Google Sheets")}},
	}
	res := Validate(cells)
	if res.TimeLimitValidated {
		t.Fatalf("expected time_limit_validated=false")
	}
	if !res.FreeToolValidated {
		t.Fatalf("expected free_tool_validated=true")
	}
	if res.IsValid {
		t.Fatalf("expected isValid=false")
	}
	if len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "too long") {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
}

func TestValidateFreeTools(t *testing.T) {
	cases := []struct {
		name string
		tool types.CourseTool
		ok   bool
	}{
		{name: "free_tool", tool: freeTool("Google Colab"), ok: true},
		{name: "paid_name", tool: types.CourseTool{Name: "Adobe Photoshop", FreeTierInfo: "trial only"}, ok: false},
		{name: "paid_info", tool: types.CourseTool{Name: "SomeTool", FreeTierInfo: "paid plan required after 7 days"}, ok: false},
		{name: "empty_info", tool: types.CourseTool{Name: "MysteryTool"}, ok: false},
		{name: "case_insensitive", tool: types.CourseTool{Name: "TABLEAU DESKTOP", FreeTierInfo: "n/a"}, ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Validate([]types.RoadmapCell{{
				CourseName:       "course",
				RecommendedHours: 10,
				Tools:            []types.CourseTool{tc.tool},
			}})
			if res.FreeToolValidated != tc.ok {
				t.Fatalf("free_tool_validated=%v want %v (errors=%v)", res.FreeToolValidated, tc.ok, res.Errors)
			}
			if res.IsValid != tc.ok {
				t.Fatalf("isValid=%v want %v", res.IsValid, tc.ok)
			}
		})
	}
}

func TestValidateIsConjunction(t *testing.T) {
	cells := []types.RoadmapCell{
		{CourseName: "bad hours", RecommendedHours: 50, Tools: []types.CourseTool{freeTool("Sheets")}},
		{CourseName: "bad tool", RecommendedHours: 10, Tools: []types.CourseTool{{Name: "MATLAB", FreeTierInfo: "campus license"}}},
	}
	res := Validate(cells)
	if res.TimeLimitValidated || res.FreeToolValidated || res.IsValid {
		t.Fatalf("expected both rules failed: %+v", res)
	}
	if res.IsValid != (res.TimeLimitValidated && res.FreeToolValidated) {
		t.Fatalf("isValid must be the conjunction of the two flags")
	}
}

func TestValidateIdempotent(t *testing.T) {
	cells := []types.RoadmapCell{
		{CourseName: "c", RecommendedHours: 45, Tools: []types.CourseTool{{Name: "MysteryTool"}}},
	}
	first := Validate(cells)
	second := Validate(cells)
	if len(first.Errors) != len(second.Errors) || first.IsValid != second.IsValid {
		t.Fatalf("validation not idempotent: %+v vs %+v", first, second)
	}
}

func TestValidateEmptyList(t *testing.T) {
	res := Validate(nil)
	if !res.IsValid || !res.TimeLimitValidated || !res.FreeToolValidated {
		t.Fatalf("empty course list should pass: %+v", res)
	}
}
