package roadmap

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/upskillworks/roadmap-backend/internal/data/repos/testutil"
	types "github.com/upskillworks/roadmap-backend/internal/domain"
	pkgerrors "github.com/upskillworks/roadmap-backend/internal/pkg/errors"
)

func TestRoadmapVersionRepo_CreateAssignsContiguousNumbers(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()
	repo := NewRoadmapVersionRepo(gdb, testutil.Logger(t))

	project := testutil.SeedProject(t, ctx, tx, uuid.New())

	for want := 1; want <= 3; want++ {
		row := &types.RoadmapVersion{
			ProjectID: project.ID,
			Status:    types.RoadmapStatusDraft,
			Courses:   testutil.MustJSON(t, testutil.SeedCells()),
		}
		if err := repo.Create(ctx, tx, row); err != nil {
			t.Fatalf("create version %d: %v", want, err)
		}
		if row.VersionNumber != want {
			t.Fatalf("version number = %d, want %d", row.VersionNumber, want)
		}
	}

	// Numbering is per project.
	other := testutil.SeedProject(t, ctx, tx, uuid.New())
	row := &types.RoadmapVersion{
		ProjectID: other.ID,
		Status:    types.RoadmapStatusDraft,
		Courses:   testutil.MustJSON(t, testutil.SeedCells()),
	}
	if err := repo.Create(ctx, tx, row); err != nil {
		t.Fatalf("create version for second project: %v", err)
	}
	if row.VersionNumber != 1 {
		t.Fatalf("second project version number = %d, want 1", row.VersionNumber)
	}
}

func TestRoadmapVersionRepo_GetByIDNotFound(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	repo := NewRoadmapVersionRepo(gdb, testutil.Logger(t))

	_, err := repo.GetByID(context.Background(), tx, uuid.New())
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRoadmapVersionRepo_ListOrdersNewestFirst(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()
	repo := NewRoadmapVersionRepo(gdb, testutil.Logger(t))

	project := testutil.SeedProject(t, ctx, tx, uuid.New())
	testutil.SeedRoadmapVersion(t, ctx, tx, project.ID, 1, types.RoadmapStatusArchived)
	testutil.SeedRoadmapVersion(t, ctx, tx, project.ID, 2, types.RoadmapStatusFinal)
	testutil.SeedRoadmapVersion(t, ctx, tx, project.ID, 3, types.RoadmapStatusDraft)

	rows, err := repo.ListByProjectID(ctx, tx, project.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("len = %d, want 3", len(rows))
	}
	for i, want := range []int{3, 2, 1} {
		if rows[i].VersionNumber != want {
			t.Fatalf("rows[%d].VersionNumber = %d, want %d", i, rows[i].VersionNumber, want)
		}
	}
}

func TestRoadmapVersionRepo_FinalPromotion(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()
	repo := NewRoadmapVersionRepo(gdb, testutil.Logger(t))

	project := testutil.SeedProject(t, ctx, tx, uuid.New())
	v1 := testutil.SeedRoadmapVersion(t, ctx, tx, project.ID, 1, types.RoadmapStatusFinal)
	v2 := testutil.SeedRoadmapVersion(t, ctx, tx, project.ID, 2, types.RoadmapStatusDraft)

	if err := repo.MarkArchivedIfFinal(ctx, tx, project.ID); err != nil {
		t.Fatalf("archive prior final: %v", err)
	}
	now := time.Now().UTC()
	if err := repo.MarkFinal(ctx, tx, v2.ID, now); err != nil {
		t.Fatalf("mark final: %v", err)
	}

	got1, err := repo.GetByID(ctx, tx, v1.ID)
	if err != nil {
		t.Fatalf("reload v1: %v", err)
	}
	if got1.Status != types.RoadmapStatusArchived {
		t.Fatalf("v1 status = %q, want ARCHIVED", got1.Status)
	}

	got2, err := repo.GetByID(ctx, tx, v2.ID)
	if err != nil {
		t.Fatalf("reload v2: %v", err)
	}
	if got2.Status != types.RoadmapStatusFinal {
		t.Fatalf("v2 status = %q, want FINAL", got2.Status)
	}
	if got2.FinalizedAt == nil {
		t.Fatalf("v2 finalized_at is nil")
	}

	final, err := repo.GetFinalByProjectID(ctx, tx, project.ID)
	if err != nil {
		t.Fatalf("get final: %v", err)
	}
	if final == nil || final.ID != v2.ID {
		t.Fatalf("final = %+v, want v2", final)
	}
}

func TestRoadmapVersionRepo_MarkFinalRejectsNonDraft(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()
	repo := NewRoadmapVersionRepo(gdb, testutil.Logger(t))

	project := testutil.SeedProject(t, ctx, tx, uuid.New())
	archived := testutil.SeedRoadmapVersion(t, ctx, tx, project.ID, 1, types.RoadmapStatusArchived)

	err := repo.MarkFinal(ctx, tx, archived.ID, time.Now().UTC())
	if !errors.Is(err, pkgerrors.ErrInvalidStateTransition) {
		t.Fatalf("err = %v, want ErrInvalidStateTransition", err)
	}
	// Missing rows fail the same way.
	err = repo.MarkFinal(ctx, tx, uuid.New(), time.Now().UTC())
	if !errors.Is(err, pkgerrors.ErrInvalidStateTransition) {
		t.Fatalf("missing row err = %v, want ErrInvalidStateTransition", err)
	}
}

func TestRoadmapVersionRepo_GetFinalAbsent(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()
	repo := NewRoadmapVersionRepo(gdb, testutil.Logger(t))

	project := testutil.SeedProject(t, ctx, tx, uuid.New())
	testutil.SeedRoadmapVersion(t, ctx, tx, project.ID, 1, types.RoadmapStatusDraft)

	final, err := repo.GetFinalByProjectID(ctx, tx, project.ID)
	if err != nil {
		t.Fatalf("get final: %v", err)
	}
	if final != nil {
		t.Fatalf("final = %+v, want nil", final)
	}
}

func TestRoadmapVersionRepo_UpdateMissingRow(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	repo := NewRoadmapVersionRepo(gdb, testutil.Logger(t))

	err := repo.Update(context.Background(), tx, uuid.New(), map[string]any{"diagnosis_summary": "x"})
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
