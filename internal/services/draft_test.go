package services_test

import (
	"context"
	"testing"

	"github.com/vaquejada/senhas/internal/draft"
	"github.com/vaquejada/senhas/internal/services"
	"github.com/vaquejada/senhas/internal/slots"
	"github.com/vaquejada/senhas/internal/testutil"
)

func TestDraftService_SaveAndRestore(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	fx := testutil.Seed(t, repo, 10)
	svc := services.NewDraftService(testutil.NewLogger(), draft.NewMemoryStore(0), repo)
	ctx := context.Background()

	cat, err := repo.GetCategory(ctx, fx.CategoryID)
	if err != nil {
		t.Fatalf("GetCategory failed: %v", err)
	}
	grid := slots.BuildGrid(cat.MaxRunners, nil)
	sess := slots.NewSession()
	sess.ChooseCategory(*cat)
	sess.ToggleSlot(grid, 8)
	sess.ToggleSlot(grid, 2)

	if err := svc.SaveSession(ctx, fx.EventID, "k1", sess); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	// a draft is scoped to its event
	if _, ok, err := svc.Restore(ctx, fx.EventID+1, "k1"); err != nil || ok {
		t.Errorf("expected no draft for another event, got ok=%v err=%v", ok, err)
	}

	got, ok, err := svc.Restore(ctx, fx.EventID, "k1")
	if err != nil || !ok {
		t.Fatalf("expected draft, got ok=%v err=%v", ok, err)
	}
	if got.CategoryID != fx.CategoryID || len(got.Numbers) != 2 || got.Numbers[0] != 2 || got.Numbers[1] != 8 {
		t.Errorf("unexpected draft %+v", got)
	}
	if len(got.Selections) != 2 {
		t.Errorf("expected 2 selections, got %d", len(got.Selections))
	}

	// restoring consumes the draft
	if _, ok, _ := svc.Restore(ctx, fx.EventID, "k1"); ok {
		t.Error("expected draft to be removed after restore")
	}
}

func TestDraftService_InvalidKey(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	svc := services.NewDraftService(testutil.NewLogger(), draft.NewMemoryStore(0), repo)
	ctx := context.Background()
	long := make([]byte, 129)
	for i := range long {
		long[i] = 'k'
	}

	if err := svc.SaveSession(ctx, 1, "", slots.NewSession()); err != services.ErrInvalidDraftKey {
		t.Errorf("expected invalid key, got %v", err)
	}
	if _, _, err := svc.Restore(ctx, 1, string(long)); err != services.ErrInvalidDraftKey {
		t.Errorf("expected invalid key, got %v", err)
	}
}
