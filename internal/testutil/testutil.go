package testutil

import (
	"context"
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/vaquejada/senhas/internal/logger"
	"github.com/vaquejada/senhas/internal/models"
	"github.com/vaquejada/senhas/internal/repository"
)

// NewTestRepository creates a new in-memory repository for testing.
// Each call creates a fresh database with all migrations applied.
func NewTestRepository(t *testing.T) *repository.Repository {
	t.Helper()

	repo, err := repository.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}

	t.Cleanup(func() {
		repo.Close()
	})

	return repo
}

// Fixture is a seeded event with one category and one judge
type Fixture struct {
	EventID    int
	CategoryID int
	JudgeID    string
}

// Seed creates an event (two cattle per password), a category priced at 15000
// cents with maxRunners passwords, and a judge with id "judge-1".
func Seed(t *testing.T, repo repository.FullRepository, maxRunners int) Fixture {
	t.Helper()
	ctx := context.Background()

	eventID, err := repo.CreateEvent(ctx, models.Event{Name: "Vaquejada Teste", City: "Caruaru", CattlePerPassword: 2})
	if err != nil {
		t.Fatalf("failed to seed event: %v", err)
	}
	categoryID, err := repo.CreateCategory(ctx, models.Category{
		EventID:        int(eventID),
		Name:           "Profissional",
		UnitPriceCents: 15000,
		MaxRunners:     maxRunners,
	})
	if err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}
	if err := repo.CreateStaff(ctx, models.Staff{ID: "judge-1", EventID: int(eventID), Name: "Juiz Um", Role: models.RoleJudge}); err != nil {
		t.Fatalf("failed to seed judge: %v", err)
	}

	return Fixture{EventID: int(eventID), CategoryID: int(categoryID), JudgeID: "judge-1"}
}

// Claim reserves numbers under a throwaway purchase and returns the created records
func Claim(t *testing.T, repo repository.FullRepository, categoryID int, numbers ...int) []models.SlotRecord {
	t.Helper()

	records, err := repo.ReservePasswords(context.Background(), categoryID, numbers, "seed", "seed-buyer")
	if err != nil {
		t.Fatalf("failed to claim passwords: %v", err)
	}
	return records
}

// NewLogger returns a logger that discards everything
func NewLogger() logger.Logger {
	return logger.NewWithCore(zapcore.NewNopCore(), zapcore.InfoLevel)
}
