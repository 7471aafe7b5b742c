package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/vaquejada/senhas/internal/models"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &Repository{db: db, now: time.Now}, mock
}

// TestListPasswords_ScanError tests row scanning error
func TestListPasswords_ScanError(t *testing.T) {
	repo, mock := newMockRepo(t)

	// number should be int, not string
	rows := sqlmock.NewRows([]string{"id", "category_id", "number", "status", "purchase_id", "buyer_id"}).
		AddRow("a", 1, "not-a-number", "reserved", nil, nil)
	mock.ExpectQuery("SELECT (.+) FROM passwords").WillReturnRows(rows)

	if _, err := repo.ListPasswords(context.Background(), 1); err == nil {
		t.Error("expected error from scan failure, got nil")
	}
}

// TestListCategories_ScanError tests row scanning error
func TestListCategories_ScanError(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"id", "event_id", "name", "unit_price_cents", "max_runners", "starts_at", "ends_at", "current"}).
		AddRow("bad-id", 1, "Cat", 100, 10, nil, nil, 0)
	mock.ExpectQuery("SELECT (.+) FROM categories").WillReturnRows(rows)

	if _, err := repo.ListCategories(context.Background(), 1); err == nil {
		t.Error("expected error from scan failure, got nil")
	}
}

// TestListEventVotes_QueryError tests query failure propagation
func TestListEventVotes_QueryError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM votes").WillReturnError(errors.New("disk I/O error"))

	if _, err := repo.ListEventVotes(context.Background(), 1); err == nil {
		t.Error("expected query error, got nil")
	}
}

// TestReservePasswords_InsertErrorRollsBack ensures a failed insert aborts the transaction
func TestReservePasswords_InsertErrorRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT max_runners FROM categories").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"max_runners"}).AddRow(10))
	mock.ExpectQuery("SELECT id, status FROM passwords").
		WithArgs(1, 3).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}))
	mock.ExpectExec("INSERT INTO passwords").WillReturnError(errors.New("database is locked"))
	mock.ExpectRollback()

	_, err := repo.ReservePasswords(context.Background(), 1, []int{3}, "p", "b")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// TestReservePasswords_CommitError tests commit failure propagation
func TestReservePasswords_CommitError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT max_runners FROM categories").
		WillReturnRows(sqlmock.NewRows([]string{"max_runners"}).AddRow(10))
	mock.ExpectQuery("SELECT id, status FROM passwords").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow("rec-1", "available"))
	mock.ExpectExec("UPDATE passwords").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(errors.New("commit failed"))

	if _, err := repo.ReservePasswords(context.Background(), 1, []int{3}, "p", "b"); err == nil {
		t.Error("expected commit error, got nil")
	}
}

// TestSetPasswordStatus_RowsAffectedError tests result error propagation
func TestSetPasswordStatus_RowsAffectedError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("UPDATE passwords").
		WillReturnResult(sqlmock.NewErrorResult(errors.New("no rows info")))

	if err := repo.SetPasswordStatus(context.Background(), "a", models.StatusUsed); err == nil {
		t.Error("expected error, got nil")
	}
}

// TestGetPurchase_BadNumbers tests a corrupt numbers column
func TestGetPurchase_BadNumbers(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"id", "event_id", "category_id", "buyer_id", "numbers", "total_cents", "status", "external_ref", "created_at"}).
		AddRow("p", 1, 1, "b", "{not json", 100, "pending", nil, nil)
	mock.ExpectQuery("SELECT (.+) FROM purchases").WillReturnRows(rows)

	if _, err := repo.GetPurchase(context.Background(), "p"); err == nil {
		t.Error("expected decode error, got nil")
	}
}

// TestInsertVote_GenericError tests non-constraint errors pass through
func TestInsertVote_GenericError(t *testing.T) {
	repo, mock := newMockRepo(t)

	boom := errors.New("boom")
	mock.ExpectExec("INSERT INTO votes").WillReturnError(boom)

	_, err := repo.InsertVote(context.Background(), models.CattleRunVote{JudgeID: "j", PasswordID: "p", Vote: models.VoteValid})
	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}
