package services_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/vaquejada/senhas/internal/errors"
	"github.com/vaquejada/senhas/internal/judging"
	"github.com/vaquejada/senhas/internal/models"
	"github.com/vaquejada/senhas/internal/repository/mock"
	"github.com/vaquejada/senhas/internal/services"
	"github.com/vaquejada/senhas/internal/testutil"
)

type judgingSetup struct {
	repo      *mock.Repository
	fx        testutil.Fixture
	passwords []models.SlotRecord
	hub       *recordingBroadcaster
	svc       *services.JudgingService
}

func newJudgingSetup(t *testing.T) *judgingSetup {
	t.Helper()
	realRepo := testutil.NewTestRepository(t)
	fx := testutil.Seed(t, realRepo, 10)
	passwords := testutil.Claim(t, realRepo, fx.CategoryID, 1, 2)
	ctx := context.Background()
	for _, st := range []models.Staff{
		{ID: "judge-2", EventID: fx.EventID, Name: "Juiz Dois", Role: models.RoleJudge},
		{ID: "speaker-1", EventID: fx.EventID, Name: "Locutor", Role: models.RoleSpeaker},
	} {
		if err := realRepo.CreateStaff(ctx, st); err != nil {
			t.Fatalf("CreateStaff failed: %v", err)
		}
	}

	repo := mock.NewRepository(realRepo)
	svc := services.NewJudgingService(testutil.NewLogger(), repo)
	hub := &recordingBroadcaster{}
	svc.SetBroadcaster(hub)
	return &judgingSetup{repo: repo, fx: fx, passwords: passwords, hub: hub, svc: svc}
}

func (s *judgingSetup) vote(passwordIdx, cattle int, v models.VoteValue) services.VoteRequest {
	return services.VoteRequest{
		EventID:      s.fx.EventID,
		PasswordID:   s.passwords[passwordIdx].ID,
		CattleNumber: cattle,
		Vote:         v,
	}
}

func TestJudgingService_SubmitVote(t *testing.T) {
	js := newJudgingSetup(t)

	got, err := js.svc.SubmitVote(context.Background(), "judge-1", js.vote(0, 0, models.VoteValid))
	if err != nil {
		t.Fatalf("SubmitVote failed: %v", err)
	}
	if got.CattleNumber != 1 || got.Vote != models.VoteValid || got.Editable {
		t.Errorf("unexpected vote %+v", got)
	}
	if len(js.hub.summaries) != 1 || js.hub.summaries[0].ValidVotes != 1 {
		t.Errorf("expected one summary broadcast with one valid vote, got %+v", js.hub.summaries)
	}
}

func TestJudgingService_SubmitVote_TVStaysOpen(t *testing.T) {
	js := newJudgingSetup(t)
	ctx := context.Background()

	first, err := js.svc.SubmitVote(ctx, "judge-1", js.vote(0, 1, models.VoteTV))
	if err != nil {
		t.Fatalf("SubmitVote failed: %v", err)
	}
	if !first.Editable {
		t.Error("expected TV vote to be editable")
	}

	second, err := js.svc.SubmitVote(ctx, "judge-1", js.vote(0, 1, models.VoteNull))
	if err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
	if second.ID != first.ID || second.Vote != models.VoteNull {
		t.Errorf("expected vote %d revised to NULL, got %+v", first.ID, second)
	}

	if _, err := js.svc.SubmitVote(ctx, "judge-1", js.vote(0, 1, models.VoteValid)); err != services.ErrVoteLocked {
		t.Errorf("expected vote locked, got %v", err)
	}
}

func TestJudgingService_SubmitVote_Rejections(t *testing.T) {
	js := newJudgingSetup(t)
	ctx := context.Background()
	unclaimed, err := js.repo.ReservePasswords(ctx, js.fx.CategoryID, []int{9}, "gone", "x")
	if err != nil {
		t.Fatalf("ReservePasswords failed: %v", err)
	}
	if err := js.repo.ReleasePurchase(ctx, "gone"); err != nil {
		t.Fatalf("ReleasePurchase failed: %v", err)
	}

	tests := []struct {
		name  string
		judge string
		req   services.VoteRequest
		check func(error) bool
	}{
		{"invalid value", "judge-1", js.vote(0, 1, "MAYBE"), func(err error) bool { return err == services.ErrInvalidVote }},
		{"speaker cannot vote", "speaker-1", js.vote(0, 1, models.VoteValid), func(err error) bool { return err == services.ErrNotJudge }},
		{"unknown judge", "ghost", js.vote(0, 1, models.VoteValid), func(err error) bool { return err == services.ErrNotJudge }},
		{"cattle out of range", "judge-1", js.vote(0, 3, models.VoteValid), func(err error) bool { return errors.Is(err, errors.ErrValidation) }},
		{"unknown password", "judge-1", services.VoteRequest{EventID: js.fx.EventID, PasswordID: "nope", Vote: models.VoteValid}, func(err error) bool { return errors.Is(err, errors.ErrNotFound) }},
		{"password without runner", "judge-1", services.VoteRequest{EventID: js.fx.EventID, PasswordID: unclaimed[0].ID, Vote: models.VoteValid}, func(err error) bool { return err == services.ErrPasswordNoRun }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := js.svc.SubmitVote(ctx, tt.judge, tt.req)
			if !tt.check(err) {
				t.Errorf("unexpected error %v", err)
			}
		})
	}
}

func TestJudgingService_SubmitVote_ConcurrentInsert(t *testing.T) {
	tests := []struct {
		name    string
		winner  models.VoteValue
		wantErr error
	}{
		{"final winner locks", models.VoteValid, services.ErrVoteLocked},
		{"tv winner is revised", models.VoteTV, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			js := newJudgingSetup(t)
			ctx := context.Background()
			if _, err := js.svc.SubmitVote(ctx, "judge-1", js.vote(0, 1, tt.winner)); err != nil {
				t.Fatalf("SubmitVote failed: %v", err)
			}

			// the winning vote lands between our FindVote and InsertVote
			raced := mock.NewRepository(js.repo)
			raced.FindVoteMisses = 1
			svc := services.NewJudgingService(testutil.NewLogger(), raced)

			got, err := svc.SubmitVote(ctx, "judge-1", js.vote(0, 1, models.VoteNull))
			if err != tt.wantErr {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr == nil && got.Vote != models.VoteNull {
				t.Errorf("expected TV vote revised to NULL, got %+v", got)
			}
		})
	}
}

func TestJudgingService_SubmitVote_SameJudgeTwoEvents(t *testing.T) {
	realRepo := testutil.NewTestRepository(t)
	first := testutil.Seed(t, realRepo, 5)
	second := testutil.Seed(t, realRepo, 5)
	ctx := context.Background()

	if first.JudgeID != second.JudgeID {
		t.Fatalf("expected one judge staffed on both events, got %s and %s", first.JudgeID, second.JudgeID)
	}

	staffSvc := services.NewStaffService(testutil.NewLogger(), realRepo)
	_, err := staffSvc.CreateStaff(ctx, second.EventID, models.Staff{ID: first.JudgeID, Name: "Juiz Um", Role: models.RoleJudge})
	if !errors.Is(err, errors.ErrConflict) {
		t.Errorf("expected conflict staffing the judge twice on one event, got %v", err)
	}

	svc := services.NewJudgingService(testutil.NewLogger(), realRepo)
	for _, fx := range []testutil.Fixture{first, second} {
		pw := testutil.Claim(t, realRepo, fx.CategoryID, 1)
		req := services.VoteRequest{EventID: fx.EventID, PasswordID: pw[0].ID, CattleNumber: 1, Vote: models.VoteValid}
		got, err := svc.SubmitVote(ctx, first.JudgeID, req)
		if err != nil {
			t.Fatalf("vote on event %d failed: %v", fx.EventID, err)
		}
		if got.EventID != fx.EventID || got.JudgeName != "Juiz Um" {
			t.Errorf("unexpected vote %+v", got)
		}
	}
}

func TestJudgingService_UpdateVote(t *testing.T) {
	js := newJudgingSetup(t)
	ctx := context.Background()

	tv, err := js.svc.SubmitVote(ctx, "judge-1", js.vote(1, 2, models.VoteTV))
	if err != nil {
		t.Fatalf("SubmitVote failed: %v", err)
	}

	if _, err := js.svc.UpdateVote(ctx, "judge-2", tv.ID, models.VoteValid); err != services.ErrNotVoteOwner {
		t.Errorf("expected not owner, got %v", err)
	}
	if _, err := js.svc.UpdateVote(ctx, "judge-1", tv.ID, "NOPE"); err != services.ErrInvalidVote {
		t.Errorf("expected invalid vote, got %v", err)
	}

	updated, err := js.svc.UpdateVote(ctx, "judge-1", tv.ID, models.VoteDidNotRun)
	if err != nil {
		t.Fatalf("UpdateVote failed: %v", err)
	}
	if updated.Vote != models.VoteDidNotRun || updated.Editable {
		t.Errorf("unexpected vote %+v", updated)
	}

	if _, err := js.svc.UpdateVote(ctx, "judge-1", tv.ID, models.VoteTV); err != services.ErrVoteLocked {
		t.Errorf("expected vote locked, got %v", err)
	}
	if _, err := js.svc.UpdateVote(ctx, "judge-1", 9999, models.VoteTV); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestJudgingService_JudgeVotes(t *testing.T) {
	js := newJudgingSetup(t)
	ctx := context.Background()
	js.svc.SubmitVote(ctx, "judge-1", js.vote(0, 1, models.VoteTV))
	js.svc.SubmitVote(ctx, "judge-1", js.vote(0, 2, models.VoteValid))
	js.svc.SubmitVote(ctx, "judge-2", js.vote(0, 1, models.VoteNull))

	votes, err := js.svc.JudgeVotes(ctx, js.fx.EventID, "judge-1")
	if err != nil {
		t.Fatalf("JudgeVotes failed: %v", err)
	}
	if len(votes) != 2 {
		t.Fatalf("expected 2 votes, got %d", len(votes))
	}
	for _, v := range votes {
		if v.Editable != (v.Vote == models.VoteTV) {
			t.Errorf("vote %s: editable=%v", v.Vote, v.Editable)
		}
	}

	if _, err := js.svc.JudgeVotes(ctx, js.fx.EventID, "speaker-1"); err != services.ErrNotJudge {
		t.Errorf("expected not judge, got %v", err)
	}
}

func TestJudgingService_Summary(t *testing.T) {
	js := newJudgingSetup(t)
	ctx := context.Background()
	for _, c := range []struct {
		judge string
		req   services.VoteRequest
	}{
		{"judge-1", js.vote(1, 1, models.VoteValid)},
		{"judge-2", js.vote(1, 1, models.VoteValid)},
		{"judge-1", js.vote(1, 2, models.VoteNull)},
		{"judge-2", js.vote(1, 2, models.VoteTV)},
		{"judge-1", js.vote(0, 1, models.VoteDidNotRun)},
	} {
		if _, err := js.svc.SubmitVote(ctx, c.judge, c.req); err != nil {
			t.Fatalf("SubmitVote failed: %v", err)
		}
	}

	summary, err := js.svc.Summary(ctx, js.fx.EventID)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.ActiveJudges != 2 {
		t.Errorf("expected 2 active judges, got %d", summary.ActiveJudges)
	}
	if summary.ValidVotes != 2 || summary.NullVotes != 1 || summary.TVVotes != 1 || summary.DidNotRunVotes != 1 {
		t.Errorf("unexpected totals %+v", summary)
	}
	if len(summary.PasswordVotes) != 2 {
		t.Fatalf("expected 2 passwords, got %d", len(summary.PasswordVotes))
	}

	first, second := summary.PasswordVotes[0], summary.PasswordVotes[1]
	if first.Number != 1 || second.Number != 2 {
		t.Errorf("expected passwords ordered by number, got %d then %d", first.Number, second.Number)
	}
	if first.Result.Runs[0].Stats.Outcome != judging.OutcomeDidNotRun {
		t.Errorf("password 1 run 1: expected DID_NOT_RUN, got %s", first.Result.Runs[0].Stats.Outcome)
	}
	if first.Result.Runs[1].Stats.Outcome != judging.OutcomePending {
		t.Errorf("password 1 run 2: expected PENDING, got %s", first.Result.Runs[1].Stats.Outcome)
	}
	if second.Result.Runs[0].Stats.Outcome != judging.OutcomeValid || second.Result.Runs[1].Stats.Outcome != judging.OutcomeTie {
		t.Errorf("password 2: unexpected runs %+v", second.Result.Runs)
	}
	if len(second.Result.CompletedJudges) != 2 {
		t.Errorf("expected both judges complete on password 2, got %v", second.Result.CompletedJudges)
	}
	if len(second.Votes) != 4 || second.Votes[0].JudgeName == "" {
		t.Errorf("expected 4 named votes, got %+v", second.Votes)
	}
}

func TestJudgingService_Summary_Empty(t *testing.T) {
	js := newJudgingSetup(t)

	summary, err := js.svc.Summary(context.Background(), js.fx.EventID)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.PasswordVotes == nil || len(summary.PasswordVotes) != 0 {
		t.Errorf("expected empty non-nil password votes, got %v", summary.PasswordVotes)
	}
}

func TestJudgingService_Summary_Errors(t *testing.T) {
	js := newJudgingSetup(t)
	ctx := context.Background()

	if _, err := js.svc.Summary(ctx, 404); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}

	js.repo.ListEventVotesError = stderrors.New("database error")
	if _, err := js.svc.Summary(ctx, js.fx.EventID); err == nil {
		t.Error("expected error, got nil")
	}
}
