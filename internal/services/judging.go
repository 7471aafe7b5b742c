package services

import (
	"context"
	"sort"

	"github.com/vaquejada/senhas/internal/errors"
	"github.com/vaquejada/senhas/internal/judging"
	"github.com/vaquejada/senhas/internal/logger"
	"github.com/vaquejada/senhas/internal/models"
	"github.com/vaquejada/senhas/internal/repository"
)

// JudgingServiceRepository defines the repository methods needed by JudgingService
type JudgingServiceRepository interface {
	repository.EventRepository
	repository.CategoryRepository
	repository.PasswordRepository
	repository.StaffRepository
	repository.VoteRepository
}

// JudgingService records judges' calls and aggregates them for speakers
type JudgingService struct {
	log         logger.Logger
	repo        JudgingServiceRepository
	broadcaster Broadcaster
}

// NewJudgingService creates a new JudgingService
func NewJudgingService(log logger.Logger, repo JudgingServiceRepository) *JudgingService {
	return &JudgingService{log: log, repo: repo}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *JudgingService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// VoteRequest is a judge's call for one cattle run of a password
type VoteRequest struct {
	EventID      int
	PasswordID   string
	CattleNumber int
	Vote         models.VoteValue
}

// JudgeVote is a vote as shown to the judge who cast it
type JudgeVote struct {
	models.CattleRunVote
	Editable bool `json:"editable"`
}

// VoteEntry is one judge's call inside a summary
type VoteEntry struct {
	JudgeID      string           `json:"judge_id"`
	JudgeName    string           `json:"judge_name"`
	Vote         models.VoteValue `json:"vote"`
	CattleNumber int              `json:"cattle_number"`
}

// PasswordVotes groups the calls made for one password
type PasswordVotes struct {
	PasswordID string             `json:"password_id"`
	CategoryID int                `json:"category_id"`
	Number     int                `json:"number"`
	Votes      []VoteEntry        `json:"votes"`
	Result     judging.SlotResult `json:"result"`
}

// VoteSummary is the speaker's view of an event
type VoteSummary struct {
	EventID        int             `json:"event_id"`
	ActiveJudges   int             `json:"active_judges"`
	ValidVotes     int             `json:"valid_votes"`
	NullVotes      int             `json:"null_votes"`
	TVVotes        int             `json:"tv_votes"`
	DidNotRunVotes int             `json:"did_not_run_votes"`
	PasswordVotes  []PasswordVotes `json:"password_votes"`
}

// SubmitVote records a judge's call. A first call is inserted; a TV call may be replaced;
// any other existing call is final.
func (s *JudgingService) SubmitVote(ctx context.Context, judgeID string, req VoteRequest) (*JudgeVote, error) {
	if !req.Vote.Valid() {
		return nil, ErrInvalidVote
	}
	if err := s.requireJudge(ctx, judgeID, req.EventID); err != nil {
		return nil, err
	}

	event, err := s.repo.GetEvent(ctx, req.EventID)
	if err != nil {
		return nil, notFound(err, "event")
	}
	run := models.CattleRunVote{CattleNumber: req.CattleNumber}.Run()
	if limit := cattlePerPassword(event); run > limit {
		return nil, errors.Validationf("cattle number must be between 1 and %d", limit)
	}

	pw, err := s.repo.GetPassword(ctx, req.PasswordID)
	if err != nil {
		return nil, notFound(err, "password")
	}
	if _, err := categoryOf(ctx, s.repo, req.EventID, pw.CategoryID); err != nil {
		return nil, errors.NotFound("password not found")
	}
	if pw.Status == models.StatusAvailable {
		return nil, ErrPasswordNoRun
	}

	existing, err := s.repo.FindVote(ctx, judgeID, req.PasswordID, run)
	if err == repository.ErrNotFound {
		id, insertErr := s.repo.InsertVote(ctx, models.CattleRunVote{
			JudgeID:      judgeID,
			EventID:      req.EventID,
			PasswordID:   req.PasswordID,
			CattleNumber: run,
			Vote:         req.Vote,
		})
		switch {
		case insertErr == nil:
			s.log.Info("Vote recorded", "judge_id", judgeID, "password_id", req.PasswordID, "cattle", run, "vote", req.Vote)
			return s.afterChange(ctx, req.EventID, int(id))
		case insertErr != repository.ErrDuplicateVote:
			return nil, insertErr
		}
		// a concurrent request inserted first; its vote decides what happens to ours
		existing, err = s.repo.FindVote(ctx, judgeID, req.PasswordID, run)
	}
	if err != nil {
		return nil, err
	}
	if !judging.IsEditable(existing) {
		return nil, ErrVoteLocked
	}

	if err := s.repo.UpdateVoteValue(ctx, existing.ID, req.Vote); err != nil {
		return nil, err
	}
	s.log.Info("Vote revised", "judge_id", judgeID, "vote_id", existing.ID, "from", existing.Vote, "to", req.Vote)
	return s.afterChange(ctx, req.EventID, existing.ID)
}

// UpdateVote replaces the value of the judge's own vote, which must still be editable
func (s *JudgingService) UpdateVote(ctx context.Context, judgeID string, voteID int, value models.VoteValue) (*JudgeVote, error) {
	if !value.Valid() {
		return nil, ErrInvalidVote
	}
	v, err := s.repo.GetVote(ctx, voteID)
	if err != nil {
		return nil, notFound(err, "vote")
	}
	if v.JudgeID != judgeID {
		return nil, ErrNotVoteOwner
	}
	if !judging.IsEditable(v) {
		return nil, ErrVoteLocked
	}

	if err := s.repo.UpdateVoteValue(ctx, voteID, value); err != nil {
		return nil, notFound(err, "vote")
	}
	s.log.Info("Vote revised", "judge_id", judgeID, "vote_id", voteID, "from", v.Vote, "to", value)
	return s.afterChange(ctx, v.EventID, voteID)
}

// afterChange reloads the vote and pushes a fresh summary to listeners
func (s *JudgingService) afterChange(ctx context.Context, eventID, voteID int) (*JudgeVote, error) {
	v, err := s.repo.GetVote(ctx, voteID)
	if err != nil {
		return nil, notFound(err, "vote")
	}
	if s.broadcaster != nil {
		summary, err := s.Summary(ctx, eventID)
		if err != nil {
			s.log.Warn("Failed to build vote summary", "event_id", eventID, "error", err)
		} else {
			s.broadcaster.BroadcastVoteSummary(eventID, summary)
		}
	}
	return &JudgeVote{CattleRunVote: *v, Editable: judging.IsEditable(v)}, nil
}

// JudgeVotes returns the judge's own votes for an event, each flagged editable or not
func (s *JudgingService) JudgeVotes(ctx context.Context, eventID int, judgeID string) ([]JudgeVote, error) {
	if err := s.requireJudge(ctx, judgeID, eventID); err != nil {
		return nil, err
	}
	votes, err := s.repo.ListJudgeVotes(ctx, eventID, judgeID)
	if err != nil {
		return nil, err
	}

	out := make([]JudgeVote, len(votes))
	for i := range votes {
		out[i] = JudgeVote{CattleRunVote: votes[i], Editable: judging.IsEditable(&votes[i])}
	}
	return out, nil
}

// Summary aggregates every vote of an event, per password and per cattle run
func (s *JudgingService) Summary(ctx context.Context, eventID int) (*VoteSummary, error) {
	event, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return nil, notFound(err, "event")
	}
	staff, err := s.repo.ListStaff(ctx, eventID)
	if err != nil {
		return nil, err
	}
	votes, err := s.repo.ListEventVotes(ctx, eventID)
	if err != nil {
		return nil, err
	}

	totals := judging.Aggregate(votes)
	summary := &VoteSummary{
		EventID:        eventID,
		ActiveJudges:   len(judgesOf(staff)),
		ValidVotes:     totals.Valid,
		NullVotes:      totals.Null,
		TVVotes:        totals.TV,
		DidNotRunVotes: totals.DidNotRun,
		PasswordVotes:  []PasswordVotes{},
	}

	byPassword := make(map[string][]models.CattleRunVote)
	var order []string
	for _, v := range votes {
		if _, ok := byPassword[v.PasswordID]; !ok {
			order = append(order, v.PasswordID)
		}
		byPassword[v.PasswordID] = append(byPassword[v.PasswordID], v)
	}

	perSlot := cattlePerPassword(event)
	for _, id := range order {
		pv := PasswordVotes{PasswordID: id, Votes: []VoteEntry{}}
		if pw, err := s.repo.GetPassword(ctx, id); err == nil {
			pv.CategoryID = pw.CategoryID
			pv.Number = pw.Number
		} else if err != repository.ErrNotFound {
			return nil, err
		}
		for _, v := range byPassword[id] {
			pv.Votes = append(pv.Votes, VoteEntry{
				JudgeID:      v.JudgeID,
				JudgeName:    v.JudgeName,
				Vote:         v.Vote,
				CattleNumber: v.Run(),
			})
		}
		pv.Result = judging.AggregateBySlot(byPassword[id], perSlot)
		summary.PasswordVotes = append(summary.PasswordVotes, pv)
	}

	sort.SliceStable(summary.PasswordVotes, func(i, j int) bool {
		a, b := summary.PasswordVotes[i], summary.PasswordVotes[j]
		if a.CategoryID != b.CategoryID {
			return a.CategoryID < b.CategoryID
		}
		return a.Number < b.Number
	})
	return summary, nil
}

// requireJudge checks judgeID is a judge of eventID
func (s *JudgingService) requireJudge(ctx context.Context, judgeID string, eventID int) error {
	st, err := s.repo.GetStaff(ctx, judgeID, eventID)
	if err == repository.ErrNotFound {
		return ErrNotJudge
	}
	if err != nil {
		return err
	}
	if st.Role != models.RoleJudge {
		return ErrNotJudge
	}
	return nil
}

func cattlePerPassword(e *models.Event) int {
	if e.CattlePerPassword < 1 {
		return 1
	}
	return e.CattlePerPassword
}
