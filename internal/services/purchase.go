package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"github.com/vaquejada/senhas/internal/errors"
	"github.com/vaquejada/senhas/internal/logger"
	"github.com/vaquejada/senhas/internal/models"
	"github.com/vaquejada/senhas/internal/repository"
	"github.com/vaquejada/senhas/internal/slots"
	"github.com/vaquejada/senhas/pkg/payment"
)

// PurchaseServiceRepository defines the repository methods needed by PurchaseService
type PurchaseServiceRepository interface {
	repository.CategoryRepository
	repository.PasswordRepository
	repository.PurchaseRepository
}

// DraftSaver parks a selection while the buyer logs in
type DraftSaver interface {
	SaveSession(ctx context.Context, eventID int, key string, sess *slots.Session) error
}

// PurchaseService turns a buyer's selection into reserved passwords and a payment order
type PurchaseService struct {
	log         logger.Logger
	repo        PurchaseServiceRepository
	payments    payment.Client
	drafts      DraftSaver
	broadcaster Broadcaster
	now         func() time.Time
}

// NewPurchaseService creates a new PurchaseService. drafts may be nil.
func NewPurchaseService(log logger.Logger, repo PurchaseServiceRepository, payments payment.Client, drafts DraftSaver) *PurchaseService {
	return &PurchaseService{
		log:      log,
		repo:     repo,
		payments: payments,
		drafts:   drafts,
		now:      time.Now,
	}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *PurchaseService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetClock overrides the time source used for category windows
func (s *PurchaseService) SetClock(now func() time.Time) {
	s.now = now
}

// CheckoutRequest is the buyer's selection as submitted
type CheckoutRequest struct {
	EventID       int
	CategoryID    int
	Numbers       []int
	TermsAccepted bool
	DraftKey      string
}

// CheckoutResult is a completed checkout
type CheckoutResult struct {
	Purchase    models.Purchase      `json:"purchase"`
	Intent      slots.PurchaseIntent `json:"intent"`
	Passwords   []models.SlotRecord  `json:"passwords"`
	CheckoutURL string               `json:"checkout_url,omitempty"`
}

// Checkout replays the requested numbers into a selection session against the live grid,
// validates it, reserves the passwords and hands the order to the payment service.
// Unauthenticated callers get LOGIN_REQUIRED and, when a draft key is given, their
// selection is parked for DraftService.Restore.
func (s *PurchaseService) Checkout(ctx context.Context, identity *models.Identity, req CheckoutRequest) (*CheckoutResult, error) {
	cat, err := categoryOf(ctx, s.repo, req.EventID, req.CategoryID)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.ListPasswords(ctx, cat.ID)
	if err != nil {
		return nil, err
	}
	grid := slots.BuildGrid(cat.MaxRunners, records)

	sess := slots.NewSession()
	sess.ChooseCategory(*cat)
	var unknown, stale []slots.SlotInfo
	seen := make(map[int]bool, len(req.Numbers))
	for _, n := range req.Numbers {
		if seen[n] {
			continue
		}
		seen[n] = true
		info, ok := grid.Lookup(n)
		switch {
		case !ok:
			unknown = append(unknown, slots.SlotInfo{Number: n})
		case info.Occupied:
			stale = append(stale, info)
		default:
			sess.ToggleSlot(grid, n)
		}
	}
	sess.AcceptTerms(req.TermsAccepted)

	intent, err := slots.Checkout(sess, identity != nil, req.EventID)
	if err == slots.ErrLoginRequired {
		s.parkDraft(ctx, req, sess)
		return nil, err
	}
	if len(unknown) > 0 {
		return nil, errors.Validationf("password %d does not exist in %s", unknown[0].Number, cat.Name).WithCode(slots.CodeInvalidSelection)
	}
	if len(stale) > 0 {
		return nil, repository.StaleSlot(stale[0].Number, string(stale[0].Status))
	}
	if err != nil {
		return nil, err
	}
	if !cat.OpenAt(s.now()) {
		return nil, ErrCategoryClosed
	}

	purchase := models.Purchase{
		ID:         uuid.NewString(),
		EventID:    req.EventID,
		CategoryID: cat.ID,
		BuyerID:    identity.UserID,
		Numbers:    intent.Numbers,
		TotalCents: intent.TotalCents,
		Status:     models.PurchasePending,
		CreatedAt:  s.now(),
	}
	if err := s.repo.CreatePurchase(ctx, purchase); err != nil {
		return nil, err
	}

	reserved, err := s.repo.ReservePasswords(ctx, cat.ID, intent.Numbers, purchase.ID, identity.UserID)
	if err != nil {
		s.markRejected(ctx, purchase.ID)
		return nil, err
	}

	recordIDs := make([]string, len(reserved))
	for i, r := range reserved {
		recordIDs[i] = r.ID
	}
	receipt, err := s.payments.SubmitPurchase(ctx, payment.Order{
		PurchaseID:     purchase.ID,
		BuyerID:        identity.UserID,
		EventID:        intent.EventID,
		CategoryID:     intent.CategoryID,
		RecordIDs:      recordIDs,
		Numbers:        intent.Numbers,
		Quantity:       intent.Quantity,
		UnitPriceCents: intent.UnitPriceCents,
		TotalCents:     intent.TotalCents,
	})
	if err != nil {
		if relErr := s.repo.ReleasePurchase(ctx, purchase.ID); relErr != nil {
			s.log.Error("Failed to release reservation", "purchase_id", purchase.ID, "error", relErr)
		}
		s.markRejected(ctx, purchase.ID)
		if rej, ok := payment.IsRejected(err); ok {
			s.log.Info("Purchase rejected", "purchase_id", purchase.ID, "reason", rej.Reason)
			return nil, errors.Conflict(rej.Reason).WithCode(CodePaymentRejected)
		}
		s.log.Error("Payment service failed", "purchase_id", purchase.ID, "error", err)
		return nil, errors.Wrap(err, errors.ErrInternal, "payment service unavailable, please try again").WithCode(CodePaymentDown)
	}

	// an unsettled payment keeps the purchase pending; the numbers stay reserved
	status := models.PurchaseConfirmed
	if receipt.Pending {
		status = models.PurchasePending
	}
	if err := s.repo.SetPurchaseStatus(ctx, purchase.ID, status, receipt.Reference); err != nil {
		return nil, err
	}
	purchase.Status = status
	purchase.ExternalRef = receipt.Reference
	sess.MarkSubmitted()

	s.log.Info("Purchase submitted", "purchase_id", purchase.ID, "status", status, "event_id", req.EventID, "category_id", cat.ID, "numbers", intent.Numbers, "total_cents", intent.TotalCents)
	if s.broadcaster != nil {
		s.broadcaster.BroadcastSlotsUpdated(req.EventID, cat.ID, intent.Numbers)
	}

	return &CheckoutResult{
		Purchase:    purchase,
		Intent:      *intent,
		Passwords:   reserved,
		CheckoutURL: receipt.CheckoutURL,
	}, nil
}

func (s *PurchaseService) parkDraft(ctx context.Context, req CheckoutRequest, sess *slots.Session) {
	if s.drafts == nil || req.DraftKey == "" {
		return
	}
	if err := s.drafts.SaveSession(ctx, req.EventID, req.DraftKey, sess); err != nil {
		s.log.Warn("Failed to park selection", "event_id", req.EventID, "error", err)
	}
}

func (s *PurchaseService) markRejected(ctx context.Context, purchaseID string) {
	if err := s.repo.SetPurchaseStatus(ctx, purchaseID, models.PurchaseRejected, ""); err != nil {
		s.log.Error("Failed to mark purchase rejected", "purchase_id", purchaseID, "error", err)
	}
}

// GetPurchase returns a purchase to its buyer or an organizer
func (s *PurchaseService) GetPurchase(ctx context.Context, identity *models.Identity, id string) (*models.Purchase, error) {
	p, err := s.repo.GetPurchase(ctx, id)
	if err != nil {
		return nil, notFound(err, "purchase")
	}
	if !identity.IsOrganizer() && (identity == nil || identity.UserID != p.BuyerID) {
		return nil, ErrNotTicketOwner
	}
	return p, nil
}

// SetPasswordStatus moves a password through its lifecycle (organizer action)
func (s *PurchaseService) SetPasswordStatus(ctx context.Context, passwordID string, status models.SlotStatus) (*models.SlotRecord, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	pw, err := s.repo.GetPassword(ctx, passwordID)
	if err != nil {
		return nil, notFound(err, "password")
	}
	if err := s.repo.SetPasswordStatus(ctx, passwordID, status); err != nil {
		return nil, notFound(err, "password")
	}
	pw.Status = status

	cat, err := s.repo.GetCategory(ctx, pw.CategoryID)
	if err != nil {
		return nil, notFound(err, "category")
	}
	s.log.Info("Password status changed", "password_id", passwordID, "number", pw.Number, "status", status)
	if s.broadcaster != nil {
		s.broadcaster.BroadcastSlotsUpdated(cat.EventID, cat.ID, []int{pw.Number})
	}
	return pw, nil
}

// TicketCode is the text encoded in a password's QR ticket
func TicketCode(eventID, categoryID, number int) string {
	return fmt.Sprintf("VAQ:%d:%d:%d", eventID, categoryID, number)
}

// TicketQR renders the QR ticket of a claimed password as PNG for its buyer or an organizer
func (s *PurchaseService) TicketQR(ctx context.Context, identity *models.Identity, passwordID string) ([]byte, error) {
	pw, err := s.repo.GetPassword(ctx, passwordID)
	if err != nil {
		return nil, notFound(err, "password")
	}
	if !identity.IsOrganizer() && (identity == nil || pw.BuyerID == "" || identity.UserID != pw.BuyerID) {
		return nil, ErrNotTicketOwner
	}
	cat, err := s.repo.GetCategory(ctx, pw.CategoryID)
	if err != nil {
		return nil, notFound(err, "category")
	}
	return qrcode.Encode(TicketCode(cat.EventID, cat.ID, pw.Number), qrcode.Medium, 256)
}
