package service

import (
	"context"
	"errors"
	"fmt"

	bookingerrors "dira/internal/booking/errors"
	bookingrepo "dira/internal/booking/repository"
	"dira/internal/deposit/validator"
	moderationrepo "dira/internal/moderation/repository"
	"dira/pkg/auth"
	"dira/pkg/config"
	apperrors "dira/pkg/errors"
	"dira/pkg/gateway"
	"dira/pkg/model"
	"dira/pkg/notifier"
)

// AuthorizeRequest places a manual-capture hold for a booking's security
// deposit. Tier is optional; precedence is request > booking > STANDARD.
type AuthorizeRequest struct {
	PaymentMethodRef string `json:"payment_method_ref" validate:"required"`
	Tier             string `json:"tier" validate:"omitempty,oneof=STANDARD LUXURY"`
}

type AuthorizeResult struct {
	AuthorizationID string            `json:"authorization_id"`
	Tier            model.DepositTier `json:"tier"`
	Amount          int64             `json:"amount"`
	Currency        string            `json:"currency"`
}

type CaptureRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

type DepositService interface {
	Authorize(ctx context.Context, bookingID string, req *AuthorizeRequest) (*AuthorizeResult, error)
	Release(ctx context.Context, bookingID string) error
	CaptureForDamages(ctx context.Context, bookingID string, req *CaptureRequest) error
}

type depositService struct {
	repo      bookingrepo.BookingRepository
	lockRepo  bookingrepo.DepositLockRepository
	auditRepo moderationrepo.AuditRepository
	gateway   gateway.Gateway
	notifier  notifier.Dispatcher
	validator *validator.DepositValidator
	cfg       *config.Config
}

func NewDepositService(
	repo bookingrepo.BookingRepository,
	lockRepo bookingrepo.DepositLockRepository,
	auditRepo moderationrepo.AuditRepository,
	gw gateway.Gateway,
	dispatcher notifier.Dispatcher,
	v *validator.DepositValidator,
	cfg *config.Config,
) DepositService {
	return &depositService{
		repo:      repo,
		lockRepo:  lockRepo,
		auditRepo: auditRepo,
		gateway:   gw,
		notifier:  dispatcher,
		validator: v,
		cfg:       cfg,
	}
}

func (s *depositService) Authorize(ctx context.Context, bookingID string, req *AuthorizeRequest) (*AuthorizeResult, error) {
	principal, ok := auth.FromContext(ctx)
	if !ok {
		return nil, apperrors.Unauthorized("Caller identity is required")
	}
	if bookingID == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Deposit authorize validation failed", "booking_id", bookingID, "error", err)
		return nil, apperrors.Validation("Invalid authorize input", map[string]any{"error": err.Error()})
	}

	// Serialize concurrent authorize attempts per booking.
	if _, err := s.lockRepo.Acquire(ctx, bookingID); err != nil {
		if bookingrepo.IsLockHeld(err) {
			return nil, apperrors.Conflict("Another deposit authorization is in progress for this booking")
		}
		return nil, apperrors.Internal("Failed to acquire deposit lock", err)
	}
	defer func() {
		if releaseErr := s.lockRepo.Release(ctx, bookingID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release deposit lock", "booking_id", bookingID, "error", releaseErr)
		}
	}()

	booking, err := s.loadOwnBooking(ctx, bookingID, principal)
	if err != nil {
		return nil, err
	}

	if booking.Financials.HasLiveAuthorization() {
		return nil, apperrors.Conflict("Booking already has an active deposit authorization")
	}
	if booking.Financials.DepositCaptured || booking.Financials.DepositReleased {
		return nil, apperrors.Conflict("Deposit for this booking has already been settled")
	}

	tier := s.resolveTier(req.Tier, booking.Financials.DepositTier)
	amount := s.holdAmount(tier)

	// The booking record is only touched after the gateway confirms the
	// hold is awaiting capture.
	hold, err := s.gateway.Authorize(ctx, gateway.AuthorizationRequest{
		BookingID: bookingID,
		PayerID:   req.PaymentMethodRef,
		Amount:    amount,
		Currency:  s.cfg.Currency,
	})
	if err != nil {
		s.cfg.Log.Error("Deposit authorization failed at gateway", "booking_id", bookingID, "error", err)
		return nil, err
	}
	if hold.Status != gateway.StatusAwaitingCapture {
		s.voidHold(ctx, hold.ID, bookingID)
		return nil, apperrors.Gateway(
			fmt.Sprintf("Payment provider returned unexpected status %q for deposit hold", hold.Status), nil)
	}

	if err := s.repo.SetDepositAuthorization(ctx, bookingID, booking.Version, tier, hold.ID, amount); err != nil {
		// The hold exists at the provider but was never recorded; void it
		// so funds are not left reserved.
		s.voidHold(ctx, hold.ID, bookingID)
		if errors.Is(err, bookingerrors.ErrVersionConflict) {
			return nil, apperrors.Conflict("Booking was modified concurrently, deposit hold was voided")
		}
		return nil, apperrors.Internal("Failed to record deposit authorization", err)
	}

	s.audit(ctx, model.AuditActionDepositHeld, bookingID, principal.UserID, map[string]any{
		"auth_id": hold.ID,
		"tier":    tier,
		"amount":  amount,
	})
	s.notify(ctx, booking.GuestID, notifier.EventDepositHeld, map[string]any{
		"booking_id": bookingID,
		"amount":     amount,
		"currency":   s.cfg.Currency,
	})

	s.cfg.Log.Info("Deposit authorized",
		"booking_id", bookingID,
		"auth_id", hold.ID,
		"tier", tier,
		"amount", amount,
	)
	return &AuthorizeResult{
		AuthorizationID: hold.ID,
		Tier:            tier,
		Amount:          amount,
		Currency:        s.cfg.Currency,
	}, nil
}

func (s *depositService) Release(ctx context.Context, bookingID string) error {
	booking, err := s.loadForSettlement(ctx, bookingID)
	if err != nil {
		return err
	}

	if err := s.gateway.Cancel(ctx, booking.Financials.DepositAuthID); err != nil {
		s.cfg.Log.Error("Deposit release failed at gateway", "booking_id", bookingID, "error", err)
		return err
	}

	if err := s.repo.MarkDepositReleased(ctx, bookingID, booking.Version); err != nil {
		if errors.Is(err, bookingerrors.ErrVersionConflict) {
			return apperrors.Conflict("Booking was modified concurrently")
		}
		return apperrors.Internal("Failed to record deposit release", err)
	}

	principal, _ := auth.FromContext(ctx)
	s.audit(ctx, model.AuditActionDepositReleased, bookingID, principal.UserID, map[string]any{
		"auth_id": booking.Financials.DepositAuthID,
	})
	s.notify(ctx, booking.GuestID, notifier.EventDepositReleased, map[string]any{
		"booking_id": bookingID,
	})

	s.cfg.Log.Info("Deposit released", "booking_id", bookingID, "auth_id", booking.Financials.DepositAuthID)
	return nil
}

func (s *depositService) CaptureForDamages(ctx context.Context, bookingID string, req *CaptureRequest) error {
	if err := s.validator.Validate(req); err != nil {
		s.cfg.Log.Warn("Deposit capture validation failed", "booking_id", bookingID, "error", err)
		return apperrors.Validation("Invalid capture input", map[string]any{"error": err.Error()})
	}

	booking, err := s.loadForSettlement(ctx, bookingID)
	if err != nil {
		return err
	}

	if req.Amount > booking.Financials.DepositHoldAmount {
		return apperrors.Validation("Capture amount exceeds the deposit hold", map[string]any{
			"hold_amount": booking.Financials.DepositHoldAmount,
		})
	}

	if _, err := s.gateway.Capture(ctx, booking.Financials.DepositAuthID, gateway.CaptureRequest{
		Amount: req.Amount,
	}); err != nil {
		s.cfg.Log.Error("Deposit capture failed at gateway", "booking_id", bookingID, "error", err)
		return err
	}

	if err := s.repo.MarkDepositCaptured(ctx, bookingID, booking.Version, req.Amount); err != nil {
		if errors.Is(err, bookingerrors.ErrVersionConflict) {
			return apperrors.Conflict("Booking was modified concurrently")
		}
		return apperrors.Internal("Failed to record deposit capture", err)
	}

	principal, _ := auth.FromContext(ctx)
	s.audit(ctx, model.AuditActionDepositCaptured, bookingID, principal.UserID, map[string]any{
		"auth_id": booking.Financials.DepositAuthID,
		"amount":  req.Amount,
	})
	s.notify(ctx, booking.GuestID, notifier.EventDepositCaptured, map[string]any{
		"booking_id": bookingID,
		"amount":     req.Amount,
	})

	s.cfg.Log.Info("Deposit captured for damages",
		"booking_id", bookingID,
		"auth_id", booking.Financials.DepositAuthID,
		"amount", req.Amount,
	)
	return nil
}

// --- Helpers ---

// loadOwnBooking fetches the booking and verifies the caller is its guest.
// A booking belonging to someone else reads as not found so existence is
// not leaked.
func (s *depositService) loadOwnBooking(ctx context.Context, bookingID string, principal auth.Principal) (*model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", bookingID)
		}
		if errors.Is(err, bookingerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	if booking.GuestID != principal.UserID {
		return nil, apperrors.NotFoundWithID("Booking", bookingID)
	}
	return booking, nil
}

// loadForSettlement checks admin rights and the precondition that a live
// authorization exists.
func (s *depositService) loadForSettlement(ctx context.Context, bookingID string) (*model.Booking, error) {
	principal, ok := auth.FromContext(ctx)
	if !ok {
		return nil, apperrors.Unauthorized("Caller identity is required")
	}
	if !principal.IsAdmin() {
		return nil, apperrors.Forbidden("Only administrators can settle deposits")
	}
	if bookingID == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", bookingID)
		}
		if errors.Is(err, bookingerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	if booking.Financials.DepositAuthID == "" {
		return nil, apperrors.Conflict("No deposit authorization exists for this booking")
	}
	if booking.Financials.DepositCaptured || booking.Financials.DepositReleased {
		return nil, apperrors.Conflict("Deposit for this booking has already been settled")
	}

	return booking, nil
}

func (s *depositService) resolveTier(requested string, stored model.DepositTier) model.DepositTier {
	if requested != "" {
		return model.DepositTier(requested)
	}
	if stored != "" {
		return stored
	}
	return model.TierStandard
}

func (s *depositService) holdAmount(tier model.DepositTier) int64 {
	if tier == model.TierLuxury {
		return s.cfg.DepositLuxuryHold
	}
	return s.cfg.DepositStandardHold
}

func (s *depositService) voidHold(ctx context.Context, authID, bookingID string) {
	if err := s.gateway.Cancel(ctx, authID); err != nil {
		s.cfg.Log.Error("Failed to void orphaned deposit hold",
			"booking_id", bookingID,
			"auth_id", authID,
			"error", err,
		)
	}
}

func (s *depositService) audit(ctx context.Context, action, bookingID, actorID string, detail map[string]any) {
	entry := &model.AuditEntry{
		Action:     action,
		EntityType: "booking",
		EntityID:   bookingID,
		ActorID:    actorID,
		Detail:     detail,
	}
	if err := s.auditRepo.Append(ctx, entry); err != nil {
		s.cfg.Log.Warn("Failed to append audit entry", "action", action, "booking_id", bookingID, "error", err)
	}
}

func (s *depositService) notify(ctx context.Context, userID, event string, data map[string]any) {
	if err := s.notifier.Send(ctx, userID, event, data); err != nil {
		s.cfg.Log.Warn("Failed to dispatch notification", "user_id", userID, "event", event, "error", err)
	}
}
