package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	bookingerrors "dira/internal/booking/errors"
	bookingrepo "dira/internal/booking/repository"
	listingerrors "dira/internal/listing/errors"
	listingrepo "dira/internal/listing/repository"
	moderationrepo "dira/internal/moderation/repository"
	userrepo "dira/internal/user/repository"
	"dira/pkg/auth"
	"dira/pkg/config"
	apperrors "dira/pkg/errors"
	"dira/pkg/model"
	"dira/pkg/notifier"
)

type SOSResult struct {
	BookingID       string    `json:"booking_id"`
	TicketReference string    `json:"ticket_reference"`
	Status          string    `json:"status"`
	TriggeredAt     time.Time `json:"triggered_at"`
}

// SwapEvaluation is the outcome of an emergency-swap request. When
// RequiresPayment is true the booking was NOT mutated; collecting
// AmountDue+Surcharge and re-applying the swap is a separate checkout step.
type SwapEvaluation struct {
	BookingID        string `json:"booking_id"`
	NewListingID     string `json:"new_listing_id"`
	Applied          bool   `json:"applied"`
	RequiresPayment  bool   `json:"requires_payment"`
	AmountDue        int64  `json:"amount_due"`
	DepositUpgrade   bool   `json:"deposit_upgrade"`
	UpgradeSurcharge int64  `json:"upgrade_surcharge,omitempty"`
}

type EmergencyService interface {
	TriggerSOS(ctx context.Context, bookingID string) (*SOSResult, error)
	EvaluateSwap(ctx context.Context, bookingID, newListingID string) (*SwapEvaluation, error)
}

type emergencyService struct {
	bookingRepo bookingrepo.BookingRepository
	listingRepo listingrepo.ListingRepository
	userRepo    userrepo.UserRepository
	ticketRepo  moderationrepo.TicketRepository
	auditRepo   moderationrepo.AuditRepository
	notifier    notifier.Dispatcher
	cfg         *config.Config
}

func NewEmergencyService(
	bookingRepo bookingrepo.BookingRepository,
	listingRepo listingrepo.ListingRepository,
	userRepo userrepo.UserRepository,
	ticketRepo moderationrepo.TicketRepository,
	auditRepo moderationrepo.AuditRepository,
	dispatcher notifier.Dispatcher,
	cfg *config.Config,
) EmergencyService {
	return &emergencyService{
		bookingRepo: bookingRepo,
		listingRepo: listingRepo,
		userRepo:    userRepo,
		ticketRepo:  ticketRepo,
		auditRepo:   auditRepo,
		notifier:    dispatcher,
		cfg:         cfg,
	}
}

func (s *emergencyService) TriggerSOS(ctx context.Context, bookingID string) (*SOSResult, error) {
	principal, ok := auth.FromContext(ctx)
	if !ok {
		return nil, apperrors.Unauthorized("Caller identity is required")
	}

	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.GuestID != principal.UserID {
		return nil, apperrors.Forbidden("Only the booking's guest can trigger an SOS")
	}
	if booking.Emergency.IsActive {
		return nil, apperrors.Conflict("An SOS is already active for this booking")
	}

	triggeredAt := time.Now().UTC().Truncate(time.Millisecond)
	err = s.bookingRepo.ActivateEmergency(ctx, bookingID, booking.Version, triggeredAt)
	if err != nil {
		if errors.Is(err, bookingerrors.ErrVersionConflict) {
			return nil, apperrors.Conflict("Booking was modified concurrently, please retry")
		}
		if errors.Is(err, bookingerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", bookingID)
		}
		return nil, apperrors.Internal("Failed to activate emergency protocol", err)
	}

	ticket := &model.SupportTicket{
		Reference: fmt.Sprintf("SOS-%d", triggeredAt.UnixMilli()),
		UserID:    booking.GuestID,
		BookingID: bookingID,
		Priority:  model.PriorityCritical,
		Subject:   "Guest triggered SOS",
		Body:      fmt.Sprintf("Guest %s triggered an SOS on booking %s.", booking.GuestID, bookingID),
	}
	if err := s.ticketRepo.Create(ctx, ticket); err != nil {
		// The booking is already in SOS_CRITICAL; surface the failure
		// rather than pretending the escalation completed.
		s.cfg.Log.Error("Failed to create SOS ticket", "booking_id", bookingID, "error", err)
		return nil, apperrors.Internal("SOS activated but ticket creation failed", err)
	}

	s.audit(ctx, bookingID, map[string]any{
		"ticket":       ticket.Reference,
		"triggered_by": principal.UserID,
	})
	s.broadcast(ctx, booking, ticket.Reference)

	s.cfg.Log.Info("SOS triggered",
		"booking_id", bookingID,
		"guest_id", booking.GuestID,
		"ticket", ticket.Reference,
	)
	return &SOSResult{
		BookingID:       bookingID,
		TicketReference: ticket.Reference,
		Status:          string(model.BookingSOSCritical),
		TriggeredAt:     triggeredAt,
	}, nil
}

// broadcast notifies the guest, the host, and every admin concurrently.
// Each send is independent; one failure never blocks the others.
func (s *emergencyService) broadcast(ctx context.Context, booking *model.Booking, ticketRef string) {
	recipients := []string{booking.GuestID, booking.HostID}

	admins, err := s.userRepo.FindAdmins(ctx)
	if err != nil {
		s.cfg.Log.Error("Failed to load admins for SOS broadcast", "booking_id", booking.ID, "error", err)
	}
	for _, admin := range admins {
		recipients = append(recipients, admin.ID)
	}

	data := map[string]any{
		"booking_id": booking.ID,
		"ticket":     ticketRef,
	}

	var wg sync.WaitGroup
	for _, userID := range recipients {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			if err := s.notifier.Send(ctx, userID, notifier.EventSOSTriggered, data); err != nil {
				s.cfg.Log.Warn("Failed to send SOS notification", "user_id", userID, "error", err)
			}
		}(userID)
	}
	wg.Wait()
}

func (s *emergencyService) EvaluateSwap(ctx context.Context, bookingID, newListingID string) (*SwapEvaluation, error) {
	principal, ok := auth.FromContext(ctx)
	if !ok {
		return nil, apperrors.Unauthorized("Caller identity is required")
	}
	if newListingID == "" {
		return nil, apperrors.InvalidInput("New listing ID cannot be empty")
	}

	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.GuestID != principal.UserID {
		return nil, apperrors.Forbidden("Only the booking's guest can request an emergency swap")
	}
	if newListingID == booking.ListingID {
		return nil, apperrors.InvalidInput("Cannot swap a booking onto its current listing")
	}

	current, err := s.loadListing(ctx, booking.ListingID)
	if err != nil {
		return nil, err
	}
	candidate, err := s.loadListing(ctx, newListingID)
	if err != nil {
		return nil, err
	}
	if candidate.Status == model.ListingSuspended {
		return nil, apperrors.Conflict("Candidate listing is suspended for investigation")
	}

	delta := candidate.PricePerNight - current.PricePerNight
	tier := booking.Financials.DepositTier
	depositUpgrade := (tier == "" || tier == model.TierStandard) &&
		candidate.PricePerNight >= s.cfg.LuxuryPriceThreshold

	result := &SwapEvaluation{
		BookingID:      bookingID,
		NewListingID:   newListingID,
		DepositUpgrade: depositUpgrade,
	}

	if delta <= 0 && !depositUpgrade {
		err = s.bookingRepo.ApplySwap(ctx, bookingID, booking.Version,
			newListingID, candidate.HostID, candidate.PricePerNight)
		if err != nil {
			if errors.Is(err, bookingerrors.ErrVersionConflict) {
				return nil, apperrors.Conflict("Booking was modified concurrently, please retry")
			}
			return nil, apperrors.Internal("Failed to apply emergency swap", err)
		}
		result.Applied = true

		s.auditSwap(ctx, bookingID, map[string]any{
			"from_listing": booking.ListingID,
			"to_listing":   newListingID,
			"price_delta":  delta,
		})
		s.cfg.Log.Info("Emergency swap auto-approved",
			"booking_id", bookingID,
			"from_listing", booking.ListingID,
			"to_listing", newListingID,
		)
		return result, nil
	}

	result.RequiresPayment = true
	if delta > 0 {
		result.AmountDue = delta
	}
	if depositUpgrade {
		result.UpgradeSurcharge = s.cfg.DepositUpgradeSurcharge
	}
	return result, nil
}

func (s *emergencyService) loadBooking(ctx context.Context, bookingID string) (*model.Booking, error) {
	if bookingID == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}
	booking, err := s.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", bookingID)
		}
		if errors.Is(err, bookingerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

func (s *emergencyService) loadListing(ctx context.Context, listingID string) (*model.Listing, error) {
	listing, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, listingerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Listing", listingID)
		}
		if errors.Is(err, listingerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid listing ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve listing", err)
	}
	return listing, nil
}

func (s *emergencyService) audit(ctx context.Context, bookingID string, detail map[string]any) {
	entry := &model.AuditEntry{
		Action:     model.AuditActionSOSTriggered,
		EntityType: "booking",
		EntityID:   bookingID,
		Detail:     detail,
	}
	if err := s.auditRepo.Append(ctx, entry); err != nil {
		s.cfg.Log.Warn("Failed to append SOS audit entry", "booking_id", bookingID, "error", err)
	}
}

func (s *emergencyService) auditSwap(ctx context.Context, bookingID string, detail map[string]any) {
	entry := &model.AuditEntry{
		Action:     model.AuditActionSwapApplied,
		EntityType: "booking",
		EntityID:   bookingID,
		Detail:     detail,
	}
	if err := s.auditRepo.Append(ctx, entry); err != nil {
		s.cfg.Log.Warn("Failed to append swap audit entry", "booking_id", bookingID, "error", err)
	}
}
