package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	bookingerrors "dira/internal/booking/errors"
	listingerrors "dira/internal/listing/errors"
	"dira/pkg/auth"
	"dira/pkg/config"
	apperrors "dira/pkg/errors"
	"dira/pkg/logger"
	"dira/pkg/model"
)

const (
	testBookingID        = "64f1c2a9e4b0f5a6d7c8b901"
	currentListingID     = "64f1c2a9e4b0f5a6d7c8b902"
	candidateListingID   = "64f1c2a9e4b0f5a6d7c8b903"
	currentPricePerNight = int64(500)
)

// ────────────────────────────────────────────────
// Mocks
// ────────────────────────────────────────────────

type mockBookingRepository struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Booking, error)
	activateFunc func(ctx context.Context, id string, version int64, triggeredAt time.Time) error
	swapFunc     func(ctx context.Context, id string, version int64, newListingID, newHostID string, newBasePrice int64) error

	activateCalls int
	swapCalls     int
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, bookingerrors.ErrNotFound
}

func (m *mockBookingRepository) SetDepositAuthorization(ctx context.Context, id string, version int64, tier model.DepositTier, authID string, amount int64) error {
	return nil
}

func (m *mockBookingRepository) MarkDepositCaptured(ctx context.Context, id string, version int64, amount int64) error {
	return nil
}

func (m *mockBookingRepository) MarkDepositReleased(ctx context.Context, id string, version int64) error {
	return nil
}

func (m *mockBookingRepository) ActivateEmergency(ctx context.Context, id string, version int64, triggeredAt time.Time) error {
	m.activateCalls++
	if m.activateFunc != nil {
		return m.activateFunc(ctx, id, version, triggeredAt)
	}
	return nil
}

func (m *mockBookingRepository) ApplySwap(ctx context.Context, id string, version int64, newListingID, newHostID string, newBasePrice int64) error {
	m.swapCalls++
	if m.swapFunc != nil {
		return m.swapFunc(ctx, id, version, newListingID, newHostID, newBasePrice)
	}
	return nil
}

type mockListingRepository struct {
	listings map[string]*model.Listing
}

func (m *mockListingRepository) FindByID(ctx context.Context, id string) (*model.Listing, error) {
	if listing, ok := m.listings[id]; ok {
		return listing, nil
	}
	return nil, listingerrors.ErrNotFound
}

func (m *mockListingRepository) AddStrike(ctx context.Context, id string, expected, weight float64, at time.Time) error {
	return nil
}

func (m *mockListingRepository) Suspend(ctx context.Context, id string) (bool, error) {
	return false, nil
}

type mockUserRepository struct {
	admins []*model.User
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return &model.User{ID: id}, nil
}

func (m *mockUserRepository) FindAdmins(ctx context.Context) ([]*model.User, error) {
	return m.admins, nil
}

type mockTicketRepository struct {
	tickets []*model.SupportTicket
}

func (m *mockTicketRepository) Create(ctx context.Context, ticket *model.SupportTicket) error {
	m.tickets = append(m.tickets, ticket)
	return nil
}

type mockAuditRepository struct {
	entries []*model.AuditEntry
}

func (m *mockAuditRepository) Append(ctx context.Context, entry *model.AuditEntry) error {
	m.entries = append(m.entries, entry)
	return nil
}

// mockDispatcher must tolerate concurrent sends from the SOS broadcast.
type mockDispatcher struct {
	mu       sync.Mutex
	sendFunc func(ctx context.Context, userID, event string, data map[string]any) error
	sent     []string
}

func (m *mockDispatcher) Send(ctx context.Context, userID, event string, data map[string]any) error {
	m.mu.Lock()
	m.sent = append(m.sent, userID)
	m.mu.Unlock()
	if m.sendFunc != nil {
		return m.sendFunc(ctx, userID, event, data)
	}
	return nil
}

func (m *mockDispatcher) recipients() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]string(nil), m.sent...)
	sort.Strings(out)
	return out
}

// ────────────────────────────────────────────────
// Helpers
// ────────────────────────────────────────────────

func testConfig() *config.Config {
	log := logger.New(logger.Config{
		Level:     "error",
		Format:    logger.JSON,
		AddSource: false,
		Service:   "test",
	})
	return &config.Config{
		Log:                     log,
		LuxuryPriceThreshold:    1000,
		DepositUpgradeSurcharge: 3000,
		ReadTimeout:             5 * time.Second,
		WriteTimeout:            5 * time.Second,
	}
}

func guestCtx() context.Context {
	return auth.WithPrincipal(context.Background(), auth.Principal{UserID: "guest-1", Role: auth.RoleGuest})
}

func confirmedBooking() *model.Booking {
	return &model.Booking{
		ID:        testBookingID,
		GuestID:   "guest-1",
		HostID:    "host-1",
		ListingID: currentListingID,
		Status:    model.BookingConfirmed,
		BasePrice: currentPricePerNight,
		Financials: model.Financials{
			DepositTier: model.TierStandard,
		},
		Version: 3,
	}
}

func listingSet(candidatePrice int64) map[string]*model.Listing {
	return map[string]*model.Listing{
		currentListingID: {
			ID:            currentListingID,
			HostID:        "host-1",
			ShortID:       "TLV-001",
			Status:        model.ListingActive,
			PricePerNight: currentPricePerNight,
		},
		candidateListingID: {
			ID:            candidateListingID,
			HostID:        "host-2",
			ShortID:       "TLV-002",
			Status:        model.ListingActive,
			PricePerNight: candidatePrice,
		},
	}
}

type emergencyDeps struct {
	bookings *mockBookingRepository
	listings *mockListingRepository
	users    *mockUserRepository
	tickets  *mockTicketRepository
	audits   *mockAuditRepository
	notifier *mockDispatcher
	cfg      *config.Config
}

func newEmergencyService(d emergencyDeps) EmergencyService {
	if d.bookings == nil {
		d.bookings = &mockBookingRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
				return confirmedBooking(), nil
			},
		}
	}
	if d.listings == nil {
		d.listings = &mockListingRepository{listings: listingSet(currentPricePerNight)}
	}
	if d.users == nil {
		d.users = &mockUserRepository{}
	}
	if d.tickets == nil {
		d.tickets = &mockTicketRepository{}
	}
	if d.audits == nil {
		d.audits = &mockAuditRepository{}
	}
	if d.notifier == nil {
		d.notifier = &mockDispatcher{}
	}
	if d.cfg == nil {
		d.cfg = testConfig()
	}
	return NewEmergencyService(d.bookings, d.listings, d.users, d.tickets, d.audits, d.notifier, d.cfg)
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != code {
		t.Fatalf("expected code %s, got %s (%v)", code, appErr.Code, err)
	}
}

// ────────────────────────────────────────────────
// TriggerSOS
// ────────────────────────────────────────────────

func TestTriggerSOS_Success(t *testing.T) {
	bookings := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return confirmedBooking(), nil
		},
		activateFunc: func(ctx context.Context, id string, version int64, triggeredAt time.Time) error {
			if version != 3 {
				t.Errorf("expected version 3 passed to CAS update, got %d", version)
			}
			return nil
		},
	}
	users := &mockUserRepository{admins: []*model.User{
		{ID: "admin-1", Role: "admin"},
		{ID: "admin-2", Role: "admin"},
	}}
	tickets := &mockTicketRepository{}
	audits := &mockAuditRepository{}
	dispatcher := &mockDispatcher{}
	svc := newEmergencyService(emergencyDeps{
		bookings: bookings,
		users:    users,
		tickets:  tickets,
		audits:   audits,
		notifier: dispatcher,
	})

	result, err := svc.TriggerSOS(guestCtx(), testBookingID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != string(model.BookingSOSCritical) {
		t.Errorf("expected status %s, got %s", model.BookingSOSCritical, result.Status)
	}
	if !strings.HasPrefix(result.TicketReference, "SOS-") {
		t.Errorf("expected SOS-prefixed ticket reference, got %s", result.TicketReference)
	}
	if len(tickets.tickets) != 1 {
		t.Fatalf("expected 1 ticket, got %d", len(tickets.tickets))
	}
	ticket := tickets.tickets[0]
	if ticket.Priority != model.PriorityCritical {
		t.Errorf("expected %s priority, got %s", model.PriorityCritical, ticket.Priority)
	}
	if ticket.BookingID != testBookingID {
		t.Errorf("expected ticket bound to booking, got %s", ticket.BookingID)
	}

	want := []string{"admin-1", "admin-2", "guest-1", "host-1"}
	got := dispatcher.recipients()
	if len(got) != len(want) {
		t.Fatalf("expected notifications to %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected notifications to %v, got %v", want, got)
		}
	}
	if len(audits.entries) != 1 || audits.entries[0].Action != model.AuditActionSOSTriggered {
		t.Errorf("expected one SOS audit entry, got %+v", audits.entries)
	}
}

func TestTriggerSOS_ForbiddenForNonGuest(t *testing.T) {
	svc := newEmergencyService(emergencyDeps{})
	hostCtx := auth.WithPrincipal(context.Background(), auth.Principal{UserID: "host-1", Role: auth.RoleHost})

	_, err := svc.TriggerSOS(hostCtx, testBookingID)
	assertCode(t, err, apperrors.CodeForbidden)
}

func TestTriggerSOS_Unauthenticated(t *testing.T) {
	svc := newEmergencyService(emergencyDeps{})

	_, err := svc.TriggerSOS(context.Background(), testBookingID)
	assertCode(t, err, apperrors.CodeUnauthorized)
}

func TestTriggerSOS_AlreadyActive(t *testing.T) {
	bookings := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			booking := confirmedBooking()
			booking.Status = model.BookingSOSCritical
			booking.Emergency.IsActive = true
			return booking, nil
		},
	}
	svc := newEmergencyService(emergencyDeps{bookings: bookings})

	_, err := svc.TriggerSOS(guestCtx(), testBookingID)
	assertCode(t, err, apperrors.CodeConflict)
	if bookings.activateCalls != 0 {
		t.Errorf("expected no activation attempt, got %d", bookings.activateCalls)
	}
}

func TestTriggerSOS_FailedSendDoesNotBlockOthers(t *testing.T) {
	users := &mockUserRepository{admins: []*model.User{
		{ID: "admin-1", Role: "admin"},
		{ID: "admin-2", Role: "admin"},
	}}
	dispatcher := &mockDispatcher{
		sendFunc: func(ctx context.Context, userID, event string, data map[string]any) error {
			if userID == "admin-1" {
				return errors.New("smtp relay down")
			}
			return nil
		},
	}
	svc := newEmergencyService(emergencyDeps{users: users, notifier: dispatcher})

	_, err := svc.TriggerSOS(guestCtx(), testBookingID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(dispatcher.recipients()); got != 4 {
		t.Errorf("expected all 4 recipients attempted, got %d", got)
	}
}

func TestTriggerSOS_ConcurrentModification(t *testing.T) {
	bookings := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return confirmedBooking(), nil
		},
		activateFunc: func(ctx context.Context, id string, version int64, triggeredAt time.Time) error {
			return bookingerrors.ErrVersionConflict
		},
	}
	tickets := &mockTicketRepository{}
	svc := newEmergencyService(emergencyDeps{bookings: bookings, tickets: tickets})

	_, err := svc.TriggerSOS(guestCtx(), testBookingID)
	assertCode(t, err, apperrors.CodeConflict)
	if len(tickets.tickets) != 0 {
		t.Errorf("expected no ticket on failed activation, got %d", len(tickets.tickets))
	}
}

// ────────────────────────────────────────────────
// EvaluateSwap
// ────────────────────────────────────────────────

func TestEvaluateSwap_EqualPriceAutoApproves(t *testing.T) {
	bookings := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return confirmedBooking(), nil
		},
		swapFunc: func(ctx context.Context, id string, version int64, newListingID, newHostID string, newBasePrice int64) error {
			if newListingID != candidateListingID || newHostID != "host-2" || newBasePrice != currentPricePerNight {
				t.Errorf("unexpected swap args: listing=%s host=%s price=%d", newListingID, newHostID, newBasePrice)
			}
			return nil
		},
	}
	listings := &mockListingRepository{listings: listingSet(currentPricePerNight)}
	audits := &mockAuditRepository{}
	svc := newEmergencyService(emergencyDeps{bookings: bookings, listings: listings, audits: audits})

	result, err := svc.EvaluateSwap(guestCtx(), testBookingID, candidateListingID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Applied || result.RequiresPayment {
		t.Errorf("expected auto-approved swap, got %+v", result)
	}
	if result.DepositUpgrade {
		t.Error("expected no deposit upgrade below the luxury threshold")
	}
	if bookings.swapCalls != 1 {
		t.Errorf("expected 1 swap application, got %d", bookings.swapCalls)
	}
	if len(audits.entries) != 1 || audits.entries[0].Action != model.AuditActionSwapApplied {
		t.Errorf("expected swap audit entry, got %+v", audits.entries)
	}
}

func TestEvaluateSwap_PriceDecreaseWithUpgradeRequiresPayment(t *testing.T) {
	bookings := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			booking := confirmedBooking()
			booking.BasePrice = 1300
			return booking, nil
		},
	}
	listings := &mockListingRepository{listings: listingSet(1200)}
	listings.listings[currentListingID].PricePerNight = 1300
	svc := newEmergencyService(emergencyDeps{bookings: bookings, listings: listings})

	result, err := svc.EvaluateSwap(guestCtx(), testBookingID, candidateListingID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Applied {
		t.Error("expected swap not to be applied")
	}
	if !result.RequiresPayment {
		t.Error("expected payment to be required")
	}
	if result.AmountDue != 0 {
		t.Errorf("expected negative delta clamped to 0, got %d", result.AmountDue)
	}
	if !result.DepositUpgrade {
		t.Error("expected deposit upgrade crossing the luxury threshold")
	}
	if result.UpgradeSurcharge != 3000 {
		t.Errorf("expected surcharge 3000, got %d", result.UpgradeSurcharge)
	}
	if bookings.swapCalls != 0 {
		t.Errorf("expected no swap application, got %d", bookings.swapCalls)
	}
}

func TestEvaluateSwap_PriceIncreaseRequiresPayment(t *testing.T) {
	listings := &mockListingRepository{listings: listingSet(700)}
	bookings := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return confirmedBooking(), nil
		},
	}
	svc := newEmergencyService(emergencyDeps{bookings: bookings, listings: listings})

	result, err := svc.EvaluateSwap(guestCtx(), testBookingID, candidateListingID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Applied {
		t.Error("expected swap not to be applied")
	}
	if !result.RequiresPayment || result.AmountDue != 200 {
		t.Errorf("expected payment of 200 due, got %+v", result)
	}
	if result.DepositUpgrade || result.UpgradeSurcharge != 0 {
		t.Errorf("expected no upgrade below the luxury threshold, got %+v", result)
	}
}

func TestEvaluateSwap_LuxuryTierNeverUpgradesAgain(t *testing.T) {
	bookings := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			booking := confirmedBooking()
			booking.BasePrice = 1300
			booking.Financials.DepositTier = model.TierLuxury
			return booking, nil
		},
	}
	listings := &mockListingRepository{listings: listingSet(1200)}
	listings.listings[currentListingID].PricePerNight = 1300
	svc := newEmergencyService(emergencyDeps{bookings: bookings, listings: listings})

	result, err := svc.EvaluateSwap(guestCtx(), testBookingID, candidateListingID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Applied || result.RequiresPayment || result.DepositUpgrade {
		t.Errorf("expected auto-approved swap for LUXURY tier, got %+v", result)
	}
}

func TestEvaluateSwap_SuspendedCandidateRejected(t *testing.T) {
	listings := &mockListingRepository{listings: listingSet(currentPricePerNight)}
	listings.listings[candidateListingID].Status = model.ListingSuspended
	svc := newEmergencyService(emergencyDeps{listings: listings})

	_, err := svc.EvaluateSwap(guestCtx(), testBookingID, candidateListingID)
	assertCode(t, err, apperrors.CodeConflict)
}

func TestEvaluateSwap_ForeignBookingForbidden(t *testing.T) {
	svc := newEmergencyService(emergencyDeps{})
	otherCtx := auth.WithPrincipal(context.Background(), auth.Principal{UserID: "guest-2", Role: auth.RoleGuest})

	_, err := svc.EvaluateSwap(otherCtx, testBookingID, candidateListingID)
	assertCode(t, err, apperrors.CodeForbidden)
}

func TestEvaluateSwap_SameListingRejected(t *testing.T) {
	svc := newEmergencyService(emergencyDeps{})

	_, err := svc.EvaluateSwap(guestCtx(), testBookingID, currentListingID)
	assertCode(t, err, apperrors.CodeInvalidInput)
}
