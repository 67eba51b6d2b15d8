package service

import (
	"context"
	"testing"
	"time"

	listingerrors "dira/internal/listing/errors"
	"dira/pkg/classifier"
	"dira/pkg/config"
	apperrors "dira/pkg/errors"
	"dira/pkg/logger"
	"dira/pkg/model"
)

const (
	testListingID = "64f1c2a9e4b0f5a6d7c8b902"
	testMessageID = "64f1c2a9e4b0f5a6d7c8b903"
)

// ────────────────────────────────────────────────
// Mocks
// ────────────────────────────────────────────────

type mockListingRepository struct {
	findByIDFunc  func(ctx context.Context, id string) (*model.Listing, error)
	addStrikeFunc func(ctx context.Context, id string, expected, weight float64, at time.Time) error
	suspendFunc   func(ctx context.Context, id string) (bool, error)

	findCalls    int
	strikeCalls  int
	suspendCalls int
}

func (m *mockListingRepository) FindByID(ctx context.Context, id string) (*model.Listing, error) {
	m.findCalls++
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, listingerrors.ErrNotFound
}

func (m *mockListingRepository) AddStrike(ctx context.Context, id string, expected, weight float64, at time.Time) error {
	m.strikeCalls++
	if m.addStrikeFunc != nil {
		return m.addStrikeFunc(ctx, id, expected, weight, at)
	}
	return nil
}

func (m *mockListingRepository) Suspend(ctx context.Context, id string) (bool, error) {
	m.suspendCalls++
	if m.suspendFunc != nil {
		return m.suspendFunc(ctx, id)
	}
	return false, nil
}

type mockMessageRepository struct {
	findByIDFunc func(ctx context.Context, id string) (*model.ChatMessage, error)
	flagFunc     func(ctx context.Context, id, reason string, analysis map[string]any) error

	findCalls int
	flagCalls int
}

func (m *mockMessageRepository) FindByID(ctx context.Context, id string) (*model.ChatMessage, error) {
	m.findCalls++
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return &model.ChatMessage{ID: id, BookingID: "booking-1", SenderID: "guest-1", Text: "stored text"}, nil
}

func (m *mockMessageRepository) Flag(ctx context.Context, id, reason string, analysis map[string]any) error {
	m.flagCalls++
	if m.flagFunc != nil {
		return m.flagFunc(ctx, id, reason, analysis)
	}
	return nil
}

type mockTicketRepository struct {
	createFunc func(ctx context.Context, ticket *model.SupportTicket) error
	tickets    []*model.SupportTicket
}

func (m *mockTicketRepository) Create(ctx context.Context, ticket *model.SupportTicket) error {
	if m.createFunc != nil {
		if err := m.createFunc(ctx, ticket); err != nil {
			return err
		}
	}
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

func (m *mockAuditRepository) count(action string) int {
	n := 0
	for _, e := range m.entries {
		if e.Action == action {
			n++
		}
	}
	return n
}

type mockClassifier struct {
	inferFunc func(ctx context.Context, req classifier.Request, out any) error
	requests  []classifier.Request
}

func (m *mockClassifier) Infer(ctx context.Context, req classifier.Request, out any) error {
	m.requests = append(m.requests, req)
	if m.inferFunc != nil {
		return m.inferFunc(ctx, req, out)
	}
	return nil
}

type sentNotification struct {
	userID string
	event  string
}

type mockDispatcher struct {
	sent []sentNotification
}

func (m *mockDispatcher) Send(ctx context.Context, userID, event string, data map[string]any) error {
	m.sent = append(m.sent, sentNotification{userID: userID, event: event})
	return nil
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
		Log:                    log,
		StrikeSuspendThreshold: 3,
		ReadTimeout:            5 * time.Second,
		WriteTimeout:           5 * time.Second,
	}
}

func activeListing(count float64) *model.Listing {
	return &model.Listing{
		ID:             testListingID,
		HostID:         "host-1",
		ShortID:        "TLV-001",
		Status:         model.ListingActive,
		ViolationCount: count,
	}
}

func reportVerdict(severity string, strike float64) func(ctx context.Context, req classifier.Request, out any) error {
	return func(ctx context.Context, req classifier.Request, out any) error {
		*out.(*ReportClassification) = ReportClassification{
			Severity:    severity,
			StrikeValue: strike,
			Reason:      "classifier reason",
		}
		return nil
	}
}

func messageVerdict(suspicious bool, severity string) func(ctx context.Context, req classifier.Request, out any) error {
	return func(ctx context.Context, req classifier.Request, out any) error {
		*out.(*MessageAnalysis) = MessageAnalysis{
			IsSuspicious:     suspicious,
			Reason:           "off-platform payment",
			Severity:         severity,
			DetectedPatterns: []string{"payment_redirect"},
		}
		return nil
	}
}

type trustDeps struct {
	listings *mockListingRepository
	messages *mockMessageRepository
	tickets  *mockTicketRepository
	audits   *mockAuditRepository
	cls      *mockClassifier
	notifier *mockDispatcher
	cfg      *config.Config
}

func newTrustService(d trustDeps) TrustService {
	if d.listings == nil {
		d.listings = &mockListingRepository{}
	}
	if d.messages == nil {
		d.messages = &mockMessageRepository{}
	}
	if d.tickets == nil {
		d.tickets = &mockTicketRepository{}
	}
	if d.audits == nil {
		d.audits = &mockAuditRepository{}
	}
	if d.cls == nil {
		d.cls = &mockClassifier{}
	}
	if d.notifier == nil {
		d.notifier = &mockDispatcher{}
	}
	if d.cfg == nil {
		d.cfg = testConfig()
	}
	return NewTrustService(d.listings, d.messages, d.tickets, d.audits, d.cls, d.notifier, d.cfg)
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
// RecordReport
// ────────────────────────────────────────────────

func TestRecordReport_AccumulatesStrikeWeights(t *testing.T) {
	count := 0.0
	listings := &mockListingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Listing, error) {
			return activeListing(count), nil
		},
		addStrikeFunc: func(ctx context.Context, id string, expected, weight float64, at time.Time) error {
			if expected != count {
				return listingerrors.ErrVersionConflict
			}
			count += weight
			return nil
		},
	}
	audits := &mockAuditRepository{}
	svc := newTrustService(trustDeps{
		listings: listings,
		audits:   audits,
		cls:      &mockClassifier{inferFunc: reportVerdict(SeverityMinor, 0.5)},
	})

	for i, want := range []float64{0.5, 1.0, 1.5} {
		result, err := svc.RecordReport(context.Background(), testListingID, "dirty apartment")
		if err != nil {
			t.Fatalf("report %d: unexpected error: %v", i+1, err)
		}
		if result.ViolationCount != want {
			t.Errorf("report %d: expected violation count %.1f, got %.1f", i+1, want, result.ViolationCount)
		}
		if result.Action != ActionNone {
			t.Errorf("report %d: expected action %s, got %s", i+1, ActionNone, result.Action)
		}
	}
	if listings.suspendCalls != 0 {
		t.Errorf("expected no suspension below threshold, got %d calls", listings.suspendCalls)
	}
	if got := audits.count(model.AuditActionReportRecorded); got != 3 {
		t.Errorf("expected 3 report audit entries, got %d", got)
	}
}

func TestRecordReport_ThresholdSuspendsListing(t *testing.T) {
	listings := &mockListingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Listing, error) {
			return activeListing(2.5), nil
		},
		suspendFunc: func(ctx context.Context, id string) (bool, error) {
			return true, nil
		},
	}
	tickets := &mockTicketRepository{}
	audits := &mockAuditRepository{}
	dispatcher := &mockDispatcher{}
	svc := newTrustService(trustDeps{
		listings: listings,
		tickets:  tickets,
		audits:   audits,
		notifier: dispatcher,
		cls:      &mockClassifier{inferFunc: reportVerdict(SeverityMinor, 0.5)},
	})

	result, err := svc.RecordReport(context.Background(), testListingID, "still dirty")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ViolationCount != 3.0 {
		t.Errorf("expected violation count 3.0, got %.1f", result.ViolationCount)
	}
	if result.Action != ActionListingSuspended {
		t.Errorf("expected action %s, got %s", ActionListingSuspended, result.Action)
	}
	if len(tickets.tickets) != 1 {
		t.Fatalf("expected 1 suspension ticket, got %d", len(tickets.tickets))
	}
	ticket := tickets.tickets[0]
	if ticket.Priority != model.PriorityCritical {
		t.Errorf("expected %s priority, got %s", model.PriorityCritical, ticket.Priority)
	}
	if ticket.UserID != "host-1" {
		t.Errorf("expected ticket assigned to host-1, got %s", ticket.UserID)
	}
	if len(dispatcher.sent) != 1 || dispatcher.sent[0].userID != "host-1" {
		t.Fatalf("expected one suspension notification to host-1, got %+v", dispatcher.sent)
	}
	if got := audits.count(model.AuditActionListingSuspended); got != 1 {
		t.Errorf("expected 1 suspension audit entry, got %d", got)
	}
}

func TestRecordReport_SuspensionFiresAtMostOnce(t *testing.T) {
	suspended := &mockListingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Listing, error) {
			listing := activeListing(4.0)
			listing.Status = model.ListingSuspended
			return listing, nil
		},
		suspendFunc: func(ctx context.Context, id string) (bool, error) {
			return false, nil
		},
	}
	tickets := &mockTicketRepository{}
	dispatcher := &mockDispatcher{}
	svc := newTrustService(trustDeps{
		listings: suspended,
		tickets:  tickets,
		notifier: dispatcher,
		cls:      &mockClassifier{inferFunc: reportVerdict(SeverityModerate, 1)},
	})

	result, err := svc.RecordReport(context.Background(), testListingID, "misleading photos")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Action != ActionNone {
		t.Errorf("expected action %s on already-suspended listing, got %s", ActionNone, result.Action)
	}
	if len(tickets.tickets) != 0 {
		t.Errorf("expected no new ticket, got %d", len(tickets.tickets))
	}
	if len(dispatcher.sent) != 0 {
		t.Errorf("expected no notification, got %d", len(dispatcher.sent))
	}
}

func TestRecordReport_ReticketOnRepeatOffense(t *testing.T) {
	suspended := &mockListingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Listing, error) {
			listing := activeListing(4.0)
			listing.Status = model.ListingSuspended
			return listing, nil
		},
		suspendFunc: func(ctx context.Context, id string) (bool, error) {
			return false, nil
		},
	}
	tickets := &mockTicketRepository{}
	audits := &mockAuditRepository{}
	dispatcher := &mockDispatcher{}
	cfg := testConfig()
	cfg.TrustReticketOnRepeat = true
	svc := newTrustService(trustDeps{
		listings: suspended,
		tickets:  tickets,
		audits:   audits,
		notifier: dispatcher,
		cfg:      cfg,
		cls:      &mockClassifier{inferFunc: reportVerdict(SeveritySevere, 2)},
	})

	result, err := svc.RecordReport(context.Background(), testListingID, "scam listing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Action != ActionEscalationTicket {
		t.Errorf("expected action %s, got %s", ActionEscalationTicket, result.Action)
	}
	if len(tickets.tickets) != 1 {
		t.Fatalf("expected escalation ticket, got %d", len(tickets.tickets))
	}
	// The listing was already suspended: escalate, but do not re-announce.
	if len(dispatcher.sent) != 0 {
		t.Errorf("expected no notification on repeat offense, got %d", len(dispatcher.sent))
	}
	if got := audits.count(model.AuditActionListingSuspended); got != 0 {
		t.Errorf("expected no suspension audit entry on repeat offense, got %d", got)
	}
}

func TestRecordReport_OutOfContractVerdict(t *testing.T) {
	listings := &mockListingRepository{}
	svc := newTrustService(trustDeps{
		listings: listings,
		cls:      &mockClassifier{inferFunc: reportVerdict(SeveritySevere, 3)},
	})

	_, err := svc.RecordReport(context.Background(), testListingID, "fraud")
	assertCode(t, err, apperrors.CodeClassifier)
	if listings.strikeCalls != 0 {
		t.Errorf("expected no strike on out-of-contract verdict, got %d", listings.strikeCalls)
	}
}

func TestRecordReport_ConcurrentReportsRetryThenConflict(t *testing.T) {
	listings := &mockListingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Listing, error) {
			return activeListing(1.0), nil
		},
		addStrikeFunc: func(ctx context.Context, id string, expected, weight float64, at time.Time) error {
			return listingerrors.ErrVersionConflict
		},
	}
	svc := newTrustService(trustDeps{
		listings: listings,
		cls:      &mockClassifier{inferFunc: reportVerdict(SeverityModerate, 1)},
	})

	_, err := svc.RecordReport(context.Background(), testListingID, "hidden fees")
	assertCode(t, err, apperrors.CodeConflict)
	if listings.strikeCalls != strikeRetries {
		t.Errorf("expected %d strike attempts, got %d", strikeRetries, listings.strikeCalls)
	}
}

func TestRecordReport_RetryRecoversAfterConflict(t *testing.T) {
	count := 1.0
	attempts := 0
	listings := &mockListingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Listing, error) {
			return activeListing(count), nil
		},
		addStrikeFunc: func(ctx context.Context, id string, expected, weight float64, at time.Time) error {
			attempts++
			if attempts == 1 {
				count = 1.5 // another reporter landed first
				return listingerrors.ErrVersionConflict
			}
			count += weight
			return nil
		},
	}
	svc := newTrustService(trustDeps{
		listings: listings,
		cls:      &mockClassifier{inferFunc: reportVerdict(SeverityModerate, 1)},
	})

	result, err := svc.RecordReport(context.Background(), testListingID, "unresponsive host")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ViolationCount != 2.5 {
		t.Errorf("expected violation count 2.5 after retry, got %.1f", result.ViolationCount)
	}
}

func TestRecordReport_EmptyReason(t *testing.T) {
	svc := newTrustService(trustDeps{})

	_, err := svc.RecordReport(context.Background(), testListingID, "   ")
	assertCode(t, err, apperrors.CodeInvalidInput)
}

func TestRecordReport_ListingNotFound(t *testing.T) {
	svc := newTrustService(trustDeps{
		listings: &mockListingRepository{
			findByIDFunc: func(ctx context.Context, id string) (*model.Listing, error) {
				return nil, listingerrors.ErrNotFound
			},
		},
		cls: &mockClassifier{inferFunc: reportVerdict(SeverityMinor, 0.5)},
	})

	_, err := svc.RecordReport(context.Background(), testListingID, "dirty apartment")
	assertCode(t, err, apperrors.CodeNotFound)
}

// ────────────────────────────────────────────────
// MonitorMessage
// ────────────────────────────────────────────────

func TestMonitorMessage_NotSuspiciousHasNoSideEffects(t *testing.T) {
	messages := &mockMessageRepository{}
	tickets := &mockTicketRepository{}
	audits := &mockAuditRepository{}
	svc := newTrustService(trustDeps{
		messages: messages,
		tickets:  tickets,
		audits:   audits,
		cls:      &mockClassifier{inferFunc: messageVerdict(false, MessageSeverityLow)},
	})

	result, err := svc.MonitorMessage(context.Background(), testMessageID, "see you at check-in")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Flagged {
		t.Error("expected message not to be flagged")
	}
	if messages.flagCalls != 0 {
		t.Errorf("expected no flag write, got %d", messages.flagCalls)
	}
	if len(tickets.tickets) != 0 {
		t.Errorf("expected no ticket, got %d", len(tickets.tickets))
	}
	if len(audits.entries) != 0 {
		t.Errorf("expected no audit entry, got %d", len(audits.entries))
	}
}

func TestMonitorMessage_FlagsSuspiciousMessage(t *testing.T) {
	messages := &mockMessageRepository{}
	tickets := &mockTicketRepository{}
	audits := &mockAuditRepository{}
	svc := newTrustService(trustDeps{
		messages: messages,
		tickets:  tickets,
		audits:   audits,
		cls:      &mockClassifier{inferFunc: messageVerdict(true, MessageSeverityMedium)},
	})

	result, err := svc.MonitorMessage(context.Background(), testMessageID, "here is my phone number")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Flagged {
		t.Fatal("expected message to be flagged")
	}
	if messages.flagCalls != 1 {
		t.Errorf("expected 1 flag write, got %d", messages.flagCalls)
	}
	// MEDIUM severity flags without opening a ticket.
	if len(tickets.tickets) != 0 {
		t.Errorf("expected no ticket for MEDIUM severity, got %d", len(tickets.tickets))
	}
	if got := audits.count(model.AuditActionMessageFlagged); got != 1 {
		t.Errorf("expected 1 flag audit entry, got %d", got)
	}
}

func TestMonitorMessage_HighSeverityOpensTicket(t *testing.T) {
	messages := &mockMessageRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.ChatMessage, error) {
			return &model.ChatMessage{
				ID:        id,
				BookingID: "booking-7",
				SenderID:  "guest-9",
				Text:      "pay me directly in cash and skip the platform",
			}, nil
		},
	}
	tickets := &mockTicketRepository{}
	svc := newTrustService(trustDeps{
		messages: messages,
		tickets:  tickets,
		cls:      &mockClassifier{inferFunc: messageVerdict(true, MessageSeverityHigh)},
	})

	result, err := svc.MonitorMessage(context.Background(), testMessageID, "pay me directly in cash")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Flagged {
		t.Fatal("expected message to be flagged")
	}
	if len(tickets.tickets) != 1 {
		t.Fatalf("expected 1 ticket, got %d", len(tickets.tickets))
	}
	ticket := tickets.tickets[0]
	if ticket.Priority != model.PriorityHigh {
		t.Errorf("expected %s priority, got %s", model.PriorityHigh, ticket.Priority)
	}
	if ticket.UserID != "guest-9" || ticket.BookingID != "booking-7" {
		t.Errorf("expected ticket bound to sender and booking, got %+v", ticket)
	}
}

func TestMonitorMessage_LoadsStoredTextWhenEmpty(t *testing.T) {
	messages := &mockMessageRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.ChatMessage, error) {
			return &model.ChatMessage{ID: id, SenderID: "guest-1", Text: "stored message body"}, nil
		},
	}
	cls := &mockClassifier{inferFunc: messageVerdict(false, MessageSeverityLow)}
	svc := newTrustService(trustDeps{messages: messages, cls: cls})

	_, err := svc.MonitorMessage(context.Background(), testMessageID, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if messages.findCalls != 1 {
		t.Errorf("expected stored message lookup, got %d calls", messages.findCalls)
	}
	if len(cls.requests) != 1 || cls.requests[0].Input != "stored message body" {
		t.Fatalf("expected classifier to receive stored text, got %+v", cls.requests)
	}
}

func TestMonitorMessage_OutOfContractSeverity(t *testing.T) {
	messages := &mockMessageRepository{}
	svc := newTrustService(trustDeps{
		messages: messages,
		cls:      &mockClassifier{inferFunc: messageVerdict(true, "EXTREME")},
	})

	_, err := svc.MonitorMessage(context.Background(), testMessageID, "some text")
	assertCode(t, err, apperrors.CodeClassifier)
	if messages.flagCalls != 0 {
		t.Errorf("expected no flag write on out-of-contract severity, got %d", messages.flagCalls)
	}
}
