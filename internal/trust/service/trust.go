package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	listingerrors "dira/internal/listing/errors"
	listingrepo "dira/internal/listing/repository"
	moderationerrors "dira/internal/moderation/errors"
	moderationrepo "dira/internal/moderation/repository"
	"dira/pkg/classifier"
	"dira/pkg/config"
	apperrors "dira/pkg/errors"
	"dira/pkg/model"
	"dira/pkg/notifier"
	"dira/pkg/sanitizer"
)

// Actions a report can trigger.
const (
	ActionNone             = "NONE"
	ActionListingSuspended = "LISTING_SUSPENDED"
	ActionEscalationTicket = "ESCALATION_TICKET"
)

// strikeRetries bounds the compare-and-swap loop under concurrent reporters.
const strikeRetries = 3

type ReportResult struct {
	ListingID      string               `json:"listing_id"`
	ViolationCount float64              `json:"violation_count"`
	Action         string               `json:"action"`
	Classification ReportClassification `json:"classification"`
}

type MonitorResult struct {
	MessageID string          `json:"message_id"`
	Flagged   bool            `json:"flagged"`
	Analysis  MessageAnalysis `json:"analysis"`
}

type TrustService interface {
	RecordReport(ctx context.Context, listingID, reason string) (*ReportResult, error)
	MonitorMessage(ctx context.Context, messageID, text string) (*MonitorResult, error)
}

type trustService struct {
	listingRepo listingrepo.ListingRepository
	messageRepo moderationrepo.MessageRepository
	ticketRepo  moderationrepo.TicketRepository
	auditRepo   moderationrepo.AuditRepository
	classifier  classifier.Classifier
	notifier    notifier.Dispatcher
	cfg         *config.Config
}

func NewTrustService(
	listingRepo listingrepo.ListingRepository,
	messageRepo moderationrepo.MessageRepository,
	ticketRepo moderationrepo.TicketRepository,
	auditRepo moderationrepo.AuditRepository,
	cls classifier.Classifier,
	dispatcher notifier.Dispatcher,
	cfg *config.Config,
) TrustService {
	return &trustService{
		listingRepo: listingRepo,
		messageRepo: messageRepo,
		ticketRepo:  ticketRepo,
		auditRepo:   auditRepo,
		classifier:  cls,
		notifier:    dispatcher,
		cfg:         cfg,
	}
}

func (s *trustService) RecordReport(ctx context.Context, listingID, reason string) (*ReportResult, error) {
	if listingID == "" {
		return nil, apperrors.InvalidInput("Listing ID cannot be empty")
	}
	reason = sanitizer.SanitizeFreeText(reason)
	if reason == "" {
		return nil, apperrors.InvalidInput("Report reason cannot be empty")
	}

	var classification ReportClassification
	err := s.classifier.Infer(ctx, classifier.Request{
		Instruction: reportInstruction,
		Input:       reason,
		Schema:      reportSchema,
	}, &classification)
	if err != nil {
		s.cfg.Log.Error("Report classification failed", "listing_id", listingID, "error", err)
		return nil, err
	}
	if !validReportSeverity(classification.Severity) || !validStrikeValue(classification.StrikeValue) {
		return nil, apperrors.Classifier(
			fmt.Sprintf("Classifier returned out-of-contract verdict: severity=%q strikeValue=%v",
				classification.Severity, classification.StrikeValue), nil)
	}

	newCount, err := s.applyStrike(ctx, listingID, classification.StrikeValue)
	if err != nil {
		return nil, err
	}

	action := ActionNone
	if newCount >= s.cfg.StrikeSuspendThreshold {
		action, err = s.suspend(ctx, listingID, newCount)
		if err != nil {
			return nil, err
		}
	}

	s.audit(ctx, model.AuditActionReportRecorded, listingID, map[string]any{
		"severity":        classification.Severity,
		"strike_value":    classification.StrikeValue,
		"reason":          classification.Reason,
		"violation_count": newCount,
		"action":          action,
	})

	s.cfg.Log.Info("Listing report recorded",
		"listing_id", listingID,
		"severity", classification.Severity,
		"violation_count", newCount,
		"action", action,
	)
	return &ReportResult{
		ListingID:      listingID,
		ViolationCount: newCount,
		Action:         action,
		Classification: classification,
	}, nil
}

// applyStrike increments the violation counter with a bounded
// compare-and-swap loop so concurrent reports never lose an update.
func (s *trustService) applyStrike(ctx context.Context, listingID string, weight float64) (float64, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)

	for attempt := 0; attempt < strikeRetries; attempt++ {
		listing, err := s.listingRepo.FindByID(ctx, listingID)
		if err != nil {
			if errors.Is(err, listingerrors.ErrNotFound) {
				return 0, apperrors.NotFoundWithID("Listing", listingID)
			}
			if errors.Is(err, listingerrors.ErrInvalidID) {
				return 0, apperrors.InvalidInput("Invalid listing ID format")
			}
			return 0, apperrors.Internal("Failed to retrieve listing", err)
		}

		err = s.listingRepo.AddStrike(ctx, listingID, listing.ViolationCount, weight, now)
		if err == nil {
			return listing.ViolationCount + weight, nil
		}
		if errors.Is(err, listingerrors.ErrVersionConflict) {
			continue
		}
		return 0, apperrors.Internal("Failed to record strike", err)
	}

	return 0, apperrors.Conflict("Listing is receiving concurrent reports, please retry")
}

// suspend transitions the listing into investigation. The status-guarded
// update makes the transition, its ticket, and its notification fire at
// most once no matter how many reports cross the threshold, unless
// re-ticketing on repeat offenses is explicitly enabled.
func (s *trustService) suspend(ctx context.Context, listingID string, count float64) (string, error) {
	changed, err := s.listingRepo.Suspend(ctx, listingID)
	if err != nil {
		return ActionNone, apperrors.Internal("Failed to suspend listing", err)
	}

	if !changed && !s.cfg.TrustReticketOnRepeat {
		return ActionNone, nil
	}

	listing, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		return ActionNone, apperrors.Internal("Failed to retrieve suspended listing", err)
	}

	ticket := &model.SupportTicket{
		Reference: fmt.Sprintf("TRUST-%d", time.Now().UnixMilli()),
		UserID:    listing.HostID,
		ListingID: listingID,
		Priority:  model.PriorityCritical,
		Subject:   "Listing suspended for investigation",
		Body: fmt.Sprintf("Listing %s accumulated %.1f violation strikes and was suspended pending investigation.",
			listing.ShortID, count),
	}
	if err := s.ticketRepo.Create(ctx, ticket); err != nil {
		s.cfg.Log.Error("Failed to create suspension ticket", "listing_id", listingID, "error", err)
	}

	if changed {
		s.audit(ctx, model.AuditActionListingSuspended, listingID, map[string]any{
			"violation_count": count,
			"ticket":          ticket.Reference,
		})
		if err := s.notifier.Send(ctx, listing.HostID, notifier.EventListingSuspended, map[string]any{
			"listing_id": listingID,
			"ticket":     ticket.Reference,
		}); err != nil {
			s.cfg.Log.Warn("Failed to notify host of suspension", "host_id", listing.HostID, "error", err)
		}
		return ActionListingSuspended, nil
	}

	return ActionEscalationTicket, nil
}

func (s *trustService) MonitorMessage(ctx context.Context, messageID, text string) (*MonitorResult, error) {
	if messageID == "" {
		return nil, apperrors.InvalidInput("Message ID cannot be empty")
	}

	if text == "" {
		msg, err := s.messageRepo.FindByID(ctx, messageID)
		if err != nil {
			if errors.Is(err, moderationerrors.ErrMessageNotFound) {
				return nil, apperrors.NotFoundWithID("Message", messageID)
			}
			if errors.Is(err, moderationerrors.ErrInvalidID) {
				return nil, apperrors.InvalidInput("Invalid message ID format")
			}
			return nil, apperrors.Internal("Failed to retrieve message", err)
		}
		text = msg.Text
	}

	var analysis MessageAnalysis
	err := s.classifier.Infer(ctx, classifier.Request{
		Instruction: messageInstruction,
		Input:       text,
		Schema:      messageSchema,
	}, &analysis)
	if err != nil {
		s.cfg.Log.Error("Message classification failed", "message_id", messageID, "error", err)
		return nil, err
	}
	if !validMessageSeverity(analysis.Severity) {
		return nil, apperrors.Classifier(
			fmt.Sprintf("Classifier returned out-of-contract severity %q", analysis.Severity), nil)
	}

	result := &MonitorResult{
		MessageID: messageID,
		Analysis:  analysis,
	}
	if !analysis.IsSuspicious {
		return result, nil
	}

	rawAnalysis := map[string]any{
		"is_suspicious":     analysis.IsSuspicious,
		"reason":            analysis.Reason,
		"severity":          analysis.Severity,
		"detected_patterns": analysis.DetectedPatterns,
	}
	if err := s.messageRepo.Flag(ctx, messageID, analysis.Reason, rawAnalysis); err != nil {
		if errors.Is(err, moderationerrors.ErrMessageNotFound) {
			return nil, apperrors.NotFoundWithID("Message", messageID)
		}
		return nil, apperrors.Internal("Failed to flag message", err)
	}
	result.Flagged = true

	if analysis.Severity == MessageSeverityHigh {
		msg, err := s.messageRepo.FindByID(ctx, messageID)
		if err != nil {
			s.cfg.Log.Error("Failed to load flagged message for ticket", "message_id", messageID, "error", err)
		} else {
			ticket := &model.SupportTicket{
				Reference: fmt.Sprintf("TRUST-%d", time.Now().UnixMilli()),
				UserID:    msg.SenderID,
				BookingID: msg.BookingID,
				Priority:  model.PriorityHigh,
				Subject:   "Suspicious chat message flagged",
				Body:      fmt.Sprintf("Message %s was flagged: %s", messageID, analysis.Reason),
			}
			if err := s.ticketRepo.Create(ctx, ticket); err != nil {
				s.cfg.Log.Error("Failed to create message ticket", "message_id", messageID, "error", err)
			}
		}
	}

	s.audit(ctx, model.AuditActionMessageFlagged, messageID, rawAnalysis)

	s.cfg.Log.Info("Chat message flagged",
		"message_id", messageID,
		"severity", analysis.Severity,
		"patterns", analysis.DetectedPatterns,
	)
	return result, nil
}

func (s *trustService) audit(ctx context.Context, action, entityID string, detail map[string]any) {
	entityType := "listing"
	if action == model.AuditActionMessageFlagged {
		entityType = "message"
	}
	entry := &model.AuditEntry{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     detail,
	}
	if err := s.auditRepo.Append(ctx, entry); err != nil {
		s.cfg.Log.Warn("Failed to append audit entry", "action", action, "entity_id", entityID, "error", err)
	}
}
