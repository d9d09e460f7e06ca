package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with regulatory significance: every
	// adjudication outcome and every lead captured from a non-member.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events that feed fraud investigation.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity that can be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string        `json:"id"`
	Category  EventCategory `json:"category"`
	Timestamp time.Time     `json:"timestamp"`
	// Subject is the member ID, or the claimed name for non-member previews.
	Subject   string  `json:"subject"`
	Action    string  `json:"action"`
	ClaimID   string  `json:"claim_id,omitempty"`
	Decision  string  `json:"decision,omitempty"`
	Reason    string  `json:"reason,omitempty"`
	Amount    float64 `json:"amount,omitempty"`
	FraudRisk float64 `json:"fraud_risk,omitempty"`
	RequestID string  `json:"request_id,omitempty"`
}

type AuditEvent string

const (
	EventDecisionMade        AuditEvent = "decision_made"
	EventManualReviewQueued  AuditEvent = "manual_review_queued"
	EventFraudRiskFlagged    AuditEvent = "fraud_risk_flagged"
	EventSalesPreviewIssued  AuditEvent = "sales_preview_issued"
	EventLeadCaptured        AuditEvent = "lead_captured"
	EventMemberUsageUpdated  AuditEvent = "member_usage_updated"
	EventClaimHistoryFetched AuditEvent = "claim_history_fetched"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventDecisionMade:       CategoryCompliance,
	EventLeadCaptured:       CategoryCompliance,
	EventFraudRiskFlagged:   CategorySecurity,
	EventManualReviewQueued: CategorySecurity,

	EventSalesPreviewIssued:  CategoryOperations,
	EventMemberUsageUpdated:  CategoryOperations,
	EventClaimHistoryFetched: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}
