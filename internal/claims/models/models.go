// Package models holds the records the claims service persists around an
// adjudication result.
package models

import (
	"time"

	"github.com/google/uuid"

	"adjudicator/internal/adjudication"
)

// ClaimRecord is one submitted claim and the engine's answer to it.
type ClaimRecord struct {
	ID          uuid.UUID                `json:"id"`
	MemberID    string                   `json:"member_id,omitempty"`
	RequestID   string                   `json:"request_id,omitempty"`
	SubmittedAt time.Time                `json:"submitted_at"`
	Intake      adjudication.ClaimIntake `json:"intake"`
	Result      adjudication.Result      `json:"result"`
}

// Decision returns the decision type of the stored result.
func (r *ClaimRecord) Decision() adjudication.DecisionType {
	return r.Result.Type
}

// ApprovedAmount is the amount paid out; zero for previews and rejections.
func (r *ClaimRecord) ApprovedAmount() float64 {
	if r.Result.Decision == nil {
		return 0
	}
	return r.Result.Decision.ApprovedAmount
}

// ClaimedAmount is the billed amount the claim was adjudicated against.
func (r *ClaimRecord) ClaimedAmount() float64 {
	switch {
	case r.Result.Decision != nil:
		return r.Result.Decision.ClaimedAmount
	case r.Result.Preview != nil:
		return r.Result.Preview.ClaimedAmount
	}
	return 0
}

// Paid reports whether the claim adds to the member's year-to-date usage.
func (r *ClaimRecord) Paid() bool {
	switch r.Result.Type {
	case adjudication.DecisionApproved, adjudication.DecisionPartial:
		return r.ApprovedAmount() > 0
	}
	return false
}

// PriorClaim is the history entry a paid or pending claim leaves behind for
// duplicate and velocity checks on later submissions.
func (r *ClaimRecord) PriorClaim() adjudication.PriorClaim {
	return adjudication.PriorClaim{
		ClaimID:       r.ID.String(),
		TreatmentDate: r.Intake.TreatmentDate,
		Amount:        r.ClaimedAmount(),
	}
}

// LeadRecord is a prospect captured from a NOT_A_MEMBER preview.
type LeadRecord struct {
	ID         uuid.UUID         `json:"id"`
	ClaimID    uuid.UUID         `json:"claim_id"`
	CapturedAt time.Time         `json:"captured_at"`
	Lead       adjudication.Lead `json:"lead"`
}
