package handler

import (
	"time"

	"adjudicator/internal/adjudication"
	"adjudicator/internal/claims/models"
)

// ClaimResponse is returned by POST /claims/adjudicate and GET /claims/{claimID}.
type ClaimResponse struct {
	ClaimID     string                     `json:"claim_id"`
	MemberID    string                     `json:"member_id,omitempty"`
	SubmittedAt time.Time                  `json:"submitted_at"`
	Decision    adjudication.DecisionType  `json:"decision"`
	Adjudicated *adjudication.Decision     `json:"adjudication,omitempty"`
	Preview     *adjudication.SalesPreview `json:"preview,omitempty"`
}

type ClaimSummary struct {
	ClaimID        string                    `json:"claim_id"`
	SubmittedAt    time.Time                 `json:"submitted_at"`
	TreatmentDate  string                    `json:"treatment_date,omitempty"`
	Decision       adjudication.DecisionType `json:"decision"`
	ClaimedAmount  float64                   `json:"claimed_amount"`
	ApprovedAmount float64                   `json:"approved_amount"`
}

type ClaimListResponse struct {
	MemberID string         `json:"member_id"`
	Claims   []ClaimSummary `json:"claims"`
	Total    int            `json:"total"`
}

func toClaimResponse(r *models.ClaimRecord) *ClaimResponse {
	return &ClaimResponse{
		ClaimID:     r.ID.String(),
		MemberID:    r.MemberID,
		SubmittedAt: r.SubmittedAt,
		Decision:    r.Decision(),
		Adjudicated: r.Result.Decision,
		Preview:     r.Result.Preview,
	}
}

func toClaimListResponse(memberID string, records []*models.ClaimRecord) *ClaimListResponse {
	out := &ClaimListResponse{MemberID: memberID, Claims: make([]ClaimSummary, 0, len(records))}
	for _, r := range records {
		s := ClaimSummary{
			ClaimID:        r.ID.String(),
			SubmittedAt:    r.SubmittedAt,
			Decision:       r.Decision(),
			ClaimedAmount:  r.ClaimedAmount(),
			ApprovedAmount: r.ApprovedAmount(),
		}
		if t := r.Intake.TreatmentDate; !t.IsZero() {
			s.TreatmentDate = t.Format(dateLayout)
		}
		out.Claims = append(out.Claims, s)
	}
	out.Total = len(out.Claims)
	return out
}
