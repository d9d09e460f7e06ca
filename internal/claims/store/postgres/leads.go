package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"adjudicator/internal/claims/models"
)

type LeadStore struct {
	db *sql.DB
}

func NewLeadStore(db *sql.DB) *LeadStore {
	return &LeadStore{db: db}
}

func (s *LeadStore) Save(ctx context.Context, lead *models.LeadRecord) error {
	if lead == nil {
		return fmt.Errorf("lead is required")
	}
	query := `
		INSERT INTO leads (id, claim_id, captured_at, name, email, phone, claimed_amount, covered_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := executor(ctx, s.db).ExecContext(ctx, query,
		lead.ID,
		lead.ClaimID,
		lead.CapturedAt,
		lead.Lead.Name,
		lead.Lead.Email,
		lead.Lead.Phone,
		lead.Lead.ClaimedAmount,
		lead.Lead.CoveredAmount,
	)
	if err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}
