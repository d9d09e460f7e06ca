package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"adjudicator/internal/adjudication"
)

// HistoryStore derives claim history from the claims table. Recording is a
// no-op because ClaimStore.Save already wrote the row.
type HistoryStore struct {
	db *sql.DB
}

func NewHistoryStore(db *sql.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

func (s *HistoryStore) ListSince(ctx context.Context, memberID string, since time.Time) ([]adjudication.PriorClaim, error) {
	query := `
		SELECT id, treatment_date, claimed_amount
		FROM claims
		WHERE member_id = $1 AND treatment_date >= $2
		ORDER BY treatment_date ASC
	`
	rows, err := executor(ctx, s.db).QueryContext(ctx, query, memberID, since)
	if err != nil {
		return nil, fmt.Errorf("query claim history: %w", err)
	}
	defer rows.Close()

	var out []adjudication.PriorClaim
	for rows.Next() {
		var pc adjudication.PriorClaim
		if err := rows.Scan(&pc.ClaimID, &pc.TreatmentDate, &pc.Amount); err != nil {
			return nil, fmt.Errorf("scan claim history: %w", err)
		}
		out = append(out, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claim history: %w", err)
	}
	return out, nil
}

func (s *HistoryStore) Record(context.Context, string, adjudication.PriorClaim) error {
	return nil
}
