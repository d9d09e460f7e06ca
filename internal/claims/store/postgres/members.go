package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"adjudicator/internal/adjudication"
	"adjudicator/pkg/platform/sentinel"
)

// MemberStore reads member snapshots and tracks year-to-date usage.
type MemberStore struct {
	db *sql.DB
}

func NewMemberStore(db *sql.DB) *MemberStore {
	return &MemberStore{db: db}
}

func (s *MemberStore) FindByID(ctx context.Context, memberID string) (*adjudication.Member, error) {
	query := `
		SELECT id, name, policy_number, policy_start, policy_end, status, annual_limit, ytd_claims
		FROM members
		WHERE id = $1
	`
	var (
		m   adjudication.Member
		end sql.NullTime
	)
	err := executor(ctx, s.db).QueryRowContext(ctx, query, memberID).Scan(
		&m.ID, &m.Name, &m.PolicyNumber, &m.PolicyStart, &end, &m.Status, &m.AnnualLimit, &m.YTDClaims,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find member: %w", err)
	}
	if end.Valid {
		m.PolicyEnd = end.Time
	}
	return &m, nil
}

// Upsert inserts or replaces a member, including its usage.
func (s *MemberStore) Upsert(ctx context.Context, m adjudication.Member) error {
	query := `
		INSERT INTO members (id, name, policy_number, policy_start, policy_end, status, annual_limit, ytd_claims)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			policy_number = EXCLUDED.policy_number,
			policy_start = EXCLUDED.policy_start,
			policy_end = EXCLUDED.policy_end,
			status = EXCLUDED.status,
			annual_limit = EXCLUDED.annual_limit,
			ytd_claims = EXCLUDED.ytd_claims
	`
	var end sql.NullTime
	if !m.PolicyEnd.IsZero() {
		end = sql.NullTime{Time: m.PolicyEnd, Valid: true}
	}
	_, err := executor(ctx, s.db).ExecContext(ctx, query,
		m.ID, m.Name, m.PolicyNumber, m.PolicyStart, end, string(m.Status), m.AnnualLimit, m.YTDClaims,
	)
	if err != nil {
		return fmt.Errorf("upsert member: %w", err)
	}
	return nil
}

func (s *MemberStore) AddYTD(ctx context.Context, memberID string, amount float64) error {
	res, err := executor(ctx, s.db).ExecContext(ctx,
		`UPDATE members SET ytd_claims = ytd_claims + $2 WHERE id = $1`, memberID, amount)
	if err != nil {
		return fmt.Errorf("update member usage: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update member usage: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
