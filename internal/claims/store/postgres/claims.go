package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"adjudicator/internal/adjudication"
	"adjudicator/internal/claims/models"
	"adjudicator/pkg/platform/sentinel"
)

// ClaimStore keeps every adjudicated claim. The intake and the full result
// are stored as JSONB; the columns beside them exist for querying.
type ClaimStore struct {
	db *sql.DB
}

func NewClaimStore(db *sql.DB) *ClaimStore {
	return &ClaimStore{db: db}
}

const claimColumns = `id, member_id, request_id, submitted_at, intake, result`

func (s *ClaimStore) Save(ctx context.Context, record *models.ClaimRecord) error {
	if record == nil {
		return fmt.Errorf("claim record is required")
	}
	intake, err := json.Marshal(record.Intake)
	if err != nil {
		return fmt.Errorf("marshal intake: %w", err)
	}
	result, err := json.Marshal(record.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	query := `
		INSERT INTO claims (id, member_id, request_id, submitted_at, treatment_date, decision,
			claimed_amount, approved_amount, reason_codes, intake, result)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = executor(ctx, s.db).ExecContext(ctx, query,
		record.ID,
		nullString(record.MemberID),
		record.RequestID,
		record.SubmittedAt,
		nullTime(record.Intake.TreatmentDate),
		string(record.Decision()),
		record.ClaimedAmount(),
		record.ApprovedAmount(),
		pq.Array(reasonCodes(record.Result)),
		intake,
		result,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert claim: %w", err)
	}
	return nil
}

func (s *ClaimStore) FindByID(ctx context.Context, id uuid.UUID) (*models.ClaimRecord, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE id = $1`
	record, err := scanClaim(executor(ctx, s.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find claim: %w", err)
	}
	return record, nil
}

// ListByMember returns the member's claims, newest first.
func (s *ClaimStore) ListByMember(ctx context.Context, memberID string) ([]*models.ClaimRecord, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE member_id = $1 ORDER BY submitted_at DESC`
	rows, err := executor(ctx, s.db).QueryContext(ctx, query, memberID)
	if err != nil {
		return nil, fmt.Errorf("query claims: %w", err)
	}
	defer rows.Close()

	out := make([]*models.ClaimRecord, 0)
	for rows.Next() {
		record, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claims: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClaim(row rowScanner) (*models.ClaimRecord, error) {
	var (
		record         models.ClaimRecord
		memberID       sql.NullString
		intake, result []byte
	)
	if err := row.Scan(&record.ID, &memberID, &record.RequestID, &record.SubmittedAt, &intake, &result); err != nil {
		return nil, err
	}
	record.MemberID = memberID.String
	if err := json.Unmarshal(intake, &record.Intake); err != nil {
		return nil, fmt.Errorf("decode intake: %w", err)
	}
	if err := json.Unmarshal(result, &record.Result); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return &record, nil
}

func reasonCodes(res adjudication.Result) []string {
	var reasons []adjudication.Reason
	switch {
	case res.Decision != nil:
		reasons = res.Decision.RejectionReasons
	case res.Preview != nil:
		reasons = res.Preview.Issues
	}
	out := make([]string, 0, len(reasons))
	for _, r := range reasons {
		out = append(out, r.Code)
	}
	return out
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
