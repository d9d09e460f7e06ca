package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adjudicator/internal/adjudication"
	"adjudicator/internal/claims/models"
	"adjudicator/pkg/platform/sentinel"
	txcontext "adjudicator/pkg/platform/tx"
)

var day = time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func rejectedRecord() *models.ClaimRecord {
	return &models.ClaimRecord{
		ID:          uuid.New(),
		MemberID:    "EMP001",
		RequestID:   "req-1",
		SubmittedAt: day.Add(time.Hour),
		Intake:      adjudication.ClaimIntake{MemberID: "EMP001", TreatmentDate: day},
		Result: adjudication.Result{
			Type: adjudication.DecisionRejected,
			Decision: &adjudication.Decision{
				Type:          adjudication.DecisionRejected,
				ClaimedAmount: 800,
				RejectionReasons: []adjudication.Reason{
					{Stage: adjudication.StageEligibility, Code: adjudication.CodePolicyInactive},
					{Stage: adjudication.StageDocuments, Code: adjudication.CodeMissingDocument},
				},
			},
		},
	}
}

// =============================================================================
// Members
// =============================================================================

func TestMemberFindByID(t *testing.T) {
	db, mock := newMock(t)
	s := NewMemberStore(db)

	rows := sqlmock.NewRows([]string{"id", "name", "policy_number", "policy_start", "policy_end", "status", "annual_limit", "ytd_claims"}).
		AddRow("EMP001", "Rajesh Kumar", "OPD-2024", day.AddDate(0, -10, 0), nil, "active", 50000.0, 1200.0)
	mock.ExpectQuery("SELECT id, name, policy_number").WithArgs("EMP001").WillReturnRows(rows)

	m, err := s.FindByID(context.Background(), "EMP001")
	require.NoError(t, err)
	assert.Equal(t, "Rajesh Kumar", m.Name)
	assert.Equal(t, adjudication.PolicyActive, m.Status)
	assert.True(t, m.PolicyEnd.IsZero())
	assert.Equal(t, 1200.0, m.YTDClaims)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberFindByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	s := NewMemberStore(db)
	mock.ExpectQuery("SELECT id, name").WithArgs("EMP404").WillReturnError(sql.ErrNoRows)

	_, err := s.FindByID(context.Background(), "EMP404")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestMemberAddYTD(t *testing.T) {
	t.Run("updates usage", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec("UPDATE members SET ytd_claims").WithArgs("EMP001", 720.0).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewMemberStore(db).AddYTD(context.Background(), "EMP001", 720))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown member", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec("UPDATE members SET ytd_claims").WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewMemberStore(db).AddYTD(context.Background(), "EMP404", 10)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestMemberUpsert(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("INSERT INTO members").
		WithArgs("EMP003", "Amit Verma", "", day, sqlmock.AnyArg(), "active", 50000.0, 0.0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewMemberStore(db).Upsert(context.Background(), adjudication.Member{
		ID: "EMP003", Name: "Amit Verma", PolicyStart: day, Status: adjudication.PolicyActive, AnnualLimit: 50000,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// =============================================================================
// Claims
// =============================================================================

func TestClaimSave(t *testing.T) {
	db, mock := newMock(t)
	record := rejectedRecord()

	mock.ExpectExec("INSERT INTO claims").
		WithArgs(record.ID, sqlmock.AnyArg(), "req-1", record.SubmittedAt, sqlmock.AnyArg(), "REJECTED",
			800.0, 0.0, pq.Array([]string{"POLICY_INACTIVE", "MISSING_DOCUMENT"}), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewClaimStore(db).Save(context.Background(), record))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimSaveConflict(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec("INSERT INTO claims").WillReturnError(&pq.Error{Code: "23505"})

	err := NewClaimStore(db).Save(context.Background(), rejectedRecord())
	assert.ErrorIs(t, err, sentinel.ErrConflict)
}

func TestClaimSaveJoinsContextTransaction(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO claims").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE members SET ytd_claims").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := NewTxRunner(db).RunInTx(context.Background(), func(ctx context.Context) error {
		_, ok := txcontext.From(ctx)
		require.True(t, ok)
		if err := NewClaimStore(db).Save(ctx, rejectedRecord()); err != nil {
			return err
		}
		return NewMemberStore(db).AddYTD(ctx, "EMP001", 720)
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxRunnerRollsBackOnError(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO claims").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	boom := errors.New("audit outbox unavailable")
	err := NewTxRunner(db).RunInTx(context.Background(), func(ctx context.Context) error {
		if err := NewClaimStore(db).Save(ctx, rejectedRecord()); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTxRunnerRejectsCancelledContext(t *testing.T) {
	db, _ := newMock(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewTxRunner(db).RunInTx(ctx, func(context.Context) error { return nil })
	assert.Error(t, err)
}

func TestClaimFindByID(t *testing.T) {
	db, mock := newMock(t)
	want := rejectedRecord()
	intake, _ := json.Marshal(want.Intake)
	result, _ := json.Marshal(want.Result)

	rows := sqlmock.NewRows([]string{"id", "member_id", "request_id", "submitted_at", "intake", "result"}).
		AddRow(want.ID.String(), "EMP001", "req-1", want.SubmittedAt, intake, result)
	mock.ExpectQuery("SELECT id, member_id").WithArgs(want.ID).WillReturnRows(rows)

	got, err := NewClaimStore(db).FindByID(context.Background(), want.ID)
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, adjudication.DecisionRejected, got.Decision())
	assert.Equal(t, 800.0, got.ClaimedAmount())
	assert.Len(t, got.Result.Decision.RejectionReasons, 2)
	assert.Equal(t, day, got.Intake.TreatmentDate)
}

func TestClaimFindByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("SELECT id, member_id").WillReturnError(sql.ErrNoRows)

	_, err := NewClaimStore(db).FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestClaimListByMember(t *testing.T) {
	db, mock := newMock(t)
	rec := rejectedRecord()
	intake, _ := json.Marshal(rec.Intake)
	result, _ := json.Marshal(rec.Result)

	rows := sqlmock.NewRows([]string{"id", "member_id", "request_id", "submitted_at", "intake", "result"}).
		AddRow(rec.ID.String(), "EMP001", "req-1", rec.SubmittedAt, intake, result).
		AddRow(uuid.NewString(), "EMP001", "req-0", day, intake, []byte(`{"type":"APPROVED"}`))
	mock.ExpectQuery("ORDER BY submitted_at DESC").WithArgs("EMP001").WillReturnRows(rows)

	got, err := NewClaimStore(db).ListByMember(context.Background(), "EMP001")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, rec.ID, got[0].ID)
	assert.Equal(t, adjudication.DecisionApproved, got[1].Decision())
}

func TestClaimListRejectsCorruptResult(t *testing.T) {
	db, mock := newMock(t)
	rows := sqlmock.NewRows([]string{"id", "member_id", "request_id", "submitted_at", "intake", "result"}).
		AddRow(uuid.NewString(), "EMP001", "", day, []byte(`{}`), []byte(`not json`))
	mock.ExpectQuery("FROM claims").WillReturnRows(rows)

	_, err := NewClaimStore(db).ListByMember(context.Background(), "EMP001")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode result")
}

// =============================================================================
// History and leads
// =============================================================================

func TestHistoryListSince(t *testing.T) {
	db, mock := newMock(t)
	since := day.AddDate(0, 0, -90)
	rows := sqlmock.NewRows([]string{"id", "treatment_date", "claimed_amount"}).
		AddRow("c1", day.AddDate(0, 0, -3), 900.0).
		AddRow("c2", day, 800.0)
	mock.ExpectQuery("FROM claims").WithArgs("EMP001", since).WillReturnRows(rows)

	s := NewHistoryStore(db)
	got, err := s.ListSince(context.Background(), "EMP001", since)
	require.NoError(t, err)
	assert.Equal(t, []adjudication.PriorClaim{
		{ClaimID: "c1", TreatmentDate: day.AddDate(0, 0, -3), Amount: 900},
		{ClaimID: "c2", TreatmentDate: day, Amount: 800},
	}, got)
	assert.NoError(t, s.Record(context.Background(), "EMP001", got[0]))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadSave(t *testing.T) {
	db, mock := newMock(t)
	lead := &models.LeadRecord{
		ID:         uuid.New(),
		ClaimID:    uuid.New(),
		CapturedAt: day,
		Lead:       adjudication.Lead{Name: "Walk In", Email: "walkin@example.com", ClaimedAmount: 800, CoveredAmount: 720},
	}
	mock.ExpectExec("INSERT INTO leads").
		WithArgs(lead.ID, lead.ClaimID, day, "Walk In", "walkin@example.com", "", 800.0, 720.0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewLeadStore(db).Save(context.Background(), lead))
	assert.NoError(t, mock.ExpectationsWereMet())
}
