// Package service orchestrates claim adjudication: it gathers the member
// snapshot and claim history, runs the decision engine, and records the
// outcome.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"adjudicator/internal/adjudication"
	"adjudicator/internal/claims/metrics"
	"adjudicator/internal/claims/models"
	dErrors "adjudicator/pkg/domain-errors"
	"adjudicator/pkg/platform/audit"
	"adjudicator/pkg/platform/sentinel"
	"adjudicator/pkg/requestcontext"
)

const (
	defaultFetchTimeout  = 2 * time.Second
	defaultHistoryWindow = 90 * 24 * time.Hour
)

type MemberStore interface {
	FindByID(ctx context.Context, memberID string) (*adjudication.Member, error)
	AddYTD(ctx context.Context, memberID string, amount float64) error
}

type ClaimStore interface {
	Save(ctx context.Context, record *models.ClaimRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ClaimRecord, error)
	ListByMember(ctx context.Context, memberID string) ([]*models.ClaimRecord, error)
}

type HistoryStore interface {
	ListSince(ctx context.Context, memberID string, since time.Time) ([]adjudication.PriorClaim, error)
	Record(ctx context.Context, memberID string, claim adjudication.PriorClaim) error
}

type LeadStore interface {
	Save(ctx context.Context, lead *models.LeadRecord) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// TxRunner runs fn so that every store write inside it commits or rolls
// back together.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type noTx struct{}

func (noTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

// Service adjudicates claims against the configured policy.
type Service struct {
	engine         *adjudication.Engine
	members        MemberStore
	claims         ClaimStore
	history        HistoryStore
	leads          LeadStore
	tx             TxRunner
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
	fetchTimeout   time.Duration
	historyWindow  time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithLeadStore(leads LeadStore) Option {
	return func(s *Service) {
		s.leads = leads
	}
}

func WithTxRunner(tx TxRunner) Option {
	return func(s *Service) {
		if tx != nil {
			s.tx = tx
		}
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// WithFetchTimeout bounds the concurrent member and history lookups.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// WithHistoryWindow sets how far back prior claims are loaded for the
// duplicate and velocity checks.
func WithHistoryWindow(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.historyWindow = d
		}
	}
}

// New constructs a Service.
func New(engine *adjudication.Engine, members MemberStore, claims ClaimStore, history HistoryStore, opts ...Option) (*Service, error) {
	switch {
	case engine == nil:
		return nil, errors.New("adjudication engine is required")
	case members == nil:
		return nil, errors.New("member store is required")
	case claims == nil:
		return nil, errors.New("claim store is required")
	case history == nil:
		return nil, errors.New("history store is required")
	}
	s := &Service{
		engine:        engine,
		members:       members,
		claims:        claims,
		history:       history,
		tx:            noTx{},
		tracer:        otel.Tracer("adjudicator/internal/claims"),
		fetchTimeout:  defaultFetchTimeout,
		historyWindow: defaultHistoryWindow,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Adjudicate decides one claim and records the outcome. A member ID with no
// matching member yields a NOT_A_MEMBER preview, not an error.
func (s *Service) Adjudicate(ctx context.Context, intake adjudication.ClaimIntake) (*models.ClaimRecord, error) {
	start := time.Now()
	intake.MemberID = strings.TrimSpace(intake.MemberID)

	ctx, span := s.tracer.Start(ctx, "claims.Adjudicate", trace.WithAttributes(
		attribute.String("member_id", intake.MemberID),
	))
	defer span.End()

	member, err := s.gatherMember(ctx, intake)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "member lookup failed")
		return nil, err
	}

	record := &models.ClaimRecord{
		ID:          uuid.New(),
		RequestID:   requestcontext.RequestID(ctx),
		SubmittedAt: requestcontext.Now(ctx),
		Intake:      intake,
		Result:      s.engine.Adjudicate(member, intake),
	}
	if member != nil {
		record.MemberID = member.ID
	}
	span.SetAttributes(
		attribute.String("claim_id", record.ID.String()),
		attribute.String("decision", string(record.Decision())),
	)

	if err := s.persist(ctx, record); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "persist failed")
		return nil, err
	}
	s.afterDecision(ctx, record)

	s.metrics.IncrementDecision(string(record.Decision()))
	if record.Paid() {
		s.metrics.ObserveApprovedAmount(record.ApprovedAmount())
	}
	if d := record.Result.Decision; d != nil {
		s.metrics.ObserveFraudRisk(d.FraudRisk)
	}
	s.metrics.ObserveAdjudicateLatency(time.Since(start))

	if s.logger != nil {
		s.logger.InfoContext(ctx, "claim adjudicated",
			"request_id", record.RequestID,
			"claim_id", record.ID,
			"member_id", record.MemberID,
			"decision", record.Decision(),
			"approved_amount", record.ApprovedAmount(),
		)
	}
	return record, nil
}

// gatherMember loads the member and their recent claims concurrently and
// attaches the history to the snapshot.
func (s *Service) gatherMember(ctx context.Context, intake adjudication.ClaimIntake) (*adjudication.Member, error) {
	if intake.MemberID == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	var (
		member *adjudication.Member
		prior  []adjudication.PriorClaim
	)

	g.Go(func() error {
		start := time.Now()
		m, err := s.members.FindByID(gctx, intake.MemberID)
		s.metrics.ObserveFetchLatency("member", time.Since(start))
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		member = m
		return nil
	})

	g.Go(func() error {
		start := time.Now()
		since := requestcontext.Now(gctx)
		if !intake.TreatmentDate.IsZero() {
			since = intake.TreatmentDate
		}
		claims, err := s.history.ListSince(gctx, intake.MemberID, since.Add(-s.historyWindow))
		s.metrics.ObserveFetchLatency("history", time.Since(start))
		if err != nil {
			return err
		}
		prior = claims
		return nil
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "member lookup timed out")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load member")
	}
	if member == nil {
		return nil, nil
	}

	snapshot := *member
	snapshot.PriorClaims = append(append([]adjudication.PriorClaim{}, member.PriorClaims...), prior...)
	return &snapshot, nil
}

// persist writes the claim, the member's new usage and the compliance event
// as one unit.
func (s *Service) persist(ctx context.Context, record *models.ClaimRecord) error {
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.claims.Save(ctx, record); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save claim")
		}
		if record.Paid() {
			if err := s.members.AddYTD(ctx, record.MemberID, record.ApprovedAmount()); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update member usage")
			}
		}
		if s.auditPublisher == nil {
			return nil
		}
		if err := s.auditPublisher.Emit(ctx, s.decisionEvent(ctx, record, audit.EventDecisionMade)); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to audit decision")
		}
		return nil
	})
	if err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "claim persistence failed",
			"request_id", record.RequestID,
			"claim_id", record.ID,
			"error", err,
		)
	}
	return err
}

// afterDecision performs the follow-ups that must not fail an already
// recorded claim.
func (s *Service) afterDecision(ctx context.Context, record *models.ClaimRecord) {
	res := record.Result

	if res.Decision != nil {
		if err := s.history.Record(ctx, record.MemberID, record.PriorClaim()); err != nil && s.logger != nil {
			s.logger.WarnContext(ctx, "failed to record claim history",
				"claim_id", record.ID,
				"member_id", record.MemberID,
				"error", err,
			)
		}
		if record.Paid() {
			s.emitBestEffort(ctx, s.decisionEvent(ctx, record, audit.EventMemberUsageUpdated))
		}
		if res.Type == adjudication.DecisionManualReview {
			s.emitBestEffort(ctx, s.decisionEvent(ctx, record, audit.EventManualReviewQueued))
		}
		if len(res.Decision.FraudFlags) > 0 && res.Decision.FraudRisk >= s.engine.Config().Fraud.ReviewThreshold {
			ev := s.decisionEvent(ctx, record, audit.EventFraudRiskFlagged)
			ev.Reason = fraudIndicators(res.Decision.FraudFlags)
			s.emitBestEffort(ctx, ev)
		}
		return
	}

	if res.Preview == nil {
		return
	}
	s.emitBestEffort(ctx, s.decisionEvent(ctx, record, audit.EventSalesPreviewIssued))
	if res.Preview.Lead != nil && s.leads != nil {
		lead := &models.LeadRecord{
			ID:         uuid.New(),
			ClaimID:    record.ID,
			CapturedAt: record.SubmittedAt,
			Lead:       *res.Preview.Lead,
		}
		if err := s.leads.Save(ctx, lead); err != nil {
			if s.logger != nil {
				s.logger.ErrorContext(ctx, "failed to capture lead",
					"claim_id", record.ID,
					"error", err,
				)
			}
			return
		}
		s.metrics.IncrementLeadsCaptured()
		s.emitBestEffort(ctx, s.decisionEvent(ctx, record, audit.EventLeadCaptured))
	}
}

// Get returns a stored claim.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.ClaimRecord, error) {
	record, err := s.claims.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "claim not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load claim")
	}
	return record, nil
}

// ListByMember returns a member's claims, newest first.
func (s *Service) ListByMember(ctx context.Context, memberID string) ([]*models.ClaimRecord, error) {
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "member_id is required")
	}
	if _, err := s.members.FindByID(ctx, memberID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "member not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load member")
	}
	records, err := s.claims.ListByMember(ctx, memberID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list claims")
	}
	s.emitBestEffort(ctx, audit.Event{
		Subject:   memberID,
		Action:    string(audit.EventClaimHistoryFetched),
		RequestID: requestcontext.RequestID(ctx),
	})
	return records, nil
}

func (s *Service) decisionEvent(ctx context.Context, record *models.ClaimRecord, action audit.AuditEvent) audit.Event {
	ev := audit.Event{
		ID:        uuid.NewString(),
		Timestamp: requestcontext.Now(ctx),
		Subject:   record.MemberID,
		Action:    string(action),
		ClaimID:   record.ID.String(),
		Decision:  string(record.Decision()),
		Amount:    record.ApprovedAmount(),
		RequestID: record.RequestID,
	}
	if d := record.Result.Decision; d != nil {
		ev.FraudRisk = d.FraudRisk
		if len(d.RejectionReasons) > 0 {
			ev.Reason = d.RejectionReasons[0].Code
		}
	}
	if p := record.Result.Preview; p != nil {
		ev.Subject = previewSubject(record)
		ev.Amount = p.CoveredAmount
	}
	return ev
}

// previewSubject identifies a non-member by the best handle available.
func previewSubject(record *models.ClaimRecord) string {
	if lead := record.Result.Preview.Lead; lead != nil {
		if lead.Email != "" {
			return lead.Email
		}
		if lead.Phone != "" {
			return lead.Phone
		}
	}
	if record.Intake.MemberID != "" {
		return record.Intake.MemberID
	}
	return "prospect:" + record.ID.String()
}

func (s *Service) emitBestEffort(ctx context.Context, ev audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, ev); err != nil {
		s.metrics.IncrementAuditFailure(ev.Action)
		if s.logger != nil {
			s.logger.WarnContext(ctx, "audit emit failed",
				"action", ev.Action,
				"claim_id", ev.ClaimID,
				"error", err,
			)
		}
	}
}

func fraudIndicators(flags []adjudication.FraudFlag) string {
	out := make([]string, 0, len(flags))
	for _, f := range flags {
		out = append(out, string(f.Indicator))
	}
	return strings.Join(out, ",")
}
