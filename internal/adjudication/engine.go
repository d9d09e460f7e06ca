// Package adjudication is the OPD claim decision engine. It is a pure
// function from a member snapshot and a claim intake to either a Decision or,
// when there is no member, a SalesPreview. It performs no I/O and holds no
// state between calls.
package adjudication

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Engine adjudicates claims against one validated policy.
type Engine struct {
	cfg Config
}

// NewEngine validates cfg and prepares it for repeated use.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg.normalized()}, nil
}

// Config returns the policy the engine was built with.
func (e *Engine) Config() Config {
	return e.cfg
}

// Adjudicate runs the full pipeline. member is nil exactly when no member
// record matches the claim.
func (e *Engine) Adjudicate(member *Member, intake ClaimIntake) Result {
	return run(e.cfg, member, intake)
}

// Adjudicate runs the pipeline with an explicit policy. A cfg that fails
// Validate is replaced by DefaultConfig, so a partial policy never scores a
// missing weight as zero. Callers adjudicating many claims, or needing the
// validation error, should build an Engine instead.
func Adjudicate(cfg Config, member *Member, intake ClaimIntake) Result {
	if err := cfg.Validate(); err != nil {
		cfg = DefaultConfig()
	}
	return run(cfg.normalized(), member, intake)
}

func run(cfg Config, member *Member, intake ClaimIntake) Result {
	// No member means no stage can run: NOT_A_MEMBER outranks every rule of
	// the decision table.
	if member == nil {
		return Result{Type: DecisionNotAMember, Preview: buildPreview(cfg, intake)}
	}
	d, _ := decide(cfg, member, intake)
	return Result{Type: d.Type, Decision: d}
}

// evaluation is the immutable context every stage reads.
type evaluation struct {
	cfg        Config
	member     *Member
	intake     ClaimIntake
	coverage   coverageAssessment
	settlement settlement
}

func newEvaluation(cfg Config, member *Member, intake ClaimIntake) *evaluation {
	claimed := claimedAmount(intake)
	cov := assessCoverage(cfg, intake, claimed)
	return &evaluation{
		cfg:        cfg,
		member:     member,
		intake:     intake,
		coverage:   cov,
		settlement: settle(cfg, member, claimed, cov),
	}
}

type stageFunc func(*evaluation) StageResult

// pipeline is the fixed stage order. Every stage runs; failures are
// collected, not thrown.
var pipeline = []stageFunc{
	verifyIdentity,
	checkEligibility,
	validateDocuments,
	checkCoverage,
	checkLimits,
	assessNecessity,
}

func decide(cfg Config, member *Member, intake ClaimIntake) (*Decision, *evaluation) {
	ev := newEvaluation(cfg, member, intake)
	stages := make([]StageResult, 0, len(pipeline))
	for _, stage := range pipeline {
		stages = append(stages, stage(ev))
	}
	fa, fraudStage := detectFraud(ev, stages)
	return aggregate(newOutcome(ev, stages, fa, fraudStage)), ev
}

func claimedAmount(in ClaimIntake) paise {
	if in.Bill == nil {
		return 0
	}
	if in.Bill.TotalAmount > 0 {
		return toPaise(in.Bill.TotalAmount)
	}
	return lineItemTotal(in.Bill.LineItems)
}

func claimedName(in ClaimIntake) string {
	if n := strings.TrimSpace(in.ClaimedName); n != "" {
		return n
	}
	if in.Prescription != nil {
		if n := strings.TrimSpace(in.Prescription.PatientName); n != "" {
			return n
		}
	}
	if in.Bill != nil {
		return strings.TrimSpace(in.Bill.PatientName)
	}
	return ""
}

func (ev *evaluation) claimedName() string { return claimedName(ev.intake) }

func (ev *evaluation) diagnosis() string {
	if ev.intake.Prescription == nil {
		return ""
	}
	return strings.TrimSpace(ev.intake.Prescription.Diagnosis)
}

func (ev *evaluation) documentDates() []time.Time {
	var dates []time.Time
	add := func(t time.Time) {
		if !t.IsZero() {
			dates = append(dates, t)
		}
	}
	add(ev.intake.TreatmentDate)
	if p := ev.intake.Prescription; p != nil {
		add(p.Date)
	}
	if b := ev.intake.Bill; b != nil {
		add(b.Date)
	}
	return dates
}

func newFinding(stage Stage, sev Severity, code string, value float64, format string, args ...any) Finding {
	return Finding{
		Code:     code,
		Category: stage,
		Message:  fmt.Sprintf(format, args...),
		Severity: sev,
		Value:    value,
	}
}

// statusOf derives a stage status: any error fails it, any warning makes it partial.
func statusOf(fs []Finding) Status {
	status := StatusPass
	for _, f := range fs {
		switch f.Severity {
		case SeverityError:
			return StatusFail
		case SeverityWarning:
			status = StatusPartial
		}
	}
	return status
}

func nonNil(fs []Finding) []Finding {
	if fs == nil {
		return []Finding{}
	}
	return fs
}
