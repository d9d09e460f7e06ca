package adjudication

import (
	"strings"
	"time"
)

// hypotheticalMember is a freshly enrolled policy holder whose waiting
// periods have all elapsed by the treatment date.
func hypotheticalMember(cfg Config, intake ClaimIntake) *Member {
	m := &Member{
		Name:   claimedName(intake),
		Status: PolicyActive,
	}
	if !intake.TreatmentDate.IsZero() {
		wait := max(cfg.WaitingPeriods.GeneralDays, cfg.WaitingPeriods.ConditionDays)
		m.PolicyStart = civil(intake.TreatmentDate).AddDate(0, 0, -(wait + 1))
	}
	return m
}

func buildPreview(cfg Config, intake ClaimIntake) *SalesPreview {
	if claimedName(intake) == "" && intake.Contact != nil {
		intake.ClaimedName = strings.TrimSpace(intake.Contact.Name)
	}
	d, ev := decide(cfg, hypotheticalMember(cfg, intake), intake)
	s := ev.settlement

	p := &SalesPreview{
		ClaimedAmount:   d.ClaimedAmount,
		Benefits:        cfg.Benefits(),
		Issues:          []Reason{},
		ConfidenceScore: d.ConfidenceScore,
	}
	if d.Type == DecisionRejected {
		p.Issues = d.RejectionReasons
	} else {
		p.CoveredAmount = fromPaise(s.approved)
		p.Deductions = s.deductions()
	}
	p.Savings = p.CoveredAmount
	p.OutOfPocket = fromPaise(s.claimed - toPaise(p.CoveredAmount))
	if s.claimed > 0 {
		p.CoveragePercent = roundTo(100*p.CoveredAmount/p.ClaimedAmount, 1)
	}
	p.Lead = captureLead(intake, p)
	return p
}

func captureLead(intake ClaimIntake, p *SalesPreview) *Lead {
	c := intake.Contact
	if c == nil {
		return nil
	}
	email, phone := strings.TrimSpace(c.Email), strings.TrimSpace(c.Phone)
	if email == "" && phone == "" {
		return nil
	}
	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = claimedName(intake)
	}
	var treated time.Time
	if !intake.TreatmentDate.IsZero() {
		treated = civil(intake.TreatmentDate)
	}
	return &Lead{
		Name:          name,
		Email:         email,
		Phone:         phone,
		ClaimedAmount: p.ClaimedAmount,
		CoveredAmount: p.CoveredAmount,
		TreatmentDate: treated,
	}
}
