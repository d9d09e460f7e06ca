package adjudication

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// fraudCheck reports whether an indicator fires and why.
type fraudCheck func(ev *evaluation, stages []StageResult) (bool, string)

var fraudChecks = map[Indicator]fraudCheck{
	IndicatorDuplicateClaim:         duplicateClaim,
	IndicatorAmountAboveNorm:        amountAboveNorm,
	IndicatorIdentityMismatch:       identityMismatch,
	IndicatorDocumentInconsistency:  documentInconsistency,
	IndicatorSuspiciousRegistration: suspiciousRegistration,
	IndicatorSubmissionVelocity:     submissionVelocity,
}

// detectFraud runs after every other stage and scores the claim from the
// six indicators. The score is the clamped sum of fired weights.
func detectFraud(ev *evaluation, stages []StageResult) (FraudAssessment, StageResult) {
	fa := FraudAssessment{Flags: []FraudFlag{}}
	res := StageResult{Stage: StageFraud, Status: StatusPass, Findings: []Finding{}}

	total := 0.0
	for _, ind := range Indicators {
		fired, why := fraudChecks[ind](ev, stages)
		if !fired {
			continue
		}
		w := ev.cfg.Fraud.Weights[ind]
		total += w
		fa.Flags = append(fa.Flags, FraudFlag{Indicator: ind, Description: why, Contribution: w})
		res.Findings = append(res.Findings, newFinding(StageFraud, SeverityInfo, string(ind), w, "%s", why))
	}
	fa.Score = roundTo(math.Min(1, total), 4)
	res.Score = fa.Score

	if fa.Score >= ev.cfg.Fraud.ReviewThreshold {
		res.Status = StatusPartial
		res.Findings = append(res.Findings, newFinding(StageFraud, SeverityWarning, CodeFraudRiskElevated, fa.Score,
			"fraud risk %.2f is at or above the review threshold %.2f", fa.Score, ev.cfg.Fraud.ReviewThreshold))
	}
	return fa, res
}

func duplicateClaim(ev *evaluation, _ []StageResult) (bool, string) {
	treatment := ev.intake.TreatmentDate
	claimed := fromPaise(ev.settlement.claimed)
	if treatment.IsZero() || claimed <= 0 {
		return false, ""
	}
	tol := ev.cfg.Fraud.DuplicateAmountTolerance * claimed
	for _, pc := range ev.member.PriorClaims {
		if daysBetween(pc.TreatmentDate, treatment) == 0 && math.Abs(pc.Amount-claimed) <= tol {
			return true, fmt.Sprintf("claim %s on the same day for a similar amount (₹%.2f)", pc.ClaimID, pc.Amount)
		}
	}
	return false, ""
}

func amountAboveNorm(ev *evaluation, _ []StageResult) (bool, string) {
	fc := ev.cfg.Fraud
	norm := fc.DefaultAmountNorm
	if rule, ok := ev.cfg.ruleFor(ev.diagnosis()); ok && rule.TypicalAmount > 0 {
		norm = rule.TypicalAmount
	}
	claimed := fromPaise(ev.settlement.claimed)
	if claimed > fc.AmountNormMultiplier*norm {
		return true, fmt.Sprintf("claimed ₹%.2f is more than %gx the typical ₹%.2f", claimed, fc.AmountNormMultiplier, norm)
	}
	return false, ""
}

func identityMismatch(_ *evaluation, stages []StageResult) (bool, string) {
	for _, s := range stages {
		if s.Stage == StageIdentity && s.Status != StatusPass {
			return true, fmt.Sprintf("claimant identity not confirmed (match %.1f%%)", s.Score)
		}
	}
	return false, ""
}

var inconsistencyCodes = map[string]bool{
	CodePatientNameInconsistent: true,
	CodeDateInconsistent:        true,
	CodeAmountMismatch:          true,
}

func documentInconsistency(ev *evaluation, stages []StageResult) (bool, string) {
	for _, s := range stages {
		if s.Stage != StageDocuments {
			continue
		}
		for _, f := range s.Findings {
			if inconsistencyCodes[f.Code] {
				return true, "documents disagree: " + f.Message
			}
		}
	}

	dates := ev.documentDates()
	if len(dates) < 2 {
		return false, ""
	}
	lo, hi := dates[0], dates[0]
	for _, d := range dates[1:] {
		if d.Before(lo) {
			lo = d
		}
		if d.After(hi) {
			hi = d
		}
	}
	if span := daysBetween(lo, hi); span > ev.cfg.Fraud.DocumentDateSpanDays {
		return true, fmt.Sprintf("document dates span %d days", span)
	}
	return false, ""
}

func suspiciousRegistration(ev *evaluation, _ []StageResult) (bool, string) {
	p := ev.intake.Prescription
	if p == nil {
		return false, ""
	}
	reg := strings.TrimSpace(p.RegistrationNumber)
	if reg == "" {
		return false, ""
	}
	m := registrationPattern.FindStringSubmatch(reg)
	if m == nil {
		return true, fmt.Sprintf("registration %q is malformed", reg)
	}
	number, year := m[2], m[3]
	if isPlaceholderNumber(number) {
		return true, fmt.Sprintf("registration number %s looks like a placeholder", number)
	}
	y, _ := strconv.Atoi(year)
	if y < ev.cfg.Fraud.MinRegistrationYear {
		return true, fmt.Sprintf("registration year %d is implausibly old", y)
	}
	if t := ev.intake.TreatmentDate; !t.IsZero() && y > t.Year() {
		return true, fmt.Sprintf("registration year %d is after the treatment", y)
	}
	return false, ""
}

// isPlaceholderNumber flags a repeated digit (000, 7777) or a counting run
// that starts at 0 or 1 (0123, 12345).
func isPlaceholderNumber(n string) bool {
	if len(n) < 3 {
		return false
	}
	same := true
	for i := 1; i < len(n); i++ {
		if n[i] != n[0] {
			same = false
			break
		}
	}
	if same {
		return true
	}
	if len(n) < 4 || (n[0] != '0' && n[0] != '1') {
		return false
	}
	for i := 1; i < len(n); i++ {
		if n[i] != n[i-1]+1 {
			return false
		}
	}
	return true
}

func submissionVelocity(ev *evaluation, _ []StageResult) (bool, string) {
	treatment := ev.intake.TreatmentDate
	if treatment.IsZero() {
		return false, ""
	}
	fc := ev.cfg.Fraud
	recent := 0
	for _, pc := range ev.member.PriorClaims {
		if absInt(daysBetween(pc.TreatmentDate, treatment)) <= fc.VelocityWindowDays {
			recent++
		}
	}
	if recent >= fc.VelocityMaxClaims {
		return true, fmt.Sprintf("%d prior claims within %d days", recent, fc.VelocityWindowDays)
	}
	return false, ""
}
