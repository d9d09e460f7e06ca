package adjudication

import (
	"strings"

	pstrings "adjudicator/pkg/platform/strings"
)

// ruleFor returns the first necessity rule whose conditions match diagnosis.
func (c Config) ruleFor(diagnosis string) (NecessityRule, bool) {
	for _, r := range c.NecessityRules {
		if pstrings.MatchAny(diagnosis, r.Conditions) != "" {
			return r, true
		}
	}
	return NecessityRule{}, false
}

// assessNecessity never hard-fails a claim: its findings are warnings and the
// aggregator weighs them against confidence.
func assessNecessity(ev *evaluation) StageResult {
	res := StageResult{Stage: StageNecessity, Findings: []Finding{}}
	warn := func(code string, value float64, format string, args ...any) {
		res.Findings = append(res.Findings, newFinding(StageNecessity, SeverityWarning, code, value, format, args...))
	}

	diagnosis := ev.diagnosis()
	if diagnosis == "" {
		warn(CodeNecessityNotEstablished, 0, "medical necessity not established: no diagnosis on the prescription")
		res.Status = StatusFail
		return res
	}

	rule, ok := ev.cfg.ruleFor(diagnosis)
	if !ok {
		res.Status = StatusPass
		res.Score = 100
		res.Findings = append(res.Findings, newFinding(StageNecessity, SeverityInfo, CodeUnknownDiagnosis, 0,
			"no treatment guideline for diagnosis %q", diagnosis))
		return res
	}

	items := ev.treatmentsForNecessity()
	var unmatched []string
	for _, t := range items {
		if pstrings.MatchAny(t, rule.Treatments) == "" && pstrings.MatchAny(t, ev.cfg.GeneralTreatments) == "" {
			unmatched = append(unmatched, t)
		}
	}
	res.Score = 100
	if len(items) > 0 {
		res.Score = roundTo(100*float64(len(items)-len(unmatched))/float64(len(items)), 2)
	}
	if len(unmatched) > 0 {
		warn(CodeNecessityNotEstablished, float64(len(unmatched)),
			"medical necessity not established: %s not indicated for %s", strings.Join(unmatched, ", "), diagnosis)
	}

	if claimed := ev.settlement.claimed; rule.MaxAmount > 0 && claimed > toPaise(rule.MaxAmount) {
		warn(CodeAmountImplausible, fromPaise(claimed),
			"claimed %s is above the plausible maximum of %s for %s", claimed, toPaise(rule.MaxAmount), rule.Name)
	}

	res.Status = StatusPass
	if len(res.Findings) > 0 {
		res.Status = StatusFail
	}
	return res
}

// treatmentsForNecessity prefers the prescribed medicines and procedures and
// falls back to the billed line items.
func (ev *evaluation) treatmentsForNecessity() []string {
	if p := ev.intake.Prescription; p != nil {
		if t := treatments(p); len(t) > 0 {
			return t
		}
	}
	var out []string
	if b := ev.intake.Bill; b != nil {
		for _, it := range b.LineItems {
			if d := strings.TrimSpace(it.Description); d != "" {
				out = append(out, d)
			}
		}
	}
	return out
}
