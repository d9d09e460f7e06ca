package adjudication

import (
	"fmt"

	pstrings "adjudicator/pkg/platform/strings"
)

func checkEligibility(ev *evaluation) StageResult {
	m := ev.member
	var fs []Finding
	fail := func(code string, value float64, format string, args ...any) {
		fs = append(fs, newFinding(StageEligibility, SeverityError, code, value, format, args...))
	}

	if m.Status != PolicyActive {
		fail(CodePolicyInactive, 0, "policy inactive: status is %q", m.Status)
	}

	treatment := ev.intake.TreatmentDate
	switch {
	case treatment.IsZero():
		fail(CodeTreatmentDateMissing, 0, "treatment date missing")
	case daysBetween(m.PolicyStart, treatment) < 0,
		!m.PolicyEnd.IsZero() && daysBetween(treatment, m.PolicyEnd) < 0:
		fail(CodeOutsidePolicyPeriod, 0, "outside policy period: treatment on %s, policy %s",
			treatment.Format(dateLayout), policyWindow(m))
	default:
		wait, label := ev.waitingPeriod()
		elapsed := daysBetween(m.PolicyStart, treatment)
		if elapsed < wait {
			remaining := wait - elapsed
			fail(CodeWaitingPeriod, float64(remaining),
				"waiting period violation: %d days remaining of the %d-day %s waiting period", remaining, wait, label)
		}
	}

	return StageResult{Stage: StageEligibility, Status: statusOf(fs), Findings: nonNil(fs)}
}

// waitingPeriod returns the most restrictive waiting period for the claim.
func (ev *evaluation) waitingPeriod() (int, string) {
	wp := ev.cfg.WaitingPeriods
	wait, label := wp.GeneralDays, "general"
	if cond := pstrings.MatchAny(ev.diagnosis(), wp.Conditions); cond != "" && wp.ConditionDays > wait {
		wait, label = wp.ConditionDays, cond
	}
	return wait, label
}

func policyWindow(m *Member) string {
	if m.PolicyEnd.IsZero() {
		return fmt.Sprintf("starts %s", m.PolicyStart.Format(dateLayout))
	}
	return fmt.Sprintf("runs %s to %s", m.PolicyStart.Format(dateLayout), m.PolicyEnd.Format(dateLayout))
}
