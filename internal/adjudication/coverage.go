package adjudication

import (
	pstrings "adjudicator/pkg/platform/strings"
)

type excludedItem struct {
	Description string
	Phrase      string
	Amount      paise
}

// coverageAssessment is derived once per claim and read by the coverage and
// limits stages.
type coverageAssessment struct {
	diagnosisExclusion string
	excludedItems      []excludedItem
	// unpricedExclusions are excluded medicines or procedures with no billed
	// line item that could be carved out of the claim.
	unpricedExclusions []string
	allItemsExcluded   bool
	nonCovered         paise
	preAuthMissing     []string
	network            bool
}

func assessCoverage(cfg Config, in ClaimIntake, claimed paise) coverageAssessment {
	var ca coverageAssessment
	p, b := in.Prescription, in.Bill

	if p != nil {
		ca.diagnosisExclusion = pstrings.MatchAny(p.Diagnosis, cfg.Exclusions)
	}

	excludedPhrases := map[string]bool{}
	if b != nil && len(b.LineItems) > 0 {
		for _, it := range b.LineItems {
			if phrase := pstrings.MatchAny(it.Description+" "+it.Category, cfg.Exclusions); phrase != "" {
				ca.excludedItems = append(ca.excludedItems, excludedItem{
					Description: it.Description,
					Phrase:      phrase,
					Amount:      toPaise(it.Amount),
				})
				ca.nonCovered += toPaise(it.Amount)
				excludedPhrases[phrase] = true
			}
		}
		ca.allItemsExcluded = len(ca.excludedItems) == len(b.LineItems)
	}
	ca.nonCovered = minPaise(ca.nonCovered, claimed)

	if p != nil {
		for _, t := range treatments(p) {
			if phrase := pstrings.MatchAny(t, cfg.Exclusions); phrase != "" && !excludedPhrases[phrase] {
				ca.unpricedExclusions = append(ca.unpricedExclusions, t)
			}
		}
	}

	if in.PreAuthReference == "" {
		seen := map[string]bool{}
		for _, text := range preAuthTexts(in) {
			if phrase := pstrings.MatchAny(text, cfg.PreAuthRequired); phrase != "" && !seen[phrase] {
				seen[phrase] = true
				ca.preAuthMissing = append(ca.preAuthMissing, phrase)
			}
		}
	}

	if b != nil {
		ca.network = b.IsNetworkHospital || pstrings.MatchAny(b.HospitalName, cfg.NetworkHospitals) != ""
	}
	return ca
}

func treatments(p *Prescription) []string {
	out := make([]string, 0, len(p.Medicines)+len(p.Procedures))
	out = append(out, p.Medicines...)
	return append(out, p.Procedures...)
}

func preAuthTexts(in ClaimIntake) []string {
	var texts []string
	if p := in.Prescription; p != nil {
		texts = append(texts, p.Diagnosis)
		texts = append(texts, treatments(p)...)
	}
	if b := in.Bill; b != nil {
		for _, it := range b.LineItems {
			texts = append(texts, it.Description)
		}
	}
	return texts
}

func checkCoverage(ev *evaluation) StageResult {
	ca := ev.coverage
	var fs []Finding
	add := func(sev Severity, code string, value float64, format string, args ...any) {
		fs = append(fs, newFinding(StageCoverage, sev, code, value, format, args...))
	}

	if ca.diagnosisExclusion != "" {
		add(SeverityError, CodeExcludedTreatment, 0, "excluded treatment: diagnosis %q falls under exclusion %q",
			ev.diagnosis(), ca.diagnosisExclusion)
	}
	for _, t := range ca.unpricedExclusions {
		add(SeverityError, CodeExcludedTreatment, 0, "excluded treatment: %q is not covered by the policy", t)
	}
	if ca.allItemsExcluded {
		add(SeverityError, CodeExcludedTreatment, fromPaise(ca.nonCovered), "excluded treatment: every billed item is excluded")
	} else {
		for _, it := range ca.excludedItems {
			add(SeverityWarning, CodeNonCoveredItem, fromPaise(it.Amount), "%q (%s) is not covered (%s)",
				it.Description, it.Amount, it.Phrase)
		}
	}
	for _, phrase := range ca.preAuthMissing {
		add(SeverityError, CodePreAuthMissing, 0, "pre-authorization missing for %s", phrase)
	}
	if ca.network {
		add(SeverityInfo, CodeNetworkHospital, 0, "treated at a network hospital")
	}

	return StageResult{Stage: StageCoverage, Status: statusOf(fs), Findings: nonNil(fs)}
}
