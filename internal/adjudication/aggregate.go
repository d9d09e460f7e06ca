package adjudication

// hardStages are the stages whose FAIL rejects a claim outright.
var hardStages = map[Stage]bool{
	StageIdentity:    true,
	StageEligibility: true,
	StageDocuments:   true,
	StageCoverage:    true,
	StageLimits:      true,
}

type outcome struct {
	ev         *evaluation
	stages     []StageResult
	fraud      FraudAssessment
	fraudStage StageResult
	confidence float64
}

func newOutcome(ev *evaluation, stages []StageResult, fa FraudAssessment, fraudStage StageResult) *outcome {
	o := &outcome{ev: ev, stages: stages, fraud: fa, fraudStage: fraudStage}
	o.confidence = confidence(ev.cfg.Confidence, o.stage(StageIdentity).Score, fa.Score, adverseFindings(stages))
	return o
}

func (o *outcome) stage(s Stage) StageResult {
	for _, r := range o.stages {
		if r.Stage == s {
			return r
		}
	}
	return StageResult{Stage: s, Status: StatusPass}
}

// confidence is monotone in identityScore and in (1 - fraud), and falls with
// each adverse finding.
func confidence(cc ConfidenceConfig, identityScore, fraud float64, adverse int) float64 {
	findings := 1 - cc.FindingPenalty*float64(adverse)
	if findings < 0 {
		findings = 0
	}
	c := cc.IdentityWeight*clamp01(identityScore/100) + cc.FraudWeight*(1-clamp01(fraud)) + cc.FindingsWeight*findings
	return roundTo(clamp01(c), 4)
}

// adverseFindings counts warning and error findings from stages 1-6.
func adverseFindings(stages []StageResult) int {
	n := 0
	for _, s := range stages {
		for _, f := range s.Findings {
			if f.Severity != SeverityInfo {
				n++
			}
		}
	}
	return n
}

// decisionRule is one row of the aggregation table.
type decisionRule struct {
	name     string
	decision DecisionType
	when     func(o *outcome) bool
	reasons  func(o *outcome) []Reason
}

// decisionTable is evaluated top to bottom; the first matching rule decides.
// NOT_A_MEMBER is settled before the table is consulted.
var decisionTable = []decisionRule{
	{
		name:     "hard_failure",
		decision: DecisionRejected,
		when: func(o *outcome) bool {
			for _, s := range o.stages {
				if hardStages[s.Stage] && s.Status == StatusFail {
					return true
				}
			}
			return false
		},
		reasons: func(o *outcome) []Reason {
			return collectReasons(o.stages, func(s StageResult, f Finding) bool {
				return hardStages[s.Stage] && f.Severity == SeverityError
			})
		},
	},
	{
		name:     "manual_review",
		decision: DecisionManualReview,
		when: func(o *outcome) bool {
			return o.fraud.Score >= o.ev.cfg.Fraud.ReviewThreshold || o.stage(StageIdentity).Status == StatusPartial
		},
		reasons: func(o *outcome) []Reason {
			reasons := collectReasons(o.stages, func(s StageResult, f Finding) bool {
				return s.Stage == StageIdentity && f.Severity == SeverityWarning
			})
			for _, fl := range o.fraud.Flags {
				reasons = append(reasons, Reason{Stage: StageFraud, Code: string(fl.Indicator), Message: fl.Description})
			}
			return reasons
		},
	},
	{
		name:     "necessity_low_confidence",
		decision: DecisionRejected,
		when: func(o *outcome) bool {
			return o.stage(StageNecessity).Status == StatusFail && o.confidence < o.ev.cfg.Confidence.NecessityRejectBelow
		},
		reasons: func(o *outcome) []Reason {
			return collectReasons(o.stages, func(s StageResult, f Finding) bool {
				return s.Stage == StageNecessity && f.Severity != SeverityInfo
			})
		},
	},
	{
		name:     "deductions_applied",
		decision: DecisionPartial,
		when: func(o *outcome) bool {
			s := o.ev.settlement
			return s.exceeded > 0 || s.nonCovered > 0 || o.stage(StageNecessity).Status == StatusFail
		},
		reasons: func(o *outcome) []Reason {
			return collectReasons(o.stages, func(_ StageResult, f Finding) bool {
				return f.Severity == SeverityWarning
			})
		},
	},
	{
		name:     "approved",
		decision: DecisionApproved,
		when:     func(*outcome) bool { return true },
		reasons:  func(*outcome) []Reason { return []Reason{} },
	},
}

func selectRule(o *outcome) decisionRule {
	for _, r := range decisionTable {
		if r.when(o) {
			return r
		}
	}
	return decisionTable[len(decisionTable)-1]
}

func collectReasons(stages []StageResult, keep func(StageResult, Finding) bool) []Reason {
	reasons := []Reason{}
	for _, s := range stages {
		for _, f := range s.Findings {
			if keep(s, f) {
				reasons = append(reasons, Reason{Stage: s.Stage, Code: f.Code, Message: f.Message})
			}
		}
	}
	return reasons
}

func aggregate(o *outcome) *Decision {
	rule := selectRule(o)
	s := o.ev.settlement

	allStages := make([]StageResult, 0, len(o.stages)+1)
	allStages = append(allStages, o.stages...)
	allStages = append(allStages, o.fraudStage)

	findings := []Finding{}
	for _, st := range allStages {
		findings = append(findings, st.Findings...)
	}

	d := &Decision{
		Type:             rule.decision,
		DecidedBy:        rule.name,
		ClaimedAmount:    fromPaise(s.claimed),
		ConfidenceScore:  o.confidence,
		RejectionReasons: rule.reasons(o),
		NetworkHospital:  s.network,
		FraudRisk:        o.fraud.Score,
		FraudFlags:       append([]FraudFlag{}, o.fraud.Flags...),
		Findings:         findings,
		Stages:           allStages,
	}

	switch d.Type {
	case DecisionRejected:
		d.Deductions = s.limitDeductions()
	case DecisionManualReview:
		d.Deductions = s.deductions()
	default:
		d.ApprovedAmount = fromPaise(s.approved)
		d.Deductions = s.deductions()
	}
	d.CashlessApproved = d.Type == DecisionApproved && s.cashlessEligible

	d.Notes, d.NextSteps = renderNarrative(d, fromPaise(s.approved))
	return d
}
