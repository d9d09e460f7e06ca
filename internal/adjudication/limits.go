package adjudication

// settlement is the money side of a claim, computed in paise.
// For any claim that is not below the minimum:
//
//	approved + copay + nonCovered + exceeded + discount == claimed
type settlement struct {
	claimed    paise
	nonCovered paise
	// exceeded is perClaimExcess + annualExcess.
	exceeded       paise
	perClaimExcess paise
	annualExcess   paise
	discount       paise
	payable        paise
	copay          paise
	approved       paise

	annualLimit paise
	headroom    paise

	belowMinimum     bool
	annualExhausted  bool
	network          bool
	cashlessEligible bool
}

func settle(cfg Config, m *Member, claimed paise, ca coverageAssessment) settlement {
	lc := cfg.Limits
	s := settlement{claimed: claimed, nonCovered: ca.nonCovered, network: ca.network}

	annual := m.AnnualLimit
	if annual <= 0 {
		annual = lc.DefaultAnnualLimit
	}
	s.annualLimit = toPaise(annual)
	if ytd := toPaise(m.YTDClaims); ytd < s.annualLimit {
		s.headroom = s.annualLimit - ytd
	}

	if claimed < toPaise(lc.MinClaimAmount) {
		s.belowMinimum = true
		return s
	}

	// The per-claim cap applies to the claim as billed; non-covered items
	// come out of what remains under it.
	base := claimed
	if limit := toPaise(lc.PerClaimLimit); base > limit {
		s.perClaimExcess = base - limit
		base = limit
	}
	s.nonCovered = minPaise(s.nonCovered, base)
	base -= s.nonCovered
	if base > s.headroom {
		s.annualExcess = base - s.headroom
		base = s.headroom
	}
	s.annualExhausted = s.headroom == 0
	s.exceeded = s.perClaimExcess + s.annualExcess

	if s.network {
		s.discount = base.mulRate(cfg.Rates.NetworkDiscount)
	}
	s.payable = base - s.discount
	s.cashlessEligible = s.network && s.payable > 0 && s.payable <= toPaise(lc.CashlessCeiling)

	s.copay = s.payable.mulRate(cfg.Rates.Copay)
	s.approved = s.payable - s.copay
	return s
}

// limitDeductions is the breakdown kept on a rejected claim: nothing is
// payable, so no copay or discount is taken.
func (s settlement) limitDeductions() Deductions {
	return Deductions{
		NonCovered:     fromPaise(s.nonCovered),
		ExceededLimits: fromPaise(s.exceeded),
	}
}

func (s settlement) deductions() Deductions {
	return Deductions{
		Copay:           fromPaise(s.copay),
		NonCovered:      fromPaise(s.nonCovered),
		ExceededLimits:  fromPaise(s.exceeded),
		NetworkDiscount: fromPaise(s.discount),
	}
}

func checkLimits(ev *evaluation) StageResult {
	s := ev.settlement
	lc := ev.cfg.Limits
	var fs []Finding
	add := func(sev Severity, code string, value float64, format string, args ...any) {
		fs = append(fs, newFinding(StageLimits, sev, code, value, format, args...))
	}

	if s.belowMinimum {
		add(SeverityError, CodeBelowMinimumAmount, fromPaise(s.claimed),
			"below minimum claimable amount: %s claimed, minimum is %s", s.claimed, toPaise(lc.MinClaimAmount))
		return StageResult{Stage: StageLimits, Status: StatusFail, Findings: fs}
	}

	if s.perClaimExcess > 0 {
		sev := SeverityWarning
		if lc.RejectPerClaimExcess {
			sev = SeverityError
		}
		add(sev, CodePerClaimLimitExceeded, fromPaise(s.perClaimExcess),
			"per-claim limit exceeded: %s above the %s cap", s.perClaimExcess, toPaise(lc.PerClaimLimit))
	}
	if s.annualExhausted {
		add(SeverityError, CodeAnnualLimitExhausted, fromPaise(s.annualExcess),
			"annual limit exhausted: %s of %s already claimed", s.annualLimit-s.headroom, s.annualLimit)
	} else if s.annualExcess > 0 {
		add(SeverityWarning, CodeAnnualLimitExceeded, fromPaise(s.annualExcess),
			"annual limit exceeded: only %s of annual headroom remains", s.headroom)
	}
	if s.discount > 0 {
		add(SeverityInfo, CodeNetworkDiscountApplied, fromPaise(s.discount),
			"network discount of %s applied", s.discount)
	}
	if s.cashlessEligible {
		add(SeverityInfo, CodeCashlessEligible, fromPaise(s.payable),
			"payable %s is within the cashless ceiling of %s", s.payable, toPaise(lc.CashlessCeiling))
	}

	return StageResult{Stage: StageLimits, Status: statusOf(fs), Findings: nonNil(fs), Score: fromPaise(s.approved)}
}
