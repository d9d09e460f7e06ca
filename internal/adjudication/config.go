package adjudication

import (
	"errors"
	"fmt"

	dErrors "adjudicator/pkg/domain-errors"
	pstrings "adjudicator/pkg/platform/strings"
)

// Config is the complete policy surface of the engine. It is passed
// explicitly into every run; nothing is read from package state.
type Config struct {
	Identity       IdentityConfig      `yaml:"identity" json:"identity"`
	WaitingPeriods WaitingPeriodConfig `yaml:"waiting_periods" json:"waiting_periods"`
	Documents      DocumentConfig      `yaml:"documents" json:"documents"`
	Limits         LimitsConfig        `yaml:"limits" json:"limits"`
	Rates          RatesConfig         `yaml:"rates" json:"rates"`
	Fraud          FraudConfig         `yaml:"fraud" json:"fraud"`
	Confidence     ConfidenceConfig    `yaml:"confidence" json:"confidence"`

	Exclusions        []string        `yaml:"exclusions" json:"exclusions"`
	PreAuthRequired   []string        `yaml:"pre_auth_required" json:"pre_auth_required"`
	NetworkHospitals  []string        `yaml:"network_hospitals" json:"network_hospitals"`
	NecessityRules    []NecessityRule `yaml:"necessity_rules" json:"necessity_rules"`
	GeneralTreatments []string        `yaml:"general_treatments" json:"general_treatments"`
}

type IdentityConfig struct {
	PassScore   float64 `yaml:"pass_score" json:"pass_score"`
	ReviewScore float64 `yaml:"review_score" json:"review_score"`
}

type WaitingPeriodConfig struct {
	GeneralDays   int      `yaml:"general_days" json:"general_days"`
	ConditionDays int      `yaml:"condition_days" json:"condition_days"`
	Conditions    []string `yaml:"conditions" json:"conditions"`
}

type DocumentConfig struct {
	DateToleranceDays int `yaml:"date_tolerance_days" json:"date_tolerance_days"`
	// AmountMismatchTolerance is the allowed relative gap between the bill
	// total and the sum of its line items.
	AmountMismatchTolerance float64 `yaml:"amount_mismatch_tolerance" json:"amount_mismatch_tolerance"`
}

type LimitsConfig struct {
	MinClaimAmount     float64 `yaml:"min_claim_amount" json:"min_claim_amount"`
	PerClaimLimit      float64 `yaml:"per_claim_limit" json:"per_claim_limit"`
	DefaultAnnualLimit float64 `yaml:"default_annual_limit" json:"default_annual_limit"`
	CashlessCeiling    float64 `yaml:"cashless_ceiling" json:"cashless_ceiling"`
	// RejectPerClaimExcess turns the per-claim cap from a deduction into a
	// hard failure.
	RejectPerClaimExcess bool `yaml:"reject_per_claim_excess" json:"reject_per_claim_excess"`
}

type RatesConfig struct {
	Copay           float64 `yaml:"copay" json:"copay"`
	NetworkDiscount float64 `yaml:"network_discount" json:"network_discount"`
}

type FraudConfig struct {
	Weights                  map[Indicator]float64 `yaml:"weights" json:"weights"`
	ReviewThreshold          float64               `yaml:"review_threshold" json:"review_threshold"`
	DuplicateAmountTolerance float64               `yaml:"duplicate_amount_tolerance" json:"duplicate_amount_tolerance"`
	AmountNormMultiplier     float64               `yaml:"amount_norm_multiplier" json:"amount_norm_multiplier"`
	DefaultAmountNorm        float64               `yaml:"default_amount_norm" json:"default_amount_norm"`
	DocumentDateSpanDays     int                   `yaml:"document_date_span_days" json:"document_date_span_days"`
	VelocityMaxClaims        int                   `yaml:"velocity_max_claims" json:"velocity_max_claims"`
	VelocityWindowDays       int                   `yaml:"velocity_window_days" json:"velocity_window_days"`
	MinRegistrationYear      int                   `yaml:"min_registration_year" json:"min_registration_year"`
}

// ConfidenceConfig weights the confidence score:
//
//	identity·score/100 + fraud·(1−risk) + findings·max(0, 1 − penalty·adverse)
type ConfidenceConfig struct {
	IdentityWeight float64 `yaml:"identity_weight" json:"identity_weight"`
	FraudWeight    float64 `yaml:"fraud_weight" json:"fraud_weight"`
	FindingsWeight float64 `yaml:"findings_weight" json:"findings_weight"`
	FindingPenalty float64 `yaml:"finding_penalty" json:"finding_penalty"`
	// NecessityRejectBelow rejects a claim whose necessity stage failed when
	// confidence falls under it.
	NecessityRejectBelow float64 `yaml:"necessity_reject_below" json:"necessity_reject_below"`
}

// NecessityRule maps diagnoses to plausible treatments and amounts.
type NecessityRule struct {
	Name          string   `yaml:"name" json:"name"`
	Conditions    []string `yaml:"conditions" json:"conditions"`
	Treatments    []string `yaml:"treatments" json:"treatments"`
	TypicalAmount float64  `yaml:"typical_amount" json:"typical_amount"`
	MaxAmount     float64  `yaml:"max_amount" json:"max_amount"`
}

// DefaultConfig returns the standard OPD policy.
func DefaultConfig() Config {
	return Config{
		Identity: IdentityConfig{PassScore: 90, ReviewScore: 70},
		WaitingPeriods: WaitingPeriodConfig{
			GeneralDays:   30,
			ConditionDays: 180,
			Conditions:    []string{"diabetes", "hypertension", "blood pressure", "thyroid"},
		},
		Documents: DocumentConfig{DateToleranceDays: 1, AmountMismatchTolerance: 0.20},
		Limits: LimitsConfig{
			MinClaimAmount:     500,
			PerClaimLimit:      5000,
			DefaultAnnualLimit: 50000,
			CashlessCeiling:    5000,
		},
		Rates: RatesConfig{Copay: 0.10, NetworkDiscount: 0.20},
		Fraud: FraudConfig{
			Weights: map[Indicator]float64{
				IndicatorDuplicateClaim:         0.35,
				IndicatorAmountAboveNorm:        0.15,
				IndicatorIdentityMismatch:       0.25,
				IndicatorDocumentInconsistency:  0.20,
				IndicatorSuspiciousRegistration: 0.20,
				IndicatorSubmissionVelocity:     0.35,
			},
			ReviewThreshold:          0.5,
			DuplicateAmountTolerance: 0.10,
			AmountNormMultiplier:     3,
			DefaultAmountNorm:        1500,
			DocumentDateSpanDays:     7,
			VelocityMaxClaims:        3,
			VelocityWindowDays:       30,
			MinRegistrationYear:      1950,
		},
		Confidence: ConfidenceConfig{
			IdentityWeight:       0.40,
			FraudWeight:          0.35,
			FindingsWeight:       0.25,
			FindingPenalty:       0.25,
			NecessityRejectBelow: 0.6,
		},
		Exclusions: []string{
			"cosmetic", "teeth whitening", "aesthetic", "weight loss", "bariatric",
			"diet plan", "hair transplant", "ivf", "infertility", "substance abuse",
			"self inflicted",
		},
		PreAuthRequired: []string{"mri", "ct scan", "pet scan"},
		NetworkHospitals: []string{
			"apollo hospitals", "fortis healthcare", "max healthcare", "manipal hospitals",
			"narayana health",
		},
		NecessityRules: []NecessityRule{
			{
				Name:          "fever",
				Conditions:    []string{"fever", "viral"},
				Treatments:    []string{"paracetamol", "dolo", "crocin", "ibuprofen", "cbc", "blood test"},
				TypicalAmount: 1000,
				MaxAmount:     3000,
			},
			{
				Name:          "diabetes",
				Conditions:    []string{"diabetes"},
				Treatments:    []string{"metformin", "insulin", "glimepiride", "hba1c", "glucose"},
				TypicalAmount: 2000,
				MaxAmount:     5000,
			},
			{
				Name:          "hypertension",
				Conditions:    []string{"hypertension", "blood pressure"},
				Treatments:    []string{"amlodipine", "telmisartan", "losartan", "ecg", "lipid"},
				TypicalAmount: 1500,
				MaxAmount:     4000,
			},
			{
				Name:          "gastric",
				Conditions:    []string{"gastritis", "acidity", "gerd"},
				Treatments:    []string{"pantoprazole", "omeprazole", "antacid", "endoscopy", "ultrasound"},
				TypicalAmount: 1500,
				MaxAmount:     5000,
			},
			{
				Name:          "respiratory",
				Conditions:    []string{"respiratory infection", "bronchitis", "cough", "cold"},
				Treatments:    []string{"amoxicillin", "azithromycin", "cetirizine", "cough syrup", "chest x ray"},
				TypicalAmount: 1000,
				MaxAmount:     3000,
			},
			{
				Name:          "dental",
				Conditions:    []string{"dental", "tooth", "caries"},
				Treatments:    []string{"root canal", "filling", "extraction", "scaling", "x ray"},
				TypicalAmount: 2500,
				MaxAmount:     10000,
			},
		},
		GeneralTreatments: []string{
			"consultation", "registration fee", "vitamin", "multivitamin", "ors", "follow up",
		},
	}
}

// Validate reports every inconsistency in c at once.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Identity.ReviewScore >= 0 && c.Identity.ReviewScore <= c.Identity.PassScore && c.Identity.PassScore <= 100,
		"identity thresholds must satisfy 0 <= review <= pass <= 100")
	check(c.WaitingPeriods.GeneralDays >= 0 && c.WaitingPeriods.ConditionDays >= 0, "waiting periods must be non-negative")
	check(c.Documents.DateToleranceDays >= 0, "document date tolerance must be non-negative")
	check(c.Documents.AmountMismatchTolerance >= 0, "amount mismatch tolerance must be non-negative")
	check(c.Limits.MinClaimAmount >= 0, "minimum claim amount must be non-negative")
	check(c.Limits.PerClaimLimit > 0, "per-claim limit must be positive")
	check(c.Limits.DefaultAnnualLimit > 0, "default annual limit must be positive")
	check(c.Limits.CashlessCeiling >= 0, "cashless ceiling must be non-negative")
	check(inUnitRange(c.Rates.Copay), "copay rate must be within [0,1]")
	check(inUnitRange(c.Rates.NetworkDiscount), "network discount rate must be within [0,1]")
	check(inUnitRange(c.Fraud.ReviewThreshold), "fraud review threshold must be within [0,1]")
	for _, ind := range Indicators {
		w, ok := c.Fraud.Weights[ind]
		check(ok && inUnitRange(w), "fraud weight for %s must be set within [0,1]", ind)
	}
	check(c.Fraud.DuplicateAmountTolerance >= 0, "duplicate amount tolerance must be non-negative")
	check(c.Fraud.AmountNormMultiplier > 0 && c.Fraud.DefaultAmountNorm > 0, "amount norm must be positive")
	check(c.Fraud.VelocityMaxClaims > 0 && c.Fraud.VelocityWindowDays > 0, "velocity window must be positive")

	cc := c.Confidence
	check(cc.IdentityWeight >= 0 && cc.FraudWeight >= 0 && cc.FindingsWeight >= 0, "confidence weights must be non-negative")
	check(almostEqual(cc.IdentityWeight+cc.FraudWeight+cc.FindingsWeight, 1), "confidence weights must sum to 1")
	check(cc.FindingPenalty >= 0, "finding penalty must be non-negative")
	check(inUnitRange(cc.NecessityRejectBelow), "necessity reject threshold must be within [0,1]")

	for i, r := range c.NecessityRules {
		check(len(r.Conditions) > 0, "necessity rule %d (%s) has no conditions", i, r.Name)
		check(r.MaxAmount >= 0 && r.TypicalAmount >= 0, "necessity rule %d (%s) has negative amounts", i, r.Name)
	}

	if len(errs) == 0 {
		return nil
	}
	return dErrors.Wrap(errors.Join(errs...), dErrors.CodeValidation, "invalid adjudication policy")
}

// normalized folds every phrase list once so lookups do not repeat the work.
func (c Config) normalized() Config {
	out := c
	out.WaitingPeriods.Conditions = pstrings.DedupeFolded(c.WaitingPeriods.Conditions)
	out.Exclusions = pstrings.DedupeFolded(c.Exclusions)
	out.PreAuthRequired = pstrings.DedupeFolded(c.PreAuthRequired)
	out.NetworkHospitals = pstrings.DedupeFolded(c.NetworkHospitals)
	out.GeneralTreatments = pstrings.DedupeFolded(c.GeneralTreatments)

	out.NecessityRules = make([]NecessityRule, len(c.NecessityRules))
	for i, r := range c.NecessityRules {
		r.Conditions = pstrings.DedupeFolded(r.Conditions)
		r.Treatments = pstrings.DedupeFolded(r.Treatments)
		out.NecessityRules[i] = r
	}

	weights := make(map[Indicator]float64, len(c.Fraud.Weights))
	for k, v := range c.Fraud.Weights {
		weights[k] = v
	}
	out.Fraud.Weights = weights
	return out
}

// Benefits summarises the policy for a sales preview.
func (c Config) Benefits() PolicyBenefits {
	return PolicyBenefits{
		AnnualLimit:            c.Limits.DefaultAnnualLimit,
		PerClaimLimit:          c.Limits.PerClaimLimit,
		MinClaimAmount:         c.Limits.MinClaimAmount,
		CopayPercent:           roundTo(c.Rates.Copay*100, 1),
		NetworkDiscountPercent: roundTo(c.Rates.NetworkDiscount*100, 1),
		CashlessCeiling:        c.Limits.CashlessCeiling,
		GeneralWaitingDays:     c.WaitingPeriods.GeneralDays,
		ConditionWaitingDays:   c.WaitingPeriods.ConditionDays,
	}
}

func inUnitRange(v float64) bool { return v >= 0 && v <= 1 }

func almostEqual(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
