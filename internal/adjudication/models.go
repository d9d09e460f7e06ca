package adjudication

import "time"

// DecisionType is the final outcome of an adjudication.
type DecisionType string

const (
	DecisionApproved     DecisionType = "APPROVED"
	DecisionPartial      DecisionType = "PARTIAL"
	DecisionRejected     DecisionType = "REJECTED"
	DecisionManualReview DecisionType = "MANUAL_REVIEW"
	DecisionNotAMember   DecisionType = "NOT_A_MEMBER"
)

// Stage identifies one evaluator in the pipeline.
type Stage string

const (
	StageIdentity    Stage = "identity"
	StageEligibility Stage = "eligibility"
	StageDocuments   Stage = "documents"
	StageCoverage    Stage = "coverage"
	StageLimits      Stage = "limits"
	StageNecessity   Stage = "necessity"
	StageFraud       Stage = "fraud"
)

// Status is the tagged outcome of a single stage.
type Status string

const (
	StatusPass    Status = "PASS"
	StatusPartial Status = "PARTIAL"
	StatusFail    Status = "FAIL"
)

// Severity grades a finding.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Finding codes. These are part of the output contract.
const (
	CodeNameNotProvided  = "NAME_NOT_PROVIDED"
	CodeNamePartialMatch = "NAME_PARTIAL_MATCH"
	CodeNameMismatch     = "NAME_MISMATCH"

	CodePolicyInactive       = "POLICY_INACTIVE"
	CodeTreatmentDateMissing = "TREATMENT_DATE_MISSING"
	CodeOutsidePolicyPeriod  = "OUTSIDE_POLICY_PERIOD"
	CodeWaitingPeriod        = "WAITING_PERIOD"

	CodeMissingDocument           = "MISSING_DOCUMENT"
	CodeInvalidDoctorRegistration = "INVALID_DOCTOR_REGISTRATION"
	CodeDoctorNameMissing         = "DOCTOR_NAME_MISSING"
	CodeDocumentDateMissing       = "DOCUMENT_DATE_MISSING"
	CodeDateInconsistent          = "DATE_INCONSISTENT"
	CodePatientNameInconsistent   = "PATIENT_NAME_INCONSISTENT"
	CodeAmountMismatch            = "AMOUNT_MISMATCH"

	CodeExcludedTreatment = "EXCLUDED_TREATMENT"
	CodeNonCoveredItem    = "NON_COVERED_ITEM"
	CodePreAuthMissing    = "PRE_AUTH_MISSING"
	CodeNetworkHospital   = "NETWORK_HOSPITAL"

	CodeBelowMinimumAmount     = "BELOW_MINIMUM_AMOUNT"
	CodePerClaimLimitExceeded  = "PER_CLAIM_LIMIT_EXCEEDED"
	CodeAnnualLimitExceeded    = "ANNUAL_LIMIT_EXCEEDED"
	CodeAnnualLimitExhausted   = "ANNUAL_LIMIT_EXHAUSTED"
	CodeNetworkDiscountApplied = "NETWORK_DISCOUNT_APPLIED"
	CodeCashlessEligible       = "CASHLESS_ELIGIBLE"

	CodeNecessityNotEstablished = "NECESSITY_NOT_ESTABLISHED"
	CodeAmountImplausible       = "AMOUNT_IMPLAUSIBLE"
	CodeUnknownDiagnosis        = "UNKNOWN_DIAGNOSIS"

	CodeFraudRiskElevated = "FRAUD_RISK_ELEVATED"
)

// Indicator is one of the six fixed fraud indicators.
type Indicator string

const (
	IndicatorDuplicateClaim         Indicator = "DUPLICATE_CLAIM"
	IndicatorAmountAboveNorm        Indicator = "AMOUNT_ABOVE_NORM"
	IndicatorIdentityMismatch       Indicator = "IDENTITY_MISMATCH"
	IndicatorDocumentInconsistency  Indicator = "DOCUMENT_INCONSISTENCY"
	IndicatorSuspiciousRegistration Indicator = "SUSPICIOUS_REGISTRATION"
	IndicatorSubmissionVelocity     Indicator = "SUBMISSION_VELOCITY"
)

// Indicators lists every fraud indicator in evaluation order.
var Indicators = []Indicator{
	IndicatorDuplicateClaim,
	IndicatorAmountAboveNorm,
	IndicatorIdentityMismatch,
	IndicatorDocumentInconsistency,
	IndicatorSuspiciousRegistration,
	IndicatorSubmissionVelocity,
}

// PolicyStatus is the member's policy state.
type PolicyStatus string

const (
	PolicyActive  PolicyStatus = "active"
	PolicyLapsed  PolicyStatus = "lapsed"
	PolicyExpired PolicyStatus = "expired"
)

// Member is a read-only snapshot of the policy holder. AnnualLimit zero
// means the configured default applies.
type Member struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	PolicyNumber string       `json:"policy_number"`
	PolicyStart  time.Time    `json:"policy_start"`
	PolicyEnd    time.Time    `json:"policy_end,omitempty"`
	Status       PolicyStatus `json:"status"`
	AnnualLimit  float64      `json:"annual_limit"`
	YTDClaims    float64      `json:"ytd_claims"`
	PriorClaims  []PriorClaim `json:"prior_claims,omitempty"`
}

// PriorClaim is one entry of the member's claim history.
type PriorClaim struct {
	ClaimID       string    `json:"claim_id"`
	TreatmentDate time.Time `json:"treatment_date"`
	Amount        float64   `json:"amount"`
}

// ClaimIntake bundles the extracted document fields for one claim.
// A nil Prescription or Bill means the document was not supplied.
type ClaimIntake struct {
	MemberID         string        `json:"member_id"`
	ClaimedName      string        `json:"claimed_name"`
	TreatmentDate    time.Time     `json:"treatment_date"`
	Prescription     *Prescription `json:"prescription,omitempty"`
	Bill             *Bill         `json:"bill,omitempty"`
	PreAuthReference string        `json:"pre_auth_reference,omitempty"`
	Contact          *Contact      `json:"contact,omitempty"`
}

type Prescription struct {
	PatientName        string    `json:"patient_name"`
	DoctorName         string    `json:"doctor_name"`
	RegistrationNumber string    `json:"registration_number"`
	Diagnosis          string    `json:"diagnosis"`
	Medicines          []string  `json:"medicines"`
	Procedures         []string  `json:"procedures"`
	Date               time.Time `json:"date"`
}

type Bill struct {
	PatientName       string     `json:"patient_name"`
	HospitalName      string     `json:"hospital_name"`
	Date              time.Time  `json:"date"`
	LineItems         []LineItem `json:"line_items"`
	TotalAmount       float64    `json:"total_amount"`
	IsNetworkHospital bool       `json:"is_network_hospital"`
}

type LineItem struct {
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
}

// Contact is the raw contact info of a claimant with no matching member.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Finding struct {
	Code     string   `json:"code"`
	Category Stage    `json:"category"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Value    float64  `json:"value,omitempty"`
}

// StageResult is produced once per stage per claim.
type StageResult struct {
	Stage    Stage     `json:"stage"`
	Status   Status    `json:"status"`
	Findings []Finding `json:"findings"`
	Score    float64   `json:"score"`
}

type FraudFlag struct {
	Indicator    Indicator `json:"indicator"`
	Description  string    `json:"description"`
	Contribution float64   `json:"contribution"`
}

type FraudAssessment struct {
	Score float64     `json:"score"`
	Flags []FraudFlag `json:"flags"`
}

// Deductions are tracked separately and never overlap.
type Deductions struct {
	Copay           float64 `json:"copay"`
	NonCovered      float64 `json:"non_covered"`
	ExceededLimits  float64 `json:"exceeded_limits"`
	NetworkDiscount float64 `json:"network_discount"`
}

// Total sums every deduction.
func (d Deductions) Total() float64 {
	return fromPaise(toPaise(d.Copay) + toPaise(d.NonCovered) + toPaise(d.ExceededLimits) + toPaise(d.NetworkDiscount))
}

// Reason is one entry of an ordered rejection or review list.
type Reason struct {
	Stage   Stage  `json:"stage"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Decision struct {
	Type             DecisionType  `json:"decision"`
	DecidedBy        string        `json:"decided_by"`
	ClaimedAmount    float64       `json:"claimed_amount"`
	ApprovedAmount   float64       `json:"approved_amount"`
	Deductions       Deductions    `json:"deductions"`
	ConfidenceScore  float64       `json:"confidence_score"`
	RejectionReasons []Reason      `json:"rejection_reasons"`
	Notes            string        `json:"notes"`
	NextSteps        string        `json:"next_steps"`
	NetworkHospital  bool          `json:"network_hospital"`
	CashlessApproved bool          `json:"cashless_approved"`
	FraudRisk        float64       `json:"fraud_risk"`
	FraudFlags       []FraudFlag   `json:"fraud_flags"`
	Findings         []Finding     `json:"findings"`
	Stages           []StageResult `json:"stages"`
}

// PolicyBenefits summarises the hypothetical policy shown to a prospect.
type PolicyBenefits struct {
	AnnualLimit            float64 `json:"annual_limit"`
	PerClaimLimit          float64 `json:"per_claim_limit"`
	MinClaimAmount         float64 `json:"min_claim_amount"`
	CopayPercent           float64 `json:"copay_percent"`
	NetworkDiscountPercent float64 `json:"network_discount_percent"`
	CashlessCeiling        float64 `json:"cashless_ceiling"`
	GeneralWaitingDays     int     `json:"general_waiting_days"`
	ConditionWaitingDays   int     `json:"condition_waiting_days"`
}

// Lead is captured from a prospect's contact details.
type Lead struct {
	Name          string    `json:"name"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	ClaimedAmount float64   `json:"claimed_amount"`
	CoveredAmount float64   `json:"covered_amount"`
	TreatmentDate time.Time `json:"treatment_date"`
}

type SalesPreview struct {
	ClaimedAmount   float64        `json:"claimed_amount"`
	CoveredAmount   float64        `json:"covered_amount"`
	CoveragePercent float64        `json:"coverage_percent"`
	Savings         float64        `json:"savings"`
	OutOfPocket     float64        `json:"out_of_pocket"`
	Deductions      Deductions     `json:"deductions"`
	Benefits        PolicyBenefits `json:"benefits"`
	Issues          []Reason       `json:"issues"`
	Lead            *Lead          `json:"lead,omitempty"`
	ConfidenceScore float64        `json:"confidence_score"`
}

// Result is exactly one of Decision or Preview; Type says which.
type Result struct {
	Type     DecisionType  `json:"type"`
	Decision *Decision     `json:"decision,omitempty"`
	Preview  *SalesPreview `json:"preview,omitempty"`
}
