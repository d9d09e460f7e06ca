package adjudication

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"

	dErrors "adjudicator/pkg/domain-errors"
)

// =============================================================================
// Engine Scenario Suite
// =============================================================================
// End-to-end runs through the whole pipeline for the reference scenarios and
// the aggregation precedence rules.

type EngineSuite struct {
	suite.Suite
	engine *Engine
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	e, err := NewEngine(DefaultConfig())
	s.Require().NoError(err)
	s.engine = e
}

func (s *EngineSuite) decide(m *Member, in ClaimIntake) *Decision {
	res := s.engine.Adjudicate(m, in)
	s.Require().NotNil(res.Decision)
	s.Require().Nil(res.Preview)
	s.Equal(res.Type, res.Decision.Type)
	return res.Decision
}

// =============================================================================
// Reference Scenarios
// =============================================================================

func (s *EngineSuite) TestCleanClaimIsApproved() {
	d := s.decide(activeMember(), cleanIntake(800))

	s.Equal(DecisionApproved, d.Type)
	s.Equal("approved", d.DecidedBy)
	s.InDelta(800.0, d.ClaimedAmount, 0.001)
	s.InDelta(720.0, d.ApprovedAmount, 0.001)
	s.InDelta(80.0, d.Deductions.Copay, 0.001)
	s.Greater(d.ConfidenceScore, 0.7)
	s.Empty(d.RejectionReasons)
	s.False(d.CashlessApproved)
	s.Contains(d.Notes, "₹720.00")
	s.Len(d.Stages, 7)
}

func (s *EngineSuite) TestAnnualHeadroomCapsPayable() {
	m := activeMember()
	m.YTDClaims = 49800

	d := s.decide(m, cleanIntake(1000))

	s.Equal(DecisionPartial, d.Type)
	s.InDelta(800.0, d.Deductions.ExceededLimits, 0.001)
	s.InDelta(20.0, d.Deductions.Copay, 0.001)
	s.InDelta(180.0, d.ApprovedAmount, 0.001)
	s.Contains(codes(d.RejectionReasons), CodeAnnualLimitExceeded)
}

func (s *EngineSuite) TestDiabetesInsideConditionWaitingPeriod() {
	m := activeMember()
	m.PolicyStart = daysBefore(10)
	in := cleanIntake(1200)
	in.Prescription.Diagnosis = "Type 2 Diabetes"
	in.Prescription.Medicines = []string{"Metformin 500mg"}

	d := s.decide(m, in)

	s.Equal(DecisionRejected, d.Type)
	s.Require().Len(d.RejectionReasons, 1)
	s.Equal(CodeWaitingPeriod, d.RejectionReasons[0].Code)
	s.Contains(d.RejectionReasons[0].Message, "170 days remaining")
	s.Zero(d.ApprovedAmount)
	s.Zero(d.Deductions.Copay)
	s.Zero(d.Deductions.NetworkDiscount)
	s.Zero(d.Deductions.ExceededLimits, "within both limits")
	s.Contains(d.NextSteps, "170 days")

	var waiting Finding
	for _, f := range stageOf(d, StageEligibility).Findings {
		if f.Code == CodeWaitingPeriod {
			waiting = f
		}
	}
	s.InDelta(170.0, waiting.Value, 0.001)
}

func (s *EngineSuite) TestPartialNameWithDuplicateGoesToReview() {
	m := activeMember()
	m.PriorClaims = []PriorClaim{{ClaimID: "CLM-0991", TreatmentDate: treatDay, Amount: 800}}
	in := cleanIntake(800)
	in.ClaimedName = "Rajiv Kumar"
	in.Prescription.PatientName = "Rajiv Kumar"
	in.Bill.PatientName = "Rajiv Kumar"

	d := s.decide(m, in)

	s.Equal(DecisionManualReview, d.Type)
	s.InDelta(78.26, stageOf(d, StageIdentity).Score, 0.001)
	s.InDelta(0.6, d.FraudRisk, 0.0001)
	s.Zero(d.ApprovedAmount)
	s.Contains(findingCodes(d.Findings), CodeNamePartialMatch)
	s.Contains(findingCodes(d.Findings), CodeFraudRiskElevated)
	s.Equal([]string{CodeNamePartialMatch, string(IndicatorDuplicateClaim), string(IndicatorIdentityMismatch)},
		codes(d.RejectionReasons))
	s.Contains(d.Notes, "Provisional payable amount ₹720.00")
}

func (s *EngineSuite) TestNetworkHospitalCashless() {
	in := cleanIntake(4000)
	in.Prescription.Diagnosis = "Acute gastritis"
	in.Prescription.Medicines = []string{"Pantoprazole 40mg"}
	in.Bill.IsNetworkHospital = true

	d := s.decide(activeMember(), in)

	s.Equal(DecisionApproved, d.Type)
	s.True(d.NetworkHospital)
	s.True(d.CashlessApproved)
	s.InDelta(800.0, d.Deductions.NetworkDiscount, 0.001)
	s.InDelta(320.0, d.Deductions.Copay, 0.001)
	s.InDelta(2880.0, d.ApprovedAmount, 0.001)
}

func (s *EngineSuite) TestNoMemberProducesPreview() {
	in := cleanIntake(800)
	in.MemberID = ""
	in.Contact = &Contact{Name: "Rajesh Kumar", Email: "rajesh@example.com"}

	res := s.engine.Adjudicate(nil, in)

	s.Equal(DecisionNotAMember, res.Type)
	s.Nil(res.Decision)
	s.Require().NotNil(res.Preview)
	p := res.Preview
	s.InDelta(800.0, p.ClaimedAmount, 0.001)
	s.InDelta(720.0, p.CoveredAmount, 0.001)
	s.InDelta(90.0, p.CoveragePercent, 0.001)
	s.InDelta(720.0, p.Savings, 0.001)
	s.InDelta(80.0, p.OutOfPocket, 0.001)
	s.Empty(p.Issues)
	s.Equal(50000.0, p.Benefits.AnnualLimit)
	s.Require().NotNil(p.Lead)
	s.Equal("rajesh@example.com", p.Lead.Email)
}

// =============================================================================
// Aggregation Precedence
// =============================================================================

func (s *EngineSuite) TestAllHardFailuresAreCollectedInStageOrder() {
	m := activeMember()
	m.Status = PolicyLapsed
	in := cleanIntake(800)
	in.Bill = nil
	in.Prescription.RegistrationNumber = "45678"

	d := s.decide(m, in)

	s.Equal(DecisionRejected, d.Type)
	s.Equal([]string{
		CodePolicyInactive,
		CodeMissingDocument,
		CodeInvalidDoctorRegistration,
		CodeBelowMinimumAmount,
	}, codes(d.RejectionReasons))
	s.Contains(d.Notes, "policy inactive")
}

func (s *EngineSuite) TestIdentityMismatchRejects() {
	in := cleanIntake(800)
	in.ClaimedName = "Priya Sharma"

	d := s.decide(activeMember(), in)

	s.Equal(DecisionRejected, d.Type)
	s.Equal([]string{CodeNameMismatch}, codes(d.RejectionReasons))
}

func (s *EngineSuite) TestHardFailureOutranksManualReview() {
	m := activeMember()
	m.Status = PolicyExpired
	in := cleanIntake(800)
	in.ClaimedName = "Rajiv Kumar"

	d := s.decide(m, in)

	s.Equal(DecisionRejected, d.Type)
	s.Equal("hard_failure", d.DecidedBy)
}

func (s *EngineSuite) TestPerClaimExcessIsADeductionByDefault() {
	in := cleanIntake(7000)
	in.Prescription.Diagnosis = "Dental caries"
	in.Prescription.Medicines = nil
	in.Prescription.Procedures = []string{"Root canal treatment"}

	d := s.decide(activeMember(), in)

	s.Equal(DecisionPartial, d.Type)
	s.InDelta(2000.0, d.Deductions.ExceededLimits, 0.001)
	s.InDelta(500.0, d.Deductions.Copay, 0.001)
	s.InDelta(4500.0, d.ApprovedAmount, 0.001)
	s.Contains(codes(d.RejectionReasons), CodePerClaimLimitExceeded)
}

func (s *EngineSuite) TestPerClaimExcessCanBeConfiguredToReject() {
	cfg := DefaultConfig()
	cfg.Limits.RejectPerClaimExcess = true
	in := cleanIntake(7000)

	res := Adjudicate(cfg, activeMember(), in)

	s.Equal(DecisionRejected, res.Type)
	s.Contains(codes(res.Decision.RejectionReasons), CodePerClaimLimitExceeded)
	s.Zero(res.Decision.ApprovedAmount)
	s.Zero(res.Decision.Deductions.Copay)
	s.InDelta(2000.0, res.Decision.Deductions.ExceededLimits, 0.001)
}

func (s *EngineSuite) TestRejectedClaimKeepsPerClaimExcess() {
	in := cleanIntake(6000)
	in.Prescription.DoctorName = ""

	d := s.decide(activeMember(), in)

	s.Equal(DecisionRejected, d.Type)
	s.Zero(d.ApprovedAmount)
	s.Zero(d.Deductions.Copay)
	s.InDelta(1000.0, d.Deductions.ExceededLimits, 0.001)
}

func (s *EngineSuite) TestPerClaimCapAppliesBeforeNonCoveredItems() {
	d := s.decide(activeMember(), dentalIntake(550_000, 100_000, false))

	s.Equal(DecisionPartial, d.Type)
	s.InDelta(6500.0, d.ClaimedAmount, 0.001)
	s.InDelta(1500.0, d.Deductions.ExceededLimits, 0.001)
	s.InDelta(1000.0, d.Deductions.NonCovered, 0.001)
	s.InDelta(400.0, d.Deductions.Copay, 0.001)
	s.InDelta(3600.0, d.ApprovedAmount, 0.001)
}

func (s *EngineSuite) TestExhaustedAnnualLimitRejects() {
	m := activeMember()
	m.YTDClaims = 50000

	d := s.decide(m, cleanIntake(800))

	s.Equal(DecisionRejected, d.Type)
	s.Equal([]string{CodeAnnualLimitExhausted}, codes(d.RejectionReasons))
	s.Zero(d.ApprovedAmount)
	s.InDelta(800.0, d.Deductions.ExceededLimits, 0.001)
}

func (s *EngineSuite) TestNonCoveredLineItemIsDeducted() {
	in := cleanIntake(1000)
	in.Prescription.Diagnosis = "Dental caries"
	in.Prescription.Medicines = nil
	in.Prescription.Procedures = []string{"Filling"}
	in.Bill.LineItems = []LineItem{
		{Description: "Composite filling", Category: "dental", Amount: 600},
		{Description: "Teeth whitening", Category: "dental", Amount: 400},
	}

	d := s.decide(activeMember(), in)

	s.Equal(DecisionPartial, d.Type)
	s.InDelta(400.0, d.Deductions.NonCovered, 0.001)
	s.InDelta(60.0, d.Deductions.Copay, 0.001)
	s.InDelta(540.0, d.ApprovedAmount, 0.001)
}

func (s *EngineSuite) TestPreAuthorizationRequiredForMRI() {
	in := cleanIntake(3000)
	in.Prescription.Procedures = []string{"MRI brain"}

	d := s.decide(activeMember(), in)
	s.Equal(DecisionRejected, d.Type)
	s.Contains(codes(d.RejectionReasons), CodePreAuthMissing)

	in.PreAuthReference = "PA-7781"
	d = s.decide(activeMember(), in)
	s.NotContains(codes(d.RejectionReasons), CodePreAuthMissing)
}

func (s *EngineSuite) TestNecessityMismatchIsSoft() {
	in := cleanIntake(900)
	in.Prescription.Medicines = []string{"Atorvastatin 10mg"}

	d := s.decide(activeMember(), in)

	s.Equal(DecisionPartial, d.Type)
	s.Equal("deductions_applied", d.DecidedBy)
	s.InDelta(810.0, d.ApprovedAmount, 0.001)
	s.Equal(StatusFail, stageOf(d, StageNecessity).Status)
}

func (s *EngineSuite) TestNecessityMismatchWithLowConfidenceRejects() {
	cfg := DefaultConfig()
	cfg.Confidence.NecessityRejectBelow = 0.95
	in := cleanIntake(900)
	in.Prescription.Medicines = []string{"Atorvastatin 10mg"}

	res := Adjudicate(cfg, activeMember(), in)

	s.Equal(DecisionRejected, res.Type)
	s.Equal("necessity_low_confidence", res.Decision.DecidedBy)
	s.Equal([]string{CodeNecessityNotEstablished}, codes(res.Decision.RejectionReasons))
}

func (s *EngineSuite) TestMissingNameGoesToReview() {
	in := cleanIntake(800)
	in.ClaimedName = ""
	in.Prescription.PatientName = ""
	in.Bill.PatientName = ""

	d := s.decide(activeMember(), in)

	s.Equal(DecisionManualReview, d.Type)
	s.Contains(codes(d.RejectionReasons), CodeNameNotProvided)
}

// =============================================================================
// Preview and Engine Construction
// =============================================================================

func (s *EngineSuite) TestPreviewOfExcludedTreatmentListsIssues() {
	in := cleanIntake(3000)
	in.Prescription.Diagnosis = "Cosmetic rhinoplasty consultation"
	in.Contact = &Contact{Phone: "+91-9800000000"}

	res := s.engine.Adjudicate(nil, in)

	s.Require().NotNil(res.Preview)
	s.Zero(res.Preview.CoveredAmount)
	s.InDelta(3000.0, res.Preview.OutOfPocket, 0.001)
	s.Contains(codes(res.Preview.Issues), CodeExcludedTreatment)
	s.Require().NotNil(res.Preview.Lead)
	s.Equal("Rajesh Kumar", res.Preview.Lead.Name)
}

func (s *EngineSuite) TestPreviewWithoutContactHasNoLead() {
	res := s.engine.Adjudicate(nil, cleanIntake(800))
	s.Require().NotNil(res.Preview)
	s.Nil(res.Preview.Lead)
}

func (s *EngineSuite) TestEngineMatchesFreeFunction() {
	in := cleanIntake(2500)
	a, err := json.Marshal(s.engine.Adjudicate(activeMember(), in))
	s.Require().NoError(err)
	b, err := json.Marshal(Adjudicate(DefaultConfig(), activeMember(), in))
	s.Require().NoError(err)
	s.JSONEq(string(a), string(b))
}

func (s *EngineSuite) TestFreeFunctionFallsBackFromInvalidConfig() {
	cfg := DefaultConfig()
	cfg.Fraud.Weights = map[Indicator]float64{IndicatorDuplicateClaim: 0.35}
	m := activeMember()
	m.PriorClaims = []PriorClaim{
		{ClaimID: "CLM-1", TreatmentDate: daysBefore(2)},
		{ClaimID: "CLM-2", TreatmentDate: daysBefore(5)},
		{ClaimID: "CLM-3", TreatmentDate: daysBefore(9)},
	}
	in := cleanIntake(900)

	a, err := json.Marshal(Adjudicate(cfg, m, in))
	s.Require().NoError(err)
	b, err := json.Marshal(Adjudicate(DefaultConfig(), m, in))
	s.Require().NoError(err)
	s.JSONEq(string(b), string(a))

	var indicators []Indicator
	for _, f := range Adjudicate(cfg, m, in).Decision.FraudFlags {
		indicators = append(indicators, f.Indicator)
	}
	s.Contains(indicators, IndicatorSubmissionVelocity)
}

func (s *EngineSuite) TestNewEngineRejectsInvalidConfig() {
	cfg := DefaultConfig()
	cfg.Identity.ReviewScore = 95
	cfg.Rates.Copay = 1.5
	delete(cfg.Fraud.Weights, IndicatorSubmissionVelocity)

	_, err := NewEngine(cfg)

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Contains(err.Error(), "identity thresholds")
	s.Contains(err.Error(), "copay rate")
	s.Contains(err.Error(), string(IndicatorSubmissionVelocity))
}
