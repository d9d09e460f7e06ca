package handler

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dErrors "adjudicator/pkg/domain-errors"
)

// AdjudicateRequestSuite tests AdjudicateRequest validation and normalization.
type AdjudicateRequestSuite struct {
	suite.Suite
}

func TestAdjudicateRequestSuite(t *testing.T) {
	suite.Run(t, new(AdjudicateRequestSuite))
}

func validRequest() *AdjudicateRequest {
	return &AdjudicateRequest{
		MemberID:      " EMP001 ",
		MemberName:    "Rajesh Kumar",
		TreatmentDate: "2024-11-01",
		Prescription: &PrescriptionRequest{
			PatientName:        "Rajesh Kumar",
			DoctorName:         "Dr. Anil Sharma",
			RegistrationNumber: "KA/45678/2015",
			Diagnosis:          "Viral fever",
			Medicines:          []string{" Paracetamol 650mg ", ""},
			Date:               "2024-11-01",
		},
		Bill: &BillRequest{
			PatientName: "Rajesh Kumar",
			Date:        "2024-11-01",
			LineItems:   []LineItemRequest{{Description: "Consultation", Amount: 800}},
			TotalAmount: 800,
		},
	}
}

func (s *AdjudicateRequestSuite) TestValidRequestBuildsIntake() {
	req := validRequest()
	s.Require().NoError(req.Validate())

	in := req.Intake()
	day := time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)
	s.Equal("EMP001", in.MemberID)
	s.Equal(day, in.TreatmentDate)
	s.Require().NotNil(in.Prescription)
	s.Equal([]string{"Paracetamol 650mg"}, in.Prescription.Medicines)
	s.Equal(day, in.Prescription.Date)
	s.Require().NotNil(in.Bill)
	s.Equal(800.0, in.Bill.LineItems[0].Amount)
	s.Nil(in.Contact)
}

func (s *AdjudicateRequestSuite) TestMissingDocumentsAreNotValidationErrors() {
	req := &AdjudicateRequest{MemberID: "EMP001"}
	s.Require().NoError(req.Validate())
	s.Nil(req.Intake().Prescription)
	s.Nil(req.Intake().Bill)
	s.True(req.Intake().TreatmentDate.IsZero())
}

func (s *AdjudicateRequestSuite) TestRejections() {
	cases := []struct {
		name   string
		mutate func(r *AdjudicateRequest)
		msg    string
	}{
		{"bad treatment date", func(r *AdjudicateRequest) { r.TreatmentDate = "01/11/2024" }, "treatment_date"},
		{"bad prescription date", func(r *AdjudicateRequest) { r.Prescription.Date = "yesterday" }, "prescription.date"},
		{"bad bill date", func(r *AdjudicateRequest) { r.Bill.Date = "2024-13-01" }, "bill.date"},
		{"negative total", func(r *AdjudicateRequest) { r.Bill.TotalAmount = -1 }, "total_amount"},
		{"negative line item", func(r *AdjudicateRequest) { r.Bill.LineItems[0].Amount = -5 }, "line_items[0].amount"},
		{"too many line items", func(r *AdjudicateRequest) {
			r.Bill.LineItems = make([]LineItemRequest, maxLineItems+1)
		}, "line items"},
		{"too many medicines", func(r *AdjudicateRequest) {
			r.Prescription.Medicines = make([]string, maxListEntries+1)
		}, "medicines"},
		{"oversized diagnosis", func(r *AdjudicateRequest) {
			r.Prescription.Diagnosis = strings.Repeat("a", maxTextLength+1)
		}, "prescription.diagnosis"},
		{"malformed email", func(r *AdjudicateRequest) {
			r.Contact = &ContactRequest{Email: "not-an-address"}
		}, "contact.email"},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			req := validRequest()
			tc.mutate(req)
			err := req.Validate()
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))
			s.Contains(err.Error(), tc.msg)
		})
	}
}

func (s *AdjudicateRequestSuite) TestNilRequest() {
	var req *AdjudicateRequest
	err := req.Validate()
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}
