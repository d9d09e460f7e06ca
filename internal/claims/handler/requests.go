package handler

import (
	"fmt"
	"strings"
	"time"

	"adjudicator/internal/adjudication"
	dErrors "adjudicator/pkg/domain-errors"
)

const (
	dateLayout = "2006-01-02"

	maxLineItems   = 100
	maxListEntries = 50
	maxTextLength  = 512
)

// AdjudicateRequest is the HTTP request body for POST /claims/adjudicate.
// Every document field is optional: gaps become findings, not 400s.
type AdjudicateRequest struct {
	MemberID         string               `json:"member_id"`
	MemberName       string               `json:"member_name"`
	TreatmentDate    string               `json:"treatment_date"`
	Prescription     *PrescriptionRequest `json:"prescription,omitempty"`
	Bill             *BillRequest         `json:"bill,omitempty"`
	PreAuthReference string               `json:"pre_auth_reference,omitempty"`
	Contact          *ContactRequest      `json:"contact,omitempty"`

	intake adjudication.ClaimIntake
}

type PrescriptionRequest struct {
	PatientName        string   `json:"patient_name"`
	DoctorName         string   `json:"doctor_name"`
	RegistrationNumber string   `json:"doctor_registration"`
	Diagnosis          string   `json:"diagnosis"`
	Medicines          []string `json:"medicines"`
	Procedures         []string `json:"procedures"`
	Date               string   `json:"date"`
}

type BillRequest struct {
	PatientName       string            `json:"patient_name"`
	HospitalName      string            `json:"hospital_name"`
	Date              string            `json:"date"`
	LineItems         []LineItemRequest `json:"line_items"`
	TotalAmount       float64           `json:"total_amount"`
	IsNetworkHospital bool              `json:"is_network_hospital"`
}

type LineItemRequest struct {
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
}

type ContactRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Validate checks sizes and formats and builds the claim intake.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *AdjudicateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	treatment, err := parseDate("treatment_date", r.TreatmentDate)
	if err != nil {
		return err
	}
	intake := adjudication.ClaimIntake{
		MemberID:         strings.TrimSpace(r.MemberID),
		ClaimedName:      strings.TrimSpace(r.MemberName),
		TreatmentDate:    treatment,
		PreAuthReference: strings.TrimSpace(r.PreAuthReference),
	}
	if err := checkText("member_id", intake.MemberID); err != nil {
		return err
	}
	if err := checkText("member_name", intake.ClaimedName); err != nil {
		return err
	}

	if p := r.Prescription; p != nil {
		if intake.Prescription, err = p.toPrescription(); err != nil {
			return err
		}
	}
	if b := r.Bill; b != nil {
		if intake.Bill, err = b.toBill(); err != nil {
			return err
		}
	}
	if c := r.Contact; c != nil {
		intake.Contact = &adjudication.Contact{
			Name:  strings.TrimSpace(c.Name),
			Email: strings.TrimSpace(c.Email),
			Phone: strings.TrimSpace(c.Phone),
		}
		if intake.Contact.Email != "" && !strings.Contains(intake.Contact.Email, "@") {
			return dErrors.New(dErrors.CodeValidation, "contact.email is not a valid address")
		}
	}

	r.intake = intake
	return nil
}

// Intake returns the validated claim intake.
func (r *AdjudicateRequest) Intake() adjudication.ClaimIntake {
	return r.intake
}

func (p *PrescriptionRequest) toPrescription() (*adjudication.Prescription, error) {
	if len(p.Medicines) > maxListEntries || len(p.Procedures) > maxListEntries {
		return nil, dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("prescription lists at most %d medicines and %d procedures", maxListEntries, maxListEntries))
	}
	date, err := parseDate("prescription.date", p.Date)
	if err != nil {
		return nil, err
	}
	for _, f := range []struct{ name, value string }{
		{"prescription.patient_name", p.PatientName},
		{"prescription.doctor_name", p.DoctorName},
		{"prescription.diagnosis", p.Diagnosis},
	} {
		if err := checkText(f.name, f.value); err != nil {
			return nil, err
		}
	}
	return &adjudication.Prescription{
		PatientName:        strings.TrimSpace(p.PatientName),
		DoctorName:         strings.TrimSpace(p.DoctorName),
		RegistrationNumber: strings.TrimSpace(p.RegistrationNumber),
		Diagnosis:          strings.TrimSpace(p.Diagnosis),
		Medicines:          trimAll(p.Medicines),
		Procedures:         trimAll(p.Procedures),
		Date:               date,
	}, nil
}

func (b *BillRequest) toBill() (*adjudication.Bill, error) {
	if len(b.LineItems) > maxLineItems {
		return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("bill has more than %d line items", maxLineItems))
	}
	if b.TotalAmount < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "bill.total_amount must not be negative")
	}
	date, err := parseDate("bill.date", b.Date)
	if err != nil {
		return nil, err
	}
	items := make([]adjudication.LineItem, 0, len(b.LineItems))
	for i, it := range b.LineItems {
		if it.Amount < 0 {
			return nil, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("bill.line_items[%d].amount must not be negative", i))
		}
		if err := checkText(fmt.Sprintf("bill.line_items[%d].description", i), it.Description); err != nil {
			return nil, err
		}
		items = append(items, adjudication.LineItem{
			Description: strings.TrimSpace(it.Description),
			Category:    strings.TrimSpace(it.Category),
			Amount:      it.Amount,
		})
	}
	return &adjudication.Bill{
		PatientName:       strings.TrimSpace(b.PatientName),
		HospitalName:      strings.TrimSpace(b.HospitalName),
		Date:              date,
		LineItems:         items,
		TotalAmount:       b.TotalAmount,
		IsNetworkHospital: b.IsNetworkHospital,
	}, nil
}

// parseDate accepts an empty value as "not supplied".
func parseDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeValidation, field+" must be a date in YYYY-MM-DD format")
	}
	return t, nil
}

func checkText(field, value string) error {
	if len(value) > maxTextLength {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s must be at most %d characters", field, maxTextLength))
	}
	return nil
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
