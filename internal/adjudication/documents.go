package adjudication

import (
	"math"
	"regexp"
	"strings"
)

// registrationPattern is STATE/NUMBER/YEAR, e.g. KA/45678/2015.
var registrationPattern = regexp.MustCompile(`^([A-Z]{2,3})/([0-9]+)/([0-9]{4})$`)

func validateDocuments(ev *evaluation) StageResult {
	p, b := ev.intake.Prescription, ev.intake.Bill
	cfg := ev.cfg.Documents
	var fs []Finding
	add := func(sev Severity, code string, value float64, format string, args ...any) {
		fs = append(fs, newFinding(StageDocuments, sev, code, value, format, args...))
	}

	if p == nil {
		add(SeverityError, CodeMissingDocument, 0, "missing required document: prescription")
	}
	if b == nil {
		add(SeverityError, CodeMissingDocument, 0, "missing required document: bill")
	}

	if p != nil {
		reg := strings.TrimSpace(p.RegistrationNumber)
		switch {
		case reg == "":
			add(SeverityError, CodeInvalidDoctorRegistration, 0, "invalid doctor registration: number missing")
		case !registrationPattern.MatchString(reg):
			add(SeverityError, CodeInvalidDoctorRegistration, 0,
				"invalid doctor registration: %q is not in STATE/NUMBER/YEAR format", reg)
		}
		if strings.TrimSpace(p.DoctorName) == "" {
			add(SeverityError, CodeDoctorNameMissing, 0, "doctor name missing on prescription")
		}
		if p.Date.IsZero() {
			add(SeverityError, CodeDocumentDateMissing, 0, "prescription date missing")
		}
	}

	if b != nil {
		if b.Date.IsZero() {
			add(SeverityError, CodeDocumentDateMissing, 0, "bill date missing")
		}
		if len(b.LineItems) > 0 && b.TotalAmount > 0 {
			sum := fromPaise(lineItemTotal(b.LineItems))
			if math.Abs(sum-b.TotalAmount) > cfg.AmountMismatchTolerance*b.TotalAmount {
				add(SeverityWarning, CodeAmountMismatch, roundTo(sum-b.TotalAmount, 2),
					"bill line items sum to ₹%.2f but the stated total is ₹%.2f", sum, b.TotalAmount)
			}
		}
	}

	if p != nil && b != nil {
		if !p.Date.IsZero() && !b.Date.IsZero() {
			if gap := daysBetween(b.Date, p.Date); gap > cfg.DateToleranceDays {
				add(SeverityError, CodeDateInconsistent, float64(gap),
					"bill dated %d days before the prescription", gap)
			}
		}
		pn, bn := strings.TrimSpace(p.PatientName), strings.TrimSpace(b.PatientName)
		if pn != "" && bn != "" {
			if score := NameScore(pn, bn); score < ev.cfg.Identity.ReviewScore {
				add(SeverityWarning, CodePatientNameInconsistent, score,
					"patient name differs between prescription (%q) and bill (%q)", pn, bn)
			}
		}
	}

	return StageResult{Stage: StageDocuments, Status: statusOf(fs), Findings: nonNil(fs)}
}

func lineItemTotal(items []LineItem) paise {
	var sum paise
	for _, it := range items {
		sum += toPaise(it.Amount)
	}
	return sum
}
