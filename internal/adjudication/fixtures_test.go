package adjudication

import "time"

var treatDay = time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)

func daysBefore(n int) time.Time { return treatDay.AddDate(0, 0, -n) }

func activeMember() *Member {
	return &Member{
		ID:           "EMP001",
		Name:         "Rajesh Kumar",
		PolicyNumber: "PLC-2024-001",
		PolicyStart:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		PolicyEnd:    time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		Status:       PolicyActive,
		AnnualLimit:  50000,
	}
}

// cleanIntake is a fever consultation that passes every stage.
func cleanIntake(amount float64) ClaimIntake {
	return ClaimIntake{
		MemberID:      "EMP001",
		ClaimedName:   "Rajesh Kumar",
		TreatmentDate: treatDay,
		Prescription: &Prescription{
			PatientName:        "Rajesh Kumar",
			DoctorName:         "Dr. Anil Sharma",
			RegistrationNumber: "KA/45678/2015",
			Diagnosis:          "Viral fever",
			Medicines:          []string{"Paracetamol 650mg", "Vitamin C"},
			Date:               treatDay,
		},
		Bill: &Bill{
			PatientName:  "Rajesh Kumar",
			HospitalName: "City Care Clinic",
			Date:         treatDay,
			LineItems: []LineItem{
				{Description: "Consultation and medicines", Category: "consultation", Amount: amount},
			},
			TotalAmount: amount,
		},
	}
}

func codes(rs []Reason) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Code)
	}
	return out
}

func findingCodes(fs []Finding) []string {
	out := make([]string, 0, len(fs))
	for _, f := range fs {
		out = append(out, f.Code)
	}
	return out
}

func stageOf(d *Decision, s Stage) StageResult {
	for _, r := range d.Stages {
		if r.Stage == s {
			return r
		}
	}
	return StageResult{}
}
