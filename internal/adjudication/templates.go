package adjudication

import (
	"fmt"
	"strings"
	"text/template"
)

const narrativeTemplates = `
{{define "notes:APPROVED"}}Claim approved: {{rupees .Approved}} payable of {{rupees .Claimed}} claimed after a {{rupees .Deductions.Copay}} copay{{if .Deductions.NetworkDiscount}} and a {{rupees .Deductions.NetworkDiscount}} network discount{{end}}.{{if .Cashless}} Cashless settlement approved.{{end}}{{end}}
{{define "notes:PARTIAL"}}Claim partially approved: {{rupees .Approved}} of {{rupees .Claimed}}. Deductions: copay {{rupees .Deductions.Copay}}, non-covered {{rupees .Deductions.NonCovered}}, exceeded limits {{rupees .Deductions.ExceededLimits}}, network discount {{rupees .Deductions.NetworkDiscount}}.{{end}}
{{define "notes:REJECTED"}}Claim rejected: {{join .Reasons "; "}}.{{end}}
{{define "notes:MANUAL_REVIEW"}}Claim referred for manual review: {{join .Reasons "; "}}. Provisional payable amount {{rupees .Provisional}}, subject to review.{{end}}

{{define "steps:APPROVED"}}{{rupees .Approved}} will be paid to the member's registered account.{{if .Cashless}}
Show the cashless approval at the hospital billing desk.{{end}}{{end}}
{{define "steps:PARTIAL"}}{{rupees .Approved}} will be paid; the deducted amount is payable by the member.{{end}}
{{define "steps:REJECTED"}}Address the reasons listed and resubmit if they can be remedied.{{end}}
{{define "steps:MANUAL_REVIEW"}}A claims officer will review this claim within 2 working days. Keep the original documents ready.{{end}}

{{define "step:POLICY_INACTIVE"}}Renew or reactivate the policy before claiming.{{end}}
{{define "step:TREATMENT_DATE_MISSING"}}Provide the date of treatment.{{end}}
{{define "step:OUTSIDE_POLICY_PERIOD"}}Only treatment within the policy period can be claimed.{{end}}
{{define "step:WAITING_PERIOD"}}Resubmit once the waiting period ends in {{printf "%.0f" .Value}} days.{{end}}
{{define "step:MISSING_DOCUMENT"}}Upload the missing document.{{end}}
{{define "step:INVALID_DOCTOR_REGISTRATION"}}Get a prescription showing the doctor's registration as STATE/NUMBER/YEAR.{{end}}
{{define "step:DOCTOR_NAME_MISSING"}}Get a prescription that names the treating doctor.{{end}}
{{define "step:DOCUMENT_DATE_MISSING"}}Provide dated copies of the prescription and bill.{{end}}
{{define "step:DATE_INCONSISTENT"}}Confirm the prescription and bill dates with the hospital.{{end}}
{{define "step:AMOUNT_MISMATCH"}}Provide an itemised bill that matches the total.{{end}}
{{define "step:PATIENT_NAME_INCONSISTENT"}}Make sure both documents carry the patient's name as on the policy.{{end}}
{{define "step:EXCLUDED_TREATMENT"}}Excluded treatments are not covered by the policy.{{end}}
{{define "step:NON_COVERED_ITEM"}}Non-covered items were removed from the payable amount.{{end}}
{{define "step:PRE_AUTH_MISSING"}}Obtain pre-authorization and include its reference with the claim.{{end}}
{{define "step:BELOW_MINIMUM_AMOUNT"}}Claims must be at least the minimum claimable amount.{{end}}
{{define "step:PER_CLAIM_LIMIT_EXCEEDED"}}Amounts above the per-claim limit are not reimbursed.{{end}}
{{define "step:ANNUAL_LIMIT_EXCEEDED"}}Only the remaining annual limit was approved.{{end}}
{{define "step:ANNUAL_LIMIT_EXHAUSTED"}}The annual limit is used up until the policy renews.{{end}}
{{define "step:NAME_NOT_PROVIDED"}}Submit documents showing the patient's name.{{end}}
{{define "step:NAME_PARTIAL_MATCH"}}Submit a government ID matching the policy holder's name.{{end}}
{{define "step:NAME_MISMATCH"}}Only the policy holder can claim under this policy.{{end}}
{{define "step:NECESSITY_NOT_ESTABLISHED"}}Ask the treating doctor for a note explaining the treatment.{{end}}
{{define "step:AMOUNT_IMPLAUSIBLE"}}Attach a detailed breakdown of the charges.{{end}}
{{define "step:FRAUD_RISK_ELEVATED"}}Keep original bills and prescriptions available for verification.{{end}}
`

var narrative = template.Must(template.New("narrative").Funcs(template.FuncMap{
	"rupees": func(v float64) string { return fmt.Sprintf("₹%.2f", v) },
	"join":   strings.Join,
}).Parse(narrativeTemplates))

type narrativeData struct {
	Claimed     float64
	Approved    float64
	Provisional float64
	Deductions  Deductions
	Cashless    bool
	Reasons     []string
}

// renderNarrative builds the notes and next steps from fixed templates keyed
// by decision type and finding code.
func renderNarrative(d *Decision, provisional float64) (notes, nextSteps string) {
	data := narrativeData{
		Claimed:     d.ClaimedAmount,
		Approved:    d.ApprovedAmount,
		Provisional: provisional,
		Deductions:  d.Deductions,
		Cashless:    d.CashlessApproved,
	}
	for _, r := range d.RejectionReasons {
		data.Reasons = append(data.Reasons, r.Message)
	}

	notes = execute("notes:"+string(d.Type), data)

	steps := []string{execute("steps:"+string(d.Type), data)}
	seen := map[string]bool{}
	for _, f := range d.Findings {
		if f.Severity == SeverityInfo || seen[f.Code] {
			continue
		}
		seen[f.Code] = true
		if narrative.Lookup("step:"+f.Code) == nil {
			continue
		}
		if line := execute("step:"+f.Code, f); line != "" {
			steps = append(steps, line)
		}
	}
	return notes, strings.Join(steps, "\n")
}

func execute(name string, data any) string {
	var b strings.Builder
	if err := narrative.ExecuteTemplate(&b, name, data); err != nil {
		return ""
	}
	return b.String()
}
