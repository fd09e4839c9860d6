package email

import (
	"fmt"
	"html/template"
)

// Template names
const (
	TemplateKYCApproved         = "kyc_approved"
	TemplateKYCRejected         = "kyc_rejected"
	TemplateDepositApproved     = "deposit_approved"
	TemplateDepositRejected     = "deposit_rejected"
	TemplateWithdrawalApproved  = "withdrawal_approved"
	TemplateWithdrawalRejected  = "withdrawal_rejected"
	TemplateWithdrawalCompleted = "withdrawal_completed"
	TemplateLoanApproved        = "loan_approved"
	TemplateLoanRejected        = "loan_rejected"
	TemplateNotification        = "notification"
)

const layout = `{{define "layout"}}<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif;color:#1f2937">
<h2>{{.Platform}}</h2>
<p>Hello {{.Name}},</p>
{{template "body" .}}
<p style="color:#6b7280;font-size:12px">This is an automated message from {{.Platform}}.</p>
</body></html>{{end}}`

type templateDef struct {
	subject string
	body    string
}

var templateDefs = map[string]templateDef{
	TemplateKYCApproved: {
		subject: "Your identity verification was approved",
		body:    `<p>Your KYC documents have been verified. All account features are now available.</p>`,
	},
	TemplateKYCRejected: {
		subject: "Your identity verification was rejected",
		body:    `<p>We could not verify your KYC documents.</p><p>Reason: {{.Reason}}</p><p>Please upload new documents from the app.</p>`,
	},
	TemplateDepositApproved: {
		subject: "Deposit approved",
		body:    `<p>Your deposit of {{.Amount}} {{.Currency}} (ref {{.Reference}}) has been credited to your balance.</p>`,
	},
	TemplateDepositRejected: {
		subject: "Deposit rejected",
		body:    `<p>Your deposit of {{.Amount}} {{.Currency}} (ref {{.Reference}}) was rejected.</p><p>Reason: {{.Reason}}</p>`,
	},
	TemplateWithdrawalApproved: {
		subject: "Withdrawal approved",
		body:    `<p>Your withdrawal of {{.Amount}} {{.Currency}} (ref {{.Reference}}) was approved. A fee of {{.Fee}} {{.Currency}} applies.</p>`,
	},
	TemplateWithdrawalRejected: {
		subject: "Withdrawal rejected",
		body:    `<p>Your withdrawal of {{.Amount}} {{.Currency}} (ref {{.Reference}}) was rejected.</p><p>Reason: {{.Reason}}</p>`,
	},
	TemplateWithdrawalCompleted: {
		subject: "Withdrawal completed",
		body:    `<p>Your withdrawal of {{.Amount}} {{.Currency}} (ref {{.Reference}}) has been sent.</p>`,
	},
	TemplateLoanApproved: {
		subject: "Loan approved",
		body:    `<p>Your loan of {{.Amount}} was approved. Monthly installment: {{.EMI}} over {{.Tenure}} months.</p>`,
	},
	TemplateLoanRejected: {
		subject: "Loan application rejected",
		body:    `<p>Your loan application for {{.Amount}} was rejected.</p><p>Reason: {{.Reason}}</p>`,
	},
	TemplateNotification: {
		subject: "{{.Title}}",
		body:    `<p>{{.Message}}</p>`,
	},
}

type compiled struct {
	subject *template.Template
	body    *template.Template
}

func parseTemplates() (map[string]compiled, error) {
	out := make(map[string]compiled, len(templateDefs))
	for name, def := range templateDefs {
		subj, err := template.New(name + "_subject").Parse(def.subject)
		if err != nil {
			return nil, fmt.Errorf("parse subject %s: %w", name, err)
		}
		body, err := template.New(name).Parse(layout)
		if err != nil {
			return nil, fmt.Errorf("parse layout %s: %w", name, err)
		}
		if _, err := body.New("body").Parse(def.body); err != nil {
			return nil, fmt.Errorf("parse body %s: %w", name, err)
		}
		out[name] = compiled{subject: subj, body: body}
	}
	return out, nil
}
