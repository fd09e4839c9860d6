package loan

import "github.com/shopspring/decimal"

// Review actions
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// DefaultsAfter is the number of overdue installments that defaults a loan.
const DefaultsAfter = 3

type ApplyRequest struct {
	Amount       decimal.Decimal `json:"amount" validate:"required,gt=0"`
	InterestRate decimal.Decimal `json:"interest_rate" validate:"gte=0,lte=100"`
	TenureMonths int             `json:"tenure_months" validate:"required,min=1,max=360"`
	Purpose      string          `json:"purpose" validate:"required,max=500"`
}

type CalculateRequest struct {
	Amount       decimal.Decimal `json:"amount" validate:"required,gt=0"`
	InterestRate decimal.Decimal `json:"interest_rate" validate:"gte=0,lte=100"`
	TenureMonths int             `json:"tenure_months" validate:"required,min=1,max=360"`
}

type ReviewRequest struct {
	Action string `json:"action" validate:"required,oneof=approve reject"`
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

// RepayRequest pays whole installments, oldest first. With FromBalance the
// applied amount is debited from the user's balance.
type RepayRequest struct {
	Amount      decimal.Decimal `json:"amount" validate:"required,gt=0"`
	FromBalance bool            `json:"fromBalance"`
	Reference   string          `json:"reference,omitempty" validate:"max=255"`
}

// Repayment is the outcome of a repayment.
type Repayment struct {
	Applied      decimal.Decimal `json:"applied"`
	Installments []int           `json:"installments"`
	Remaining    decimal.Decimal `json:"remaining"`
	Completed    bool            `json:"completed"`
	Transaction  uint            `json:"transaction_id"`
}

// SweepResult counts what an overdue sweep changed.
type SweepResult struct {
	Overdue   int `json:"overdue"`
	Defaulted int `json:"defaulted"`
}
