package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Loan statuses
const (
	LoanStatusPending   = "Pending"
	LoanStatusApproved  = "Approved"
	LoanStatusRejected  = "Rejected"
	LoanStatusActive    = "Active"
	LoanStatusCompleted = "Completed"
	LoanStatusDefaulted = "Defaulted"
)

// Repayment statuses
const (
	RepaymentStatusPending = "Pending"
	RepaymentStatusPaid    = "Paid"
	RepaymentStatusOverdue = "Overdue"
)

// Loan is a user loan application and, once disbursed, its running balance.
type Loan struct {
	gorm.Model
	UserID            uint            `gorm:"not null;index" json:"user_id"`
	User              *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Amount            decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"`
	InterestRate      decimal.Decimal `gorm:"type:numeric(8,4);not null" json:"interest_rate"`
	TenureMonths      int             `gorm:"not null" json:"tenure_months"`
	EMIAmount         decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"emi_amount"`
	TotalPayable      decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"total_payable"`
	TotalPaid         decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"total_paid"`
	RemainingAmount   decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"remaining_amount"`
	Status            string          `gorm:"not null;default:'Pending';index" json:"status"`
	Purpose           string          `json:"purpose,omitempty"`
	CreditScore       int             `json:"credit_score"`
	RejectionReason   string          `json:"rejection_reason,omitempty"`
	ApprovedBy        *uint           `json:"approved_by,omitempty"`
	ApprovedAt        *time.Time      `json:"approved_at,omitempty"`
	DisbursedAt       *time.Time      `json:"disbursed_at,omitempty"`
	NextDueDate       *time.Time      `gorm:"index" json:"next_due_date,omitempty"`
	RepaymentSchedule []LoanRepayment `gorm:"foreignKey:LoanID" json:"repayment_schedule,omitempty"`
}

// LoanRepayment is one installment of a loan schedule.
type LoanRepayment struct {
	gorm.Model
	LoanID      uint            `gorm:"not null;uniqueIndex:idx_loan_installment" json:"loan_id"`
	Installment int             `gorm:"not null;uniqueIndex:idx_loan_installment" json:"installment"`
	DueDate     time.Time       `gorm:"not null;index" json:"due_date"`
	Amount      decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"`
	Principal   decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"principal"`
	Interest    decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"interest"`
	Status      string          `gorm:"not null;default:'Pending';index" json:"status"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
	LateFee     decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"late_fee"`
}

// Due is the amount owed for the installment including any late fee.
func (r *LoanRepayment) Due() decimal.Decimal {
	return r.Amount.Add(r.LateFee)
}

// LoanFilter narrows loan listings.
type LoanFilter struct {
	UserID *uint
	Status string
	From   *time.Time
	To     *time.Time
}
