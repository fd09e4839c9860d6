package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction types
const (
	TransactionTypeDeposit          = "deposit"
	TransactionTypeWithdrawal       = "withdrawal"
	TransactionTypeBonus            = "bonus"
	TransactionTypeProfit           = "profit"
	TransactionTypePenalty          = "penalty"
	TransactionTypeReferralBonus    = "referral_bonus"
	TransactionTypeLoanDisbursement = "loan_disbursement"
	TransactionTypeLoanRepayment    = "loan_repayment"
	TransactionTypeTaskReward       = "task_reward"
)

// Transaction statuses
const (
	TransactionStatusPending    = "Pending"
	TransactionStatusApproved   = "Approved"
	TransactionStatusRejected   = "Rejected"
	TransactionStatusProcessing = "Processing"
	TransactionStatusCompleted  = "Completed"
	TransactionStatusFailed     = "Failed"
)

// DefaultCurrency is used for ledger entries that do not name one.
const DefaultCurrency = "BDT"

// Payment gateways
const (
	GatewayManual = "manual"
	GatewayBank   = "bank"
	GatewayStripe = "stripe"
	GatewaySystem = "system"
)

// Transaction is a ledger entry that affects a user balance.
type Transaction struct {
	gorm.Model
	UserID           uint            `gorm:"not null;index" json:"user_id"`
	User             *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Type             string          `gorm:"not null;index" json:"type"`
	Amount           decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"`
	Fee              decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"fee"`
	NetAmount        decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"net_amount"`
	Currency         string          `gorm:"not null;default:'BDT'" json:"currency"`
	Status           string          `gorm:"not null;default:'Pending';index" json:"status"`
	Gateway          string          `gorm:"not null;default:'manual';index:idx_live_deposit_reference,unique,where:type = 'deposit' AND gateway_reference <> '' AND status <> 'Rejected' AND deleted_at IS NULL" json:"gateway"`
	GatewayReference string          `gorm:"index:idx_live_deposit_reference,unique" json:"gateway_reference,omitempty"`
	Reference        string          `gorm:"uniqueIndex;not null" json:"reference"`
	Description      string          `json:"description,omitempty"`
	AccountDetails   JSON            `gorm:"type:jsonb" json:"account_details,omitempty"`
	ApprovedBy       *uint           `json:"approved_by,omitempty"`
	ProcessedAt      *time.Time      `json:"processed_at,omitempty"`
	RejectionReason  string          `json:"rejection_reason,omitempty"`
	FailureReason    string          `json:"failure_reason,omitempty"`
	Metadata         JSON            `gorm:"type:jsonb" json:"metadata,omitempty"`
}

// IsCredit reports whether the entry adds to the balance once it settles.
func (t *Transaction) IsCredit() bool {
	switch t.Type {
	case TransactionTypeWithdrawal, TransactionTypePenalty, TransactionTypeLoanRepayment:
		return false
	}
	return true
}

// TransactionFilter narrows ledger listings.
type TransactionFilter struct {
	UserID    *uint
	Type      string
	Status    string
	Gateway   string
	From      *time.Time
	To        *time.Time
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
	Search    string
}

// TransactionSummary aggregates a listing by status.
type TransactionSummary struct {
	Status string          `json:"status"`
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
	Fees   decimal.Decimal `json:"fees"`
}
