package user

import (
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Bulk actions
const (
	BulkActivate   = "activate"
	BulkSuspend    = "suspend"
	BulkBan        = "ban"
	BulkDelete     = "delete"
	BulkApproveKYC = "approve_kyc"
)

// Balance adjustment kinds
const (
	AdjustBonus   = "bonus"
	AdjustPenalty = "penalty"
)

// UpdateRequest carries the profile fields an admin may change. Nil fields
// are left untouched.
type UpdateRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       *string `json:"phone,omitempty"`
	PlanID      *uint   `json:"plan_id,omitempty"`
	CreditScore *int    `json:"credit_score,omitempty" validate:"omitempty,min=300,max=900"`
}

// KYCSubmitRequest carries document URLs uploaded by the user.
type KYCSubmitRequest struct {
	Documents pq.StringArray `json:"documents" validate:"required,min=1,max=10,dive,url"`
}

type KYCReviewRequest struct {
	Action string `json:"action" validate:"required,oneof=approve reject"`
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Active Suspended Banned"`
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

type BulkRequest struct {
	Action string `json:"action" validate:"required,oneof=activate suspend ban delete approve_kyc"`
	IDs    []uint `json:"ids" validate:"required,min=1,max=100"`
	Reason string `json:"reason,omitempty"`
}

// BulkResult is the outcome for one id of a bulk action.
type BulkResult struct {
	ID      uint   `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type BalanceRequest struct {
	Type   string          `json:"type" validate:"required,oneof=bonus penalty"`
	Amount decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Reason string          `json:"reason" validate:"required,max=500"`
}
