package transaction

import (
	"iprofit/internal/models"
	"iprofit/internal/services/audit"

	"github.com/shopspring/decimal"
)

// Actor is the admin performing a review.
type Actor = audit.Actor

// DepositRequest is a user's request to fund their balance.
type DepositRequest struct {
	Amount           decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Currency         string          `json:"currency,omitempty" validate:"omitempty,len=3"`
	Gateway          string          `json:"gateway" validate:"required,oneof=manual bank stripe"`
	GatewayReference string          `json:"gateway_reference,omitempty" validate:"max=255"`
	Description      string          `json:"description,omitempty" validate:"max=500"`
	AccountDetails   models.JSON     `json:"account_details,omitempty"`
}

// WithdrawalRequest is a user's request to pay out part of their balance.
type WithdrawalRequest struct {
	Amount         decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Currency       string          `json:"currency,omitempty" validate:"omitempty,len=3"`
	Gateway        string          `json:"gateway" validate:"required,oneof=manual bank"`
	AccountDetails models.JSON     `json:"account_details" validate:"required"`
	Description    string          `json:"description,omitempty" validate:"max=500"`
}

// DepositDecision is an admin decision on a pending deposit.
type DepositDecision struct {
	TransactionID uint   `json:"transactionId" validate:"required"`
	Action        string `json:"action" validate:"required,oneof=approve reject"`
	Reason        string `json:"reason,omitempty" validate:"max=500"`
}

// WithdrawalDecision moves a withdrawal through its lifecycle.
type WithdrawalDecision struct {
	TransactionID    uint   `json:"transactionId" validate:"required"`
	Action           string `json:"action" validate:"required,oneof=approve reject process complete fail"`
	Reason           string `json:"reason,omitempty" validate:"max=500"`
	GatewayReference string `json:"gatewayReference,omitempty" validate:"max=255"`
}
