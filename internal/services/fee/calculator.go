// Package fee prices deposits and withdrawals from the live settings.
package fee

import (
	"context"

	"iprofit/internal/services/settings"

	"github.com/shopspring/decimal"
)

// SettingsReader is the part of the settings service the calculator needs.
type SettingsReader interface {
	Decimal(ctx context.Context, key string) decimal.Decimal
}

// Quote is a priced request. For deposits Net is what gets credited; for
// withdrawals Total is what gets debited.
type Quote struct {
	Amount decimal.Decimal `json:"amount"`
	Fee    decimal.Decimal `json:"fee"`
	Net    decimal.Decimal `json:"net_amount"`
	Total  decimal.Decimal `json:"total"`
}

type Calculator struct {
	settings SettingsReader
}

func NewCalculator(s SettingsReader) *Calculator {
	if s == nil {
		panic("settings reader is required")
	}
	return &Calculator{settings: s}
}

var hundred = decimal.NewFromInt(100)

// Deposit charges deposit_fee_percent of the amount.
func (c *Calculator) Deposit(ctx context.Context, amount decimal.Decimal) Quote {
	pct := c.settings.Decimal(ctx, settings.KeyDepositFeePercent)
	fee := amount.Mul(pct).Div(hundred).Round(2)
	if fee.GreaterThan(amount) {
		fee = amount
	}
	return Quote{Amount: amount, Fee: fee, Net: amount.Sub(fee), Total: amount}
}

// Withdrawal charges amount*withdrawal_fee_percent/100 + withdrawal_fee_fixed,
// but never less than min_withdrawal_fee.
func (c *Calculator) Withdrawal(ctx context.Context, amount decimal.Decimal) Quote {
	pct := c.settings.Decimal(ctx, settings.KeyWithdrawalFeePercent)
	fixed := c.settings.Decimal(ctx, settings.KeyWithdrawalFeeFixed)
	min := c.settings.Decimal(ctx, settings.KeyMinWithdrawalFee)

	fee := amount.Mul(pct).Div(hundred).Add(fixed).Round(2)
	if fee.LessThan(min) {
		fee = min
	}
	return Quote{Amount: amount, Fee: fee, Net: amount, Total: amount.Add(fee)}
}
