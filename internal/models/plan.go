package models

import (
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Plan is a membership tier that sets per-user limits.
type Plan struct {
	gorm.Model
	Name                 string          `gorm:"uniqueIndex;not null" json:"name"`
	Description          string          `json:"description,omitempty"`
	Price                decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"price"`
	DepositLimit         decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"deposit_limit"`
	WithdrawalLimit      decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"withdrawal_limit"`
	ProfitPercent        decimal.Decimal `gorm:"type:numeric(8,4);not null;default:0" json:"profit_percent"`
	MinimumDeposit       decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"minimum_deposit"`
	DailyWithdrawalLimit decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"daily_withdrawal_limit"`
	Features             pq.StringArray  `gorm:"type:text[]" json:"features"`
	Color                string          `gorm:"default:'#000000'" json:"color"`
	Priority             int             `gorm:"not null;default:0" json:"priority"`
	IsActive             bool            `gorm:"not null;default:true" json:"is_active"`
	UserCount            int64           `gorm:"-" json:"user_count"`
}
