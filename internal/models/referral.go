package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Referral statuses
const (
	ReferralStatusPending   = "Pending"
	ReferralStatusPaid      = "Paid"
	ReferralStatusCancelled = "Cancelled"
)

// Referral links a referrer to a user who signed up with their code.
type Referral struct {
	gorm.Model
	ReferrerID    uint            `gorm:"not null;index" json:"referrer_id"`
	Referrer      *User           `gorm:"foreignKey:ReferrerID" json:"referrer,omitempty"`
	RefereeID     uint            `gorm:"not null;uniqueIndex" json:"referee_id"`
	Referee       *User           `gorm:"foreignKey:RefereeID" json:"referee,omitempty"`
	BonusAmount   decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"bonus_amount"`
	Status        string          `gorm:"not null;default:'Pending';index" json:"status"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	TransactionID *uint           `json:"transaction_id,omitempty"`
}

// ReferralFilter narrows referral listings.
type ReferralFilter struct {
	ReferrerID *uint
	RefereeID  *uint
	Status     string
	From       *time.Time
	To         *time.Time
}

// TopReferrer is one row of the referral leaderboard.
type TopReferrer struct {
	ReferrerID uint            `json:"referrer_id"`
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Referrals  int64           `json:"referrals"`
	BonusPaid  decimal.Decimal `json:"bonus_paid"`
}

// ReferralOverview summarises the referral programme.
type ReferralOverview struct {
	TotalReferrals   int64           `json:"total_referrals"`
	PaidReferrals    int64           `json:"paid_referrals"`
	PendingReferrals int64           `json:"pending_referrals"`
	PaidBonusTotal   decimal.Decimal `json:"paid_bonus_total"`
	PendingBonus     decimal.Decimal `json:"pending_bonus_total"`
	TopReferrers     []TopReferrer   `json:"top_referrers"`
}
