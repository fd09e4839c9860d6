package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// User statuses
const (
	UserStatusActive    = "Active"
	UserStatusSuspended = "Suspended"
	UserStatusBanned    = "Banned"
)

// KYC statuses
const (
	KYCStatusPending  = "Pending"
	KYCStatusApproved = "Approved"
	KYCStatusRejected = "Rejected"
)

// User is an app customer managed from the admin panel.
type User struct {
	gorm.Model
	Name               string          `gorm:"not null" json:"name"`
	Email              string          `gorm:"uniqueIndex;not null" json:"email"`
	Phone              string          `gorm:"uniqueIndex;not null" json:"phone"`
	Password           string          `gorm:"not null" json:"-"`
	Status             string          `gorm:"not null;default:'Active';index" json:"status"`
	KYCStatus          string          `gorm:"not null;default:'Pending';index" json:"kyc_status"`
	KYCDocuments       pq.StringArray  `gorm:"type:text[]" json:"kyc_documents"`
	KYCRejectionReason string          `json:"kyc_rejection_reason,omitempty"`
	Balance            decimal.Decimal `gorm:"type:numeric(20,2);not null;default:0" json:"balance"`
	ReferralCode       string          `gorm:"uniqueIndex;not null" json:"referral_code"`
	ReferredBy         *uint           `gorm:"index" json:"referred_by,omitempty"`
	PlanID             *uint           `gorm:"index" json:"plan_id,omitempty"`
	Plan               *Plan           `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
	DeviceID           string          `gorm:"index" json:"device_id,omitempty"`
	CreditScore        int             `gorm:"not null;default:650" json:"credit_score"`
	TokenVersion       int             `gorm:"not null;default:1" json:"-"`
	LastLoginAt        *time.Time      `json:"last_login_at,omitempty"`
	LastLoginIP        string          `json:"last_login_ip,omitempty"`
}

// IsActive reports whether the account may transact.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// ValidUserStatus reports whether s is a known account status.
func ValidUserStatus(s string) bool {
	switch s {
	case UserStatusActive, UserStatusSuspended, UserStatusBanned:
		return true
	}
	return false
}

// UserFilter narrows user listings.
type UserFilter struct {
	Status    string
	KYCStatus string
	PlanID    *uint
	Search    string
	From      *time.Time
	To        *time.Time
}
