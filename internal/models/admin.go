package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Admin is an admin-panel operator account.
type Admin struct {
	gorm.Model
	Name                string         `gorm:"not null" json:"name"`
	Email               string         `gorm:"uniqueIndex;not null" json:"email"`
	Password            string         `gorm:"not null" json:"-"`
	Role                string         `gorm:"not null;default:'admin'" json:"role"`
	Permissions         pq.StringArray `gorm:"type:text[]" json:"permissions"`
	IsActive            bool           `gorm:"not null;default:true" json:"is_active"`
	TokenVersion        int            `gorm:"not null;default:1" json:"-"`
	FailedLoginAttempts int            `gorm:"not null;default:0" json:"-"`
	LockedUntil         *time.Time     `json:"locked_until,omitempty"`
	LastLoginAt         *time.Time     `json:"last_login_at,omitempty"`
	LastLoginIP         string         `json:"last_login_ip,omitempty"`
}

// EffectivePermissions returns the explicit grants, or the role defaults when none are stored.
func (a *Admin) EffectivePermissions() []string {
	if len(a.Permissions) > 0 {
		return []string(a.Permissions)
	}
	return GetDefaultPermissions(a.Role)
}

// IsLocked reports whether the account is inside a lockout window.
func (a *Admin) IsLocked(now time.Time) bool {
	return a.LockedUntil != nil && now.Before(*a.LockedUntil)
}
