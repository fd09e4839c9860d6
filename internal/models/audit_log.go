package models

import "time"

// Audit severities
const (
	SeverityLow      = "Low"
	SeverityMedium   = "Medium"
	SeverityHigh     = "High"
	SeverityCritical = "Critical"
)

// Audit outcomes
const (
	AuditStatusSuccess = "Success"
	AuditStatusFailed  = "Failed"
)

// AuditLog records an admin mutation.
type AuditLog struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	AdminID   *uint     `gorm:"index" json:"admin_id,omitempty"`
	Action    string    `gorm:"not null;index" json:"action"`
	Entity    string    `gorm:"not null;index" json:"entity"`
	EntityID  string    `gorm:"index" json:"entity_id,omitempty"`
	OldData   JSON      `gorm:"type:jsonb" json:"old_data,omitempty"`
	NewData   JSON      `gorm:"type:jsonb" json:"new_data,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	Status    string    `gorm:"not null;default:'Success'" json:"status"`
	Severity  string    `gorm:"not null;default:'Low';index" json:"severity"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// AuditFilter narrows audit listings.
type AuditFilter struct {
	AdminID  *uint
	Action   string
	Entity   string
	EntityID string
	Severity string
	From     *time.Time
	To       *time.Time
}
