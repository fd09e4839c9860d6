package models

import "time"

// Setting value types
const (
	SettingTypeString  = "string"
	SettingTypeNumber  = "number"
	SettingTypeBoolean = "boolean"
	SettingTypeJSON    = "json"
)

// Setting is one business-rule parameter.
type Setting struct {
	Key         string    `gorm:"primaryKey" json:"key"`
	Value       string    `gorm:"not null" json:"value"`
	Type        string    `gorm:"not null;default:'string'" json:"type"`
	Category    string    `gorm:"index" json:"category"`
	Description string    `json:"description,omitempty"`
	UpdatedBy   *uint     `json:"updated_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
