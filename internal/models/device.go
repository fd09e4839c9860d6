package models

import "gorm.io/gorm"

// Device binds a hardware identifier to the user accounts created on it.
type Device struct {
	gorm.Model
	DeviceID  string `gorm:"uniqueIndex:idx_device_user;not null" json:"device_id"`
	UserID    uint   `gorm:"uniqueIndex:idx_device_user;index;not null" json:"user_id"`
	Platform  string `json:"platform,omitempty"`
	LastIP    string `json:"last_ip,omitempty"`
	IsBlocked bool   `gorm:"not null;default:false" json:"is_blocked"`
}
