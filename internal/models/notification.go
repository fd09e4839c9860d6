package models

import "gorm.io/gorm"

// Notification types
const (
	NotificationTypeInfo    = "info"
	NotificationTypeSuccess = "success"
	NotificationTypeWarning = "warning"
	NotificationTypeError   = "error"
	NotificationTypeSystem  = "system"
)

// Delivery channels
const (
	ChannelInApp = "in_app"
	ChannelEmail = "email"
	ChannelBoth  = "both"
)

// Notification is an in-app message; a nil UserID is a broadcast.
type Notification struct {
	gorm.Model
	UserID  *uint  `gorm:"index" json:"user_id,omitempty"`
	Title   string `gorm:"not null" json:"title"`
	Message string `gorm:"not null" json:"message"`
	Type    string `gorm:"not null;default:'info'" json:"type"`
	Channel string `gorm:"not null;default:'in_app'" json:"channel"`
	Read    bool   `gorm:"not null;default:false" json:"read"`
	SentBy  *uint  `json:"sent_by,omitempty"`
}

// NotificationFilter narrows notification listings.
type NotificationFilter struct {
	UserID *uint
	Type   string
	Read   *bool
}
