package models

import "gorm.io/gorm"

// Ticket priorities
const (
	TicketPriorityLow    = "Low"
	TicketPriorityMedium = "Medium"
	TicketPriorityHigh   = "High"
	TicketPriorityUrgent = "Urgent"
)

// Ticket statuses
const (
	TicketStatusOpen       = "Open"
	TicketStatusInProgress = "InProgress"
	TicketStatusResolved   = "Resolved"
	TicketStatusClosed     = "Closed"
)

// Message senders
const (
	SenderUser  = "user"
	SenderAdmin = "admin"
)

// SupportTicket is a user support request.
type SupportTicket struct {
	gorm.Model
	TicketNumber string          `gorm:"uniqueIndex;not null" json:"ticket_number"`
	UserID       uint            `gorm:"not null;index" json:"user_id"`
	User         *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Subject      string          `gorm:"not null" json:"subject"`
	Category     string          `gorm:"index" json:"category"`
	Priority     string          `gorm:"not null;default:'Medium'" json:"priority"`
	Status       string          `gorm:"not null;default:'Open';index" json:"status"`
	AssignedTo   *uint           `gorm:"index" json:"assigned_to,omitempty"`
	Messages     []TicketMessage `gorm:"foreignKey:TicketID" json:"messages,omitempty"`
}

// TicketMessage is one message in a ticket thread.
type TicketMessage struct {
	gorm.Model
	TicketID   uint   `gorm:"not null;index" json:"ticket_id"`
	SenderID   uint   `gorm:"not null" json:"sender_id"`
	SenderType string `gorm:"not null" json:"sender_type"`
	Message    string `gorm:"type:text;not null" json:"message"`
}

type FAQ struct {
	gorm.Model
	Question string `gorm:"not null" json:"question"`
	Answer   string `gorm:"type:text;not null" json:"answer"`
	Category string `gorm:"index" json:"category"`
	Order    int    `gorm:"column:sort_order;not null;default:0" json:"order"`
	IsActive bool   `gorm:"not null;default:true" json:"is_active"`
}

// TicketFilter narrows ticket listings.
type TicketFilter struct {
	UserID     *uint
	Status     string
	Priority   string
	Category   string
	AssignedTo *uint
	Search     string
}
