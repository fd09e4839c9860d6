package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Task statuses
const (
	TaskStatusActive   = "Active"
	TaskStatusInactive = "Inactive"
	TaskStatusPaused   = "Paused"
)

// Submission statuses
const (
	SubmissionStatusPending  = "Pending"
	SubmissionStatusApproved = "Approved"
	SubmissionStatusRejected = "Rejected"
)

// Task is a rewarded action users can complete.
type Task struct {
	gorm.Model
	Title          string          `gorm:"not null" json:"title"`
	Description    string          `json:"description"`
	Reward         decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"reward"`
	Category       string          `gorm:"index" json:"category"`
	Difficulty     string          `gorm:"default:'Easy'" json:"difficulty"`
	EstimatedTime  int             `json:"estimated_time"`
	Instructions   pq.StringArray  `gorm:"type:text[]" json:"instructions"`
	RequiredProof  pq.StringArray  `gorm:"type:text[]" json:"required_proof"`
	MaxCompletions int             `gorm:"not null;default:0" json:"max_completions"`
	Completions    int             `gorm:"not null;default:0" json:"completions"`
	ValidFrom      *time.Time      `json:"valid_from,omitempty"`
	ValidUntil     *time.Time      `json:"valid_until,omitempty"`
	Status         string          `gorm:"not null;default:'Active';index" json:"status"`
}

// IsOpen reports whether the task accepts submissions at now.
func (t *Task) IsOpen(now time.Time) bool {
	if t.Status != TaskStatusActive {
		return false
	}
	if t.ValidFrom != nil && now.Before(*t.ValidFrom) {
		return false
	}
	if t.ValidUntil != nil && now.After(*t.ValidUntil) {
		return false
	}
	return !t.Full()
}

// Full reports whether the completion cap has been reached. Zero means unlimited.
func (t *Task) Full() bool {
	return t.MaxCompletions > 0 && t.Completions >= t.MaxCompletions
}

// TaskSubmission is a user's proof of completing a task.
type TaskSubmission struct {
	gorm.Model
	TaskID              uint   `gorm:"not null;uniqueIndex:idx_task_user" json:"task_id"`
	Task                *Task  `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	UserID              uint   `gorm:"not null;uniqueIndex:idx_task_user" json:"user_id"`
	User                *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Proof               JSON   `gorm:"type:jsonb" json:"proof"`
	Status              string `gorm:"not null;default:'Pending';index" json:"status"`
	ReviewedBy          *uint  `json:"reviewed_by,omitempty"`
	ReviewNote          string `json:"review_note,omitempty"`
	RewardTransactionID *uint  `json:"reward_transaction_id,omitempty"`
}

// TaskFilter narrows task listings.
type TaskFilter struct {
	Status   string
	Category string
	Search   string
}
