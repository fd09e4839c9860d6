// Package support runs the help desk: user tickets, their message threads and
// the FAQ.
package support

import (
	"context"
	"time"

	apperrors "iprofit/internal/errors"
	"iprofit/internal/logger"
	"iprofit/internal/models"
	"iprofit/internal/repositories"
	"iprofit/internal/services/audit"

	"go.uber.org/zap"
)

const ticketNumberAttempts = 3

var (
	ErrTicketClosed = apperrors.ErrInvalidTransition.WithMessage("ticket is closed")
	ErrNotOwner     = apperrors.ErrForbidden.WithMessage("ticket belongs to another user")
)

type OpenRequest struct {
	Subject  string `json:"subject" validate:"required,max=200"`
	Category string `json:"category,omitempty" validate:"max=100"`
	Priority string `json:"priority,omitempty" validate:"omitempty,oneof=Low Medium High Urgent"`
	Message  string `json:"message" validate:"required,max=5000"`
}

type ReplyRequest struct {
	Message string `json:"message" validate:"required,max=5000"`
}

// UpdateRequest changes ticket state. Nil fields are left untouched.
type UpdateRequest struct {
	Status     *string `json:"status,omitempty" validate:"omitempty,oneof=Open InProgress Resolved Closed"`
	Priority   *string `json:"priority,omitempty" validate:"omitempty,oneof=Low Medium High Urgent"`
	AssignedTo *uint   `json:"assigned_to,omitempty"`
}

type FAQRequest struct {
	Question string `json:"question" validate:"required,max=500"`
	Answer   string `json:"answer" validate:"required,max=10000"`
	Category string `json:"category,omitempty" validate:"max=100"`
	Order    int    `json:"order"`
	IsActive *bool  `json:"is_active,omitempty"`
}

type Service interface {
	Open(ctx context.Context, userID uint, req OpenRequest) (*models.SupportTicket, error)
	List(ctx context.Context, filter models.TicketFilter, offset, limit int) ([]models.SupportTicket, int64, error)
	Get(ctx context.Context, id uint) (*models.SupportTicket, error)
	Reply(ctx context.Context, actor audit.Actor, id uint, req ReplyRequest) (*models.TicketMessage, error)
	UserReply(ctx context.Context, userID, id uint, req ReplyRequest) (*models.TicketMessage, error)
	Update(ctx context.Context, actor audit.Actor, id uint, req UpdateRequest) (*models.SupportTicket, error)

	FAQs(ctx context.Context, category string, activeOnly bool) ([]models.FAQ, error)
	CreateFAQ(ctx context.Context, actor audit.Actor, req FAQRequest) (*models.FAQ, error)
	UpdateFAQ(ctx context.Context, actor audit.Actor, id uint, req FAQRequest) (*models.FAQ, error)
	DeleteFAQ(ctx context.Context, actor audit.Actor, id uint) error
}

type service struct {
	store repositories.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewService(store repositories.Store, log *zap.Logger) Service {
	if store == nil {
		panic("store is required")
	}
	return &service{store: store, log: logger.OrNop(log), now: time.Now}
}
