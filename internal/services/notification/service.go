// Package notification sends in-app and email notifications to users.
package notification

import (
	"context"

	apperrors "iprofit/internal/errors"
	"iprofit/internal/logger"
	"iprofit/internal/models"
	"iprofit/internal/repositories"
	"iprofit/internal/services/audit"
	"iprofit/internal/services/email"

	"go.uber.org/zap"
)

// MaxRecipients bounds an explicit recipient list.
const MaxRecipients = 1000

var (
	ErrNoRecipients   = apperrors.ErrInvalidInput.WithMessage("no recipients given")
	ErrTooManyTargets = apperrors.ErrInvalidInput.WithMessage("too many recipients in one request")
)

// SendRequest targets one user, a list of users, or every active user when
// All is set.
type SendRequest struct {
	UserIDs []uint `json:"user_ids,omitempty" validate:"max=1000"`
	All     bool   `json:"all"`
	Title   string `json:"title" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
	Type    string `json:"type,omitempty" validate:"omitempty,oneof=info success warning error system"`
	Channel string `json:"channel,omitempty" validate:"omitempty,oneof=in_app email both"`
}

// SendResult reports how many users were reached.
type SendResult struct {
	Recipients int  `json:"recipients"`
	Emailed    int  `json:"emailed"`
	Broadcast  bool `json:"broadcast"`
}

// Service is the notification service.
type Service interface {
	Send(ctx context.Context, actor audit.Actor, req SendRequest) (*SendResult, error)
	List(ctx context.Context, filter models.NotificationFilter, offset, limit int) ([]models.Notification, int64, error)
}

type service struct {
	store  repositories.Store
	mailer email.Service
	log    *zap.Logger
}

// NewService creates a new notification service.
func NewService(store repositories.Store, mailer email.Service, log *zap.Logger) Service {
	if store == nil {
		panic("store is required")
	}
	if mailer == nil {
		panic("mailer is required")
	}
	return &service{store: store, mailer: mailer, log: logger.OrNop(log)}
}

func (s *service) List(ctx context.Context, filter models.NotificationFilter, offset, limit int) ([]models.Notification, int64, error) {
	return s.store.Notifications().List(ctx, filter, offset, limit)
}

// Send stores the in-app rows and queues emails. A send to all users is
// stored as one broadcast row.
func (s *service) Send(ctx context.Context, actor audit.Actor, req SendRequest) (*SendResult, error) {
	if req.Type == "" {
		req.Type = models.NotificationTypeInfo
	}
	if req.Channel == "" {
		req.Channel = models.ChannelInApp
	}
	inApp := req.Channel != models.ChannelEmail
	byEmail := req.Channel != models.ChannelInApp

	users, err := s.recipients(ctx, req)
	if err != nil {
		return nil, err
	}
	res := &SendResult{Recipients: len(users), Broadcast: req.All}

	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		if inApp {
			if req.All {
				row := &models.Notification{Title: req.Title, Message: req.Message, Type: req.Type, Channel: req.Channel, SentBy: actor.AdminID}
				if err := tx.Notifications().Create(ctx, row); err != nil {
					return err
				}
			} else {
				rows := make([]models.Notification, 0, len(users))
				for i := range users {
					id := users[i].ID
					rows = append(rows, models.Notification{
						UserID:  &id,
						Title:   req.Title,
						Message: req.Message,
						Type:    req.Type,
						Channel: req.Channel,
						SentBy:  actor.AdminID,
					})
				}
				if err := tx.Notifications().CreateBatch(ctx, rows); err != nil {
					return err
				}
			}
		}
		return audit.Record(ctx, tx.Audit(), actor, audit.Entry{
			Action: "notification.sent",
			Entity: "notification",
			NewData: map[string]interface{}{
				"title":      req.Title,
				"channel":    req.Channel,
				"all":        req.All,
				"recipients": len(users),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if byEmail {
		for _, u := range users {
			msg := email.Message{To: u.Email, Template: email.TemplateNotification, Data: map[string]interface{}{
				"Name":    u.Name,
				"Title":   req.Title,
				"Message": req.Message,
			}}
			if err := s.mailer.Enqueue(msg); err != nil {
				s.log.Warn("failed to queue notification email", zap.Uint("user_id", u.ID), zap.Error(err))
				continue
			}
			res.Emailed++
		}
	}

	s.log.Info("notification sent",
		zap.String("channel", req.Channel),
		zap.Int("recipients", res.Recipients),
		zap.Int("emailed", res.Emailed))
	return res, nil
}

func (s *service) recipients(ctx context.Context, req SendRequest) ([]models.User, error) {
	if req.All {
		return s.store.Users().ListActive(ctx)
	}
	if len(req.UserIDs) == 0 {
		return nil, ErrNoRecipients
	}
	if len(req.UserIDs) > MaxRecipients {
		return nil, ErrTooManyTargets
	}

	seen := make(map[uint]struct{}, len(req.UserIDs))
	users := make([]models.User, 0, len(req.UserIDs))
	for _, id := range req.UserIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		u, err := s.store.Users().GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, nil
}
