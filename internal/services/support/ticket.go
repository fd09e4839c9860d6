package support

import (
	"context"

	apperrors "iprofit/internal/errors"
	"iprofit/internal/models"
	"iprofit/internal/repositories"
	"iprofit/internal/services/audit"
	"iprofit/internal/utils"

	"go.uber.org/zap"
)

// Open creates a ticket with the user's first message.
func (s *service) Open(ctx context.Context, userID uint, req OpenRequest) (*models.SupportTicket, error) {
	priority := req.Priority
	if priority == "" {
		priority = models.TicketPriorityMedium
	}

	var t *models.SupportTicket
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		if _, err := tx.Users().GetByID(ctx, userID); err != nil {
			return err
		}
		var err error
		for i := 0; i < ticketNumberAttempts; i++ {
			t = &models.SupportTicket{
				TicketNumber: utils.NewTicketNumber(s.now()),
				UserID:       userID,
				Subject:      req.Subject,
				Category:     req.Category,
				Priority:     priority,
				Status:       models.TicketStatusOpen,
			}
			if err = tx.Support().CreateTicket(ctx, t); !apperrors.Is(err, repositories.ErrDuplicate) {
				break
			}
		}
		if err != nil {
			return err
		}
		msg := models.TicketMessage{TicketID: t.ID, SenderID: userID, SenderType: models.SenderUser, Message: req.Message}
		if err := tx.Support().AddMessage(ctx, &msg); err != nil {
			return err
		}
		t.Messages = []models.TicketMessage{msg}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("ticket opened",
		zap.String("ticket", t.TicketNumber),
		zap.Uint("user_id", userID),
		zap.String("priority", t.Priority))
	return t, nil
}

func (s *service) List(ctx context.Context, filter models.TicketFilter, offset, limit int) ([]models.SupportTicket, int64, error) {
	return s.store.Support().ListTickets(ctx, filter, offset, limit)
}

func (s *service) Get(ctx context.Context, id uint) (*models.SupportTicket, error) {
	return s.store.Support().GetTicket(ctx, id)
}

// Reply adds an admin message. An Open ticket moves to InProgress.
func (s *service) Reply(ctx context.Context, actor audit.Actor, id uint, req ReplyRequest) (*models.TicketMessage, error) {
	var msg *models.TicketMessage
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		t, err := tx.Support().GetTicket(ctx, id)
		if err != nil {
			return err
		}
		if t.Status == models.TicketStatusClosed {
			return ErrTicketClosed
		}
		var sender uint
		if actor.AdminID != nil {
			sender = *actor.AdminID
		}
		msg = &models.TicketMessage{TicketID: id, SenderID: sender, SenderType: models.SenderAdmin, Message: req.Message}
		if err := tx.Support().AddMessage(ctx, msg); err != nil {
			return err
		}
		if t.Status == models.TicketStatusOpen {
			t.Status = models.TicketStatusInProgress
			if t.AssignedTo == nil {
				t.AssignedTo = actor.AdminID
			}
		}
		if err := tx.Support().UpdateTicket(ctx, t); err != nil {
			return err
		}
		return audit.Record(ctx, tx.Audit(), actor, audit.Entry{
			Action:   "ticket.replied",
			Entity:   "support_ticket",
			EntityID: id,
			NewData:  map[string]interface{}{"status": t.Status},
		})
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// UserReply adds a message from the ticket owner. A Resolved ticket reopens.
func (s *service) UserReply(ctx context.Context, userID, id uint, req ReplyRequest) (*models.TicketMessage, error) {
	var msg *models.TicketMessage
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		t, err := tx.Support().GetTicket(ctx, id)
		if err != nil {
			return err
		}
		if t.UserID != userID {
			return ErrNotOwner
		}
		if t.Status == models.TicketStatusClosed {
			return ErrTicketClosed
		}
		msg = &models.TicketMessage{TicketID: id, SenderID: userID, SenderType: models.SenderUser, Message: req.Message}
		if err := tx.Support().AddMessage(ctx, msg); err != nil {
			return err
		}
		if t.Status == models.TicketStatusResolved {
			t.Status = models.TicketStatusOpen
		}
		return tx.Support().UpdateTicket(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *service) Update(ctx context.Context, actor audit.Actor, id uint, req UpdateRequest) (*models.SupportTicket, error) {
	var t *models.SupportTicket
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		var err error
		if t, err = tx.Support().GetTicket(ctx, id); err != nil {
			return err
		}
		old := map[string]interface{}{"status": t.Status, "priority": t.Priority, "assigned_to": t.AssignedTo}
		if req.AssignedTo != nil {
			if _, err := tx.Admins().GetByID(ctx, *req.AssignedTo); err != nil {
				return err
			}
			t.AssignedTo = req.AssignedTo
		}
		if req.Priority != nil {
			t.Priority = *req.Priority
		}
		if req.Status != nil {
			t.Status = *req.Status
		}
		if err := tx.Support().UpdateTicket(ctx, t); err != nil {
			return err
		}
		return audit.Record(ctx, tx.Audit(), actor, audit.Entry{
			Action:   "ticket.updated",
			Entity:   "support_ticket",
			EntityID: id,
			OldData:  old,
			NewData:  map[string]interface{}{"status": t.Status, "priority": t.Priority, "assigned_to": t.AssignedTo},
		})
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}
