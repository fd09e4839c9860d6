package support

import (
	"context"
	"strings"
	"testing"

	apperrors "iprofit/internal/errors"
	"iprofit/internal/models"
	"iprofit/internal/repositories"
	"iprofit/internal/repositories/mocks"
	"iprofit/internal/services/audit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var adminID = uint(1)

func ticket(status string) *models.SupportTicket {
	t := &models.SupportTicket{TicketNumber: "TKT-1", UserID: 7, Subject: "Help", Status: status, Priority: models.TicketPriorityMedium}
	t.ID = 12
	return t
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewStore()
	svc := NewService(store, nil)

	u := &models.User{Name: "Jane"}
	u.ID = 7
	store.UserRepo.On("GetByID", ctx, uint(7)).Return(u, nil)
	store.SupportRepo.On("CreateTicket", ctx, mock.Anything).Return(repositories.ErrDuplicate).Once()
	store.SupportRepo.On("CreateTicket", ctx, mock.MatchedBy(func(t *models.SupportTicket) bool {
		return strings.HasPrefix(t.TicketNumber, "TKT-") && t.Status == models.TicketStatusOpen
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.SupportTicket).ID = 12
	}).Return(nil).Once()
	store.SupportRepo.On("AddMessage", ctx, mock.MatchedBy(func(m *models.TicketMessage) bool {
		return m.TicketID == 12 && m.SenderType == models.SenderUser
	})).Return(nil)

	got, err := svc.Open(ctx, 7, OpenRequest{Subject: "Withdrawal stuck", Message: "Please check"})
	require.NoError(t, err)
	assert.Equal(t, models.TicketPriorityMedium, got.Priority)
	assert.Len(t, got.Messages, 1)
	store.AssertExpectations(t)
}

func TestReply(t *testing.T) {
	ctx := context.Background()

	t.Run("admin reply starts progress and assigns", func(t *testing.T) {
		store := mocks.NewStore()
		tk := ticket(models.TicketStatusOpen)
		store.SupportRepo.On("GetTicket", ctx, uint(12)).Return(tk, nil)
		store.SupportRepo.On("AddMessage", ctx, mock.MatchedBy(func(m *models.TicketMessage) bool {
			return m.SenderType == models.SenderAdmin && m.SenderID == adminID
		})).Return(nil)
		store.SupportRepo.On("UpdateTicket", ctx, tk).Return(nil)
		store.AuditRepo.On("Create", ctx, mock.Anything).Return(nil)

		_, err := NewService(store, nil).Reply(ctx, audit.Actor{AdminID: &adminID}, 12, ReplyRequest{Message: "Looking"})
		require.NoError(t, err)
		assert.Equal(t, models.TicketStatusInProgress, tk.Status)
		assert.Equal(t, &adminID, tk.AssignedTo)
	})

	t.Run("closed ticket", func(t *testing.T) {
		store := mocks.NewStore()
		store.SupportRepo.On("GetTicket", ctx, uint(12)).Return(ticket(models.TicketStatusClosed), nil)

		_, err := NewService(store, nil).Reply(ctx, audit.Actor{AdminID: &adminID}, 12, ReplyRequest{Message: "x"})
		assert.ErrorIs(t, err, ErrTicketClosed)
	})

	t.Run("user reply reopens resolved ticket", func(t *testing.T) {
		store := mocks.NewStore()
		tk := ticket(models.TicketStatusResolved)
		store.SupportRepo.On("GetTicket", ctx, uint(12)).Return(tk, nil)
		store.SupportRepo.On("AddMessage", ctx, mock.Anything).Return(nil)
		store.SupportRepo.On("UpdateTicket", ctx, tk).Return(nil)

		_, err := NewService(store, nil).UserReply(ctx, 7, 12, ReplyRequest{Message: "still broken"})
		require.NoError(t, err)
		assert.Equal(t, models.TicketStatusOpen, tk.Status)
	})

	t.Run("user cannot reply to others", func(t *testing.T) {
		store := mocks.NewStore()
		store.SupportRepo.On("GetTicket", ctx, uint(12)).Return(ticket(models.TicketStatusOpen), nil)

		_, err := NewService(store, nil).UserReply(ctx, 8, 12, ReplyRequest{Message: "x"})
		assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
	})
}

func TestUpdateAssignsKnownAdmin(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewStore()
	tk := ticket(models.TicketStatusOpen)
	assignee := uint(4)
	status := models.TicketStatusResolved

	store.SupportRepo.On("GetTicket", ctx, uint(12)).Return(tk, nil)
	store.AdminRepo.On("GetByID", ctx, assignee).Return(&models.Admin{}, nil)
	store.SupportRepo.On("UpdateTicket", ctx, tk).Return(nil)
	store.AuditRepo.On("Create", ctx, mock.Anything).Return(nil)

	got, err := NewService(store, nil).Update(ctx, audit.Actor{AdminID: &adminID}, 12, UpdateRequest{Status: &status, AssignedTo: &assignee})
	require.NoError(t, err)
	assert.Equal(t, status, got.Status)
	assert.Equal(t, &assignee, got.AssignedTo)
	store.AssertExpectations(t)
}

func TestFAQCreateDefaultsActive(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewStore()
	store.SupportRepo.On("CreateFAQ", ctx, mock.MatchedBy(func(f *models.FAQ) bool { return f.IsActive })).Return(nil)
	store.AuditRepo.On("Create", ctx, mock.Anything).Return(nil)

	f, err := NewService(store, nil).CreateFAQ(ctx, audit.Actor{}, FAQRequest{Question: "Fees?", Answer: "2%"})
	require.NoError(t, err)
	assert.True(t, f.IsActive)
}
