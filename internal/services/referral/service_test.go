package referral

import (
	"context"
	"testing"

	apperrors "iprofit/internal/errors"
	"iprofit/internal/models"
	"iprofit/internal/repositories/mocks"
	"iprofit/internal/services/audit"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var adminID = uint(1)

func pendingReferral() *models.Referral {
	ref := &models.Referral{ReferrerID: 3, RefereeID: 7, Status: models.ReferralStatusPending}
	ref.ID = 21
	return ref
}

func TestSettle(t *testing.T) {
	ctx := context.Background()
	actor := audit.Actor{AdminID: &adminID}

	t.Run("pay with override", func(t *testing.T) {
		store := mocks.NewStore()
		svc := NewService(store, nil)
		ref := pendingReferral()
		amount := decimal.NewFromInt(25)

		store.ReferralRepo.On("GetForUpdate", ctx, uint(21)).Return(ref, nil)
		store.TransactionRepo.On("Create", ctx, mock.MatchedBy(func(tx *models.Transaction) bool {
			return tx.UserID == 3 && tx.Type == models.TransactionTypeReferralBonus && tx.Status == models.TransactionStatusCompleted
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*models.Transaction).ID = 40
		}).Return(nil)
		store.UserRepo.On("AdjustBalance", ctx, uint(3), mock.MatchedBy(func(d decimal.Decimal) bool {
			return d.Equal(amount)
		})).Return(nil)
		store.ReferralRepo.On("Update", ctx, ref).Return(nil)
		store.AuditRepo.On("Create", ctx, mock.Anything).Return(nil)

		got, err := svc.Settle(ctx, actor, BonusRequest{ReferralID: 21, Action: ActionPay, Amount: &amount})
		require.NoError(t, err)
		assert.Equal(t, models.ReferralStatusPaid, got.Status)
		assert.True(t, got.BonusAmount.Equal(amount))
		assert.Equal(t, uint(40), *got.TransactionID)
		assert.NotNil(t, got.PaidAt)
		store.AssertExpectations(t)
	})

	t.Run("pay without any amount", func(t *testing.T) {
		store := mocks.NewStore()
		svc := NewService(store, nil)
		store.ReferralRepo.On("GetForUpdate", ctx, uint(21)).Return(pendingReferral(), nil)

		_, err := svc.Settle(ctx, actor, BonusRequest{ReferralID: 21, Action: ActionPay})
		assert.ErrorIs(t, err, ErrAmountRequired)
	})

	t.Run("cancel", func(t *testing.T) {
		store := mocks.NewStore()
		svc := NewService(store, nil)
		ref := pendingReferral()
		store.ReferralRepo.On("GetForUpdate", ctx, uint(21)).Return(ref, nil)
		store.ReferralRepo.On("Update", ctx, ref).Return(nil)
		store.AuditRepo.On("Create", ctx, mock.MatchedBy(func(l *models.AuditLog) bool {
			return l.Action == "referral.cancel"
		})).Return(nil)

		got, err := svc.Settle(ctx, actor, BonusRequest{ReferralID: 21, Action: ActionCancel, Reason: "self referral"})
		require.NoError(t, err)
		assert.Equal(t, models.ReferralStatusCancelled, got.Status)
		store.UserRepo.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("already paid", func(t *testing.T) {
		store := mocks.NewStore()
		svc := NewService(store, nil)
		ref := pendingReferral()
		ref.Status = models.ReferralStatusPaid
		store.ReferralRepo.On("GetForUpdate", ctx, uint(21)).Return(ref, nil)

		_, err := svc.Settle(ctx, actor, BonusRequest{ReferralID: 21, Action: ActionCancel, Reason: "x"})
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidTransition))
	})

	t.Run("cancel needs reason", func(t *testing.T) {
		svc := NewService(mocks.NewStore(), nil)
		_, err := svc.Settle(ctx, actor, BonusRequest{ReferralID: 21, Action: ActionCancel})
		assert.ErrorIs(t, err, ErrReasonRequired)
	})
}

func TestBonusesForcesType(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewStore()
	svc := NewService(store, nil)
	store.TransactionRepo.On("List", ctx, models.TransactionFilter{Type: models.TransactionTypeReferralBonus, Status: "Completed"}, 0, 20).
		Return([]models.Transaction{}, int64(0), nil)

	_, total, err := svc.Bonuses(ctx, models.TransactionFilter{Type: "deposit", Status: "Completed"}, 0, 20)
	require.NoError(t, err)
	assert.Zero(t, total)
	store.AssertExpectations(t)
}
