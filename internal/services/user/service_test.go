package user

import (
	"context"
	"errors"
	"testing"

	apperrors "iprofit/internal/errors"
	"iprofit/internal/models"
	"iprofit/internal/repositories"
	"iprofit/internal/repositories/mocks"
	"iprofit/internal/services/audit"
	"iprofit/internal/services/email"
	"iprofit/internal/services/email/emailtest"
	"iprofit/internal/services/events"
	"iprofit/internal/services/events/eventstest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var adminID = uint(1)

func actor() audit.Actor { return audit.Actor{AdminID: &adminID, IP: "127.0.0.1"} }

func newUser(id uint) *models.User {
	u := &models.User{
		Name:      "Jane",
		Email:     "jane@example.com",
		Status:    models.UserStatusActive,
		KYCStatus: models.KYCStatusPending,
		Balance:   decimal.NewFromInt(100),
	}
	u.ID = id
	return u
}

type fixture struct {
	store  *mocks.Store
	mail   *emailtest.Recorder
	events *eventstest.Recorder
	svc    Service
}

func setup() *fixture {
	f := &fixture{store: mocks.NewStore(), mail: emailtest.NewRecorder(), events: eventstest.NewRecorder()}
	f.svc = NewService(f.store, f.mail, f.events, nil)
	return f
}

func TestReviewKYC(t *testing.T) {
	ctx := context.Background()

	t.Run("approve sends email and event", func(t *testing.T) {
		f := setup()
		f.store.UserRepo.On("GetByIDForUpdate", ctx, uint(4)).Return(newUser(4), nil)
		f.store.UserRepo.On("UpdateFields", ctx, uint(4), mock.MatchedBy(func(m map[string]interface{}) bool {
			return m["kyc_status"] == models.KYCStatusApproved
		})).Return(nil)
		f.store.AuditRepo.On("Create", ctx, mock.MatchedBy(func(l *models.AuditLog) bool {
			return l.Action == "user.kyc_approved" && l.EntityID == "4"
		})).Return(nil)

		u, err := f.svc.ReviewKYC(ctx, actor(), 4, KYCReviewRequest{Action: "approve"})
		require.NoError(t, err)
		assert.Equal(t, models.KYCStatusApproved, u.KYCStatus)
		assert.Equal(t, []string{email.TemplateKYCApproved}, f.mail.Templates())
		assert.Equal(t, []string{events.UserKYCReviewed}, f.events.Subjects())
		f.store.AssertExpectations(t)
	})

	t.Run("reject requires a reason", func(t *testing.T) {
		f := setup()
		_, err := f.svc.ReviewKYC(ctx, actor(), 4, KYCReviewRequest{Action: "reject"})
		assert.ErrorIs(t, err, ErrReasonRequired)
		assert.Zero(t, f.store.TxCount)
	})

	t.Run("already reviewed", func(t *testing.T) {
		f := setup()
		u := newUser(4)
		u.KYCStatus = models.KYCStatusApproved
		f.store.UserRepo.On("GetByIDForUpdate", ctx, uint(4)).Return(u, nil)

		_, err := f.svc.ReviewKYC(ctx, actor(), 4, KYCReviewRequest{Action: "reject", Reason: "blurry"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
		assert.Empty(t, f.mail.Messages())
	})
}

func TestSetStatus_BanRevokesSessions(t *testing.T) {
	ctx := context.Background()
	f := setup()
	f.store.UserRepo.On("GetByIDForUpdate", ctx, uint(4)).Return(newUser(4), nil)
	f.store.UserRepo.On("UpdateFields", ctx, uint(4), map[string]interface{}{"status": models.UserStatusBanned}).Return(nil)
	f.store.UserRepo.On("IncrementTokenVersion", ctx, uint(4)).Return(nil)
	f.store.AuditRepo.On("Create", ctx, mock.MatchedBy(func(l *models.AuditLog) bool {
		return l.Severity == models.SeverityHigh
	})).Return(nil)

	u, err := f.svc.SetStatus(ctx, actor(), 4, StatusRequest{Status: models.UserStatusBanned, Reason: "fraud"})
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusBanned, u.Status)
	assert.Equal(t, []string{events.UserStatusChanged}, f.events.Subjects())
	f.store.AssertExpectations(t)
}

func TestBulk(t *testing.T) {
	ctx := context.Background()

	t.Run("per id results", func(t *testing.T) {
		f := setup()
		f.store.UserRepo.On("GetByIDForUpdate", ctx, uint(1)).Return(newUser(1), nil)
		f.store.UserRepo.On("GetByIDForUpdate", ctx, uint(2)).Return(nil, repositories.ErrUserNotFound)
		f.store.UserRepo.On("UpdateFields", ctx, uint(1), mock.Anything).Return(nil)
		f.store.UserRepo.On("IncrementTokenVersion", ctx, uint(1)).Return(nil)
		f.store.AuditRepo.On("Create", ctx, mock.Anything).Return(nil)

		results, err := f.svc.Bulk(ctx, actor(), BulkRequest{Action: BulkSuspend, IDs: []uint{1, 2, 1}})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.True(t, results[0].Success)
		assert.False(t, results[1].Success)
		assert.Equal(t, "user not found", results[1].Error)
		assert.Equal(t, 2, f.store.TxCount)
	})

	t.Run("too many ids", func(t *testing.T) {
		f := setup()
		ids := make([]uint, 101)
		for i := range ids {
			ids[i] = uint(i + 1)
		}
		_, err := f.svc.Bulk(ctx, actor(), BulkRequest{Action: BulkBan, IDs: ids})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("approve kyc emails each user", func(t *testing.T) {
		f := setup()
		f.store.UserRepo.On("GetByIDForUpdate", ctx, uint(7)).Return(newUser(7), nil)
		f.store.UserRepo.On("UpdateFields", ctx, uint(7), mock.Anything).Return(nil)
		f.store.AuditRepo.On("Create", ctx, mock.Anything).Return(nil)

		results, err := f.svc.Bulk(ctx, actor(), BulkRequest{Action: BulkApproveKYC, IDs: []uint{7}})
		require.NoError(t, err)
		assert.True(t, results[0].Success)
		assert.Equal(t, []string{email.TemplateKYCApproved}, f.mail.Templates())
	})
}

func TestAdjustBalance(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		req       BalanceRequest
		delta     decimal.Decimal
		adjustErr error
		wantErr   error
		wantType  string
	}{
		{
			name:     "bonus credits",
			req:      BalanceRequest{Type: AdjustBonus, Amount: decimal.NewFromInt(25), Reason: "promo"},
			delta:    decimal.NewFromInt(25),
			wantType: models.TransactionTypeBonus,
		},
		{
			name:     "penalty debits",
			req:      BalanceRequest{Type: AdjustPenalty, Amount: decimal.NewFromInt(40), Reason: "chargeback"},
			delta:    decimal.NewFromInt(-40),
			wantType: models.TransactionTypePenalty,
		},
		{
			name:      "penalty cannot overdraw",
			req:       BalanceRequest{Type: AdjustPenalty, Amount: decimal.NewFromInt(400), Reason: "chargeback"},
			delta:     decimal.NewFromInt(-400),
			adjustErr: repositories.ErrInsufficientBalance,
			wantErr:   apperrors.ErrInsufficientBalance,
		},
		{
			name:    "reason required",
			req:     BalanceRequest{Type: AdjustBonus, Amount: decimal.NewFromInt(1)},
			wantErr: ErrReasonRequired,
		},
		{
			name:    "non positive amount",
			req:     BalanceRequest{Type: AdjustBonus, Amount: decimal.Zero, Reason: "x"},
			wantErr: apperrors.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup()
			if !tt.delta.IsZero() {
				f.store.UserRepo.On("GetByIDForUpdate", ctx, uint(3)).Return(newUser(3), nil)
				f.store.UserRepo.On("AdjustBalance", ctx, uint(3), tt.delta).Return(tt.adjustErr)
			}
			if tt.wantErr == nil {
				f.store.TransactionRepo.On("Create", ctx, mock.MatchedBy(func(tx *models.Transaction) bool {
					return tx.Type == tt.wantType && tx.Status == models.TransactionStatusCompleted && tx.Reference != ""
				})).Return(nil)
				f.store.AuditRepo.On("Create", ctx, mock.Anything).Return(nil)
			}

			entry, err := f.svc.AdjustBalance(ctx, actor(), 3, tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				f.store.TransactionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, &adminID, entry.ApprovedBy)
			f.store.AssertExpectations(t)
		})
	}
}

func TestUpdate_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	f := setup()
	newEmail := "taken@example.com"
	f.store.UserRepo.On("GetByIDForUpdate", ctx, uint(2)).Return(newUser(2), nil)
	f.store.UserRepo.On("Update", ctx, mock.Anything).Return(repositories.ErrDuplicate)

	_, err := f.svc.Update(ctx, actor(), 2, UpdateRequest{Email: &newEmail})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestTransactions_ScopesToUser(t *testing.T) {
	ctx := context.Background()
	f := setup()
	f.store.UserRepo.On("GetByID", ctx, uint(8)).Return(newUser(8), nil)
	f.store.TransactionRepo.On("List", ctx, mock.MatchedBy(func(filter models.TransactionFilter) bool {
		return filter.UserID != nil && *filter.UserID == 8 && filter.Type == models.TransactionTypeDeposit
	}), 0, 20).Return([]models.Transaction{{UserID: 8}}, int64(1), nil)

	txs, total, err := f.svc.Transactions(ctx, 8, models.TransactionFilter{Type: models.TransactionTypeDeposit}, 0, 20)
	require.NoError(t, err)
	assert.Len(t, txs, 1)
	assert.Equal(t, int64(1), total)

	f.store.UserRepo.On("GetByID", ctx, uint(9)).Return(nil, errors.New("db down"))
	_, _, err = f.svc.Transactions(ctx, 9, models.TransactionFilter{}, 0, 20)
	assert.Error(t, err)
}

func TestSubmitKYC(t *testing.T) {
	ctx := context.Background()

	t.Run("rejected user resubmits", func(t *testing.T) {
		f := setup()
		u := newUser(8)
		u.KYCStatus = models.KYCStatusRejected
		u.KYCRejectionReason = "blurry"
		f.store.UserRepo.On("GetByIDForUpdate", ctx, uint(8)).Return(u, nil)
		f.store.UserRepo.On("UpdateFields", ctx, uint(8), mock.MatchedBy(func(m map[string]interface{}) bool {
			return m["kyc_status"] == models.KYCStatusPending && m["kyc_rejection_reason"] == ""
		})).Return(nil)

		got, err := f.svc.SubmitKYC(ctx, 8, KYCSubmitRequest{Documents: []string{"https://cdn.example.com/id.png"}})
		require.NoError(t, err)
		assert.Equal(t, models.KYCStatusPending, got.KYCStatus)
		assert.Len(t, got.KYCDocuments, 1)
		f.store.AssertExpectations(t)
	})

	t.Run("approved user cannot resubmit", func(t *testing.T) {
		f := setup()
		u := newUser(9)
		u.KYCStatus = models.KYCStatusApproved
		f.store.UserRepo.On("GetByIDForUpdate", ctx, uint(9)).Return(u, nil)

		_, err := f.svc.SubmitKYC(ctx, 9, KYCSubmitRequest{Documents: []string{"https://cdn.example.com/id.png"}})
		assert.True(t, errors.Is(err, apperrors.ErrInvalidTransition))
		f.store.UserRepo.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
	})
}
