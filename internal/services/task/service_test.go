package task

import (
	"context"
	"testing"
	"time"

	apperrors "iprofit/internal/errors"
	"iprofit/internal/models"
	"iprofit/internal/repositories"
	"iprofit/internal/repositories/mocks"
	"iprofit/internal/services/audit"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var adminID = uint(1)

func actor() audit.Actor { return audit.Actor{AdminID: &adminID} }

func openTask() *models.Task {
	t := &models.Task{
		Title:         "Follow us",
		Reward:        decimal.NewFromInt(15),
		Status:        models.TaskStatusActive,
		RequiredProof: pq.StringArray{"screenshot"},
	}
	t.ID = 3
	return t
}

func pendingSubmission() *models.TaskSubmission {
	s := &models.TaskSubmission{TaskID: 3, UserID: 7, Status: models.SubmissionStatusPending}
	s.ID = 30
	return s
}

func newService(store *mocks.Store) *service {
	svc := NewService(store, nil).(*service)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()
	proof := models.JSON{"screenshot": "https://cdn.example.com/1.png"}

	t.Run("accepts proof", func(t *testing.T) {
		store := mocks.NewStore()
		store.TaskRepo.On("GetByID", ctx, uint(3)).Return(openTask(), nil)
		store.TaskRepo.On("HasSubmitted", ctx, uint(3), uint(7)).Return(false, nil)
		store.TaskRepo.On("CreateSubmission", ctx, mock.AnythingOfType("*models.TaskSubmission")).Return(nil)

		sub, err := newService(store).Submit(ctx, 7, 3, SubmitRequest{Proof: proof})
		require.NoError(t, err)
		assert.Equal(t, models.SubmissionStatusPending, sub.Status)
		store.AssertExpectations(t)
	})

	t.Run("only once", func(t *testing.T) {
		store := mocks.NewStore()
		store.TaskRepo.On("GetByID", ctx, uint(3)).Return(openTask(), nil)
		store.TaskRepo.On("HasSubmitted", ctx, uint(3), uint(7)).Return(true, nil)

		_, err := newService(store).Submit(ctx, 7, 3, SubmitRequest{Proof: proof})
		assert.ErrorIs(t, err, ErrAlreadySubmitted)
	})

	t.Run("racing duplicate maps to conflict", func(t *testing.T) {
		store := mocks.NewStore()
		store.TaskRepo.On("GetByID", ctx, uint(3)).Return(openTask(), nil)
		store.TaskRepo.On("HasSubmitted", ctx, uint(3), uint(7)).Return(false, nil)
		store.TaskRepo.On("CreateSubmission", ctx, mock.Anything).Return(repositories.ErrDuplicate)

		_, err := newService(store).Submit(ctx, 7, 3, SubmitRequest{Proof: proof})
		assert.ErrorIs(t, err, ErrAlreadySubmitted)
	})

	t.Run("closed task", func(t *testing.T) {
		store := mocks.NewStore()
		task := openTask()
		task.MaxCompletions, task.Completions = 5, 5
		store.TaskRepo.On("GetByID", ctx, uint(3)).Return(task, nil)

		_, err := newService(store).Submit(ctx, 7, 3, SubmitRequest{Proof: proof})
		assert.ErrorIs(t, err, ErrTaskClosed)
	})

	t.Run("missing proof field", func(t *testing.T) {
		store := mocks.NewStore()
		store.TaskRepo.On("GetByID", ctx, uint(3)).Return(openTask(), nil)
		store.TaskRepo.On("HasSubmitted", ctx, uint(3), uint(7)).Return(false, nil)

		_, err := newService(store).Submit(ctx, 7, 3, SubmitRequest{Proof: models.JSON{"link": "x"}})
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
	})
}

func TestReview(t *testing.T) {
	ctx := context.Background()

	t.Run("approve pays reward", func(t *testing.T) {
		store := mocks.NewStore()
		sub := pendingSubmission()
		store.TaskRepo.On("GetSubmissionForUpdate", ctx, uint(30)).Return(sub, nil)
		store.TaskRepo.On("GetByID", ctx, uint(3)).Return(openTask(), nil)
		store.TaskRepo.On("IncrementCompletions", ctx, uint(3)).Return(nil)
		store.TransactionRepo.On("Create", ctx, mock.MatchedBy(func(tx *models.Transaction) bool {
			return tx.Type == models.TransactionTypeTaskReward && tx.UserID == 7 && tx.Amount.Equal(decimal.NewFromInt(15))
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*models.Transaction).ID = 88
		}).Return(nil)
		store.UserRepo.On("AdjustBalance", ctx, uint(7), mock.MatchedBy(func(d decimal.Decimal) bool {
			return d.Equal(decimal.NewFromInt(15))
		})).Return(nil)
		store.TaskRepo.On("UpdateSubmission", ctx, sub).Return(nil)
		store.AuditRepo.On("Create", ctx, mock.Anything).Return(nil)

		got, err := newService(store).Review(ctx, actor(), 30, ReviewRequest{Action: ActionApprove})
		require.NoError(t, err)
		assert.Equal(t, models.SubmissionStatusApproved, got.Status)
		assert.Equal(t, uint(88), *got.RewardTransactionID)
		store.AssertExpectations(t)
	})

	t.Run("cap reached", func(t *testing.T) {
		store := mocks.NewStore()
		store.TaskRepo.On("GetSubmissionForUpdate", ctx, uint(30)).Return(pendingSubmission(), nil)
		store.TaskRepo.On("GetByID", ctx, uint(3)).Return(openTask(), nil)
		store.TaskRepo.On("IncrementCompletions", ctx, uint(3)).Return(repositories.ErrCompletionCapReached)

		_, err := newService(store).Review(ctx, actor(), 30, ReviewRequest{Action: ActionApprove})
		assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
		store.TransactionRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("reject records note", func(t *testing.T) {
		store := mocks.NewStore()
		sub := pendingSubmission()
		store.TaskRepo.On("GetSubmissionForUpdate", ctx, uint(30)).Return(sub, nil)
		store.TaskRepo.On("UpdateSubmission", ctx, sub).Return(nil)
		store.AuditRepo.On("Create", ctx, mock.Anything).Return(nil)

		got, err := newService(store).Review(ctx, actor(), 30, ReviewRequest{Action: ActionReject, Note: "blurry"})
		require.NoError(t, err)
		assert.Equal(t, models.SubmissionStatusRejected, got.Status)
		assert.Equal(t, "blurry", got.ReviewNote)
	})

	t.Run("already reviewed", func(t *testing.T) {
		store := mocks.NewStore()
		sub := pendingSubmission()
		sub.Status = models.SubmissionStatusApproved
		store.TaskRepo.On("GetSubmissionForUpdate", ctx, uint(30)).Return(sub, nil)

		_, err := newService(store).Review(ctx, actor(), 30, ReviewRequest{Action: ActionApprove})
		assert.ErrorIs(t, err, ErrNotPending)
	})
}

func TestCreateRejectsBackwardsWindow(t *testing.T) {
	from := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	until := from.Add(-time.Hour)
	_, err := newService(mocks.NewStore()).Create(context.Background(), actor(), Request{
		Title: "x", Reward: decimal.NewFromInt(1), ValidFrom: &from, ValidUntil: &until,
	})
	assert.ErrorIs(t, err, ErrInvalidWindow)
}
