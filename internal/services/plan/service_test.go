package plan

import (
	"context"
	"testing"

	apperrors "iprofit/internal/errors"
	"iprofit/internal/models"
	"iprofit/internal/repositories"
	"iprofit/internal/repositories/mocks"
	"iprofit/internal/services/audit"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var adminID = uint(1)

func actor() audit.Actor { return audit.Actor{AdminID: &adminID} }

func gold(active bool) *models.Plan {
	p := &models.Plan{Name: "Gold", IsActive: active}
	p.ID = 2
	return p
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewStore()
	svc := NewService(store, nil)

	store.PlanRepo.On("Create", ctx, mock.MatchedBy(func(p *models.Plan) bool {
		return p.Name == "Gold" && p.IsActive && len(p.Features) == 2
	})).Return(nil)
	store.AuditRepo.On("Create", ctx, mock.MatchedBy(func(l *models.AuditLog) bool {
		return l.Action == "plan.created"
	})).Return(nil)

	p, err := svc.Create(ctx, actor(), Request{
		Name:          "Gold",
		Price:         decimal.NewFromInt(99),
		ProfitPercent: decimal.NewFromInt(3),
		Features:      []string{"priority support", "higher limits"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Gold", p.Name)
	store.AssertExpectations(t)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("refused while users assigned", func(t *testing.T) {
		store := mocks.NewStore()
		svc := NewService(store, nil)
		store.PlanRepo.On("GetByID", ctx, uint(2)).Return(gold(true), nil)
		store.UserRepo.On("CountByPlan", ctx, uint(2)).Return(int64(4), nil)

		err := svc.Delete(ctx, actor(), 2)
		assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
		assert.Contains(t, err.Error(), "4 assigned users")
		store.PlanRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("deletes empty plan", func(t *testing.T) {
		store := mocks.NewStore()
		svc := NewService(store, nil)
		store.PlanRepo.On("GetByID", ctx, uint(2)).Return(gold(true), nil)
		store.UserRepo.On("CountByPlan", ctx, uint(2)).Return(int64(0), nil)
		store.PlanRepo.On("Delete", ctx, uint(2)).Return(nil)
		store.AuditRepo.On("Create", ctx, mock.Anything).Return(nil)

		require.NoError(t, svc.Delete(ctx, actor(), 2))
		store.AssertExpectations(t)
	})

	t.Run("missing plan", func(t *testing.T) {
		store := mocks.NewStore()
		svc := NewService(store, nil)
		store.PlanRepo.On("GetByID", ctx, uint(2)).Return(nil, repositories.ErrPlanNotFound)

		err := svc.Delete(ctx, actor(), 2)
		assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	})
}

func TestAssign(t *testing.T) {
	ctx := context.Background()

	t.Run("dedupes ids", func(t *testing.T) {
		store := mocks.NewStore()
		svc := NewService(store, nil)
		store.PlanRepo.On("GetByID", ctx, uint(2)).Return(gold(true), nil)
		store.UserRepo.On("AssignPlan", ctx, uint(2), []uint{5, 6}).Return(int64(2), nil)
		store.AuditRepo.On("Create", ctx, mock.Anything).Return(nil)

		n, err := svc.Assign(ctx, actor(), 2, AssignRequest{UserIDs: []uint{5, 6, 5}})
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		store.AssertExpectations(t)
	})

	t.Run("inactive plan", func(t *testing.T) {
		store := mocks.NewStore()
		svc := NewService(store, nil)
		store.PlanRepo.On("GetByID", ctx, uint(2)).Return(gold(false), nil)

		_, err := svc.Assign(ctx, actor(), 2, AssignRequest{UserIDs: []uint{5}})
		assert.ErrorIs(t, err, ErrPlanInactive)
	})

	t.Run("empty list", func(t *testing.T) {
		svc := NewService(mocks.NewStore(), nil)
		_, err := svc.Assign(ctx, actor(), 2, AssignRequest{})
		assert.ErrorIs(t, err, ErrNoUsers)
	})
}

func TestListCountsUsers(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewStore()
	svc := NewService(store, nil)
	store.PlanRepo.On("List", ctx, true).Return([]models.Plan{*gold(true)}, nil)
	store.UserRepo.On("CountByPlan", ctx, uint(2)).Return(int64(9), nil)

	plans, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, int64(9), plans[0].UserCount)
}
