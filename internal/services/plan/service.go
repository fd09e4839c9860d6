package plan

import (
	"context"

	apperrors "iprofit/internal/errors"
	"iprofit/internal/logger"
	"iprofit/internal/models"
	"iprofit/internal/repositories"
	"iprofit/internal/services/audit"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MaxAssign bounds one assignment request.
const MaxAssign = 500

var (
	ErrPlanInUse    = apperrors.ErrConflict.WithMessage("plan still has assigned users")
	ErrPlanInactive = apperrors.ErrInvalidInput.WithMessage("plan is not active")
	ErrNoUsers      = apperrors.ErrInvalidInput.WithMessage("no users given")
	ErrTooManyUsers = apperrors.ErrInvalidInput.WithMessage("too many users in one request")
)

// Request creates or replaces a plan.
type Request struct {
	Name                 string          `json:"name" validate:"required,min=2,max=100"`
	Description          string          `json:"description,omitempty" validate:"max=1000"`
	Price                decimal.Decimal `json:"price" validate:"gte=0"`
	DepositLimit         decimal.Decimal `json:"deposit_limit" validate:"gte=0"`
	WithdrawalLimit      decimal.Decimal `json:"withdrawal_limit" validate:"gte=0"`
	ProfitPercent        decimal.Decimal `json:"profit_percent" validate:"gte=0,lte=100"`
	MinimumDeposit       decimal.Decimal `json:"minimum_deposit" validate:"gte=0"`
	DailyWithdrawalLimit decimal.Decimal `json:"daily_withdrawal_limit" validate:"gte=0"`
	Features             []string        `json:"features,omitempty" validate:"max=50,dive,max=200"`
	Color                string          `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Priority             int             `json:"priority"`
	IsActive             *bool           `json:"is_active,omitempty"`
}

type AssignRequest struct {
	UserIDs []uint `json:"user_ids" validate:"required,min=1,max=500"`
}

type Service interface {
	List(ctx context.Context, activeOnly bool) ([]models.Plan, error)
	GetByID(ctx context.Context, id uint) (*models.Plan, error)
	Create(ctx context.Context, actor audit.Actor, req Request) (*models.Plan, error)
	Update(ctx context.Context, actor audit.Actor, id uint, req Request) (*models.Plan, error)
	Delete(ctx context.Context, actor audit.Actor, id uint) error
	Assign(ctx context.Context, actor audit.Actor, id uint, req AssignRequest) (int64, error)
}

type service struct {
	store repositories.Store
	log   *zap.Logger
}

func NewService(store repositories.Store, log *zap.Logger) Service {
	if store == nil {
		panic("store is required")
	}
	return &service{store: store, log: logger.OrNop(log)}
}

// List returns plans with their current user counts.
func (s *service) List(ctx context.Context, activeOnly bool) ([]models.Plan, error) {
	plans, err := s.store.Plans().List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	for i := range plans {
		n, err := s.store.Users().CountByPlan(ctx, plans[i].ID)
		if err != nil {
			return nil, err
		}
		plans[i].UserCount = n
	}
	return plans, nil
}

func (s *service) GetByID(ctx context.Context, id uint) (*models.Plan, error) {
	p, err := s.store.Plans().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserCount, err = s.store.Users().CountByPlan(ctx, id); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) Create(ctx context.Context, actor audit.Actor, req Request) (*models.Plan, error) {
	p := &models.Plan{IsActive: true}
	apply(p, req)

	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		if err := tx.Plans().Create(ctx, p); err != nil {
			return err
		}
		return audit.Record(ctx, tx.Audit(), actor, audit.Entry{
			Action:   "plan.created",
			Entity:   "plan",
			EntityID: p.ID,
			NewData:  p,
			Severity: models.SeverityMedium,
		})
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("plan created", zap.Uint("plan_id", p.ID), zap.String("name", p.Name))
	return p, nil
}

func (s *service) Update(ctx context.Context, actor audit.Actor, id uint, req Request) (*models.Plan, error) {
	var p *models.Plan
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		var err error
		if p, err = tx.Plans().GetByID(ctx, id); err != nil {
			return err
		}
		before := *p
		apply(p, req)
		if err := tx.Plans().Update(ctx, p); err != nil {
			return err
		}
		return audit.Record(ctx, tx.Audit(), actor, audit.Entry{
			Action:   "plan.updated",
			Entity:   "plan",
			EntityID: p.ID,
			OldData:  before,
			NewData:  p,
			Severity: models.SeverityMedium,
		})
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Delete refuses while any user is still on the plan.
func (s *service) Delete(ctx context.Context, actor audit.Actor, id uint) error {
	return s.store.WithTx(ctx, func(tx repositories.Store) error {
		p, err := tx.Plans().GetByID(ctx, id)
		if err != nil {
			return err
		}
		n, err := tx.Users().CountByPlan(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return ErrPlanInUse.WithMessage("plan %q still has %d assigned users", p.Name, n)
		}
		if err := tx.Plans().Delete(ctx, id); err != nil {
			return err
		}
		return audit.Record(ctx, tx.Audit(), actor, audit.Entry{
			Action:   "plan.deleted",
			Entity:   "plan",
			EntityID: id,
			OldData:  p,
			Severity: models.SeverityHigh,
		})
	})
}

// Assign moves the listed users onto an active plan and returns how many rows
// changed.
func (s *service) Assign(ctx context.Context, actor audit.Actor, id uint, req AssignRequest) (int64, error) {
	ids := dedupe(req.UserIDs)
	switch {
	case len(ids) == 0:
		return 0, ErrNoUsers
	case len(ids) > MaxAssign:
		return 0, ErrTooManyUsers
	}

	var assigned int64
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		p, err := tx.Plans().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !p.IsActive {
			return ErrPlanInactive
		}
		if assigned, err = tx.Users().AssignPlan(ctx, id, ids); err != nil {
			return err
		}
		return audit.Record(ctx, tx.Audit(), actor, audit.Entry{
			Action:   "plan.assigned",
			Entity:   "plan",
			EntityID: id,
			NewData:  map[string]interface{}{"user_ids": ids, "assigned": assigned},
			Severity: models.SeverityMedium,
		})
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("plan assigned", zap.Uint("plan_id", id), zap.Int64("users", assigned))
	return assigned, nil
}

func apply(p *models.Plan, req Request) {
	p.Name = req.Name
	p.Description = req.Description
	p.Price = req.Price
	p.DepositLimit = req.DepositLimit
	p.WithdrawalLimit = req.WithdrawalLimit
	p.ProfitPercent = req.ProfitPercent
	p.MinimumDeposit = req.MinimumDeposit
	p.DailyWithdrawalLimit = req.DailyWithdrawalLimit
	p.Features = pq.StringArray(req.Features)
	if req.Color != "" {
		p.Color = req.Color
	}
	p.Priority = req.Priority
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
