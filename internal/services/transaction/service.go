package transaction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "iprofit/internal/errors"
	"iprofit/internal/logger"
	"iprofit/internal/models"
	"iprofit/internal/repositories"
	"iprofit/internal/services/email"
	"iprofit/internal/services/events"
	"iprofit/internal/services/settings"
	"iprofit/internal/utils"
	"iprofit/internal/validation"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type service struct {
	store    repositories.Store
	settings SettingsReader
	fees     FeeQuoter
	verifier DepositVerifier
	mailer   email.Service
	events   events.Publisher
	log      *zap.Logger
	now      func() time.Time
}

// NewService creates a new transaction service
func NewService(
	store repositories.Store,
	settings SettingsReader,
	fees FeeQuoter,
	verifier DepositVerifier,
	mailer email.Service,
	publisher events.Publisher,
	log *zap.Logger,
) Service {
	if store == nil {
		panic("store is required")
	}
	if settings == nil {
		panic("settings are required")
	}
	if fees == nil {
		panic("fee quoter is required")
	}
	if verifier == nil {
		panic("deposit verifier is required")
	}
	if mailer == nil {
		panic("mailer is required")
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}

	return &service{
		store:    store,
		settings: settings,
		fees:     fees,
		verifier: verifier,
		mailer:   mailer,
		events:   publisher,
		log:      logger.OrNop(log),
		now:      time.Now,
	}
}

func (s *service) RequestDeposit(ctx context.Context, userID uint, req DepositRequest) (*models.Transaction, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive() {
		return nil, apperrors.ErrAccountInactive
	}

	switch req.Gateway {
	case models.GatewayManual, models.GatewayBank:
	case models.GatewayStripe:
		if !strings.HasPrefix(req.GatewayReference, "pi_") {
			return nil, ErrReferenceRequired
		}
		used, err := s.store.Transactions().GatewayReferenceInUse(ctx, req.Gateway, req.GatewayReference, 0)
		if err != nil {
			return nil, err
		}
		if used {
			return nil, ErrReferenceInUse
		}
	default:
		return nil, ErrUnsupportedMethod
	}

	min := s.settings.Decimal(ctx, settings.KeyMinDeposit)
	max := s.settings.Decimal(ctx, settings.KeyMaxDeposit)
	if user.Plan != nil {
		if user.Plan.MinimumDeposit.GreaterThan(min) {
			min = user.Plan.MinimumDeposit
		}
		if user.Plan.DepositLimit.IsPositive() && (max.IsZero() || user.Plan.DepositLimit.LessThan(max)) {
			max = user.Plan.DepositLimit
		}
	}
	amount := req.Amount.Round(2)
	if err := validation.AmountInRange(amount, min, max); err != nil {
		return nil, err
	}

	quote := s.fees.Deposit(ctx, amount)
	tx := &models.Transaction{
		UserID:           userID,
		Type:             models.TransactionTypeDeposit,
		Amount:           quote.Amount,
		Fee:              quote.Fee,
		NetAmount:        quote.Net,
		Currency:         currency(req.Currency),
		Status:           models.TransactionStatusPending,
		Gateway:          req.Gateway,
		GatewayReference: req.GatewayReference,
		Reference:        utils.NewReference(),
		Description:      req.Description,
		AccountDetails:   req.AccountDetails,
	}
	if err := s.store.Transactions().Create(ctx, tx); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) && tx.Gateway == models.GatewayStripe {
			return nil, ErrReferenceInUse
		}
		return nil, fmt.Errorf("failed to create deposit: %w", err)
	}

	s.log.Info("deposit requested",
		zap.Uint("transaction_id", tx.ID),
		zap.Uint("user_id", userID),
		zap.String("amount", tx.Amount.StringFixed(2)),
		zap.String("gateway", tx.Gateway))
	return tx, nil
}

// RequestWithdrawal records a pending withdrawal. The balance is checked here
// but only debited when an admin approves the request.
func (s *service) RequestWithdrawal(ctx context.Context, userID uint, req WithdrawalRequest) (*models.Transaction, error) {
	switch req.Gateway {
	case models.GatewayManual, models.GatewayBank:
	default:
		return nil, ErrUnsupportedMethod
	}

	amount := req.Amount.Round(2)
	min := s.settings.Decimal(ctx, settings.KeyMinWithdrawal)
	max := s.settings.Decimal(ctx, settings.KeyMaxWithdrawal)
	if err := validation.AmountInRange(amount, min, max); err != nil {
		return nil, err
	}
	quote := s.fees.Withdrawal(ctx, amount)

	var tx *models.Transaction
	err := s.store.WithTx(ctx, func(repo repositories.Store) error {
		user, err := repo.Users().GetByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if !user.IsActive() {
			return apperrors.ErrAccountInactive
		}
		if user.Balance.LessThan(quote.Total) {
			return apperrors.ErrInsufficientBalance.WithMessage(
				"balance %s does not cover %s including fee", user.Balance.StringFixed(2), quote.Total.StringFixed(2))
		}

		limit := s.settings.Decimal(ctx, settings.KeyDailyWithdrawalLimit)
		if user.PlanID != nil {
			plan, err := repo.Plans().GetByID(ctx, *user.PlanID)
			if err != nil && !apperrors.Is(err, repositories.ErrPlanNotFound) {
				return err
			}
			if plan != nil && plan.DailyWithdrawalLimit.IsPositive() {
				limit = plan.DailyWithdrawalLimit
			}
		}
		if limit.IsPositive() {
			today, err := repo.Transactions().SumWithdrawalsSince(ctx, userID, startOfDay(s.now()))
			if err != nil {
				return err
			}
			if today.Add(amount).GreaterThan(limit) {
				return apperrors.ErrDailyLimitExceeded.WithMessage(
					"daily withdrawal limit is %s, %s already requested today", limit.StringFixed(2), today.StringFixed(2))
			}
		}

		tx = &models.Transaction{
			UserID:         userID,
			Type:           models.TransactionTypeWithdrawal,
			Amount:         quote.Amount,
			Fee:            quote.Fee,
			NetAmount:      quote.Net,
			Currency:       currency(req.Currency),
			Status:         models.TransactionStatusPending,
			Gateway:        req.Gateway,
			Reference:      utils.NewReference(),
			Description:    req.Description,
			AccountDetails: req.AccountDetails,
		}
		return repo.Transactions().Create(ctx, tx)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("withdrawal requested",
		zap.Uint("transaction_id", tx.ID),
		zap.Uint("user_id", userID),
		zap.String("amount", tx.Amount.StringFixed(2)),
		zap.String("fee", tx.Fee.StringFixed(2)))
	return tx, nil
}

func (s *service) List(ctx context.Context, filter models.TransactionFilter, offset, limit int) ([]models.Transaction, int64, error) {
	return s.store.Transactions().List(ctx, filter, offset, limit)
}

func (s *service) GetByID(ctx context.Context, id uint) (*models.Transaction, error) {
	return s.store.Transactions().GetByID(ctx, id)
}

func (s *service) Summary(ctx context.Context, filter models.TransactionFilter) ([]models.TransactionSummary, error) {
	return s.store.Transactions().Summary(ctx, filter)
}

func (s *service) StalePendingWithdrawals(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.store.Transactions().CountPendingOlderThan(ctx, models.TransactionTypeWithdrawal, s.now().Add(-olderThan))
}

func currency(c string) string {
	if c == "" {
		return models.DefaultCurrency
	}
	return strings.ToUpper(c)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

var hundred = decimal.NewFromInt(100)
