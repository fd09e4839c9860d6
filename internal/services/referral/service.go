// Package referral manages the referral programme: listings, the overview
// leaderboard and manual settlement of pending referrals.
package referral

import (
	"context"
	"strings"
	"time"

	apperrors "iprofit/internal/errors"
	"iprofit/internal/logger"
	"iprofit/internal/models"
	"iprofit/internal/repositories"
	"iprofit/internal/services/audit"
	"iprofit/internal/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Bonus actions
const (
	ActionPay    = "pay"
	ActionCancel = "cancel"
)

// TopReferrers is the leaderboard size of the overview.
const TopReferrers = 10

var (
	ErrNotPending     = apperrors.ErrInvalidTransition.WithMessage("referral is not pending")
	ErrAmountRequired = apperrors.ErrInvalidAmount.WithMessage("a bonus amount is required")
	ErrUnknownAction  = apperrors.ErrInvalidInput.WithMessage("unknown action")
	ErrReasonRequired = apperrors.ErrInvalidInput.WithMessage("a reason is required")
)

// BonusRequest settles a pending referral by hand. Amount overrides the
// stored bonus when set.
type BonusRequest struct {
	ReferralID uint             `json:"referralId" validate:"required"`
	Action     string           `json:"action" validate:"required,oneof=pay cancel"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	Reason     string           `json:"reason,omitempty" validate:"max=500"`
}

type Service interface {
	List(ctx context.Context, filter models.ReferralFilter, offset, limit int) ([]models.Referral, int64, error)
	Overview(ctx context.Context) (*models.ReferralOverview, error)
	Bonuses(ctx context.Context, filter models.TransactionFilter, offset, limit int) ([]models.Transaction, int64, error)
	Settle(ctx context.Context, actor audit.Actor, req BonusRequest) (*models.Referral, error)
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

func (s *service) List(ctx context.Context, filter models.ReferralFilter, offset, limit int) ([]models.Referral, int64, error) {
	return s.store.Referrals().List(ctx, filter, offset, limit)
}

func (s *service) Overview(ctx context.Context) (*models.ReferralOverview, error) {
	return s.store.Referrals().Overview(ctx, TopReferrers)
}

// Bonuses lists referral_bonus ledger entries; the type filter is forced.
func (s *service) Bonuses(ctx context.Context, filter models.TransactionFilter, offset, limit int) ([]models.Transaction, int64, error) {
	filter.Type = models.TransactionTypeReferralBonus
	return s.store.Transactions().List(ctx, filter, offset, limit)
}

func (s *service) Settle(ctx context.Context, actor audit.Actor, req BonusRequest) (*models.Referral, error) {
	switch req.Action {
	case ActionPay:
		if req.Amount != nil && !req.Amount.IsPositive() {
			return nil, apperrors.ErrInvalidAmount
		}
	case ActionCancel:
		if strings.TrimSpace(req.Reason) == "" {
			return nil, ErrReasonRequired
		}
	default:
		return nil, ErrUnknownAction
	}

	var ref *models.Referral
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		var err error
		ref, err = tx.Referrals().GetForUpdate(ctx, req.ReferralID)
		if err != nil {
			return err
		}
		if ref.Status != models.ReferralStatusPending {
			return ErrNotPending
		}
		old := ref.Status

		if req.Action == ActionCancel {
			ref.Status = models.ReferralStatusCancelled
		} else if err := s.pay(ctx, tx, actor, ref, req); err != nil {
			return err
		}

		if err := tx.Referrals().Update(ctx, ref); err != nil {
			return err
		}
		return audit.Record(ctx, tx.Audit(), actor, audit.Entry{
			Action:   "referral." + req.Action,
			Entity:   "referral",
			EntityID: ref.ID,
			OldData:  map[string]interface{}{"status": old},
			NewData: map[string]interface{}{
				"status": ref.Status,
				"bonus":  ref.BonusAmount.StringFixed(2),
				"reason": req.Reason,
			},
			Severity: models.SeverityHigh,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("referral settled",
		zap.Uint("referral_id", ref.ID),
		zap.String("status", ref.Status))
	return ref, nil
}

func (s *service) pay(ctx context.Context, tx repositories.Store, actor audit.Actor, ref *models.Referral, req BonusRequest) error {
	amount := ref.BonusAmount
	if req.Amount != nil {
		amount = *req.Amount
	}
	amount = amount.Round(2)
	if !amount.IsPositive() {
		return ErrAmountRequired
	}

	now := s.now()
	description := "Referral bonus"
	if req.Reason != "" {
		description += ": " + req.Reason
	}
	credit := &models.Transaction{
		UserID:      ref.ReferrerID,
		Type:        models.TransactionTypeReferralBonus,
		Amount:      amount,
		Fee:         decimal.Zero,
		NetAmount:   amount,
		Currency:    models.DefaultCurrency,
		Status:      models.TransactionStatusCompleted,
		Gateway:     models.GatewaySystem,
		Reference:   utils.NewReference(),
		Description: description,
		ApprovedBy:  actor.AdminID,
		ProcessedAt: &now,
		Metadata:    models.JSON{"referral_id": ref.ID, "referee_id": ref.RefereeID, "manual": true},
	}
	if err := tx.Transactions().Create(ctx, credit); err != nil {
		return err
	}
	if err := tx.Users().AdjustBalance(ctx, ref.ReferrerID, amount); err != nil {
		return err
	}

	ref.Status = models.ReferralStatusPaid
	ref.BonusAmount = amount
	ref.PaidAt = &now
	ref.TransactionID = &credit.ID
	return nil
}
