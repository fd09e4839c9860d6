package transaction

import (
	"context"
	"strings"

	apperrors "iprofit/internal/errors"
	"iprofit/internal/metrics"
	"iprofit/internal/models"
	"iprofit/internal/repositories"
	"iprofit/internal/services/audit"
	"iprofit/internal/services/email"
	"iprofit/internal/services/events"
	"iprofit/internal/services/settings"
	"iprofit/internal/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// afterCommit holds the side effects of a review that must only happen once
// the database transaction has committed.
type afterCommit struct {
	subject string
	mail    *email.Message
}

func (s *service) ReviewDeposit(ctx context.Context, actor Actor, req DepositDecision) (*models.Transaction, error) {
	step, ok := depositTransitions[req.Action]
	if !ok {
		return nil, ErrUnknownAction
	}
	if req.Action == ActionReject && strings.TrimSpace(req.Reason) == "" {
		return nil, ErrReasonRequired
	}

	if req.Action == ActionApprove {
		// Gateway lookups happen before the row lock is taken.
		current, err := s.store.Transactions().GetByID(ctx, req.TransactionID)
		if err != nil {
			return nil, s.record(models.TransactionTypeDeposit, req.Action, err)
		}
		if current.Type != models.TransactionTypeDeposit {
			return nil, s.record(models.TransactionTypeDeposit, req.Action, ErrNotDeposit)
		}
		if current.Status == models.TransactionStatusPending {
			if err := s.verifier.VerifyDeposit(ctx, current); err != nil {
				return nil, s.record(models.TransactionTypeDeposit, req.Action, err)
			}
		}
	}

	var (
		tx   *models.Transaction
		side afterCommit
	)
	err := s.store.WithTx(ctx, func(repo repositories.Store) error {
		var err error
		tx, err = repo.Transactions().GetForUpdate(ctx, req.TransactionID)
		if err != nil {
			return err
		}
		if tx.Type != models.TransactionTypeDeposit {
			return ErrNotDeposit
		}
		if !step.allows(tx.Status) {
			return apperrors.ErrInvalidTransition.WithMessage("cannot %s a %s deposit", req.Action, strings.ToLower(tx.Status))
		}
		if req.Action == ActionApprove && tx.Gateway == models.GatewayStripe {
			used, err := repo.Transactions().GatewayReferenceInUse(ctx, tx.Gateway, tx.GatewayReference, tx.ID)
			if err != nil {
				return err
			}
			if used {
				return ErrReferenceInUse
			}
		}

		user, err := repo.Users().GetByID(ctx, tx.UserID)
		if err != nil {
			return err
		}
		old := tx.Status
		now := s.now()
		tx.Status = step.to
		tx.ApprovedBy = actor.AdminID
		tx.ProcessedAt = &now

		data := map[string]interface{}{
			"Name":      user.Name,
			"Amount":    tx.Amount.StringFixed(2),
			"Currency":  tx.Currency,
			"Reference": tx.Reference,
		}
		switch req.Action {
		case ActionApprove:
			first, err := s.isFirstDeposit(ctx, repo, user)
			if err != nil {
				return err
			}
			if err := repo.Users().AdjustBalance(ctx, tx.UserID, tx.NetAmount); err != nil {
				return err
			}
			if first && user.ReferredBy != nil {
				if err := s.payReferralBonus(ctx, repo, actor, tx); err != nil {
					return err
				}
			}
			side = afterCommit{
				subject: events.TransactionApproved,
				mail:    &email.Message{To: user.Email, Template: email.TemplateDepositApproved, Data: data},
			}
		case ActionReject:
			tx.RejectionReason = req.Reason
			data["Reason"] = req.Reason
			side = afterCommit{
				subject: events.TransactionRejected,
				mail:    &email.Message{To: user.Email, Template: email.TemplateDepositRejected, Data: data},
			}
		}

		if err := repo.Transactions().Update(ctx, tx); err != nil {
			return err
		}
		return audit.Record(ctx, repo.Audit(), actor, audit.Entry{
			Action:   "deposit." + req.Action,
			Entity:   "transaction",
			EntityID: tx.ID,
			OldData:  map[string]interface{}{"status": old},
			NewData: map[string]interface{}{
				"status":     tx.Status,
				"net_amount": tx.NetAmount.StringFixed(2),
				"reason":     req.Reason,
			},
			Severity: models.SeverityHigh,
		})
	})
	if err != nil {
		return nil, s.record(models.TransactionTypeDeposit, req.Action, err)
	}

	s.record(models.TransactionTypeDeposit, req.Action, nil)
	s.finish(ctx, tx, side)
	return tx, nil
}

// isFirstDeposit reports whether the user has no settled deposit yet. It must
// run before the current deposit is marked Approved.
func (s *service) isFirstDeposit(ctx context.Context, repo repositories.Store, user *models.User) (bool, error) {
	if user.ReferredBy == nil {
		return false, nil
	}
	n, err := repo.Transactions().CountApprovedDeposits(ctx, user.ID)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// payReferralBonus credits the referrer referral_bonus_percent of the deposit
// and marks the referral paid. Referrals already settled are left alone.
func (s *service) payReferralBonus(ctx context.Context, repo repositories.Store, actor Actor, deposit *models.Transaction) error {
	ref, err := repo.Referrals().GetByRefereeForUpdate(ctx, deposit.UserID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrReferralNotFound) {
			return nil
		}
		return err
	}
	if ref.Status != models.ReferralStatusPending {
		return nil
	}

	pct := s.settings.Decimal(ctx, settings.KeyReferralBonusPercent)
	bonus := deposit.Amount.Mul(pct).Div(hundred).Round(2)
	if !bonus.IsPositive() {
		return nil
	}

	now := s.now()
	credit := &models.Transaction{
		UserID:      ref.ReferrerID,
		Type:        models.TransactionTypeReferralBonus,
		Amount:      bonus,
		Fee:         decimal.Zero,
		NetAmount:   bonus,
		Currency:    deposit.Currency,
		Status:      models.TransactionStatusCompleted,
		Gateway:     models.GatewaySystem,
		Reference:   utils.NewReference(),
		Description: "Referral bonus",
		ApprovedBy:  actor.AdminID,
		ProcessedAt: &now,
		Metadata: models.JSON{
			"referral_id":       ref.ID,
			"referee_id":        deposit.UserID,
			"deposit_reference": deposit.Reference,
			"bonus_percent":     pct.String(),
		},
	}
	if err := repo.Transactions().Create(ctx, credit); err != nil {
		return err
	}
	if err := repo.Users().AdjustBalance(ctx, ref.ReferrerID, bonus); err != nil {
		return err
	}

	ref.Status = models.ReferralStatusPaid
	ref.BonusAmount = bonus
	ref.PaidAt = &now
	ref.TransactionID = &credit.ID
	if err := repo.Referrals().Update(ctx, ref); err != nil {
		return err
	}

	s.log.Info("referral bonus paid",
		zap.Uint("referral_id", ref.ID),
		zap.Uint("referrer_id", ref.ReferrerID),
		zap.String("bonus", bonus.StringFixed(2)))
	return nil
}

func (s *service) ReviewWithdrawal(ctx context.Context, actor Actor, req WithdrawalDecision) (*models.Transaction, error) {
	step, ok := withdrawalTransitions[req.Action]
	if !ok {
		return nil, ErrUnknownAction
	}
	if (req.Action == ActionReject || req.Action == ActionFail) && strings.TrimSpace(req.Reason) == "" {
		return nil, ErrReasonRequired
	}

	var (
		tx   *models.Transaction
		side afterCommit
	)
	err := s.store.WithTx(ctx, func(repo repositories.Store) error {
		var err error
		tx, err = repo.Transactions().GetForUpdate(ctx, req.TransactionID)
		if err != nil {
			return err
		}
		if tx.Type != models.TransactionTypeWithdrawal {
			return ErrNotWithdrawal
		}
		if !step.allows(tx.Status) {
			return apperrors.ErrInvalidTransition.WithMessage("cannot %s a %s withdrawal", req.Action, strings.ToLower(tx.Status))
		}

		user, err := repo.Users().GetByID(ctx, tx.UserID)
		if err != nil {
			return err
		}
		old := tx.Status
		now := s.now()
		total := tx.Amount.Add(tx.Fee)
		tx.Status = step.to
		if req.GatewayReference != "" {
			tx.GatewayReference = req.GatewayReference
		}

		data := map[string]interface{}{
			"Name":      user.Name,
			"Amount":    tx.Amount.StringFixed(2),
			"Fee":       tx.Fee.StringFixed(2),
			"Currency":  tx.Currency,
			"Reference": tx.Reference,
			"Reason":    req.Reason,
		}
		switch req.Action {
		case ActionApprove:
			if err := repo.Users().AdjustBalance(ctx, tx.UserID, total.Neg()); err != nil {
				return err
			}
			tx.ApprovedBy = actor.AdminID
			side = afterCommit{
				subject: events.TransactionApproved,
				mail:    &email.Message{To: user.Email, Template: email.TemplateWithdrawalApproved, Data: data},
			}
		case ActionReject:
			tx.ApprovedBy = actor.AdminID
			tx.RejectionReason = req.Reason
			tx.ProcessedAt = &now
			side = afterCommit{
				subject: events.TransactionRejected,
				mail:    &email.Message{To: user.Email, Template: email.TemplateWithdrawalRejected, Data: data},
			}
		case ActionProcess:
			side = afterCommit{subject: events.TransactionProcessed}
		case ActionComplete:
			tx.ProcessedAt = &now
			side = afterCommit{
				subject: events.TransactionCompleted,
				mail:    &email.Message{To: user.Email, Template: email.TemplateWithdrawalCompleted, Data: data},
			}
		case ActionFail:
			if err := repo.Users().AdjustBalance(ctx, tx.UserID, total); err != nil {
				return err
			}
			tx.FailureReason = req.Reason
			tx.ProcessedAt = &now
			side = afterCommit{
				subject: events.TransactionFailed,
				mail: &email.Message{To: user.Email, Template: email.TemplateNotification, Data: map[string]interface{}{
					"Name":    user.Name,
					"Title":   "Withdrawal failed",
					"Message": "Your withdrawal " + tx.Reference + " could not be sent and " + total.StringFixed(2) + " " + tx.Currency + " was returned to your balance. Reason: " + req.Reason,
				}},
			}
		}

		if err := repo.Transactions().Update(ctx, tx); err != nil {
			return err
		}
		return audit.Record(ctx, repo.Audit(), actor, audit.Entry{
			Action:   "withdrawal." + req.Action,
			Entity:   "transaction",
			EntityID: tx.ID,
			OldData:  map[string]interface{}{"status": old},
			NewData: map[string]interface{}{
				"status":            tx.Status,
				"total":             total.StringFixed(2),
				"reason":            req.Reason,
				"gateway_reference": tx.GatewayReference,
			},
			Severity: models.SeverityHigh,
		})
	})
	if err != nil {
		return nil, s.record(models.TransactionTypeWithdrawal, req.Action, err)
	}

	s.record(models.TransactionTypeWithdrawal, req.Action, nil)
	s.finish(ctx, tx, side)
	return tx, nil
}

// record counts the decision outcome and passes err through.
func (s *service) record(txType, action string, err error) error {
	outcome := outcomeSuccess
	switch {
	case err == nil:
	case apperrors.Is(err, apperrors.ErrInvalidTransition):
		outcome = outcomeInvalid
	default:
		outcome = outcomeError
	}
	metrics.ApprovalDecisions.WithLabelValues(txType, action, outcome).Inc()
	return err
}

func (s *service) finish(ctx context.Context, tx *models.Transaction, side afterCommit) {
	if side.subject != "" {
		_ = s.events.Publish(ctx, side.subject, map[string]interface{}{
			"transaction_id": tx.ID,
			"reference":      tx.Reference,
			"user_id":        tx.UserID,
			"type":           tx.Type,
			"status":         tx.Status,
			"amount":         tx.Amount.StringFixed(2),
		})
	}
	if side.mail != nil {
		if err := s.mailer.Enqueue(*side.mail); err != nil {
			s.log.Warn("failed to queue email",
				zap.Uint("transaction_id", tx.ID),
				zap.String("template", side.mail.Template),
				zap.Error(err))
		}
	}
	s.log.Info("transaction reviewed",
		zap.Uint("transaction_id", tx.ID),
		zap.String("type", tx.Type),
		zap.String("status", tx.Status))
}
