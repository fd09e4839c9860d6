package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "iprofit/internal/errors"
	"iprofit/internal/logger"
	"iprofit/internal/models"
	"iprofit/internal/repositories"
	"iprofit/internal/services/audit"
	"iprofit/internal/services/email"
	"iprofit/internal/services/events"
	"iprofit/internal/utils"
	"iprofit/internal/validation"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrReasonRequired = apperrors.ErrInvalidInput.WithMessage("a reason is required")

type Service interface {
	List(ctx context.Context, filter models.UserFilter, offset, limit int) ([]models.User, int64, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	Update(ctx context.Context, actor audit.Actor, id uint, req UpdateRequest) (*models.User, error)
	Delete(ctx context.Context, actor audit.Actor, id uint) error
	SubmitKYC(ctx context.Context, id uint, req KYCSubmitRequest) (*models.User, error)
	ReviewKYC(ctx context.Context, actor audit.Actor, id uint, req KYCReviewRequest) (*models.User, error)
	SetStatus(ctx context.Context, actor audit.Actor, id uint, req StatusRequest) (*models.User, error)
	Bulk(ctx context.Context, actor audit.Actor, req BulkRequest) ([]BulkResult, error)
	AdjustBalance(ctx context.Context, actor audit.Actor, id uint, req BalanceRequest) (*models.Transaction, error)
	Transactions(ctx context.Context, id uint, filter models.TransactionFilter, offset, limit int) ([]models.Transaction, int64, error)
}

type service struct {
	store  repositories.Store
	mailer email.Service
	events events.Publisher
	log    *zap.Logger
	now    func() time.Time
}

func NewService(store repositories.Store, mailer email.Service, publisher events.Publisher, log *zap.Logger) Service {
	if store == nil {
		panic("store is required")
	}
	if mailer == nil {
		panic("mailer is required")
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &service{
		store:  store,
		mailer: mailer,
		events: publisher,
		log:    logger.OrNop(log),
		now:    time.Now,
	}
}

func (s *service) List(ctx context.Context, filter models.UserFilter, offset, limit int) ([]models.User, int64, error) {
	return s.store.Users().List(ctx, filter, offset, limit)
}

func (s *service) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.store.Users().GetByID(ctx, id)
}

func (s *service) Update(ctx context.Context, actor audit.Actor, id uint, req UpdateRequest) (*models.User, error) {
	var updated *models.User
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		user, err := tx.Users().GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		before := snapshot(user)

		if req.Name != nil {
			user.Name = strings.TrimSpace(*req.Name)
		}
		if req.Email != nil && !strings.EqualFold(*req.Email, user.Email) {
			user.Email = strings.ToLower(strings.TrimSpace(*req.Email))
		}
		if req.Phone != nil {
			v := validation.New()
			v.Phone("phone", *req.Phone)
			if !v.Valid() {
				return apperrors.ErrInvalidInput.WithMessage("phone: %s", v.Errors["phone"])
			}
			user.Phone = *req.Phone
		}
		if req.PlanID != nil {
			if _, err := tx.Plans().GetByID(ctx, *req.PlanID); err != nil {
				return err
			}
			user.PlanID = req.PlanID
		}
		if req.CreditScore != nil {
			user.CreditScore = *req.CreditScore
		}

		if err := tx.Users().Update(ctx, user); err != nil {
			if apperrors.Is(err, repositories.ErrDuplicate) {
				return apperrors.ErrConflict.WithMessage("email or phone already in use")
			}
			return err
		}
		updated = user
		return audit.Record(ctx, tx.Audit(), actor, audit.Entry{
			Action:   "user.updated",
			Entity:   "user",
			EntityID: id,
			OldData:  before,
			NewData:  snapshot(user),
			Severity: models.SeverityMedium,
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, actor audit.Actor, id uint) error {
	return s.store.WithTx(ctx, func(tx repositories.Store) error {
		return s.deleteUser(ctx, tx, actor, id)
	})
}

func (s *service) deleteUser(ctx context.Context, tx repositories.Store, actor audit.Actor, id uint) error {
	user, err := tx.Users().GetByIDForUpdate(ctx, id)
	if err != nil {
		return err
	}
	if err := tx.Users().Delete(ctx, id); err != nil {
		return err
	}
	return audit.Record(ctx, tx.Audit(), actor, audit.Entry{
		Action:   "user.deleted",
		Entity:   "user",
		EntityID: id,
		OldData:  snapshot(user),
		Severity: models.SeverityHigh,
	})
}

// SubmitKYC stores a user's documents and puts them back in the review queue.
func (s *service) SubmitKYC(ctx context.Context, id uint, req KYCSubmitRequest) (*models.User, error) {
	var user *models.User
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		var err error
		user, err = tx.Users().GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if user.KYCStatus == models.KYCStatusApproved {
			return apperrors.ErrInvalidTransition.WithMessage("kyc is already %s", user.KYCStatus)
		}
		user.KYCStatus = models.KYCStatusPending
		user.KYCDocuments = req.Documents
		user.KYCRejectionReason = ""
		return tx.Users().UpdateFields(ctx, id, map[string]interface{}{
			"kyc_status":           user.KYCStatus,
			"kyc_documents":        user.KYCDocuments,
			"kyc_rejection_reason": "",
		})
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("kyc submitted", zap.Uint("user_id", id), zap.Int("documents", len(req.Documents)))
	return user, nil
}

func (s *service) ReviewKYC(ctx context.Context, actor audit.Actor, id uint, req KYCReviewRequest) (*models.User, error) {
	approve := req.Action == "approve"
	if !approve && strings.TrimSpace(req.Reason) == "" {
		return nil, ErrReasonRequired
	}

	var user *models.User
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		var err error
		user, err = s.reviewKYC(ctx, tx, actor, id, approve, req.Reason)
		return err
	})
	if err != nil {
		return nil, err
	}

	msg := email.Message{To: user.Email, Data: map[string]interface{}{"Name": user.Name, "Reason": req.Reason}}
	if approve {
		msg.Template = email.TemplateKYCApproved
	} else {
		msg.Template = email.TemplateKYCRejected
	}
	s.notify(msg)
	_ = s.events.Publish(ctx, events.UserKYCReviewed, map[string]interface{}{
		"user_id": id,
		"status":  user.KYCStatus,
	})
	return user, nil
}

func (s *service) reviewKYC(ctx context.Context, tx repositories.Store, actor audit.Actor, id uint, approve bool, reason string) (*models.User, error) {
	user, err := tx.Users().GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.KYCStatus != models.KYCStatusPending {
		return nil, apperrors.ErrInvalidTransition.WithMessage("kyc is already %s", user.KYCStatus)
	}

	old := user.KYCStatus
	fields := map[string]interface{}{}
	if approve {
		user.KYCStatus = models.KYCStatusApproved
		user.KYCRejectionReason = ""
	} else {
		user.KYCStatus = models.KYCStatusRejected
		user.KYCRejectionReason = reason
	}
	fields["kyc_status"] = user.KYCStatus
	fields["kyc_rejection_reason"] = user.KYCRejectionReason
	if err := tx.Users().UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}

	action := "user.kyc_approved"
	if !approve {
		action = "user.kyc_rejected"
	}
	err = audit.Record(ctx, tx.Audit(), actor, audit.Entry{
		Action:   action,
		Entity:   "user",
		EntityID: id,
		OldData:  map[string]interface{}{"kyc_status": old},
		NewData:  fields,
		Severity: models.SeverityMedium,
	})
	return user, err
}

func (s *service) SetStatus(ctx context.Context, actor audit.Actor, id uint, req StatusRequest) (*models.User, error) {
	if !models.ValidUserStatus(req.Status) {
		return nil, apperrors.ErrInvalidInput.WithMessage("unknown status %q", req.Status)
	}
	var (
		user *models.User
		old  string
	)
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		var err error
		user, old, err = s.setStatus(ctx, tx, actor, id, req.Status, req.Reason)
		return err
	})
	if err != nil {
		return nil, err
	}
	if old != req.Status {
		_ = s.events.Publish(ctx, events.UserStatusChanged, map[string]interface{}{
			"user_id": id,
			"from":    old,
			"to":      req.Status,
		})
	}
	return user, nil
}

func (s *service) setStatus(ctx context.Context, tx repositories.Store, actor audit.Actor, id uint, status, reason string) (*models.User, string, error) {
	user, err := tx.Users().GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, "", err
	}
	old := user.Status
	if old == status {
		return user, old, nil
	}
	if err := tx.Users().UpdateFields(ctx, id, map[string]interface{}{"status": status}); err != nil {
		return nil, "", err
	}
	if status != models.UserStatusActive {
		// suspended and banned users lose their sessions
		if err := tx.Users().IncrementTokenVersion(ctx, id); err != nil {
			return nil, "", err
		}
	}
	user.Status = status

	severity := models.SeverityMedium
	if status == models.UserStatusBanned {
		severity = models.SeverityHigh
	}
	err = audit.Record(ctx, tx.Audit(), actor, audit.Entry{
		Action:   "user.status_changed",
		Entity:   "user",
		EntityID: id,
		OldData:  map[string]interface{}{"status": old},
		NewData:  map[string]interface{}{"status": status, "reason": reason},
		Severity: severity,
	})
	return user, old, err
}

// Bulk applies action to each id in its own database transaction so one
// failure does not undo the others.
func (s *service) Bulk(ctx context.Context, actor audit.Actor, req BulkRequest) ([]BulkResult, error) {
	v := validation.New()
	v.BulkIDs(req.IDs)
	if !v.Valid() {
		return nil, apperrors.ErrInvalidInput.WithMessage("ids: %s", v.Errors["ids"])
	}

	results := make([]BulkResult, 0, len(req.IDs))
	seen := make(map[uint]bool, len(req.IDs))
	for _, id := range req.IDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		var kycUser *models.User
		err := s.store.WithTx(ctx, func(tx repositories.Store) error {
			switch req.Action {
			case BulkActivate:
				_, _, err := s.setStatus(ctx, tx, actor, id, models.UserStatusActive, req.Reason)
				return err
			case BulkSuspend:
				_, _, err := s.setStatus(ctx, tx, actor, id, models.UserStatusSuspended, req.Reason)
				return err
			case BulkBan:
				_, _, err := s.setStatus(ctx, tx, actor, id, models.UserStatusBanned, req.Reason)
				return err
			case BulkDelete:
				return s.deleteUser(ctx, tx, actor, id)
			case BulkApproveKYC:
				u, err := s.reviewKYC(ctx, tx, actor, id, true, "")
				kycUser = u
				return err
			default:
				return apperrors.ErrInvalidInput.WithMessage("unknown bulk action %q", req.Action)
			}
		})

		res := BulkResult{ID: id, Success: err == nil}
		if err != nil {
			if de, ok := apperrors.As(err); ok {
				res.Error = de.Message
			} else {
				s.log.Error("bulk user action failed", zap.String("action", req.Action), zap.Uint("user_id", id), zap.Error(err))
				res.Error = "internal error"
			}
		}
		results = append(results, res)

		if kycUser != nil && err == nil {
			s.notify(email.Message{To: kycUser.Email, Template: email.TemplateKYCApproved,
				Data: map[string]interface{}{"Name": kycUser.Name}})
		}
	}
	return results, nil
}

func (s *service) AdjustBalance(ctx context.Context, actor audit.Actor, id uint, req BalanceRequest) (*models.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, apperrors.ErrInvalidAmount
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, ErrReasonRequired
	}

	var (
		delta  decimal.Decimal
		txType string
	)
	switch req.Type {
	case AdjustBonus:
		delta, txType = req.Amount, models.TransactionTypeBonus
	case AdjustPenalty:
		delta, txType = req.Amount.Neg(), models.TransactionTypePenalty
	default:
		return nil, apperrors.ErrInvalidInput.WithMessage("type must be bonus or penalty")
	}

	var entry *models.Transaction
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		user, err := tx.Users().GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		now := s.now()
		entry = &models.Transaction{
			UserID:      id,
			Type:        txType,
			Amount:      req.Amount,
			Fee:         decimal.Zero,
			NetAmount:   req.Amount,
			Currency:    models.DefaultCurrency,
			Status:      models.TransactionStatusCompleted,
			Gateway:     models.GatewayManual,
			Reference:   utils.NewReference(),
			Description: req.Reason,
			ApprovedBy:  actor.AdminID,
			ProcessedAt: &now,
		}
		if err := tx.Users().AdjustBalance(ctx, id, delta); err != nil {
			return err
		}
		if err := tx.Transactions().Create(ctx, entry); err != nil {
			return err
		}
		return audit.Record(ctx, tx.Audit(), actor, audit.Entry{
			Action:   "user.balance_adjusted",
			Entity:   "user",
			EntityID: id,
			OldData:  map[string]interface{}{"balance": user.Balance.StringFixed(2)},
			NewData: map[string]interface{}{
				"balance":        user.Balance.Add(delta).StringFixed(2),
				"type":           req.Type,
				"amount":         req.Amount.StringFixed(2),
				"reason":         req.Reason,
				"transaction_id": entry.ID,
			},
			Severity: models.SeverityHigh,
		})
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("balance adjusted",
		zap.Uint("user_id", id),
		zap.String("type", req.Type),
		zap.String("amount", req.Amount.StringFixed(2)))
	return entry, nil
}

func (s *service) Transactions(ctx context.Context, id uint, filter models.TransactionFilter, offset, limit int) ([]models.Transaction, int64, error) {
	if _, err := s.store.Users().GetByID(ctx, id); err != nil {
		return nil, 0, err
	}
	filter.UserID = &id
	return s.store.Transactions().List(ctx, filter, offset, limit)
}

func (s *service) notify(msg email.Message) {
	if err := s.mailer.Enqueue(msg); err != nil {
		s.log.Warn("failed to queue email", zap.String("template", msg.Template), zap.Error(err))
	}
}

func snapshot(u *models.User) map[string]interface{} {
	out := map[string]interface{}{
		"name":         u.Name,
		"email":        u.Email,
		"phone":        u.Phone,
		"status":       u.Status,
		"kyc_status":   u.KYCStatus,
		"credit_score": u.CreditScore,
		"balance":      u.Balance.StringFixed(2),
	}
	if u.PlanID != nil {
		out["plan_id"] = fmt.Sprint(*u.PlanID)
	}
	return out
}
