// Package loan handles loan applications, disbursement, repayments and the
// overdue sweep.
package loan

import (
	"context"
	"strings"
	"time"

	apperrors "iprofit/internal/errors"
	"iprofit/internal/logger"
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

var (
	ErrLoanOpen          = apperrors.ErrConflict.WithMessage("user already has an open or defaulted loan")
	ErrAmountTooHigh     = apperrors.ErrAmountOutOfRange.WithMessage("loan amount exceeds the maximum")
	ErrCreditScoreTooLow = apperrors.ErrForbidden.WithMessage("credit score is below the minimum")
	ErrReasonRequired    = apperrors.ErrInvalidInput.WithMessage("a reason is required")
	ErrUnknownAction     = apperrors.ErrInvalidInput.WithMessage("unknown action")
	ErrNotRepayable      = apperrors.ErrInvalidTransition.WithMessage("loan is not being repaid")
	ErrBelowInstallment  = apperrors.ErrInvalidAmount.WithMessage("amount does not cover the next installment")
)

// blockingStatuses are the loan states that stop a user from applying again.
var blockingStatuses = []string{
	models.LoanStatusPending,
	models.LoanStatusApproved,
	models.LoanStatusActive,
	models.LoanStatusDefaulted,
}

// SettingsReader is the part of the settings service loans need.
type SettingsReader interface {
	Decimal(ctx context.Context, key string) decimal.Decimal
	Int(ctx context.Context, key string) int
}

type Service interface {
	Calculate(req CalculateRequest) (*Breakdown, error)
	Apply(ctx context.Context, userID uint, req ApplyRequest) (*models.Loan, error)
	List(ctx context.Context, filter models.LoanFilter, offset, limit int) ([]models.Loan, int64, error)
	GetByID(ctx context.Context, id uint) (*models.Loan, error)
	Review(ctx context.Context, actor audit.Actor, id uint, req ReviewRequest) (*models.Loan, error)
	Disburse(ctx context.Context, actor audit.Actor, id uint) (*models.Loan, error)
	Repay(ctx context.Context, actor audit.Actor, id uint, req RepayRequest) (*Repayment, error)
	SweepOverdue(ctx context.Context) (SweepResult, error)
}

type service struct {
	store    repositories.Store
	settings SettingsReader
	mailer   email.Service
	events   events.Publisher
	log      *zap.Logger
	now      func() time.Time
}

func NewService(store repositories.Store, settings SettingsReader, mailer email.Service, publisher events.Publisher, log *zap.Logger) Service {
	if store == nil {
		panic("store is required")
	}
	if settings == nil {
		panic("settings are required")
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
		mailer:   mailer,
		events:   publisher,
		log:      logger.OrNop(log),
		now:      time.Now,
	}
}

func (s *service) Calculate(req CalculateRequest) (*Breakdown, error) {
	return Calculate(req.Amount, req.InterestRate, req.TenureMonths, s.now())
}

func (s *service) Apply(ctx context.Context, userID uint, req ApplyRequest) (*models.Loan, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive() {
		return nil, apperrors.ErrAccountInactive
	}

	if max := s.settings.Decimal(ctx, settings.KeyLoanMaxAmount); max.IsPositive() && req.Amount.GreaterThan(max) {
		return nil, ErrAmountTooHigh.WithMessage("loan amount must not exceed %s", max.StringFixed(2))
	}
	if min := s.settings.Int(ctx, settings.KeyLoanMinCreditScore); user.CreditScore < min {
		return nil, ErrCreditScoreTooLow.WithMessage("credit score %d is below the minimum of %d", user.CreditScore, min)
	}

	for _, status := range blockingStatuses {
		_, open, err := s.store.Loans().List(ctx, models.LoanFilter{UserID: &userID, Status: status}, 0, 1)
		if err != nil {
			return nil, err
		}
		if open > 0 {
			return nil, ErrLoanOpen
		}
	}

	b, err := Calculate(req.Amount, req.InterestRate, req.TenureMonths, s.now())
	if err != nil {
		return nil, err
	}
	loan := &models.Loan{
		UserID:          userID,
		Amount:          req.Amount.Round(2),
		InterestRate:    req.InterestRate,
		TenureMonths:    req.TenureMonths,
		EMIAmount:       b.EMI,
		TotalPayable:    b.TotalPayable,
		TotalPaid:       decimal.Zero,
		RemainingAmount: b.TotalPayable,
		Status:          models.LoanStatusPending,
		Purpose:         req.Purpose,
		CreditScore:     user.CreditScore,
	}
	if err := s.store.Loans().Create(ctx, loan); err != nil {
		return nil, err
	}

	s.log.Info("loan applied",
		zap.Uint("loan_id", loan.ID),
		zap.Uint("user_id", userID),
		zap.String("amount", loan.Amount.StringFixed(2)))
	return loan, nil
}

func (s *service) List(ctx context.Context, filter models.LoanFilter, offset, limit int) ([]models.Loan, int64, error) {
	return s.store.Loans().List(ctx, filter, offset, limit)
}

func (s *service) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	return s.store.Loans().GetByID(ctx, id)
}

func (s *service) Review(ctx context.Context, actor audit.Actor, id uint, req ReviewRequest) (*models.Loan, error) {
	switch req.Action {
	case ActionApprove:
	case ActionReject:
		if strings.TrimSpace(req.Reason) == "" {
			return nil, ErrReasonRequired
		}
	default:
		return nil, ErrUnknownAction
	}

	var (
		loan *models.Loan
		user *models.User
	)
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		var err error
		if loan, err = tx.Loans().GetForUpdate(ctx, id); err != nil {
			return err
		}
		if loan.Status != models.LoanStatusPending {
			return apperrors.ErrInvalidTransition.WithMessage("cannot %s a %s loan", req.Action, strings.ToLower(loan.Status))
		}
		if user, err = tx.Users().GetByID(ctx, loan.UserID); err != nil {
			return err
		}

		now := s.now()
		if req.Action == ActionApprove {
			loan.Status = models.LoanStatusApproved
			loan.ApprovedBy = actor.AdminID
			loan.ApprovedAt = &now
		} else {
			loan.Status = models.LoanStatusRejected
			loan.RejectionReason = req.Reason
		}
		if err := tx.Loans().Update(ctx, loan); err != nil {
			return err
		}
		return audit.Record(ctx, tx.Audit(), actor, audit.Entry{
			Action:   "loan." + req.Action,
			Entity:   "loan",
			EntityID: loan.ID,
			OldData:  map[string]interface{}{"status": models.LoanStatusPending},
			NewData:  map[string]interface{}{"status": loan.Status, "reason": req.Reason},
			Severity: models.SeverityHigh,
		})
	})
	if err != nil {
		return nil, err
	}

	subject, template := events.LoanApproved, email.TemplateLoanApproved
	if req.Action == ActionReject {
		subject, template = events.LoanRejected, email.TemplateLoanRejected
	}
	s.publish(ctx, subject, loan)
	s.mail(loan, email.Message{To: user.Email, Template: template, Data: map[string]interface{}{
		"Name":     user.Name,
		"Amount":   loan.Amount.StringFixed(2),
		"EMI":      loan.EMIAmount.StringFixed(2),
		"Tenure":   loan.TenureMonths,
		"Reason":   req.Reason,
		"Currency": models.DefaultCurrency,
	}})
	return loan, nil
}

// Disburse credits an approved loan to the user's balance and fixes the
// repayment schedule from today.
func (s *service) Disburse(ctx context.Context, actor audit.Actor, id uint) (*models.Loan, error) {
	var loan *models.Loan
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		var err error
		if loan, err = tx.Loans().GetForUpdate(ctx, id); err != nil {
			return err
		}
		if loan.Status != models.LoanStatusApproved {
			return apperrors.ErrInvalidTransition.WithMessage("cannot disburse a %s loan", strings.ToLower(loan.Status))
		}

		now := s.now()
		b, err := Calculate(loan.Amount, loan.InterestRate, loan.TenureMonths, now)
		if err != nil {
			return err
		}
		for i := range b.Schedule {
			b.Schedule[i].LoanID = loan.ID
		}
		if err := tx.Loans().CreateSchedule(ctx, b.Schedule); err != nil {
			return err
		}

		credit := &models.Transaction{
			UserID:      loan.UserID,
			Type:        models.TransactionTypeLoanDisbursement,
			Amount:      loan.Amount,
			Fee:         decimal.Zero,
			NetAmount:   loan.Amount,
			Currency:    models.DefaultCurrency,
			Status:      models.TransactionStatusCompleted,
			Gateway:     models.GatewaySystem,
			Reference:   utils.NewReference(),
			Description: "Loan disbursement",
			ApprovedBy:  actor.AdminID,
			ProcessedAt: &now,
			Metadata:    models.JSON{"loan_id": loan.ID},
		}
		if err := tx.Transactions().Create(ctx, credit); err != nil {
			return err
		}
		if err := tx.Users().AdjustBalance(ctx, loan.UserID, loan.Amount); err != nil {
			return err
		}

		due := b.Schedule[0].DueDate
		loan.Status = models.LoanStatusActive
		loan.DisbursedAt = &now
		loan.NextDueDate = &due
		loan.EMIAmount = b.EMI
		loan.TotalPayable = b.TotalPayable
		loan.RemainingAmount = b.TotalPayable
		if err := tx.Loans().Update(ctx, loan); err != nil {
			return err
		}
		loan.RepaymentSchedule = b.Schedule
		return audit.Record(ctx, tx.Audit(), actor, audit.Entry{
			Action:   "loan.disbursed",
			Entity:   "loan",
			EntityID: loan.ID,
			OldData:  map[string]interface{}{"status": models.LoanStatusApproved},
			NewData: map[string]interface{}{
				"status":         loan.Status,
				"transaction_id": credit.ID,
				"amount":         loan.Amount.StringFixed(2),
			},
			Severity: models.SeverityCritical,
		})
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.LoanDisbursed, loan)
	return loan, nil
}

// Repay settles as many whole installments as the amount covers, oldest
// first. Late fees are part of what an installment costs.
func (s *service) Repay(ctx context.Context, actor audit.Actor, id uint, req RepayRequest) (*Repayment, error) {
	if !req.Amount.IsPositive() {
		return nil, apperrors.ErrInvalidAmount
	}

	var (
		loan *models.Loan
		out  = &Repayment{Applied: decimal.Zero}
	)
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		var err error
		if loan, err = tx.Loans().GetForUpdate(ctx, id); err != nil {
			return err
		}
		if loan.Status != models.LoanStatusActive && loan.Status != models.LoanStatusDefaulted {
			return ErrNotRepayable
		}
		rows, err := tx.Loans().UnpaidInstallments(ctx, id)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			return ErrNotRepayable
		}

		now := s.now()
		left := req.Amount
		scheduled := decimal.Zero
		paid := 0
		for i := range rows {
			due := rows[i].Due()
			if left.LessThan(due) {
				break
			}
			rows[i].Status = models.RepaymentStatusPaid
			rows[i].PaidAt = &now
			if err := tx.Loans().UpdateRepayment(ctx, &rows[i]); err != nil {
				return err
			}
			left = left.Sub(due)
			out.Applied = out.Applied.Add(due)
			scheduled = scheduled.Add(rows[i].Amount)
			out.Installments = append(out.Installments, rows[i].Installment)
			paid++
		}
		if paid == 0 {
			return ErrBelowInstallment.WithMessage("amount must be at least %s", rows[0].Due().StringFixed(2))
		}

		debit := &models.Transaction{
			UserID:           loan.UserID,
			Type:             models.TransactionTypeLoanRepayment,
			Amount:           out.Applied,
			Fee:              decimal.Zero,
			NetAmount:        out.Applied,
			Currency:         models.DefaultCurrency,
			Status:           models.TransactionStatusCompleted,
			Gateway:          models.GatewayManual,
			GatewayReference: req.Reference,
			Reference:        utils.NewReference(),
			Description:      "Loan repayment",
			ApprovedBy:       actor.AdminID,
			ProcessedAt:      &now,
			Metadata:         models.JSON{"loan_id": loan.ID, "installments": out.Installments, "from_balance": req.FromBalance},
		}
		if req.FromBalance {
			debit.Gateway = models.GatewaySystem
			if err := tx.Users().AdjustBalance(ctx, loan.UserID, out.Applied.Neg()); err != nil {
				return err
			}
		}
		if err := tx.Transactions().Create(ctx, debit); err != nil {
			return err
		}
		out.Transaction = debit.ID

		loan.TotalPaid = loan.TotalPaid.Add(out.Applied)
		loan.RemainingAmount = decimal.Max(loan.RemainingAmount.Sub(scheduled), decimal.Zero)
		if paid == len(rows) {
			loan.Status = models.LoanStatusCompleted
			loan.NextDueDate = nil
			loan.RemainingAmount = decimal.Zero
		} else {
			next := rows[paid].DueDate
			loan.NextDueDate = &next
			if loan.Status == models.LoanStatusDefaulted && rows[paid].Status != models.RepaymentStatusOverdue {
				loan.Status = models.LoanStatusActive
			}
		}
		out.Remaining = loan.RemainingAmount
		out.Completed = loan.Status == models.LoanStatusCompleted

		if err := tx.Loans().Update(ctx, loan); err != nil {
			return err
		}
		return audit.Record(ctx, tx.Audit(), actor, audit.Entry{
			Action:   "loan.repaid",
			Entity:   "loan",
			EntityID: loan.ID,
			NewData: map[string]interface{}{
				"applied":      out.Applied.StringFixed(2),
				"installments": out.Installments,
				"status":       loan.Status,
				"from_balance": req.FromBalance,
			},
			Severity: models.SeverityMedium,
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.LoanRepaid, loan)
	return out, nil
}

// SweepOverdue marks due installments Overdue with a late fee and defaults
// loans that reach DefaultsAfter overdue installments. Each loan is handled in
// its own database transaction, locking the loan before its installments in
// the same order Repay does.
func (s *service) SweepOverdue(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	now := s.now()
	ids, err := s.store.Loans().DueLoanIDs(ctx, now)
	if err != nil {
		return res, err
	}

	pct := s.settings.Decimal(ctx, settings.KeyLoanLateFeePercent)
	for _, loanID := range ids {
		var (
			defaulted *models.Loan
			marked    int
		)
		err := s.store.WithTx(ctx, func(tx repositories.Store) error {
			loan, err := tx.Loans().GetForUpdate(ctx, loanID)
			if err != nil {
				return err
			}
			if loan.Status != models.LoanStatusActive {
				return nil
			}
			// Rows repaid since DueLoanIDs ran are no longer Pending and drop out here.
			rows, err := tx.Loans().DueInstallments(ctx, loanID, now)
			if err != nil {
				return err
			}
			for i := range rows {
				rows[i].Status = models.RepaymentStatusOverdue
				rows[i].LateFee = rows[i].Amount.Mul(pct).Div(hundred).Round(2)
				if err := tx.Loans().UpdateRepayment(ctx, &rows[i]); err != nil {
					return err
				}
			}
			marked = len(rows)
			if marked == 0 {
				return nil
			}
			n, err := tx.Loans().CountOverdue(ctx, loanID)
			if err != nil {
				return err
			}
			if n < DefaultsAfter {
				return nil
			}
			loan.Status = models.LoanStatusDefaulted
			if err := tx.Loans().Update(ctx, loan); err != nil {
				return err
			}
			defaulted = loan
			return audit.Record(ctx, tx.Audit(), audit.Actor{}, audit.Entry{
				Action:   "loan.defaulted",
				Entity:   "loan",
				EntityID: loan.ID,
				NewData:  map[string]interface{}{"overdue_installments": n},
				Severity: models.SeverityCritical,
			})
		})
		if err != nil {
			s.log.Error("overdue sweep failed", zap.Uint("loan_id", loanID), zap.Error(err))
			continue
		}
		res.Overdue += marked
		if defaulted != nil {
			res.Defaulted++
			s.publish(ctx, events.LoanDefaulted, defaulted)
		}
	}

	if res.Overdue > 0 {
		s.log.Info("overdue sweep finished",
			zap.Int("overdue", res.Overdue),
			zap.Int("defaulted", res.Defaulted))
	}
	return res, nil
}

func (s *service) publish(ctx context.Context, subject string, loan *models.Loan) {
	_ = s.events.Publish(ctx, subject, map[string]interface{}{
		"loan_id":   loan.ID,
		"user_id":   loan.UserID,
		"status":    loan.Status,
		"amount":    loan.Amount.StringFixed(2),
		"remaining": loan.RemainingAmount.StringFixed(2),
	})
}

func (s *service) mail(loan *models.Loan, msg email.Message) {
	if err := s.mailer.Enqueue(msg); err != nil {
		s.log.Warn("failed to queue email",
			zap.Uint("loan_id", loan.ID),
			zap.String("template", msg.Template),
			zap.Error(err))
	}
}
