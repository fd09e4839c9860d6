package repositories

import (
	"context"
	"time"

	"iprofit/internal/models"

	"gorm.io/gorm"
)

type LoanRepository interface {
	Create(ctx context.Context, loan *models.Loan) error
	GetByID(ctx context.Context, id uint) (*models.Loan, error)
	GetForUpdate(ctx context.Context, id uint) (*models.Loan, error)
	Update(ctx context.Context, loan *models.Loan) error
	List(ctx context.Context, filter models.LoanFilter, offset, limit int) ([]models.Loan, int64, error)

	CreateSchedule(ctx context.Context, rows []models.LoanRepayment) error
	// UnpaidInstallments returns unpaid rows oldest first.
	UnpaidInstallments(ctx context.Context, loanID uint) ([]models.LoanRepayment, error)
	UpdateRepayment(ctx context.Context, row *models.LoanRepayment) error
	// DueLoanIDs returns active loans holding Pending installments due before
	// now, most overdue first.
	DueLoanIDs(ctx context.Context, now time.Time) ([]uint, error)
	// DueInstallments locks the Pending installments of loanID due before now.
	DueInstallments(ctx context.Context, loanID uint, now time.Time) ([]models.LoanRepayment, error)
	CountOverdue(ctx context.Context, loanID uint) (int64, error)
}

type loanRepository struct {
	db *gorm.DB
}

func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) Create(ctx context.Context, loan *models.Loan) error {
	return translate(r.db.WithContext(ctx).Omit("RepaymentSchedule", "User").Create(loan).Error, ErrLoanNotFound)
}

func (r *loanRepository) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).
		Preload("User", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "email", "phone", "credit_score") }).
		Preload("RepaymentSchedule", func(db *gorm.DB) *gorm.DB { return db.Order("installment ASC") }).
		First(&loan, id).Error
	if err != nil {
		return nil, translate(err, ErrLoanNotFound)
	}
	return &loan, nil
}

func (r *loanRepository) GetForUpdate(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	if err := forUpdate(r.db.WithContext(ctx)).First(&loan, id).Error; err != nil {
		return nil, translate(err, ErrLoanNotFound)
	}
	return &loan, nil
}

func (r *loanRepository) Update(ctx context.Context, loan *models.Loan) error {
	return translate(r.db.WithContext(ctx).Omit("RepaymentSchedule", "User").Save(loan).Error, ErrLoanNotFound)
}

func (r *loanRepository) List(ctx context.Context, f models.LoanFilter, offset, limit int) ([]models.Loan, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Loan{})
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, ErrLoanNotFound)
	}
	var loans []models.Loan
	err := q.Preload("User", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "email") }).
		Order("created_at DESC").Scopes(paginate(offset, limit)).Find(&loans).Error
	if err != nil {
		return nil, 0, translate(err, ErrLoanNotFound)
	}
	return loans, total, nil
}

func (r *loanRepository) CreateSchedule(ctx context.Context, rows []models.LoanRepayment) error {
	if len(rows) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).Create(&rows).Error, ErrLoanNotFound)
}

func (r *loanRepository) UnpaidInstallments(ctx context.Context, loanID uint) ([]models.LoanRepayment, error) {
	var rows []models.LoanRepayment
	err := forUpdate(r.db.WithContext(ctx)).
		Where("loan_id = ? AND status <> ?", loanID, models.RepaymentStatusPaid).
		Order("installment ASC").Find(&rows).Error
	return rows, translate(err, ErrLoanNotFound)
}

func (r *loanRepository) UpdateRepayment(ctx context.Context, row *models.LoanRepayment) error {
	return translate(r.db.WithContext(ctx).Save(row).Error, ErrLoanNotFound)
}

func (r *loanRepository) DueLoanIDs(ctx context.Context, now time.Time) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.LoanRepayment{}).
		Joins("JOIN loans ON loans.id = loan_repayments.loan_id AND loans.deleted_at IS NULL").
		Where("loan_repayments.status = ? AND loan_repayments.due_date < ? AND loans.status = ?",
			models.RepaymentStatusPending, now, models.LoanStatusActive).
		Group("loan_repayments.loan_id").
		Order("MIN(loan_repayments.due_date) ASC").
		Pluck("loan_repayments.loan_id", &ids).Error
	return ids, translate(err, ErrLoanNotFound)
}

func (r *loanRepository) DueInstallments(ctx context.Context, loanID uint, now time.Time) ([]models.LoanRepayment, error) {
	var rows []models.LoanRepayment
	err := forUpdate(r.db.WithContext(ctx)).
		Where("loan_id = ? AND status = ? AND due_date < ?", loanID, models.RepaymentStatusPending, now).
		Order("installment ASC").Find(&rows).Error
	return rows, translate(err, ErrLoanNotFound)
}

func (r *loanRepository) CountOverdue(ctx context.Context, loanID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.LoanRepayment{}).
		Where("loan_id = ? AND status = ?", loanID, models.RepaymentStatusOverdue).
		Count(&count).Error
	return count, translate(err, ErrLoanNotFound)
}
