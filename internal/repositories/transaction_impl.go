package repositories

import (
	"context"
	"strings"
	"time"

	"iprofit/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	return translate(r.db.WithContext(ctx).Create(tx).Error, ErrTransactionNotFound)
}

func (r *transactionRepository) GetByID(ctx context.Context, id uint) (*models.Transaction, error) {
	var tx models.Transaction
	if err := r.db.WithContext(ctx).Preload("User").First(&tx, id).Error; err != nil {
		return nil, translate(err, ErrTransactionNotFound)
	}
	return &tx, nil
}

func (r *transactionRepository) GetForUpdate(ctx context.Context, id uint) (*models.Transaction, error) {
	var tx models.Transaction
	if err := forUpdate(r.db.WithContext(ctx)).First(&tx, id).Error; err != nil {
		return nil, translate(err, ErrTransactionNotFound)
	}
	return &tx, nil
}

func (r *transactionRepository) Update(ctx context.Context, tx *models.Transaction) error {
	return translate(r.db.WithContext(ctx).Omit("User").Save(tx).Error, ErrTransactionNotFound)
}

func (r *transactionRepository) GatewayReferenceInUse(ctx context.Context, gateway, reference string, excludeID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("type = ? AND gateway = ? AND gateway_reference = ? AND status <> ? AND id <> ?",
			models.TransactionTypeDeposit, gateway, reference, models.TransactionStatusRejected, excludeID).
		Count(&n).Error
	if err != nil {
		return false, translate(err, ErrTransactionNotFound)
	}
	return n > 0, nil
}

func (r *transactionRepository) filtered(ctx context.Context, f models.TransactionFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Transaction{})
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Gateway != "" {
		q = q.Where("gateway = ?", f.Gateway)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + s + "%"
		q = q.Where("reference LIKE ? OR gateway_reference LIKE ? OR description LIKE ?", like, like, like)
	}
	return q
}

func (r *transactionRepository) List(ctx context.Context, filter models.TransactionFilter, offset, limit int) ([]models.Transaction, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, translate(err, ErrTransactionNotFound)
	}

	var txs []models.Transaction
	err := r.filtered(ctx, filter).
		Preload("User", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "email", "phone") }).
		Order("created_at DESC").
		Scopes(paginate(offset, limit)).
		Find(&txs).Error
	if err != nil {
		return nil, 0, translate(err, ErrTransactionNotFound)
	}
	return txs, total, nil
}

func (r *transactionRepository) Summary(ctx context.Context, filter models.TransactionFilter) ([]models.TransactionSummary, error) {
	// Status is grouped, so a status filter would collapse the summary to one row.
	filter.Status = ""
	var rows []models.TransactionSummary
	err := r.filtered(ctx, filter).
		Select("status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount, COALESCE(SUM(fee), 0) AS fees").
		Group("status").
		Order("status").
		Scan(&rows).Error
	return rows, translate(err, ErrTransactionNotFound)
}

func (r *transactionRepository) SumWithdrawalsSince(ctx context.Context, userID uint, since time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("user_id = ? AND type = ? AND created_at >= ? AND status NOT IN ?",
			userID, models.TransactionTypeWithdrawal, since,
			[]string{models.TransactionStatusRejected, models.TransactionStatusFailed}).
		Select("COALESCE(SUM(amount), 0)").
		Row().Scan(&total)
	if err != nil {
		return decimal.Zero, translate(err, ErrTransactionNotFound)
	}
	return total, nil
}

func (r *transactionRepository) CountApprovedDeposits(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("user_id = ? AND type = ? AND status IN ?", userID, models.TransactionTypeDeposit,
			[]string{models.TransactionStatusApproved, models.TransactionStatusCompleted}).
		Count(&count).Error
	return count, translate(err, ErrTransactionNotFound)
}

func (r *transactionRepository) CountPendingOlderThan(ctx context.Context, txType string, before time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("type = ? AND status = ? AND created_at < ?", txType, models.TransactionStatusPending, before).
		Count(&count).Error
	return count, translate(err, ErrTransactionNotFound)
}
