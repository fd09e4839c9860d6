package repositories

import (
	"context"
	"time"

	"iprofit/internal/models"

	"github.com/shopspring/decimal"
)

// TransactionRepository persists ledger entries.
type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	GetByID(ctx context.Context, id uint) (*models.Transaction, error)

	// GetForUpdate locks the ledger row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id uint) (*models.Transaction, error)

	Update(ctx context.Context, tx *models.Transaction) error
	List(ctx context.Context, filter models.TransactionFilter, offset, limit int) ([]models.Transaction, int64, error)
	Summary(ctx context.Context, filter models.TransactionFilter) ([]models.TransactionSummary, error)

	// SumWithdrawalsSince totals withdrawals that still count against the daily limit.
	SumWithdrawalsSince(ctx context.Context, userID uint, since time.Time) (decimal.Decimal, error)

	// GatewayReferenceInUse reports whether a deposit other than excludeID
	// that is not Rejected already cites reference on gateway.
	GatewayReferenceInUse(ctx context.Context, gateway, reference string, excludeID uint) (bool, error)

	CountApprovedDeposits(ctx context.Context, userID uint) (int64, error)
	CountPendingOlderThan(ctx context.Context, txType string, before time.Time) (int64, error)
}
