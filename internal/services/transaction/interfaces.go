package transaction

import (
	"context"
	"time"

	"iprofit/internal/models"
	"iprofit/internal/services/fee"

	"github.com/shopspring/decimal"
)

type Service interface {
	RequestDeposit(ctx context.Context, userID uint, req DepositRequest) (*models.Transaction, error)
	RequestWithdrawal(ctx context.Context, userID uint, req WithdrawalRequest) (*models.Transaction, error)

	List(ctx context.Context, filter models.TransactionFilter, offset, limit int) ([]models.Transaction, int64, error)
	GetByID(ctx context.Context, id uint) (*models.Transaction, error)
	Summary(ctx context.Context, filter models.TransactionFilter) ([]models.TransactionSummary, error)

	ReviewDeposit(ctx context.Context, actor Actor, req DepositDecision) (*models.Transaction, error)
	ReviewWithdrawal(ctx context.Context, actor Actor, req WithdrawalDecision) (*models.Transaction, error)

	// StalePendingWithdrawals counts withdrawals still Pending after age.
	StalePendingWithdrawals(ctx context.Context, olderThan time.Duration) (int64, error)
}

// SettingsReader is the part of the settings service the workflow needs.
type SettingsReader interface {
	Decimal(ctx context.Context, key string) decimal.Decimal
}

// FeeQuoter prices requests.
type FeeQuoter interface {
	Deposit(ctx context.Context, amount decimal.Decimal) fee.Quote
	Withdrawal(ctx context.Context, amount decimal.Decimal) fee.Quote
}

// DepositVerifier confirms a deposit with its payment gateway.
type DepositVerifier interface {
	VerifyDeposit(ctx context.Context, tx *models.Transaction) error
}
