package repositories

import (
	"context"

	"iprofit/internal/models"

	"github.com/shopspring/decimal"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by id, with its plan, through the cache.
	GetByID(ctx context.Context, id uint) (*models.User, error)

	// GetByIDForUpdate locks the user row for the rest of the transaction.
	GetByIDForUpdate(ctx context.Context, id uint) (*models.User, error)

	// GetCredentials reads the row directly, skipping the cache, so the
	// password hash and token version are present.
	GetCredentials(ctx context.Context, id uint) (*models.User, error)

	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	GetByReferralCode(ctx context.Context, code string) (*models.User, error)
	ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error)

	Update(ctx context.Context, user *models.User) error
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error

	// AdjustBalance adds delta to the balance in one statement. A negative
	// delta that would overdraw the account returns ErrInsufficientBalance.
	AdjustBalance(ctx context.Context, id uint, delta decimal.Decimal) error

	IncrementTokenVersion(ctx context.Context, id uint) error
	List(ctx context.Context, filter models.UserFilter, offset, limit int) ([]models.User, int64, error)
	ListActive(ctx context.Context) ([]models.User, error)
	AssignPlan(ctx context.Context, planID uint, userIDs []uint) (int64, error)
	CountByPlan(ctx context.Context, planID uint) (int64, error)
}
