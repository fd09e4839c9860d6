package repositories

import (
	"errors"
	"fmt"

	apperrors "iprofit/internal/errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound             = apperrors.ErrNotFound
	ErrUserNotFound         = apperrors.ErrNotFound.WithMessage("user not found")
	ErrAdminNotFound        = apperrors.ErrNotFound.WithMessage("admin not found")
	ErrTransactionNotFound  = apperrors.ErrNotFound.WithMessage("transaction not found")
	ErrReferralNotFound     = apperrors.ErrNotFound.WithMessage("referral not found")
	ErrPlanNotFound         = apperrors.ErrNotFound.WithMessage("plan not found")
	ErrLoanNotFound         = apperrors.ErrNotFound.WithMessage("loan not found")
	ErrTaskNotFound         = apperrors.ErrNotFound.WithMessage("task not found")
	ErrSubmissionNotFound   = apperrors.ErrNotFound.WithMessage("task submission not found")
	ErrNewsNotFound         = apperrors.ErrNotFound.WithMessage("news article not found")
	ErrTicketNotFound       = apperrors.ErrNotFound.WithMessage("support ticket not found")
	ErrFAQNotFound          = apperrors.ErrNotFound.WithMessage("faq not found")
	ErrSettingNotFound      = apperrors.ErrNotFound.WithMessage("setting not found")
	ErrDuplicate            = apperrors.ErrConflict.WithMessage("record already exists")
	ErrInsufficientBalance  = apperrors.ErrInsufficientBalance
	ErrCompletionCapReached = apperrors.ErrConflict.WithMessage("task has reached its completion limit")
)

// translate maps gorm errors onto repository sentinels.
func translate(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return fmt.Errorf("database operation failed: %w", err)
	}
}
