package transaction

import (
	apperrors "iprofit/internal/errors"
)

// Service errors
var (
	ErrNotDeposit        = apperrors.ErrInvalidInput.WithMessage("transaction is not a deposit")
	ErrNotWithdrawal     = apperrors.ErrInvalidInput.WithMessage("transaction is not a withdrawal")
	ErrUnknownAction     = apperrors.ErrInvalidInput.WithMessage("unknown action")
	ErrReasonRequired    = apperrors.ErrInvalidInput.WithMessage("a reason is required")
	ErrUnsupportedMethod = apperrors.ErrInvalidInput.WithMessage("unsupported payment gateway")
	ErrReferenceRequired = apperrors.ErrInvalidInput.WithMessage("gateway reference is required for this gateway")
	ErrReferenceInUse    = apperrors.ErrConflict.WithMessage("gateway reference is already used by another deposit")
)
