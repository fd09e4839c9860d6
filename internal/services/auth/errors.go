package auth

import (
	"net/http"

	apperrors "iprofit/internal/errors"
)

var (
	ErrInvalidCredentials = apperrors.ErrUnauthorized.WithMessage("invalid credentials")
	ErrInvalidToken       = apperrors.ErrUnauthorized.WithMessage("invalid or expired token")
	ErrTokenRevoked       = apperrors.ErrUnauthorized.WithMessage("token has been revoked")
	ErrAccountLocked      = apperrors.New("ACCOUNT_LOCKED", http.StatusLocked, "account temporarily locked after repeated failed logins")
	ErrAccountDisabled    = apperrors.ErrAccountInactive
	ErrAlreadyRegistered  = apperrors.ErrConflict.WithMessage("email or phone already registered")
	ErrInvalidReferral    = apperrors.ErrInvalidInput.WithMessage("invalid referral code")
	ErrDeviceLimit        = apperrors.New("DEVICE_LIMIT_REACHED", http.StatusForbidden, "this device has reached its account limit")
	ErrDeviceBlocked      = apperrors.New("DEVICE_BLOCKED", http.StatusForbidden, "this device has been blocked")
)
