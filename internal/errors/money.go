package errors

import "net/http"

var (
	ErrInsufficientBalance = &DomainError{
		Code:    "INSUFFICIENT_BALANCE",
		Message: "insufficient balance",
		Status:  http.StatusUnprocessableEntity,
	}
	ErrInvalidAmount = &DomainError{
		Code:    "INVALID_AMOUNT",
		Message: "invalid amount",
		Status:  http.StatusBadRequest,
	}
	ErrAmountOutOfRange = &DomainError{
		Code:    "AMOUNT_OUT_OF_RANGE",
		Message: "amount outside the allowed range",
		Status:  http.StatusUnprocessableEntity,
	}
	ErrDailyLimitExceeded = &DomainError{
		Code:    "DAILY_LIMIT_EXCEEDED",
		Message: "daily withdrawal limit exceeded",
		Status:  http.StatusUnprocessableEntity,
	}
	ErrAccountInactive = &DomainError{
		Code:    "ACCOUNT_INACTIVE",
		Message: "account is not active",
		Status:  http.StatusForbidden,
	}
	ErrGatewayVerification = &DomainError{
		Code:    "GATEWAY_VERIFICATION_FAILED",
		Message: "payment could not be verified with the gateway",
		Status:  http.StatusUnprocessableEntity,
	}
)
