package validation

import (
	apperrors "iprofit/internal/errors"

	"github.com/shopspring/decimal"
)

// Signup validates the hand-checked parts of a registration.
func (v *Validator) Signup(name, email, phone, password string) {
	v.Required("name", name)
	v.MaxLength("name", name, MaxNameLength)
	v.Email("email", email)
	v.Phone("phone", phone)
	v.Password("password", password)
}

// BulkIDs validates the id list of a bulk action.
func (v *Validator) BulkIDs(ids []uint) {
	v.Check(len(ids) > 0, "ids", "must contain at least one id")
	v.Check(len(ids) <= MaxBulkIDs, "ids", "must not contain more than 100 ids")
}

// AmountInRange returns ErrAmountOutOfRange when amount is outside [min, max].
// A zero max means no upper bound.
func AmountInRange(amount, min, max decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperrors.ErrInvalidAmount
	}
	if amount.LessThan(min) {
		return apperrors.ErrAmountOutOfRange.WithMessage("amount must be at least %s", min.StringFixed(2))
	}
	if max.IsPositive() && amount.GreaterThan(max) {
		return apperrors.ErrAmountOutOfRange.WithMessage("amount must not exceed %s", max.StringFixed(2))
	}
	return nil
}
