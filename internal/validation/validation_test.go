package validation

import (
	"testing"

	apperrors "iprofit/internal/errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type depositRequest struct {
	Amount  decimal.Decimal `json:"amount" validate:"required,gt=0"`
	Gateway string          `json:"gateway" validate:"required,oneof=manual bank stripe"`
	Email   string          `json:"email" validate:"omitempty,email"`
}

func TestStruct(t *testing.T) {
	errs := Struct(depositRequest{Amount: decimal.NewFromInt(50), Gateway: "bank"})
	assert.Empty(t, errs)

	errs = Struct(depositRequest{Amount: decimal.NewFromInt(-1), Gateway: "cash", Email: "nope"})
	assert.Contains(t, errs, "amount")
	assert.Contains(t, errs, "gateway")
	assert.Contains(t, errs, "email")
}

func TestValidator_Password(t *testing.T) {
	tests := []struct {
		password string
		valid    bool
	}{
		{"Str0ng!pass", true},
		{"short1!", false},
		{"alllowercase1!", false},
		{"NoDigits!!", false},
		{"NoSpecial123", false},
	}
	for _, tt := range tests {
		v := New()
		v.Password("password", tt.password)
		assert.Equal(t, tt.valid, v.Valid(), tt.password)
	}
}

func TestValidator_Signup(t *testing.T) {
	v := New()
	v.Signup("", "bad", "12", "weak")
	assert.False(t, v.Valid())
	assert.Contains(t, v.Errors, "name")
	assert.Contains(t, v.Errors, "email")
	assert.Contains(t, v.Errors, "phone")
	assert.Contains(t, v.Errors, "password")

	v = New()
	v.Signup("Rahim", "rahim@example.com", "+8801712345678", "Secret#123")
	assert.True(t, v.Valid())
}

func TestValidator_BulkIDs(t *testing.T) {
	ids := make([]uint, MaxBulkIDs+1)
	v := New()
	v.BulkIDs(ids)
	assert.False(t, v.Valid())

	v = New()
	v.BulkIDs(ids[:MaxBulkIDs])
	assert.True(t, v.Valid())
}

func TestAmountInRange(t *testing.T) {
	min := decimal.NewFromInt(10)
	max := decimal.NewFromInt(1000)

	assert.NoError(t, AmountInRange(decimal.NewFromInt(10), min, max))
	assert.ErrorIs(t, AmountInRange(decimal.Zero, min, max), apperrors.ErrInvalidAmount)
	assert.ErrorIs(t, AmountInRange(decimal.NewFromInt(5), min, max), apperrors.ErrAmountOutOfRange)
	assert.ErrorIs(t, AmountInRange(decimal.NewFromInt(1001), min, max), apperrors.ErrAmountOutOfRange)
	assert.NoError(t, AmountInRange(decimal.NewFromInt(1_000_000), min, decimal.Zero))
}
