package loan

import (
	"time"

	apperrors "iprofit/internal/errors"
	"iprofit/internal/models"

	"github.com/shopspring/decimal"
)

// MaxTenureMonths is the longest schedule the calculator builds.
const MaxTenureMonths = 360

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// Breakdown is the priced repayment plan of a loan.
type Breakdown struct {
	EMI           decimal.Decimal        `json:"emi"`
	TotalPayable  decimal.Decimal        `json:"total_payable"`
	TotalInterest decimal.Decimal        `json:"total_interest"`
	Schedule      []models.LoanRepayment `json:"schedule"`
}

// Calculate prices a loan of principal at annualRate percent over months.
// Every row is rounded to cents and the last row absorbs the remainder so the
// principal column sums to exactly principal. Due dates fall monthly after
// start.
func Calculate(principal, annualRate decimal.Decimal, months int, start time.Time) (*Breakdown, error) {
	switch {
	case !principal.IsPositive():
		return nil, apperrors.ErrInvalidAmount
	case annualRate.IsNegative():
		return nil, apperrors.ErrInvalidInput.WithMessage("interest rate must not be negative")
	case months < 1 || months > MaxTenureMonths:
		return nil, apperrors.ErrInvalidInput.WithMessage("tenure must be between 1 and %d months", MaxTenureMonths)
	}

	principal = principal.Round(2)
	r := annualRate.Div(twelve).Div(hundred)
	n := decimal.NewFromInt(int64(months))

	var emi decimal.Decimal
	if r.IsZero() {
		emi = principal.Div(n).Round(2)
	} else {
		growth := decimal.NewFromInt(1).Add(r).Pow(n)
		emi = principal.Mul(r).Mul(growth).Div(growth.Sub(decimal.NewFromInt(1))).Round(2)
	}

	b := &Breakdown{EMI: emi, Schedule: make([]models.LoanRepayment, 0, months)}
	remaining := principal
	for i := 1; i <= months; i++ {
		interest := remaining.Mul(r).Round(2)
		part := emi.Sub(interest)
		if i == months || part.GreaterThan(remaining) {
			part = remaining
		}
		row := models.LoanRepayment{
			Installment: i,
			DueDate:     start.AddDate(0, i, 0),
			Amount:      part.Add(interest),
			Principal:   part,
			Interest:    interest,
			Status:      models.RepaymentStatusPending,
			LateFee:     decimal.Zero,
		}
		b.Schedule = append(b.Schedule, row)
		b.TotalPayable = b.TotalPayable.Add(row.Amount)
		b.TotalInterest = b.TotalInterest.Add(interest)
		remaining = remaining.Sub(part)
	}
	return b, nil
}
