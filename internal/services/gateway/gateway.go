// Package gateway verifies deposits against the payment provider that
// reported them.
package gateway

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	apperrors "iprofit/internal/errors"
	"iprofit/internal/logger"
	"iprofit/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/client"
	"go.uber.org/zap"
)

// MetadataUserID is the PaymentIntent metadata key that names the paying user.
const MetadataUserID = "user_id"

// Verifier checks that a deposit was really paid before it is credited.
type Verifier interface {
	VerifyDeposit(ctx context.Context, tx *models.Transaction) error
}

// PaymentIntentGetter is the slice of the Stripe client the verifier needs.
type PaymentIntentGetter interface {
	Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type verifier struct {
	intents PaymentIntentGetter
	log     *zap.Logger
}

// NewStripeVerifier builds a Verifier backed by the Stripe API. With an empty
// key Stripe deposits cannot be verified and are refused.
func NewStripeVerifier(secretKey string, log *zap.Logger) Verifier {
	log = logger.OrNop(log)
	if secretKey == "" {
		log.Warn("STRIPE_SECRET_KEY not set, stripe deposits cannot be approved")
		return &verifier{log: log}
	}
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &verifier{intents: sc.PaymentIntents, log: log}
}

// NewVerifier builds a Verifier around an existing intent client.
func NewVerifier(intents PaymentIntentGetter, log *zap.Logger) Verifier {
	return &verifier{intents: intents, log: logger.OrNop(log)}
}

func (v *verifier) VerifyDeposit(ctx context.Context, tx *models.Transaction) error {
	switch tx.Gateway {
	case models.GatewayStripe:
		return v.verifyStripe(tx)
	default:
		// manual and bank deposits are checked by the reviewing admin
		return nil
	}
}

func (v *verifier) verifyStripe(tx *models.Transaction) error {
	if v.intents == nil {
		return apperrors.ErrGatewayVerification.WithMessage("stripe is not configured")
	}
	if !strings.HasPrefix(tx.GatewayReference, "pi_") {
		return apperrors.ErrGatewayVerification.WithMessage("deposit has no stripe payment intent")
	}

	pi, err := v.intents.Get(tx.GatewayReference, nil)
	if err != nil {
		v.log.Error("stripe payment intent lookup failed",
			zap.String("intent", tx.GatewayReference),
			zap.Uint("transaction_id", tx.ID),
			zap.Error(err))
		return fmt.Errorf("%w: %v", apperrors.ErrGatewayVerification, err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return apperrors.ErrGatewayVerification.WithMessage("payment intent status is %s", pi.Status)
	}
	if owner := pi.Metadata[MetadataUserID]; owner != strconv.FormatUint(uint64(tx.UserID), 10) {
		return apperrors.ErrGatewayVerification.WithMessage("payment intent does not belong to user %d", tx.UserID)
	}

	paid := decimal.New(pi.AmountReceived, -2)
	if pi.AmountReceived == 0 {
		paid = decimal.New(pi.Amount, -2)
	}
	if !paid.Equal(tx.Amount) {
		return apperrors.ErrGatewayVerification.WithMessage(
			"payment intent amount %s does not match deposit amount %s", paid.StringFixed(2), tx.Amount.StringFixed(2))
	}
	if pi.Currency != "" && !strings.EqualFold(string(pi.Currency), tx.Currency) {
		return apperrors.ErrGatewayVerification.WithMessage("payment intent currency %s does not match %s", pi.Currency, tx.Currency)
	}
	return nil
}
