package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	apperrors "iprofit/internal/errors"
	"iprofit/internal/models"
	"iprofit/internal/services/audit"
	"iprofit/internal/services/transaction"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransactions implements only what a test sets; anything else panics
// through the nil embedded interface.
type fakeTransactions struct {
	transaction.Service
	withdrawal func(transaction.WithdrawalDecision) (*models.Transaction, error)
	deposit    func(userID uint, req transaction.DepositRequest) (*models.Transaction, error)
	list       func(models.TransactionFilter, int, int) ([]models.Transaction, int64, error)

	actor audit.Actor
}

func (f *fakeTransactions) ReviewWithdrawal(_ context.Context, actor audit.Actor, req transaction.WithdrawalDecision) (*models.Transaction, error) {
	f.actor = actor
	return f.withdrawal(req)
}

func (f *fakeTransactions) RequestDeposit(_ context.Context, userID uint, req transaction.DepositRequest) (*models.Transaction, error) {
	return f.deposit(userID, req)
}

func (f *fakeTransactions) List(_ context.Context, filter models.TransactionFilter, offset, limit int) ([]models.Transaction, int64, error) {
	return f.list(filter, offset, limit)
}

func (f *fakeTransactions) Summary(context.Context, models.TransactionFilter) ([]models.TransactionSummary, error) {
	return []models.TransactionSummary{{Status: models.TransactionStatusPending, Count: 2}}, nil
}

// withClaims stands in for the auth middleware.
func withClaims(claims *models.UserClaims) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("claims", claims)
		return c.Next()
	}
}

var (
	adminClaims = &models.UserClaims{UserID: 1, Role: models.RoleSuperAdmin, SubjectType: models.SubjectAdmin}
	userClaims  = &models.UserClaims{UserID: 42, Role: models.RoleUser, SubjectType: models.SubjectUser}
)

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)

	out := map[string]interface{}{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func TestReviewWithdrawalHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		result     error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "approved",
			body:       fiber.Map{"transactionId": 7, "action": "approve"},
			wantStatus: fiber.StatusOK,
		},
		{
			name:       "unknown action fails validation",
			body:       fiber.Map{"transactionId": 7, "action": "refund"},
			wantStatus: fiber.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "missing id fails validation",
			body:       fiber.Map{"action": "approve"},
			wantStatus: fiber.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "invalid transition is a conflict",
			body:       fiber.Map{"transactionId": 7, "action": "complete"},
			result:     apperrors.ErrInvalidTransition.WithMessage("cannot complete a Pending withdrawal"),
			wantStatus: fiber.StatusConflict,
			wantCode:   "INVALID_TRANSITION",
		},
		{
			name:       "insufficient balance",
			body:       fiber.Map{"transactionId": 7, "action": "approve"},
			result:     apperrors.ErrInsufficientBalance,
			wantStatus: fiber.StatusUnprocessableEntity,
			wantCode:   "INSUFFICIENT_BALANCE",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeTransactions{withdrawal: func(req transaction.WithdrawalDecision) (*models.Transaction, error) {
				if tt.result != nil {
					return nil, tt.result
				}
				tx := &models.Transaction{Type: models.TransactionTypeWithdrawal, Status: models.TransactionStatusApproved}
				tx.ID = req.TransactionID
				return tx, nil
			}}
			app := fiber.New()
			app.Post("/approve", withClaims(adminClaims), NewTransactionHandler(fake).ReviewWithdrawal)

			status, body := doJSON(t, app, "POST", "/approve", tt.body)
			assert.Equal(t, tt.wantStatus, status)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, body["code"])
			}
			if tt.wantStatus == fiber.StatusOK {
				require.NotNil(t, fake.actor.AdminID)
				assert.Equal(t, uint(1), *fake.actor.AdminID)
				assert.Equal(t, "Withdrawal Approved", body["message"])
			}
		})
	}
}

func TestRequestDepositHandler(t *testing.T) {
	var gotUser uint
	var gotAmount decimal.Decimal
	fake := &fakeTransactions{deposit: func(userID uint, req transaction.DepositRequest) (*models.Transaction, error) {
		gotUser, gotAmount = userID, req.Amount
		return &models.Transaction{UserID: userID, Amount: req.Amount, Status: models.TransactionStatusPending}, nil
	}}
	app := fiber.New()
	app.Post("/deposits", withClaims(userClaims), NewTransactionHandler(fake).RequestDeposit)

	status, _ := doJSON(t, app, "POST", "/deposits", fiber.Map{"amount": "250.50", "gateway": "bank"})
	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, uint(42), gotUser)
	assert.True(t, gotAmount.Equal(decimal.RequireFromString("250.50")))

	status, body := doJSON(t, app, "POST", "/deposits", fiber.Map{"amount": "-5", "gateway": "bank"})
	assert.Equal(t, fiber.StatusBadRequest, status)
	fields, _ := body["fields"].(map[string]interface{})
	assert.Contains(t, fields, "amount")
}

func TestListTransactionsHandler(t *testing.T) {
	var got models.TransactionFilter
	var gotOffset, gotLimit int
	fake := &fakeTransactions{list: func(f models.TransactionFilter, offset, limit int) ([]models.Transaction, int64, error) {
		got, gotOffset, gotLimit = f, offset, limit
		return []models.Transaction{{Type: models.TransactionTypeDeposit}}, 41, nil
	}}
	app := fiber.New()
	app.Get("/transactions", NewTransactionHandler(fake).List)

	status, body := doJSON(t, app, "GET", "/transactions?status=Pending&user_id=9&min_amount=100&from=2024-05-01&to=2024-05-31&page=3&limit=20", nil)
	require.Equal(t, fiber.StatusOK, status)

	assert.Equal(t, models.TransactionStatusPending, got.Status)
	require.NotNil(t, got.UserID)
	assert.Equal(t, uint(9), *got.UserID)
	require.NotNil(t, got.MinAmount)
	assert.True(t, got.MinAmount.Equal(decimal.NewFromInt(100)))
	require.NotNil(t, got.To)
	assert.Equal(t, 31, got.To.Day())
	assert.Equal(t, 23, got.To.Hour())
	assert.Equal(t, 40, gotOffset)
	assert.Equal(t, 20, gotLimit)

	meta := body["meta"].(map[string]interface{})
	assert.EqualValues(t, 41, meta["total_items"])
	assert.EqualValues(t, 3, meta["total_pages"])
	assert.NotNil(t, body["summary"])
}
