package handlers

import (
	"iprofit/internal/middleware"
	"iprofit/internal/models"
	"iprofit/internal/services/transaction"
	"iprofit/internal/utils"
	"iprofit/internal/utils/pagination"
	"iprofit/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type TransactionHandler struct {
	transactions transaction.Service
}

func NewTransactionHandler(transactions transaction.Service) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

func transactionFilter(c *fiber.Ctx) models.TransactionFilter {
	filter := models.TransactionFilter{
		UserID:    queryUint(c, "user_id"),
		Type:      c.Query("type"),
		Status:    c.Query("status"),
		Gateway:   c.Query("gateway"),
		MinAmount: queryDecimal(c, "min_amount"),
		MaxAmount: queryDecimal(c, "max_amount"),
		Search:    c.Query("search"),
	}
	filter.From, filter.To = queryRange(c)
	return filter
}

// List returns ledger entries with a per-status summary of the same filter.
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)
	filter := transactionFilter(c)

	txs, total, err := h.transactions.List(c.UserContext(), filter, p.Offset, p.Limit)
	if err != nil {
		return response.FromError(c, err)
	}
	summary, err := h.transactions.Summary(c.UserContext(), filter)
	if err != nil {
		return response.FromError(c, err)
	}

	p.Total = total
	body := pagination.Response(p, txs)
	body["summary"] = summary
	return c.JSON(body)
}

func (h *TransactionHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	tx, err := h.transactions.GetByID(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Transaction retrieved", tx)
}

// RequestDeposit creates a pending deposit for the calling user.
func (h *TransactionHandler) RequestDeposit(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}
	var req transaction.DepositRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	tx, err := h.transactions.RequestDeposit(c.UserContext(), claims.UserID, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Deposit request submitted", tx)
}

// RequestWithdrawal creates a pending withdrawal for the calling user.
func (h *TransactionHandler) RequestWithdrawal(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}
	var req transaction.WithdrawalRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	tx, err := h.transactions.RequestWithdrawal(c.UserContext(), claims.UserID, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Withdrawal request submitted", tx)
}

// Deposits lists deposit entries only.
func (h *TransactionHandler) Deposits(c *fiber.Ctx) error {
	return h.listType(c, models.TransactionTypeDeposit)
}

// Withdrawals lists withdrawal entries only.
func (h *TransactionHandler) Withdrawals(c *fiber.Ctx) error {
	return h.listType(c, models.TransactionTypeWithdrawal)
}

func (h *TransactionHandler) listType(c *fiber.Ctx, txType string) error {
	p := pagination.ParseFromRequest(c)
	filter := transactionFilter(c)
	filter.Type = txType

	txs, total, err := h.transactions.List(c.UserContext(), filter, p.Offset, p.Limit)
	if err != nil {
		return response.FromError(c, err)
	}

	p.Total = total
	return c.JSON(pagination.Response(p, txs))
}

// ReviewDeposit approves or rejects a pending deposit.
func (h *TransactionHandler) ReviewDeposit(c *fiber.Ctx) error {
	var req transaction.DepositDecision
	if ok, err := bind(c, &req); !ok {
		return err
	}

	tx, err := h.transactions.ReviewDeposit(c.UserContext(), middleware.Actor(c), req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Deposit "+tx.Status, tx)
}

// ReviewWithdrawal moves a withdrawal through approve, reject, process,
// complete or fail.
func (h *TransactionHandler) ReviewWithdrawal(c *fiber.Ctx) error {
	var req transaction.WithdrawalDecision
	if ok, err := bind(c, &req); !ok {
		return err
	}

	tx, err := h.transactions.ReviewWithdrawal(c.UserContext(), middleware.Actor(c), req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Withdrawal "+tx.Status, tx)
}
