package handlers

import (
	"iprofit/internal/middleware"
	"iprofit/internal/models"
	"iprofit/internal/services/user"
	"iprofit/internal/utils"
	"iprofit/internal/utils/pagination"
	"iprofit/internal/utils/response"
	"iprofit/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	users user.Service
}

func NewUserHandler(users user.Service) *UserHandler {
	return &UserHandler{users: users}
}

// List returns users matching status, kyc_status, plan_id, search and a
// from/to registration window.
func (h *UserHandler) List(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)
	filter := models.UserFilter{
		Status:    c.Query("status"),
		KYCStatus: c.Query("kyc_status"),
		PlanID:    queryUint(c, "plan_id"),
		Search:    c.Query("search"),
	}
	filter.From, filter.To = queryRange(c)

	users, total, err := h.users.List(c.UserContext(), filter, p.Offset, p.Limit)
	if err != nil {
		return response.FromError(c, err)
	}

	p.Total = total
	return c.JSON(pagination.Response(p, users))
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	u, err := h.users.GetByID(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "User retrieved", u)
}

func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req user.UpdateRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	u, err := h.users.Update(c.UserContext(), middleware.Actor(c), id, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "User updated", u)
}

func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	if err := h.users.Delete(c.UserContext(), middleware.Actor(c), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "User deleted", nil)
}

// SubmitKYC stores the calling user's identity documents.
func (h *UserHandler) SubmitKYC(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}
	var req user.KYCSubmitRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	u, err := h.users.SubmitKYC(c.UserContext(), claims.UserID, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "KYC submitted", u)
}

// ReviewKYC approves or rejects a user's identity documents.
func (h *UserHandler) ReviewKYC(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req user.KYCReviewRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	u, err := h.users.ReviewKYC(c.UserContext(), middleware.Actor(c), id, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "KYC "+u.KYCStatus, u)
}

func (h *UserHandler) SetStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req user.StatusRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	u, err := h.users.SetStatus(c.UserContext(), middleware.Actor(c), id, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "User status updated", u)
}

// Bulk applies one action to up to 100 users and reports per-id results.
func (h *UserHandler) Bulk(c *fiber.Ctx) error {
	var req user.BulkRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	v := validation.New()
	v.BulkIDs(req.IDs)
	if !v.Valid() {
		return response.ValidationError(c, v.Errors)
	}
	if fields := validation.Struct(&req); len(fields) > 0 {
		return response.ValidationError(c, fields)
	}

	results, err := h.users.Bulk(c.UserContext(), middleware.Actor(c), req)
	if err != nil {
		return response.FromError(c, err)
	}

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	return response.Success(c, "Bulk action processed", fiber.Map{
		"results":   results,
		"succeeded": succeeded,
		"failed":    len(results) - succeeded,
	})
}

// AdjustBalance posts a manual bonus or penalty.
func (h *UserHandler) AdjustBalance(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req user.BalanceRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	tx, err := h.users.AdjustBalance(c.UserContext(), middleware.Actor(c), id, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Balance adjusted", tx)
}

// Transactions lists one user's ledger history.
func (h *UserHandler) Transactions(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	p := pagination.ParseFromRequest(c)
	filter := models.TransactionFilter{
		Type:   c.Query("type"),
		Status: c.Query("status"),
	}
	filter.From, filter.To = queryRange(c)

	txs, total, err := h.users.Transactions(c.UserContext(), id, filter, p.Offset, p.Limit)
	if err != nil {
		return response.FromError(c, err)
	}

	p.Total = total
	return c.JSON(pagination.Response(p, txs))
}
