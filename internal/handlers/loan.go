package handlers

import (
	"iprofit/internal/middleware"
	"iprofit/internal/models"
	"iprofit/internal/services/loan"
	"iprofit/internal/utils"
	"iprofit/internal/utils/pagination"
	"iprofit/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type LoanHandler struct {
	loans loan.Service
}

func NewLoanHandler(loans loan.Service) *LoanHandler {
	return &LoanHandler{loans: loans}
}

// Calculate quotes EMI and the amortisation schedule without saving anything.
func (h *LoanHandler) Calculate(c *fiber.Ctx) error {
	var req loan.CalculateRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	b, err := h.loans.Calculate(req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "EMI calculated", b)
}

// Apply files a loan application for the calling user.
func (h *LoanHandler) Apply(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}
	var req loan.ApplyRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	l, err := h.loans.Apply(c.UserContext(), claims.UserID, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Loan application submitted", l)
}

func (h *LoanHandler) List(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)
	filter := models.LoanFilter{
		UserID: queryUint(c, "user_id"),
		Status: c.Query("status"),
	}
	filter.From, filter.To = queryRange(c)

	loans, total, err := h.loans.List(c.UserContext(), filter, p.Offset, p.Limit)
	if err != nil {
		return response.FromError(c, err)
	}

	p.Total = total
	return c.JSON(pagination.Response(p, loans))
}

func (h *LoanHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	l, err := h.loans.GetByID(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Loan retrieved", l)
}

func (h *LoanHandler) Review(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req loan.ReviewRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	l, err := h.loans.Review(c.UserContext(), middleware.Actor(c), id, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Loan "+l.Status, l)
}

func (h *LoanHandler) Disburse(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	l, err := h.loans.Disburse(c.UserContext(), middleware.Actor(c), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Loan disbursed", l)
}

func (h *LoanHandler) Repay(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req loan.RepayRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	r, err := h.loans.Repay(c.UserContext(), middleware.Actor(c), id, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Repayment recorded", r)
}

// Sweep runs the overdue sweep on demand.
func (h *LoanHandler) Sweep(c *fiber.Ctx) error {
	res, err := h.loans.SweepOverdue(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Overdue sweep complete", res)
}
