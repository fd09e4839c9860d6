package handlers

import (
	"iprofit/internal/middleware"
	"iprofit/internal/services/plan"
	"iprofit/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type PlanHandler struct {
	plans plan.Service
}

func NewPlanHandler(plans plan.Service) *PlanHandler {
	return &PlanHandler{plans: plans}
}

func (h *PlanHandler) List(c *fiber.Ctx) error {
	plans, err := h.plans.List(c.UserContext(), c.QueryBool("active", false))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Plans retrieved", plans)
}

func (h *PlanHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	p, err := h.plans.GetByID(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Plan retrieved", p)
}

func (h *PlanHandler) Create(c *fiber.Ctx) error {
	var req plan.Request
	if ok, err := bind(c, &req); !ok {
		return err
	}

	p, err := h.plans.Create(c.UserContext(), middleware.Actor(c), req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Plan created", p)
}

func (h *PlanHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req plan.Request
	if ok, err := bind(c, &req); !ok {
		return err
	}

	p, err := h.plans.Update(c.UserContext(), middleware.Actor(c), id, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Plan updated", p)
}

func (h *PlanHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	if err := h.plans.Delete(c.UserContext(), middleware.Actor(c), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Plan deleted", nil)
}

// Assign moves a list of users onto the plan.
func (h *PlanHandler) Assign(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req plan.AssignRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	n, err := h.plans.Assign(c.UserContext(), middleware.Actor(c), id, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Plan assigned", fiber.Map{"assigned": n})
}
