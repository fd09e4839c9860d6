package handlers

import (
	"iprofit/internal/services/dashboard"
	"iprofit/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	dashboardService dashboard.Service
}

func NewDashboardHandler(dashboardService dashboard.Service) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// Metrics returns the headline counters of the admin dashboard.
func (h *DashboardHandler) Metrics(c *fiber.Ctx) error {
	m, err := h.dashboardService.Metrics(c.UserContext())
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Dashboard metrics retrieved", m)
}

// Charts returns daily series for period (7d, 30d or 90d).
func (h *DashboardHandler) Charts(c *fiber.Ctx) error {
	charts, err := h.dashboardService.Charts(c.UserContext(), c.Query("period"))
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Dashboard charts retrieved", charts)
}
