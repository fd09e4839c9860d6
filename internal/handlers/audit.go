package handlers

import (
	"iprofit/internal/models"
	"iprofit/internal/services/audit"
	"iprofit/internal/utils/pagination"
	"iprofit/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type AuditHandler struct {
	audit audit.Service
}

func NewAuditHandler(audit audit.Service) *AuditHandler {
	return &AuditHandler{audit: audit}
}

func (h *AuditHandler) List(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)
	filter := models.AuditFilter{
		AdminID:  queryUint(c, "admin_id"),
		Action:   c.Query("action"),
		Entity:   c.Query("entity"),
		EntityID: c.Query("entity_id"),
		Severity: c.Query("severity"),
	}
	filter.From, filter.To = queryRange(c)

	rows, total, err := h.audit.List(c.UserContext(), filter, p.Offset, p.Limit)
	if err != nil {
		return response.FromError(c, err)
	}

	p.Total = total
	return c.JSON(pagination.Response(p, rows))
}
