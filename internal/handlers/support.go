package handlers

import (
	"iprofit/internal/middleware"
	"iprofit/internal/models"
	"iprofit/internal/services/support"
	"iprofit/internal/utils"
	"iprofit/internal/utils/pagination"
	"iprofit/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type SupportHandler struct {
	support support.Service
}

func NewSupportHandler(support support.Service) *SupportHandler {
	return &SupportHandler{support: support}
}

// OpenTicket opens a ticket for the calling user.
func (h *SupportHandler) OpenTicket(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}
	var req support.OpenRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	t, err := h.support.Open(c.UserContext(), claims.UserID, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Ticket opened", t)
}

// MyTickets lists the calling user's tickets.
func (h *SupportHandler) MyTickets(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}
	p := pagination.ParseFromRequest(c)
	uid := claims.UserID
	filter := models.TicketFilter{UserID: &uid, Status: c.Query("status")}

	rows, total, err := h.support.List(c.UserContext(), filter, p.Offset, p.Limit)
	if err != nil {
		return response.FromError(c, err)
	}

	p.Total = total
	return c.JSON(pagination.Response(p, rows))
}

// UserReply adds the owner's message to their ticket.
func (h *SupportHandler) UserReply(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req support.ReplyRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	msg, err := h.support.UserReply(c.UserContext(), claims.UserID, id, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Reply added", msg)
}

func (h *SupportHandler) ListTickets(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)
	filter := models.TicketFilter{
		UserID:     queryUint(c, "user_id"),
		Status:     c.Query("status"),
		Priority:   c.Query("priority"),
		Category:   c.Query("category"),
		AssignedTo: queryUint(c, "assigned_to"),
		Search:     c.Query("search"),
	}

	rows, total, err := h.support.List(c.UserContext(), filter, p.Offset, p.Limit)
	if err != nil {
		return response.FromError(c, err)
	}

	p.Total = total
	return c.JSON(pagination.Response(p, rows))
}

func (h *SupportHandler) GetTicket(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	t, err := h.support.Get(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Ticket retrieved", t)
}

// Reply adds an admin message to a ticket.
func (h *SupportHandler) Reply(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req support.ReplyRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	msg, err := h.support.Reply(c.UserContext(), middleware.Actor(c), id, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Reply added", msg)
}

// UpdateTicket changes status, priority or assignee.
func (h *SupportHandler) UpdateTicket(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req support.UpdateRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	t, err := h.support.Update(c.UserContext(), middleware.Actor(c), id, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Ticket updated", t)
}

// FAQs lists FAQs. Admin callers see inactive entries too.
func (h *SupportHandler) FAQs(c *fiber.Ctx) error {
	activeOnly := true
	if claims, err := utils.GetUserClaims(c); err == nil && claims.IsAdmin() {
		activeOnly = c.QueryBool("active", false)
	}

	faqs, err := h.support.FAQs(c.UserContext(), c.Query("category"), activeOnly)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "FAQs retrieved", faqs)
}

func (h *SupportHandler) CreateFAQ(c *fiber.Ctx) error {
	var req support.FAQRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	f, err := h.support.CreateFAQ(c.UserContext(), middleware.Actor(c), req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "FAQ created", f)
}

func (h *SupportHandler) UpdateFAQ(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req support.FAQRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	f, err := h.support.UpdateFAQ(c.UserContext(), middleware.Actor(c), id, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "FAQ updated", f)
}

func (h *SupportHandler) DeleteFAQ(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	if err := h.support.DeleteFAQ(c.UserContext(), middleware.Actor(c), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "FAQ deleted", nil)
}
