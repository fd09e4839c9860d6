package handlers

import (
	"iprofit/internal/middleware"
	"iprofit/internal/models"
	"iprofit/internal/services/notification"
	"iprofit/internal/utils/pagination"
	"iprofit/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type NotificationHandler struct {
	notifications notification.Service
}

func NewNotificationHandler(notifications notification.Service) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)
	filter := models.NotificationFilter{
		UserID: queryUint(c, "user_id"),
		Type:   c.Query("type"),
		Read:   queryBool(c, "read"),
	}

	rows, total, err := h.notifications.List(c.UserContext(), filter, p.Offset, p.Limit)
	if err != nil {
		return response.FromError(c, err)
	}

	p.Total = total
	return c.JSON(pagination.Response(p, rows))
}

// Send notifies one user, a list of users or every active user.
func (h *NotificationHandler) Send(c *fiber.Ctx) error {
	var req notification.SendRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	res, err := h.notifications.Send(c.UserContext(), middleware.Actor(c), req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Notification sent", res)
}
