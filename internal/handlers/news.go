package handlers

import (
	"iprofit/internal/middleware"
	"iprofit/internal/models"
	"iprofit/internal/services/news"
	"iprofit/internal/utils/pagination"
	"iprofit/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type NewsHandler struct {
	news news.Service
}

func NewNewsHandler(news news.Service) *NewsHandler {
	return &NewsHandler{news: news}
}

func (h *NewsHandler) List(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)
	filter := models.NewsFilter{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}

	rows, total, err := h.news.List(c.UserContext(), filter, p.Offset, p.Limit)
	if err != nil {
		return response.FromError(c, err)
	}

	p.Total = total
	return c.JSON(pagination.Response(p, rows))
}

func (h *NewsHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	n, err := h.news.GetByID(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "News retrieved", n)
}

func (h *NewsHandler) Create(c *fiber.Ctx) error {
	var req news.Request
	if ok, err := bind(c, &req); !ok {
		return err
	}

	n, err := h.news.Create(c.UserContext(), middleware.Actor(c), req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "News created", n)
}

func (h *NewsHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req news.Request
	if ok, err := bind(c, &req); !ok {
		return err
	}

	n, err := h.news.Update(c.UserContext(), middleware.Actor(c), id, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "News updated", n)
}

func (h *NewsHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	if err := h.news.Delete(c.UserContext(), middleware.Actor(c), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "News deleted", nil)
}
