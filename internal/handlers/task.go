package handlers

import (
	"iprofit/internal/middleware"
	"iprofit/internal/models"
	"iprofit/internal/services/task"
	"iprofit/internal/utils"
	"iprofit/internal/utils/pagination"
	"iprofit/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type TaskHandler struct {
	tasks task.Service
}

func NewTaskHandler(tasks task.Service) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

func (h *TaskHandler) List(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)
	filter := models.TaskFilter{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}

	tasks, total, err := h.tasks.List(c.UserContext(), filter, p.Offset, p.Limit)
	if err != nil {
		return response.FromError(c, err)
	}

	p.Total = total
	return c.JSON(pagination.Response(p, tasks))
}

func (h *TaskHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	t, err := h.tasks.GetByID(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Task retrieved", t)
}

func (h *TaskHandler) Create(c *fiber.Ctx) error {
	var req task.Request
	if ok, err := bind(c, &req); !ok {
		return err
	}

	t, err := h.tasks.Create(c.UserContext(), middleware.Actor(c), req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Task created", t)
}

func (h *TaskHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req task.Request
	if ok, err := bind(c, &req); !ok {
		return err
	}

	t, err := h.tasks.Update(c.UserContext(), middleware.Actor(c), id, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Task updated", t)
}

func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}

	if err := h.tasks.Delete(c.UserContext(), middleware.Actor(c), id); err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Task deleted", nil)
}

// Submit records the calling user's proof for a task.
func (h *TaskHandler) Submit(c *fiber.Ctx) error {
	claims, err := utils.GetUserClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req task.SubmitRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	sub, err := h.tasks.Submit(c.UserContext(), claims.UserID, id, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Created(c, "Submission received", sub)
}

// Submissions lists submissions, optionally for one task (task_id).
func (h *TaskHandler) Submissions(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)

	subs, total, err := h.tasks.Submissions(c.UserContext(), queryUint(c, "task_id"), c.Query("status"), p.Offset, p.Limit)
	if err != nil {
		return response.FromError(c, err)
	}

	p.Total = total
	return c.JSON(pagination.Response(p, subs))
}

func (h *TaskHandler) ReviewSubmission(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return response.FromError(c, err)
	}
	var req task.ReviewRequest
	if ok, err := bind(c, &req); !ok {
		return err
	}

	sub, err := h.tasks.Review(c.UserContext(), middleware.Actor(c), id, req)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Submission "+sub.Status, sub)
}
