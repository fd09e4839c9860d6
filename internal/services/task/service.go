package task

import (
	"context"
	"strings"
	"time"

	apperrors "iprofit/internal/errors"
	"iprofit/internal/logger"
	"iprofit/internal/models"
	"iprofit/internal/repositories"
	"iprofit/internal/services/audit"
	"iprofit/internal/utils"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Review actions
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

var (
	ErrTaskClosed       = apperrors.ErrInvalidInput.WithMessage("task is not accepting submissions")
	ErrAlreadySubmitted = apperrors.ErrConflict.WithMessage("task already submitted")
	ErrNotPending       = apperrors.ErrInvalidTransition.WithMessage("submission was already reviewed")
	ErrNoteRequired     = apperrors.ErrInvalidInput.WithMessage("a review note is required")
	ErrUnknownAction    = apperrors.ErrInvalidInput.WithMessage("unknown action")
	ErrInvalidWindow    = apperrors.ErrInvalidInput.WithMessage("valid_until must be after valid_from")
)

type Request struct {
	Title          string          `json:"title" validate:"required,max=200"`
	Description    string          `json:"description" validate:"max=5000"`
	Reward         decimal.Decimal `json:"reward" validate:"required,gt=0"`
	Category       string          `json:"category" validate:"max=100"`
	Difficulty     string          `json:"difficulty,omitempty" validate:"omitempty,oneof=Easy Medium Hard"`
	EstimatedTime  int             `json:"estimated_time" validate:"gte=0"`
	Instructions   []string        `json:"instructions,omitempty" validate:"max=50"`
	RequiredProof  []string        `json:"required_proof,omitempty" validate:"max=20"`
	MaxCompletions int             `json:"max_completions" validate:"gte=0"`
	ValidFrom      *time.Time      `json:"valid_from,omitempty"`
	ValidUntil     *time.Time      `json:"valid_until,omitempty"`
	Status         string          `json:"status,omitempty" validate:"omitempty,oneof=Active Inactive Paused"`
}

type SubmitRequest struct {
	Proof models.JSON `json:"proof" validate:"required"`
}

type ReviewRequest struct {
	Action string `json:"action" validate:"required,oneof=approve reject"`
	Note   string `json:"note,omitempty" validate:"max=1000"`
}

type Service interface {
	List(ctx context.Context, filter models.TaskFilter, offset, limit int) ([]models.Task, int64, error)
	GetByID(ctx context.Context, id uint) (*models.Task, error)
	Create(ctx context.Context, actor audit.Actor, req Request) (*models.Task, error)
	Update(ctx context.Context, actor audit.Actor, id uint, req Request) (*models.Task, error)
	Delete(ctx context.Context, actor audit.Actor, id uint) error

	Submit(ctx context.Context, userID, taskID uint, req SubmitRequest) (*models.TaskSubmission, error)
	Submissions(ctx context.Context, taskID *uint, status string, offset, limit int) ([]models.TaskSubmission, int64, error)
	Review(ctx context.Context, actor audit.Actor, submissionID uint, req ReviewRequest) (*models.TaskSubmission, error)
}

type service struct {
	store repositories.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewService(store repositories.Store, log *zap.Logger) Service {
	if store == nil {
		panic("store is required")
	}
	return &service{store: store, log: logger.OrNop(log), now: time.Now}
}

func (s *service) List(ctx context.Context, filter models.TaskFilter, offset, limit int) ([]models.Task, int64, error) {
	return s.store.Tasks().List(ctx, filter, offset, limit)
}

func (s *service) GetByID(ctx context.Context, id uint) (*models.Task, error) {
	return s.store.Tasks().GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, actor audit.Actor, req Request) (*models.Task, error) {
	t := &models.Task{Status: models.TaskStatusActive, Difficulty: "Easy"}
	if err := apply(t, req); err != nil {
		return nil, err
	}
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		if err := tx.Tasks().Create(ctx, t); err != nil {
			return err
		}
		return audit.Record(ctx, tx.Audit(), actor, audit.Entry{
			Action:   "task.created",
			Entity:   "task",
			EntityID: t.ID,
			NewData:  t,
		})
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) Update(ctx context.Context, actor audit.Actor, id uint, req Request) (*models.Task, error) {
	var t *models.Task
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		var err error
		if t, err = tx.Tasks().GetByID(ctx, id); err != nil {
			return err
		}
		before := *t
		if err := apply(t, req); err != nil {
			return err
		}
		if err := tx.Tasks().Update(ctx, t); err != nil {
			return err
		}
		return audit.Record(ctx, tx.Audit(), actor, audit.Entry{
			Action:   "task.updated",
			Entity:   "task",
			EntityID: t.ID,
			OldData:  before,
			NewData:  t,
		})
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) Delete(ctx context.Context, actor audit.Actor, id uint) error {
	return s.store.WithTx(ctx, func(tx repositories.Store) error {
		if err := tx.Tasks().Delete(ctx, id); err != nil {
			return err
		}
		return audit.Record(ctx, tx.Audit(), actor, audit.Entry{
			Action:   "task.deleted",
			Entity:   "task",
			EntityID: id,
			Severity: models.SeverityMedium,
		})
	})
}

// Submit records a user's proof. Each user may submit a task once.
func (s *service) Submit(ctx context.Context, userID, taskID uint, req SubmitRequest) (*models.TaskSubmission, error) {
	t, err := s.store.Tasks().GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !t.IsOpen(s.now()) {
		return nil, ErrTaskClosed
	}
	done, err := s.store.Tasks().HasSubmitted(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}
	if done {
		return nil, ErrAlreadySubmitted
	}
	for _, field := range t.RequiredProof {
		if _, ok := req.Proof[field]; !ok {
			return nil, apperrors.ErrInvalidInput.WithMessage("proof is missing %q", field)
		}
	}

	sub := &models.TaskSubmission{
		TaskID: taskID,
		UserID: userID,
		Proof:  req.Proof,
		Status: models.SubmissionStatusPending,
	}
	if err := s.store.Tasks().CreateSubmission(ctx, sub); err != nil {
		if apperrors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrAlreadySubmitted
		}
		return nil, err
	}
	return sub, nil
}

func (s *service) Submissions(ctx context.Context, taskID *uint, status string, offset, limit int) ([]models.TaskSubmission, int64, error) {
	return s.store.Tasks().ListSubmissions(ctx, taskID, status, offset, limit)
}

// Review approves or rejects a pending submission. Approval pays the reward
// and counts a completion against the task cap.
func (s *service) Review(ctx context.Context, actor audit.Actor, submissionID uint, req ReviewRequest) (*models.TaskSubmission, error) {
	switch req.Action {
	case ActionApprove:
	case ActionReject:
		if strings.TrimSpace(req.Note) == "" {
			return nil, ErrNoteRequired
		}
	default:
		return nil, ErrUnknownAction
	}

	var sub *models.TaskSubmission
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		var err error
		if sub, err = tx.Tasks().GetSubmissionForUpdate(ctx, submissionID); err != nil {
			return err
		}
		if sub.Status != models.SubmissionStatusPending {
			return ErrNotPending
		}
		sub.ReviewedBy = actor.AdminID
		sub.ReviewNote = req.Note

		if req.Action == ActionReject {
			sub.Status = models.SubmissionStatusRejected
		} else {
			t, err := tx.Tasks().GetByID(ctx, sub.TaskID)
			if err != nil {
				return err
			}
			if err := tx.Tasks().IncrementCompletions(ctx, t.ID); err != nil {
				return err
			}
			now := s.now()
			reward := &models.Transaction{
				UserID:      sub.UserID,
				Type:        models.TransactionTypeTaskReward,
				Amount:      t.Reward,
				Fee:         decimal.Zero,
				NetAmount:   t.Reward,
				Currency:    models.DefaultCurrency,
				Status:      models.TransactionStatusCompleted,
				Gateway:     models.GatewaySystem,
				Reference:   utils.NewReference(),
				Description: "Task reward: " + t.Title,
				ApprovedBy:  actor.AdminID,
				ProcessedAt: &now,
				Metadata:    models.JSON{"task_id": t.ID, "submission_id": sub.ID},
			}
			if err := tx.Transactions().Create(ctx, reward); err != nil {
				return err
			}
			if err := tx.Users().AdjustBalance(ctx, sub.UserID, t.Reward); err != nil {
				return err
			}
			sub.Status = models.SubmissionStatusApproved
			sub.RewardTransactionID = &reward.ID
		}

		if err := tx.Tasks().UpdateSubmission(ctx, sub); err != nil {
			return err
		}
		return audit.Record(ctx, tx.Audit(), actor, audit.Entry{
			Action:   "task_submission." + req.Action,
			Entity:   "task_submission",
			EntityID: sub.ID,
			NewData:  map[string]interface{}{"status": sub.Status, "note": req.Note},
			Severity: models.SeverityMedium,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("task submission reviewed",
		zap.Uint("submission_id", sub.ID),
		zap.String("status", sub.Status))
	return sub, nil
}

func apply(t *models.Task, req Request) error {
	if req.ValidFrom != nil && req.ValidUntil != nil && !req.ValidUntil.After(*req.ValidFrom) {
		return ErrInvalidWindow
	}
	t.Title = req.Title
	t.Description = req.Description
	t.Reward = req.Reward.Round(2)
	t.Category = req.Category
	if req.Difficulty != "" {
		t.Difficulty = req.Difficulty
	}
	t.EstimatedTime = req.EstimatedTime
	t.Instructions = pq.StringArray(req.Instructions)
	t.RequiredProof = pq.StringArray(req.RequiredProof)
	t.MaxCompletions = req.MaxCompletions
	t.ValidFrom = req.ValidFrom
	t.ValidUntil = req.ValidUntil
	if req.Status != "" {
		t.Status = req.Status
	}
	return nil
}
