package repositories

import (
	"context"
	"strings"

	"iprofit/internal/models"

	"gorm.io/gorm"
)

type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uint) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter models.TaskFilter, offset, limit int) ([]models.Task, int64, error)

	// IncrementCompletions bumps the counter unless the cap is reached,
	// in which case it returns ErrCompletionCapReached.
	IncrementCompletions(ctx context.Context, id uint) error

	CreateSubmission(ctx context.Context, sub *models.TaskSubmission) error
	GetSubmissionForUpdate(ctx context.Context, id uint) (*models.TaskSubmission, error)
	UpdateSubmission(ctx context.Context, sub *models.TaskSubmission) error
	HasSubmitted(ctx context.Context, taskID, userID uint) (bool, error)
	ListSubmissions(ctx context.Context, taskID *uint, status string, offset, limit int) ([]models.TaskSubmission, int64, error)
}

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) error {
	return translate(r.db.WithContext(ctx).Create(task).Error, ErrTaskNotFound)
}

func (r *taskRepository) GetByID(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, translate(err, ErrTaskNotFound)
	}
	return &task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) error {
	return translate(r.db.WithContext(ctx).Save(task).Error, ErrTaskNotFound)
}

func (r *taskRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Task{}, id)
	if result.Error != nil {
		return translate(result.Error, ErrTaskNotFound)
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) List(ctx context.Context, f models.TaskFilter, offset, limit int) ([]models.Task, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Task{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		q = q.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(s)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, ErrTaskNotFound)
	}
	var tasks []models.Task
	if err := q.Order("created_at DESC").Scopes(paginate(offset, limit)).Find(&tasks).Error; err != nil {
		return nil, 0, translate(err, ErrTaskNotFound)
	}
	return tasks, total, nil
}

func (r *taskRepository) IncrementCompletions(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ? AND (max_completions = 0 OR completions < max_completions)", id).
		UpdateColumn("completions", gorm.Expr("completions + 1"))
	if result.Error != nil {
		return translate(result.Error, ErrTaskNotFound)
	}
	if result.RowsAffected == 0 {
		return ErrCompletionCapReached
	}
	return nil
}

func (r *taskRepository) CreateSubmission(ctx context.Context, sub *models.TaskSubmission) error {
	return translate(r.db.WithContext(ctx).Omit("Task", "User").Create(sub).Error, ErrSubmissionNotFound)
}

func (r *taskRepository) GetSubmissionForUpdate(ctx context.Context, id uint) (*models.TaskSubmission, error) {
	var sub models.TaskSubmission
	if err := forUpdate(r.db.WithContext(ctx)).First(&sub, id).Error; err != nil {
		return nil, translate(err, ErrSubmissionNotFound)
	}
	return &sub, nil
}

func (r *taskRepository) UpdateSubmission(ctx context.Context, sub *models.TaskSubmission) error {
	return translate(r.db.WithContext(ctx).Omit("Task", "User").Save(sub).Error, ErrSubmissionNotFound)
}

func (r *taskRepository) HasSubmitted(ctx context.Context, taskID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.TaskSubmission{}).
		Where("task_id = ? AND user_id = ?", taskID, userID).Count(&count).Error
	return count > 0, translate(err, ErrSubmissionNotFound)
}

func (r *taskRepository) ListSubmissions(ctx context.Context, taskID *uint, status string, offset, limit int) ([]models.TaskSubmission, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.TaskSubmission{})
	if taskID != nil {
		q = q.Where("task_id = ?", *taskID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, ErrSubmissionNotFound)
	}
	var subs []models.TaskSubmission
	err := q.Preload("Task", func(db *gorm.DB) *gorm.DB { return db.Select("id", "title", "reward") }).
		Preload("User", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "email") }).
		Order("created_at DESC").Scopes(paginate(offset, limit)).Find(&subs).Error
	if err != nil {
		return nil, 0, translate(err, ErrSubmissionNotFound)
	}
	return subs, total, nil
}
