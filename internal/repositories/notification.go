package repositories

import (
	"context"

	"iprofit/internal/models"

	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	CreateBatch(ctx context.Context, ns []models.Notification) error
	List(ctx context.Context, filter models.NotificationFilter, offset, limit int) ([]models.Notification, int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return translate(r.db.WithContext(ctx).Create(n).Error, ErrNotFound)
}

func (r *notificationRepository) CreateBatch(ctx context.Context, ns []models.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).CreateInBatches(&ns, 500).Error, ErrNotFound)
}

// List returns notifications for a user including broadcasts, or all when no user is given.
func (r *notificationRepository) List(ctx context.Context, f models.NotificationFilter, offset, limit int) ([]models.Notification, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Notification{})
	if f.UserID != nil {
		q = q.Where("user_id = ? OR user_id IS NULL", *f.UserID)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Read != nil {
		q = q.Where("read = ?", *f.Read)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, ErrNotFound)
	}
	var out []models.Notification
	if err := q.Order("created_at DESC").Scopes(paginate(offset, limit)).Find(&out).Error; err != nil {
		return nil, 0, translate(err, ErrNotFound)
	}
	return out, total, nil
}
