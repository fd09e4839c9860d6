package repositories

import (
	"context"
	"strings"

	"iprofit/internal/models"

	"gorm.io/gorm"
)

type SupportRepository interface {
	CreateTicket(ctx context.Context, t *models.SupportTicket) error
	GetTicket(ctx context.Context, id uint) (*models.SupportTicket, error)
	UpdateTicket(ctx context.Context, t *models.SupportTicket) error
	ListTickets(ctx context.Context, filter models.TicketFilter, offset, limit int) ([]models.SupportTicket, int64, error)
	AddMessage(ctx context.Context, m *models.TicketMessage) error

	CreateFAQ(ctx context.Context, f *models.FAQ) error
	GetFAQ(ctx context.Context, id uint) (*models.FAQ, error)
	UpdateFAQ(ctx context.Context, f *models.FAQ) error
	DeleteFAQ(ctx context.Context, id uint) error
	ListFAQs(ctx context.Context, category string, activeOnly bool) ([]models.FAQ, error)
}

type supportRepository struct {
	db *gorm.DB
}

func NewSupportRepository(db *gorm.DB) SupportRepository {
	return &supportRepository{db: db}
}

func (r *supportRepository) CreateTicket(ctx context.Context, t *models.SupportTicket) error {
	return translate(r.db.WithContext(ctx).Omit("User").Create(t).Error, ErrTicketNotFound)
}

func (r *supportRepository) GetTicket(ctx context.Context, id uint) (*models.SupportTicket, error) {
	var t models.SupportTicket
	err := r.db.WithContext(ctx).
		Preload("User", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "email", "phone") }).
		Preload("Messages", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&t, id).Error
	if err != nil {
		return nil, translate(err, ErrTicketNotFound)
	}
	return &t, nil
}

func (r *supportRepository) UpdateTicket(ctx context.Context, t *models.SupportTicket) error {
	return translate(r.db.WithContext(ctx).Omit("User", "Messages").Save(t).Error, ErrTicketNotFound)
}

func (r *supportRepository) ListTickets(ctx context.Context, f models.TicketFilter, offset, limit int) ([]models.SupportTicket, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.SupportTicket{})
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.AssignedTo != nil {
		q = q.Where("assigned_to = ?", *f.AssignedTo)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(subject) LIKE ? OR LOWER(ticket_number) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, ErrTicketNotFound)
	}
	var out []models.SupportTicket
	err := q.Preload("User", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "email") }).
		Order("updated_at DESC").Scopes(paginate(offset, limit)).Find(&out).Error
	if err != nil {
		return nil, 0, translate(err, ErrTicketNotFound)
	}
	return out, total, nil
}

func (r *supportRepository) AddMessage(ctx context.Context, m *models.TicketMessage) error {
	return translate(r.db.WithContext(ctx).Create(m).Error, ErrTicketNotFound)
}

func (r *supportRepository) CreateFAQ(ctx context.Context, f *models.FAQ) error {
	return translate(r.db.WithContext(ctx).Create(f).Error, ErrFAQNotFound)
}

func (r *supportRepository) GetFAQ(ctx context.Context, id uint) (*models.FAQ, error) {
	var f models.FAQ
	if err := r.db.WithContext(ctx).First(&f, id).Error; err != nil {
		return nil, translate(err, ErrFAQNotFound)
	}
	return &f, nil
}

func (r *supportRepository) UpdateFAQ(ctx context.Context, f *models.FAQ) error {
	return translate(r.db.WithContext(ctx).Save(f).Error, ErrFAQNotFound)
}

func (r *supportRepository) DeleteFAQ(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.FAQ{}, id)
	if result.Error != nil {
		return translate(result.Error, ErrFAQNotFound)
	}
	if result.RowsAffected == 0 {
		return ErrFAQNotFound
	}
	return nil
}

func (r *supportRepository) ListFAQs(ctx context.Context, category string, activeOnly bool) ([]models.FAQ, error) {
	q := r.db.WithContext(ctx).Model(&models.FAQ{})
	if category != "" {
		q = q.Where("category = ?", category)
	}
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var out []models.FAQ
	err := q.Order("sort_order ASC, id ASC").Find(&out).Error
	return out, translate(err, ErrFAQNotFound)
}
