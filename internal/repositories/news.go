package repositories

import (
	"context"
	"strings"

	"iprofit/internal/models"

	"gorm.io/gorm"
)

type NewsRepository interface {
	Create(ctx context.Context, news *models.News) error
	GetByID(ctx context.Context, id uint) (*models.News, error)
	SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error)
	Update(ctx context.Context, news *models.News) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter models.NewsFilter, offset, limit int) ([]models.News, int64, error)
}

type newsRepository struct {
	db *gorm.DB
}

func NewNewsRepository(db *gorm.DB) NewsRepository {
	return &newsRepository{db: db}
}

func (r *newsRepository) Create(ctx context.Context, news *models.News) error {
	return translate(r.db.WithContext(ctx).Create(news).Error, ErrNewsNotFound)
}

func (r *newsRepository) GetByID(ctx context.Context, id uint) (*models.News, error) {
	var news models.News
	if err := r.db.WithContext(ctx).First(&news, id).Error; err != nil {
		return nil, translate(err, ErrNewsNotFound)
	}
	return &news, nil
}

func (r *newsRepository) SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&models.News{}).
		Where("slug = ? AND id <> ?", slug, excludeID).Count(&count).Error
	return count > 0, translate(err, ErrNewsNotFound)
}

func (r *newsRepository) Update(ctx context.Context, news *models.News) error {
	return translate(r.db.WithContext(ctx).Save(news).Error, ErrNewsNotFound)
}

func (r *newsRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.News{}, id)
	if result.Error != nil {
		return translate(result.Error, ErrNewsNotFound)
	}
	if result.RowsAffected == 0 {
		return ErrNewsNotFound
	}
	return nil
}

func (r *newsRepository) List(ctx context.Context, f models.NewsFilter, offset, limit int) ([]models.News, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.News{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(summary) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, ErrNewsNotFound)
	}
	var out []models.News
	err := q.Order("is_sticky DESC, COALESCE(published_at, created_at) DESC").
		Scopes(paginate(offset, limit)).Find(&out).Error
	if err != nil {
		return nil, 0, translate(err, ErrNewsNotFound)
	}
	return out, total, nil
}
