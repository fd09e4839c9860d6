package repositories

import (
	"context"

	"iprofit/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepository interface {
	Get(ctx context.Context, key string) (*models.Setting, error)
	All(ctx context.Context) ([]models.Setting, error)
	Upsert(ctx context.Context, settings []models.Setting) error
}

type settingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) Get(ctx context.Context, key string) (*models.Setting, error) {
	var s models.Setting
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&s).Error; err != nil {
		return nil, translate(err, ErrSettingNotFound)
	}
	return &s, nil
}

func (r *settingRepository) All(ctx context.Context) ([]models.Setting, error) {
	var out []models.Setting
	err := r.db.WithContext(ctx).Order("category ASC, key ASC").Find(&out).Error
	return out, translate(err, ErrSettingNotFound)
}

func (r *settingRepository) Upsert(ctx context.Context, settings []models.Setting) error {
	if len(settings) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "type", "category", "description", "updated_by", "updated_at"}),
	}).Create(&settings).Error
	return translate(err, ErrSettingNotFound)
}
