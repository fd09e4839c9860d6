package repositories

import (
	"context"

	"iprofit/internal/models"

	"gorm.io/gorm"
)

type PlanRepository interface {
	Create(ctx context.Context, plan *models.Plan) error
	GetByID(ctx context.Context, id uint) (*models.Plan, error)
	Update(ctx context.Context, plan *models.Plan) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, activeOnly bool) ([]models.Plan, error)
}

type planRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

func (r *planRepository) Create(ctx context.Context, plan *models.Plan) error {
	return translate(r.db.WithContext(ctx).Create(plan).Error, ErrPlanNotFound)
}

func (r *planRepository) GetByID(ctx context.Context, id uint) (*models.Plan, error) {
	var plan models.Plan
	if err := r.db.WithContext(ctx).First(&plan, id).Error; err != nil {
		return nil, translate(err, ErrPlanNotFound)
	}
	return &plan, nil
}

func (r *planRepository) Update(ctx context.Context, plan *models.Plan) error {
	return translate(r.db.WithContext(ctx).Save(plan).Error, ErrPlanNotFound)
}

func (r *planRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Plan{}, id)
	if result.Error != nil {
		return translate(result.Error, ErrPlanNotFound)
	}
	if result.RowsAffected == 0 {
		return ErrPlanNotFound
	}
	return nil
}

// List returns plans ordered by priority with their assigned user counts.
func (r *planRepository) List(ctx context.Context, activeOnly bool) ([]models.Plan, error) {
	q := r.db.WithContext(ctx).Model(&models.Plan{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var plans []models.Plan
	if err := q.Order("priority ASC, id ASC").Find(&plans).Error; err != nil {
		return nil, translate(err, ErrPlanNotFound)
	}

	var counts []struct {
		PlanID uint
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("plan_id, COUNT(*) AS count").
		Where("plan_id IS NOT NULL").
		Group("plan_id").Scan(&counts).Error
	if err != nil {
		return nil, translate(err, ErrPlanNotFound)
	}
	byPlan := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byPlan[c.PlanID] = c.Count
	}
	for i := range plans {
		plans[i].UserCount = byPlan[plans[i].ID]
	}
	return plans, nil
}
