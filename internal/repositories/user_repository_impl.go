package repositories

import (
	"context"
	"strings"

	"iprofit/internal/logger"
	"iprofit/internal/models"
	"iprofit/internal/repositories/cache"
	keys "iprofit/internal/utils/cache"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type userRepository struct {
	db      *gorm.DB
	cache   *cache.CacheService
	pending *invalidations
}

// NewUserRepository creates a new instance of UserRepository. cache may be nil.
func NewUserRepository(db *gorm.DB, cache *cache.CacheService) UserRepository {
	return &userRepository{
		db:    db,
		cache: cache,
	}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	return translate(r.db.WithContext(ctx).Create(user).Error, ErrUserNotFound)
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	key := keys.GenerateKey(keys.EntityUser, keys.KeyID, id)
	if r.cache != nil {
		if user, err := r.cache.GetUser(ctx, key); err == nil {
			return user, nil
		}
	}

	var user models.User
	if err := r.db.WithContext(ctx).Preload("Plan").First(&user, id).Error; err != nil {
		return nil, translate(err, ErrUserNotFound)
	}

	if r.cache != nil {
		if err := r.cache.CacheUser(ctx, &user); err != nil {
			logger.L().Warn("failed to cache user", zap.Uint("user_id", id), zap.Error(err))
		}
	}
	return &user, nil
}

func (r *userRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := forUpdate(r.db.WithContext(ctx)).First(&user, id).Error; err != nil {
		return nil, translate(err, ErrUserNotFound)
	}
	return &user, nil
}

func (r *userRepository) GetCredentials(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err, ErrUserNotFound)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, translate(err, ErrUserNotFound)
	}
	return &user, nil
}

func (r *userRepository) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&user).Error; err != nil {
		return nil, translate(err, ErrUserNotFound)
	}
	return &user, nil
}

func (r *userRepository) GetByReferralCode(ctx context.Context, code string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("referral_code = ?", strings.ToUpper(strings.TrimSpace(code))).First(&user).Error
	if err != nil {
		return nil, translate(err, ErrUserNotFound)
	}
	return &user, nil
}

func (r *userRepository) ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ? OR phone = ?", strings.ToLower(strings.TrimSpace(email)), phone).
		Count(&count).Error
	if err != nil {
		return false, translate(err, ErrUserNotFound)
	}
	return count > 0, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Omit("Plan").Save(user).Error; err != nil {
		return translate(err, ErrUserNotFound)
	}
	r.invalidate(ctx, user.ID)
	return nil
}

func (r *userRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return translate(result.Error, ErrUserNotFound)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.User{}, id)
	if result.Error != nil {
		return translate(result.Error, ErrUserNotFound)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *userRepository) AdjustBalance(ctx context.Context, id uint, delta decimal.Decimal) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND balance + ? >= 0", id, delta).
		UpdateColumn("balance", gorm.Expr("balance + ?", delta))
	if result.Error != nil {
		return translate(result.Error, ErrUserNotFound)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return translate(err, ErrUserNotFound)
		}
		if count == 0 {
			return ErrUserNotFound
		}
		return ErrInsufficientBalance
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *userRepository) IncrementTokenVersion(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).
		UpdateColumn("token_version", gorm.Expr("token_version + 1"))
	if result.Error != nil {
		return translate(result.Error, ErrUserNotFound)
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *userRepository) List(ctx context.Context, filter models.UserFilter, offset, limit int) ([]models.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.KYCStatus != "" {
		q = q.Where("kyc_status = ?", filter.KYCStatus)
	}
	if filter.PlanID != nil {
		q = q.Where("plan_id = ?", *filter.PlanID)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?", like, like, like)
	}
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at <= ?", *filter.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, ErrUserNotFound)
	}

	var users []models.User
	err := q.Preload("Plan").Order("created_at DESC").Scopes(paginate(offset, limit)).Find(&users).Error
	if err != nil {
		return nil, 0, translate(err, ErrUserNotFound)
	}
	return users, total, nil
}

func (r *userRepository) ListActive(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Select("id", "name", "email").
		Where("status = ?", models.UserStatusActive).Find(&users).Error
	return users, translate(err, ErrUserNotFound)
}

func (r *userRepository) AssignPlan(ctx context.Context, planID uint, userIDs []uint) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id IN ?", userIDs).Update("plan_id", planID)
	if result.Error != nil {
		return 0, translate(result.Error, ErrUserNotFound)
	}
	for _, id := range userIDs {
		r.invalidate(ctx, id)
	}
	return result.RowsAffected, nil
}

func (r *userRepository) CountByPlan(ctx context.Context, planID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("plan_id = ?", planID).Count(&count).Error
	return count, translate(err, ErrUserNotFound)
}

func (r *userRepository) invalidate(ctx context.Context, id uint) {
	if r.pending != nil {
		r.pending.add(id)
		return
	}
	if r.cache == nil {
		return
	}
	if err := r.cache.InvalidateUser(ctx, id); err != nil {
		logger.L().Warn("failed to invalidate user cache", zap.Uint("user_id", id), zap.Error(err))
	}
}
