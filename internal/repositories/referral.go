package repositories

import (
	"context"

	"iprofit/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReferralRepository interface {
	Create(ctx context.Context, referral *models.Referral) error
	GetByID(ctx context.Context, id uint) (*models.Referral, error)
	GetForUpdate(ctx context.Context, id uint) (*models.Referral, error)
	GetByRefereeForUpdate(ctx context.Context, refereeID uint) (*models.Referral, error)
	Update(ctx context.Context, referral *models.Referral) error
	List(ctx context.Context, filter models.ReferralFilter, offset, limit int) ([]models.Referral, int64, error)
	Overview(ctx context.Context, top int) (*models.ReferralOverview, error)
}

type referralRepository struct {
	db *gorm.DB
}

func NewReferralRepository(db *gorm.DB) ReferralRepository {
	return &referralRepository{db: db}
}

func (r *referralRepository) Create(ctx context.Context, referral *models.Referral) error {
	return translate(r.db.WithContext(ctx).Create(referral).Error, ErrReferralNotFound)
}

func (r *referralRepository) GetByID(ctx context.Context, id uint) (*models.Referral, error) {
	var ref models.Referral
	err := r.db.WithContext(ctx).Preload("Referrer").Preload("Referee").First(&ref, id).Error
	if err != nil {
		return nil, translate(err, ErrReferralNotFound)
	}
	return &ref, nil
}

func (r *referralRepository) GetForUpdate(ctx context.Context, id uint) (*models.Referral, error) {
	var ref models.Referral
	if err := forUpdate(r.db.WithContext(ctx)).First(&ref, id).Error; err != nil {
		return nil, translate(err, ErrReferralNotFound)
	}
	return &ref, nil
}

func (r *referralRepository) GetByRefereeForUpdate(ctx context.Context, refereeID uint) (*models.Referral, error) {
	var ref models.Referral
	err := forUpdate(r.db.WithContext(ctx)).Where("referee_id = ?", refereeID).First(&ref).Error
	if err != nil {
		return nil, translate(err, ErrReferralNotFound)
	}
	return &ref, nil
}

func (r *referralRepository) Update(ctx context.Context, referral *models.Referral) error {
	return translate(r.db.WithContext(ctx).Omit("Referrer", "Referee").Save(referral).Error, ErrReferralNotFound)
}

func (r *referralRepository) List(ctx context.Context, f models.ReferralFilter, offset, limit int) ([]models.Referral, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Referral{})
	if f.ReferrerID != nil {
		q = q.Where("referrer_id = ?", *f.ReferrerID)
	}
	if f.RefereeID != nil {
		q = q.Where("referee_id = ?", *f.RefereeID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, ErrReferralNotFound)
	}

	var refs []models.Referral
	slim := func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "email") }
	err := q.Preload("Referrer", slim).Preload("Referee", slim).
		Order("created_at DESC").Scopes(paginate(offset, limit)).Find(&refs).Error
	if err != nil {
		return nil, 0, translate(err, ErrReferralNotFound)
	}
	return refs, total, nil
}

func (r *referralRepository) Overview(ctx context.Context, top int) (*models.ReferralOverview, error) {
	var counts []struct {
		Status string
		Count  int64
		Bonus  decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&models.Referral{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(bonus_amount), 0) AS bonus").
		Group("status").Scan(&counts).Error
	if err != nil {
		return nil, translate(err, ErrReferralNotFound)
	}

	out := &models.ReferralOverview{TopReferrers: []models.TopReferrer{}}
	for _, c := range counts {
		out.TotalReferrals += c.Count
		switch c.Status {
		case models.ReferralStatusPaid:
			out.PaidReferrals = c.Count
			out.PaidBonusTotal = c.Bonus
		case models.ReferralStatusPending:
			out.PendingReferrals = c.Count
			out.PendingBonus = c.Bonus
		}
	}

	err = r.db.WithContext(ctx).Table("referrals").
		Select(`referrals.referrer_id, users.name, users.email, COUNT(*) AS referrals,
			COALESCE(SUM(CASE WHEN referrals.status = ? THEN referrals.bonus_amount ELSE 0 END), 0) AS bonus_paid`,
			models.ReferralStatusPaid).
		Joins("JOIN users ON users.id = referrals.referrer_id").
		Where("referrals.deleted_at IS NULL").
		Group("referrals.referrer_id, users.name, users.email").
		Order("referrals DESC").
		Limit(top).
		Scan(&out.TopReferrers).Error
	if err != nil {
		return nil, translate(err, ErrReferralNotFound)
	}
	return out, nil
}
