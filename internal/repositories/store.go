package repositories

import (
	"context"
	"sync"

	"iprofit/internal/logger"
	"iprofit/internal/repositories/cache"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store groups the repositories and runs them inside one database transaction.
type Store interface {
	Users() UserRepository
	Admins() AdminRepository
	Devices() DeviceRepository
	Transactions() TransactionRepository
	Referrals() ReferralRepository
	Plans() PlanRepository
	Loans() LoanRepository
	Tasks() TaskRepository
	Notifications() NotificationRepository
	News() NewsRepository
	Support() SupportRepository
	Audit() AuditRepository
	Settings() SettingRepository
	Dashboard() DashboardRepository

	// WithTx runs fn against a Store bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

// userEvicter drops cached user entries.
type userEvicter interface {
	InvalidateUser(ctx context.Context, userID uint) error
}

type gormStore struct {
	db    *gorm.DB
	cache *cache.CacheService
	evict userEvicter
	// pending is set on a transaction-bound store. Cache invalidations wait
	// there until the transaction commits.
	pending *invalidations
}

// NewStore builds a Store on db. cache may be nil.
func NewStore(db *gorm.DB, cache *cache.CacheService) Store {
	s := &gormStore{db: db, cache: cache}
	if cache != nil {
		s.evict = cache
	}
	return s
}

func (s *gormStore) Users() UserRepository {
	if s.pending != nil {
		// Reads skip the cache so a transaction sees its own writes.
		return &userRepository{db: s.db, pending: s.pending}
	}
	return NewUserRepository(s.db, s.cache)
}

func (s *gormStore) Admins() AdminRepository       { return NewAdminRepository(s.db) }
func (s *gormStore) Devices() DeviceRepository     { return NewDeviceRepository(s.db) }
func (s *gormStore) Referrals() ReferralRepository { return NewReferralRepository(s.db) }
func (s *gormStore) Plans() PlanRepository         { return NewPlanRepository(s.db) }
func (s *gormStore) Loans() LoanRepository         { return NewLoanRepository(s.db) }
func (s *gormStore) Tasks() TaskRepository         { return NewTaskRepository(s.db) }
func (s *gormStore) News() NewsRepository          { return NewNewsRepository(s.db) }
func (s *gormStore) Support() SupportRepository    { return NewSupportRepository(s.db) }
func (s *gormStore) Audit() AuditRepository        { return NewAuditRepository(s.db) }
func (s *gormStore) Settings() SettingRepository   { return NewSettingRepository(s.db) }

func (s *gormStore) Transactions() TransactionRepository {
	return NewTransactionRepository(s.db)
}

func (s *gormStore) Notifications() NotificationRepository {
	return NewNotificationRepository(s.db)
}

func (s *gormStore) Dashboard() DashboardRepository {
	return NewDashboardRepository(s.db)
}

func (s *gormStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	if s.pending != nil {
		// Nested call: gorm uses a savepoint and the outer commit flushes.
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(&gormStore{db: tx, cache: s.cache, evict: s.evict, pending: s.pending})
		})
	}

	pending := &invalidations{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx, cache: s.cache, evict: s.evict, pending: pending})
	})
	if err != nil {
		return err
	}
	pending.flush(ctx, s.evict)
	return nil
}

// invalidations collects user ids written inside a transaction.
type invalidations struct {
	mu  sync.Mutex
	ids []uint
}

func (p *invalidations) add(id uint) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, have := range p.ids {
		if have == id {
			return
		}
	}
	p.ids = append(p.ids, id)
}

func (p *invalidations) flush(ctx context.Context, evict userEvicter) {
	p.mu.Lock()
	ids := p.ids
	p.ids = nil
	p.mu.Unlock()
	if evict == nil {
		return
	}
	for _, id := range ids {
		if err := evict.InvalidateUser(ctx, id); err != nil {
			logger.L().Warn("failed to invalidate user cache", zap.Uint("user_id", id), zap.Error(err))
		}
	}
}

// forUpdate adds SELECT ... FOR UPDATE.
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func paginate(offset, limit int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		return db.Offset(offset).Limit(limit)
	}
}
