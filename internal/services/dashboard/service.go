package dashboard

import (
	"context"
	"fmt"
	"time"

	apperrors "iprofit/internal/errors"
	"iprofit/internal/logger"
	"iprofit/internal/metrics"
	"iprofit/internal/models"
	"iprofit/internal/repositories"
	keys "iprofit/internal/utils/cache"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SnapshotTTL is how long metrics and charts stay cached.
const SnapshotTTL = 60 * time.Second

var periods = map[string]int{"7d": 7, "30d": 30, "90d": 90}

var ErrUnknownPeriod = apperrors.ErrInvalidInput.WithMessage("period must be one of 7d, 30d or 90d")

// Cache stores JSON snapshots. *cache.CacheService implements it.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

type Service interface {
	Metrics(ctx context.Context) (*models.DashboardMetrics, error)
	Charts(ctx context.Context, period string) (*models.DashboardCharts, error)
}

type service struct {
	store repositories.Store
	cache Cache
	log   *zap.Logger
	now   func() time.Time
}

// NewService creates the dashboard service. A nil cache disables snapshots.
func NewService(store repositories.Store, cache Cache, log *zap.Logger) Service {
	if store == nil {
		panic("store is required")
	}
	return &service{store: store, cache: cache, log: logger.OrNop(log), now: time.Now}
}

func (s *service) Metrics(ctx context.Context) (*models.DashboardMetrics, error) {
	key := keys.GenerateKey(keys.EntityDashboard, keys.KeyID, "metrics")
	var m models.DashboardMetrics
	if s.lookup(ctx, key, &m) {
		return &m, nil
	}

	fresh, err := s.store.Dashboard().Metrics(ctx, startOfDay(s.now()))
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard metrics: %w", err)
	}
	s.save(ctx, key, fresh)
	return fresh, nil
}

// Charts returns one point per day of the period, oldest first. Days without
// activity are zero.
func (s *service) Charts(ctx context.Context, period string) (*models.DashboardCharts, error) {
	if period == "" {
		period = "7d"
	}
	days, ok := periods[period]
	if !ok {
		return nil, ErrUnknownPeriod
	}

	key := keys.GenerateKey(keys.EntityDashboard, keys.KeyPeriod, period)
	var charts models.DashboardCharts
	if s.lookup(ctx, key, &charts) {
		return &charts, nil
	}

	since := startOfDay(s.now()).AddDate(0, 0, -(days - 1))
	volumes, err := s.store.Dashboard().DailyVolumes(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily volumes: %w", err)
	}
	signups, err := s.store.Dashboard().DailySignups(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily signups: %w", err)
	}

	byDay := make(map[string]models.DailyPoint, len(volumes))
	for _, p := range volumes {
		byDay[p.Date] = p
	}
	out := &models.DashboardCharts{Period: period, Points: make([]models.DailyPoint, 0, days)}
	for i := 0; i < days; i++ {
		date := since.AddDate(0, 0, i).Format("2006-01-02")
		p, ok := byDay[date]
		if !ok {
			p = models.DailyPoint{Date: date, Deposits: decimal.Zero, Withdrawals: decimal.Zero}
		}
		p.Signups = signups[date]
		out.Points = append(out.Points, p)
	}

	s.save(ctx, key, out)
	return out, nil
}

func (s *service) lookup(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.log.Warn("dashboard cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	result := "miss"
	if found {
		result = "hit"
	}
	metrics.CacheRequests.WithLabelValues("redis", string(keys.EntityDashboard), result).Inc()
	return found
}

func (s *service) save(ctx context.Context, key string, v interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetWithTTL(ctx, key, v, SnapshotTTL); err != nil {
		s.log.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
