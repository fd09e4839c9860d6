package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"iprofit/internal/models"
	"iprofit/internal/repositories/mocks"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memCache is a JSON round-tripping Cache like the Redis one.
type memCache struct {
	data map[string][]byte
	ttl  time.Duration
	err  error
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memCache) SetWithTTL(_ context.Context, key string, v interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.data[key] = raw
	c.ttl = ttl
	return nil
}

var now = time.Date(2024, 7, 10, 15, 30, 0, 0, time.UTC)

func newService(store *mocks.Store, c Cache) *service {
	svc := NewService(store, c, nil).(*service)
	svc.now = func() time.Time { return now }
	return svc
}

func TestMetricsCachedForSixtySeconds(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewStore()
	c := newMemCache()
	svc := newService(store, c)

	m := &models.DashboardMetrics{Users: models.UserMetrics{Total: 10, Active: 8}}
	store.DashboardRepo.On("Metrics", ctx, time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC)).Return(m, nil).Once()

	first, err := svc.Metrics(ctx)
	require.NoError(t, err)
	second, err := svc.Metrics(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(10), first.Users.Total)
	assert.Equal(t, first.Users, second.Users)
	assert.Equal(t, SnapshotTTL, c.ttl)
	store.AssertExpectations(t)
}

func TestMetricsIgnoresBrokenCache(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewStore()
	c := newMemCache()
	c.err = errors.New("redis down")
	store.DashboardRepo.On("Metrics", ctx, time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC)).Return(&models.DashboardMetrics{}, nil)

	_, err := newService(store, c).Metrics(ctx)
	require.NoError(t, err)
}

func TestChartsFillsEmptyDays(t *testing.T) {
	ctx := context.Background()
	store := mocks.NewStore()
	since := time.Date(2024, 7, 4, 0, 0, 0, 0, time.UTC)

	store.DashboardRepo.On("DailyVolumes", ctx, since).Return([]models.DailyPoint{
		{Date: "2024-07-05", Deposits: decimal.NewFromInt(500), Withdrawals: decimal.NewFromInt(100)},
		{Date: "2024-07-10", Deposits: decimal.NewFromInt(50), Withdrawals: decimal.Zero},
	}, nil)
	store.DashboardRepo.On("DailySignups", ctx, since).Return(map[string]int64{"2024-07-04": 3, "2024-07-10": 1}, nil)

	charts, err := newService(store, nil).Charts(ctx, "7d")
	require.NoError(t, err)
	require.Len(t, charts.Points, 7)
	assert.Equal(t, "2024-07-04", charts.Points[0].Date)
	assert.Equal(t, int64(3), charts.Points[0].Signups)
	assert.True(t, charts.Points[0].Deposits.IsZero())
	assert.True(t, charts.Points[1].Deposits.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, "2024-07-10", charts.Points[6].Date)
	assert.Equal(t, int64(1), charts.Points[6].Signups)
}

func TestChartsRejectsUnknownPeriod(t *testing.T) {
	_, err := newService(mocks.NewStore(), nil).Charts(context.Background(), "1y")
	assert.ErrorIs(t, err, ErrUnknownPeriod)
}
