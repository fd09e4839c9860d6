package audit

import (
	"context"
	"errors"
	"testing"

	"iprofit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	return m.Called(entry).Error(0)
}

func (m *mockRepo) List(ctx context.Context, f models.AuditFilter, offset, limit int) ([]models.AuditLog, int64, error) {
	args := m.Called(f, offset, limit)
	return args.Get(0).([]models.AuditLog), args.Get(1).(int64), args.Error(2)
}

func TestRecord(t *testing.T) {
	adminID := uint(7)
	repo := new(mockRepo)
	var saved *models.AuditLog
	repo.On("Create", mock.AnythingOfType("*models.AuditLog")).
		Run(func(args mock.Arguments) { saved = args.Get(0).(*models.AuditLog) }).
		Return(nil)

	type snapshot struct {
		Status string `json:"status"`
	}
	err := Record(context.Background(), repo, Actor{AdminID: &adminID, IP: "10.0.0.1", UserAgent: "curl"}, Entry{
		Action:   "user.status_changed",
		Entity:   "user",
		EntityID: 42,
		OldData:  snapshot{Status: models.UserStatusActive},
		NewData:  map[string]interface{}{"status": models.UserStatusBanned},
		Severity: models.SeverityHigh,
	})
	require.NoError(t, err)
	require.NotNil(t, saved)

	assert.Equal(t, &adminID, saved.AdminID)
	assert.Equal(t, "42", saved.EntityID)
	assert.Equal(t, "10.0.0.1", saved.IPAddress)
	assert.Equal(t, models.AuditStatusSuccess, saved.Status)
	assert.Equal(t, models.SeverityHigh, saved.Severity)
	assert.Equal(t, models.UserStatusActive, saved.OldData["status"])
	assert.Equal(t, models.UserStatusBanned, saved.NewData["status"])
}

func TestRecord_DefaultsAndFailures(t *testing.T) {
	repo := new(mockRepo)
	var saved *models.AuditLog
	repo.On("Create", mock.Anything).
		Run(func(args mock.Arguments) { saved = args.Get(0).(*models.AuditLog) }).
		Return(nil).Once()

	require.NoError(t, Record(context.Background(), repo, Actor{}, Entry{Action: "x", Entity: "y", Failed: true}))
	assert.Equal(t, models.SeverityLow, saved.Severity)
	assert.Equal(t, models.AuditStatusFailed, saved.Status)
	assert.Empty(t, saved.EntityID)
	assert.Nil(t, saved.OldData)

	repo.On("Create", mock.Anything).Return(errors.New("boom")).Once()
	err := Record(context.Background(), repo, Actor{}, Entry{Action: "x", Entity: "y"})
	assert.ErrorContains(t, err, "failed to write audit log")
}
