// Package audit records admin mutations.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"iprofit/internal/models"
	"iprofit/internal/repositories"
)

// Actor identifies who performed a mutation and from where.
type Actor struct {
	AdminID   *uint
	IP        string
	UserAgent string
}

// Entry describes one audited change.
type Entry struct {
	Action   string
	Entity   string
	EntityID uint
	OldData  interface{}
	NewData  interface{}
	Severity string
	Failed   bool
}

// Record writes e through repo. Pass the repository of the surrounding
// database transaction so the row commits or rolls back with the change.
func Record(ctx context.Context, repo repositories.AuditRepository, actor Actor, e Entry) error {
	row := &models.AuditLog{
		AdminID:   actor.AdminID,
		Action:    e.Action,
		Entity:    e.Entity,
		OldData:   toJSON(e.OldData),
		NewData:   toJSON(e.NewData),
		IPAddress: actor.IP,
		UserAgent: actor.UserAgent,
		Status:    models.AuditStatusSuccess,
		Severity:  e.Severity,
	}
	if e.EntityID != 0 {
		row.EntityID = strconv.FormatUint(uint64(e.EntityID), 10)
	}
	if e.Failed {
		row.Status = models.AuditStatusFailed
	}
	if row.Severity == "" {
		row.Severity = models.SeverityLow
	}
	if err := repo.Create(ctx, row); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func toJSON(v interface{}) models.JSON {
	switch d := v.(type) {
	case nil:
		return nil
	case models.JSON:
		return d
	case map[string]interface{}:
		return models.JSON(d)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return models.JSON{"value": fmt.Sprint(v)}
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return models.JSON{"value": v}
	}
	return out
}

// Service exposes the audit trail.
type Service interface {
	Record(ctx context.Context, actor Actor, e Entry) error
	List(ctx context.Context, filter models.AuditFilter, offset, limit int) ([]models.AuditLog, int64, error)
}

type service struct {
	repo repositories.AuditRepository
}

func NewService(repo repositories.AuditRepository) Service {
	if repo == nil {
		panic("audit repository is required")
	}
	return &service{repo: repo}
}

func (s *service) Record(ctx context.Context, actor Actor, e Entry) error {
	return Record(ctx, s.repo, actor, e)
}

func (s *service) List(ctx context.Context, filter models.AuditFilter, offset, limit int) ([]models.AuditLog, int64, error) {
	return s.repo.List(ctx, filter, offset, limit)
}
