// Package settings serves business-rule parameters from an in-process TTL
// cache in front of the settings table.
package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	apperrors "iprofit/internal/errors"
	"iprofit/internal/logger"
	"iprofit/internal/metrics"
	"iprofit/internal/models"
	"iprofit/internal/repositories"
	"iprofit/internal/services/audit"
	"iprofit/internal/services/events"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultTTL  = 5 * time.Minute
	defaultSize = 256
)

// Service reads and writes settings.
type Service interface {
	// Typed getters fall back to the default when a key is missing or unparsable.
	Decimal(ctx context.Context, key string) decimal.Decimal
	Int(ctx context.Context, key string) int
	Bool(ctx context.Context, key string) bool
	String(ctx context.Context, key string) string

	Get(ctx context.Context, key string) (*models.Setting, error)
	All(ctx context.Context) ([]models.Setting, error)
	Update(ctx context.Context, actor audit.Actor, values map[string]string) ([]models.Setting, error)

	Invalidate(keys ...string)
	// Refresh reloads every stored row into the cache.
	Refresh(ctx context.Context) error
	TTL() time.Duration
}

type service struct {
	store  repositories.Store
	events events.Publisher
	cache  *expirable.LRU[string, models.Setting]
	ttl    time.Duration
	log    *zap.Logger
}

func NewService(store repositories.Store, publisher events.Publisher, ttl time.Duration, log *zap.Logger) Service {
	if store == nil {
		panic("store is required")
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &service{
		store:  store,
		events: publisher,
		cache:  expirable.NewLRU[string, models.Setting](defaultSize, nil, ttl),
		ttl:    ttl,
		log:    logger.OrNop(log),
	}
}

func (s *service) TTL() time.Duration { return s.ttl }

func (s *service) lookup(ctx context.Context, key string) (models.Setting, error) {
	if st, ok := s.cache.Get(key); ok {
		metrics.CacheRequests.WithLabelValues("memory", "setting", "hit").Inc()
		return st, nil
	}
	metrics.CacheRequests.WithLabelValues("memory", "setting", "miss").Inc()

	row, err := s.store.Settings().Get(ctx, key)
	switch {
	case err == nil:
		s.cache.Add(key, *row)
		return *row, nil
	case apperrors.Is(err, repositories.ErrSettingNotFound):
		def, ok := Defaults[key]
		if !ok {
			return models.Setting{}, repositories.ErrSettingNotFound.WithMessage("setting %q not found", key)
		}
		s.cache.Add(key, def)
		return def, nil
	default:
		return models.Setting{}, err
	}
}

func (s *service) raw(ctx context.Context, key string) (value, fallback string) {
	fallback = Defaults[key].Value
	st, err := s.lookup(ctx, key)
	if err != nil {
		s.log.Warn("setting lookup failed, using default",
			zap.String("key", key),
			zap.Error(err))
		return fallback, fallback
	}
	return st.Value, fallback
}

func (s *service) Decimal(ctx context.Context, key string) decimal.Decimal {
	v, fb := s.raw(ctx, key)
	if d, err := decimal.NewFromString(strings.TrimSpace(v)); err == nil {
		return d
	}
	d, _ := decimal.NewFromString(fb)
	return d
}

func (s *service) Int(ctx context.Context, key string) int {
	v, fb := s.raw(ctx, key)
	if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
		return i
	}
	i, _ := strconv.Atoi(fb)
	return i
}

func (s *service) Bool(ctx context.Context, key string) bool {
	v, fb := s.raw(ctx, key)
	if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
		return b
	}
	b, _ := strconv.ParseBool(fb)
	return b
}

func (s *service) String(ctx context.Context, key string) string {
	v, _ := s.raw(ctx, key)
	return v
}

func (s *service) Get(ctx context.Context, key string) (*models.Setting, error) {
	st, err := s.lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// All returns stored rows merged with defaults for keys never written.
func (s *service) All(ctx context.Context) ([]models.Setting, error) {
	rows, err := s.store.Settings().All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	seen := make(map[string]bool, len(rows))
	for _, r := range rows {
		seen[r.Key] = true
	}
	for key, def := range Defaults {
		if !seen[key] {
			rows = append(rows, def)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Category != rows[j].Category {
			return rows[i].Category < rows[j].Category
		}
		return rows[i].Key < rows[j].Key
	})
	return rows, nil
}

func (s *service) Update(ctx context.Context, actor audit.Actor, values map[string]string) ([]models.Setting, error) {
	if len(values) == 0 {
		return nil, apperrors.ErrInvalidInput.WithMessage("no settings to update")
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var updated []models.Setting
	old := make(map[string]interface{}, len(keys))
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		for _, key := range keys {
			if strings.TrimSpace(key) == "" {
				return apperrors.ErrInvalidInput.WithMessage("setting key is required")
			}
			current, err := tx.Settings().Get(ctx, key)
			switch {
			case err == nil:
				old[key] = current.Value
			case apperrors.Is(err, repositories.ErrSettingNotFound):
				def, ok := Defaults[key]
				if !ok {
					def = models.Setting{Key: key, Type: models.SettingTypeString, Category: categorySystem}
				}
				current = &def
				old[key] = nil
			default:
				return err
			}

			value := strings.TrimSpace(values[key])
			if err := checkValue(*current, value); err != nil {
				return apperrors.ErrInvalidInput.WithMessage("%s: %v", key, err)
			}
			next := *current
			next.Value = value
			next.UpdatedBy = actor.AdminID
			updated = append(updated, next)
		}

		if err := tx.Settings().Upsert(ctx, updated); err != nil {
			return err
		}

		newData := make(map[string]interface{}, len(updated))
		for _, st := range updated {
			newData[st.Key] = st.Value
		}
		return audit.Record(ctx, tx.Audit(), actor, audit.Entry{
			Action:   "settings.updated",
			Entity:   "setting",
			OldData:  old,
			NewData:  newData,
			Severity: models.SeverityHigh,
		})
	})
	if err != nil {
		return nil, err
	}

	s.Invalidate(keys...)
	_ = s.events.Publish(ctx, events.SettingsUpdated, map[string]interface{}{"keys": keys})
	s.log.Info("settings updated", zap.Strings("keys", keys))
	return updated, nil
}

// nonNegative lists the categories whose numbers are amounts, percents or counts.
var nonNegative = map[string]bool{
	categoryFinancial: true,
	categoryReferral:  true,
	categoryLoan:      true,
}

func checkValue(current models.Setting, value string) error {
	switch current.Type {
	case models.SettingTypeNumber:
		n, err := decimal.NewFromString(value)
		if err != nil {
			return fmt.Errorf("%q is not a number", value)
		}
		category := current.Category
		if def, ok := Defaults[current.Key]; ok {
			category = def.Category
		}
		if nonNegative[category] && n.IsNegative() {
			return fmt.Errorf("%s must not be negative", value)
		}
	case models.SettingTypeBoolean:
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("%q is not a boolean", value)
		}
	case models.SettingTypeJSON:
		if !json.Valid([]byte(value)) {
			return fmt.Errorf("value is not valid JSON")
		}
	}
	return nil
}

func (s *service) Invalidate(keys ...string) {
	if len(keys) == 0 {
		s.cache.Purge()
		return
	}
	for _, k := range keys {
		s.cache.Remove(k)
	}
}

func (s *service) Refresh(ctx context.Context) error {
	rows, err := s.store.Settings().All(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh settings: %w", err)
	}
	s.cache.Purge()
	for _, r := range rows {
		s.cache.Add(r.Key, r)
	}
	return nil
}
