package news

import (
	"context"
	"fmt"
	"time"

	apperrors "iprofit/internal/errors"
	"iprofit/internal/logger"
	"iprofit/internal/models"
	"iprofit/internal/repositories"
	"iprofit/internal/services/audit"
	"iprofit/internal/utils"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// maxSlugAttempts bounds the numeric suffixes tried for a taken slug.
const maxSlugAttempts = 50

var ErrSlugUnavailable = apperrors.ErrConflict.WithMessage("no free slug for this title")

type Request struct {
	Title    string   `json:"title" validate:"required,max=200"`
	Slug     string   `json:"slug,omitempty" validate:"omitempty,max=220"`
	Content  string   `json:"content" validate:"required"`
	Summary  string   `json:"summary,omitempty" validate:"max=500"`
	Category string   `json:"category,omitempty" validate:"max=100"`
	Tags     []string `json:"tags,omitempty" validate:"max=20,dive,max=50"`
	Status   string   `json:"status,omitempty" validate:"omitempty,oneof=Draft Published Archived"`
	IsSticky bool     `json:"is_sticky"`
}

type Service interface {
	List(ctx context.Context, filter models.NewsFilter, offset, limit int) ([]models.News, int64, error)
	GetByID(ctx context.Context, id uint) (*models.News, error)
	Create(ctx context.Context, actor audit.Actor, req Request) (*models.News, error)
	Update(ctx context.Context, actor audit.Actor, id uint, req Request) (*models.News, error)
	Delete(ctx context.Context, actor audit.Actor, id uint) error
}

type service struct {
	store repositories.Store
	log   *zap.Logger
	now   func() time.Time
}

func NewService(store repositories.Store, log *zap.Logger) Service {
	if store == nil {
		panic("store is required")
	}
	return &service{store: store, log: logger.OrNop(log), now: time.Now}
}

func (s *service) List(ctx context.Context, filter models.NewsFilter, offset, limit int) ([]models.News, int64, error) {
	return s.store.News().List(ctx, filter, offset, limit)
}

func (s *service) GetByID(ctx context.Context, id uint) (*models.News, error) {
	return s.store.News().GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, actor audit.Actor, req Request) (*models.News, error) {
	n := &models.News{Status: models.NewsStatusDraft}
	if actor.AdminID != nil {
		n.AuthorID = *actor.AdminID
	}

	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		if err := s.apply(ctx, tx, n, req); err != nil {
			return err
		}
		if err := tx.News().Create(ctx, n); err != nil {
			return err
		}
		return audit.Record(ctx, tx.Audit(), actor, audit.Entry{
			Action:   "news.created",
			Entity:   "news",
			EntityID: n.ID,
			NewData:  map[string]interface{}{"title": n.Title, "slug": n.Slug, "status": n.Status},
		})
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (s *service) Update(ctx context.Context, actor audit.Actor, id uint, req Request) (*models.News, error) {
	var n *models.News
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		var err error
		if n, err = tx.News().GetByID(ctx, id); err != nil {
			return err
		}
		old := map[string]interface{}{"title": n.Title, "slug": n.Slug, "status": n.Status}
		if err := s.apply(ctx, tx, n, req); err != nil {
			return err
		}
		if err := tx.News().Update(ctx, n); err != nil {
			return err
		}
		return audit.Record(ctx, tx.Audit(), actor, audit.Entry{
			Action:   "news.updated",
			Entity:   "news",
			EntityID: n.ID,
			OldData:  old,
			NewData:  map[string]interface{}{"title": n.Title, "slug": n.Slug, "status": n.Status},
		})
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (s *service) Delete(ctx context.Context, actor audit.Actor, id uint) error {
	return s.store.WithTx(ctx, func(tx repositories.Store) error {
		if err := tx.News().Delete(ctx, id); err != nil {
			return err
		}
		return audit.Record(ctx, tx.Audit(), actor, audit.Entry{
			Action:   "news.deleted",
			Entity:   "news",
			EntityID: id,
			Severity: models.SeverityMedium,
		})
	})
}

// apply copies req onto n, resolves a free slug and stamps PublishedAt the
// first time the article goes out.
func (s *service) apply(ctx context.Context, tx repositories.Store, n *models.News, req Request) error {
	base := req.Slug
	if base == "" {
		base = req.Title
	}
	base = utils.Slugify(base)
	if base == "" {
		return apperrors.ErrInvalidInput.WithMessage("title must contain letters or digits")
	}
	if base != n.Slug {
		slug, err := s.freeSlug(ctx, tx, base, n.ID)
		if err != nil {
			return err
		}
		n.Slug = slug
	}

	n.Title = req.Title
	n.Content = req.Content
	n.Summary = req.Summary
	n.Category = req.Category
	n.Tags = pq.StringArray(req.Tags)
	n.IsSticky = req.IsSticky
	if req.Status != "" {
		n.Status = req.Status
	}
	if n.Status == models.NewsStatusPublished && n.PublishedAt == nil {
		now := s.now()
		n.PublishedAt = &now
	}
	return nil
}

func (s *service) freeSlug(ctx context.Context, tx repositories.Store, base string, id uint) (string, error) {
	slug := base
	for i := 2; i <= maxSlugAttempts; i++ {
		taken, err := tx.News().SlugExists(ctx, slug, id)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
	return "", ErrSlugUnavailable
}
