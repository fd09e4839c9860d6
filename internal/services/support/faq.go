package support

import (
	"context"

	"iprofit/internal/models"
	"iprofit/internal/repositories"
	"iprofit/internal/services/audit"
)

func (s *service) FAQs(ctx context.Context, category string, activeOnly bool) ([]models.FAQ, error) {
	return s.store.Support().ListFAQs(ctx, category, activeOnly)
}

func (s *service) CreateFAQ(ctx context.Context, actor audit.Actor, req FAQRequest) (*models.FAQ, error) {
	f := &models.FAQ{IsActive: true}
	applyFAQ(f, req)
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		if err := tx.Support().CreateFAQ(ctx, f); err != nil {
			return err
		}
		return audit.Record(ctx, tx.Audit(), actor, audit.Entry{
			Action:   "faq.created",
			Entity:   "faq",
			EntityID: f.ID,
			NewData:  f,
		})
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *service) UpdateFAQ(ctx context.Context, actor audit.Actor, id uint, req FAQRequest) (*models.FAQ, error) {
	var f *models.FAQ
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		var err error
		if f, err = tx.Support().GetFAQ(ctx, id); err != nil {
			return err
		}
		before := *f
		applyFAQ(f, req)
		if err := tx.Support().UpdateFAQ(ctx, f); err != nil {
			return err
		}
		return audit.Record(ctx, tx.Audit(), actor, audit.Entry{
			Action:   "faq.updated",
			Entity:   "faq",
			EntityID: id,
			OldData:  before,
			NewData:  f,
		})
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *service) DeleteFAQ(ctx context.Context, actor audit.Actor, id uint) error {
	return s.store.WithTx(ctx, func(tx repositories.Store) error {
		if err := tx.Support().DeleteFAQ(ctx, id); err != nil {
			return err
		}
		return audit.Record(ctx, tx.Audit(), actor, audit.Entry{Action: "faq.deleted", Entity: "faq", EntityID: id})
	})
}

func applyFAQ(f *models.FAQ, req FAQRequest) {
	f.Question = req.Question
	f.Answer = req.Answer
	f.Category = req.Category
	f.Order = req.Order
	if req.IsActive != nil {
		f.IsActive = *req.IsActive
	}
}
