package services

import (
	"context"
	"fmt"

	"conti/internal/cache"
	"conti/internal/core"
	"conti/internal/storage"
)

const paymentSourcesKey = "payment_sources"

// PaymentSourceService serves the seeded, read-only payment sources.
type PaymentSourceService struct {
	store *storage.SQLiteRepository
	cache cache.Cache[[]core.PaymentSource]
}

func NewPaymentSourceService(store *storage.SQLiteRepository, c cache.Cache[[]core.PaymentSource]) *PaymentSourceService {
	return &PaymentSourceService{store: store, cache: c}
}

// List returns every payment source ordered by type then name.
func (s *PaymentSourceService) List(ctx context.Context) ([]core.PaymentSource, error) {
	if s.cache != nil {
		if list, ok := s.cache.Get(paymentSourcesKey); ok {
			return list, nil
		}
	}
	list, err := s.store.ListPaymentSources(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(paymentSourcesKey, list)
	}
	return list, nil
}

func (s *PaymentSourceService) Get(ctx context.Context, id string) (core.PaymentSource, error) {
	list, err := s.List(ctx)
	if err != nil {
		return core.PaymentSource{}, err
	}
	for _, ps := range list {
		if ps.ID == id {
			return ps, nil
		}
	}
	return core.PaymentSource{}, fmt.Errorf("payment source: %w", core.ErrNotFound)
}
