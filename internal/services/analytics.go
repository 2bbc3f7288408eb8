package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"conti/internal/analytics"
	"conti/internal/core"
	"conti/internal/storage"
)

// AnalyticsService loads the partner-aware dataset and hands it to the
// analytics package.
type AnalyticsService struct {
	store    *storage.SQLiteRepository
	partners *PartnerService
	sources  *PaymentSourceService
	now      clock
}

func NewAnalyticsService(store *storage.SQLiteRepository, partners *PartnerService, sources *PaymentSourceService) *AnalyticsService {
	return &AnalyticsService{store: store, partners: partners, sources: sources, now: utcNow}
}

func (s *AnalyticsService) Report(ctx context.Context, userID string, f analytics.Filter) (analytics.Report, error) {
	d, err := s.load(ctx, userID)
	if err != nil {
		return analytics.Report{}, err
	}
	return analytics.BuildReport(d, f, s.now()), nil
}

// Trends buckets the visible expenses within [start, end] by granularity.
func (s *AnalyticsService) Trends(ctx context.Context, userID string, g analytics.Granularity, kind analytics.Kind, start, end core.Date) ([]analytics.TrendPoint, error) {
	ids, err := s.partners.VisibleUserIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	es, err := s.store.ListExpenses(ctx, storage.ExpenseFilter{UserIDs: ids, StartDate: start, EndDate: end})
	if err != nil {
		return nil, err
	}
	f := analytics.Filter{Period: analytics.PeriodAll, Kind: kind}
	return analytics.Buckets(f.Apply(es, s.now()), g)
}

// load fetches every input of a report concurrently.
func (s *AnalyticsService) load(ctx context.Context, userID string) (analytics.Dataset, error) {
	p, err := s.partners.ActivePartnership(ctx, userID)
	if err != nil {
		return analytics.Dataset{}, err
	}
	ids := []string{userID}
	if p != nil {
		ids = append(ids, p.Other(userID))
	}

	var d analytics.Dataset
	d.Partner = p
	names := make([]string, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Expenses, err = s.store.ListExpenses(gctx, storage.ExpenseFilter{UserIDs: ids})
		return err
	})
	g.Go(func() (err error) {
		d.Categories, err = s.store.ListCategories(gctx, ids)
		return err
	})
	g.Go(func() (err error) {
		d.Subcategories, err = s.store.ListSubcategories(gctx, ids, "")
		return err
	})
	g.Go(func() (err error) {
		d.PaymentSources, err = s.sources.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.CreditCards, err = s.store.ListCreditCards(gctx, ids)
		return err
	})
	for i, id := range ids {
		g.Go(func() error {
			u, err := s.store.GetUser(gctx, id)
			if err != nil {
				return err
			}
			names[i] = u.FullName
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return analytics.Dataset{}, err
	}

	d.UserNames = make(map[string]string, len(ids))
	for i, id := range ids {
		d.UserNames[id] = names[i]
	}
	return d, nil
}
