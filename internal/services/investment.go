package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"conti/internal/analytics"
	"conti/internal/core"
	"conti/internal/storage"
)

// InvestmentService manages a user's deposits and withdrawals. Investments
// are never shared with the partner.
type InvestmentService struct {
	store *storage.SQLiteRepository
	now   clock
}

func NewInvestmentService(store *storage.SQLiteRepository) *InvestmentService {
	return &InvestmentService{store: store, now: utcNow}
}

func (s *InvestmentService) ListTypes(ctx context.Context) ([]core.InvestmentType, error) {
	return s.store.ListInvestmentTypes(ctx)
}

func (s *InvestmentService) List(ctx context.Context, userID string, f storage.InvestmentFilter) ([]core.Investment, error) {
	f.UserID = userID
	return s.store.ListInvestments(ctx, f)
}

func (s *InvestmentService) Get(ctx context.Context, userID, id string) (core.Investment, error) {
	inv, err := s.store.GetInvestment(ctx, id)
	if err != nil {
		return core.Investment{}, err
	}
	if inv.UserID != userID {
		return core.Investment{}, fmt.Errorf("investment: %w", core.ErrNotFound)
	}
	return inv, nil
}

func (s *InvestmentService) Create(ctx context.Context, userID string, in core.InvestmentInput) (core.Investment, error) {
	if err := s.check(ctx, in); err != nil {
		return core.Investment{}, err
	}
	now := s.now()
	inv := core.Investment{ID: newID(), UserID: userID, CreatedAt: now}
	applyInvestment(&inv, in)
	inv.UpdatedAt = now
	if err := s.store.CreateInvestment(ctx, inv); err != nil {
		return core.Investment{}, err
	}
	slog.InfoContext(ctx, "Investment created",
		"user_id", userID,
		"investment_id", inv.ID,
		"transaction_type", inv.TransactionType,
		"amount_cents", inv.Amount.Cents)
	return inv, nil
}

func (s *InvestmentService) Update(ctx context.Context, userID, id string, in core.InvestmentInput) (core.Investment, error) {
	inv, err := s.Get(ctx, userID, id)
	if err != nil {
		return core.Investment{}, err
	}
	if err := s.check(ctx, in); err != nil {
		return core.Investment{}, err
	}
	applyInvestment(&inv, in)
	inv.UpdatedAt = s.now()
	if err := s.store.UpdateInvestment(ctx, inv); err != nil {
		return core.Investment{}, err
	}
	return inv, nil
}

func (s *InvestmentService) Delete(ctx context.Context, userID, id string) error {
	return s.store.SoftDeleteInvestment(ctx, id, userID, s.now())
}

// Summary totals the filtered investments per type and overall.
func (s *InvestmentService) Summary(ctx context.Context, userID string, f storage.InvestmentFilter) (analytics.InvestmentSummary, error) {
	invs, err := s.List(ctx, userID, f)
	if err != nil {
		return analytics.InvestmentSummary{}, err
	}
	types, err := s.store.ListInvestmentTypes(ctx)
	if err != nil {
		return analytics.InvestmentSummary{}, err
	}
	return analytics.SummarizeInvestments(invs, types), nil
}

func (s *InvestmentService) check(ctx context.Context, in core.InvestmentInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	if _, err := s.store.GetInvestmentType(ctx, in.InvestmentTypeID); err != nil {
		if isNotFound(err) {
			return &core.ValidationError{Problems: []string{"Investment type not found"}}
		}
		return err
	}
	return nil
}

func applyInvestment(inv *core.Investment, in core.InvestmentInput) {
	inv.InvestmentTypeID = in.InvestmentTypeID
	inv.Amount = in.Amount
	inv.Date = in.Date
	inv.TransactionType = in.TransactionType
	inv.Notes = strings.TrimSpace(in.Notes)
	inv.MaturityDate = in.MaturityDate
	inv.InterestRate = in.InterestRate
}
