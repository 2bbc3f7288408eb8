package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"conti/internal/amqp"
	"conti/internal/core"
	"conti/internal/storage"
)

// ExpenseService orchestrates expense operations across SQLite and AMQP.
// Reads are partner aware; writes are restricted to the owner.
type ExpenseService struct {
	store      *storage.SQLiteRepository
	partners   *PartnerService
	categories *CategoryService
	events     EventPublisher
	now        clock
}

func NewExpenseService(store *storage.SQLiteRepository, partners *PartnerService, categories *CategoryService, events EventPublisher) *ExpenseService {
	return &ExpenseService{
		store:      store,
		partners:   partners,
		categories: categories,
		events:     events,
		now:        utcNow,
	}
}

// List returns the user's live expenses, plus the partner's when linked.
// Any UserIDs set on f are replaced by the visibility set.
func (s *ExpenseService) List(ctx context.Context, userID string, f storage.ExpenseFilter) ([]core.Expense, error) {
	ids, err := s.partners.VisibleUserIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	f.UserIDs = ids
	if f.UserID != "" && !slices.Contains(ids, f.UserID) {
		return nil, nil
	}
	return s.store.ListExpenses(ctx, f)
}

func (s *ExpenseService) Get(ctx context.Context, userID, id string) (core.Expense, error) {
	e, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return core.Expense{}, err
	}
	if e.UserID == userID {
		return e, nil
	}
	ids, err := s.partners.VisibleUserIDs(ctx, userID)
	if err != nil {
		return core.Expense{}, err
	}
	if !slices.Contains(ids, e.UserID) {
		return core.Expense{}, fmt.Errorf("expense: %w", core.ErrNotFound)
	}
	return e, nil
}

// Create saves an expense locally and publishes expense.created.
func (s *ExpenseService) Create(ctx context.Context, userID string, in core.ExpenseInput) (core.Expense, error) {
	in = in.Normalize()
	p, err := s.check(ctx, userID, in)
	if err != nil {
		return core.Expense{}, err
	}

	now := s.now()
	e := core.Expense{ID: newID(), UserID: userID, CreatedAt: now}
	apply(&e, in, p, now)

	err = s.store.InTx(ctx, func(q *storage.Queries) error {
		if err := q.CreateExpense(ctx, e); err != nil {
			return err
		}
		return recomputeCards(ctx, q, now, e.CreditCardID)
	})
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense created",
		"user_id", userID,
		"expense_id", e.ID,
		"amount_cents", e.Amount.Cents,
		"is_shared", e.IsShared)

	publish(ctx, s.events, amqp.NewEvent(amqp.ExpenseCreated, userID, e.ID, e.CreditCardID))
	return e, nil
}

func (s *ExpenseService) Update(ctx context.Context, userID, id string, in core.ExpenseInput) (core.Expense, error) {
	e, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return core.Expense{}, err
	}
	if e.UserID != userID {
		return core.Expense{}, fmt.Errorf("you can only edit your own expenses: %w", core.ErrForbidden)
	}
	in = in.Normalize()
	p, err := s.check(ctx, userID, in)
	if err != nil {
		return core.Expense{}, err
	}

	oldCard := e.CreditCardID
	now := s.now()
	apply(&e, in, p, now)

	err = s.store.InTx(ctx, func(q *storage.Queries) error {
		if err := q.UpdateExpense(ctx, e); err != nil {
			return err
		}
		return recomputeCards(ctx, q, now, oldCard, e.CreditCardID)
	})
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense updated", "user_id", userID, "expense_id", e.ID)

	publish(ctx, s.events, amqp.NewEvent(amqp.ExpenseUpdated, userID, e.ID, oldCard, e.CreditCardID))
	return e, nil
}

// Delete soft deletes an expense locally and publishes expense.deleted.
func (s *ExpenseService) Delete(ctx context.Context, userID, id string) error {
	e, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return err
	}
	if e.UserID != userID {
		return fmt.Errorf("you can only delete your own expenses: %w", core.ErrForbidden)
	}

	now := s.now()
	err = s.store.InTx(ctx, func(q *storage.Queries) error {
		if err := q.SoftDeleteExpense(ctx, id, userID, now); err != nil {
			return err
		}
		return recomputeCards(ctx, q, now, e.CreditCardID)
	})
	if err != nil {
		return fmt.Errorf("soft delete expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense deleted", "user_id", userID, "expense_id", id)

	publish(ctx, s.events, amqp.NewEvent(amqp.ExpenseDeleted, userID, id, e.CreditCardID))
	return nil
}

// check validates the input and every reference it carries. It returns
// the active partnership, if any.
func (s *ExpenseService) check(ctx context.Context, userID string, in core.ExpenseInput) (*core.Partner, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p, err := s.partners.ActivePartnership(ctx, userID)
	if err != nil {
		return nil, err
	}

	var problems []string
	if _, err := s.categories.Visible(ctx, userID, in.CategoryID); err != nil {
		if !isNotFound(err) {
			return nil, err
		}
		problems = append(problems, "Category not found")
	}
	if in.SubcategoryID != "" {
		sc, err := s.store.GetSubcategory(ctx, in.SubcategoryID)
		switch {
		case isNotFound(err):
			problems = append(problems, "Subcategory not found")
		case err != nil:
			return nil, err
		case sc.CategoryID != in.CategoryID:
			problems = append(problems, "Subcategory does not belong to the selected category")
		}
	}
	if in.PaymentSourceID != "" {
		if _, err := s.store.GetPaymentSource(ctx, in.PaymentSourceID); err != nil {
			if !isNotFound(err) {
				return nil, err
			}
			problems = append(problems, "Payment source not found")
		}
	}
	if in.CreditCardID != "" {
		card, err := s.store.GetCreditCard(ctx, in.CreditCardID)
		if err != nil && !isNotFound(err) {
			return nil, err
		}
		if err != nil || card.UserID != userID {
			problems = append(problems, "Credit card not found")
		}
	}
	if in.PaidByUserID != "" && in.PaidByUserID != userID && (p == nil || !p.Has(in.PaidByUserID)) {
		problems = append(problems, "Paid by must be you or your partner")
	}
	if len(problems) > 0 {
		return nil, &core.ValidationError{Problems: problems}
	}
	return p, nil
}

func apply(e *core.Expense, in core.ExpenseInput, p *core.Partner, now time.Time) {
	e.Amount = in.Amount
	e.CategoryID = in.CategoryID
	e.SubcategoryID = in.SubcategoryID
	e.PaymentSourceID = in.PaymentSourceID
	e.CreditCardID = in.CreditCardID
	e.Date = in.Date
	e.Time = in.Time
	e.Notes = in.Notes
	e.CustomIcon = in.CustomIcon
	e.PaidByUserID = in.PaidByUserID
	e.IsShared = in.IsShared
	e.AmountPaidByUser = in.AmountPaidByUser
	e.AmountPaidByPartner = in.AmountPaidByPartner
	e.PartnerID = ""
	if in.IsShared && p != nil {
		e.PartnerID = p.ID
	}
	e.UpdatedAt = now
}
