package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"conti/internal/amqp"
	"conti/internal/core"
	"conti/internal/storage"
)

// CreditCardService manages cards, repayments and running balances.
type CreditCardService struct {
	store  *storage.SQLiteRepository
	events EventPublisher
	now    clock
}

func NewCreditCardService(store *storage.SQLiteRepository, events EventPublisher) *CreditCardService {
	return &CreditCardService{store: store, events: events, now: utcNow}
}

func (s *CreditCardService) List(ctx context.Context, userID string) ([]core.CreditCard, error) {
	return s.store.ListCreditCards(ctx, []string{userID})
}

func (s *CreditCardService) Get(ctx context.Context, userID, id string) (core.CreditCard, error) {
	c, err := s.store.GetCreditCard(ctx, id)
	if err != nil {
		return core.CreditCard{}, err
	}
	if c.UserID != userID {
		return core.CreditCard{}, fmt.Errorf("credit card: %w", core.ErrNotFound)
	}
	return c, nil
}

func (s *CreditCardService) Create(ctx context.Context, userID string, in core.CreditCardInput) (core.CreditCard, error) {
	if err := in.Validate(); err != nil {
		return core.CreditCard{}, err
	}
	now := s.now()
	c := core.CreditCard{
		ID:             newID(),
		UserID:         userID,
		CardName:       strings.TrimSpace(in.CardName),
		Last4:          in.Last4,
		CreditLimit:    in.CreditLimit,
		OpeningBalance: in.OpeningBalance,
		CurrentBalance: in.OpeningBalance,
		DueDate:        in.DueDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.CreateCreditCard(ctx, c); err != nil {
		return core.CreditCard{}, err
	}
	slog.InfoContext(ctx, "Credit card created", "user_id", userID, "credit_card_id", c.ID)
	return c, nil
}

func (s *CreditCardService) Update(ctx context.Context, userID, id string, in core.CreditCardInput) (core.CreditCard, error) {
	if err := in.Validate(); err != nil {
		return core.CreditCard{}, err
	}
	c, err := s.Get(ctx, userID, id)
	if err != nil {
		return core.CreditCard{}, err
	}
	c.CardName = strings.TrimSpace(in.CardName)
	c.Last4 = in.Last4
	c.CreditLimit = in.CreditLimit
	c.OpeningBalance = in.OpeningBalance
	c.DueDate = in.DueDate
	c.UpdatedAt = s.now()

	err = s.store.InTx(ctx, func(q *storage.Queries) error {
		if err := q.UpdateCreditCard(ctx, c); err != nil {
			return err
		}
		bal, err := recomputeBalance(ctx, q, c.ID, c.UpdatedAt)
		c.CurrentBalance = bal
		return err
	})
	if err != nil {
		return core.CreditCard{}, err
	}
	return c, nil
}

// Delete removes the card and its repayments. Expenses stay, detached.
func (s *CreditCardService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteCreditCard(ctx, id, userID); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Credit card deleted", "user_id", userID, "credit_card_id", id)
	return nil
}

func (s *CreditCardService) ListRepayments(ctx context.Context, userID, cardID string) ([]core.Repayment, error) {
	return s.store.ListRepayments(ctx, userID, cardID)
}

func (s *CreditCardService) AddRepayment(ctx context.Context, userID string, in core.RepaymentInput) (core.Repayment, error) {
	if err := in.Validate(); err != nil {
		return core.Repayment{}, err
	}
	if _, err := s.Get(ctx, userID, in.CreditCardID); err != nil {
		return core.Repayment{}, err
	}
	now := s.now()
	r := core.Repayment{
		ID:           newID(),
		UserID:       userID,
		CreditCardID: in.CreditCardID,
		Amount:       in.Amount,
		PaymentDate:  in.PaymentDate,
		Notes:        strings.TrimSpace(in.Notes),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		if err := q.CreateRepayment(ctx, r); err != nil {
			return err
		}
		_, err := recomputeBalance(ctx, q, r.CreditCardID, now)
		return err
	})
	if err != nil {
		return core.Repayment{}, err
	}
	publish(ctx, s.events, amqp.NewEvent(amqp.RepaymentChanged, userID, "", r.CreditCardID))
	return r, nil
}

func (s *CreditCardService) UpdateRepayment(ctx context.Context, userID, id string, in core.RepaymentInput) (core.Repayment, error) {
	if err := in.Validate(); err != nil {
		return core.Repayment{}, err
	}
	r, err := s.ownedRepayment(ctx, userID, id)
	if err != nil {
		return core.Repayment{}, err
	}
	if _, err := s.Get(ctx, userID, in.CreditCardID); err != nil {
		return core.Repayment{}, err
	}
	oldCard := r.CreditCardID
	r.CreditCardID = in.CreditCardID
	r.Amount = in.Amount
	r.PaymentDate = in.PaymentDate
	r.Notes = strings.TrimSpace(in.Notes)
	r.UpdatedAt = s.now()

	err = s.store.InTx(ctx, func(q *storage.Queries) error {
		if err := q.UpdateRepayment(ctx, r); err != nil {
			return err
		}
		return recomputeCards(ctx, q, r.UpdatedAt, oldCard, r.CreditCardID)
	})
	if err != nil {
		return core.Repayment{}, err
	}
	publish(ctx, s.events, amqp.NewEvent(amqp.RepaymentChanged, userID, "", oldCard, r.CreditCardID))
	return r, nil
}

func (s *CreditCardService) DeleteRepayment(ctx context.Context, userID, id string) error {
	r, err := s.ownedRepayment(ctx, userID, id)
	if err != nil {
		return err
	}
	now := s.now()
	err = s.store.InTx(ctx, func(q *storage.Queries) error {
		if err := q.DeleteRepayment(ctx, id, userID); err != nil {
			return err
		}
		_, err := recomputeBalance(ctx, q, r.CreditCardID, now)
		return err
	})
	if err != nil {
		return err
	}
	publish(ctx, s.events, amqp.NewEvent(amqp.RepaymentChanged, userID, "", r.CreditCardID))
	return nil
}

// RecomputeBalance rewrites current_balance from the card's history.
func (s *CreditCardService) RecomputeBalance(ctx context.Context, cardID string) (core.Money, error) {
	var bal core.Money
	err := s.store.InTx(ctx, func(q *storage.Queries) error {
		var err error
		bal, err = recomputeBalance(ctx, q, cardID, s.now())
		return err
	})
	return bal, err
}

// RecomputeAll reconciles every card and returns how many were updated.
// Cards deleted concurrently are skipped.
func (s *CreditCardService) RecomputeAll(ctx context.Context) (int, error) {
	ids, err := s.store.ListCreditCardIDs(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if _, err := s.RecomputeBalance(ctx, id); err != nil {
			if isNotFound(err) {
				continue
			}
			return n, fmt.Errorf("recompute card %s: %w", id, err)
		}
		n++
	}
	return n, nil
}

func (s *CreditCardService) ownedRepayment(ctx context.Context, userID, id string) (core.Repayment, error) {
	r, err := s.store.GetRepayment(ctx, id)
	if err != nil {
		return core.Repayment{}, err
	}
	if r.UserID != userID {
		return core.Repayment{}, fmt.Errorf("repayment: %w", core.ErrNotFound)
	}
	return r, nil
}

// recomputeBalance sets the balance to
// max(0, opening + live charges - repayments).
func recomputeBalance(ctx context.Context, q *storage.Queries, cardID string, now time.Time) (core.Money, error) {
	card, err := q.GetCreditCard(ctx, cardID)
	if err != nil {
		return core.Money{}, err
	}
	charges, err := q.SumCardCharges(ctx, cardID)
	if err != nil {
		return core.Money{}, err
	}
	repaid, err := q.SumRepayments(ctx, cardID)
	if err != nil {
		return core.Money{}, err
	}
	bal := card.OpeningBalance.Add(charges).Sub(repaid)
	if bal.Cents < 0 {
		bal = core.Money{}
	}
	if err := q.SetCreditCardBalance(ctx, cardID, bal, now); err != nil {
		return core.Money{}, err
	}
	return bal, nil
}

// recomputeCards recomputes each distinct non-empty card id once.
func recomputeCards(ctx context.Context, q *storage.Queries, now time.Time, cardIDs ...string) error {
	seen := make(map[string]bool, len(cardIDs))
	for _, id := range cardIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		if _, err := recomputeBalance(ctx, q, id, now); err != nil {
			if isNotFound(err) {
				continue
			}
			return err
		}
	}
	return nil
}
