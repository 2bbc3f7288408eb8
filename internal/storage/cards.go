package storage

import (
	"context"
	"fmt"
	"time"

	"conti/internal/core"
)

const cardColumns = `id, user_id, card_name, card_number_last4, credit_limit, opening_balance,
	current_balance, due_date, created_at, updated_at`

func scanCard(s scanner) (core.CreditCard, error) {
	var (
		c                    core.CreditCard
		createdAt, updatedAt string
	)
	err := s.Scan(&c.ID, &c.UserID, &c.CardName, &c.Last4, &c.CreditLimit, &c.OpeningBalance,
		&c.CurrentBalance, &c.DueDate, &createdAt, &updatedAt)
	if err != nil {
		return core.CreditCard{}, err
	}
	c.CreatedAt = parseTS(createdAt)
	c.UpdatedAt = parseTS(updatedAt)
	return c, nil
}

// ListCreditCards returns the cards of the given owners ordered by name.
func (q *Queries) ListCreditCards(ctx context.Context, userIDs []string) ([]core.CreditCard, error) {
	var w where
	w.in("user_id", userIDs)
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM credit_cards`+w.String()+` ORDER BY card_name COLLATE NOCASE, id`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list credit cards: %w", err)
	}
	defer rows.Close()
	var out []core.CreditCard
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("scan credit card: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListCreditCardIDs returns every card id; used by reconciliation.
func (q *Queries) ListCreditCardIDs(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id FROM credit_cards ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list credit card ids: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan credit card id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (q *Queries) GetCreditCard(ctx context.Context, id string) (core.CreditCard, error) {
	c, err := scanCard(q.db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM credit_cards WHERE id = ?`, id))
	if err != nil {
		return core.CreditCard{}, notFound(err, "credit card")
	}
	return c, nil
}

func (q *Queries) CreateCreditCard(ctx context.Context, c core.CreditCard) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO credit_cards (`+cardColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.CardName, c.Last4, c.CreditLimit, c.OpeningBalance, c.CurrentBalance,
		c.DueDate, ts(c.CreatedAt), ts(c.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert credit card: %w", err)
	}
	return nil
}

func (q *Queries) UpdateCreditCard(ctx context.Context, c core.CreditCard) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE credit_cards SET card_name = ?, card_number_last4 = ?, credit_limit = ?, opening_balance = ?,
			due_date = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		c.CardName, c.Last4, c.CreditLimit, c.OpeningBalance, c.DueDate, ts(c.UpdatedAt), c.ID, c.UserID)
	if err != nil {
		return fmt.Errorf("update credit card: %w", err)
	}
	return requireAffected(res, "credit card")
}

func (q *Queries) SetCreditCardBalance(ctx context.Context, id string, balance core.Money, now time.Time) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE credit_cards SET current_balance = ?, updated_at = ? WHERE id = ?`, balance, ts(now), id)
	if err != nil {
		return fmt.Errorf("set credit card balance: %w", err)
	}
	return requireAffected(res, "credit card")
}

// DeleteCreditCard removes the card and its repayments. Expenses keep
// their history with credit_card_id cleared by the foreign key.
func (q *Queries) DeleteCreditCard(ctx context.Context, id, userID string) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM credit_cards WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete credit card: %w", err)
	}
	return requireAffected(res, "credit card")
}

const repaymentColumns = `id, user_id, credit_card_id, amount, payment_date, notes, created_at, updated_at`

func scanRepayment(s scanner) (core.Repayment, error) {
	var (
		r                    core.Repayment
		createdAt, updatedAt string
	)
	if err := s.Scan(&r.ID, &r.UserID, &r.CreditCardID, &r.Amount, &r.PaymentDate, &r.Notes, &createdAt, &updatedAt); err != nil {
		return core.Repayment{}, err
	}
	r.CreatedAt = parseTS(createdAt)
	r.UpdatedAt = parseTS(updatedAt)
	return r, nil
}

// ListRepayments returns a user's repayments, newest payment first,
// optionally for a single card.
func (q *Queries) ListRepayments(ctx context.Context, userID, cardID string) ([]core.Repayment, error) {
	var w where
	w.add("user_id = ?", userID)
	if cardID != "" {
		w.add("credit_card_id = ?", cardID)
	}
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+repaymentColumns+` FROM credit_card_repayments`+w.String()+` ORDER BY payment_date DESC, created_at DESC`,
		w.args...)
	if err != nil {
		return nil, fmt.Errorf("list repayments: %w", err)
	}
	defer rows.Close()
	var out []core.Repayment
	for rows.Next() {
		r, err := scanRepayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan repayment: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (q *Queries) GetRepayment(ctx context.Context, id string) (core.Repayment, error) {
	r, err := scanRepayment(q.db.QueryRowContext(ctx,
		`SELECT `+repaymentColumns+` FROM credit_card_repayments WHERE id = ?`, id))
	if err != nil {
		return core.Repayment{}, notFound(err, "repayment")
	}
	return r, nil
}

func (q *Queries) CreateRepayment(ctx context.Context, r core.Repayment) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO credit_card_repayments (`+repaymentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.CreditCardID, r.Amount, r.PaymentDate, r.Notes, ts(r.CreatedAt), ts(r.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert repayment: %w", err)
	}
	return nil
}

func (q *Queries) UpdateRepayment(ctx context.Context, r core.Repayment) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE credit_card_repayments SET credit_card_id = ?, amount = ?, payment_date = ?, notes = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		r.CreditCardID, r.Amount, r.PaymentDate, r.Notes, ts(r.UpdatedAt), r.ID, r.UserID)
	if err != nil {
		return fmt.Errorf("update repayment: %w", err)
	}
	return requireAffected(res, "repayment")
}

func (q *Queries) DeleteRepayment(ctx context.Context, id, userID string) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM credit_card_repayments WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete repayment: %w", err)
	}
	return requireAffected(res, "repayment")
}

func (q *Queries) SumRepayments(ctx context.Context, cardID string) (core.Money, error) {
	var total int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM credit_card_repayments WHERE credit_card_id = ?`, cardID).Scan(&total)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum repayments: %w", err)
	}
	return core.Cents(total), nil
}
