package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"conti/internal/core"
)

// ExpenseFilter narrows ListExpenses. UserIDs is the visibility set and
// must not be empty; the other fields are optional.
type ExpenseFilter struct {
	UserIDs         []string
	UserID          string
	CategoryID      string
	SubcategoryID   string
	PaymentSourceID string
	CreditCardID    string
	StartDate       core.Date
	EndDate         core.Date
	Shared          *bool
	Limit           int
}

const expenseColumns = `id, user_id, partner_id, amount, category_id, subcategory_id, payment_source_id,
	credit_card_id, date, time, notes, custom_icon, paid_by_user_id, is_shared,
	amount_paid_by_user, amount_paid_by_partner, created_at, updated_at, deleted_at`

func scanExpense(s scanner) (core.Expense, error) {
	var (
		e                                  core.Expense
		partnerID, subID, sourceID, cardID sql.NullString
		clock, paidBy                      sql.NullString
		createdAt, updatedAt               string
		deletedAt                          sql.NullString
	)
	err := s.Scan(&e.ID, &e.UserID, &partnerID, &e.Amount, &e.CategoryID, &subID, &sourceID,
		&cardID, &e.Date, &clock, &e.Notes, &e.CustomIcon, &paidBy, &e.IsShared,
		&e.AmountPaidByUser, &e.AmountPaidByPartner, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return core.Expense{}, err
	}
	e.PartnerID = partnerID.String
	e.SubcategoryID = subID.String
	e.PaymentSourceID = sourceID.String
	e.CreditCardID = cardID.String
	e.Time = clock.String
	e.PaidByUserID = paidBy.String
	e.CreatedAt = parseTS(createdAt)
	e.UpdatedAt = parseTS(updatedAt)
	e.DeletedAt = parseNullTS(deletedAt)
	return e, nil
}

// ListExpenses returns live expenses newest first (date, then created_at).
func (q *Queries) ListExpenses(ctx context.Context, f ExpenseFilter) ([]core.Expense, error) {
	var w where
	w.add("deleted_at IS NULL")
	w.in("user_id", f.UserIDs)
	if f.UserID != "" {
		w.add("user_id = ?", f.UserID)
	}
	if f.CategoryID != "" {
		w.add("category_id = ?", f.CategoryID)
	}
	if f.SubcategoryID != "" {
		w.add("subcategory_id = ?", f.SubcategoryID)
	}
	if f.PaymentSourceID != "" {
		w.add("payment_source_id = ?", f.PaymentSourceID)
	}
	if f.CreditCardID != "" {
		w.add("credit_card_id = ?", f.CreditCardID)
	}
	if !f.StartDate.IsZero() {
		w.add("date >= ?", f.StartDate.String())
	}
	if !f.EndDate.IsZero() {
		w.add("date <= ?", f.EndDate.String())
	}
	if f.Shared != nil {
		w.add("is_shared = ?", *f.Shared)
	}
	query := `SELECT ` + expenseColumns + ` FROM expenses` + w.String() + ` ORDER BY date DESC, created_at DESC`
	args := w.args
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()
	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetExpense returns a live expense.
func (q *Queries) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	e, err := scanExpense(q.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ? AND deleted_at IS NULL`, id))
	if err != nil {
		return core.Expense{}, notFound(err, "expense")
	}
	return e, nil
}

// GetExpenseIncludingDeleted also returns soft-deleted rows.
func (q *Queries) GetExpenseIncludingDeleted(ctx context.Context, id string) (core.Expense, error) {
	e, err := scanExpense(q.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ?`, id))
	if err != nil {
		return core.Expense{}, notFound(err, "expense")
	}
	return e, nil
}

func (q *Queries) CreateExpense(ctx context.Context, e core.Expense) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO expenses (`+expenseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		e.ID, e.UserID, nullString(e.PartnerID), e.Amount, e.CategoryID, nullString(e.SubcategoryID),
		nullString(e.PaymentSourceID), nullString(e.CreditCardID), e.Date, nullString(e.Time), e.Notes,
		e.CustomIcon, nullString(e.PaidByUserID), e.IsShared, e.AmountPaidByUser, e.AmountPaidByPartner,
		ts(e.CreatedAt), ts(e.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}

// UpdateExpense rewrites every mutable column of a live expense owned by
// e.UserID.
func (q *Queries) UpdateExpense(ctx context.Context, e core.Expense) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE expenses SET partner_id = ?, amount = ?, category_id = ?, subcategory_id = ?,
			payment_source_id = ?, credit_card_id = ?, date = ?, time = ?, notes = ?, custom_icon = ?,
			paid_by_user_id = ?, is_shared = ?, amount_paid_by_user = ?, amount_paid_by_partner = ?,
			updated_at = ?
		 WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		nullString(e.PartnerID), e.Amount, e.CategoryID, nullString(e.SubcategoryID),
		nullString(e.PaymentSourceID), nullString(e.CreditCardID), e.Date, nullString(e.Time), e.Notes,
		e.CustomIcon, nullString(e.PaidByUserID), e.IsShared, e.AmountPaidByUser, e.AmountPaidByPartner,
		ts(e.UpdatedAt), e.ID, e.UserID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return requireAffected(res, "expense")
}

// SoftDeleteExpense stamps deleted_at on a live expense owned by userID.
func (q *Queries) SoftDeleteExpense(ctx context.Context, id, userID string, now time.Time) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE expenses SET deleted_at = ?, updated_at = ? WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		ts(now), ts(now), id, userID)
	if err != nil {
		return fmt.Errorf("soft delete expense: %w", err)
	}
	return requireAffected(res, "expense")
}

// SumCardCharges totals live expenses charged to a card.
func (q *Queries) SumCardCharges(ctx context.Context, cardID string) (core.Money, error) {
	var total int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE credit_card_id = ? AND deleted_at IS NULL`, cardID).
		Scan(&total)
	if err != nil {
		return core.Money{}, fmt.Errorf("sum card charges: %w", err)
	}
	return core.Cents(total), nil
}
