package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"conti/internal/core"
)

type InvestmentFilter struct {
	UserID           string
	InvestmentTypeID string
	TransactionType  core.TransactionType
	StartDate        core.Date
	EndDate          core.Date
}

func (q *Queries) ListInvestmentTypes(ctx context.Context) ([]core.InvestmentType, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, name, icon FROM investment_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list investment types: %w", err)
	}
	defer rows.Close()
	var out []core.InvestmentType
	for rows.Next() {
		var t core.InvestmentType
		if err := rows.Scan(&t.ID, &t.Name, &t.Icon); err != nil {
			return nil, fmt.Errorf("scan investment type: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (q *Queries) GetInvestmentType(ctx context.Context, id string) (core.InvestmentType, error) {
	var t core.InvestmentType
	err := q.db.QueryRowContext(ctx, `SELECT id, name, icon FROM investment_types WHERE id = ?`, id).
		Scan(&t.ID, &t.Name, &t.Icon)
	if err != nil {
		return core.InvestmentType{}, notFound(err, "investment type")
	}
	return t, nil
}

const investmentColumns = `id, user_id, investment_type_id, amount, date, transaction_type, notes,
	maturity_date, interest_rate, created_at, updated_at, deleted_at`

func scanInvestment(s scanner) (core.Investment, error) {
	var (
		inv                  core.Investment
		createdAt, updatedAt string
		deletedAt            sql.NullString
	)
	err := s.Scan(&inv.ID, &inv.UserID, &inv.InvestmentTypeID, &inv.Amount, &inv.Date, &inv.TransactionType,
		&inv.Notes, &inv.MaturityDate, &inv.InterestRate, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return core.Investment{}, err
	}
	inv.CreatedAt = parseTS(createdAt)
	inv.UpdatedAt = parseTS(updatedAt)
	inv.DeletedAt = parseNullTS(deletedAt)
	return inv, nil
}

// ListInvestments returns a user's live investments, newest first.
func (q *Queries) ListInvestments(ctx context.Context, f InvestmentFilter) ([]core.Investment, error) {
	var w where
	w.add("deleted_at IS NULL")
	w.add("user_id = ?", f.UserID)
	if f.InvestmentTypeID != "" {
		w.add("investment_type_id = ?", f.InvestmentTypeID)
	}
	if f.TransactionType != "" {
		w.add("transaction_type = ?", f.TransactionType)
	}
	if !f.StartDate.IsZero() {
		w.add("date >= ?", f.StartDate.String())
	}
	if !f.EndDate.IsZero() {
		w.add("date <= ?", f.EndDate.String())
	}
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+investmentColumns+` FROM investments`+w.String()+` ORDER BY date DESC, created_at DESC`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list investments: %w", err)
	}
	defer rows.Close()
	var out []core.Investment
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan investment: %w", err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (q *Queries) GetInvestment(ctx context.Context, id string) (core.Investment, error) {
	inv, err := scanInvestment(q.db.QueryRowContext(ctx,
		`SELECT `+investmentColumns+` FROM investments WHERE id = ? AND deleted_at IS NULL`, id))
	if err != nil {
		return core.Investment{}, notFound(err, "investment")
	}
	return inv, nil
}

func (q *Queries) CreateInvestment(ctx context.Context, inv core.Investment) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO investments (`+investmentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		inv.ID, inv.UserID, inv.InvestmentTypeID, inv.Amount, inv.Date, inv.TransactionType, inv.Notes,
		inv.MaturityDate, inv.InterestRate, ts(inv.CreatedAt), ts(inv.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert investment: %w", err)
	}
	return nil
}

func (q *Queries) UpdateInvestment(ctx context.Context, inv core.Investment) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE investments SET investment_type_id = ?, amount = ?, date = ?, transaction_type = ?, notes = ?,
			maturity_date = ?, interest_rate = ?, updated_at = ?
		 WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		inv.InvestmentTypeID, inv.Amount, inv.Date, inv.TransactionType, inv.Notes,
		inv.MaturityDate, inv.InterestRate, ts(inv.UpdatedAt), inv.ID, inv.UserID)
	if err != nil {
		return fmt.Errorf("update investment: %w", err)
	}
	return requireAffected(res, "investment")
}

func (q *Queries) SoftDeleteInvestment(ctx context.Context, id, userID string, now time.Time) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE investments SET deleted_at = ?, updated_at = ? WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		ts(now), ts(now), id, userID)
	if err != nil {
		return fmt.Errorf("soft delete investment: %w", err)
	}
	return requireAffected(res, "investment")
}
