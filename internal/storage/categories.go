package storage

import (
	"context"
	"database/sql"
	"fmt"

	"conti/internal/core"
)

const categoryColumns = `id, name, icon, color, user_id, created_at, updated_at`

func scanCategory(s scanner) (core.Category, error) {
	var (
		c                    core.Category
		userID               sql.NullString
		createdAt, updatedAt string
	)
	if err := s.Scan(&c.ID, &c.Name, &c.Icon, &c.Color, &userID, &createdAt, &updatedAt); err != nil {
		return core.Category{}, err
	}
	c.UserID = userID.String
	c.CreatedAt = parseTS(createdAt)
	c.UpdatedAt = parseTS(updatedAt)
	return c, nil
}

// ListCategories returns default categories plus those owned by ownerIDs,
// ordered by name.
func (q *Queries) ListCategories(ctx context.Context, ownerIDs []string) ([]core.Category, error) {
	var w where
	w.in("user_id", ownerIDs)
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE user_id IS NULL`
	if len(ownerIDs) > 0 {
		query += ` OR ` + w.clauses[0]
	}
	rows, err := q.db.QueryContext(ctx, query+` ORDER BY name COLLATE NOCASE, id`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	var out []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (q *Queries) GetCategory(ctx context.Context, id string) (core.Category, error) {
	c, err := scanCategory(q.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id))
	if err != nil {
		return core.Category{}, notFound(err, "category")
	}
	return c, nil
}

func (q *Queries) CreateCategory(ctx context.Context, c core.Category) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO categories (`+categoryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Icon, c.Color, nullString(c.UserID), ts(c.CreatedAt), ts(c.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (q *Queries) UpdateCategory(ctx context.Context, c core.Category) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE categories SET name = ?, icon = ?, color = ?, updated_at = ? WHERE id = ?`,
		c.Name, c.Icon, c.Color, ts(c.UpdatedAt), c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return requireAffected(res, "category")
}

func (q *Queries) DeleteCategory(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return requireAffected(res, "category")
}

// CountExpensesByCategory counts every expense row, soft-deleted included,
// that points at the category.
func (q *Queries) CountExpensesByCategory(ctx context.Context, categoryID string) (int64, error) {
	var n int64
	if err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM expenses WHERE category_id = ?`, categoryID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count expenses by category: %w", err)
	}
	return n, nil
}

const subcategoryColumns = `s.id, s.category_id, s.name, s.icon, s.color, s.created_at, s.updated_at`

func scanSubcategory(s scanner) (core.Subcategory, error) {
	var (
		sc                   core.Subcategory
		createdAt, updatedAt string
	)
	if err := s.Scan(&sc.ID, &sc.CategoryID, &sc.Name, &sc.Icon, &sc.Color, &createdAt, &updatedAt); err != nil {
		return core.Subcategory{}, err
	}
	sc.CreatedAt = parseTS(createdAt)
	sc.UpdatedAt = parseTS(updatedAt)
	return sc, nil
}

// ListSubcategories returns subcategories whose parent is visible to
// ownerIDs, optionally narrowed to one category, ordered by name.
func (q *Queries) ListSubcategories(ctx context.Context, ownerIDs []string, categoryID string) ([]core.Subcategory, error) {
	var owners where
	owners.in("c.user_id", ownerIDs)
	query := `SELECT ` + subcategoryColumns + ` FROM subcategories s
		JOIN categories c ON c.id = s.category_id
		WHERE (c.user_id IS NULL`
	if len(ownerIDs) > 0 {
		query += ` OR ` + owners.clauses[0]
	}
	query += `)`
	args := owners.args
	if categoryID != "" {
		query += ` AND s.category_id = ?`
		args = append(args, categoryID)
	}
	rows, err := q.db.QueryContext(ctx, query+` ORDER BY s.name COLLATE NOCASE, s.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	defer rows.Close()
	var out []core.Subcategory
	for rows.Next() {
		sc, err := scanSubcategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subcategory: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (q *Queries) GetSubcategory(ctx context.Context, id string) (core.Subcategory, error) {
	sc, err := scanSubcategory(q.db.QueryRowContext(ctx,
		`SELECT `+subcategoryColumns+` FROM subcategories s WHERE s.id = ?`, id))
	if err != nil {
		return core.Subcategory{}, notFound(err, "subcategory")
	}
	return sc, nil
}

func (q *Queries) CreateSubcategory(ctx context.Context, sc core.Subcategory) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO subcategories (id, category_id, name, icon, color, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sc.ID, sc.CategoryID, sc.Name, sc.Icon, sc.Color, ts(sc.CreatedAt), ts(sc.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert subcategory: %w", err)
	}
	return nil
}

func (q *Queries) UpdateSubcategory(ctx context.Context, sc core.Subcategory) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE subcategories SET category_id = ?, name = ?, icon = ?, color = ?, updated_at = ? WHERE id = ?`,
		sc.CategoryID, sc.Name, sc.Icon, sc.Color, ts(sc.UpdatedAt), sc.ID)
	if err != nil {
		return fmt.Errorf("update subcategory: %w", err)
	}
	return requireAffected(res, "subcategory")
}

func (q *Queries) DeleteSubcategory(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM subcategories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete subcategory: %w", err)
	}
	return requireAffected(res, "subcategory")
}

func (q *Queries) CountExpensesBySubcategory(ctx context.Context, subcategoryID string) (int64, error) {
	var n int64
	if err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM expenses WHERE subcategory_id = ?`, subcategoryID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count expenses by subcategory: %w", err)
	}
	return n, nil
}

const paymentSourceColumns = `id, name, type, icon, created_at, updated_at`

func scanPaymentSource(s scanner) (core.PaymentSource, error) {
	var (
		ps                   core.PaymentSource
		createdAt, updatedAt string
	)
	if err := s.Scan(&ps.ID, &ps.Name, &ps.Type, &ps.Icon, &createdAt, &updatedAt); err != nil {
		return core.PaymentSource{}, err
	}
	ps.CreatedAt = parseTS(createdAt)
	ps.UpdatedAt = parseTS(updatedAt)
	return ps, nil
}

// ListPaymentSources orders by type, then name.
func (q *Queries) ListPaymentSources(ctx context.Context) ([]core.PaymentSource, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+paymentSourceColumns+` FROM payment_sources ORDER BY type, name`)
	if err != nil {
		return nil, fmt.Errorf("list payment sources: %w", err)
	}
	defer rows.Close()
	var out []core.PaymentSource
	for rows.Next() {
		ps, err := scanPaymentSource(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment source: %w", err)
		}
		out = append(out, ps)
	}
	return out, rows.Err()
}

func (q *Queries) GetPaymentSource(ctx context.Context, id string) (core.PaymentSource, error) {
	ps, err := scanPaymentSource(q.db.QueryRowContext(ctx,
		`SELECT `+paymentSourceColumns+` FROM payment_sources WHERE id = ?`, id))
	if err != nil {
		return core.PaymentSource{}, notFound(err, "payment source")
	}
	return ps, nil
}
