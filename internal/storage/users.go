package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"conti/internal/core"
)

const userColumns = `id, email, full_name, password_hash, partner_id, created_at`

func scanUser(s scanner) (core.User, error) {
	var (
		u         core.User
		partnerID sql.NullString
		createdAt string
	)
	if err := s.Scan(&u.ID, &u.Email, &u.FullName, &u.PasswordHash, &partnerID, &createdAt); err != nil {
		return core.User{}, err
	}
	u.PartnerID = partnerID.String
	u.CreatedAt = parseTS(createdAt)
	return u, nil
}

func (q *Queries) CreateUser(ctx context.Context, u core.User) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO users (id, email, full_name, password_hash, partner_id, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.FullName, u.PasswordHash, nullString(u.PartnerID), ts(u.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email already registered: %w", core.ErrConflict)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (q *Queries) GetUser(ctx context.Context, id string) (core.User, error) {
	u, err := scanUser(q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return core.User{}, notFound(err, "user")
	}
	return u, nil
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	u, err := scanUser(q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err != nil {
		return core.User{}, notFound(err, "user")
	}
	return u, nil
}

// SetUserPartner points the user at a partnership; "" clears it.
func (q *Queries) SetUserPartner(ctx context.Context, userID, partnerID string) error {
	res, err := q.db.ExecContext(ctx, `UPDATE users SET partner_id = ? WHERE id = ?`, nullString(partnerID), userID)
	if err != nil {
		return fmt.Errorf("set user partner: %w", err)
	}
	return requireAffected(res, "user")
}

func (q *Queries) CreateSession(ctx context.Context, tokenHash, userID string, expiresAt, now time.Time) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO sessions (token_hash, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		tokenHash, userID, ts(expiresAt), ts(now))
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetSession returns the owner and expiry of a session.
func (q *Queries) GetSession(ctx context.Context, tokenHash string) (string, time.Time, error) {
	var userID, expiresAt string
	err := q.db.QueryRowContext(ctx, `SELECT user_id, expires_at FROM sessions WHERE token_hash = ?`, tokenHash).
		Scan(&userID, &expiresAt)
	if err != nil {
		return "", time.Time{}, notFound(err, "session")
	}
	return userID, parseTS(expiresAt), nil
}

func (q *Queries) DeleteSession(ctx context.Context, tokenHash string) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM sessions WHERE token_hash = ?`, tokenHash); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (q *Queries) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, ts(now))
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return res.RowsAffected()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
