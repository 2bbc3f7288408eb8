package storage

import (
	"context"
	"fmt"
	"time"

	"conti/internal/core"
)

const partnerColumns = `id, user1_id, user2_id, status, initiated_by, created_at, updated_at`

func scanPartner(s scanner) (core.Partner, error) {
	var (
		p                    core.Partner
		createdAt, updatedAt string
	)
	if err := s.Scan(&p.ID, &p.User1ID, &p.User2ID, &p.Status, &p.InitiatedBy, &createdAt, &updatedAt); err != nil {
		return core.Partner{}, err
	}
	p.CreatedAt = parseTS(createdAt)
	p.UpdatedAt = parseTS(updatedAt)
	return p, nil
}

func (q *Queries) CreatePartner(ctx context.Context, p core.Partner) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO partners (`+partnerColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.User1ID, p.User2ID, p.Status, p.InitiatedBy, ts(p.CreatedAt), ts(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert partner: %w", err)
	}
	return nil
}

// GetActivePartnerForUser finds the active partnership on either side.
func (q *Queries) GetActivePartnerForUser(ctx context.Context, userID string) (core.Partner, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+partnerColumns+` FROM partners
		 WHERE (user1_id = ? OR user2_id = ?) AND status = 'active'
		 ORDER BY created_at DESC LIMIT 1`, userID, userID)
	p, err := scanPartner(row)
	if err != nil {
		return core.Partner{}, notFound(err, "partner")
	}
	return p, nil
}

func (q *Queries) DeletePartner(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM partners WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete partner: %w", err)
	}
	return requireAffected(res, "partner")
}

// ClearPartnerReferences detaches users and expenses from a partnership.
func (q *Queries) ClearPartnerReferences(ctx context.Context, partnerID string, now time.Time) error {
	if _, err := q.db.ExecContext(ctx, `UPDATE users SET partner_id = NULL WHERE partner_id = ?`, partnerID); err != nil {
		return fmt.Errorf("clear user partner: %w", err)
	}
	if _, err := q.db.ExecContext(ctx,
		`UPDATE expenses SET partner_id = NULL, updated_at = ? WHERE partner_id = ?`, ts(now), partnerID); err != nil {
		return fmt.Errorf("clear expense partner: %w", err)
	}
	return nil
}

const invitationColumns = `id, from_user_id, to_email, token, status, expires_at, created_at`

func scanInvitation(s scanner) (core.Invitation, error) {
	var (
		inv                  core.Invitation
		expiresAt, createdAt string
	)
	if err := s.Scan(&inv.ID, &inv.FromUserID, &inv.ToEmail, &inv.Token, &inv.Status, &expiresAt, &createdAt); err != nil {
		return core.Invitation{}, err
	}
	inv.ExpiresAt = parseTS(expiresAt)
	inv.CreatedAt = parseTS(createdAt)
	return inv, nil
}

func (q *Queries) CreateInvitation(ctx context.Context, inv core.Invitation) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO partner_invitations (`+invitationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.FromUserID, inv.ToEmail, inv.Token, inv.Status, ts(inv.ExpiresAt), ts(inv.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert invitation: %w", err)
	}
	return nil
}

func (q *Queries) GetInvitationByToken(ctx context.Context, token string) (core.Invitation, error) {
	inv, err := scanInvitation(q.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM partner_invitations WHERE token = ?`, token))
	if err != nil {
		return core.Invitation{}, notFound(err, "invitation")
	}
	return inv, nil
}

func (q *Queries) SetInvitationStatus(ctx context.Context, id string, status core.InvitationStatus) error {
	res, err := q.db.ExecContext(ctx, `UPDATE partner_invitations SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("update invitation: %w", err)
	}
	return requireAffected(res, "invitation")
}

// ListInvitations returns invitations sent by userID or addressed to email,
// newest first.
func (q *Queries) ListInvitations(ctx context.Context, userID, email string) ([]core.Invitation, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+invitationColumns+` FROM partner_invitations
		 WHERE from_user_id = ? OR to_email = ?
		 ORDER BY created_at DESC`, userID, email)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	defer rows.Close()
	var out []core.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invitation: %w", err)
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// HasPendingInvitation reports an unexpired pending invite between the pair.
func (q *Queries) HasPendingInvitation(ctx context.Context, fromUserID, toEmail string, now time.Time) (bool, error) {
	var n int
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM partner_invitations
		 WHERE from_user_id = ? AND to_email = ? AND status = 'pending' AND expires_at > ?`,
		fromUserID, toEmail, ts(now)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count pending invitations: %w", err)
	}
	return n > 0, nil
}

// ExpireInvitations marks overdue pending invitations expired.
func (q *Queries) ExpireInvitations(ctx context.Context, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE partner_invitations SET status = 'expired' WHERE status = 'pending' AND expires_at <= ?`, ts(now))
	if err != nil {
		return 0, fmt.Errorf("expire invitations: %w", err)
	}
	return res.RowsAffected()
}
