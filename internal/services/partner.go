package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"conti/internal/cache"
	"conti/internal/core"
	"conti/internal/storage"
)

const invitationTokenBytes = 32

// InviteResult carries the stored invitation and the sign-up link to share.
type InviteResult struct {
	Invitation core.Invitation `json:"invitation"`
	Link       string          `json:"link"`
}

// PartnerService resolves and mutates partner links. Active partnerships
// are cached per user; a nil entry records "not partnered".
type PartnerService struct {
	store         *storage.SQLiteRepository
	cache         cache.Cache[*core.Partner]
	invitationTTL time.Duration
	siteURL       string
	now           clock
}

func NewPartnerService(store *storage.SQLiteRepository, c cache.Cache[*core.Partner], invitationTTL time.Duration, siteURL string) *PartnerService {
	return &PartnerService{
		store:         store,
		cache:         c,
		invitationTTL: invitationTTL,
		siteURL:       siteURL,
		now:           utcNow,
	}
}

// ActivePartnership returns the user's active partnership or nil.
func (s *PartnerService) ActivePartnership(ctx context.Context, userID string) (*core.Partner, error) {
	if s.cache != nil {
		if p, ok := s.cache.Get(userID); ok {
			return p, nil
		}
	}
	p, err := s.store.GetActivePartnerForUser(ctx, userID)
	var found *core.Partner
	switch {
	case errors.Is(err, core.ErrNotFound):
	case err != nil:
		return nil, err
	default:
		found = &p
	}
	if s.cache != nil {
		s.cache.Set(userID, found)
	}
	return found, nil
}

// VisibleUserIDs is the user plus the active partner, if any.
func (s *PartnerService) VisibleUserIDs(ctx context.Context, userID string) ([]string, error) {
	p, err := s.ActivePartnership(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return []string{userID}, nil
	}
	return []string{userID, p.Other(userID)}, nil
}

// MemberIDs returns both sides of a partnership.
func MemberIDs(p core.Partner) []string {
	return p.Members()
}

func (s *PartnerService) Invite(ctx context.Context, user core.User, email string) (InviteResult, error) {
	email = core.NormalizeEmail(email)
	if !core.ValidEmail(email) {
		return InviteResult{}, &core.ValidationError{Problems: []string{"Invalid email address"}}
	}
	if email == core.NormalizeEmail(user.Email) {
		return InviteResult{}, &core.ValidationError{Problems: []string{"You cannot invite yourself"}}
	}

	p, err := s.ActivePartnership(ctx, user.ID)
	if err != nil {
		return InviteResult{}, err
	}
	if p != nil {
		return InviteResult{}, fmt.Errorf("already linked with a partner: %w", core.ErrConflict)
	}

	now := s.now()
	pending, err := s.store.HasPendingInvitation(ctx, user.ID, email, now)
	if err != nil {
		return InviteResult{}, err
	}
	if pending {
		return InviteResult{}, fmt.Errorf("an invitation to %s is already pending: %w", email, core.ErrConflict)
	}

	token, err := randomToken(invitationTokenBytes)
	if err != nil {
		return InviteResult{}, fmt.Errorf("generate invitation token: %w", err)
	}
	inv := core.Invitation{
		ID:         newID(),
		FromUserID: user.ID,
		ToEmail:    email,
		Token:      token,
		Status:     core.InvitationPending,
		ExpiresAt:  now.Add(s.invitationTTL),
		CreatedAt:  now,
	}
	if err := s.store.CreateInvitation(ctx, inv); err != nil {
		return InviteResult{}, err
	}

	slog.InfoContext(ctx, "Partner invitation created", "user_id", user.ID, "invitation_id", inv.ID)

	return InviteResult{Invitation: inv, Link: s.siteURL + "/signup?token=" + token}, nil
}

// AcceptInvitation links the inviter (user1) and user (user2).
func (s *PartnerService) AcceptInvitation(ctx context.Context, user core.User, token string) (core.Partner, error) {
	inv, err := s.store.GetInvitationByToken(ctx, token)
	if err != nil {
		return core.Partner{}, err
	}
	if inv.Status != core.InvitationPending {
		return core.Partner{}, fmt.Errorf("invitation is %s: %w", inv.Status, core.ErrConflict)
	}
	now := s.now()
	if inv.Expired(now) {
		if err := s.store.SetInvitationStatus(ctx, inv.ID, core.InvitationExpired); err != nil {
			slog.WarnContext(ctx, "Failed to mark invitation expired", "invitation_id", inv.ID, "error", err)
		}
		return core.Partner{}, fmt.Errorf("invitation has expired: %w", core.ErrConflict)
	}
	if inv.ToEmail != core.NormalizeEmail(user.Email) {
		return core.Partner{}, fmt.Errorf("invitation is addressed to another email: %w", core.ErrForbidden)
	}
	if inv.FromUserID == user.ID {
		return core.Partner{}, fmt.Errorf("cannot accept your own invitation: %w", core.ErrForbidden)
	}

	p := core.Partner{
		ID:          newID(),
		User1ID:     inv.FromUserID,
		User2ID:     user.ID,
		Status:      core.PartnerActive,
		InitiatedBy: inv.FromUserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err = s.store.InTx(ctx, func(q *storage.Queries) error {
		for _, id := range p.Members() {
			_, err := q.GetActivePartnerForUser(ctx, id)
			if err == nil {
				return fmt.Errorf("user already has a partner: %w", core.ErrConflict)
			}
			if !errors.Is(err, core.ErrNotFound) {
				return err
			}
		}
		if err := q.CreatePartner(ctx, p); err != nil {
			return err
		}
		for _, id := range p.Members() {
			if err := q.SetUserPartner(ctx, id, p.ID); err != nil {
				return err
			}
		}
		return q.SetInvitationStatus(ctx, inv.ID, core.InvitationAccepted)
	})
	if err != nil {
		return core.Partner{}, err
	}
	s.invalidate(p.Members()...)

	slog.InfoContext(ctx, "Partner linked", "partner_id", p.ID, "user_id", user.ID)
	return p, nil
}

func (s *PartnerService) RejectInvitation(ctx context.Context, user core.User, token string) error {
	inv, err := s.store.GetInvitationByToken(ctx, token)
	if err != nil {
		return err
	}
	if inv.ToEmail != core.NormalizeEmail(user.Email) {
		return fmt.Errorf("invitation is addressed to another email: %w", core.ErrForbidden)
	}
	if inv.Status != core.InvitationPending {
		return fmt.Errorf("invitation is %s: %w", inv.Status, core.ErrConflict)
	}
	return s.store.SetInvitationStatus(ctx, inv.ID, core.InvitationRejected)
}

// ListInvitations returns invitations the user sent or received.
func (s *PartnerService) ListInvitations(ctx context.Context, user core.User) ([]core.Invitation, error) {
	return s.store.ListInvitations(ctx, user.ID, core.NormalizeEmail(user.Email))
}

// Unlink removes the user's partnership. Expenses that pointed at it keep
// their shared flag but become private to their owner.
func (s *PartnerService) Unlink(ctx context.Context, userID string) error {
	p, err := s.ActivePartnership(ctx, userID)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("no active partnership: %w", core.ErrNotFound)
	}
	now := s.now()
	err = s.store.InTx(ctx, func(q *storage.Queries) error {
		if err := q.ClearPartnerReferences(ctx, p.ID, now); err != nil {
			return err
		}
		return q.DeletePartner(ctx, p.ID)
	})
	if err != nil {
		return err
	}
	s.invalidate(p.Members()...)

	slog.InfoContext(ctx, "Partner unlinked", "partner_id", p.ID, "user_id", userID)
	return nil
}

func (s *PartnerService) ExpireInvitations(ctx context.Context) (int64, error) {
	return s.store.ExpireInvitations(ctx, s.now())
}

func (s *PartnerService) invalidate(userIDs ...string) {
	if s.cache == nil {
		return
	}
	for _, id := range userIDs {
		s.cache.Delete(id)
	}
}
