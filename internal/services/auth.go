package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"conti/internal/core"
	"conti/internal/storage"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt input limit
	sessionTokenBytes = 32
)

type SignUpInput struct {
	Email       string
	Password    string
	FullName    string
	InviteToken string
}

// Session is returned on sign in. Token is only ever known to the client;
// the database keeps its sha256.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

var errBadCredentials = fmt.Errorf("invalid email or password: %w", core.ErrUnauthorized)

// AuthService manages accounts and bearer sessions.
type AuthService struct {
	store      *storage.SQLiteRepository
	partners   *PartnerService
	sessionTTL time.Duration
	bcryptCost int
	now        clock
}

func NewAuthService(store *storage.SQLiteRepository, partners *PartnerService, sessionTTL time.Duration, bcryptCost int) *AuthService {
	return &AuthService{
		store:      store,
		partners:   partners,
		sessionTTL: sessionTTL,
		bcryptCost: bcryptCost,
		now:        utcNow,
	}
}

// SignUp creates an account. When InviteToken is set the new user also
// accepts that partner invitation; a failed acceptance is logged and does
// not undo the sign up.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (core.User, error) {
	email := core.NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.FullName)

	var problems []string
	if !core.ValidEmail(email) {
		problems = append(problems, "Invalid email address")
	}
	if len(in.Password) < minPasswordLength {
		problems = append(problems, fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	} else if len(in.Password) > maxPasswordLength {
		problems = append(problems, fmt.Sprintf("Password must be at most %d bytes", maxPasswordLength))
	}
	if name == "" {
		problems = append(problems, "Full name is required")
	}
	if len(problems) > 0 {
		return core.User{}, &core.ValidationError{Problems: problems}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := core.User{
		ID:           newID(),
		Email:        email,
		FullName:     name,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return core.User{}, err
	}

	slog.InfoContext(ctx, "User signed up", "user_id", user.ID)

	if in.InviteToken != "" && s.partners != nil {
		p, err := s.partners.AcceptInvitation(ctx, user, in.InviteToken)
		if err != nil {
			slog.WarnContext(ctx, "Invitation not accepted during sign up", "user_id", user.ID, "error", err)
		} else {
			user.PartnerID = p.ID
		}
	}

	return user, nil
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (Session, error) {
	user, err := s.store.GetUserByEmail(ctx, core.NormalizeEmail(email))
	if errors.Is(err, core.ErrNotFound) {
		return Session{}, errBadCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Session{}, errBadCredentials
	}

	token, err := randomToken(sessionTokenBytes)
	if err != nil {
		return Session{}, fmt.Errorf("generate session token: %w", err)
	}
	now := s.now()
	sess := Session{Token: token, UserID: user.ID, ExpiresAt: now.Add(s.sessionTTL)}
	if err := s.store.CreateSession(ctx, hashToken(token), user.ID, sess.ExpiresAt, now); err != nil {
		return Session{}, err
	}

	slog.InfoContext(ctx, "User signed in", "user_id", user.ID)
	return sess, nil
}

func (s *AuthService) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.store.DeleteSession(ctx, hashToken(token))
}

// Authenticate resolves a bearer token to its user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (core.User, error) {
	if token == "" {
		return core.User{}, fmt.Errorf("missing session token: %w", core.ErrUnauthorized)
	}
	hash := hashToken(token)
	userID, expiresAt, err := s.store.GetSession(ctx, hash)
	if errors.Is(err, core.ErrNotFound) {
		return core.User{}, fmt.Errorf("unknown session: %w", core.ErrUnauthorized)
	}
	if err != nil {
		return core.User{}, err
	}
	if !s.now().Before(expiresAt) {
		if err := s.store.DeleteSession(ctx, hash); err != nil {
			slog.WarnContext(ctx, "Failed to delete expired session", "error", err)
		}
		return core.User{}, fmt.Errorf("session expired: %w", core.ErrUnauthorized)
	}
	user, err := s.store.GetUser(ctx, userID)
	if errors.Is(err, core.ErrNotFound) {
		return core.User{}, fmt.Errorf("session user gone: %w", core.ErrUnauthorized)
	}
	return user, err
}

func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.store.DeleteExpiredSessions(ctx, s.now())
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
