package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"conti/internal/amqp"
	"conti/internal/cache"
	"conti/internal/core"
	"conti/internal/storage"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []*amqp.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev *amqp.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []amqp.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []amqp.EventType
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type testApp struct {
	store      *storage.SQLiteRepository
	events     *recordingPublisher
	auth       *AuthService
	partners   *PartnerService
	categories *CategoryService
	expenses   *ExpenseService
	cards      *CreditCardService
	invest     *InvestmentService
	sources    *PaymentSourceService
	analytics  *AnalyticsService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	store, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "conti.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	events := &recordingPublisher{}
	partners := NewPartnerService(store, cache.NewLRUCache[*core.Partner](100, time.Minute), 7*24*time.Hour, "http://localhost:8081")
	categories := NewCategoryService(store, partners)
	sources := NewPaymentSourceService(store, cache.NewLRUCache[[]core.PaymentSource](1, time.Minute))
	return &testApp{
		store:      store,
		events:     events,
		auth:       NewAuthService(store, partners, time.Hour, bcrypt.MinCost),
		partners:   partners,
		categories: categories,
		expenses:   NewExpenseService(store, partners, categories, events),
		cards:      NewCreditCardService(store, events),
		invest:     NewInvestmentService(store),
		sources:    sources,
		analytics:  NewAnalyticsService(store, partners, sources),
	}
}

func (a *testApp) signUp(t *testing.T, email, name string) core.User {
	t.Helper()
	u, err := a.auth.SignUp(context.Background(), SignUpInput{Email: email, Password: "password123", FullName: name})
	require.NoError(t, err)
	return u
}

// link makes a and b partners through the invitation flow.
func (a *testApp) link(t *testing.T, inviter, invitee core.User) core.Partner {
	t.Helper()
	ctx := context.Background()
	res, err := a.partners.Invite(ctx, inviter, invitee.Email)
	require.NoError(t, err)
	p, err := a.partners.AcceptInvitation(ctx, invitee, res.Invitation.Token)
	require.NoError(t, err)
	return p
}

func cents(c int64) *core.Money {
	m := core.Cents(c)
	return &m
}

func expenseInput(c int64, date string) core.ExpenseInput {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.ExpenseInput{Amount: core.Cents(c), CategoryID: "cat-food", Date: d}
}
