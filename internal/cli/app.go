package cli

import (
	"time"

	"conti/internal/cache"
	"conti/internal/config"
	"conti/internal/core"
	apphttp "conti/internal/http"
	"conti/internal/services"
	"conti/internal/storage"
)

const partnerCacheSize = 1000

// App is the wired service graph of one process.
type App struct {
	Services apphttp.Services
	caches   *cache.Manager
}

// NewApp wires every service over store. events may be nil, which
// disables event publishing.
func NewApp(cfg *config.Config, store *storage.SQLiteRepository, events services.EventPublisher) *App {
	partnerCache := cache.NewLRUCache[*core.Partner](partnerCacheSize, cfg.CacheTTL)
	sourceCache := cache.NewLRUCache[[]core.PaymentSource](1, cfg.CacheTTL)

	caches := cache.NewManager()
	caches.Register(partnerCache)
	caches.Register(sourceCache)
	caches.StartCleanup(cleanupInterval(cfg.CacheTTL))

	partners := services.NewPartnerService(store, partnerCache, cfg.InvitationTTL, cfg.SiteURL)
	categories := services.NewCategoryService(store, partners)
	sources := services.NewPaymentSourceService(store, sourceCache)

	return &App{
		Services: apphttp.Services{
			Auth:           services.NewAuthService(store, partners, cfg.SessionTTL, cfg.BcryptCost),
			Partners:       partners,
			Categories:     categories,
			Expenses:       services.NewExpenseService(store, partners, categories, events),
			Investments:    services.NewInvestmentService(store),
			PaymentSources: sources,
			Cards:          services.NewCreditCardService(store, events),
			Analytics:      services.NewAnalyticsService(store, partners, sources),
		},
		caches: caches,
	}
}

// Close stops background cache cleanup.
func (a *App) Close() {
	a.caches.Stop()
}

func cleanupInterval(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return time.Minute
	}
	return ttl * 2
}
