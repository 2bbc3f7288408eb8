package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"conti/internal/log"
	"conti/internal/metrics"
	"conti/internal/middleware/ratelimit"
	"conti/internal/middleware/security"
	"conti/internal/middleware/trace"
	"conti/internal/services"
)

// Services are the use cases the API exposes.
type Services struct {
	Auth           *services.AuthService
	Partners       *services.PartnerService
	Categories     *services.CategoryService
	Expenses       *services.ExpenseService
	Investments    *services.InvestmentService
	PaymentSources *services.PaymentSourceService
	Cards          *services.CreditCardService
	Analytics      *services.AnalyticsService
}

// Options configure the listener and the middleware chain.
type Options struct {
	Addr           string
	TrustedProxies []string
	RateLimit      ratelimit.Config
	Logger         *log.Logger
	// DB backs the readiness probe. Nil reports ready unconditionally.
	DB Pinger
}

type Server struct {
	http.Server
	mux      *http.ServeMux
	svc      Services
	db       Pinger
	limiter  *ratelimit.Limiter
	detector *security.Detector

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(opts Options, svc Services) *Server {
	mux := http.NewServeMux()

	s := &Server{
		mux:      mux,
		svc:      svc,
		db:       opts.DB,
		limiter:  ratelimit.NewLimiter(opts.RateLimit),
		detector: security.NewDetector(),
	}
	for _, p := range opts.TrustedProxies {
		if err := s.detector.AddTrustedProxy(p); err != nil {
			opts.logger().Warn("Ignoring trusted proxy", "proxy", p, "error", err)
		}
	}

	s.routes()

	var h http.Handler = mux
	h = s.detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = log.RequestIDMiddleware(func(r *http.Request) string { return trace.GetRequestID(r.Context()) })(h)
	h = log.Middleware(opts.logger().WithComponent(log.ComponentHTTP))(h)
	h = trace.NewMiddleware(s.detector.ExtractClientIP).Middleware(h)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.New(log.DefaultConfig())
}

func (s *Server) routes() {
	s.handle("GET /healthz", http.HandlerFunc(handleHealth))
	s.handle("GET /readyz", http.HandlerFunc(s.handleReady))
	s.handle("GET /metrics", metrics.Handler())

	s.api("POST /api/auth/signup", http.HandlerFunc(s.handleSignUp))
	s.api("POST /api/auth/signin", http.HandlerFunc(s.handleSignIn))
	s.api("POST /api/auth/signout", s.requireUser(s.handleSignOut))
	s.api("GET /api/me", s.requireUser(s.handleMe))

	s.api("GET /api/partner", s.requireUser(s.handleGetPartner))
	s.api("DELETE /api/partner", s.requireUser(s.handleUnlinkPartner))
	s.api("GET /api/partner/invitations", s.requireUser(s.handleListInvitations))
	s.api("POST /api/partner/invitations", s.requireUser(s.handleInvite))
	s.api("POST /api/partner/invitations/{token}/accept", s.requireUser(s.handleAcceptInvitation))
	s.api("POST /api/partner/invitations/{token}/reject", s.requireUser(s.handleRejectInvitation))

	s.api("GET /api/categories", s.requireUser(s.handleListCategories))
	s.api("POST /api/categories", s.requireUser(s.handleCreateCategory))
	s.api("PUT /api/categories/{id}", s.requireUser(s.handleUpdateCategory))
	s.api("DELETE /api/categories/{id}", s.requireUser(s.handleDeleteCategory))
	s.api("GET /api/subcategories", s.requireUser(s.handleListSubcategories))
	s.api("POST /api/subcategories", s.requireUser(s.handleCreateSubcategory))
	s.api("PUT /api/subcategories/{id}", s.requireUser(s.handleUpdateSubcategory))
	s.api("DELETE /api/subcategories/{id}", s.requireUser(s.handleDeleteSubcategory))

	s.api("GET /api/expenses", s.requireUser(s.handleListExpenses))
	s.api("POST /api/expenses", s.requireUser(s.handleCreateExpense))
	s.api("GET /api/expenses/{id}", s.requireUser(s.handleGetExpense))
	s.api("PUT /api/expenses/{id}", s.requireUser(s.handleUpdateExpense))
	s.api("DELETE /api/expenses/{id}", s.requireUser(s.handleDeleteExpense))

	s.api("GET /api/investment-types", s.requireUser(s.handleListInvestmentTypes))
	s.api("GET /api/investments", s.requireUser(s.handleListInvestments))
	s.api("POST /api/investments", s.requireUser(s.handleCreateInvestment))
	s.api("GET /api/investments/summary", s.requireUser(s.handleInvestmentSummary))
	s.api("PUT /api/investments/{id}", s.requireUser(s.handleUpdateInvestment))
	s.api("DELETE /api/investments/{id}", s.requireUser(s.handleDeleteInvestment))

	s.api("GET /api/payment-sources", s.requireUser(s.handleListPaymentSources))

	s.api("GET /api/credit-cards", s.requireUser(s.handleListCards))
	s.api("POST /api/credit-cards", s.requireUser(s.handleCreateCard))
	s.api("PUT /api/credit-cards/{id}", s.requireUser(s.handleUpdateCard))
	s.api("DELETE /api/credit-cards/{id}", s.requireUser(s.handleDeleteCard))
	s.api("GET /api/repayments", s.requireUser(s.handleListRepayments))
	s.api("POST /api/repayments", s.requireUser(s.handleAddRepayment))
	s.api("PUT /api/repayments/{id}", s.requireUser(s.handleUpdateRepayment))
	s.api("DELETE /api/repayments/{id}", s.requireUser(s.handleDeleteRepayment))

	s.api("GET /api/analytics", s.requireUser(s.handleAnalytics))
	s.api("GET /api/analytics/trends", s.requireUser(s.handleTrends))
}

// handle registers h and labels its metrics with pattern.
func (s *Server) handle(pattern string, h http.Handler) {
	s.mux.Handle(pattern, trace.Tag(pattern, h))
}

// api registers a rate-limited API route.
func (s *Server) api(pattern string, h http.Handler) {
	limit := s.limiter.Middleware(s.detector.ExtractClientIP, writeRateLimited)
	s.handle(pattern, limit(h))
}

func writeRateLimited(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		"method", r.Method,
		"path", r.URL.Path)
	body := ErrorBody{Error: "rate limit exceeded, retry later", RequestID: trace.GetRequestID(r.Context())}
	writeJSON(w, http.StatusTooManyRequests, body)
}

// Shutdown stops background routines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
