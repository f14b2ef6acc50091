// Package http exposes the analytics engine and the expense and category
// services as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"spendlens/internal/analytics"
	"spendlens/internal/core"
	"spendlens/internal/log"
	"spendlens/internal/middleware/ratelimit"
	"spendlens/internal/middleware/security"
	"spendlens/internal/middleware/trace"
	"spendlens/internal/services"
)

type (
	// AnalyticsReporter is satisfied by *analytics.Engine.
	AnalyticsReporter interface {
		Report(ctx context.Context, userID string, t analytics.ReportType, p analytics.Params) (any, error)
	}

	// ExpenseManager is satisfied by *services.ExpenseService.
	ExpenseManager interface {
		CreateExpense(ctx context.Context, e core.ExpenseRecord) (core.ExpenseRecord, error)
		RecentExpenses(ctx context.Context, userID string, year, month *int, limit int) ([]services.ExpenseView, error)
	}

	// CategoryManager is satisfied by *services.CategoryService.
	CategoryManager interface {
		ListCategories(ctx context.Context, userID string) ([]core.Category, error)
		CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	}

	// ReadinessChecker reports whether the Record Source is reachable.
	ReadinessChecker interface {
		Ping(ctx context.Context) error
	}
)

type Config struct {
	Addr            string
	DefaultUserID   string
	RateLimitPerMin int
}

// Deps are the collaborators behind the routes. Ready may be nil.
type Deps struct {
	Analytics  AnalyticsReporter
	Expenses   ExpenseManager
	Categories CategoryManager
	Ready      ReadinessChecker
	Logger     *log.Logger
}

type Server struct {
	http.Server
	analytics   AnalyticsReporter
	expenses    ExpenseManager
	categories  CategoryManager
	ready       ReadinessChecker
	defaultUser string
	limiter     *ratelimit.Limiter
	trace       *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(cfg Config, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.FromContext(context.Background()).WithComponent(log.ComponentHTTP)
	}

	detector := security.NewDetector()
	s := &Server{
		analytics:   deps.Analytics,
		expenses:    deps.Expenses,
		categories:  deps.Categories,
		ready:       deps.Ready,
		defaultUser: cfg.DefaultUserID,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: cfg.RateLimitPerMin,
			Methods:           []string{http.MethodPost},
		}),
		trace: trace.NewMiddleware(logger, detector.ClientIP),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /api/analytics", s.handleAnalytics)
	mux.HandleFunc("GET /api/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("GET /api/categories", s.handleListCategories)
	mux.HandleFunc("POST /api/categories", s.handleCreateCategory)

	var h http.Handler = mux
	h = s.limiter.Middleware(detector.ClientIP, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).Warn("Rate limit exceeded", log.FieldClientIP, detector.ClientIP(r))
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
	})(h)
	h = detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.trace.Middleware(h)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) user(r *http.Request) string {
	return userID(r, s.defaultUser)
}
