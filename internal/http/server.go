// Package http serves the JSON API and the HTML dashboard on top of the
// ledger service.
package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
	applog "expensetracker/internal/log"
	"expensetracker/internal/middleware/ratelimit"
	"expensetracker/internal/middleware/security"
	"expensetracker/internal/middleware/trace"
	appweb "expensetracker/web"
)

// Ledger is the subset of ledger.Service the handlers call.
type Ledger interface {
	AddTransaction(ctx context.Context, t core.NewTransaction) (int64, error)
	ListTransactions(ctx context.Context, f ledger.ListFilter) ([]core.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) (bool, error)
	GetBalance(ctx context.Context) (core.Balance, error)
	GetCategories(ctx context.Context, t core.TransactionType) ([]string, error)
	GetAllCategories(ctx context.Context) (core.CategoriesByType, error)
	GetExpenseBreakdown(ctx context.Context) ([]core.CategoryAmount, error)
	Dashboard(ctx context.Context) (ledger.Dashboard, error)
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures optional server behavior. Zero values are usable.
type Options struct {
	Logger             *applog.Logger
	RateLimitPerMinute int
	// Ready backs /readyz. Nil means always ready.
	Ready Pinger
}

type Server struct {
	http.Server
	ledger    Ledger
	ready     Pinger
	logger    *applog.Logger
	templates *template.Template
	limiter   *ratelimit.Limiter
	tracer    *trace.Middleware
}

// NewServer wires routes and middleware. The returned server owns a rate
// limiter goroutine; call Shutdown to release it.
func NewServer(addr string, l Ledger, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}

	s := &Server{
		ledger:    l,
		ready:     opts.Ready,
		logger:    logger.WithComponent(applog.ComponentHTTP),
		templates: template.Must(template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")),
		limiter:   ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
	}

	ips := security.NewIPResolver()
	s.tracer = trace.NewMiddleware(logger, ips.ClientIP)

	mux := http.NewServeMux()

	staticFS, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		panic(err)
	}
	mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(
		http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))))

	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("GET /api/balance", s.handleBalance)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/expense-breakdown", s.handleExpenseBreakdown)

	limited := s.limiter.Middleware(ips.ClientIP, s.handleRateLimited, http.MethodPost, http.MethodDelete)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	var handler http.Handler = mux
	handler = limited(handler)
	handler = headers.Middleware(handler)
	handler = applog.Middleware(logger, trace.GetRequestID)(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown drains in-flight requests, then stops the rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.Server.Shutdown(ctx)
	s.limiter.Stop()
	return err
}

// Metrics returns request counters collected by the trace middleware.
func (s *Server) Metrics() trace.Metrics {
	return s.tracer.GetMetrics()
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).
		WarnContext(r.Context(), "Rate limit exceeded", applog.FieldMethod, r.Method, applog.FieldPath, r.URL.Path)
	TooManyRequestsError().Write(w)
}
