package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/frankmaximo93/shared-financial-journey/internal/cache"
	"github.com/frankmaximo93/shared-financial-journey/internal/core"
	"github.com/frankmaximo93/shared-financial-journey/internal/datasource"
	"github.com/frankmaximo93/shared-financial-journey/internal/export"
	"github.com/frankmaximo93/shared-financial-journey/internal/ledger"
	"github.com/frankmaximo93/shared-financial-journey/internal/metrics"
	"github.com/frankmaximo93/shared-financial-journey/internal/middleware/ratelimit"
	"github.com/frankmaximo93/shared-financial-journey/internal/middleware/security"
	"github.com/frankmaximo93/shared-financial-journey/internal/middleware/trace"
	"github.com/frankmaximo93/shared-financial-journey/internal/participants"
	appweb "github.com/frankmaximo93/shared-financial-journey/web"
)

// Options configures the web server.
type Options struct {
	Addr     string
	Source   datasource.Backend
	Registry *participants.Registry
	UserID   string
	Exporter export.BillExporter // nil disables the export endpoint
}

// Server renders the HTMX UI over a single data backend.
type Server struct {
	http.Server
	templates *template.Template
	source    datasource.Backend
	bills     *ledger.BillsLedger
	txs       *ledger.TransactionsLedger
	linked    *ledger.LinkedAccounts
	registry  *participants.Registry
	exporter  export.BillExporter

	limiter    *ratelimit.Limiter
	detector   *security.Detector
	billsCache *cache.LRUCache[[]core.Bill]
	cacheMgr   *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server.
func NewServer(opts Options) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		source:     opts.Source,
		bills:      ledger.NewBillsLedger(opts.Source),
		txs:        ledger.NewTransactionsLedger(opts.Source, opts.Registry),
		linked:     ledger.NewLinkedAccounts(opts.Source, opts.UserID),
		registry:   opts.Registry,
		exporter:   opts.Exporter,
		limiter:    ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:   security.NewDetector(),
		billsCache: cache.NewLRUCache[[]core.Bill](24, 5*time.Minute),
		cacheMgr:   cache.NewManager(),
	}

	s.cacheMgr.Register(s.billsCache)
	s.cacheMgr.StartCleanup(10 * time.Minute)

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/", s.instrument("index", s.handleIndex))
	mux.HandleFunc("/ui/bills", s.instrument("bills_partial", s.handleBillsPartial))
	mux.HandleFunc("/bills", s.instrument("bill_create", s.handleBillCreate))
	mux.HandleFunc("/bills/status", s.instrument("bill_status", s.handleBillStatus))
	mux.HandleFunc("/ui/transactions", s.instrument("transactions_partial", s.handleTransactionsPartial))
	mux.HandleFunc("/ui/transactions/edit", s.instrument("transaction_edit", s.handleTransactionEditForm))
	mux.HandleFunc("/transactions/delete", s.instrument("transaction_delete", s.handleTransactionDelete))
	mux.HandleFunc("/transactions/update", s.instrument("transaction_update", s.handleTransactionUpdate))
	mux.HandleFunc("/ui/budget", s.instrument("budget_partial", s.handleBudgetPartial))
	mux.HandleFunc("/export", s.instrument("export", s.handleExport))
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.Handle("/metrics", metrics.Handler())

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(s.detector.ExtractClientIP)
	limited := s.limitMutations(mux)
	s.Handler = tracer.Middleware(headers.Middleware(s.flagProbes(limited)))

	return s
}

// flagProbes logs and counts requests matching probe patterns; they are not
// blocked, the rate limiter handles abusive volumes.
func (s *Server) flagProbes(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.IsSuspicious(r) {
			metrics.SuspiciousRequests.Inc()
			slog.WarnContext(r.Context(), "Suspicious request",
				"client_ip", s.detector.ExtractClientIP(r), "method", r.Method, "url", r.URL.String())
		}
		next.ServeHTTP(w, r)
	})
}

// limitMutations rate-limits writing methods; reads pass through.
func (s *Server) limitMutations(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			if !s.limiter.Allow(s.detector.ExtractClientIP(r)) {
				metrics.RateLimitRejections.Inc()
				slog.WarnContext(r.Context(), "Rate limit exceeded",
					"client_ip", s.detector.ExtractClientIP(r), "method", r.Method, "url", r.URL.Path)
				w.Header().Set("Retry-After", "60")
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// instrument records request latency per route.
func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next(w, r)
		metrics.RequestDuration.WithLabelValues(route, r.Method).
			Observe(time.Since(start).Seconds())
	}
}

// Shutdown stops the background cleanup goroutines and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheMgr.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady answers 503 until the backend serves a cheap read.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if _, err := s.source.ListCategories(ctx); err != nil {
		slog.WarnContext(r.Context(), "Readiness check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("backend unavailable"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	accounts, showBanner := s.linked.Load(r.Context())

	now := time.Now()
	a, b := s.registry.Members()
	joint := s.registry.Joint()
	data := struct {
		Year           int
		Month          int
		Accounts       []core.LinkedAccount
		ShowLinkBanner bool
		ParticipantA   participants.Participant
		ParticipantB   participants.Participant
		Joint          participants.Participant
		ExportEnabled  bool
	}{
		Year:           now.Year(),
		Month:          int(now.Month()),
		Accounts:       accounts,
		ShowLinkBanner: showBanner,
		ParticipantA:   a,
		ParticipantB:   b,
		Joint:          joint,
		ExportEnabled:  s.exporter != nil,
	}

	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
