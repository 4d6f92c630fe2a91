package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"zaad/internal/aggregate"
	"zaad/internal/cache"
	"zaad/internal/core"
	"zaad/internal/log"
	"zaad/internal/middleware/ratelimit"
	"zaad/internal/middleware/security"
	"zaad/internal/middleware/trace"
	appweb "zaad/web"
)

// RecordService is the write and lookup side used by the API handlers.
type RecordService interface {
	ListRecords(ctx context.Context, f core.Filter, p core.Page) (core.Paged, error)
	GetRecord(ctx context.Context, id string) (core.Record, error)
	CreateRecord(ctx context.Context, r core.Record) (core.Record, error)
	UpdateRecord(ctx context.Context, r core.Record) (core.Record, error)
	DeleteRecord(ctx context.Context, id string) error

	ListEntities(ctx context.Context, kind core.CounterpartyKind, includeUnpublished bool) ([]core.Entity, error)
	GetEntity(ctx context.Context, id string) (core.Entity, error)
	CreateEntity(ctx context.Context, e core.Entity) (core.Entity, error)
	DeleteEntity(ctx context.Context, id string) error
}

// SummaryService computes dashboard reports. A zero ref means now.
type SummaryService interface {
	Location() *time.Location
	Report(ctx context.Context, ref time.Time) (aggregate.Report, error)
	Window(ctx context.Context, wt aggregate.WindowType, ref time.Time) (aggregate.Window, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Options carries the optional collaborators of a Server.
type Options struct {
	Logger *log.Logger
	// Store is pinged by /readyz when set.
	Store              Pinger
	RateLimitPerMinute int
	// BlockSuspicious rejects probing requests instead of only logging them.
	BlockSuspicious bool
	// CacheStats reports the entity cache on /metrics when set.
	CacheStats func() cache.Stats
}

type appMetrics struct {
	uptime         time.Time
	recordsCreated atomic.Int64
	recordsUpdated atomic.Int64
	recordsDeleted atomic.Int64
	entityWrites   atomic.Int64
	summaries      atomic.Int64
}

type Server struct {
	http.Server
	templates *template.Template
	records   RecordService
	summary   SummaryService
	store     Pinger
	logger    *log.Logger

	detector   *security.Detector
	limiter    *ratelimit.Limiter
	tracer     *trace.Middleware
	cacheStats func() cache.Stats
	appMetrics *appMetrics

	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server.
func NewServer(addr string, records RecordService, summary SummaryService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		records:    records,
		summary:    summary,
		store:      opts.Store,
		logger:     logger,
		cacheStats: opts.CacheStats,
		appMetrics: &appMetrics{uptime: time.Now()},
	}
	s.detector = security.NewDetector(logger, opts.BlockSuspicious)
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)
	s.limiter = ratelimit.NewLimiter(ratelimit.Config{
		RequestsPerMinute: opts.RateLimitPerMinute,
		Methods:           []string{http.MethodPost, http.MethodPut, http.MethodDelete},
	})

	t, err := template.New("").Funcs(templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates",
			log.FieldError, err,
			log.FieldComponent, log.ComponentTemplate)
	} else {
		s.templates = t
	}

	mux := http.NewServeMux()
	s.routes(mux)

	var h http.Handler = mux
	h = s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimit)(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.detector.Middleware(h)
	h = s.tracer.Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /ui/summary", s.handleSummaryPartial)

	api := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, security.NoStore(h))
	}
	api("GET /api/summary", s.handleSummary)
	api("GET /api/summary.xlsx", s.handleSummaryXLSX)
	api("GET /api/balances", s.handleBalances)
	api("GET /api/methods", s.handleMethods)
	api("GET /api/liabilities", s.handleLiabilities)
	api("GET /api/windows/{window}", s.handleWindow)

	api("GET /api/records", s.handleListRecords)
	api("POST /api/records", s.handleCreateRecord)
	api("GET /api/records/{id}", s.handleGetRecord)
	api("PUT /api/records/{id}", s.handleUpdateRecord)
	api("DELETE /api/records/{id}", s.handleDeleteRecord)

	api("GET /api/companies", s.handleListEntities(core.KindCompany))
	api("POST /api/companies", s.handleCreateEntity(core.KindCompany))
	api("GET /api/employees", s.handleListEntities(core.KindEmployee))
	api("POST /api/employees", s.handleCreateEntity(core.KindEmployee))
	api("DELETE /api/entities/{id}", s.handleDeleteEntity)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldMethod, r.Method,
		log.FieldPath, r.URL.Path)
	if isHTMX(r) {
		ErrorResponse(http.StatusTooManyRequests, "Too many requests, try again shortly").Write(w)
		return
	}
	JSONResponse(http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"}).Write(w)
}

// Shutdown stops background goroutines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	JSONResponse(http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).Round(time.Second).String(),
	}).Write(w)
}

// handleReady checks templates and the record store.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	code := http.StatusOK
	checks := map[string]string{}

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	switch {
	case s.store == nil:
		checks["store"] = "not_configured"
	default:
		if err := s.store.Ping(ctx); err != nil {
			checks["store"] = fmt.Sprintf("failed: %v", err)
			status, code = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["store"] = "ok"
		}
	}

	JSONResponse(code, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	tm := s.tracer.GetMetrics()
	rl := s.limiter.GetMetrics()
	sec := s.detector.GetMetrics()
	m := s.appMetrics

	metric := func(name, help, kind string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n%s %v\n\n", name, help, name, kind, name, value)
	}
	metric("http_requests_total", "Total number of HTTP requests", "counter", tm.TotalRequests)
	metric("http_client_errors_total", "Responses with a 4xx status", "counter", tm.ClientErrors)
	metric("http_server_errors_total", "Responses with a 5xx status", "counter", tm.ServerErrors)
	metric("http_response_time_avg_microseconds", "Mean response time", "gauge", tm.AverageResponseTime)
	metric("records_created_total", "Records created through the API", "counter", m.recordsCreated.Load())
	metric("records_updated_total", "Records updated through the API", "counter", m.recordsUpdated.Load())
	metric("records_deleted_total", "Records deleted through the API", "counter", m.recordsDeleted.Load())
	metric("entity_writes_total", "Company and employee writes", "counter", m.entityWrites.Load())
	metric("summaries_computed_total", "Summary reports computed", "counter", m.summaries.Load())
	if s.cacheStats != nil {
		cs := s.cacheStats()
		metric("entity_cache_entries", "Entity lists held in the cache", "gauge", cs.Size)
		metric("entity_cache_hits_total", "Entity cache hits", "counter", cs.Hits)
		metric("entity_cache_misses_total", "Entity cache misses", "counter", cs.Misses)
	}
	metric("rate_limit_hits_total", "Requests rejected by the rate limiter", "counter", rl.TotalHits)
	metric("active_rate_limit_clients", "Clients tracked by the rate limiter", "gauge", rl.ClientCount)
	metric("suspicious_requests_total", "Requests flagged as probing", "counter", sec.SuspiciousRequests)
	metric("uptime_seconds", "Application uptime in seconds", "gauge", int64(time.Since(m.uptime).Seconds()))
}
