package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"monev/internal/cache"
	"monev/internal/core"
	"monev/internal/dashboard"
	"monev/internal/log"
	"monev/internal/middleware/ratelimit"
	"monev/internal/middleware/security"
	"monev/internal/middleware/trace"
	appweb "monev/web"
)

// dashboardTimeout bounds every dashboard and partial read.
const dashboardTimeout = 7 * time.Second

// MonitoringService is what the handlers need from the service layer.
// services.MonitoringService satisfies it.
type MonitoringService interface {
	Ping(ctx context.Context) error
	Snapshot(ctx context.Context) (core.Snapshot, error)

	ListBudgets(ctx context.Context) ([]core.Budget, error)
	CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	DeleteBudget(ctx context.Context, id int64) (core.Budget, error)

	ListActions(ctx context.Context) ([]core.ConvergenceAction, error)
	CreateAction(ctx context.Context, a core.ConvergenceAction) (core.ConvergenceAction, error)
	DeleteAction(ctx context.Context, id int64) (core.ConvergenceAction, error)

	ListAvailability(ctx context.Context) ([]core.ResourceAvailability, error)
	CreateAvailability(ctx context.Context, r core.ResourceAvailability) (core.ResourceAvailability, error)
	DeleteAvailability(ctx context.Context, id int64) (core.ResourceAvailability, error)

	ListControls(ctx context.Context) ([]core.ControlElement, error)
	GetControl(ctx context.Context, id int64) (core.ControlElement, error)
	CreateControl(ctx context.Context, c core.ControlElement) (core.ControlElement, error)
	UpdateControl(ctx context.Context, c core.ControlElement) (core.ControlElement, error)
	DeleteControl(ctx context.Context, id int64) (core.ControlElement, error)
}

// Server wraps http.Server with the dashboard's handlers and middleware.
type Server struct {
	http.Server

	svc        MonitoringService
	templates  *template.Template
	cacheStats func() cache.Stats

	logger           *log.Logger
	structured       *log.StructuredLogger
	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware
	headers          *security.HeadersMiddleware
	appMetrics       *appMetrics

	shutdownOnce sync.Once
}

// mutationCounters counts committed mutations of one resource.
type mutationCounters struct {
	created atomic.Int64
	updated atomic.Int64
	deleted atomic.Int64
}

type appMetrics struct {
	uptime    time.Time
	mutations map[string]*mutationCounters
}

func newAppMetrics() *appMetrics {
	m := &appMetrics{uptime: time.Now(), mutations: make(map[string]*mutationCounters, len(core.Resources))}
	for _, r := range core.Resources {
		m.mutations[r] = &mutationCounters{}
	}
	return m
}

func (m *appMetrics) record(resource, action string) {
	c, ok := m.mutations[resource]
	if !ok {
		return
	}
	switch action {
	case "created":
		c.created.Add(1)
	case "updated":
		c.updated.Add(1)
	case "deleted":
		c.deleted.Add(1)
	}
}

type serverOptions struct {
	logger         *log.Logger
	rateLimit      ratelimit.Config
	cacheStats     func() cache.Stats
	trustedProxies []string
}

// Option configures NewServer.
type Option func(*serverOptions)

func WithLogger(l *log.Logger) Option {
	return func(o *serverOptions) { o.logger = l }
}

// WithRateLimit sets how many mutating requests a client may send per minute.
func WithRateLimit(perMinute int) Option {
	return func(o *serverOptions) { o.rateLimit.RequestsPerMinute = perMinute }
}

// WithCacheStats exposes snapshot cache statistics on /metrics.
func WithCacheStats(fn func() cache.Stats) Option {
	return func(o *serverOptions) { o.cacheStats = fn }
}

// WithTrustedProxies adds CIDRs whose forwarding headers are honoured.
func WithTrustedProxies(cidrs ...string) Option {
	return func(o *serverOptions) { o.trustedProxies = append(o.trustedProxies, cidrs...) }
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, svc MonitoringService, opts ...Option) *Server {
	o := serverOptions{rateLimit: ratelimit.DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(log.DefaultConfig())
	}

	s := &Server{
		svc:              svc,
		cacheStats:       o.cacheStats,
		logger:           o.logger,
		structured:       log.NewStructuredLogger(o.logger),
		rateLimiter:      ratelimit.NewLimiter(o.rateLimit),
		securityDetector: security.NewDetector(),
		headers:          security.NewHeadersMiddleware(security.DefaultHeadersConfig()),
		appMetrics:       newAppMetrics(),
	}
	for _, cidr := range o.trustedProxies {
		if err := s.securityDetector.AddTrustedProxy(cidr); err != nil {
			o.logger.Warn("Ignoring invalid trusted proxy", "cidr", cidr, "error", err)
		}
	}
	s.traceMiddleware = trace.NewMiddleware(s.securityDetector.ExtractClientIP, s.structured)

	// Parse embedded templates at startup.
	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		o.logger.Warn("Failed parsing templates", "error", err)
		t = nil
	}
	s.templates = t

	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		o.logger.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	api := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, log.ComponentMiddleware(log.ComponentMonitor)(h))
	}
	api("/api/budget", s.handleBudgets)
	api("/api/budget/{id}", s.handleBudget)
	api("/api/aksiKonvergensi", s.handleActions)
	api("/api/aksiKonvergensi/{id}", s.handleAction)
	api("/api/ketersediaan", s.handleAvailabilities)
	api("/api/ketersediaan/{id}", s.handleAvailability)
	api("/api/spi", s.handleControls)
	api("/api/spi/{id}", s.handleControl)
	api("/api/charts/budget", s.handleBudgetChartJSON)
	api("/api/charts/aksi", s.handleActionChartJSON)

	ui := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, log.ComponentMiddleware(log.ComponentDashboard)(h))
	}
	ui("/{$}", s.handleIndex)
	ui("/ui/{segment}/table", s.handleTable)
	ui("/ui/{segment}/chart", s.handleChart)
	ui("/ui/budget/options", s.handleBudgetOptions)
	ui("/ui/spi/{id}/edit", s.handleControlEdit)

	var handler http.Handler = mux
	handler = log.RequestIDMiddleware(trace.RequestID)(handler)
	handler = log.Middleware(o.logger)(handler)
	handler = s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, s.writeRateLimited)(handler)
	handler = s.securityDetector.Middleware(s.securityDetector.ExtractClientIP)(handler)
	handler = s.headers.Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter cleanup and gracefully shuts the server down.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) writeRateLimited(w http.ResponseWriter, r *http.Request) {
	const msg = "Terlalu banyak permintaan. Coba lagi nanti."
	if isHTMX(r) {
		ErrorResponse(http.StatusTooManyRequests, msg).Write(w)
		return
	}
	writeAPIError(w, http.StatusTooManyRequests, "rate_limited", msg)
}

// uiSegments maps resources to their /ui path segment and back.
var uiSegments = map[string]string{
	core.ResourceBudget:       "budget",
	core.ResourceAction:       "aksi",
	core.ResourceKetersediaan: "ketersediaan",
	core.ResourceControl:      "spi",
}

var templateFuncs = template.FuncMap{
	"segment":           func(resource string) string { return uiSegments[resource] },
	"actionLabels":      func() []string { return core.ActionLabels },
	"resourceKinds":     func() []string { return core.ResourceKinds },
	"controlUnsur":      func() []string { return core.ControlUnsur },
	"budgetPlaceholder": func() string { return dashboard.BudgetSelectPlaceholder },
	"inc":               func(n int) int { return n + 1 },
}

// render executes a named template, logging failures with request context.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", "template", name)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		s.structured.LogError(r.Context(), "Template execution failed", err, log.ComponentTemplate, log.OpRender,
			log.NewFields().WithErrorType(log.ErrorTypeInternal))
	}
}

// mutated records a committed mutation for metrics and the audit log.
func (s *Server) mutated(ctx context.Context, resource, action string, id, budgetID int64) {
	s.appMetrics.record(resource, action)
	operation := map[string]string{"created": log.OpCreate, "updated": log.OpUpdate, "deleted": log.OpDelete}[action]
	s.structured.LogMutation(ctx, operation, resource, id, budgetID)
}

// logRequestError logs failures the client sees as 5xx. Client errors are
// already visible in the access log.
func (s *Server) logRequestError(r *http.Request, op string, err error) {
	status, code, _ := classify(err)
	if status < http.StatusInternalServerError {
		log.FromContext(r.Context()).DebugContext(r.Context(), "Request rejected", "operation", op, "error", err)
		return
	}
	s.structured.LogError(r.Context(), "Request failed", err, log.ComponentHTTP, op,
		log.NewFields().WithErrorType(code))
}
