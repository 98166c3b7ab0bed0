// Package server assembles the gateway's HTTP surface: request tracking,
// load shedding, cache header composition and quota admission around thin
// analytics handlers.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/arenalytics/statsgate/pkg/config"
	"github.com/arenalytics/statsgate/pkg/logging"
	"github.com/arenalytics/statsgate/pkg/memo"
	"github.com/arenalytics/statsgate/pkg/query"
	"github.com/arenalytics/statsgate/pkg/ratelimit"
)

// Server wires the admission, reuse and freshness layers around the
// analytics handlers. Construct with New, expose with Handler.
type Server struct {
	cfg      *config.Config
	logger   zerolog.Logger
	limiter  *ratelimit.Limiter
	executor query.Executor

	heroStats *memo.Cache[[]query.Row]
	itemStats *memo.Cache[[]query.Row]
	badges    *memo.Cache[[]query.Row]
}

// New creates a Server. The store backs admission counting; the executor
// is the event store the handlers query.
func New(cfg *config.Config, store ratelimit.Store, executor query.Executor) *Server {
	return &Server{
		cfg:       cfg,
		logger:    logging.NewLogger("server"),
		limiter:   ratelimit.NewLimiter(store, logging.NewLogger("ratelimit")),
		executor:  executor,
		heroStats: memo.New[[]query.Row]("hero_stats"),
		itemStats: memo.New[[]query.Row]("item_stats"),
		badges:    memo.New[[]query.Row]("badge_distribution"),
	}
}

// Handler returns the gateway's HTTP handler with the full middleware
// chain applied.
func (s *Server) Handler() http.Handler {
	analytics := s.analyticsClass()

	mux := http.NewServeMux()
	mux.Handle("GET /v1/analytics/hero-stats", s.analyticsRoute(analytics, http.HandlerFunc(s.handleHeroStats)))
	mux.Handle("GET /v1/analytics/item-stats", s.analyticsRoute(analytics, http.HandlerFunc(s.handleItemStats)))
	mux.Handle("GET /v1/analytics/badge-distribution", s.analyticsRoute(analytics, http.HandlerFunc(s.handleBadgeDistribution)))

	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /robots.txt", handleRobots)
	if s.cfg.InternalAPIKey != "" {
		mux.Handle("GET /metrics", s.requireInternalKey(promhttp.Handler()))
	}
	mux.HandleFunc("/", handleNotFound)

	var h http.Handler = mux
	h = s.cfg.DefaultCache.Directive().Wrap(h)
	h = maxInflight(s.cfg.Server.MaxInflight, h)
	h = trackRequests(s.logger, h)
	return h
}

// analyticsRoute applies the class's cache directive and admission check
// to one handler. The route directive is nested inside the gateway default
// and therefore takes precedence.
func (s *Server) analyticsRoute(class config.ClassConfig, h http.Handler) http.Handler {
	h = s.requireQuota("analytics", class.QuotaSet(), h)
	return class.Cache.Directive().Wrap(h)
}

// analyticsClass returns the analytics class configuration. A missing
// class yields the zero value: no quotas and no result reuse.
func (s *Server) analyticsClass() config.ClassConfig {
	return s.cfg.Classes["analytics"]
}

// StartSweepers launches the background expiry sweeps for the result
// caches. They stop when ctx is cancelled.
func (s *Server) StartSweepers(ctx context.Context, interval time.Duration) {
	s.heroStats.StartSweeper(ctx, interval)
	s.itemStats.StartSweeper(ctx, interval)
	s.badges.StartSweeper(ctx, interval)
}
