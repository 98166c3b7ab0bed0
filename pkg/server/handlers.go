package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/arenalytics/statsgate/pkg/memo"
	"github.com/arenalytics/statsgate/pkg/query"
)

// handleHeroStats serves per-hero win/loss aggregates.
func (s *Server) handleHeroStats(w http.ResponseWriter, r *http.Request) {
	f, err := parseStatsFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondRows(w, r, s.heroStats, heroStatsQuery(f))
}

// handleItemStats serves per-item aggregates, optionally restricted to one
// hero and floored at a minimum match count.
func (s *Server) handleItemStats(w http.ResponseWriter, r *http.Request) {
	f, err := parseItemFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondRows(w, r, s.itemStats, itemStatsQuery(f))
}

// handleBadgeDistribution serves the rank histogram.
func (s *Server) handleBadgeDistribution(w http.ResponseWriter, r *http.Request) {
	f, err := parseStatsFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respondRows(w, r, s.badges, badgeDistributionQuery(f))
}

// respondRows serves a canonical query through the result cache. Identical
// query texts share one upstream execution and one cached result for the
// class TTL.
func (s *Server) respondRows(w http.ResponseWriter, r *http.Request, cache *memo.Cache[[]query.Row], text string) {
	rows, err := cache.GetOrCompute(r.Context(), text, s.analyticsClass().ResultTTL, func(ctx context.Context) ([]query.Row, error) {
		return s.executor.Execute(ctx, text)
	})
	if err != nil {
		if r.Context().Err() != nil {
			// Caller went away. The shared computation keeps running for
			// the remaining waiters.
			return
		}
		s.logger.Error().
			Err(err).
			Str("fingerprint", query.Fingerprint(text)).
			Msg("query execution failed")
		writeError(w, http.StatusInternalServerError, "query execution failed")
		return
	}

	if rows == nil {
		rows = []query.Row{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// handleHealth reports liveness. Never cached, so probes always hit the
// process.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRobots declines all crawlers.
func handleRobots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, "User-agent: *\nDisallow: /\n")
}

// handleNotFound renders unmatched requests in the gateway's JSON error
// shape instead of the stock plain-text page.
func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not found")
}
