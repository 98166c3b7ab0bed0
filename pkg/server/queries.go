package server

import (
	"strconv"
	"strings"
)

// Canonical query texts double as result cache keys, so equal filters must
// always produce byte-identical SQL. Clauses are emitted in a fixed order
// and every value is a formatted integer.

func heroStatsQuery(f statsFilter) string {
	var b strings.Builder
	b.WriteString("SELECT hero_id, COUNT(*) AS matches, SUM(won) AS wins FROM match_players")
	writeWhere(&b, f, "")
	b.WriteString(" GROUP BY hero_id ORDER BY hero_id")
	return b.String()
}

func itemStatsQuery(f itemFilter) string {
	var b strings.Builder
	b.WriteString("SELECT item_id, COUNT(*) AS matches, SUM(won) AS wins FROM match_items")

	extra := ""
	if f.heroID != nil {
		extra = "hero_id = " + strconv.FormatInt(*f.heroID, 10)
	}
	writeWhere(&b, f.statsFilter, extra)

	b.WriteString(" GROUP BY item_id")
	if f.minMatches != nil {
		b.WriteString(" HAVING COUNT(*) >= ")
		b.WriteString(strconv.FormatInt(*f.minMatches, 10))
	}
	b.WriteString(" ORDER BY item_id")
	return b.String()
}

func badgeDistributionQuery(f statsFilter) string {
	var b strings.Builder
	b.WriteString("SELECT avg_badge AS badge, COUNT(DISTINCT match_id) AS matches FROM match_players")
	writeWhere(&b, f, "")
	b.WriteString(" GROUP BY avg_badge ORDER BY avg_badge")
	return b.String()
}

// writeWhere appends the WHERE clause for f, with clauses in declaration
// order and an optional endpoint-specific extra clause last.
func writeWhere(b *strings.Builder, f statsFilter, extra string) {
	var clauses []string
	if f.minTime != nil {
		clauses = append(clauses, "started_at >= "+strconv.FormatInt(*f.minTime, 10))
	}
	if f.maxTime != nil {
		clauses = append(clauses, "started_at <= "+strconv.FormatInt(*f.maxTime, 10))
	}
	if f.minBadge != nil {
		clauses = append(clauses, "avg_badge >= "+strconv.FormatInt(*f.minBadge, 10))
	}
	if f.maxBadge != nil {
		clauses = append(clauses, "avg_badge <= "+strconv.FormatInt(*f.maxBadge, 10))
	}
	if extra != "" {
		clauses = append(clauses, extra)
	}

	if len(clauses) == 0 {
		return
	}
	b.WriteString(" WHERE ")
	b.WriteString(strings.Join(clauses, " AND "))
}
