package server

import (
	"fmt"
	"net/url"
	"strconv"
)

// hourBucket is the resolution request time ranges are snapped to. Wider
// buckets mean more byte-identical canonical queries and a higher reuse
// rate in the result cache.
const hourBucket = 3600

// statsFilter holds the parsed filter parameters shared by the analytics
// endpoints. Nil fields were absent from the request.
type statsFilter struct {
	minTime  *int64
	maxTime  *int64
	minBadge *int64
	maxBadge *int64
}

// itemFilter adds the item endpoint's extra parameters.
type itemFilter struct {
	statsFilter
	heroID     *int64
	minMatches *int64
}

// parseStatsFilter reads the shared filter parameters. Timestamps are
// snapped outward to hour boundaries so requests arriving within the same
// hour build identical canonical queries.
func parseStatsFilter(q url.Values) (statsFilter, error) {
	var f statsFilter
	var err error

	if f.minTime, err = int64Param(q, "min_unix_timestamp"); err != nil {
		return f, err
	}
	if f.maxTime, err = int64Param(q, "max_unix_timestamp"); err != nil {
		return f, err
	}
	if f.minBadge, err = int64Param(q, "min_average_badge"); err != nil {
		return f, err
	}
	if f.maxBadge, err = int64Param(q, "max_average_badge"); err != nil {
		return f, err
	}

	if f.minTime != nil {
		*f.minTime = floorHour(*f.minTime)
	}
	if f.maxTime != nil {
		*f.maxTime = ceilHour(*f.maxTime)
	}
	return f, nil
}

func parseItemFilter(q url.Values) (itemFilter, error) {
	var f itemFilter
	var err error

	if f.statsFilter, err = parseStatsFilter(q); err != nil {
		return f, err
	}
	if f.heroID, err = int64Param(q, "hero_id"); err != nil {
		return f, err
	}
	if f.minMatches, err = int64Param(q, "min_matches"); err != nil {
		return f, err
	}
	return f, nil
}

// int64Param reads an optional integer parameter. Absent parameters return
// nil without error.
func int64Param(q url.Values, name string) (*int64, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parameter %s must be an integer", name)
	}
	return &v, nil
}

// floorHour snaps t down to the start of its hour.
func floorHour(t int64) int64 {
	return t - t%hourBucket
}

// ceilHour snaps t up to the next hour boundary. Exact boundaries are kept.
func ceilHour(t int64) int64 {
	if t%hourBucket == 0 {
		return t
	}
	return t + hourBucket - t%hourBucket
}
