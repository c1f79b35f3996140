// Package schedule computes run times for the periodic sweeps. Two kinds
// are supported: a plain interval ("30m") and a 5-field cron expression
// with the usual @hourly/@daily/@weekly shorthands.
package schedule

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// NextRun computes the next run after from. tz defaults to UTC. The
// returned time is always UTC.
func NextRun(kind, expr, tz string, from time.Time) (time.Time, error) {
	location := time.UTC
	if tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid timezone %q: %w", tz, err)
		}
		location = loc
	}
	localFrom := from.In(location)

	switch strings.ToLower(kind) {
	case "interval":
		d, err := time.ParseDuration(expr)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid interval %q: %w", expr, err)
		}
		if d <= 0 {
			return time.Time{}, fmt.Errorf("interval must be > 0")
		}
		return localFrom.Add(d).UTC(), nil
	case "cron":
		next, err := nextCron(expr, localFrom)
		if err != nil {
			return time.Time{}, err
		}
		return next.UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported schedule kind %q", kind)
	}
}

// Loop invokes fn at every scheduled time until ctx is cancelled or the
// schedule cannot be computed. fn errors are the caller's business and do
// not stop the loop.
func Loop(ctx context.Context, kind, expr, tz string, fn func(context.Context) error) error {
	for {
		next, err := NextRun(kind, expr, tz, time.Now())
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Until(next)):
		}
		_ = fn(ctx)
	}
}

func nextCron(expr string, from time.Time) (time.Time, error) {
	expr = strings.TrimSpace(expr)
	switch expr {
	case "@hourly":
		return from.Truncate(time.Hour).Add(time.Hour), nil
	case "@daily":
		return midnight(from).Add(24 * time.Hour), nil
	case "@weekly":
		offset := (7 - int(from.Weekday())) % 7
		if offset == 0 {
			offset = 7
		}
		return midnight(from).AddDate(0, 0, offset), nil
	}

	parts := strings.Fields(expr)
	if len(parts) != 5 {
		return time.Time{}, fmt.Errorf("invalid cron expression %q (expected 5 fields)", expr)
	}

	minute, err := parseField(parts[0], 0, 59)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid minute field: %w", err)
	}
	hour, err := parseField(parts[1], 0, 23)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid hour field: %w", err)
	}
	dom, err := parseField(parts[2], 1, 31)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day-of-month field: %w", err)
	}
	month, err := parseField(parts[3], 1, 12)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month field: %w", err)
	}
	dow, err := parseField(parts[4], 0, 7)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day-of-week field: %w", err)
	}
	// 7 is an alias for Sunday.
	if dow[7] {
		dow[0] = true
	}

	domWild := parts[2] == "*"
	dowWild := parts[4] == "*"

	candidate := from.Truncate(time.Minute).Add(time.Minute)
	limit := candidate.AddDate(2, 0, 0)
	for !candidate.After(limit) {
		if !month[int(candidate.Month())] {
			candidate = time.Date(candidate.Year(), candidate.Month(), 1, 0, 0, 0, 0, candidate.Location()).AddDate(0, 1, 0)
			continue
		}
		if !hour[candidate.Hour()] || !minute[candidate.Minute()] {
			candidate = candidate.Add(time.Minute)
			continue
		}
		if dayMatches(dom[candidate.Day()], dow[int(candidate.Weekday())], domWild, dowWild) {
			return candidate, nil
		}
		candidate = candidate.Add(time.Minute)
	}
	return time.Time{}, fmt.Errorf("cron %q never fires", expr)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// dayMatches implements the standard cron rule: when both day fields are
// restricted, either one matching is enough.
func dayMatches(domMatch, dowMatch, domWild, dowWild bool) bool {
	switch {
	case domWild && dowWild:
		return true
	case domWild:
		return dowMatch
	case dowWild:
		return domMatch
	default:
		return domMatch || dowMatch
	}
}

func parseField(field string, min, max int) (map[int]bool, error) {
	allowed := make(map[int]bool, max-min+1)
	if field == "*" {
		for i := min; i <= max; i++ {
			allowed[i] = true
		}
		return allowed, nil
	}

	for _, item := range strings.Split(field, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			return nil, fmt.Errorf("empty token")
		}

		step := 1
		rangePart := item
		if base, stepStr, ok := strings.Cut(item, "/"); ok {
			s, err := strconv.Atoi(stepStr)
			if err != nil || s <= 0 {
				return nil, fmt.Errorf("invalid step in %q", item)
			}
			rangePart = base
			step = s
		}

		if rangePart == "*" {
			for i := min; i <= max; i += step {
				allowed[i] = true
			}
			continue
		}

		start, end, err := parseRange(rangePart, min, max)
		if err != nil {
			return nil, err
		}
		for i := start; i <= end; i += step {
			allowed[i] = true
		}
	}
	if len(allowed) == 0 {
		return nil, fmt.Errorf("no values selected")
	}
	return allowed, nil
}

func parseRange(part string, min, max int) (int, int, error) {
	if startStr, endStr, ok := strings.Cut(part, "-"); ok {
		start, err := strconv.Atoi(startStr)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid range start %q", part)
		}
		end, err := strconv.Atoi(endStr)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid range end %q", part)
		}
		if start > end || start < min || end > max {
			return 0, 0, fmt.Errorf("range out of bounds %q", part)
		}
		return start, end, nil
	}

	v, err := strconv.Atoi(part)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid value %q", part)
	}
	if v < min || v > max {
		return 0, 0, fmt.Errorf("value %d out of bounds [%d,%d]", v, min, max)
	}
	return v, v, nil
}
