package recurrence

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"
)

// ErrInvalidEvent is returned for events that cannot be expanded.
var ErrInvalidEvent = errors.New("invalid event")

// ctxCheckInterval is how many rule occurrences are pulled between two
// checks of the context.
const ctxCheckInterval = 256

// Engine provides unified recurrence expansion and validation logic. It is
// safe for concurrent use.
type Engine struct {
	cache   *Cache[result]
	config  EngineConfig
	logger  *slog.Logger
	metrics *Metrics
}

// result is what the engine keeps in its cache for both operations.
type result struct {
	occurrences []TimeOccurrence
	found       bool
}

// Option represents a configuration option for the Engine
type Option func(*Engine)

// WithConfig replaces DefaultEngineConfig.
func WithConfig(config EngineConfig) Option {
	return func(e *Engine) {
		e.config = config
	}
}

// WithLogger sets the logger for the engine
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics makes the engine report to m.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// NewEngine creates a new recurrence engine instance
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		config: DefaultEngineConfig,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.config.CacheEnabled {
		e.cache = NewCache[result](e.config.Cache)
	}
	return e
}

// Close stops the cache cleanup goroutine, if any.
func (e *Engine) Close() {
	if e.cache != nil {
		e.cache.Close()
	}
}

// CacheStats reports the state of the expansion cache. It is zero when
// caching is disabled.
func (e *Engine) CacheStats() CacheStats {
	if e.cache == nil {
		return CacheStats{}
	}
	return e.cache.Stats()
}

// Expand returns the occurrences of ev that overlap [rangeStart, rangeEnd],
// i.e. start <= rangeEnd and end >= rangeStart, sorted by start. EXDATE
// entries are removed and RDATE entries merged in. A positive
// opts.MaxTimeSpan shortens the range, a positive opts.MaxOccurrences caps
// the result.
func (e *Engine) Expand(ctx context.Context, ev Event, rangeStart, rangeEnd time.Time, opts ExpansionOptions) ([]TimeOccurrence, error) {
	if err := checkQuery(ev, rangeStart, rangeEnd); err != nil {
		return nil, err
	}
	if opts.MaxTimeSpan > 0 && rangeEnd.Sub(rangeStart) > opts.MaxTimeSpan {
		rangeEnd = rangeStart.Add(opts.MaxTimeSpan)
	}
	e.metrics.expansion()

	var key string
	if e.cache != nil {
		key = cacheKey("expand", ev, rangeStart, rangeEnd, opts)
		if cached, ok := e.cache.Get(key); ok {
			e.metrics.cacheHit()
			e.logger.Debug("expansion served from cache", "occurrences", len(cached.occurrences))
			return slices.Clone(cached.occurrences), nil
		}
		e.metrics.cacheMiss()
	}

	occurrences, err := e.expand(ctx, ev, rangeStart, rangeEnd, opts.MaxOccurrences)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.Set(key, result{occurrences: slices.Clone(occurrences)})
	}
	e.metrics.emitted(len(occurrences))
	e.logger.Debug("expanded recurrence",
		"range_start", rangeStart,
		"range_end", rangeEnd,
		"occurrences", len(occurrences))
	return occurrences, nil
}

func (e *Engine) expand(ctx context.Context, ev Event, from, to time.Time, limit int) ([]TimeOccurrence, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	length := ev.Length()
	var out []TimeOccurrence
	add := func(start time.Time, rdate bool) bool {
		if !overlaps(start, length, from, to) || isExcluded(start, ev.EXDATE) {
			return false
		}
		out = append(out, TimeOccurrence{Start: start, End: start.Add(length), IsRDATE: rdate})
		return true
	}

	if !ev.Start.IsZero() {
		add(ev.Start, false)
	}
	if ev.Rule != nil {
		pulled, kept := 0, 0
		for start := range ev.Rule.From(from.Add(-length)) {
			if start.After(to) {
				break
			}
			if pulled++; pulled%ctxCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}
			if start.Equal(ev.Start) {
				continue
			}
			// Anything past the first limit rule occurrences can never make
			// it into the truncated result.
			if add(start, false) {
				if kept++; limit > 0 && kept >= limit {
					break
				}
			}
		}
	}
	for _, rdate := range ev.RDATE {
		add(rdate, true)
	}

	slices.SortStableFunc(out, func(a, b TimeOccurrence) int {
		return a.Start.Compare(b.Start)
	})
	out = slices.CompactFunc(out, func(a, b TimeOccurrence) bool {
		return a.Start.Equal(b.Start)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// HasOccurrenceInRange checks if a recurring event has any occurrence in the time range
// without expanding it. At most config.MaxProbeOccurrences rule occurrences
// are inspected.
func (e *Engine) HasOccurrenceInRange(ctx context.Context, ev Event, rangeStart, rangeEnd time.Time) (bool, error) {
	if err := checkQuery(ev, rangeStart, rangeEnd); err != nil {
		return false, err
	}
	var key string
	if e.cache != nil {
		key = cacheKey("has", ev, rangeStart, rangeEnd, ExpansionOptions{})
		if cached, ok := e.cache.Get(key); ok {
			e.metrics.cacheHit()
			return cached.found, nil
		}
		e.metrics.cacheMiss()
	}
	found, err := e.hasOccurrence(ctx, ev, rangeStart, rangeEnd)
	if err != nil {
		return false, err
	}
	if e.cache != nil {
		e.cache.Set(key, result{found: found})
	}
	return found, nil
}

func (e *Engine) hasOccurrence(ctx context.Context, ev Event, from, to time.Time) (bool, error) {
	length := ev.Length()
	// Fast path: check master event first
	if !ev.Start.IsZero() && overlaps(ev.Start, length, from, to) && !isExcluded(ev.Start, ev.EXDATE) {
		return true, nil
	}
	for _, rdate := range ev.RDATE {
		if overlaps(rdate, length, from, to) && !isExcluded(rdate, ev.EXDATE) {
			return true, nil
		}
	}
	if ev.Rule == nil {
		return false, nil
	}

	pulled := 0
	for start := range ev.Rule.From(from.Add(-length)) {
		if start.After(to) {
			return false, nil
		}
		if !isExcluded(start, ev.EXDATE) {
			return true, nil
		}
		pulled++
		if e.config.MaxProbeOccurrences > 0 && pulled >= e.config.MaxProbeOccurrences {
			e.logger.Warn("occurrence probe limit reached",
				"limit", e.config.MaxProbeOccurrences,
				"rule", ev.Rule.String())
			return false, nil
		}
		if pulled%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return false, err
			}
		}
	}
	return false, nil
}

func checkQuery(ev Event, rangeStart, rangeEnd time.Time) error {
	if rangeEnd.Before(rangeStart) {
		return fmt.Errorf("%w: %s is before %s", ErrInvalidRange,
			rangeEnd.Format(time.RFC3339), rangeStart.Format(time.RFC3339))
	}
	if ev.Start.IsZero() && ev.Rule == nil {
		return fmt.Errorf("%w: neither a start nor a rule", ErrInvalidEvent)
	}
	if !ev.End.IsZero() && ev.End.Before(ev.Start) {
		return fmt.Errorf("%w: end %s is before start %s", ErrInvalidEvent,
			ev.End.Format(time.RFC3339), ev.Start.Format(time.RFC3339))
	}
	return nil
}

// overlaps uses proper time range overlap logic: start <= to AND end >= from.
func overlaps(start time.Time, length time.Duration, from, to time.Time) bool {
	return !start.After(to) && !start.Add(length).Before(from)
}

// isExcluded checks if a given time is in the EXDATE list
func isExcluded(t time.Time, exdates []time.Time) bool {
	for _, exdate := range exdates {
		if t.Equal(exdate) {
			return true
		}
		// Date-only exceptions are stored as midnight UTC and cover the
		// whole day of the occurrence.
		if exdate.Location() == time.UTC && exdate.Hour() == 0 && exdate.Minute() == 0 && exdate.Second() == 0 {
			y, m, d := t.Date()
			if time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Equal(exdate) {
				return true
			}
		}
	}
	return false
}
