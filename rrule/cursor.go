package rrule

import (
	"fmt"
	"slices"
	"time"

	"github.com/cyp0633/librrule/internal/calendar"
)

// Cursor walks the occurrences of a Rule. It expands one period at a time
// into a small queue of candidates and hands them out in order. A Cursor
// is not safe for concurrent use; create one per consumer instead.
type Cursor struct {
	rule  *Rule
	probe time.Time   // origin of the next period to expand
	queue []time.Time // candidates of the last expanded period
	floor time.Time   // candidates before floor are dropped
	last  time.Time
	done  bool
}

// Cursor returns a fresh cursor positioned before the first occurrence.
func (r *Rule) Cursor() *Cursor {
	return &Cursor{
		rule:  r,
		probe: periodStart(r.frequency, r.start),
		floor: r.start,
	}
}

// CursorAt returns a cursor whose first occurrence is the first one at or
// after from. Periods before from are skipped arithmetically, so this is
// cheap even for fine grained rules and distant instants.
func (r *Rule) CursorAt(from time.Time) *Cursor {
	if !from.After(r.start) {
		return r.Cursor()
	}
	c := &Cursor{rule: r, floor: from}
	if from.After(r.Bound()) {
		c.done = true
		return c
	}
	c.probe, _ = r.alignedOrigin(from)
	return c
}

// Next returns the next occurrence. Once it reports false the cursor stays
// exhausted.
func (c *Cursor) Next() (time.Time, bool) {
	bound := c.rule.Bound()
	for !c.done {
		if len(c.queue) > 0 {
			next := c.queue[0]
			c.queue = c.queue[1:]
			if next.After(bound) {
				c.stop()
				break
			}
			c.last = next
			return next, true
		}
		if c.probe.After(bound) {
			c.stop()
			break
		}
		c.queue = c.admit(c.rule.candidates(c.probe))
		next := shiftPeriods(c.rule.frequency, c.probe, int64(c.rule.frequency.Interval()))
		if !next.After(c.probe) {
			// the step wrapped around; nothing lies beyond this period
			next = bound.Add(time.Second)
		}
		c.probe = next
	}
	return time.Time{}, false
}

// admit drops candidates before the floor or not after the last emitted
// occurrence. The latter only happens around DST transitions where two
// wall clock times resolve to the same instant.
func (c *Cursor) admit(candidates []time.Time) []time.Time {
	out := candidates[:0]
	for _, t := range candidates {
		if t.Before(c.floor) || (!c.last.IsZero() && !t.After(c.last)) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (c *Cursor) stop() {
	c.done = true
	c.queue = nil
}

// Contains reports whether t is one of the rule's occurrences.
func (r *Rule) Contains(t time.Time) bool {
	if t.Before(r.start) || t.After(r.Bound()) {
		return false
	}
	origin, aligned := r.alignedOrigin(t.In(r.start.Location()))
	if !aligned {
		return false
	}
	for _, c := range r.candidates(origin) {
		if c.Equal(t) {
			return true
		}
	}
	return false
}

// alignedOrigin returns the origin of the last period, counted in steps of
// the interval from the start's period, that begins at or before t. The
// boolean reports whether t's own period is one of those steps.
func (r *Rule) alignedOrigin(t time.Time) (time.Time, bool) {
	first := periodStart(r.frequency, r.start)
	n := periodsBetween(r.frequency, first, periodStart(r.frequency, t.In(r.start.Location())))
	every := int64(r.frequency.Interval())
	return shiftPeriods(r.frequency, first, n-n%every), n%every == 0
}

// candidates expands the period starting at origin into its ascending
// occurrence candidates. It is pure: the result only depends on the rule
// and origin.
func (r *Rule) candidates(origin time.Time) []time.Time {
	loc := r.start.Location()
	hour, minute, sec := r.start.Clock()
	nsec := r.start.Nanosecond()
	atStartClock := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, hour, minute, sec, nsec, loc)
	}

	switch f := r.frequency.(type) {
	case Secondly, Minutely, Hourly:
		return []time.Time{origin}
	case Daily:
		y, m, d := origin.Date()
		if len(f.ByTime) == 0 {
			return []time.Time{atStartClock(y, m, d)}
		}
		out := make([]time.Time, 0, len(f.ByTime))
		for _, tod := range f.ByTime {
			out = append(out, time.Date(y, m, d, tod.Hour, tod.Minute, tod.Second, 0, loc))
		}
		return out
	case Weekly:
		days := f.ByDay
		if len(days) == 0 {
			days = []time.Weekday{r.start.Weekday()}
		}
		out := make([]time.Time, 0, len(days))
		for _, wd := range days {
			y, m, d := origin.AddDate(0, 0, calendar.MondayIndex(wd)).Date()
			out = append(out, atStartClock(y, m, d))
		}
		return out
	case Monthly:
		y, m := origin.Year(), origin.Month()
		days := monthDays(f, y, m, r.start.Day())
		out := make([]time.Time, 0, len(days))
		for _, d := range days {
			out = append(out, atStartClock(y, m, d))
		}
		return out
	case Yearly:
		y := origin.Year()
		dates := f.ByMonthDate
		if len(dates) == 0 {
			dates = []MonthDate{{Month: r.start.Month(), Day: r.start.Day()}}
		}
		var out []time.Time
		for _, md := range dates {
			if md.Day <= calendar.DaysInMonth(y, md.Month) {
				out = append(out, atStartClock(y, md.Month, md.Day))
			}
		}
		return out
	default:
		panic(fmt.Sprintf("rrule: unhandled frequency %T", f))
	}
}

// monthDays returns the sorted day numbers f selects in a month. Without
// filters fallback is used when the month has that day.
func monthDays(f Monthly, y int, m time.Month, fallback int) []int {
	dim := calendar.DaysInMonth(y, m)
	var days []int
	for _, d := range f.ByMonthDay {
		if d <= dim {
			days = append(days, d)
		}
	}
	for _, nth := range f.NthWeekdays {
		if d, ok := calendar.NthWeekdayOfMonth(y, m, nth.Weekday, nth.Ordinal).Get(); ok {
			days = append(days, d)
		}
	}
	if len(f.ByMonthDay) == 0 && len(f.NthWeekdays) == 0 && fallback >= 1 && fallback <= dim {
		days = append(days, fallback)
	}
	slices.Sort(days)
	return slices.Compact(days)
}

// periodStart returns the origin of the period containing t.
func periodStart(f Frequency, t time.Time) time.Time {
	switch f.(type) {
	case Secondly, Minutely, Hourly:
		return t
	case Daily:
		return calendar.StartOfDay(t)
	case Weekly:
		return calendar.StartOfWeek(t)
	case Monthly:
		return calendar.StartOfMonth(t)
	case Yearly:
		return calendar.StartOfYear(t)
	default:
		panic(fmt.Sprintf("rrule: unhandled frequency %T", f))
	}
}

func unitSeconds(f Frequency) int64 {
	switch f.(type) {
	case Minutely:
		return 60
	case Hourly:
		return 3600
	default:
		return 1
	}
}

// periodsBetween counts the whole base periods from origin a to origin b.
// Unix seconds are used instead of time.Duration, which cannot span the
// distance to MaxDate.
func periodsBetween(f Frequency, a, b time.Time) int64 {
	switch f.(type) {
	case Secondly, Minutely, Hourly:
		return (b.Unix() - a.Unix()) / unitSeconds(f)
	case Daily:
		return civilDays(a, b)
	case Weekly:
		return civilDays(a, b) / 7
	case Monthly:
		return int64(b.Year()-a.Year())*12 + int64(b.Month()-a.Month())
	case Yearly:
		return int64(b.Year() - a.Year())
	default:
		panic(fmt.Sprintf("rrule: unhandled frequency %T", f))
	}
}

// shiftPeriods moves origin n base periods forward.
func shiftPeriods(f Frequency, origin time.Time, n int64) time.Time {
	switch f.(type) {
	case Secondly, Minutely, Hourly:
		return time.Unix(origin.Unix()+n*unitSeconds(f), int64(origin.Nanosecond())).In(origin.Location())
	case Daily:
		return origin.AddDate(0, 0, int(n))
	case Weekly:
		return origin.AddDate(0, 0, 7*int(n))
	case Monthly:
		return origin.AddDate(0, int(n), 0)
	case Yearly:
		return origin.AddDate(int(n), 0, 0)
	default:
		panic(fmt.Sprintf("rrule: unhandled frequency %T", f))
	}
}

func civilDays(a, b time.Time) int64 {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC).Unix()
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC).Unix()
	return (to - from) / 86400
}
