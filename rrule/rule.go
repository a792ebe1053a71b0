package rrule

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/samber/mo"

	"github.com/cyp0633/librrule/internal/calendar"
)

// MaxDate bounds every rule that has no explicit end.
var MaxDate = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

// Rule is an immutable, validated recurrence description. Any number of
// cursors may be created from one Rule; they share no mutable state.
type Rule struct {
	frequency Frequency
	start     time.Time
	end       mo.Option[time.Time]
	duration  mo.Option[time.Duration]
}

// Option configures optional parts of a Rule.
type Option func(*Rule)

// WithEnd bounds the occurrences to instants at or before end.
func WithEnd(end time.Time) Option {
	return func(r *Rule) {
		r.end = mo.Some(end)
	}
}

// WithDuration sets the length of every occurrence.
func WithDuration(d time.Duration) Option {
	return func(r *Rule) {
		r.duration = mo.Some(d)
	}
}

// New builds a Rule from its parts and validates it.
func New(freq Frequency, start time.Time, opts ...Option) (*Rule, error) {
	if freq == nil {
		return nil, missing(attrFreq)
	}
	if start.IsZero() {
		return nil, missing(attrDTStart)
	}
	r := &Rule{
		frequency: freq,
		start:     start,
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.frequency.Validate(); err != nil {
		return nil, err
	}
	r.frequency = r.frequency.normalize()
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Rule) validate() error {
	if end, ok := r.end.Get(); ok && r.start.After(end) {
		return invalidValue(attrDTEnd, "%s is before DTSTART %s", formatInstant(end), formatInstant(r.start))
	}
	if r.start.After(MaxDate) {
		return invalidValue(attrDTStart, "%s is after %s", formatInstant(r.start), formatInstant(MaxDate))
	}
	d, ok := r.duration.Get()
	if !ok {
		return nil
	}
	if d < 0 {
		return invalidValue(attrDuration, "%s is negative", d)
	}
	if gap, ok := minGap(r.frequency); ok && d > gap {
		return fmt.Errorf("%w: duration %s overlaps the next occurrence %s later", ErrInvalidRule, d, gap)
	}
	return nil
}

// minGap returns the shortest distance between two consecutive occurrences,
// or a lower bound of it for months. Yearly rules are not checked.
func minGap(f Frequency) (time.Duration, bool) {
	const day = 24 * time.Hour
	switch f := f.(type) {
	case Secondly:
		return span(f.Every, time.Second), true
	case Minutely:
		return span(f.Every, time.Minute), true
	case Hourly:
		return span(f.Every, time.Hour), true
	case Daily:
		period := span(f.Every, day)
		if len(f.ByTime) < 2 {
			return period, true
		}
		offsets := make([]time.Duration, len(f.ByTime))
		for i, t := range f.ByTime {
			offsets[i] = time.Duration(t.seconds()) * time.Second
		}
		return cyclicGap(offsets, period), true
	case Weekly:
		period := span(f.Every, 7*day)
		if len(f.ByDay) < 2 {
			return period, true
		}
		offsets := make([]time.Duration, len(f.ByDay))
		for i, wd := range f.ByDay {
			offsets[i] = time.Duration(calendar.MondayIndex(wd)) * day
		}
		return cyclicGap(offsets, period), true
	case Monthly:
		return span(monthlyGapDays(f), day), true
	case Yearly:
		return 0, false
	default:
		panic(fmt.Sprintf("rrule: unhandled frequency %T", f))
	}
}

// span multiplies n by unit, saturating instead of overflowing.
func span[N int | int64](n N, unit time.Duration) time.Duration {
	if int64(n) > math.MaxInt64/int64(unit) {
		return math.MaxInt64
	}
	return time.Duration(n) * unit
}

// monthlyGapDays walks the 28 years from 2001, which contain every pairing
// of month length and first weekday, and returns the fewest days between
// consecutive occurrences. Steps over several months assume the skipped
// months are 28 days long.
func monthlyGapDays(f Monthly) int64 {
	shortest := int64(f.Every) * 28
	if len(f.ByMonthDay) == 0 && len(f.NthWeekdays) == 0 {
		return shortest
	}
	origin := time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)
	gap, tail, head := int64(math.MaxInt64), int64(math.MaxInt64), int64(math.MaxInt64)
	prev := int64(-1)
	for i := 0; i <= 28*12; i++ {
		month := origin.AddDate(0, i, 0)
		y, m := month.Year(), month.Month()
		days := monthDays(f, y, m, 0)
		if len(days) == 0 {
			continue
		}
		base := civilDays(origin, month)
		for j := 1; j < len(days); j++ {
			gap = min(gap, int64(days[j]-days[j-1]))
		}
		if f.Every == 1 && prev >= 0 {
			gap = min(gap, base+int64(days[0])-prev)
		}
		prev = base + int64(days[len(days)-1])
		head = min(head, int64(days[0]))
		tail = min(tail, int64(calendar.DaysInMonth(y, m)-days[len(days)-1]))
	}
	if prev < 0 {
		return shortest
	}
	if f.Every > 1 {
		gap = min(gap, tail+head+int64(f.Every-1)*28)
	}
	return gap
}

// cyclicGap returns the smallest difference between neighbouring sorted
// offsets, including the wrap from the last offset into the next period.
func cyclicGap(offsets []time.Duration, period time.Duration) time.Duration {
	gap := period - offsets[len(offsets)-1] + offsets[0]
	for i := 1; i < len(offsets); i++ {
		gap = min(gap, offsets[i]-offsets[i-1])
	}
	return gap
}

// Frequency returns the rule's frequency. Its slices must not be modified.
func (r *Rule) Frequency() Frequency { return r.frequency }

// Start returns DTSTART.
func (r *Rule) Start() time.Time { return r.start }

// End returns the explicit end, if any.
func (r *Rule) End() mo.Option[time.Time] { return r.end }

// Bound returns the last instant an occurrence may have.
func (r *Rule) Bound() time.Time { return r.end.OrElse(MaxDate) }

// Duration returns the occurrence length; zero when none was given.
func (r *Rule) Duration() time.Duration { return r.duration.OrEmpty() }

// HasDuration reports whether a duration was set explicitly.
func (r *Rule) HasDuration() bool { return r.duration.IsPresent() }

// String formats the rule in the textual grammar accepted by Parse.
func (r *Rule) String() string {
	parts := []string{
		attrFreq + "=" + r.frequency.Kind().String(),
		attrInterval + "=" + strconv.Itoa(r.frequency.Interval()),
	}
	parts = append(parts, filterAttributes(r.frequency)...)
	parts = append(parts, attrDTStart+"="+formatInstant(r.start))
	if end, ok := r.end.Get(); ok {
		parts = append(parts, attrDTEnd+"="+formatInstant(end))
	}
	if d, ok := r.duration.Get(); ok {
		parts = append(parts, attrDuration+"="+formatDuration(d))
	}
	return strings.Join(parts, ";")
}

func filterAttributes(f Frequency) []string {
	switch f := f.(type) {
	case Secondly, Minutely, Hourly:
		return nil
	case Daily:
		if len(f.ByTime) == 0 {
			return nil
		}
		return []string{attrByTime + "=" + joinStrings(f.ByTime, TimeOfDay.String)}
	case Weekly:
		if len(f.ByDay) == 0 {
			return nil
		}
		return []string{attrByDay + "=" + joinStrings(f.ByDay, WeekdayCode)}
	case Monthly:
		var out []string
		if len(f.NthWeekdays) > 0 {
			out = append(out, attrByDay+"="+joinStrings(f.NthWeekdays, NthWeekday.String))
		}
		if len(f.ByMonthDay) > 0 {
			out = append(out, attrByMonthDay+"="+joinStrings(f.ByMonthDay, strconv.Itoa))
		}
		return out
	case Yearly:
		if len(f.ByMonthDate) == 0 {
			return nil
		}
		months, days, ok := factorMonthDates(f.ByMonthDate)
		if !ok {
			return []string{attrByMonthDate + "=" + joinStrings(f.ByMonthDate, func(d MonthDate) string {
				return fmt.Sprintf("%02d-%02d", int(d.Month), d.Day)
			})}
		}
		return []string{
			attrByMonth + "=" + joinStrings(months, func(m time.Month) string { return strconv.Itoa(int(m)) }),
			attrByMonthDay + "=" + joinStrings(days, strconv.Itoa),
		}
	default:
		panic(fmt.Sprintf("rrule: unhandled frequency %T", f))
	}
}

// factorMonthDates splits a sorted set of month dates into BYMONTH and
// BYMONTHDAY lists when the set is exactly their cross product.
func factorMonthDates(dates []MonthDate) ([]time.Month, []int, bool) {
	var months []time.Month
	var days []int
	for _, d := range dates {
		if !slices.Contains(months, d.Month) {
			months = append(months, d.Month)
		}
		if !slices.Contains(days, d.Day) {
			days = append(days, d.Day)
		}
	}
	slices.Sort(days)
	if len(months)*len(days) != len(dates) {
		return nil, nil, false
	}
	return months, days, true
}

func joinStrings[T any](items []T, format func(T) string) string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = format(it)
	}
	return strings.Join(out, ",")
}

func formatInstant(t time.Time) string {
	return t.Format(time.RFC3339)
}

// formatDuration renders d as an ISO-8601 duration using day, hour, minute
// and second designators.
func formatDuration(d time.Duration) string {
	if d == 0 {
		return "PT0S"
	}
	var b strings.Builder
	b.WriteByte('P')
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	if days > 0 {
		b.WriteString(strconv.FormatInt(int64(days), 10) + "D")
	}
	if d == 0 {
		return b.String()
	}
	b.WriteByte('T')
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	if h > 0 {
		b.WriteString(strconv.FormatInt(int64(h), 10) + "H")
	}
	if m > 0 {
		b.WriteString(strconv.FormatInt(int64(m), 10) + "M")
	}
	if d > 0 {
		b.WriteString(strconv.FormatFloat(d.Seconds(), 'f', -1, 64) + "S")
	}
	return b.String()
}
