package rrule

import (
	"cmp"
	"slices"
	"time"

	"github.com/cyp0633/librrule/internal/calendar"
)

// Frequency is the recurrence granularity together with its per-variant
// filters. The set of implementations is closed: Secondly, Minutely, Hourly,
// Daily, Weekly, Monthly and Yearly.
type Frequency interface {
	Kind() Kind
	Interval() int
	// Validate checks interval and filter ranges.
	Validate() error

	normalize() Frequency
}

type Secondly struct {
	Every int
}

type Minutely struct {
	Every int
}

type Hourly struct {
	Every int
}

// Daily recurs every Every days, at each ByTime entry or at the start's
// time of day when ByTime is empty.
type Daily struct {
	Every  int
	ByTime []TimeOfDay
}

// Weekly recurs every Every weeks (weeks start on Monday) on each ByDay
// weekday, or on the start's weekday when ByDay is empty.
type Weekly struct {
	Every int
	ByDay []time.Weekday
}

// Monthly recurs every Every months on the union of ByMonthDay and
// NthWeekdays. Days that do not exist in a given month are skipped.
type Monthly struct {
	Every       int
	ByMonthDay  []int
	NthWeekdays []NthWeekday
}

// Yearly recurs every Every years on each ByMonthDate that exists in the
// year, e.g. February 29th only in leap years.
type Yearly struct {
	Every       int
	ByMonthDate []MonthDate
}

func (Secondly) Kind() Kind { return KindSecondly }
func (Minutely) Kind() Kind { return KindMinutely }
func (Hourly) Kind() Kind   { return KindHourly }
func (Daily) Kind() Kind    { return KindDaily }
func (Weekly) Kind() Kind   { return KindWeekly }
func (Monthly) Kind() Kind  { return KindMonthly }
func (Yearly) Kind() Kind   { return KindYearly }

func (f Secondly) Interval() int { return f.Every }
func (f Minutely) Interval() int { return f.Every }
func (f Hourly) Interval() int   { return f.Every }
func (f Daily) Interval() int    { return f.Every }
func (f Weekly) Interval() int   { return f.Every }
func (f Monthly) Interval() int  { return f.Every }
func (f Yearly) Interval() int   { return f.Every }

// maxIntervals caps INTERVAL per kind at the number of periods in 10000
// years, which keeps the period arithmetic from overflowing.
var maxIntervals = [...]int64{
	KindSecondly: 10000 * 366 * 86400,
	KindMinutely: 10000 * 366 * 1440,
	KindHourly:   10000 * 366 * 24,
	KindDaily:    10000 * 366,
	KindWeekly:   10000 * 366 / 7,
	KindMonthly:  10000 * 12,
	KindYearly:   10000,
}

func validateInterval(kind Kind, n int) error {
	if n < 1 {
		return invalidValue(attrInterval, "%d is not a positive integer", n)
	}
	if limit := maxIntervals[kind]; int64(n) > limit {
		return invalidValue(attrInterval, "%d exceeds %d for FREQ=%s", n, limit, kind)
	}
	return nil
}

func (f Secondly) Validate() error { return validateInterval(f.Kind(), f.Every) }
func (f Minutely) Validate() error { return validateInterval(f.Kind(), f.Every) }
func (f Hourly) Validate() error   { return validateInterval(f.Kind(), f.Every) }

func (f Daily) Validate() error {
	if err := validateInterval(f.Kind(), f.Every); err != nil {
		return err
	}
	for _, t := range f.ByTime {
		if err := t.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (f Weekly) Validate() error {
	if err := validateInterval(f.Kind(), f.Every); err != nil {
		return err
	}
	for _, wd := range f.ByDay {
		if wd < time.Sunday || wd > time.Saturday {
			return invalidValue(attrByDay, "weekday %d out of range", wd)
		}
	}
	return nil
}

func (f Monthly) Validate() error {
	if err := validateInterval(f.Kind(), f.Every); err != nil {
		return err
	}
	for _, d := range f.ByMonthDay {
		if d < 1 || d > 31 {
			return invalidValue(attrByMonthDay, "%d not in 1..31", d)
		}
	}
	for _, n := range f.NthWeekdays {
		if err := n.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (f Yearly) Validate() error {
	if err := validateInterval(f.Kind(), f.Every); err != nil {
		return err
	}
	for _, d := range f.ByMonthDate {
		if err := d.validate(); err != nil {
			return err
		}
	}
	return nil
}

// normalize returns a copy with sorted, de-duplicated filters so that a
// Rule never shares slices with its caller.
func (f Secondly) normalize() Frequency { return f }
func (f Minutely) normalize() Frequency { return f }
func (f Hourly) normalize() Frequency   { return f }

func (f Daily) normalize() Frequency {
	f.ByTime = sortedUnique(f.ByTime, func(a, b TimeOfDay) int {
		return cmp.Compare(a.seconds(), b.seconds())
	})
	return f
}

func (f Weekly) normalize() Frequency {
	f.ByDay = sortedUnique(f.ByDay, func(a, b time.Weekday) int {
		return cmp.Compare(calendar.MondayIndex(a), calendar.MondayIndex(b))
	})
	return f
}

func (f Monthly) normalize() Frequency {
	f.ByMonthDay = sortedUnique(f.ByMonthDay, cmp.Compare[int])
	f.NthWeekdays = sortedUnique(f.NthWeekdays, func(a, b NthWeekday) int {
		if c := cmp.Compare(a.Ordinal, b.Ordinal); c != 0 {
			return c
		}
		return cmp.Compare(calendar.MondayIndex(a.Weekday), calendar.MondayIndex(b.Weekday))
	})
	return f
}

func (f Yearly) normalize() Frequency {
	f.ByMonthDate = sortedUnique(f.ByMonthDate, func(a, b MonthDate) int {
		if a.less(b) {
			return -1
		}
		if b.less(a) {
			return 1
		}
		return 0
	})
	return f
}

func sortedUnique[T any](in []T, compare func(a, b T) int) []T {
	if len(in) == 0 {
		return nil
	}
	out := slices.Clone(in)
	slices.SortFunc(out, compare)
	return slices.CompactFunc(out, func(a, b T) bool { return compare(a, b) == 0 })
}
