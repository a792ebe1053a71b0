package rrule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cyp0633/librrule/internal/calendar"
)

// Kind names the granularity of a Frequency.
type Kind int

const (
	KindSecondly Kind = iota
	KindMinutely
	KindHourly
	KindDaily
	KindWeekly
	KindMonthly
	KindYearly
)

var kindNames = [...]string{
	KindSecondly: "SECONDLY",
	KindMinutely: "MINUTELY",
	KindHourly:   "HOURLY",
	KindDaily:    "DAILY",
	KindWeekly:   "WEEKLY",
	KindMonthly:  "MONTHLY",
	KindYearly:   "YEARLY",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// ParseKind maps a FREQ value to its Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return 0, &AttributeError{Attribute: attrFreq, Reason: strconv.Quote(s), Err: ErrUnknownFrequency}
}

// TimeOfDay is a wall clock time used by BYTIME.
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay parses HH:MM or HH:MM:SS.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return TimeOfDay{}, invalidValue(attrByTime, "%q is not HH:MM[:SS]", s)
	}
	var fields [3]int
	for i, p := range parts {
		if len(p) != 2 {
			return TimeOfDay{}, invalidValue(attrByTime, "%q is not HH:MM[:SS]", s)
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return TimeOfDay{}, invalidValue(attrByTime, "%q is not HH:MM[:SS]", s)
		}
		fields[i] = n
	}
	t := TimeOfDay{Hour: fields[0], Minute: fields[1], Second: fields[2]}
	if err := t.validate(); err != nil {
		return TimeOfDay{}, err
	}
	return t, nil
}

func (t TimeOfDay) validate() error {
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 || t.Second < 0 || t.Second > 59 {
		return invalidValue(attrByTime, "%02d:%02d:%02d out of range", t.Hour, t.Minute, t.Second)
	}
	return nil
}

// String formats as HH:MM, adding :SS only when seconds are set.
func (t TimeOfDay) String() string {
	if t.Second != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
	}
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t TimeOfDay) seconds() int {
	return t.Hour*3600 + t.Minute*60 + t.Second
}

var weekdayCodes = [...]string{
	time.Sunday:    "SU",
	time.Monday:    "MO",
	time.Tuesday:   "TU",
	time.Wednesday: "WE",
	time.Thursday:  "TH",
	time.Friday:    "FR",
	time.Saturday:  "SA",
}

// WeekdayCode returns the two letter iCalendar code of wd.
func WeekdayCode(wd time.Weekday) string {
	if wd < time.Sunday || wd > time.Saturday {
		return "??"
	}
	return weekdayCodes[wd]
}

// ParseWeekday parses a two letter weekday code such as MO.
func ParseWeekday(code string) (time.Weekday, error) {
	for wd, c := range weekdayCodes {
		if c == code {
			return time.Weekday(wd), nil
		}
	}
	return 0, invalidValue(attrByDay, "unknown weekday code %q", code)
}

// NthWeekday is a weekday at a position within a month, e.g. 1MO for the
// first Monday or -1FR for the last Friday.
type NthWeekday struct {
	Weekday time.Weekday
	Ordinal int
}

// ParseNthWeekday parses an ordinal prefixed weekday code.
func ParseNthWeekday(s string) (NthWeekday, error) {
	if len(s) < 3 {
		return NthWeekday{}, invalidValue(attrByDay, "%q needs an ordinal prefix such as 1MO", s)
	}
	code := s[len(s)-2:]
	prefix := strings.TrimPrefix(s[:len(s)-2], "+")
	n, err := strconv.Atoi(prefix)
	if err != nil {
		return NthWeekday{}, invalidValue(attrByDay, "%q has a non numeric ordinal", s)
	}
	wd, err := ParseWeekday(code)
	if err != nil {
		return NthWeekday{}, err
	}
	nth := NthWeekday{Weekday: wd, Ordinal: n}
	if err := nth.validate(); err != nil {
		return NthWeekday{}, err
	}
	return nth, nil
}

func (n NthWeekday) validate() error {
	if n.Ordinal == 0 || n.Ordinal < -5 || n.Ordinal > 5 {
		return invalidValue(attrByDay, "ordinal %d not in -5..-1 or 1..5", n.Ordinal)
	}
	if n.Weekday < time.Sunday || n.Weekday > time.Saturday {
		return invalidValue(attrByDay, "weekday %d out of range", n.Weekday)
	}
	return nil
}

func (n NthWeekday) String() string {
	return strconv.Itoa(n.Ordinal) + WeekdayCode(n.Weekday)
}

// MonthDate is a day of a given month, independent of the year.
type MonthDate struct {
	Month time.Month
	Day   int
}

func (d MonthDate) validate() error {
	if d.Month < time.January || d.Month > time.December {
		return invalidValue(attrByMonth, "month %d not in 1..12", d.Month)
	}
	if d.Day < 1 || d.Day > calendar.MaxDaysInMonth(d.Month) {
		return invalidValue(attrByMonthDay, "%s has no day %d", d.Month, d.Day)
	}
	return nil
}

func (d MonthDate) less(o MonthDate) bool {
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}
