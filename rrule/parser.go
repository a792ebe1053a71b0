package rrule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloudeng.io/datetime"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/cyp0633/librrule/internal/calendar"
)

const (
	attrFreq        = "FREQ"
	attrInterval    = "INTERVAL"
	attrDTStart     = "DTSTART"
	attrDTEnd       = "DTEND"
	attrDuration    = "DURATION"
	attrByTime      = "BYTIME"
	attrByDay       = "BYDAY"
	attrByMonthDay  = "BYMONTHDAY"
	attrByMonth     = "BYMONTH"
	attrByMonthDate = "X-BYMONTHDATE"
)

// filterKinds lists, for every filter attribute, the frequencies that accept it.
var filterKinds = map[string][]Kind{
	attrByTime:      {KindDaily},
	attrByDay:       {KindWeekly, KindMonthly},
	attrByMonthDay:  {KindMonthly, KindYearly},
	attrByMonth:     {KindYearly},
	attrByMonthDate: {KindYearly},
}

var icalInstantLayouts = []string{
	time.RFC3339,
	"20060102T150405Z",
}

// Attribute is one KEY=VALUE pair of a rule.
type Attribute struct {
	Key   string
	Value string
}

// Parse parses a semicolon separated list of KEY=VALUE attributes, e.g.
//
//	FREQ=WEEKLY;INTERVAL=1;DTSTART=2023-01-02T12:00:00Z;BYDAY=MO,TU
func Parse(text string) (*Rule, error) {
	var attrs []Attribute
	for _, segment := range strings.Split(text, ";") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		key, value, ok := strings.Cut(segment, "=")
		if !ok {
			return nil, invalidValue(segment, "expected KEY=VALUE")
		}
		attrs = append(attrs, Attribute{Key: key, Value: value})
	}
	return ParseAttributes(attrs)
}

// ParseAttributes builds a Rule from an unordered attribute list. When both
// DTEND and DURATION are given, DTEND wins and the duration is dropped after
// its syntax has been checked.
func ParseAttributes(attrs []Attribute) (*Rule, error) {
	upper := cases.Upper(language.Und)
	values := make(map[string]string, len(attrs))
	for _, a := range attrs {
		key := upper.String(strings.TrimSpace(a.Key))
		if _, dup := values[key]; dup {
			return nil, invalidValue(key, "given more than once")
		}
		values[key] = upper.String(strings.TrimSpace(a.Value))
	}

	for _, key := range []string{attrFreq, attrInterval, attrDTStart} {
		if _, ok := values[key]; !ok {
			return nil, missing(key)
		}
	}
	kind, err := ParseKind(values[attrFreq])
	if err != nil {
		return nil, err
	}
	for key := range values {
		switch key {
		case attrFreq, attrInterval, attrDTStart, attrDTEnd, attrDuration:
			continue
		}
		kinds, known := filterKinds[key]
		if !known {
			return nil, &AttributeError{Attribute: key, Reason: "unknown attribute", Err: ErrUnsupportedAttribute}
		}
		if !containsKind(kinds, kind) {
			return nil, unsupported(key, kind)
		}
	}

	interval, err := strconv.Atoi(values[attrInterval])
	if err != nil {
		return nil, invalidValue(attrInterval, "%q is not an integer", values[attrInterval])
	}
	freq, err := buildFrequency(kind, interval, values)
	if err != nil {
		return nil, err
	}

	start, err := parseInstant(attrDTStart, values[attrDTStart])
	if err != nil {
		return nil, err
	}
	var opts []Option
	if v, ok := values[attrDuration]; ok {
		d, err := parseDuration(v)
		if err != nil {
			return nil, err
		}
		if _, hasEnd := values[attrDTEnd]; !hasEnd {
			opts = append(opts, WithDuration(d))
		}
	}
	if v, ok := values[attrDTEnd]; ok {
		end, err := parseInstant(attrDTEnd, v)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithEnd(end))
	}
	return New(freq, start, opts...)
}

func containsKind(kinds []Kind, k Kind) bool {
	for _, c := range kinds {
		if c == k {
			return true
		}
	}
	return false
}

func buildFrequency(kind Kind, interval int, values map[string]string) (Frequency, error) {
	if err := validateInterval(kind, interval); err != nil {
		return nil, err
	}
	switch kind {
	case KindSecondly:
		return Secondly{Every: interval}, nil
	case KindMinutely:
		return Minutely{Every: interval}, nil
	case KindHourly:
		return Hourly{Every: interval}, nil
	case KindDaily:
		times, err := parseList(values, attrByTime, ParseTimeOfDay)
		if err != nil {
			return nil, err
		}
		return Daily{Every: interval, ByTime: times}, nil
	case KindWeekly:
		days, err := parseList(values, attrByDay, ParseWeekday)
		if err != nil {
			return nil, err
		}
		return Weekly{Every: interval, ByDay: days}, nil
	case KindMonthly:
		nth, err := parseList(values, attrByDay, ParseNthWeekday)
		if err != nil {
			return nil, err
		}
		days, err := parseList(values, attrByMonthDay, parseMonthDay)
		if err != nil {
			return nil, err
		}
		return Monthly{Every: interval, ByMonthDay: days, NthWeekdays: nth}, nil
	case KindYearly:
		dates, err := parseMonthDates(values)
		if err != nil {
			return nil, err
		}
		return Yearly{Every: interval, ByMonthDate: dates}, nil
	default:
		panic(fmt.Sprintf("rrule: unhandled kind %s", kind))
	}
}

func parseList[T any](values map[string]string, attr string, parse func(string) (T, error)) ([]T, error) {
	v, ok := values[attr]
	if !ok {
		return nil, nil
	}
	var out []T
	for _, item := range strings.Split(v, ",") {
		parsed, err := parse(strings.TrimSpace(item))
		if err != nil {
			return nil, err
		}
		out = append(out, parsed)
	}
	return out, nil
}

func parseMonthDay(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, invalidValue(attrByMonthDay, "%q is not an integer", s)
	}
	if n < 1 || n > 31 {
		return 0, invalidValue(attrByMonthDay, "%d not in 1..31", n)
	}
	return n, nil
}

func parseMonth(s string) (time.Month, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, invalidValue(attrByMonth, "%q is not an integer", s)
	}
	if n < 1 || n > 12 {
		return 0, invalidValue(attrByMonth, "%d not in 1..12", n)
	}
	return time.Month(n), nil
}

func parseMonthDate(s string) (MonthDate, error) {
	m, d, ok := strings.Cut(s, "-")
	if !ok {
		return MonthDate{}, invalidValue(attrByMonthDate, "%q is not MM-DD", s)
	}
	month, err := parseMonth(m)
	if err != nil {
		return MonthDate{}, err
	}
	day, err := parseMonthDay(d)
	if err != nil {
		return MonthDate{}, err
	}
	date := MonthDate{Month: month, Day: day}
	return date, date.validate()
}

// parseMonthDates combines BYMONTH x BYMONTHDAY and X-BYMONTHDATE into the
// set of yearly dates. Combinations that no year contains, such as
// February 30th, are dropped as long as at least one remains.
func parseMonthDates(values map[string]string) ([]MonthDate, error) {
	months, err := parseList(values, attrByMonth, parseMonth)
	if err != nil {
		return nil, err
	}
	days, err := parseList(values, attrByMonthDay, parseMonthDay)
	if err != nil {
		return nil, err
	}
	if len(months) > 0 && len(days) == 0 {
		return nil, invalidValue(attrByMonth, "requires BYMONTHDAY")
	}
	if len(days) > 0 && len(months) == 0 {
		return nil, &AttributeError{Attribute: attrByMonthDay, Reason: "requires BYMONTH with FREQ=YEARLY", Err: ErrUnsupportedAttribute}
	}
	var dates []MonthDate
	for _, m := range months {
		for _, d := range days {
			if d <= calendar.MaxDaysInMonth(m) {
				dates = append(dates, MonthDate{Month: m, Day: d})
			}
		}
	}
	if len(months) > 0 && len(dates) == 0 {
		return nil, invalidValue(attrByMonthDay, "no listed day exists in the listed months")
	}
	extra, err := parseList(values, attrByMonthDate, parseMonthDate)
	if err != nil {
		return nil, err
	}
	return append(dates, extra...), nil
}

func parseInstant(attr, s string) (time.Time, error) {
	for _, layout := range icalInstantLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, invalidValue(attr, "%q is not an ISO-8601 instant", s)
}

func parseDuration(s string) (time.Duration, error) {
	d, err := datetime.ParseISO8601Period(s)
	if err != nil {
		return 0, &AttributeError{Attribute: attrDuration, Reason: err.Error(), Err: ErrInvalidValue}
	}
	if d < 0 {
		return 0, invalidValue(attrDuration, "%q is negative", s)
	}
	return d, nil
}
