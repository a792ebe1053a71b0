package recurrence

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"

	"github.com/cyp0633/librrule/rrule"
)

// ErrUnsupportedRule is returned for RRULE parts the rule engine does not
// model, such as COUNT or BYSETPOS.
var ErrUnsupportedRule = errors.New("unsupported RRULE part")

const (
	icalDateTimeUTC = "20060102T150405Z"
	icalDateTime    = "20060102T150405"
	icalDate        = "20060102"
)

// EventFromComponent extracts an Event from a VEVENT or VTODO component.
func EventFromComponent(comp *ical.Component) (Event, error) {
	start, end, err := componentTimes(comp)
	if err != nil {
		return Event{}, err
	}
	ev := Event{Start: start, End: end}

	if prop := comp.Props.Get(ical.PropRecurrenceRule); prop != nil && prop.Value != "" {
		ev.Rule, err = RuleFromRRULE(prop.Value, start)
		if err != nil {
			return Event{}, fmt.Errorf("failed to parse RRULE %q: %w", prop.Value, err)
		}
	}
	for _, prop := range comp.Props[ical.PropRecurrenceDates] {
		dates, err := parseDateList(prop)
		if err != nil {
			return Event{}, fmt.Errorf("failed to parse RDATE: %w", err)
		}
		ev.RDATE = append(ev.RDATE, dates...)
	}
	for _, prop := range comp.Props[ical.PropExceptionDates] {
		dates, err := parseDateList(prop)
		if err != nil {
			return Event{}, fmt.Errorf("failed to parse EXDATE: %w", err)
		}
		ev.EXDATE = append(ev.EXDATE, dates...)
	}
	return ev, nil
}

// EventsFromICS decodes a calendar stream and extracts all of its events.
func EventsFromICS(r io.Reader) ([]Event, error) {
	cal, err := ical.NewDecoder(r).Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to decode calendar: %w", err)
	}
	var events []Event
	for _, event := range cal.Events() {
		ev, err := EventFromComponent(event.Component)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

// componentTimes returns the start of comp and the end of its first
// occurrence, from DTEND, DURATION or the default length.
func componentTimes(comp *ical.Component) (start, end time.Time, err error) {
	startProp := comp.Props.Get(ical.PropDateTimeStart)
	if startProp == nil {
		// A VTODO may only carry DUE
		if comp.Name == ical.CompToDo && comp.Props.Get(ical.PropDue) != nil {
			due, err := comp.Props.DateTime(ical.PropDue, time.UTC)
			return due, due, err
		}
		return time.Time{}, time.Time{}, fmt.Errorf("%w: missing DTSTART", ErrInvalidEvent)
	}
	start, err = comp.Props.DateTime(ical.PropDateTimeStart, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("failed to parse DTSTART: %w", err)
	}
	allDay := isDateValue(*startProp)

	switch {
	case comp.Props.Get(ical.PropDateTimeEnd) != nil:
		end, err = comp.Props.DateTime(ical.PropDateTimeEnd, time.UTC)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("failed to parse DTEND: %w", err)
		}
		// An all-day event whose DTEND repeats the start date lasts the day.
		if allDay && sameDate(start, end) {
			end = start.AddDate(0, 0, 1)
		}
	case comp.Props.Get(ical.PropDuration) != nil:
		d, err := comp.Props.Get(ical.PropDuration).Duration()
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("failed to parse DURATION: %w", err)
		}
		end = start.Add(d)
	case allDay:
		end = start.AddDate(0, 0, 1)
	default:
		// Timed events without DTEND or DURATION are instantaneous.
		end = start
	}

	if comp.Name == ical.CompToDo && comp.Props.Get(ical.PropDue) != nil {
		if due, err := comp.Props.DateTime(ical.PropDue, time.UTC); err == nil && due.After(end) {
			end = due
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end before start", ErrInvalidEvent)
	}
	return start, end, nil
}

// RuleFromRRULE converts a standard iCalendar RRULE value into a Rule
// starting at start. INTERVAL defaults to 1 and UNTIL becomes the rule's
// end. Parts without an equivalent are rejected with ErrUnsupportedRule.
func RuleFromRRULE(value string, start time.Time) (*rrule.Rule, error) {
	attrs := []rrule.Attribute{{Key: "DTSTART", Value: start.UTC().Format(time.RFC3339)}}
	hasInterval := false
	for _, part := range strings.Split(value, ";") {
		if part == "" {
			continue
		}
		key, val, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("malformed RRULE part %q", part)
		}
		switch key = strings.ToUpper(key); key {
		case "FREQ", "BYDAY", "BYMONTHDAY", "BYMONTH":
			attrs = append(attrs, rrule.Attribute{Key: key, Value: val})
		case "INTERVAL":
			hasInterval = true
			attrs = append(attrs, rrule.Attribute{Key: key, Value: val})
		case "UNTIL":
			until, err := parseUntil(val, start.Location())
			if err != nil {
				return nil, err
			}
			attrs = append(attrs, rrule.Attribute{Key: "DTEND", Value: until.UTC().Format(time.RFC3339)})
		case "WKST":
			if !strings.EqualFold(val, "MO") {
				return nil, fmt.Errorf("%w: WKST=%s", ErrUnsupportedRule, val)
			}
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedRule, key)
		}
	}
	if !hasInterval {
		attrs = append(attrs, rrule.Attribute{Key: "INTERVAL", Value: "1"})
	}

	parsed, err := rrule.ParseAttributes(attrs)
	if err != nil {
		return nil, err
	}
	// Rebuild with the original start so that wall clock times follow its
	// location across DST changes.
	var opts []rrule.Option
	if end, ok := parsed.End().Get(); ok {
		opts = append(opts, rrule.WithEnd(end))
	}
	return rrule.New(parsed.Frequency(), start, opts...)
}

// parseUntil reads an UNTIL value; a date covers that whole day.
func parseUntil(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(icalDateTimeUTC, value); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(icalDateTime, value, loc); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(icalDate, value, loc); err == nil {
		return t.AddDate(0, 0, 1).Add(-time.Second), nil
	}
	return time.Time{}, fmt.Errorf("invalid UNTIL %q", value)
}

// parseDateList parses an RDATE or EXDATE property. Date-only values are
// stored as midnight UTC, which EXDATE matching treats as a whole day.
func parseDateList(prop ical.Prop) ([]time.Time, error) {
	loc := time.UTC
	if tzid := param(prop, "TZID"); tzid != "" {
		l, err := time.LoadLocation(tzid)
		if err != nil {
			return nil, fmt.Errorf("unknown TZID %q: %w", tzid, err)
		}
		loc = l
	}
	var dates []time.Time
	for _, s := range strings.Split(prop.Value, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		// Periods (VALUE=PERIOD) only contribute their start
		s, _, _ = strings.Cut(s, "/")
		t, err := parseDateTime(s, loc)
		if err != nil {
			return nil, err
		}
		dates = append(dates, t)
	}
	return dates, nil
}

func parseDateTime(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(icalDateTimeUTC, value); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(icalDateTime, value, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(icalDate, value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid date-time %q", value)
}

func param(prop ical.Prop, name string) string {
	if values := prop.Params[name]; len(values) > 0 {
		return values[0]
	}
	return ""
}

func isDateValue(prop ical.Prop) bool {
	return strings.EqualFold(param(prop, "VALUE"), "DATE") || len(prop.Value) == len(icalDate)
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
