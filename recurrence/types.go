package recurrence

import (
	"errors"
	"time"

	"github.com/cyp0633/librrule/rrule"
)

// ErrInvalidRange is returned when a query range ends before it starts.
var ErrInvalidRange = errors.New("range end before range start")

// Event is a calendar entry that may repeat. The master occurrence at Start
// always counts, RDATE adds further occurrences and EXDATE removes them.
type Event struct {
	Start  time.Time
	End    time.Time   // zero when the length comes from the rule's duration
	Rule   *rrule.Rule // nil for a single event
	RDATE  []time.Time // additional recurrence dates
	EXDATE []time.Time // excluded occurrences; midnight UTC excludes the whole day
}

// Length returns the duration of every occurrence of the event.
func (ev Event) Length() time.Duration {
	if !ev.End.IsZero() {
		return ev.End.Sub(ev.Start)
	}
	if ev.Rule != nil {
		return ev.Rule.Duration()
	}
	return 0
}

// TimeOccurrence represents a single occurrence of an event in time
type TimeOccurrence struct {
	Start   time.Time
	End     time.Time
	IsRDATE bool // added by RDATE rather than generated by the rule
}

// ExpansionOptions controls how recurrence expansion behaves
type ExpansionOptions struct {
	MaxOccurrences int           `yaml:"max_occurrences"` // 0 = unlimited
	MaxTimeSpan    time.Duration `yaml:"max_time_span"`   // 0 = unlimited
}

// DefaultExpansionOptions provides sensible defaults for expansion
var DefaultExpansionOptions = ExpansionOptions{
	MaxOccurrences: 1000,
	MaxTimeSpan:    365 * 24 * time.Hour * 2,
}
