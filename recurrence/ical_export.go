package recurrence

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
)

const productID = "-//librrule//Recurrence Export//EN"

// ExportCalendar turns expanded occurrences into a calendar with one VEVENT
// per occurrence. Every event gets a fresh UID.
func ExportCalendar(occurrences []TimeOccurrence, summary string) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Props.SetText(ical.PropVersion, "2.0")

	stamp := time.Now().UTC().Truncate(time.Second)
	for _, occ := range occurrences {
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, uuid.New().String())
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
		event.Props.SetDateTime(ical.PropDateTimeStart, occ.Start)
		if occ.End.After(occ.Start) {
			event.Props.SetDateTime(ical.PropDateTimeEnd, occ.End)
		}
		if summary != "" {
			event.Props.SetText(ical.PropSummary, summary)
		}
		cal.Children = append(cal.Children, event.Component)
	}
	return cal
}

// EncodeICS writes cal in iCalendar format.
func EncodeICS(w io.Writer, cal *ical.Calendar) error {
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}
