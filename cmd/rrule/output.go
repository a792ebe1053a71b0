package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/cyp0633/librrule/internal/xcal"
	"github.com/cyp0633/librrule/recurrence"
	"github.com/cyp0633/librrule/rrule"
)

type occurrenceJSON struct {
	Start time.Time  `json:"start"`
	End   *time.Time `json:"end,omitempty"`
	RDATE bool       `json:"rdate,omitempty"`
}

// writeOccurrences renders occurrences in the given format. rule may be nil.
func writeOccurrences(w io.Writer, format string, rule *rrule.Rule, occurrences []recurrence.TimeOccurrence, summary string) error {
	switch format {
	case "json":
		out := make([]occurrenceJSON, 0, len(occurrences))
		for _, occ := range occurrences {
			item := occurrenceJSON{Start: occ.Start, RDATE: occ.IsRDATE}
			if occ.End.After(occ.Start) {
				item.End = &occ.End
			}
			out = append(out, item)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "ics":
		return recurrence.EncodeICS(w, recurrence.ExportCalendar(occurrences, summary))
	case "xcal":
		return xcal.Encode(w, rule, occurrences, summary)
	default:
		for _, occ := range occurrences {
			line := occ.Start.Format(time.RFC3339)
			if occ.End.After(occ.Start) {
				line += " - " + occ.End.Format(time.RFC3339)
			}
			if occ.IsRDATE {
				line += " (rdate)"
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		return nil
	}
}
