package rrule

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	rrulego "github.com/teambition/rrule-go"
)

// expandReference expands the same recurrence with rrule-go, bounded by
// UNTIL, for rules whose semantics both engines share.
func expandReference(t *testing.T, start, until time.Time, rrule string) []time.Time {
	t.Helper()
	text := fmt.Sprintf("DTSTART:%s\nRRULE:%s;UNTIL=%s",
		start.UTC().Format("20060102T150405Z"), rrule, until.UTC().Format("20060102T150405Z"))
	set, err := rrulego.StrToRRuleSet(text)
	require.NoError(t, err, text)
	return set.All()
}

func TestMatchesReferenceEngine(t *testing.T) {
	tests := []struct {
		name      string
		ours      string
		reference string
	}{
		{"daily", "FREQ=DAILY;INTERVAL=3", "FREQ=DAILY;INTERVAL=3"},
		{"weekly", "FREQ=WEEKLY;INTERVAL=1;BYDAY=MO,TU", "FREQ=WEEKLY;INTERVAL=1;BYDAY=MO,TU"},
		{"biweekly", "FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,WE,FR", "FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,WE,FR;WKST=MO"},
		{"month day 31", "FREQ=MONTHLY;INTERVAL=1;BYMONTHDAY=31", "FREQ=MONTHLY;INTERVAL=1;BYMONTHDAY=31"},
		{"first monday", "FREQ=MONTHLY;INTERVAL=1;BYDAY=1MO", "FREQ=MONTHLY;INTERVAL=1;BYDAY=1MO"},
		{"last friday", "FREQ=MONTHLY;INTERVAL=2;BYDAY=-1FR", "FREQ=MONTHLY;INTERVAL=2;BYDAY=-1FR"},
		{"fifth weekdays", "FREQ=MONTHLY;INTERVAL=1;BYDAY=5MO,5SA", "FREQ=MONTHLY;INTERVAL=1;BYDAY=5MO,5SA"},
		{"leap day", "FREQ=YEARLY;INTERVAL=1;BYMONTH=2;BYMONTHDAY=29", "FREQ=YEARLY;INTERVAL=1;BYMONTH=2;BYMONTHDAY=29"},
		{"quarterly firsts", "FREQ=YEARLY;INTERVAL=1;BYMONTH=1,4,7,10;BYMONTHDAY=1,31", "FREQ=YEARLY;INTERVAL=1;BYMONTH=1,4,7,10;BYMONTHDAY=1,31"},
		{"hourly", "FREQ=HOURLY;INTERVAL=7", "FREQ=HOURLY;INTERVAL=7"},
	}

	start := time.Date(2023, time.January, 4, 10, 30, 0, 0, time.UTC)
	until := time.Date(2031, time.December, 31, 0, 0, 0, 0, time.UTC)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Parse(fmt.Sprintf("%s;DTSTART=%s;DTEND=%s", tt.ours, start.Format(time.RFC3339), until.Format(time.RFC3339)))
			require.NoError(t, err)

			var got []time.Time
			for occ := range r.All() {
				got = append(got, occ)
			}
			want := expandReference(t, start, until, tt.reference)
			require.NotEmpty(t, want)
			require.Len(t, got, len(want))
			for i := range want {
				assert.True(t, want[i].Equal(got[i]), "occurrence %d: want %s, got %s", i, want[i], got[i])
			}
		})
	}
}
