/*
Package rrule parses recurrence rules modelled on the iCalendar RRULE and
lazily generates their occurrences.

# Basic Usage

	r, err := rrule.Parse("FREQ=MONTHLY;INTERVAL=1;DTSTART=2023-01-01T12:00:00Z;BYDAY=1MO")
	if err != nil {
		log.Fatal(err)
	}
	for t := range r.All() {
		fmt.Println(t) // first Monday of every month at 12:00 UTC
	}

A Rule is immutable. Every call to Cursor, Iterator or All starts an
independent traversal, so one Rule can be shared between goroutines.

# Grammar

Attributes are semicolon separated KEY=VALUE pairs:
  - FREQ (required): SECONDLY, MINUTELY, HOURLY, DAILY, WEEKLY, MONTHLY or YEARLY
  - INTERVAL (required): positive integer
  - DTSTART (required): instant such as 2023-01-01T12:00:00Z or 20230101T120000Z
  - DTEND: last possible occurrence; takes precedence over DURATION
  - DURATION: ISO-8601 duration of each occurrence, e.g. PT1H
  - BYTIME: DAILY only, HH:MM[:SS] list
  - BYDAY: WEEKLY weekday codes (MO,TU) or MONTHLY ordinal codes (1MO,-1FR)
  - BYMONTHDAY: MONTHLY day list, or YEARLY together with BYMONTH
  - BYMONTH: YEARLY month list, combined with every BYMONTHDAY

Without DTEND, occurrences stop at MaxDate (9999-12-31T23:59:59Z).

# Calendar Edge Cases

Periods that contain no valid date are skipped silently: BYMONTHDAY=31 has
no occurrence in April, 5MO has none in a month with four Mondays and
February 29th only occurs in leap years.
*/
package rrule
