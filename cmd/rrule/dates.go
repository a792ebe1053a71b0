package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var errUnknownDate = errors.New("unrecognized date")

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func newDateParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// parseDate accepts RFC 3339, a bare UTC date or date-time, or an English
// phrase such as "next friday at 9am" resolved against now.
func parseDate(w *when.Parser, value string, now time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	result, err := w.Parse(value, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date %q: %w", value, err)
	}
	if result == nil {
		return time.Time{}, fmt.Errorf("%w: %q", errUnknownDate, value)
	}
	return result.Time, nil
}
