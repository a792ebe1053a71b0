// Package calendar holds the date arithmetic shared by the rule engine.
// All functions are pure and operate on the proleptic Gregorian calendar.
package calendar

import (
	"time"

	"cloudeng.io/datetime"
	"github.com/samber/mo"
)

// IsLeapYear reports whether year has a February 29th.
func IsLeapYear(year int) bool {
	return datetime.IsLeap(year)
}

// DaysInMonth returns the number of days of month in year.
func DaysInMonth(year int, month time.Month) int {
	return datetime.DaysInMonth(year, datetime.Month(month))
}

// MaxDaysInMonth returns the largest day number month can ever have,
// i.e. its length in a leap year.
func MaxDaysInMonth(month time.Month) int {
	return DaysInMonth(2000, month)
}

// WeekdayOf returns the weekday of the given date.
func WeekdayOf(year int, month time.Month, day int) time.Weekday {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Weekday()
}

// MondayIndex maps a weekday to its position in a Monday-first week
// (Monday=0 ... Sunday=6).
func MondayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// NthWeekdayOfMonth resolves "the n-th <weekday> of month" to a day number.
// A positive ordinal counts from the first day of the month, a negative one
// from the last day backwards. mo.None is returned when the month has fewer
// than |ordinal| such weekdays or the ordinal is zero.
func NthWeekdayOfMonth(year int, month time.Month, wd time.Weekday, ordinal int) mo.Option[int] {
	dim := DaysInMonth(year, month)
	switch {
	case ordinal > 0:
		first := WeekdayOf(year, month, 1)
		day := 1 + (int(wd)-int(first)+7)%7 + 7*(ordinal-1)
		if day > dim {
			return mo.None[int]()
		}
		return mo.Some(day)
	case ordinal < 0:
		last := WeekdayOf(year, month, dim)
		day := dim - (int(last)-int(wd)+7)%7 - 7*(-ordinal-1)
		if day < 1 {
			return mo.None[int]()
		}
		return mo.Some(day)
	default:
		return mo.None[int]()
	}
}

// StartOfDay truncates t to midnight in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns midnight of the Monday on or before t.
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	return day.AddDate(0, 0, -MondayIndex(day.Weekday()))
}

// StartOfMonth returns midnight of the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// StartOfYear returns midnight of January 1st of t's year.
func StartOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}
