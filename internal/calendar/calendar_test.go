package calendar

import (
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
)

func TestIsLeapYear(t *testing.T) {
	tests := []struct {
		year int
		leap bool
	}{
		{2023, false},
		{2024, true},
		{1900, false},
		{2000, true},
		{2100, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.leap, IsLeapYear(tt.year), "year %d", tt.year)
	}
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 31, DaysInMonth(2023, time.January))
	assert.Equal(t, 28, DaysInMonth(2023, time.February))
	assert.Equal(t, 29, DaysInMonth(2024, time.February))
	assert.Equal(t, 30, DaysInMonth(2023, time.April))
	assert.Equal(t, 31, DaysInMonth(2023, time.December))
	assert.Equal(t, 29, MaxDaysInMonth(time.February))
	assert.Equal(t, 30, MaxDaysInMonth(time.November))
}

func TestWeekdayOf(t *testing.T) {
	assert.Equal(t, time.Sunday, WeekdayOf(2023, time.January, 1))
	assert.Equal(t, time.Monday, WeekdayOf(2023, time.January, 2))
	assert.Equal(t, time.Thursday, WeekdayOf(2024, time.February, 29))
}

func TestMondayIndex(t *testing.T) {
	assert.Equal(t, 0, MondayIndex(time.Monday))
	assert.Equal(t, 4, MondayIndex(time.Friday))
	assert.Equal(t, 6, MondayIndex(time.Sunday))
}

func TestNthWeekdayOfMonth(t *testing.T) {
	tests := []struct {
		name    string
		year    int
		month   time.Month
		weekday time.Weekday
		ordinal int
		want    mo.Option[int]
	}{
		{"first monday january", 2023, time.January, time.Monday, 1, mo.Some(2)},
		{"first monday february", 2023, time.February, time.Monday, 1, mo.Some(6)},
		{"first sunday on day one", 2023, time.January, time.Sunday, 1, mo.Some(1)},
		{"fifth monday exists", 2023, time.January, time.Monday, 5, mo.Some(30)},
		{"fifth monday missing", 2023, time.February, time.Monday, 5, mo.None[int]()},
		{"last friday", 2023, time.January, time.Friday, -1, mo.Some(27)},
		{"last tuesday on last day", 2023, time.January, time.Tuesday, -1, mo.Some(31)},
		{"fifth from last monday", 2023, time.January, time.Monday, -5, mo.Some(2)},
		{"fifth from last missing", 2023, time.February, time.Monday, -5, mo.None[int]()},
		{"leap february last thursday", 2024, time.February, time.Thursday, -1, mo.Some(29)},
		{"zero ordinal", 2023, time.January, time.Monday, 0, mo.None[int]()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NthWeekdayOfMonth(tt.year, tt.month, tt.weekday, tt.ordinal))
		})
	}
}

func TestPeriodStarts(t *testing.T) {
	ts := time.Date(2023, time.March, 15, 13, 45, 10, 0, time.UTC) // Wednesday
	assert.Equal(t, time.Date(2023, time.March, 15, 0, 0, 0, 0, time.UTC), StartOfDay(ts))
	assert.Equal(t, time.Date(2023, time.March, 13, 0, 0, 0, 0, time.UTC), StartOfWeek(ts))
	assert.Equal(t, time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC), StartOfMonth(ts))
	assert.Equal(t, time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC), StartOfYear(ts))

	sunday := time.Date(2023, time.January, 1, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2022, time.December, 26, 0, 0, 0, 0, time.UTC), StartOfWeek(sunday))
}
