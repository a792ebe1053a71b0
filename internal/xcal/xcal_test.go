package xcal

import (
	"bytes"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyp0633/librrule/recurrence"
	"github.com/cyp0633/librrule/rrule"
)

func TestEncode(t *testing.T) {
	rule, err := rrule.Parse("FREQ=WEEKLY;INTERVAL=1;BYDAY=MO;DTSTART=2024-01-01T09:00:00Z;DURATION=PT1H")
	require.NoError(t, err)
	occurrences := []recurrence.TimeOccurrence{
		{Start: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), End: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)},
		{Start: time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC), End: time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, rule, occurrences, "Standup"))
	assert.Contains(t, buf.String(), `<?xml version="1.0" encoding="utf-8"?>`)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(buf.Bytes()))
	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, "icalendar", root.Tag)
	assert.Equal(t, Namespace, root.SelectAttrValue("xmlns", ""))

	source := root.FindElement("./vcalendar/properties/x-rrule-source/text")
	require.NotNil(t, source)
	assert.Equal(t, rule.String(), source.Text())

	events := root.FindElements("//vevent")
	require.Len(t, events, 2)

	start := events[0].FindElement("./properties/dtstart/date-time")
	require.NotNil(t, start)
	assert.Equal(t, "2024-01-01T09:00:00Z", start.Text())
	assert.NotNil(t, events[0].FindElement("./properties/dtend"))
	assert.Nil(t, events[1].FindElement("./properties/dtend"), "zero-length occurrence has no dtend")

	summary := events[1].FindElement("./properties/summary/text")
	require.NotNil(t, summary)
	assert.Equal(t, "Standup", summary.Text())

	uid0 := events[0].FindElement("./properties/uid/text").Text()
	uid1 := events[1].FindElement("./properties/uid/text").Text()
	assert.NotEqual(t, uid0, uid1)
}

func TestDocumentWithoutRule(t *testing.T) {
	doc := Document(nil, nil, "")
	assert.Nil(t, doc.FindElement("//x-rrule-source"))
	assert.Empty(t, doc.FindElements("//vevent"))
	assert.NotNil(t, doc.FindElement("//vcalendar/properties/prodid"))
}

func TestZonedDateTime(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	start := time.Date(2024, 3, 11, 9, 0, 0, 0, ny)

	doc := Document(nil, []recurrence.TimeOccurrence{{Start: start}}, "")
	dtstart := doc.FindElement("//vevent/properties/dtstart")
	require.NotNil(t, dtstart)
	assert.Equal(t, "America/New_York", dtstart.FindElement("./parameters/tzid/text").Text())
	assert.Equal(t, "2024-03-11T09:00:00", dtstart.FindElement("./date-time").Text())

	fixed := time.Date(2024, 3, 11, 9, 0, 0, 0, time.Local)
	doc = Document(nil, []recurrence.TimeOccurrence{{Start: fixed}}, "")
	dtstart = doc.FindElement("//vevent/properties/dtstart")
	assert.Nil(t, dtstart.FindElement("./parameters"))
	assert.Equal(t, fixed.UTC().Format(utcLayout), dtstart.FindElement("./date-time").Text())
}
