// Package xcal renders expanded occurrences as an xCal (RFC 6321) document.
package xcal

import (
	"fmt"
	"io"
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"github.com/cyp0633/librrule/recurrence"
	"github.com/cyp0633/librrule/rrule"
)

// Namespace is the xCal namespace
const Namespace = "urn:ietf:params:xml:ns:icalendar-2.0"

const (
	productID      = "-//librrule//Recurrence Export//EN"
	sourceProperty = "x-rrule-source"
	utcLayout      = "2006-01-02T15:04:05Z"
	localLayout    = "2006-01-02T15:04:05"
)

// Document builds the xCal tree: one vevent per occurrence, with the rule
// text kept on the calendar in an x-rrule-source property.
func Document(rule *rrule.Rule, occurrences []recurrence.TimeOccurrence, summary string) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)
	root := doc.CreateElement("icalendar")
	root.CreateAttr("xmlns", Namespace)

	vcalendar := root.CreateElement("vcalendar")
	props := vcalendar.CreateElement("properties")
	textProperty(props, "prodid", productID)
	textProperty(props, "version", "2.0")
	if rule != nil {
		textProperty(props, sourceProperty, rule.String())
	}

	components := vcalendar.CreateElement("components")
	stamp := time.Now().UTC()
	for _, occ := range occurrences {
		vevent := components.CreateElement("vevent")
		eventProps := vevent.CreateElement("properties")
		textProperty(eventProps, "uid", uuid.New().String())
		dateTimeProperty(eventProps, "dtstamp", stamp)
		dateTimeProperty(eventProps, "dtstart", occ.Start)
		if occ.End.After(occ.Start) {
			dateTimeProperty(eventProps, "dtend", occ.End)
		}
		if summary != "" {
			textProperty(eventProps, "summary", summary)
		}
	}
	return doc
}

// Encode writes the indented Document to w.
func Encode(w io.Writer, rule *rrule.Rule, occurrences []recurrence.TimeOccurrence, summary string) error {
	doc := Document(rule, occurrences, summary)
	doc.Indent(2)
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write xCal document: %w", err)
	}
	return nil
}

func textProperty(parent *etree.Element, name, value string) {
	parent.CreateElement(name).CreateElement("text").SetText(value)
}

// dateTimeProperty writes t in UTC unless its location has an IANA name,
// in which case local time and a tzid parameter are used.
func dateTimeProperty(parent *etree.Element, name string, t time.Time) {
	prop := parent.CreateElement(name)
	if tzid := zoneName(t.Location()); tzid != "" {
		params := prop.CreateElement("parameters")
		params.CreateElement("tzid").CreateElement("text").SetText(tzid)
		prop.CreateElement("date-time").SetText(t.Format(localLayout))
		return
	}
	prop.CreateElement("date-time").SetText(t.UTC().Format(utcLayout))
}

func zoneName(loc *time.Location) string {
	switch name := loc.String(); name {
	case "", "UTC", "Local":
		return ""
	default:
		return name
	}
}
