package calendar

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"
)

// iCalendar property names and fixed values
const (
	propVersion     = "VERSION"
	propProdID      = "PRODID"
	propCalName     = "X-WR-CALNAME"
	propCalScale    = "CALSCALE"
	propUID         = "UID"
	propSummary     = "SUMMARY"
	propDescription = "DESCRIPTION"
	propCategories  = "CATEGORIES"
	propDTStart     = "DTSTART"
	propDTStamp     = "DTSTAMP"

	icsVersion = "2.0"
	icsProdID  = "-//Inzalo Yelanga//Cultural Calendar//EN"
	icsDomain  = "inzalo-yelanga"
)

// WriteICS writes an iCalendar feed for the given cultural year: the first
// day of each month, every sacred day, and any Year Days before the next New
// Year. stamp is used as DTSTAMP for every event.
func WriteICS(w io.Writer, culturalYear int, stamp time.Time) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(propVersion, icsVersion)
	cal.Props.SetText(propProdID, icsProdID)
	cal.Props.SetText(propCalName, fmt.Sprintf("Inzalo Yelanga %d", culturalYear))
	cal.Props.SetText(propCalScale, "GREGORIAN")

	dtStamp := ical.NewProp(propDTStamp)
	dtStamp.SetDateTime(stamp.UTC())

	add := func(uid, summary, description, category string, day time.Time) {
		event := ical.NewEvent()
		event.Props.SetText(propUID, fmt.Sprintf("%s-%d@%s", uid, culturalYear, icsDomain))
		event.Props.SetText(propSummary, summary)
		if description != "" {
			event.Props.SetText(propDescription, description)
		}
		event.Props.SetText(propCategories, category)

		start := ical.NewProp(propDTStart)
		start.SetDate(day)
		event.Props.Set(start)
		event.Props.Set(dtStamp)

		cal.Children = append(cal.Children, event.Component)
	}

	for i := range months {
		m := months[i]
		start, err := MonthStart(culturalYear, m.Index)
		if err != nil {
			return err
		}
		add(fmt.Sprintf("month-%02d", m.Ordinal),
			fmt.Sprintf("1 %s: %s", m.Name, m.Meaning),
			m.Activities, "MONTH", start)
	}

	epoch := time.Date(culturalYear, NewYearMonth, NewYearDay, 0, 0, 0, 0, time.UTC)
	next := epoch.AddDate(1, 0, 0)
	for i := range months {
		for _, sd := range months[i].SacredDays {
			day := time.Date(culturalYear, sd.CivilMonth, sd.CivilDay, 0, 0, 0, 0, time.UTC)
			if day.Before(epoch) {
				day = day.AddDate(1, 0, 0)
			}
			add("sacred-"+uidPart(sd.Name), sd.Name, sd.Description, "SACRED", day)
		}
	}

	for day := epoch.AddDate(0, 0, CycleLength); day.Before(next); day = day.AddDate(0, 0, 1) {
		add("yearday-"+FormatDate(day), "Year Day",
			"A day outside the thirteen months, before the New Year.", "YEARDAY", day)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encode ical: %w", err)
	}
	return nil
}

func uidPart(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "-"))
}
