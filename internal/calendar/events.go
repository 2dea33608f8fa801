package calendar

import "time"

// EventType distinguishes the kinds of calendar events.
type EventType string

const (
	EventTypeCultural EventType = "cultural"
	EventTypeLunar    EventType = "lunar"
)

// Event is a notable day within a civil month.
type Event struct {
	Date         string    `json:"date"`
	Type         EventType `json:"type"`
	Name         string    `json:"name"`
	Significance string    `json:"significance"`
}

// MonthEvents lists the sacred days and the onsets of the new and full moon
// within a civil month, in date order.
//
// A lunar event is reported on the first civil day (at midnight UTC) whose
// estimated phase is new or full.
func MonthEvents(year int, month time.Month) []Event {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	events := []Event{}
	prev := EstimateLunarPhase(first.AddDate(0, 0, -1)).Phase
	for _, day := range DaysInRange(first, last) {
		if sd, ok := SacredDayOn(day); ok {
			events = append(events, Event{
				Date:         FormatDate(day),
				Type:         EventTypeCultural,
				Name:         sd.Name,
				Significance: sd.Description,
			})
		}

		phase := EstimateLunarPhase(day).Phase
		if phase != prev {
			switch phase {
			case PhaseNew:
				events = append(events, Event{
					Date:         FormatDate(day),
					Type:         EventTypeLunar,
					Name:         PhaseNew.Label(),
					Significance: "Time for new beginnings and setting intentions",
				})
			case PhaseFull:
				events = append(events, Event{
					Date:         FormatDate(day),
					Type:         EventTypeLunar,
					Name:         PhaseFull.Label(),
					Significance: "Time for completion, gratitude, and release",
				})
			}
		}
		prev = phase
	}

	return events
}
