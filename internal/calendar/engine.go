package calendar

import (
	"errors"
	"fmt"
	"time"
)

// Error types
var (
	// ErrInvalidDate is returned when a civil date cannot be parsed.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidIndex is returned for month indices outside [0, 12].
	ErrInvalidIndex = errors.New("invalid month index")
)

func invalidIndex(index int) error {
	return fmt.Errorf("%w: %d (want 0..%d)", ErrInvalidIndex, index, MonthsPerYear-1)
}

const secondsPerDay = 24 * 60 * 60

// CulturalDate is the position of a civil date within the cultural calendar.
//
// It is a pure projection of the civil date and is never the record of
// truth; recompute it rather than persisting it.
type CulturalDate struct {
	CivilDate    string `json:"civil_date"`
	CulturalYear int    `json:"cultural_year"`
	MonthIndex   int    `json:"month_index"`
	MonthName    string `json:"month_name"`
	DayOfMonth   int    `json:"day_of_month"`

	// DayOfYear counts civil days since the New Year anchor without the
	// 364-day reduction. It reaches 364 (and 365 in leap spans) on the
	// days before the next New Year, which the month/day fields wrap
	// back onto the start of the table. YearDay flags those days.
	DayOfYear int  `json:"day_of_year"`
	YearDay   bool `json:"year_day"`

	Season            Season     `json:"season"`
	SeasonDescription string     `json:"season_description"`
	Significance      string     `json:"significance,omitempty"`
	LunarPhase        LunarPhase `json:"lunar_phase"`
	LunarIllumination int        `json:"lunar_illumination_percent"`
}

// HasSignificance reports whether the date is a sacred day.
func (d CulturalDate) HasSignificance() bool {
	return d.Significance != ""
}

// ToCulturalDate converts a civil date to its cultural calendar position.
//
// Only the civil year, month and day of t (in t's own location) are used for
// the calendar position; the lunar estimate uses the full instant.
func ToCulturalDate(t time.Time) CulturalDate {
	day := civilDay(t)
	epoch := EpochStart(day)
	elapsed := daysBetween(epoch, day)
	monthIndex, dayOfMonth := ProjectMonthDay(DayOfCycle(day, epoch))
	month := months[monthIndex]
	lunar := EstimateLunarPhase(t)

	cd := CulturalDate{
		CivilDate:         FormatDate(day),
		CulturalYear:      epoch.Year(),
		MonthIndex:        monthIndex,
		MonthName:         month.Name,
		DayOfMonth:        dayOfMonth,
		DayOfYear:         elapsed,
		YearDay:           elapsed >= CycleLength,
		Season:            month.Season,
		SeasonDescription: month.SeasonDescription,
		LunarPhase:        lunar.Phase,
		LunarIllumination: lunar.IlluminationPercent,
	}
	if sd, ok := SacredDayOn(day); ok {
		cd.Significance = sd.Name
	}
	return cd
}

// EpochStart returns the most recent cultural New Year (September 23) on or
// before the civil date of t, as midnight UTC.
func EpochStart(t time.Time) time.Time {
	day := civilDay(t)
	start := time.Date(day.Year(), NewYearMonth, NewYearDay, 0, 0, 0, 0, time.UTC)
	if day.Before(start) {
		start = time.Date(day.Year()-1, NewYearMonth, NewYearDay, 0, 0, 0, 0, time.UTC)
	}
	return start
}

// DayOfCycle returns the number of civil days from epoch to date reduced
// modulo CycleLength. The result is always in [0, 363], including when date
// precedes epoch.
func DayOfCycle(date, epoch time.Time) int {
	return floorMod(daysBetween(civilDay(epoch), civilDay(date)), CycleLength)
}

// ProjectMonthDay splits a day-of-cycle into a 0-based month index and a
// 1-based day of month.
func ProjectMonthDay(dayOfCycle int) (monthIndex, dayOfMonth int) {
	dayOfCycle = floorMod(dayOfCycle, CycleLength)
	return dayOfCycle / DaysPerMonth, dayOfCycle%DaysPerMonth + 1
}

// FindSignificance looks up the month table's sacred-day label for a
// month index and day of month. The first matching entry wins.
func FindSignificance(monthIndex, dayOfMonth int) (string, bool) {
	if monthIndex < 0 || monthIndex >= MonthsPerYear {
		return "", false
	}
	for _, sd := range months[monthIndex].SacredDays {
		if sd.DayOfMonth == dayOfMonth {
			return sd.Name, true
		}
	}
	return "", false
}

// SacredDayOn returns the sacred day celebrated on the civil month and day
// of t, if any.
func SacredDayOn(t time.Time) (SacredDay, bool) {
	_, m, d := t.Date()
	for i := range months {
		for _, sd := range months[i].SacredDays {
			if sd.CivilMonth == m && sd.CivilDay == d {
				return sd, true
			}
		}
	}
	return SacredDay{}, false
}

// MonthStart returns the civil date on which the given month of the given
// cultural year begins.
func MonthStart(culturalYear, monthIndex int) (time.Time, error) {
	if monthIndex < 0 || monthIndex >= MonthsPerYear {
		return time.Time{}, invalidIndex(monthIndex)
	}
	epoch := time.Date(culturalYear, NewYearMonth, NewYearDay, 0, 0, 0, 0, time.UTC)
	return epoch.AddDate(0, 0, monthIndex*DaysPerMonth), nil
}

// FormatCulturalDate renders a cultural date as "8 Ra, 2024".
func FormatCulturalDate(d CulturalDate) string {
	return fmt.Sprintf("%d %s, %d", d.DayOfMonth, d.MonthName, d.CulturalYear)
}

// civilDay drops the time of day and location, keeping the civil date.
func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns floor((to - from) / 1 day).
func daysBetween(from, to time.Time) int {
	return int(floorDiv(to.Unix()-from.Unix(), secondsPerDay))
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, n int) int {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}
