package calendar

import (
	"math"
	"time"
)

// Lunar constants
const (
	// SynodicMonth is the mean length of a lunation in days.
	SynodicMonth = 29.530588853

	// phaseCount is the number of named phases the lunation is split into.
	phaseCount = 8
)

// ReferenceNewMoon is a historical new moon (2000-01-06 18:14 UTC) that all
// lunar estimates are measured from.
var ReferenceNewMoon = time.Date(2000, time.January, 6, 18, 14, 0, 0, time.UTC)

// LunarPhase names one eighth of the lunation.
type LunarPhase string

const (
	PhaseNew            LunarPhase = "new"
	PhaseWaxingCrescent LunarPhase = "waxing_crescent"
	PhaseFirstQuarter   LunarPhase = "first_quarter"
	PhaseWaxingGibbous  LunarPhase = "waxing_gibbous"
	PhaseFull           LunarPhase = "full"
	PhaseWaningGibbous  LunarPhase = "waning_gibbous"
	PhaseLastQuarter    LunarPhase = "last_quarter"
	PhaseWaningCrescent LunarPhase = "waning_crescent"
)

// LunarPhases returns the phases in cycle order, starting at the new moon.
func LunarPhases() []LunarPhase {
	return []LunarPhase{
		PhaseNew,
		PhaseWaxingCrescent,
		PhaseFirstQuarter,
		PhaseWaxingGibbous,
		PhaseFull,
		PhaseWaningGibbous,
		PhaseLastQuarter,
		PhaseWaningCrescent,
	}
}

// IsValid checks if a lunar phase is one of the eight named phases.
func (p LunarPhase) IsValid() bool {
	for _, valid := range LunarPhases() {
		if p == valid {
			return true
		}
	}
	return false
}

// Label returns the display name of the phase, e.g. "Waxing Crescent".
func (p LunarPhase) Label() string {
	switch p {
	case PhaseNew:
		return "New Moon"
	case PhaseWaxingCrescent:
		return "Waxing Crescent"
	case PhaseFirstQuarter:
		return "First Quarter"
	case PhaseWaxingGibbous:
		return "Waxing Gibbous"
	case PhaseFull:
		return "Full Moon"
	case PhaseWaningGibbous:
		return "Waning Gibbous"
	case PhaseLastQuarter:
		return "Last Quarter"
	case PhaseWaningCrescent:
		return "Waning Crescent"
	default:
		return string(p)
	}
}

// LunarInfo is an approximate description of the moon at an instant.
type LunarInfo struct {
	Phase               LunarPhase `json:"phase"`
	IlluminationPercent int        `json:"illumination_percent"`
	AgeDays             float64    `json:"age_days"`  // days since the last new moon
	LunarDay            int        `json:"lunar_day"` // 1-based day of the lunation
	Lunation            int        `json:"lunation"`  // lunations since ReferenceNewMoon
}

// EstimateLunarPhase approximates the lunar phase at t.
//
// The lunation is split into eight equal bands starting at the new moon.
// Illumination ramps linearly from 0 at the new moon to 100 at mid-cycle and
// back to 0. The estimate is periodic, not astronomically precise.
func EstimateLunarPhase(t time.Time) LunarInfo {
	elapsed := float64(t.Unix()-ReferenceNewMoon.Unix()) / secondsPerDay

	lunation := math.Floor(elapsed / SynodicMonth)
	age := elapsed - lunation*SynodicMonth
	if age < 0 || age >= SynodicMonth {
		age = 0
	}

	band := int(age / (SynodicMonth / phaseCount))
	if band >= phaseCount {
		band = phaseCount - 1
	}

	half := SynodicMonth / 2
	illumination := 100 * (1 - math.Abs(age-half)/half)

	return LunarInfo{
		Phase:               LunarPhases()[band],
		IlluminationPercent: int(math.Round(illumination)),
		AgeDays:             math.Round(age*100) / 100,
		LunarDay:            int(age) + 1,
		Lunation:            int(lunation),
	}
}
