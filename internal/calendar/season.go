package calendar

import "time"

// Season is the closed set of seasons a cultural month belongs to.
type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonAutumn Season = "autumn"
	SeasonWinter Season = "winter"
)

// ValidSeasons returns all valid seasons.
func ValidSeasons() []Season {
	return []Season{
		SeasonSpring,
		SeasonSummer,
		SeasonAutumn,
		SeasonWinter,
	}
}

// IsValid checks if a season is valid.
func (s Season) IsValid() bool {
	for _, valid := range ValidSeasons() {
		if s == valid {
			return true
		}
	}
	return false
}

// Description returns the general character of the season.
func (s Season) Description() string {
	switch s {
	case SeasonSpring:
		return "Time of renewal, growth, and new beginnings. Nature awakens and life flourishes."
	case SeasonSummer:
		return "Time of abundance, harvest, and celebration. The sun is at its strongest."
	case SeasonAutumn:
		return "Time of reflection, wisdom, and preparation. Nature prepares for rest."
	case SeasonWinter:
		return "Time of introspection, preservation, and ancestral connection. Rest and renewal."
	default:
		return ""
	}
}

// SeasonDetails is the season of a civil date together with the theming
// data of the cultural month it falls in.
type SeasonDetails struct {
	Season            Season   `json:"season"`
	SeasonDescription string   `json:"season_description"`
	Description       string   `json:"description"`
	Activities        string   `json:"activities"`
	Colors            []string `json:"colors"`
}

// SeasonInfo returns the season details for the civil date of t.
func SeasonInfo(t time.Time) SeasonDetails {
	cd := ToCulturalDate(t)
	m := months[cd.MonthIndex]
	return SeasonDetails{
		Season:            m.Season,
		SeasonDescription: m.SeasonDescription,
		Description:       m.Season.Description(),
		Activities:        m.Activities,
		Colors:            []string{m.ColorPrimary, m.ColorGradientEnd},
	}
}
