// Package calendar implements the Inzalo Yelanga cultural calendar.
//
// The cultural year has thirteen months of twenty-eight days (364 days) and
// begins on September 23 of the civil calendar. All functions in this package
// are pure: they depend only on their arguments and the month table below,
// which is built once and never mutated.
package calendar

import "time"

// Calendar shape constants
const (
	// MonthsPerYear is the number of cultural months in a cycle.
	MonthsPerYear = 13

	// DaysPerMonth is the fixed length of every cultural month.
	DaysPerMonth = 28

	// CycleLength is the number of days the month table covers.
	CycleLength = MonthsPerYear * DaysPerMonth

	// NewYearMonth and NewYearDay anchor the start of every cultural year.
	NewYearMonth = time.September
	NewYearDay   = 23
)

// SacredDay is a named day of special significance within a cultural month.
//
// DayOfMonth is the label the month table gives the day (1..28). CivilMonth
// and CivilDay are the civil date the day is celebrated on; significance is
// resolved against the civil anchor, see SacredDayOn.
type SacredDay struct {
	DayOfMonth  int        `json:"day_of_month"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CivilMonth  time.Month `json:"civil_month"`
	CivilDay    int        `json:"civil_day"`
}

// CulturalMonth describes one of the thirteen months of the cultural year.
type CulturalMonth struct {
	Index             int         `json:"index"`   // 0-based position in the table
	Ordinal           int         `json:"ordinal"` // 1-based month number
	Name              string      `json:"name"`
	Meaning           string      `json:"meaning"`
	Season            Season      `json:"season"`
	SeasonDescription string      `json:"season_description"`
	Activities        string      `json:"activities"`
	ColorPrimary      string      `json:"color_primary"`
	ColorGradientEnd  string      `json:"color_gradient_end"`
	SacredDays        []SacredDay `json:"sacred_days"`
}

// months is the month table. Index i holds the month with Index == i.
var months = [MonthsPerYear]CulturalMonth{
	{
		Index:             0,
		Ordinal:           1,
		Name:              "Asar",
		Meaning:           "Month of Genesis / New Beginnings",
		Season:            SeasonSpring,
		SeasonDescription: "Spring (Southern Hemisphere)",
		Activities: "Asar opens the year with the African New Year on September 23rd. It is a time of spiritual " +
			"cleansing and of setting intentions for the cycle ahead: purification ceremonies, planting the first " +
			"seeds of the season and rites of rebirth that reconnect the community with ancestral wisdom.",
		ColorPrimary:     "#E6B0AA",
		ColorGradientEnd: "#D7BDE2",
		SacredDays: []SacredDay{
			{
				DayOfMonth: 23,
				Name:       "African New Year",
				Description: "The African New Year (Zep Tepi) marks genesis and renewal. Communities gather for " +
					"purification, plant the first seeds and celebrate the return of the nurturing energy of the Sun " +
					"to the Southern Hemisphere.",
				CivilMonth: time.September,
				CivilDay:   23,
			},
		},
	},
	{
		Index:             1,
		Ordinal:           2,
		Name:              "Geb",
		Meaning:           "Month of Growth",
		Season:            SeasonSpring,
		SeasonDescription: "Late Spring / Early Summer",
		Activities: "Geb is given to nurturing growth in the fields and in oneself. Young crops are tended, skills " +
			"are learned and community bonds are strengthened through sustainable practice.",
		ColorPrimary:     "#D7BDE2",
		ColorGradientEnd: "#A9CCE3",
	},
	{
		Index:             2,
		Ordinal:           3,
		Name:              "Het-Hor",
		Meaning:           "Month of Fruits",
		Season:            SeasonSummer,
		SeasonDescription: "Early Summer",
		Activities: "Het-Hor celebrates the first bounty of the early summer harvest with communal feasts, shared " +
			"blessings and gratitude for the generosity of nature.",
		ColorPrimary:     "#A9CCE3",
		ColorGradientEnd: "#FAD7A0",
	},
	{
		Index:             3,
		Ordinal:           4,
		Name:              "Ra",
		Meaning:           "Month of the Sun",
		Season:            SeasonSummer,
		SeasonDescription: "Mid-Summer",
		Activities: "Ra marks the zenith of the Sun's power. Communities honour leadership and royalty with " +
			"gatherings, traditional dance and storytelling that reaffirm cultural identity.",
		ColorPrimary:     "#FAD7A0",
		ColorGradientEnd: "#F39C12",
		SacredDays: []SacredDay{
			{
				DayOfMonth: 23,
				Name:       "African Royalty Day",
				Description: "African Royalty Day is a day of exaltation when the Sun is closest to Earth. It honours " +
					"Ubukhosi, the tried and tested African forms of governance, with ceremony and traditional attire.",
				CivilMonth: time.December,
				CivilDay:   23,
			},
		},
	},
	{
		Index:             4,
		Ordinal:           5,
		Name:              "Sobek",
		Meaning:           "Month of Waters",
		Season:            SeasonSummer,
		SeasonDescription: "Late Summer",
		Activities: "Sobek gives thanks for the rains. Water ceremonies and purification rituals are held and the " +
			"community reflects on how it shares its natural resources.",
		ColorPrimary:     "#85C1E9",
		ColorGradientEnd: "#85C1E9",
	},
	{
		Index:             5,
		Ordinal:           6,
		Name:              "Shu",
		Meaning:           "Month of Winds",
		Season:            SeasonAutumn,
		SeasonDescription: "Autumn (Transition)",
		Activities: "Shu brings the winds of change. It is a month for releasing what no longer serves, for " +
			"meditation and for preparing homes for the cooler season.",
		ColorPrimary:     "#AED6F1",
		ColorGradientEnd: "#AED6F1",
	},
	{
		Index:             6,
		Ordinal:           7,
		Name:              "Isis",
		Meaning:           "Month of Ripening",
		Season:            SeasonAutumn,
		SeasonDescription: "Mid-Autumn",
		Activities: "Isis gathers the last harvests and stores provisions. Elders pass down histories and " +
			"traditions to the younger generations.",
		ColorPrimary:     "#F5CBA7",
		ColorGradientEnd: "#F5CBA7",
	},
	{
		Index:             7,
		Ordinal:           8,
		Name:              "Neb-Het",
		Meaning:           "Month of Lamentation",
		Season:            SeasonAutumn,
		SeasonDescription: "Late Autumn / Early Winter",
		Activities: "Neb-Het is a month of introspection as the Sun leaves the Southern Hemisphere. Ancestors are " +
			"honoured through quiet contemplation and communal rituals of remembrance.",
		ColorPrimary:     "#ABB2B9",
		ColorGradientEnd: "#ABB2B9",
		SacredDays: []SacredDay{
			{
				DayOfMonth: 21,
				Name:       "Lamentation Day",
				Description: "Lamentation Day marks the departure of the Sun from the Southern Hemisphere and the " +
					"beginning of winter, when Nomkhubulwane/Auset laments the departure of her husband.",
				CivilMonth: time.March,
				CivilDay:   21,
			},
		},
	},
	{
		Index:             8,
		Ordinal:           9,
		Name:              "Set",
		Meaning:           "Month of Darkness / Depth",
		Season:            SeasonWinter,
		SeasonDescription: "Mid-Winter",
		Activities: "Set is the deepest part of winter, a time for retreat, dream interpretation and healing " +
			"rather than despair.",
		ColorPrimary:     "#566573",
		ColorGradientEnd: "#566573",
	},
	{
		Index:             9,
		Ordinal:           10,
		Name:              "Djehuti",
		Meaning:           "Month of Rejuvenation",
		Season:            SeasonWinter,
		SeasonDescription: "Late Winter",
		Activities: "Djehuti stirs new life as the Sun turns back south. Communities plan for the new cycle and " +
			"hold workshops and healing practices.",
		ColorPrimary:     "#D6EAF8",
		ColorGradientEnd: "#D6EAF8",
	},
	{
		Index:             10,
		Ordinal:           11,
		Name:              "Horus",
		Meaning:           "Month of Rebirth",
		Season:            SeasonSpring,
		SeasonDescription: "Early Spring (Return of Sun)",
		Activities: "Horus celebrates the rebirth of the Sun's journey towards the Southern Hemisphere with " +
			"outdoor gatherings and ceremonies that welcome new life.",
		ColorPrimary:     "#F9E79F",
		ColorGradientEnd: "#F9E79F",
		SacredDays: []SacredDay{
			{
				DayOfMonth: 21,
				Name:       "Rebirth of the Sun",
				Description: "Rebirth of the Sun is a Day of Hope, when the Sun begins its journey back towards the " +
					"Southern Hemisphere and communities give thanks for the returning warmth and light.",
				CivilMonth: time.June,
				CivilDay:   21,
			},
		},
	},
	{
		Index:             11,
		Ordinal:           12,
		Name:              "Neith",
		Meaning:           "Month of Preparation",
		Season:            SeasonSpring,
		SeasonDescription: "Mid-Spring",
		Activities: "Neith is given to preparing for the New Year: mending tools, preparing fields and resolving " +
			"outstanding conflicts.",
		ColorPrimary:     "#F0B27A",
		ColorGradientEnd: "#F0B27A",
	},
	{
		Index:             12,
		Ordinal:           13,
		Name:              "Sokhemet",
		Meaning:           "Month of Breath / Transition",
		Season:            SeasonSpring,
		SeasonDescription: "Transition Period",
		Activities: "Sokhemet is a short pause before Asar returns, a time to honour the past year, acknowledge " +
			"its lessons and release lingering attachments.",
		ColorPrimary:     "#A3E4D7",
		ColorGradientEnd: "#A3E4D7",
	},
}

// MonthTable returns the thirteen cultural months in order.
// The result is a copy; callers may modify it freely.
func MonthTable() []CulturalMonth {
	out := make([]CulturalMonth, len(months))
	for i := range months {
		out[i] = copyMonth(months[i])
	}
	return out
}

// MonthByIndex returns the month at the given 0-based index.
// It returns ErrInvalidIndex for indices outside [0, 12].
func MonthByIndex(index int) (CulturalMonth, error) {
	if index < 0 || index >= MonthsPerYear {
		return CulturalMonth{}, invalidIndex(index)
	}
	return copyMonth(months[index]), nil
}

// SacredDays returns the sacred days of the month at the given index.
// A month without sacred days yields an empty, non-nil slice.
func SacredDays(index int) ([]SacredDay, error) {
	if index < 0 || index >= MonthsPerYear {
		return nil, invalidIndex(index)
	}
	out := make([]SacredDay, len(months[index].SacredDays))
	copy(out, months[index].SacredDays)
	return out, nil
}

func copyMonth(m CulturalMonth) CulturalMonth {
	days := make([]SacredDay, len(m.SacredDays))
	copy(days, m.SacredDays)
	m.SacredDays = days
	return m
}
