package calendar

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthTable(t *testing.T) {
	table := MonthTable()
	require.Len(t, table, MonthsPerYear)

	names := make(map[string]bool)
	for i, m := range table {
		assert.Equal(t, i, m.Index)
		assert.Equal(t, i+1, m.Ordinal)
		assert.NotEmpty(t, m.Name)
		assert.NotEmpty(t, m.Meaning)
		assert.True(t, m.Season.IsValid(), "month %s season %q", m.Name, m.Season)
		assert.NotEmpty(t, m.SeasonDescription)
		assert.True(t, strings.HasPrefix(m.ColorPrimary, "#"))
		assert.True(t, strings.HasPrefix(m.ColorGradientEnd, "#"))
		assert.False(t, names[m.Name], "duplicate month name %s", m.Name)
		names[m.Name] = true

		for _, sd := range m.SacredDays {
			assert.GreaterOrEqual(t, sd.DayOfMonth, 1)
			assert.LessOrEqual(t, sd.DayOfMonth, DaysPerMonth)
			assert.NotEmpty(t, sd.Name)
			// The civil anchor must be a real date.
			anchor := time.Date(2023, sd.CivilMonth, sd.CivilDay, 0, 0, 0, 0, time.UTC)
			assert.Equal(t, sd.CivilDay, anchor.Day(), sd.Name)
		}
	}

	assert.Equal(t, "Asar", table[0].Name)
	assert.Equal(t, "Sokhemet", table[12].Name)
}

func TestMonthTable_ReturnsCopy(t *testing.T) {
	table := MonthTable()
	table[0].Name = "changed"
	table[0].SacredDays[0].Name = "changed"

	again := MonthTable()
	assert.Equal(t, "Asar", again[0].Name)
	assert.Equal(t, "African New Year", again[0].SacredDays[0].Name)
}

func TestMonthByIndex(t *testing.T) {
	m, err := MonthByIndex(3)
	require.NoError(t, err)
	assert.Equal(t, "Ra", m.Name)
	assert.Equal(t, 4, m.Ordinal)

	for _, idx := range []int{-1, 13, 100} {
		_, err := MonthByIndex(idx)
		assert.True(t, errors.Is(err, ErrInvalidIndex), "index %d: %v", idx, err)
	}
}

func TestSacredDays(t *testing.T) {
	days, err := SacredDays(0)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, "African New Year", days[0].Name)

	days, err = SacredDays(1)
	require.NoError(t, err)
	assert.NotNil(t, days)
	assert.Empty(t, days)

	_, err = SacredDays(13)
	assert.True(t, errors.Is(err, ErrInvalidIndex))
}

func TestParseDateString(t *testing.T) {
	d, err := ParseDateString("2024-09-23")
	require.NoError(t, err)
	assert.Equal(t, date(2024, time.September, 23), d)

	for _, bad := range []string{"", "not-a-date", "2024-13-01", "2024-02-30", "23/09/2024", " 2024-12-23", "2024-12-23\n"} {
		_, err := ParseDateString(bad)
		assert.True(t, errors.Is(err, ErrInvalidDate), "input %q", bad)
	}
}

func TestToday(t *testing.T) {
	now := time.Date(2024, time.September, 22, 23, 30, 0, 0, time.UTC)
	johannesburg := time.FixedZone("SAST", 2*60*60)

	assert.Equal(t, date(2024, time.September, 22), Today(now, nil))
	assert.Equal(t, date(2024, time.September, 23), Today(now, johannesburg))
}

func TestDaysInRange(t *testing.T) {
	days := DaysInRange(date(2024, time.February, 27), date(2024, time.March, 1))
	require.Len(t, days, 4)
	assert.Equal(t, "2024-02-29", FormatDate(days[2]))

	assert.Nil(t, DaysInRange(date(2024, time.March, 1), date(2024, time.February, 1)))
}

func TestMonthEvents(t *testing.T) {
	events := MonthEvents(2024, time.December)

	var royalty bool
	lunar := 0
	prev := ""
	for _, e := range events {
		assert.GreaterOrEqual(t, e.Date, prev, "events out of order")
		prev = e.Date

		switch e.Type {
		case EventTypeCultural:
			if e.Name == "African Royalty Day" {
				royalty = true
				assert.Equal(t, "2024-12-23", e.Date)
			}
		case EventTypeLunar:
			lunar++
			d, err := ParseDateString(e.Date)
			require.NoError(t, err)
			assert.Equal(t, e.Name, EstimateLunarPhase(d).Phase.Label())
			assert.NotEqual(t, EstimateLunarPhase(d.AddDate(0, 0, -1)).Phase, EstimateLunarPhase(d).Phase)
		}
	}

	assert.True(t, royalty)
	assert.GreaterOrEqual(t, lunar, 1)
}

func TestMonthEvents_EveryMonthHasLunarEvent(t *testing.T) {
	for m := time.January; m <= time.December; m++ {
		found := false
		for _, e := range MonthEvents(2025, m) {
			if e.Type == EventTypeLunar {
				found = true
			}
		}
		assert.True(t, found, "no lunar event in %s 2025", m)
	}
}

func TestWriteICS(t *testing.T) {
	stamp := time.Date(2024, time.October, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		year       int
		wantEvents int
		wantDates  []string
	}{
		// 2024-09-23 .. 2025-09-22 has 365 days: one Year Day.
		{2024, MonthsPerYear + 4 + 1, []string{"20240923", "20241223", "20250321", "20250621", "20250922"}},
		// 2023-09-23 .. 2024-09-22 contains Feb 29: two Year Days.
		{2023, MonthsPerYear + 4 + 2, []string{"20230923", "20231223", "20240321", "20240921", "20240922"}},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		require.NoError(t, WriteICS(&buf, tt.year, stamp))

		out := buf.String()
		assert.Contains(t, out, "BEGIN:VCALENDAR")
		assert.Contains(t, out, "SUMMARY:African Royalty Day")
		for _, d := range tt.wantDates {
			assert.Contains(t, out, d, "year %d", tt.year)
		}

		cal, err := ical.NewDecoder(strings.NewReader(out)).Decode()
		require.NoError(t, err)
		assert.Len(t, cal.Events(), tt.wantEvents, "year %d", tt.year)
	}
}
