package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/zapponejosh/inzalo-api/internal/calendar"
)

// Prints the cultural calendar for one cultural year (or an explicit civil
// range) as CSV, preceded by a summary of month starts and sacred days.
// Useful for eyeballing conversions against a printed calendar.

func main() {
	year := flag.Int("year", time.Now().Year(), "Cultural year to generate (starts Sept 23 of this civil year)")
	startFlag := flag.String("start", "", "Civil start date YYYY-MM-DD (overrides -year)")
	endFlag := flag.String("end", "", "Civil end date YYYY-MM-DD (requires -start)")
	flag.Parse()

	start, end, err := resolveRange(*year, *startFlag, *endFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	fmt.Printf("=== Inzalo Yelanga Calendar: %s to %s ===\n\n", calendar.FormatDate(start), calendar.FormatDate(end))

	if *startFlag == "" {
		fmt.Println("Month Starts:")
		for _, m := range calendar.MonthTable() {
			first, _ := calendar.MonthStart(*year, m.Index)
			fmt.Printf("  %2d. %-10s %s  (%s)\n", m.Ordinal, m.Name, calendar.FormatDate(first), m.Season)
		}
		fmt.Println()
	}

	days := calendar.DaysInRange(start, end)

	seasonCounts := make(map[calendar.Season]int)
	var sacred, yearDays []calendar.CulturalDate
	rows := make([]calendar.CulturalDate, 0, len(days))
	for _, d := range days {
		cd := calendar.ToCulturalDate(d)
		rows = append(rows, cd)
		seasonCounts[cd.Season]++
		if cd.HasSignificance() {
			sacred = append(sacred, cd)
		}
		if cd.YearDay {
			yearDays = append(yearDays, cd)
		}
	}

	fmt.Println("Sacred Days:")
	for _, cd := range sacred {
		fmt.Printf("  %s  %-18s %s\n", cd.CivilDate, calendar.FormatCulturalDate(cd), cd.Significance)
	}
	if len(yearDays) > 0 {
		fmt.Println("Year Days (outside the 364-day cycle):")
		for _, cd := range yearDays {
			fmt.Printf("  %s  day %d of cultural year %d\n", cd.CivilDate, cd.DayOfYear+1, cd.CulturalYear)
		}
	}
	fmt.Println()

	fmt.Println("Days by season:")
	for _, s := range calendar.ValidSeasons() {
		if count, ok := seasonCounts[s]; ok {
			fmt.Printf("  %-10s %d days\n", string(s)+":", count)
		}
	}
	fmt.Printf("  %-10s %d days\n", "TOTAL:", len(rows))
	fmt.Println()

	fmt.Println("=== All Dates ===")
	fmt.Println("Civil Date,Cultural Year,Month,Day,Season,Lunar Phase,Year Day,Significance")
	for _, cd := range rows {
		fmt.Printf("%s,%d,%s,%d,%s,%s,%t,%s\n",
			cd.CivilDate, cd.CulturalYear, cd.MonthName, cd.DayOfMonth,
			cd.Season, cd.LunarPhase, cd.YearDay, cd.Significance)
	}
}

// resolveRange returns the civil range to print. Without -start it spans
// the whole cultural year, Year Days included.
func resolveRange(year int, startStr, endStr string) (time.Time, time.Time, error) {
	if startStr == "" {
		if endStr != "" {
			return time.Time{}, time.Time{}, fmt.Errorf("-end requires -start")
		}
		start, err := calendar.MonthStart(year, 0)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		next, err := calendar.MonthStart(year+1, 0)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		return start, next.AddDate(0, 0, -1), nil
	}

	start, err := calendar.ParseDateString(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("-start: %w", err)
	}
	end := start
	if endStr != "" {
		if end, err = calendar.ParseDateString(endStr); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("-end: %w", err)
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("-end %s is before -start %s", endStr, startStr)
	}
	return start, end, nil
}
