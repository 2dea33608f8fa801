package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Smoke tests a running API over HTTP:
//
//	go run ./cmd/apitest -url http://localhost:8080 -v

// =============================================================================
// Response Types
// =============================================================================

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   *errorInfo      `json:"error,omitempty"`
}

type errorInfo struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type culturalDate struct {
	CivilDate    string `json:"civil_date"`
	CulturalYear int    `json:"cultural_year"`
	MonthIndex   int    `json:"month_index"`
	MonthName    string `json:"month_name"`
	DayOfMonth   int    `json:"day_of_month"`
	YearDay      bool   `json:"year_day"`
	Season       string `json:"season"`
	Significance string `json:"significance,omitempty"`
	LunarPhase   string `json:"lunar_phase"`
	Formatted    string `json:"formatted"`
}

type rangeResponse struct {
	Start string         `json:"start"`
	End   string         `json:"end"`
	Count int            `json:"count"`
	Days  []culturalDate `json:"days"`
}

type healthResponse struct {
	Status string `json:"status"`
	Cache  string `json:"cache"`
}

// =============================================================================
// Test Runner
// =============================================================================

type testRunner struct {
	baseURL      string
	client       *http.Client
	verbose      bool
	successCount int
	errorCount   int
	errors       []string
}

func newTestRunner(baseURL string, verbose bool) *testRunner {
	return &testRunner{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		verbose: verbose,
	}
}

func (tr *testRunner) run() {
	fmt.Println("==============================================")
	fmt.Println("Inzalo Yelanga API Smoke Test")
	fmt.Println("==============================================")
	fmt.Printf("Base URL: %s\n", tr.baseURL)

	tr.testHealth()
	tr.testToday()
	tr.testKnownDates()
	tr.testRange()
	tr.testMonths()
	tr.testErrors()
	tr.testExport()

	tr.printSummary()
}

// =============================================================================
// Test Groups
// =============================================================================

func (tr *testRunner) testHealth() {
	tr.printSection("Health Check")

	var health healthResponse
	if err := tr.getData("/health", &health); err != nil {
		tr.recordError("Health", err.Error())
		return
	}
	if health.Status != "healthy" {
		tr.recordError("Health", fmt.Sprintf("unexpected status %q", health.Status))
		return
	}
	tr.recordSuccess(fmt.Sprintf("healthy (cache: %s)", health.Cache))
}

func (tr *testRunner) testToday() {
	tr.printSection("Today")

	var d culturalDate
	if err := tr.getData("/api/v1/calendar/today", &d); err != nil {
		tr.recordError("Today", err.Error())
		return
	}
	tr.recordSuccess(fmt.Sprintf("%s is %s (%s, %s)", d.CivilDate, d.Formatted, d.Season, d.LunarPhase))
}

func (tr *testRunner) testKnownDates() {
	tr.printSection("Known Dates")

	testCases := []struct {
		date         string
		month        string
		day          int
		significance string
	}{
		{"2024-09-23", "Asar", 1, "African New Year"},
		{"2024-12-16", "Ra", 1, ""},
		{"2024-12-23", "Ra", 8, "African Royalty Day"},
		{"2025-03-21", "Isis", 12, "Lamentation Day"},
		{"2025-06-21", "Djehuti", 20, "Rebirth of the Sun"},
		{"2025-09-23", "Asar", 1, "African New Year"},
	}

	for _, tc := range testCases {
		var d culturalDate
		if err := tr.getData("/api/v1/calendar/date/"+tc.date, &d); err != nil {
			tr.recordError(tc.date, err.Error())
			continue
		}

		if d.MonthName != tc.month || d.DayOfMonth != tc.day || d.Significance != tc.significance {
			tr.recordError(tc.date, fmt.Sprintf("got %d %s %q, want %d %s %q",
				d.DayOfMonth, d.MonthName, d.Significance, tc.day, tc.month, tc.significance))
			continue
		}
		tr.recordSuccess(fmt.Sprintf("%s: %s %s", tc.date, d.Formatted, d.Significance))
		if tr.verbose {
			tr.printDate(d)
		}
	}
}

func (tr *testRunner) testRange() {
	tr.printSection("Range")

	var week rangeResponse
	if err := tr.getData("/api/v1/calendar/range?start=2025-09-20&end=2025-09-26", &week); err != nil {
		tr.recordError("Range (week)", err.Error())
		return
	}
	if week.Count != 7 {
		tr.recordError("Range (week)", fmt.Sprintf("expected 7 days, got %d", week.Count))
		return
	}
	tr.recordSuccess("week across the New Year returned 7 days")

	for _, d := range week.Days {
		if d.YearDay {
			tr.recordSuccess(fmt.Sprintf("%s flagged as a Year Day", d.CivilDate))
		}
		if tr.verbose {
			tr.printDate(d)
		}
	}

	tr.expectStatus("Range over 90 days", "/api/v1/calendar/range?start=2025-01-01&end=2025-12-31", http.StatusBadRequest)
	tr.expectStatus("Range reversed", "/api/v1/calendar/range?start=2025-12-31&end=2025-01-01", http.StatusBadRequest)
}

func (tr *testRunner) testMonths() {
	tr.printSection("Months")

	var months []struct {
		Index int    `json:"index"`
		Name  string `json:"name"`
	}
	if err := tr.getData("/api/v1/calendar/months", &months); err != nil {
		tr.recordError("Months", err.Error())
		return
	}
	if len(months) != 13 {
		tr.recordError("Months", fmt.Sprintf("expected 13 months, got %d", len(months)))
		return
	}
	tr.recordSuccess(fmt.Sprintf("13 months, %s to %s", months[0].Name, months[12].Name))

	for i := range months {
		var sacred []struct {
			Name string `json:"name"`
		}
		if err := tr.getData(fmt.Sprintf("/api/v1/calendar/months/%d/sacred-days", i), &sacred); err != nil {
			tr.recordError(months[i].Name, err.Error())
			continue
		}
		if len(sacred) > 0 && tr.verbose {
			for _, s := range sacred {
				fmt.Printf("    %s: %s\n", months[i].Name, s.Name)
			}
		}
	}
	tr.recordSuccess("sacred days listed for every month")
}

func (tr *testRunner) testErrors() {
	tr.printSection("Error Handling")

	tr.expectStatus("Invalid date", "/api/v1/calendar/date/invalid", http.StatusBadRequest)
	tr.expectStatus("Impossible date", "/api/v1/calendar/date/2025-02-29", http.StatusBadRequest)
	tr.expectStatus("Month index 13", "/api/v1/calendar/months/13", http.StatusBadRequest)
	tr.expectStatus("Missing range end", "/api/v1/calendar/range?start=2025-01-01", http.StatusBadRequest)
	tr.expectStatus("Unauthenticated /me", "/api/v1/me", http.StatusUnauthorized)
	tr.expectStatus("Unknown route", "/api/v1/nowhere", http.StatusNotFound)
}

func (tr *testRunner) testExport() {
	tr.printSection("iCalendar Export")

	resp, err := tr.client.Get(tr.baseURL + "/api/v1/calendar/2025.ics")
	if err != nil {
		tr.recordError("ICS", err.Error())
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		tr.recordError("ICS", err.Error())
		return
	}
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(string(body), "BEGIN:VCALENDAR") {
		tr.recordError("ICS", fmt.Sprintf("HTTP %d, %d bytes", resp.StatusCode, len(body)))
		return
	}
	tr.recordSuccess(fmt.Sprintf("2025.ics has %d events", strings.Count(string(body), "BEGIN:VEVENT")))
}

// =============================================================================
// Helper Methods
// =============================================================================

// getData fetches path and decodes the envelope's data into target.
func (tr *testRunner) getData(path string, target any) error {
	resp, err := tr.client.Get(tr.baseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read error: %w", err)
	}

	var env apiResponse
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("parse error: %w", err)
	}
	if !env.Success {
		msg := env.Message
		if env.Error != nil {
			msg = fmt.Sprintf("%s (%s)", env.Error.Message, env.Error.Code)
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, msg)
	}

	return json.Unmarshal(env.Data, target)
}

func (tr *testRunner) expectStatus(name, path string, want int) {
	resp, err := tr.client.Get(tr.baseURL + path)
	if err != nil {
		tr.recordError(name, err.Error())
		return
	}
	resp.Body.Close()

	if resp.StatusCode != want {
		tr.recordError(name, fmt.Sprintf("expected HTTP %d, got %d", want, resp.StatusCode))
		return
	}
	tr.recordSuccess(fmt.Sprintf("%s rejected with %d", name, want))
}

func (tr *testRunner) printSection(name string) {
	fmt.Printf("\n--- %s ---\n\n", name)
}

func (tr *testRunner) printDate(d culturalDate) {
	fmt.Printf("    %s  month %d  %s  moon %s  year-day %t\n",
		d.CivilDate, d.MonthIndex, d.Season, d.LunarPhase, d.YearDay)
}

func (tr *testRunner) recordSuccess(msg string) {
	tr.successCount++
	fmt.Printf("  ✓ %s\n", msg)
}

func (tr *testRunner) recordError(context, msg string) {
	tr.errorCount++
	errStr := fmt.Sprintf("%s: %s", context, msg)
	tr.errors = append(tr.errors, errStr)
	fmt.Printf("  ✗ %s\n", errStr)
}

func (tr *testRunner) printSummary() {
	fmt.Println()
	fmt.Println("==============================================")
	fmt.Printf("Passed: %d  Failed: %d\n", tr.successCount, tr.errorCount)
	fmt.Println("==============================================")

	for _, err := range tr.errors {
		fmt.Printf("  • %s\n", err)
	}
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the API")
	verbose := flag.Bool("v", false, "Verbose output (show per-day details)")
	flag.Parse()

	probe := &http.Client{Timeout: 2 * time.Second}
	resp, err := probe.Get(*baseURL + "/health")
	if err != nil {
		fmt.Printf("Error: cannot connect to %s\nMake sure the API server is running.\n", *baseURL)
		os.Exit(1)
	}
	resp.Body.Close()

	runner := newTestRunner(*baseURL, *verbose)
	runner.run()

	if runner.errorCount > 0 {
		os.Exit(1)
	}
}
