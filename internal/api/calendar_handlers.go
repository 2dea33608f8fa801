package api

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/inzalo-api/internal/calendar"
	"github.com/zapponejosh/inzalo-api/internal/database"
	"github.com/zapponejosh/inzalo-api/internal/logger"
)

// maxRangeDays bounds GET /calendar/range.
const maxRangeDays = 90

// culturalDateResponse adds the display form to a CulturalDate.
type culturalDateResponse struct {
	calendar.CulturalDate
	Formatted string `json:"formatted"`
}

func newCulturalDateResponse(t time.Time) culturalDateResponse {
	d := calendar.ToCulturalDate(t)
	return culturalDateResponse{CulturalDate: d, Formatted: calendar.FormatCulturalDate(d)}
}

// parseDateParam reads the {date} URL parameter, writing a 400 on failure.
func parseDateParam(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	dateStr := chi.URLParam(r, "date")
	date, err := calendar.ParseDateString(dateStr)
	if err != nil {
		WriteError(w, http.StatusBadRequest,
			fmt.Sprintf("Invalid date: %q. Use YYYY-MM-DD", dateStr), CodeInvalidDate)
		return time.Time{}, false
	}
	return date, true
}

// parseMonthIndex reads the {index} URL parameter, writing a 400 on failure.
func parseMonthIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "index")
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 || index >= calendar.MonthsPerYear {
		WriteError(w, http.StatusBadRequest,
			fmt.Sprintf("Invalid month index: %q. Use 0-%d", raw, calendar.MonthsPerYear-1), CodeInvalidIndex)
		return 0, false
	}
	return index, true
}

// GetToday handles GET /api/v1/calendar/today
func (h *Handlers) GetToday(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(w, newCulturalDateResponse(h.now().In(h.cfg.Location())))
}

// GetDate handles GET /api/v1/calendar/date/{date}
func (h *Handlers) GetDate(w http.ResponseWriter, r *http.Request) {
	date, ok := parseDateParam(w, r)
	if !ok {
		return
	}

	body, err := h.cached(r.Context(), "date:"+calendar.FormatDate(date), func() (any, error) {
		return newCulturalDateResponse(date), nil
	})
	if err != nil {
		logger.Error(r.Context(), "build cultural date", err)
		WriteInternalError(w, "Internal server error")
		return
	}

	WriteSuccess(w, body)
}

// GetRange handles GET /api/v1/calendar/range?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *Handlers) GetRange(w http.ResponseWriter, r *http.Request) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" || endStr == "" {
		WriteBadRequest(w, "Both start and end date parameters are required")
		return
	}

	start, err := calendar.ParseDateString(startStr)
	if err != nil {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("Invalid start date: %q. Use YYYY-MM-DD", startStr), CodeInvalidDate)
		return
	}
	end, err := calendar.ParseDateString(endStr)
	if err != nil {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("Invalid end date: %q. Use YYYY-MM-DD", endStr), CodeInvalidDate)
		return
	}

	if start.After(end) {
		WriteBadRequest(w, "Start date must be before or equal to end date")
		return
	}

	days := calendar.DaysInRange(start, end)
	if len(days) > maxRangeDays {
		WriteBadRequest(w, fmt.Sprintf("Date range cannot exceed %d days", maxRangeDays))
		return
	}

	results := make([]culturalDateResponse, 0, len(days))
	for _, d := range days {
		results = append(results, newCulturalDateResponse(d))
	}

	WriteSuccess(w, map[string]any{
		"start": calendar.FormatDate(start),
		"end":   calendar.FormatDate(end),
		"count": len(results),
		"days":  results,
	})
}

// ListMonths handles GET /api/v1/calendar/months
func (h *Handlers) ListMonths(w http.ResponseWriter, r *http.Request) {
	body, err := h.cached(r.Context(), "months", func() (any, error) {
		return calendar.MonthTable(), nil
	})
	if err != nil {
		logger.Error(r.Context(), "build month table", err)
		WriteInternalError(w, "Internal server error")
		return
	}
	WriteSuccess(w, body)
}

// GetMonth handles GET /api/v1/calendar/months/{index}
// An optional ?year= adds the civil date the month starts on in that
// cultural year.
func (h *Handlers) GetMonth(w http.ResponseWriter, r *http.Request) {
	index, ok := parseMonthIndex(w, r)
	if !ok {
		return
	}

	month, err := calendar.MonthByIndex(index)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), CodeInvalidIndex)
		return
	}

	yearStr := r.URL.Query().Get("year")
	if yearStr == "" {
		WriteSuccess(w, month)
		return
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 1 || year > 9998 {
		WriteBadRequest(w, fmt.Sprintf("Invalid year: %q", yearStr))
		return
	}

	start, _ := calendar.MonthStart(year, index)
	WriteSuccess(w, map[string]any{
		"month":         month,
		"cultural_year": year,
		"starts_on":     calendar.FormatDate(start),
		"ends_on":       calendar.FormatDate(start.AddDate(0, 0, calendar.DaysPerMonth-1)),
	})
}

// GetMonthSacredDays handles GET /api/v1/calendar/months/{index}/sacred-days
func (h *Handlers) GetMonthSacredDays(w http.ResponseWriter, r *http.Request) {
	index, ok := parseMonthIndex(w, r)
	if !ok {
		return
	}

	days, err := calendar.SacredDays(index)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), CodeInvalidIndex)
		return
	}
	WriteSuccess(w, days)
}

// GetSacredDay handles GET /api/v1/calendar/sacred-day/{date}
func (h *Handlers) GetSacredDay(w http.ResponseWriter, r *http.Request) {
	date, ok := parseDateParam(w, r)
	if !ok {
		return
	}

	resp := map[string]any{
		"date":      calendar.FormatDate(date),
		"is_sacred": false,
	}
	if sd, found := calendar.SacredDayOn(date); found {
		resp["is_sacred"] = true
		resp["sacred_day"] = sd
	}
	WriteSuccess(w, resp)
}

// GetLunar handles GET /api/v1/calendar/lunar/{date}
func (h *Handlers) GetLunar(w http.ResponseWriter, r *http.Request) {
	date, ok := parseDateParam(w, r)
	if !ok {
		return
	}

	info := calendar.EstimateLunarPhase(date)
	WriteSuccess(w, map[string]any{
		"date":  calendar.FormatDate(date),
		"lunar": info,
		"label": info.Phase.Label(),
	})
}

// GetSeason handles GET /api/v1/calendar/season/{date}
func (h *Handlers) GetSeason(w http.ResponseWriter, r *http.Request) {
	date, ok := parseDateParam(w, r)
	if !ok {
		return
	}
	WriteSuccess(w, calendar.SeasonInfo(date))
}

// GetEvents handles GET /api/v1/calendar/events?year=YYYY&month=M
// Calendar-derived events are merged with stored events the caller can see.
func (h *Handlers) GetEvents(w http.ResponseWriter, r *http.Request) {
	today := calendar.Today(h.now(), h.cfg.Location())
	year, month := today.Year(), today.Month()

	if s := r.URL.Query().Get("year"); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil || y < 1 || y > 9999 {
			WriteBadRequest(w, fmt.Sprintf("Invalid year: %q", s))
			return
		}
		year = y
	}
	if s := r.URL.Query().Get("month"); s != "" {
		m, err := strconv.Atoi(s)
		if err != nil || m < 1 || m > 12 {
			WriteBadRequest(w, fmt.Sprintf("Invalid month: %q. Use 1-12", s))
			return
		}
		month = time.Month(m)
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	filter := database.EventFilter{
		Start: calendar.FormatDate(first),
		End:   calendar.FormatDate(first.AddDate(0, 1, -1)),
		Page:  database.Page{Limit: 100},
	}
	if u, ok := UserFromContext(r.Context()); ok {
		filter.Viewer = u.ID
	}

	stored, err := h.db.ListEvents(r.Context(), filter)
	if err != nil {
		h.writeDBError(w, r, "event", err)
		return
	}

	WriteSuccess(w, map[string]any{
		"year":            year,
		"month":           int(month),
		"calendar_events": calendar.MonthEvents(year, month),
		"user_events":     stored,
	})
}

// GetICS handles GET /api/v1/calendar/{year}.ics
func (h *Handlers) GetICS(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "year")
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1 || year > 9998 {
		WriteBadRequest(w, fmt.Sprintf("Invalid year: %q", raw))
		return
	}

	ctx := r.Context()
	key := "ics:" + strconv.Itoa(year)

	body, err := h.cache.Get(ctx, key)
	if err != nil {
		var buf bytes.Buffer
		if err := calendar.WriteICS(&buf, year, h.now()); err != nil {
			logger.Error(ctx, "render ics", err, slog.Int("year", year))
			WriteInternalError(w, "Internal server error")
			return
		}
		body = buf.Bytes()
		if err := h.cache.Set(ctx, key, body, h.cfg.CacheTTL); err != nil {
			logger.Warn(ctx, "cache write failed", slog.String("key", key), slog.Any("error", err))
		}
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="inzalo-yelanga-%d.ics"`, year))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// GetWisdomToday handles GET /api/v1/wisdom/today
func (h *Handlers) GetWisdomToday(w http.ResponseWriter, r *http.Request) {
	today := calendar.Today(h.now(), h.cfg.Location())

	body, err := h.cached(r.Context(), "wisdom:"+calendar.FormatDate(today), func() (any, error) {
		return h.db.WisdomForDate(r.Context(), today)
	})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			WriteNotFound(w, "No wisdom available")
			return
		}
		h.writeDBError(w, r, "wisdom", err)
		return
	}

	WriteSuccess(w, body)
}
