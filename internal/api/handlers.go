package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/inzalo-api/internal/cache"
	"github.com/zapponejosh/inzalo-api/internal/config"
	"github.com/zapponejosh/inzalo-api/internal/database"
	"github.com/zapponejosh/inzalo-api/internal/logger"
	"github.com/zapponejosh/inzalo-api/internal/validate"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	db     *database.DB
	cache  cache.Cache
	cfg    *config.Config
	logger *slog.Logger
	now    func() time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *database.DB, c cache.Cache, cfg *config.Config, log *slog.Logger) *Handlers {
	return &Handlers{
		db:     db,
		cache:  c,
		cfg:    cfg,
		logger: log,
		now:    time.Now,
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.db.Health(ctx); err != nil {
		h.logger.Warn("health check failed", slog.Any("error", err))
		WriteError(w, http.StatusServiceUnavailable, "Database unhealthy", "HEALTH_CHECK_FAILED")
		return
	}

	status := map[string]string{"status": "healthy", "database": "ok", "cache": "ok"}
	if err := h.cache.Ping(ctx); err != nil {
		h.logger.Warn("cache ping failed", slog.Any("error", err))
		status["cache"] = "degraded"
	}

	WriteSuccess(w, status)
}

// cached returns the JSON encoding of build()'s result, serving it from
// the cache when present. Cache failures fall back to build.
func (h *Handlers) cached(ctx context.Context, key string, build func() (any, error)) (json.RawMessage, error) {
	if b, err := h.cache.Get(ctx, key); err == nil {
		return b, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		logger.Warn(ctx, "cache read failed", slog.String("key", key), slog.Any("error", err))
	}

	v, err := build()
	if err != nil {
		return nil, err
	}

	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", key, err)
	}

	if err := h.cache.Set(ctx, key, b, h.cfg.CacheTTL); err != nil {
		logger.Warn(ctx, "cache write failed", slog.String("key", key), slog.Any("error", err))
	}
	return b, nil
}

// writeDBError maps storage errors onto HTTP responses.
func (h *Handlers) writeDBError(w http.ResponseWriter, r *http.Request, what string, err error) {
	switch {
	case database.IsNotFound(err):
		WriteNotFound(w, what+" not found")
	case errors.Is(err, database.ErrForbidden):
		WriteForbidden(w, "You do not own this "+what)
	case errors.Is(err, database.ErrDuplicate):
		WriteError(w, http.StatusConflict, what+" already exists", CodeConflict)
	default:
		logger.Error(r.Context(), "database operation failed", err, slog.String("resource", what))
		WriteInternalError(w, "Internal server error")
	}
}

// decodeJSON decodes a bounded request body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil {
		return errors.New("request body is empty")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	return nil
}

// writeValidation writes err as a 400 if it is a validation error.
func writeValidation(w http.ResponseWriter, err error) bool {
	var verr *validate.Error
	if errors.As(err, &verr) {
		WriteValidationError(w, verr)
		return true
	}
	return false
}

// idParam parses a positive integer URL parameter.
func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

// pageParams reads limit and offset query parameters.
func pageParams(r *http.Request) database.Page {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	return database.Page{Limit: limit, Offset: offset}
}
