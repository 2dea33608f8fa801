package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/zapponejosh/inzalo-api/internal/calendar"
	"github.com/zapponejosh/inzalo-api/internal/database"
	"github.com/zapponejosh/inzalo-api/internal/logger"
	"github.com/zapponejosh/inzalo-api/internal/validate"
)

type createUserRequest struct {
	Username    string  `json:"username"`
	Email       *string `json:"email"`
	DisplayName *string `json:"display_name"`
}

// CreateUser handles POST /api/v1/admin/users
func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	var v validate.Validator
	v.Required("username", req.Username).MaxLen("username", req.Username, 50)
	if req.Email != nil {
		v.Email("email", *req.Email)
	}
	if req.DisplayName != nil {
		v.MaxLen("display_name", *req.DisplayName, 100)
	}
	if writeValidation(w, v.Err()) {
		return
	}

	user, err := h.db.CreateUser(r.Context(), req.Username, req.Email, req.DisplayName)
	if err != nil {
		h.writeDBError(w, r, "user", err)
		return
	}

	logger.Info(r.Context(), "user created", slog.Int64("user_id", user.ID))
	WriteCreated(w, map[string]any{"user": user})
}

type createAPIKeyRequest struct {
	Name string `json:"name"`
}

// CreateAPIKey handles POST /api/v1/admin/users/{id}/keys
func (h *Handlers) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	userID, ok := idParam(r, "id")
	if !ok {
		WriteBadRequest(w, "Invalid user ID")
		return
	}

	var req createAPIKeyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	var v validate.Validator
	if writeValidation(w, v.Required("name", req.Name).MaxLen("name", req.Name, 100).Err()) {
		return
	}

	key, err := h.db.CreateAPIKey(r.Context(), userID, req.Name)
	if err != nil {
		h.writeDBError(w, r, "user", err)
		return
	}

	WriteCreated(w, map[string]any{
		"api_key": key,
		"warning": "Store this key now; it cannot be shown again.",
	})
}

type setRoleRequest struct {
	Role string `json:"role"`
}

// SetUserRole handles PUT /api/v1/admin/users/{id}/role
func (h *Handlers) SetUserRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := idParam(r, "id")
	if !ok {
		WriteBadRequest(w, "Invalid user ID")
		return
	}

	var req setRoleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	var v validate.Validator
	if writeValidation(w, v.OneOf("role", req.Role, "user", "moderator", "admin").Err()) {
		return
	}

	if err := h.db.SetUserRole(r.Context(), userID, database.Role(req.Role)); err != nil {
		h.writeDBError(w, r, "user", err)
		return
	}

	user, err := h.db.GetUser(r.Context(), userID)
	if err != nil {
		h.writeDBError(w, r, "user", err)
		return
	}
	WriteSuccess(w, map[string]any{"user": user})
}

type createWisdomRequest struct {
	Date    *string `json:"date"`
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Author  string  `json:"author"`
	Type    string  `json:"type"`
}

// CreateWisdom handles POST /api/v1/admin/wisdom
func (h *Handlers) CreateWisdom(w http.ResponseWriter, r *http.Request) {
	var req createWisdomRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	var v validate.Validator
	v.Required("title", req.Title).
		MaxLen("title", req.Title, database.MaxTitleLength).
		Required("content", req.Content).
		MaxLen("content", req.Content, database.MaxWisdomContentLength).
		Required("author", req.Author).
		MaxLen("author", req.Author, 100).
		Custom("type", !database.WisdomType(req.Type).IsValid(),
			"Must be one of: wisdom, quote, historical_fact, cultural_insight, decolonial_thought")
	if req.Date != nil {
		v.Date("date", *req.Date)
	}
	if writeValidation(w, v.Err()) {
		return
	}

	entry := &database.Wisdom{
		Date:    req.Date,
		Title:   req.Title,
		Content: req.Content,
		Author:  req.Author,
		Type:    database.WisdomType(req.Type),
		Active:  true,
	}
	if err := h.db.CreateWisdom(r.Context(), entry); err != nil {
		h.writeDBError(w, r, "wisdom for this date", err)
		return
	}

	// A pinned entry replaces that day's wisdom; an unpinned one changes
	// the rotation count behind today's pick.
	key := "wisdom:" + calendar.FormatDate(calendar.Today(h.now(), h.cfg.Location()))
	if entry.Date != nil {
		key = "wisdom:" + *entry.Date
	}
	if err := h.cache.Delete(r.Context(), key); err != nil {
		logger.Warn(r.Context(), "cache invalidation failed", slog.Any("error", err))
	}

	WriteCreated(w, entry)
}
