package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/inzalo-api/internal/calendar"
	"github.com/zapponejosh/inzalo-api/internal/database"
	"github.com/zapponejosh/inzalo-api/internal/slug"
	"github.com/zapponejosh/inzalo-api/internal/validate"
)

const maxTags = 10

// currentUser returns the authenticated user. Routes using it sit behind
// AuthMiddleware, so a missing user is a wiring bug reported as 401.
func currentUser(w http.ResponseWriter, r *http.Request) (*database.User, bool) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		WriteUnauthorized(w, "Authentication required")
	}
	return u, ok
}

// GetCurrentUser handles GET /api/v1/me
func (h *Handlers) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	WriteSuccess(w, u)
}

// ListMyAPIKeys handles GET /api/v1/me/keys
func (h *Handlers) ListMyAPIKeys(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}

	keys, err := h.db.ListAPIKeys(r.Context(), u.ID)
	if err != nil {
		h.writeDBError(w, r, "API key", err)
		return
	}
	WriteSuccess(w, map[string]any{"api_keys": keys})
}

// RevokeMyAPIKey handles DELETE /api/v1/me/keys/{id}
func (h *Handlers) RevokeMyAPIKey(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := idParam(r, "id")
	if !ok {
		WriteBadRequest(w, "Invalid API key ID")
		return
	}

	if err := h.db.RevokeAPIKey(r.Context(), u.ID, id); err != nil {
		h.writeDBError(w, r, "API key", err)
		return
	}
	WriteSuccess(w, map[string]any{"revoked": true})
}

// =============================================================================
// Calendar events
// =============================================================================

type eventRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Significance string `json:"significance"`
	Date         string `json:"date"`
	Type         string `json:"type"`
	Visibility   string `json:"visibility"`
}

func (req *eventRequest) validate() error {
	if req.Visibility == "" {
		req.Visibility = string(database.VisibilityPublic)
	}

	types := make([]string, 0, len(database.ValidEventTypes()))
	for _, t := range database.ValidEventTypes() {
		types = append(types, string(t))
	}

	var v validate.Validator
	return v.Required("title", req.Title).
		MaxLen("title", req.Title, database.MaxTitleLength).
		MaxLen("description", req.Description, database.MaxEventDescriptionLength).
		MaxLen("significance", req.Significance, 1000).
		Date("date", req.Date).
		OneOf("type", req.Type, types...).
		OneOf("visibility", req.Visibility, "public", "members", "private").
		Err()
}

func (req *eventRequest) toEvent(userID int64) *database.CalendarEvent {
	return &database.CalendarEvent{
		UserID:       userID,
		Title:        strings.TrimSpace(req.Title),
		Description:  req.Description,
		Significance: req.Significance,
		Date:         req.Date,
		Type:         database.EventType(req.Type),
		Visibility:   database.Visibility(req.Visibility),
	}
}

// eventResponse pairs a stored event with its cultural date.
type eventResponse struct {
	database.CalendarEvent
	CulturalDate string `json:"cultural_date"`
}

func newEventResponse(e database.CalendarEvent) eventResponse {
	resp := eventResponse{CalendarEvent: e}
	if d, err := calendar.ParseDateString(e.Date); err == nil {
		resp.CulturalDate = calendar.FormatCulturalDate(calendar.ToCulturalDate(d))
	}
	return resp
}

// ListEvents handles GET /api/v1/events?start=&end=&type=
func (h *Handlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := database.EventFilter{
		Start:  q.Get("start"),
		End:    q.Get("end"),
		Type:   database.EventType(q.Get("type")),
		Viewer: u.ID,
		Page:   pageParams(r),
	}

	var v validate.Validator
	v.Custom("start", filter.Start != "" && !isDate(filter.Start), "Must be a date in YYYY-MM-DD format").
		Custom("end", filter.End != "" && !isDate(filter.End), "Must be a date in YYYY-MM-DD format").
		Custom("type", filter.Type != "" && !filter.Type.IsValid(), "Unknown event type")
	if writeValidation(w, v.Err()) {
		return
	}

	events, err := h.db.ListEvents(r.Context(), filter)
	if err != nil {
		h.writeDBError(w, r, "event", err)
		return
	}

	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, newEventResponse(e))
	}
	WriteSuccess(w, map[string]any{"events": out, "count": len(out)})
}

// CreateEvent handles POST /api/v1/events
func (h *Handlers) CreateEvent(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req eventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if writeValidation(w, req.validate()) {
		return
	}

	e := req.toEvent(u.ID)
	if err := h.db.CreateEvent(r.Context(), e); err != nil {
		h.writeDBError(w, r, "event", err)
		return
	}
	WriteCreated(w, newEventResponse(*e))
}

// GetEvent handles GET /api/v1/events/{id}
func (h *Handlers) GetEvent(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := idParam(r, "id")
	if !ok {
		WriteBadRequest(w, "Invalid event ID")
		return
	}

	e, err := h.db.GetEvent(r.Context(), id)
	if err != nil {
		h.writeDBError(w, r, "event", err)
		return
	}
	if e.Visibility == database.VisibilityPrivate && e.UserID != u.ID {
		WriteNotFound(w, "event not found")
		return
	}
	WriteSuccess(w, newEventResponse(*e))
}

// UpdateEvent handles PUT /api/v1/events/{id}
func (h *Handlers) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := idParam(r, "id")
	if !ok {
		WriteBadRequest(w, "Invalid event ID")
		return
	}

	var req eventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if writeValidation(w, req.validate()) {
		return
	}

	e := req.toEvent(u.ID)
	e.ID = id
	if err := h.db.UpdateEvent(r.Context(), u.ID, e); err != nil {
		h.writeDBError(w, r, "event", err)
		return
	}

	updated, err := h.db.GetEvent(r.Context(), id)
	if err != nil {
		h.writeDBError(w, r, "event", err)
		return
	}
	WriteSuccess(w, newEventResponse(*updated))
}

// DeleteEvent handles DELETE /api/v1/events/{id}
func (h *Handlers) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := idParam(r, "id")
	if !ok {
		WriteBadRequest(w, "Invalid event ID")
		return
	}

	if err := h.db.DeleteEvent(r.Context(), u.ID, id); err != nil {
		h.writeDBError(w, r, "event", err)
		return
	}
	WriteSuccess(w, map[string]any{"deleted": true})
}

func isDate(s string) bool {
	_, err := calendar.ParseDateString(s)
	return err == nil
}

// =============================================================================
// Community posts
// =============================================================================

type postRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Type    string   `json:"type"`
	Tags    []string `json:"tags"`
}

// ListPosts handles GET /api/v1/posts?type=
func (h *Handlers) ListPosts(w http.ResponseWriter, r *http.Request) {
	postType := database.PostType(r.URL.Query().Get("type"))
	if postType != "" && !postType.IsValid() {
		WriteBadRequest(w, fmt.Sprintf("Unknown post type: %q", postType))
		return
	}

	posts, err := h.db.ListPosts(r.Context(), postType, pageParams(r))
	if err != nil {
		h.writeDBError(w, r, "post", err)
		return
	}
	WriteSuccess(w, map[string]any{"posts": posts, "count": len(posts)})
}

// CreatePost handles POST /api/v1/posts
func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req postRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	types := make([]string, 0, len(database.ValidPostTypes()))
	for _, t := range database.ValidPostTypes() {
		types = append(types, string(t))
	}

	tags := make([]string, 0, len(req.Tags))
	var v validate.Validator
	v.Required("title", req.Title).
		MaxLen("title", req.Title, database.MaxTitleLength).
		Required("content", req.Content).
		MaxLen("content", req.Content, database.MaxPostContentLength).
		OneOf("type", req.Type, types...).
		Custom("tags", len(req.Tags) > maxTags, fmt.Sprintf("Maximum %d tags", maxTags))
	for _, tag := range req.Tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		v.MaxLen("tags", tag, database.MaxTagLength)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	if writeValidation(w, v.Err()) {
		return
	}

	p := &database.CommunityPost{
		UserID:  u.ID,
		Title:   strings.TrimSpace(req.Title),
		Content: req.Content,
		Type:    database.PostType(req.Type),
		Tags:    tags,
	}
	if err := h.db.CreatePost(r.Context(), p); err != nil {
		h.writeDBError(w, r, "post", err)
		return
	}
	WriteCreated(w, p)
}

// DeletePost handles DELETE /api/v1/posts/{id}
func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := idParam(r, "id")
	if !ok {
		WriteBadRequest(w, "Invalid post ID")
		return
	}

	if err := h.db.DeletePost(r.Context(), u, id); err != nil {
		h.writeDBError(w, r, "post", err)
		return
	}
	WriteSuccess(w, map[string]any{"deleted": true})
}

// LikePost handles POST /api/v1/posts/{id}/like (toggles)
func (h *Handlers) LikePost(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := idParam(r, "id")
	if !ok {
		WriteBadRequest(w, "Invalid post ID")
		return
	}

	liked, count, err := h.db.ToggleLike(r.Context(), id, u.ID)
	if err != nil {
		h.writeDBError(w, r, "post", err)
		return
	}
	WriteSuccess(w, map[string]any{"liked": liked, "likes": count})
}

// =============================================================================
// Articles
// =============================================================================

type articleRequest struct {
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Body      string `json:"body"`
	Category  string `json:"category"`
	Published bool   `json:"published"`
}

func (req *articleRequest) validate() error {
	var v validate.Validator
	v.Required("title", req.Title).
		MaxLen("title", req.Title, database.MaxTitleLength).
		MaxLen("summary", req.Summary, database.MaxSummaryLength).
		Required("body", req.Body).
		MaxLen("category", req.Category, 50)
	if req.Slug != "" {
		v.Slug("slug", req.Slug)
	}
	return v.Err()
}

// ListArticles handles GET /api/v1/articles?category=
func (h *Handlers) ListArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := h.db.ListArticles(r.Context(), r.URL.Query().Get("category"), pageParams(r))
	if err != nil {
		h.writeDBError(w, r, "article", err)
		return
	}
	WriteSuccess(w, map[string]any{"articles": articles, "count": len(articles)})
}

// GetArticle handles GET /api/v1/articles/{slug}
// Drafts are only visible to their author.
func (h *Handlers) GetArticle(w http.ResponseWriter, r *http.Request) {
	a, err := h.db.GetArticleBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.writeDBError(w, r, "article", err)
		return
	}

	if !a.Published {
		u, ok := UserFromContext(r.Context())
		if !ok || u.ID != a.UserID {
			WriteNotFound(w, "article not found")
			return
		}
	}
	WriteSuccess(w, a)
}

// CreateArticle handles POST /api/v1/articles
// The slug defaults to the slugified title.
func (h *Handlers) CreateArticle(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req articleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if writeValidation(w, req.validate()) {
		return
	}

	s := req.Slug
	if s == "" {
		s = slug.Make(req.Title)
	}
	if s == "" {
		writeValidation(w, (&validate.Validator{}).Custom("slug", true, "Title produces an empty slug; provide one").Err())
		return
	}

	a := &database.Article{
		UserID:    u.ID,
		Slug:      s,
		Title:     strings.TrimSpace(req.Title),
		Summary:   req.Summary,
		Body:      req.Body,
		Category:  req.Category,
		Published: req.Published,
	}
	if err := h.db.CreateArticle(r.Context(), a); err != nil {
		h.writeDBError(w, r, "article", err)
		return
	}
	WriteCreated(w, a)
}

// UpdateArticle handles PUT /api/v1/articles/{slug}
func (h *Handlers) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req articleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	req.Slug = ""
	if writeValidation(w, req.validate()) {
		return
	}

	a := &database.Article{
		Slug:      chi.URLParam(r, "slug"),
		Title:     strings.TrimSpace(req.Title),
		Summary:   req.Summary,
		Body:      req.Body,
		Category:  req.Category,
		Published: req.Published,
	}
	if err := h.db.UpdateArticle(r.Context(), u.ID, a); err != nil {
		h.writeDBError(w, r, "article", err)
		return
	}
	WriteSuccess(w, a)
}

// DeleteArticle handles DELETE /api/v1/articles/{slug}
func (h *Handlers) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	u, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.db.DeleteArticle(r.Context(), u, chi.URLParam(r, "slug")); err != nil {
		h.writeDBError(w, r, "article", err)
		return
	}
	WriteSuccess(w, map[string]any{"deleted": true})
}
