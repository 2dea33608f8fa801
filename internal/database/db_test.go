package database

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"
)

// testDB creates a migrated in-memory database for testing.
func testDB(t *testing.T) *DB {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	db, err := Open(DefaultConfig(":memory:"), logger)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	if _, err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func testUser(t *testing.T, db *DB, username string) *User {
	t.Helper()
	email := username + "@example.com"
	u, err := db.CreateUser(context.Background(), username, &email, nil)
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func strPtr(s string) *string {
	return &s
}

func TestOpen(t *testing.T) {
	db := testDB(t)

	if err := db.Health(context.Background()); err != nil {
		t.Errorf("Health() error = %v", err)
	}
}

func TestMigrate(t *testing.T) {
	db := testDB(t)

	// Running again should be a no-op
	count, err := db.Migrate(context.Background())
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Migrate() count = %d, want 0 (already applied)", count)
	}
}

// -----------------------------------------------------------------
// Users and API keys
// -----------------------------------------------------------------

func TestCreateUser(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	u, err := db.CreateUser(ctx, "thandi", strPtr("thandi@example.com"), strPtr("Thandi M."))
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if u.ID == 0 {
		t.Error("CreateUser() did not set ID")
	}
	if u.Role != RoleUser {
		t.Errorf("Role = %q, want %q", u.Role, RoleUser)
	}
	if u.DisplayName == nil || *u.DisplayName != "Thandi M." {
		t.Errorf("DisplayName = %v, want Thandi M.", u.DisplayName)
	}
	if u.CreatedAt.IsZero() {
		t.Error("CreatedAt not parsed")
	}

	if _, err := db.CreateUser(ctx, "thandi", nil, nil); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate CreateUser() error = %v, want ErrDuplicate", err)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	db := testDB(t)

	if _, err := db.GetUser(context.Background(), 999); !IsNotFound(err) {
		t.Errorf("GetUser() error = %v, want not found", err)
	}
}

func TestSetUserRole(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	u := testUser(t, db, "sipho")

	if err := db.SetUserRole(ctx, u.ID, RoleModerator); err != nil {
		t.Fatalf("SetUserRole() error = %v", err)
	}
	got, _ := db.GetUser(ctx, u.ID)
	if !got.CanModerate() {
		t.Error("CanModerate() = false after promotion")
	}

	if err := db.SetUserRole(ctx, u.ID, Role("overlord")); err == nil {
		t.Error("SetUserRole() with invalid role succeeded")
	}
	if err := db.SetUserRole(ctx, 999, RoleAdmin); !IsNotFound(err) {
		t.Errorf("SetUserRole() unknown user error = %v", err)
	}
}

func TestAPIKeyLifecycle(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	u := testUser(t, db, "keyholder")

	key, err := db.CreateAPIKey(ctx, u.ID, "phone")
	if err != nil {
		t.Fatalf("CreateAPIKey() error = %v", err)
	}
	if len(key.PlaintextKey) != len(apiKeyPrefix)+64 {
		t.Errorf("PlaintextKey length = %d", len(key.PlaintextKey))
	}

	got, err := db.AuthenticateAPIKey(ctx, key.PlaintextKey)
	if err != nil {
		t.Fatalf("AuthenticateAPIKey() error = %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("AuthenticateAPIKey() user = %d, want %d", got.ID, u.ID)
	}

	keys, err := db.ListAPIKeys(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListAPIKeys() error = %v", err)
	}
	if len(keys) != 1 || keys[0].LastUsedAt == nil {
		t.Errorf("ListAPIKeys() = %+v, want one key with last_used_at", keys)
	}

	if _, err := db.AuthenticateAPIKey(ctx, "iy_wrong"); !IsNotFound(err) {
		t.Errorf("unknown key error = %v, want not found", err)
	}

	if err := db.RevokeAPIKey(ctx, u.ID, key.ID); err != nil {
		t.Fatalf("RevokeAPIKey() error = %v", err)
	}
	if _, err := db.AuthenticateAPIKey(ctx, key.PlaintextKey); !IsNotFound(err) {
		t.Errorf("revoked key error = %v, want not found", err)
	}
}

func TestCreateAPIKey_UnknownUser(t *testing.T) {
	db := testDB(t)

	if _, err := db.CreateAPIKey(context.Background(), 42, "ghost"); !IsNotFound(err) {
		t.Errorf("CreateAPIKey() error = %v, want not found", err)
	}
}

// -----------------------------------------------------------------
// Calendar events
// -----------------------------------------------------------------

func TestEventsCRUD(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	owner := testUser(t, db, "owner")
	other := testUser(t, db, "other")

	e := &CalendarEvent{
		UserID:      owner.ID,
		Title:       "New Year gathering",
		Description: "Community celebration",
		Date:        "2024-09-23",
		Type:        EventTypeCultural,
	}
	if err := db.CreateEvent(ctx, e); err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
	if e.ID == 0 || e.Visibility != VisibilityPublic {
		t.Errorf("CreateEvent() = %+v", e)
	}

	e.Title = "New Year gathering (moved)"
	e.Date = "2024-09-24"
	if err := db.UpdateEvent(ctx, other.ID, e); !errors.Is(err, ErrForbidden) {
		t.Errorf("UpdateEvent() by non-owner error = %v, want ErrForbidden", err)
	}
	if err := db.UpdateEvent(ctx, owner.ID, e); err != nil {
		t.Fatalf("UpdateEvent() error = %v", err)
	}

	got, err := db.GetEvent(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetEvent() error = %v", err)
	}
	if got.Date != "2024-09-24" || got.Title != "New Year gathering (moved)" {
		t.Errorf("GetEvent() = %+v", got)
	}

	if err := db.DeleteEvent(ctx, other.ID, e.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("DeleteEvent() by non-owner error = %v", err)
	}
	if err := db.DeleteEvent(ctx, owner.ID, e.ID); err != nil {
		t.Fatalf("DeleteEvent() error = %v", err)
	}
	if _, err := db.GetEvent(ctx, e.ID); !IsNotFound(err) {
		t.Errorf("GetEvent() after delete error = %v", err)
	}
}

func TestListEvents_Visibility(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	owner := testUser(t, db, "owner")
	member := testUser(t, db, "member")

	for _, e := range []CalendarEvent{
		{UserID: owner.ID, Title: "public", Date: "2024-12-23", Type: EventTypeRoyal, Visibility: VisibilityPublic},
		{UserID: owner.ID, Title: "members", Date: "2024-12-01", Type: EventTypeCommunity, Visibility: VisibilityMembers},
		{UserID: owner.ID, Title: "private", Date: "2024-12-10", Type: EventTypeLunar, Visibility: VisibilityPrivate},
		{UserID: owner.ID, Title: "outside", Date: "2025-02-01", Type: EventTypeSeasonal},
	} {
		e := e
		if err := db.CreateEvent(ctx, &e); err != nil {
			t.Fatalf("CreateEvent(%s) error = %v", e.Title, err)
		}
	}

	tests := []struct {
		name   string
		filter EventFilter
		want   []string
	}{
		{"anonymous", EventFilter{Start: "2024-12-01", End: "2024-12-31"}, []string{"public"}},
		{"member", EventFilter{Start: "2024-12-01", End: "2024-12-31", Viewer: member.ID}, []string{"members", "public"}},
		{"owner", EventFilter{Start: "2024-12-01", End: "2024-12-31", Viewer: owner.ID}, []string{"members", "private", "public"}},
		{"by type", EventFilter{Type: EventTypeSeasonal}, []string{"outside"}},
		{"paged", EventFilter{Viewer: owner.ID, Page: Page{Limit: 1, Offset: 1}}, []string{"private"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := db.ListEvents(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListEvents() error = %v", err)
			}
			var titles []string
			for _, e := range events {
				titles = append(titles, e.Title)
			}
			if len(titles) != len(tt.want) {
				t.Fatalf("ListEvents() = %v, want %v", titles, tt.want)
			}
			for i := range titles {
				if titles[i] != tt.want[i] {
					t.Errorf("ListEvents()[%d] = %q, want %q", i, titles[i], tt.want[i])
				}
			}
		})
	}
}

// -----------------------------------------------------------------
// Community posts
// -----------------------------------------------------------------

func TestPostsAndLikes(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	author := testUser(t, db, "author")
	reader := testUser(t, db, "reader")

	p := &CommunityPost{
		UserID:  author.ID,
		Title:   "Celebrating Asar",
		Content: "How our family marks the New Year.",
		Type:    PostTypeCelebration,
		Tags:    []string{"new-year", "family"},
	}
	if err := db.CreatePost(ctx, p); err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}
	if len(p.Tags) != 2 || p.Likes != 0 {
		t.Errorf("CreatePost() = %+v", p)
	}

	liked, count, err := db.ToggleLike(ctx, p.ID, reader.ID)
	if err != nil || !liked || count != 1 {
		t.Fatalf("ToggleLike() = %v, %d, %v; want true, 1, nil", liked, count, err)
	}
	if _, count, _ := db.ToggleLike(ctx, p.ID, author.ID); count != 2 {
		t.Errorf("second like count = %d, want 2", count)
	}
	liked, count, err = db.ToggleLike(ctx, p.ID, reader.ID)
	if err != nil || liked || count != 1 {
		t.Errorf("unlike = %v, %d, %v; want false, 1, nil", liked, count, err)
	}

	if _, _, err := db.ToggleLike(ctx, 999, reader.ID); !IsNotFound(err) {
		t.Errorf("ToggleLike() missing post error = %v", err)
	}

	posts, err := db.ListPosts(ctx, PostTypeCelebration, Page{})
	if err != nil {
		t.Fatalf("ListPosts() error = %v", err)
	}
	if len(posts) != 1 || posts[0].Likes != 1 {
		t.Errorf("ListPosts() = %+v", posts)
	}
	if posts, _ := db.ListPosts(ctx, PostTypeDiscussion, Page{}); len(posts) != 0 {
		t.Errorf("ListPosts(discussion) = %d posts, want 0", len(posts))
	}

	if err := db.DeletePost(ctx, reader, p.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("DeletePost() by reader error = %v", err)
	}
	if err := db.SetUserRole(ctx, reader.ID, RoleModerator); err != nil {
		t.Fatal(err)
	}
	reader, _ = db.GetUser(ctx, reader.ID)
	if err := db.DeletePost(ctx, reader, p.ID); err != nil {
		t.Errorf("DeletePost() by moderator error = %v", err)
	}
}

// -----------------------------------------------------------------
// Articles
// -----------------------------------------------------------------

func TestArticles(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	author := testUser(t, db, "writer")
	other := testUser(t, db, "other")

	a := &Article{
		UserID:    author.ID,
		Slug:      "the-thirteen-months",
		Title:     "The Thirteen Months",
		Body:      "Each month has 28 days.",
		Category:  "calendar",
		Published: true,
	}
	if err := db.CreateArticle(ctx, a); err != nil {
		t.Fatalf("CreateArticle() error = %v", err)
	}

	dup := &Article{UserID: author.ID, Slug: a.Slug, Title: "x", Body: "y"}
	if err := db.CreateArticle(ctx, dup); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate slug error = %v, want ErrDuplicate", err)
	}

	draft := &Article{UserID: author.ID, Slug: "draft", Title: "Draft", Body: "wip", Category: "calendar"}
	if err := db.CreateArticle(ctx, draft); err != nil {
		t.Fatal(err)
	}

	list, err := db.ListArticles(ctx, "calendar", Page{})
	if err != nil {
		t.Fatalf("ListArticles() error = %v", err)
	}
	if len(list) != 1 || list[0].Slug != a.Slug {
		t.Errorf("ListArticles() = %+v, want only the published article", list)
	}

	update := &Article{Slug: a.Slug, Title: "The 13 Months", Body: a.Body, Published: true}
	if err := db.UpdateArticle(ctx, other.ID, update); !errors.Is(err, ErrForbidden) {
		t.Errorf("UpdateArticle() by other error = %v", err)
	}
	if err := db.UpdateArticle(ctx, author.ID, update); err != nil {
		t.Fatalf("UpdateArticle() error = %v", err)
	}
	if update.Title != "The 13 Months" || update.ID != a.ID {
		t.Errorf("UpdateArticle() = %+v", update)
	}

	if err := db.DeleteArticle(ctx, author, a.Slug); err != nil {
		t.Fatalf("DeleteArticle() error = %v", err)
	}
	if _, err := db.GetArticleBySlug(ctx, a.Slug); !IsNotFound(err) {
		t.Errorf("GetArticleBySlug() after delete error = %v", err)
	}
}

// -----------------------------------------------------------------
// Wisdom
// -----------------------------------------------------------------

func TestSeedWisdom(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	n, err := db.SeedWisdom(ctx)
	if err != nil {
		t.Fatalf("SeedWisdom() error = %v", err)
	}
	if n != len(DefaultWisdom) {
		t.Errorf("SeedWisdom() = %d, want %d", n, len(DefaultWisdom))
	}

	n, err = db.SeedWisdom(ctx)
	if err != nil || n != 0 {
		t.Errorf("second SeedWisdom() = %d, %v; want 0, nil", n, err)
	}
}

func TestWisdomForDate(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	day := time.Date(2024, time.September, 23, 15, 0, 0, 0, time.UTC)
	if _, err := db.WisdomForDate(ctx, day); !IsNotFound(err) {
		t.Errorf("WisdomForDate() on empty table error = %v", err)
	}

	if _, err := db.SeedWisdom(ctx); err != nil {
		t.Fatal(err)
	}

	first, err := db.WisdomForDate(ctx, day)
	if err != nil {
		t.Fatalf("WisdomForDate() error = %v", err)
	}
	again, _ := db.WisdomForDate(ctx, day.Add(5*time.Hour))
	if again.ID != first.ID {
		t.Errorf("same civil day gave ids %d and %d", first.ID, again.ID)
	}

	// 2024-09-23 is day 19989 since the Unix epoch.
	wantOffset := 19989 % len(DefaultWisdom)
	if first.Title != DefaultWisdom[wantOffset].Title {
		t.Errorf("WisdomForDate() = %q, want %q", first.Title, DefaultWisdom[wantOffset].Title)
	}

	next, _ := db.WisdomForDate(ctx, day.AddDate(0, 0, 1))
	if next.ID == first.ID {
		t.Error("consecutive days returned the same entry")
	}

	pinned := &Wisdom{
		Date:    strPtr("2024-09-23"),
		Title:   "African New Year",
		Content: "Asar begins.",
		Author:  "Inzalo Yelanga",
		Type:    WisdomTypeCulturalInsight,
		Active:  true,
	}
	if err := db.CreateWisdom(ctx, pinned); err != nil {
		t.Fatalf("CreateWisdom() error = %v", err)
	}
	got, _ := db.WisdomForDate(ctx, day)
	if got.ID != pinned.ID {
		t.Errorf("WisdomForDate() = %q, want pinned entry", got.Title)
	}

	if err := db.CreateWisdom(ctx, pinned); !errors.Is(err, ErrDuplicate) {
		t.Errorf("second pin for same date error = %v, want ErrDuplicate", err)
	}
}

func TestImportWisdom(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	entries := []Wisdom{
		{Title: "Harvest", Content: "What you plant in Asar you eat in Shu.", Author: "Proverb"},
		{Date: strPtr("2024-12-23"), Title: "Royalty", Content: "Honour the ancestors.", Author: "Inzalo Yelanga", Type: WisdomTypeHistoricalFact},
	}
	n, err := db.ImportWisdom(ctx, entries)
	if err != nil {
		t.Fatalf("ImportWisdom() error = %v", err)
	}
	if n != 2 || entries[0].ID == 0 || entries[1].ID == 0 {
		t.Errorf("ImportWisdom() = %d, ids %d/%d", n, entries[0].ID, entries[1].ID)
	}
	if entries[0].Type != WisdomTypeWisdom {
		t.Errorf("default type = %q, want %q", entries[0].Type, WisdomTypeWisdom)
	}

	// A clashing pinned date rolls back the whole batch.
	batch := []Wisdom{
		{Title: "Kept?", Content: "no", Author: "x"},
		{Date: strPtr("2024-12-23"), Title: "Clash", Content: "no", Author: "x"},
	}
	if _, err := db.ImportWisdom(ctx, batch); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("ImportWisdom() clash error = %v, want ErrDuplicate", err)
	}

	var count int
	db.QueryRowContext(ctx, `SELECT COUNT(*) FROM wisdom`).Scan(&count)
	if count != 2 {
		t.Errorf("wisdom rows = %d, want 2", count)
	}

	if n, err := db.SeedWisdom(ctx); n != 0 || err != nil {
		t.Errorf("SeedWisdom() on non-empty table = %d, %v", n, err)
	}
}

// -----------------------------------------------------------------
// Transactions and enums
// -----------------------------------------------------------------

func TestWithTx_Rollback(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := db.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO users (username) VALUES ('ghost')`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx() error = %v, want boom", err)
	}

	var n int
	db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	if n != 0 {
		t.Errorf("users after rollback = %d, want 0", n)
	}
}

func TestEnums_IsValid(t *testing.T) {
	for _, et := range ValidEventTypes() {
		if !et.IsValid() {
			t.Errorf("EventType(%q).IsValid() = false", et)
		}
	}
	for _, pt := range ValidPostTypes() {
		if !pt.IsValid() {
			t.Errorf("PostType(%q).IsValid() = false", pt)
		}
	}
	if EventType("solar").IsValid() || PostType("meme").IsValid() ||
		Visibility("secret").IsValid() || WisdomType("joke").IsValid() {
		t.Error("invalid enum reported valid")
	}
}

func TestPage_Normalize(t *testing.T) {
	p := Page{Limit: 0, Offset: -3}.normalize()
	if p.Limit != defaultPageLimit || p.Offset != 0 {
		t.Errorf("normalize() = %+v", p)
	}
	if p := (Page{Limit: 1000}).normalize(); p.Limit != maxPageLimit {
		t.Errorf("normalize() limit = %d, want %d", p.Limit, maxPageLimit)
	}
}
