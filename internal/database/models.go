package database

import "time"

// Field length limits enforced before writes.
const (
	MaxTitleLength            = 200
	MaxEventDescriptionLength = 2000
	MaxPostContentLength      = 5000
	MaxSummaryLength          = 500
	MaxWisdomContentLength    = 2000
	MaxTagLength              = 50
)

// Role is a user's permission level.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// IsValid checks if a role is valid.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}

// User is an account that can author events, posts and articles.
type User struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Email       *string   `json:"email,omitempty"`
	DisplayName *string   `json:"display_name,omitempty"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

// CanModerate reports whether the user may remove other users' content.
func (u *User) CanModerate() bool {
	return u.Role == RoleModerator || u.Role == RoleAdmin
}

// APIKey is a stored key; the plaintext is never persisted.
type APIKey struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	Name       string     `json:"name"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// APIKeyWithPlaintext is returned once, at creation.
type APIKeyWithPlaintext struct {
	APIKey
	PlaintextKey string `json:"key"`
}

// EventType categorises a user calendar event.
type EventType string

const (
	EventTypeCultural  EventType = "cultural"
	EventTypeSeasonal  EventType = "seasonal"
	EventTypeLunar     EventType = "lunar"
	EventTypeRoyal     EventType = "royal"
	EventTypeCommunity EventType = "community"
)

// ValidEventTypes returns all valid event types.
func ValidEventTypes() []EventType {
	return []EventType{EventTypeCultural, EventTypeSeasonal, EventTypeLunar, EventTypeRoyal, EventTypeCommunity}
}

// IsValid checks if an event type is valid.
func (t EventType) IsValid() bool {
	for _, valid := range ValidEventTypes() {
		if t == valid {
			return true
		}
	}
	return false
}

// Visibility controls who can see a calendar event.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityMembers Visibility = "members"
	VisibilityPrivate Visibility = "private"
)

// IsValid checks if a visibility is valid.
func (v Visibility) IsValid() bool {
	switch v {
	case VisibilityPublic, VisibilityMembers, VisibilityPrivate:
		return true
	}
	return false
}

// CalendarEvent is a user-authored entry on a civil date.
type CalendarEvent struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Significance string     `json:"significance,omitempty"`
	Date         string     `json:"date"` // YYYY-MM-DD
	Type         EventType  `json:"type"`
	Visibility   Visibility `json:"visibility"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// EventFilter narrows ListEvents. Zero values match everything.
type EventFilter struct {
	Start  string // inclusive YYYY-MM-DD
	End    string // inclusive YYYY-MM-DD
	Type   EventType
	Viewer int64 // private events are only returned to their owner
	Page   Page
}

// PostType categorises a community post.
type PostType string

const (
	PostTypeCelebration      PostType = "celebration"
	PostTypeEvent            PostType = "event"
	PostTypeArticle          PostType = "article"
	PostTypeDiscussion       PostType = "discussion"
	PostTypeCulturalPractice PostType = "cultural_practice"
)

// ValidPostTypes returns all valid post types.
func ValidPostTypes() []PostType {
	return []PostType{PostTypeCelebration, PostTypeEvent, PostTypeArticle, PostTypeDiscussion, PostTypeCulturalPractice}
}

// IsValid checks if a post type is valid.
func (t PostType) IsValid() bool {
	for _, valid := range ValidPostTypes() {
		if t == valid {
			return true
		}
	}
	return false
}

// CommunityPost is a member's post with its like count.
type CommunityPost struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Type      PostType  `json:"type"`
	Tags      []string  `json:"tags"`
	Likes     int       `json:"likes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Article is a long-form cultural article addressed by slug.
type Article struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Body      string    `json:"body"`
	Category  string    `json:"category"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WisdomType categorises a daily wisdom entry.
type WisdomType string

const (
	WisdomTypeWisdom            WisdomType = "wisdom"
	WisdomTypeQuote             WisdomType = "quote"
	WisdomTypeHistoricalFact    WisdomType = "historical_fact"
	WisdomTypeCulturalInsight   WisdomType = "cultural_insight"
	WisdomTypeDecolonialThought WisdomType = "decolonial_thought"
)

// IsValid checks if a wisdom type is valid.
func (t WisdomType) IsValid() bool {
	switch t {
	case WisdomTypeWisdom, WisdomTypeQuote, WisdomTypeHistoricalFact,
		WisdomTypeCulturalInsight, WisdomTypeDecolonialThought:
		return true
	}
	return false
}

// Wisdom is a daily wisdom entry. Date pins it to one civil day.
type Wisdom struct {
	ID        int64      `json:"id"`
	Date      *string    `json:"date,omitempty"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Author    string     `json:"author"`
	Type      WisdomType `json:"type"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
}
