package models

import (
	"strings"
	"time"
)

// AnnouncementPriority defines ordering for announcements.
type AnnouncementPriority string

const (
	AnnouncementPriorityLow    AnnouncementPriority = "low"
	AnnouncementPriorityMedium AnnouncementPriority = "medium"
	AnnouncementPriorityHigh   AnnouncementPriority = "high"
)

// Valid returns true when the priority is a supported value.
func (p AnnouncementPriority) Valid() bool {
	switch p {
	case AnnouncementPriorityLow, AnnouncementPriorityMedium, AnnouncementPriorityHigh:
		return true
	default:
		return false
	}
}

// AudienceGlobal is the sentinel audience visible to every viewer.
const AudienceGlobal = "global"

// Announcement is an audience-scoped notice. The audience is fixed at
// creation; content may be edited afterwards but re-scoping is not modeled.
type Announcement struct {
	ID        string               `json:"id"`
	Title     string               `json:"title"`
	Body      string               `json:"body"`
	Priority  AnnouncementPriority `json:"priority"`
	Audience  string               `json:"audience"`
	AuthorID  string               `json:"author_id"`
	Date      *time.Time           `json:"date,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// EffectiveTime orders announcements by Date, falling back to CreatedAt.
func (a Announcement) EffectiveTime() time.Time {
	if a.Date != nil {
		return *a.Date
	}
	return a.CreatedAt
}

// AudienceBase strips the trailing "-section" qualifier from a class audience
// and lowercases the remainder, so "Class 10-A" and "class 10-B" share the
// base "class 10".
func AudienceBase(audience string) string {
	base := audience
	if idx := strings.LastIndex(audience, "-"); idx > 0 {
		base = audience[:idx]
	}
	return strings.ToLower(strings.TrimSpace(base))
}

// AudienceMatches reports whether a record scoped to recordAudience is
// visible to a viewer scoped to viewerAudience. Global records match every
// viewer; class records match when the leading class segments agree.
func AudienceMatches(recordAudience, viewerAudience string) bool {
	if strings.EqualFold(recordAudience, AudienceGlobal) {
		return true
	}
	if strings.EqualFold(viewerAudience, AudienceGlobal) {
		return true
	}
	return AudienceBase(recordAudience) == AudienceBase(viewerAudience)
}

// ViewWatermark marks the newest content a viewer has seen per category. It
// is client-scoped state; clearing it only resets unread counts.
type ViewWatermark struct {
	ViewerID string    `json:"viewer_id"`
	Category string    `json:"category"`
	LastSeen time.Time `json:"last_seen"`
}
