// Package models contains data structures for the forum's domain models.
package models

import (
	"strings"
	"time"
)

// PostStatus is the moderation state of a post.
type PostStatus string

const (
	PostStatusPending  PostStatus = "PENDING"
	PostStatusApproved PostStatus = "APPROVED"
	PostStatusRejected PostStatus = "REJECTED"
)

// Category is one of the fixed forum topic tags.
type Category string

const (
	CategoryGeneral       Category = "general"
	CategoryAcademics     Category = "academics"
	CategoryAnxiety       Category = "anxiety"
	CategoryDepression    Category = "depression"
	CategoryRelationships Category = "relationships"
	CategorySelfCare      Category = "self-care"
	CategoryWellness      Category = "wellness"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryGeneral,
	CategoryAcademics,
	CategoryAnxiety,
	CategoryDepression,
	CategoryRelationships,
	CategorySelfCare,
	CategoryWellness,
}

// ParseCategory matches raw against the fixed category set, ignoring case and
// surrounding whitespace.
func ParseCategory(raw string) (Category, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	for _, c := range Categories {
		if string(c) == normalized {
			return c, true
		}
	}
	return "", false
}

// Post is the aggregate root of the forum. Comments, likes and flags refer to
// it by PostID only and are removed together with it.
type Post struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	AuthorID       uint       `gorm:"not null;index" json:"author_id"`
	Title          string     `gorm:"size:200;not null" json:"title"`
	Body           string     `gorm:"type:text;not null" json:"body"`
	Category       Category   `gorm:"size:32;not null;index" json:"category"`
	Anonymous      bool       `gorm:"not null" json:"anonymous"`
	Status         PostStatus `gorm:"size:16;not null;index" json:"status"`
	ModerationNote *string    `gorm:"type:text" json:"moderation_note,omitempty"`
	// LikeCount and FlagCount are recomputed from their ledgers on every mutation.
	LikeCount int64     `gorm:"not null" json:"like_count"`
	FlagCount int64     `gorm:"not null" json:"flag_count"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// AuthorName is rendered at read time and never persisted.
	AuthorName string `gorm:"-" json:"author_name"`

	Comments []Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	Likes    []Like    `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	Flags    []Flag    `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsVisibleTo reports whether viewer may read the post outside the moderation queue.
func (p *Post) IsVisibleTo(viewer Actor) bool {
	if p.Status == PostStatusApproved {
		return true
	}
	return viewer.IsCounselor() || (viewer.UserID != 0 && viewer.UserID == p.AuthorID)
}

// Note returns the moderation note or "" when none is set.
func (p *Post) Note() string {
	if p.ModerationNote == nil {
		return ""
	}
	return *p.ModerationNote
}
