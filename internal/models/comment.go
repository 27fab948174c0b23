package models

import "time"

// Comment is an append-only remark attached to a post.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	AuthorID  uint      `gorm:"not null" json:"author_id"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	Anonymous bool      `gorm:"not null" json:"anonymous"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	AuthorName string `gorm:"-" json:"author_name"`
}
