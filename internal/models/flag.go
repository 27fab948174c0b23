package models

import "time"

// Flag is an abuse report filed by a user against a post.
// The combination of PostID and UserID must be unique.
type Flag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_flags_post_user" json:"post_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_flags_post_user" json:"user_id"`
	Reason    string    `gorm:"type:text;not null" json:"reason"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
