package models

import "time"

// Role distinguishes students from counselors.
type Role string

const (
	RoleStudent   Role = "student"
	RoleCounselor Role = "counselor"
)

// User is the identity record the forum reads display names from. Accounts
// are managed elsewhere; the forum never writes them outside seeding.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Username    string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	DisplayName string    `gorm:"size:128" json:"display_name"`
	Role        Role      `gorm:"size:16;not null" json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Name returns the display name, falling back to the username.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// Actor is the caller of a forum operation. It is passed explicitly into
// every service call.
type Actor struct {
	UserID uint
	Role   Role
}

// Anonymous is the zero actor used for unauthenticated reads.
var Anonymous = Actor{}

// IsCounselor reports whether the actor may moderate.
func (a Actor) IsCounselor() bool {
	return a.UserID != 0 && a.Role == RoleCounselor
}

// Authenticated reports whether the actor carries an identity.
func (a Actor) Authenticated() bool {
	return a.UserID != 0
}
