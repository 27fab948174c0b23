package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		raw   string
		want  Category
		valid bool
	}{
		{"anxiety", CategoryAnxiety, true},
		{"  Anxiety ", CategoryAnxiety, true},
		{"SELF-CARE", CategorySelfCare, true},
		{"all", "", false},
		{"", "", false},
		{"gaming", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseCategory(tt.raw)
			assert.Equal(t, tt.valid, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPost_IsVisibleTo(t *testing.T) {
	author := Actor{UserID: 7, Role: RoleStudent}
	stranger := Actor{UserID: 8, Role: RoleStudent}
	counselor := Actor{UserID: 9, Role: RoleCounselor}

	pending := &Post{AuthorID: 7, Status: PostStatusPending}
	assert.True(t, pending.IsVisibleTo(author))
	assert.True(t, pending.IsVisibleTo(counselor))
	assert.False(t, pending.IsVisibleTo(stranger))
	assert.False(t, pending.IsVisibleTo(Anonymous))

	approved := &Post{AuthorID: 7, Status: PostStatusApproved}
	assert.True(t, approved.IsVisibleTo(Anonymous))
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("toggle like: %w", NewStorageError(cause))

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, CodeStorage, ErrorCode(err))
	assert.Equal(t, "", ErrorCode(cause))
	assert.Equal(t, "Post with ID 3 not found", NewNotFoundError("Post", 3).Error())
}
