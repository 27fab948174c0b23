// Package testutil provides shared test doubles and fixtures for forum tests.
package testutil

import (
	"context"
	"testing"

	"campuscare/internal/database"
	"campuscare/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewSQLiteDB opens a migrated in-memory SQLite database. The pool is pinned
// to one connection because every SQLite memory connection is its own database.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), database.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateUser persists a user with the given role.
func CreateUser(t *testing.T, db *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{Username: username, DisplayName: username, Role: role}
	require.NoError(t, db.WithContext(context.Background()).Create(user).Error)
	return user
}

// CreatePost persists a post authored by authorID in the given status.
func CreatePost(t *testing.T, db *gorm.DB, authorID uint, status models.PostStatus, overrides ...func(*models.Post)) *models.Post {
	t.Helper()
	post := &models.Post{
		AuthorID: authorID,
		Title:    "Exam season is rough",
		Body:     "How does everyone cope with finals week?",
		Category: models.CategoryAcademics,
		Status:   status,
	}
	for _, override := range overrides {
		override(post)
	}
	require.NoError(t, db.WithContext(context.Background()).Create(post).Error)
	return post
}
