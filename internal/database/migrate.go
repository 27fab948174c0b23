package database

import (
	"fmt"

	"campuscare/internal/models"
	"campuscare/internal/observability"

	"gorm.io/gorm"
)

// Models lists every table owned by the forum, parents before children.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Flag{},
	}
}

// Migrate creates or updates the forum schema, including the (post_id, user_id)
// unique indexes on likes and flags and the cascading foreign keys.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	observability.Logger.Info("Database migration completed")
	return nil
}
