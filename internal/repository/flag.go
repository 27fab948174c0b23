package repository

import (
	"context"

	"campuscare/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FlagRepository defines the flag ledger operations.
type FlagRepository interface {
	Exists(ctx context.Context, postID, userID uint) (bool, error)
	// Insert adds the flag and reports whether a row was written; a
	// (post, user) conflict yields (false, nil).
	Insert(ctx context.Context, flag *models.Flag) (bool, error)
	ListByPost(ctx context.Context, postID uint) ([]*models.Flag, error)
	CountByPost(ctx context.Context, postID uint) (int64, error)
	DeleteByPost(ctx context.Context, postID uint) (int64, error)
}

type flagRepository struct {
	db *gorm.DB
}

// NewFlagRepository creates a new flag repository
func NewFlagRepository(db *gorm.DB) FlagRepository {
	return &flagRepository{db: db}
}

func (r *flagRepository) Exists(ctx context.Context, postID, userID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Flag{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *flagRepository) Insert(ctx context.Context, flag *models.Flag) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(flag)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListByPost returns the post's flags, newest first.
func (r *flagRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Flag, error) {
	var flags []*models.Flag
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&flags).Error
	return flags, err
}

func (r *flagRepository) CountByPost(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Flag{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}

func (r *flagRepository) DeleteByPost(ctx context.Context, postID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Delete(&models.Flag{})
	return result.RowsAffected, result.Error
}
