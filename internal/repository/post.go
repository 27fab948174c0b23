package repository

import (
	"context"
	"time"

	"campuscare/internal/models"

	"gorm.io/gorm"
)

// PostFilter narrows post listings. A nil Category matches every category.
type PostFilter struct {
	Status   models.PostStatus
	Category *models.Category
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, filter PostFilter) ([]*models.Post, error)
	CountByStatus(ctx context.Context, status models.PostStatus) (int64, error)
	UpdateModeration(ctx context.Context, id uint, status models.PostStatus, note *string, at time.Time) error
	SetLikeCount(ctx context.Context, id uint, count int64, at time.Time) error
	SetFlagCount(ctx context.Context, id uint, count int64, at time.Time) error
	Delete(ctx context.Context, id uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// List returns matching posts, newest first.
func (r *postRepository) List(ctx context.Context, filter PostFilter) ([]*models.Post, error) {
	var posts []*models.Post
	query := r.db.WithContext(ctx).Where("status = ?", filter.Status)
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	err := query.Order("created_at DESC").Order("id DESC").Find(&posts).Error
	return posts, err
}

func (r *postRepository) CountByStatus(ctx context.Context, status models.PostStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

func (r *postRepository) UpdateModeration(ctx context.Context, id uint, status models.PostStatus, note *string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":          status,
			"moderation_note": note,
			"updated_at":      at,
		}).Error
}

func (r *postRepository) SetLikeCount(ctx context.Context, id uint, count int64, at time.Time) error {
	return r.setCounter(ctx, id, "like_count", count, at)
}

func (r *postRepository) SetFlagCount(ctx context.Context, id uint, count int64, at time.Time) error {
	return r.setCounter(ctx, id, "flag_count", count, at)
}

func (r *postRepository) setCounter(ctx context.Context, id uint, column string, count int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			column:       count,
			"updated_at": at,
		}).Error
}

// Delete removes the post together with its comments, likes and flags.
// The foreign keys cascade as well; the explicit deletes keep SQLite
// connections without foreign key enforcement free of orphans.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Flag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
}
