// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"campuscare/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the aggregate store: one repository per entity plus transactions
// scoped to a single post aggregate.
type Store interface {
	Posts() PostRepository
	Comments() CommentRepository
	Likes() LikeRepository
	Flags() FlagRepository
	Users() UserRepository

	// InPostTx loads the post inside a transaction, locking its row where the
	// dialect supports row locks, and runs fn against a Store bound to that
	// transaction. Any error returned by fn rolls the transaction back.
	// A missing post yields gorm.ErrRecordNotFound.
	InPostTx(ctx context.Context, postID uint, fn func(tx Store, post *models.Post) error) error
}

type gormStore struct {
	db       *gorm.DB
	posts    PostRepository
	comments CommentRepository
	likes    LikeRepository
	flags    FlagRepository
	users    UserRepository
}

// NewStore creates a Store over db.
func NewStore(db *gorm.DB) Store {
	return &gormStore{
		db:       db,
		posts:    NewPostRepository(db),
		comments: NewCommentRepository(db),
		likes:    NewLikeRepository(db),
		flags:    NewFlagRepository(db),
		users:    NewUserRepository(db),
	}
}

func (s *gormStore) Posts() PostRepository       { return s.posts }
func (s *gormStore) Comments() CommentRepository { return s.comments }
func (s *gormStore) Likes() LikeRepository       { return s.likes }
func (s *gormStore) Flags() FlagRepository       { return s.flags }
func (s *gormStore) Users() UserRepository       { return s.users }

func (s *gormStore) InPostTx(ctx context.Context, postID uint, fn func(tx Store, post *models.Post) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx
		// SQLite serializes writers itself and has no FOR UPDATE.
		if tx.Dialector.Name() == "postgres" {
			query = query.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
		}

		var post models.Post
		if err := query.First(&post, postID).Error; err != nil {
			return err
		}
		return fn(NewStore(tx), &post)
	})
}
