package service

import (
	"context"
	"log/slog"

	"campuscare/internal/models"
	"campuscare/internal/notifications"
	"campuscare/internal/observability"
	"campuscare/internal/repository"
)

const maxCommentLen = 5000

// CommentService appends to and reads post threads. Comments are immutable.
type CommentService struct {
	store    repository.Store
	authors  AuthorDirectory
	notifier *notifications.Notifier
}

// NewCommentService creates a CommentService. notifier may be nil.
func NewCommentService(store repository.Store, authors AuthorDirectory, notifier *notifications.Notifier) *CommentService {
	return &CommentService{store: store, authors: authors, notifier: notifier}
}

// AddComment appends a comment to an approved post.
func (s *CommentService) AddComment(ctx context.Context, actor models.Actor, postID uint, body string, anonymous bool) (*models.Comment, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}
	body, err := validateText("comment", body, maxCommentLen)
	if err != nil {
		return nil, err
	}

	span, ctx := observability.StartSpan(ctx, "add_comment", postID)
	var (
		comment  *models.Comment
		authorID uint
	)
	err = s.store.InPostTx(ctx, postID, func(tx repository.Store, post *models.Post) error {
		if post.Status != models.PostStatusApproved {
			return models.NewInvalidStateError("comments are only accepted on approved posts")
		}
		comment = &models.Comment{
			PostID:    post.ID,
			AuthorID:  actor.UserID,
			Body:      body,
			Anonymous: anonymous,
		}
		authorID = post.AuthorID
		return tx.Comments().Create(ctx, comment)
	})
	err = storeError(err, "Post", postID)
	span.End(err)
	if err != nil {
		return nil, err
	}

	observability.CommentsCreated.Inc()
	renderCommentAuthors(ctx, s.authors, comment)
	if authorID != actor.UserID {
		if err := s.notifier.PublishUser(ctx, authorID, notifications.Event{
			Type:   notifications.EventNewComment,
			PostID: postID,
		}); err != nil {
			slog.WarnContext(ctx, "failed to notify post author", "post_id", postID, "err", err)
		}
	}
	return comment, nil
}

// ListComments returns the thread oldest first with author names rendered.
func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	if _, err := s.store.Posts().GetByID(ctx, postID); err != nil {
		return nil, storeError(err, "Post", postID)
	}
	comments, err := s.store.Comments().ListByPost(ctx, postID)
	if err != nil {
		return nil, storeError(err, "Post", postID)
	}
	renderCommentAuthors(ctx, s.authors, comments...)
	return comments, nil
}
