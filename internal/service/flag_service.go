package service

import (
	"context"
	"log/slog"

	"campuscare/internal/cache"
	"campuscare/internal/models"
	"campuscare/internal/notifications"
	"campuscare/internal/observability"
	"campuscare/internal/repository"
)

const maxFlagReasonLen = 500

// FlagService records reports from students. Flags never change a post's
// status; counselors act on them through the moderation queue.
type FlagService struct {
	store    repository.Store
	feed     *cache.Cache
	notifier *notifications.Notifier
	now      clock
}

// NewFlagService creates a FlagService. feed and notifier may be nil.
func NewFlagService(store repository.Store, feed *cache.Cache, notifier *notifications.Notifier) *FlagService {
	return &FlagService{store: store, feed: feed, notifier: notifier, now: systemClock}
}

// FlagPost reports the post on behalf of actor. A second report from the
// same user fails with a duplicate action error.
func (s *FlagService) FlagPost(ctx context.Context, actor models.Actor, postID uint, reason string) (*models.Post, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}
	reason, err := validateText("reason", reason, maxFlagReasonLen)
	if err != nil {
		return nil, err
	}

	span, ctx := observability.StartSpan(ctx, "flag", postID)
	var updated *models.Post
	err = s.store.InPostTx(ctx, postID, func(tx repository.Store, post *models.Post) error {
		if !post.IsVisibleTo(actor) {
			return models.NewNotFoundError("Post", post.ID)
		}
		flags := tx.Flags()
		exists, err := flags.Exists(ctx, post.ID, actor.UserID)
		if err != nil {
			return err
		}
		if exists {
			return models.NewDuplicateActionError("already reported")
		}
		inserted, err := flags.Insert(ctx, &models.Flag{PostID: post.ID, UserID: actor.UserID, Reason: reason})
		if err != nil {
			return err
		}
		if !inserted {
			return models.NewDuplicateActionError("already reported")
		}

		count, err := flags.CountByPost(ctx, post.ID)
		if err != nil {
			return err
		}
		at := s.now()
		if err := tx.Posts().SetFlagCount(ctx, post.ID, count, at); err != nil {
			return err
		}
		post.FlagCount = count
		post.UpdatedAt = at
		updated = post
		return nil
	})
	err = storeError(err, "Post", postID)
	span.End(err)
	if err != nil {
		if models.ErrorCode(err) == models.CodeDuplicateAction {
			observability.FlagReports.WithLabelValues("duplicate").Inc()
		}
		return nil, err
	}

	observability.FlagReports.WithLabelValues("recorded").Inc()
	slog.InfoContext(ctx, "post flagged", "post_id", postID, "flag_count", updated.FlagCount)
	if updated.Status == models.PostStatusApproved {
		s.feed.InvalidateFeed(ctx)
	}
	if err := s.notifier.PublishModerators(ctx, notifications.Event{
		Type:      notifications.EventPostFlagged,
		PostID:    postID,
		FlagCount: updated.FlagCount,
	}); err != nil {
		slog.WarnContext(ctx, "failed to notify moderators", "post_id", postID, "err", err)
	}
	return updated, nil
}

// GetFlags lists the flags on a post, newest first.
func (s *FlagService) GetFlags(ctx context.Context, postID uint) ([]*models.Flag, error) {
	if _, err := s.store.Posts().GetByID(ctx, postID); err != nil {
		return nil, storeError(err, "Post", postID)
	}
	flags, err := s.store.Flags().ListByPost(ctx, postID)
	if err != nil {
		return nil, storeError(err, "Post", postID)
	}
	return flags, nil
}

// HasFlagged reports whether userID has already reported the post.
func (s *FlagService) HasFlagged(ctx context.Context, postID, userID uint) (bool, error) {
	if _, err := s.store.Posts().GetByID(ctx, postID); err != nil {
		return false, storeError(err, "Post", postID)
	}
	flagged, err := s.store.Flags().Exists(ctx, postID, userID)
	if err != nil {
		return false, storeError(err, "Post", postID)
	}
	return flagged, nil
}
