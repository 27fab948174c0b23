package service

import (
	"context"
	"log/slog"

	"campuscare/internal/cache"
	"campuscare/internal/models"
	"campuscare/internal/observability"
	"campuscare/internal/repository"
)

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	Count int64 `json:"like_count"`
	Liked bool  `json:"liked"`
}

// EngagementService maintains the like ledger and the derived like count.
type EngagementService struct {
	store repository.Store
	feed  *cache.Cache
	now   clock
}

// NewEngagementService creates an EngagementService. feed may be nil.
func NewEngagementService(store repository.Store, feed *cache.Cache) *EngagementService {
	return &EngagementService{store: store, feed: feed, now: systemClock}
}

// ToggleLike likes the post for actor, or unlikes it when a like already
// exists. The returned count is recounted from the ledger.
func (s *EngagementService) ToggleLike(ctx context.Context, actor models.Actor, postID uint) (LikeResult, error) {
	if err := requireAuthenticated(actor); err != nil {
		return LikeResult{}, err
	}

	span, ctx := observability.StartSpan(ctx, "toggle_like", postID)
	var (
		result LikeResult
		status models.PostStatus
	)
	err := s.store.InPostTx(ctx, postID, func(tx repository.Store, post *models.Post) error {
		// hidden posts answer exactly like missing ones
		if !post.IsVisibleTo(actor) {
			return models.NewNotFoundError("Post", post.ID)
		}
		likes := tx.Likes()
		exists, err := likes.Exists(ctx, post.ID, actor.UserID)
		if err != nil {
			return err
		}
		if exists {
			if _, err := likes.Remove(ctx, post.ID, actor.UserID); err != nil {
				return err
			}
			result.Liked = false
		} else {
			// a skipped insert means a concurrent request already liked it
			if _, err := likes.Insert(ctx, post.ID, actor.UserID); err != nil {
				return err
			}
			result.Liked = true
		}

		count, err := likes.CountByPost(ctx, post.ID)
		if err != nil {
			return err
		}
		if err := tx.Posts().SetLikeCount(ctx, post.ID, count, s.now()); err != nil {
			return err
		}
		result.Count = count
		status = post.Status
		return nil
	})
	err = storeError(err, "Post", postID)
	span.End(err)
	if err != nil {
		return LikeResult{}, err
	}

	action := "unlike"
	if result.Liked {
		action = "like"
	}
	observability.LikeToggles.WithLabelValues(action).Inc()
	slog.DebugContext(ctx, "like toggled", "post_id", postID, "action", action, "like_count", result.Count)
	if status == models.PostStatusApproved {
		s.feed.InvalidateFeed(ctx)
	}
	return result, nil
}

// HasLiked reports whether userID currently likes the post.
func (s *EngagementService) HasLiked(ctx context.Context, postID, userID uint) (bool, error) {
	if _, err := s.store.Posts().GetByID(ctx, postID); err != nil {
		return false, storeError(err, "Post", postID)
	}
	liked, err := s.store.Likes().Exists(ctx, postID, userID)
	if err != nil {
		return false, storeError(err, "Post", postID)
	}
	return liked, nil
}
