package service

import (
	"context"
	"log/slog"

	"campuscare/internal/cache"
	"campuscare/internal/models"
	"campuscare/internal/notifications"
	"campuscare/internal/observability"
	"campuscare/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

const (
	maxTitleLen = 200
	maxBodyLen  = 20000
)

// ModerationService owns every write to a post's status.
type ModerationService struct {
	store    repository.Store
	feed     *cache.Cache
	notifier *notifications.Notifier
	now      clock
}

// SubmitPostInput carries a new post from a student.
type SubmitPostInput struct {
	Title     string
	Body      string
	Category  string
	Anonymous bool
}

// NewModerationService creates a ModerationService. feed and notifier may be nil.
func NewModerationService(store repository.Store, feed *cache.Cache, notifier *notifications.Notifier) *ModerationService {
	return &ModerationService{
		store:    store,
		feed:     feed,
		notifier: notifier,
		now:      systemClock,
	}
}

// Submit creates a PENDING post authored by actor.
func (s *ModerationService) Submit(ctx context.Context, actor models.Actor, in SubmitPostInput) (*models.Post, error) {
	if err := requireAuthenticated(actor); err != nil {
		return nil, err
	}
	title, err := validateText("title", in.Title, maxTitleLen)
	if err != nil {
		return nil, err
	}
	body, err := validateText("body", in.Body, maxBodyLen)
	if err != nil {
		return nil, err
	}
	category := models.CategoryGeneral
	if in.Category != "" {
		parsed, ok := models.ParseCategory(in.Category)
		if !ok {
			return nil, models.NewValidationError("unknown category: " + in.Category)
		}
		category = parsed
	}

	span, ctx := observability.StartSpan(ctx, "submit", 0)
	post := &models.Post{
		AuthorID:  actor.UserID,
		Title:     title,
		Body:      body,
		Category:  category,
		Anonymous: in.Anonymous,
		Status:    models.PostStatusPending,
	}
	err = storeError(s.store.Posts().Create(ctx, post), "Post", 0)
	span.End(err)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "post submitted", "post_id", post.ID, "category", post.Category)
	s.notifyModerators(ctx, notifications.Event{Type: notifications.EventPostSubmitted, PostID: post.ID})
	return post, nil
}

// Approve publishes a PENDING post. Re-approving an APPROVED post only
// replaces the note; approving a REJECTED post is refused.
func (s *ModerationService) Approve(ctx context.Context, actor models.Actor, postID uint, note string) (*models.Post, error) {
	return s.transition(ctx, actor, "approve", postID, models.PostStatusApproved, note, func(p *models.Post) error {
		if p.Status == models.PostStatusRejected {
			return models.NewInvalidStateError("rejected posts must be reset to pending before approval")
		}
		return nil
	})
}

// Reject hides a post from the feed. Allowed from any state.
func (s *ModerationService) Reject(ctx context.Context, actor models.Actor, postID uint, note string) (*models.Post, error) {
	return s.transition(ctx, actor, "reject", postID, models.PostStatusRejected, note, nil)
}

// ResetToPending sends a post back to the moderation queue.
func (s *ModerationService) ResetToPending(ctx context.Context, actor models.Actor, postID uint, note string) (*models.Post, error) {
	return s.transition(ctx, actor, "requeue", postID, models.PostStatusPending, note, nil)
}

func (s *ModerationService) transition(
	ctx context.Context,
	actor models.Actor,
	decision string,
	postID uint,
	target models.PostStatus,
	note string,
	guard func(*models.Post) error,
) (*models.Post, error) {
	if err := requireCounselor(actor); err != nil {
		return nil, err
	}

	span, ctx := observability.StartSpan(ctx, decision, postID)
	var (
		updated  *models.Post
		previous models.PostStatus
	)
	err := s.store.InPostTx(ctx, postID, func(tx repository.Store, post *models.Post) error {
		if guard != nil {
			if err := guard(post); err != nil {
				return err
			}
		}
		previous = post.Status
		at := s.now()
		stored := notePtr(note)
		if err := tx.Posts().UpdateModeration(ctx, post.ID, target, stored, at); err != nil {
			return err
		}
		post.Status = target
		post.ModerationNote = stored
		post.UpdatedAt = at
		updated = post
		return nil
	})
	err = storeError(err, "Post", postID)
	span.AddAttributes(attribute.String("forum.status", string(target)))
	span.End(err)
	if err != nil {
		return nil, err
	}

	observability.ModerationDecisions.WithLabelValues(decision).Inc()
	slog.InfoContext(ctx, "moderation decision",
		"post_id", postID,
		"decision", decision,
		"from", previous,
		"to", target,
		"moderator_id", actor.UserID,
	)
	if previous == models.PostStatusApproved || target == models.PostStatusApproved {
		s.feed.InvalidateFeed(ctx)
	}
	s.notifyAuthor(ctx, updated.AuthorID, notifications.Event{
		Type:   decisionEvent(target),
		PostID: postID,
		Note:   updated.Note(),
	})
	return updated, nil
}

func decisionEvent(target models.PostStatus) string {
	switch target {
	case models.PostStatusApproved:
		return notifications.EventPostApproved
	case models.PostStatusRejected:
		return notifications.EventPostRejected
	default:
		return notifications.EventPostRequeued
	}
}

// ClearFlags removes every flag on a post and zeroes its flag count. Status
// is left untouched.
func (s *ModerationService) ClearFlags(ctx context.Context, actor models.Actor, postID uint) (*models.Post, error) {
	if err := requireCounselor(actor); err != nil {
		return nil, err
	}

	span, ctx := observability.StartSpan(ctx, "clear_flags", postID)
	var (
		updated *models.Post
		removed int64
	)
	err := s.store.InPostTx(ctx, postID, func(tx repository.Store, post *models.Post) error {
		var err error
		if removed, err = tx.Flags().DeleteByPost(ctx, post.ID); err != nil {
			return err
		}
		count, err := tx.Flags().CountByPost(ctx, post.ID)
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
		return nil, err
	}

	observability.ModerationDecisions.WithLabelValues("clear_flags").Inc()
	slog.InfoContext(ctx, "flags cleared", "post_id", postID, "removed", removed, "moderator_id", actor.UserID)
	if updated.Status == models.PostStatusApproved {
		s.feed.InvalidateFeed(ctx)
	}
	return updated, nil
}

// Delete removes a post with its comments, likes and flags. Counselors may
// delete any post, students only their own.
func (s *ModerationService) Delete(ctx context.Context, actor models.Actor, postID uint) error {
	if err := requireAuthenticated(actor); err != nil {
		return err
	}

	span, ctx := observability.StartSpan(ctx, "delete", postID)
	var deleted models.Post
	err := s.store.InPostTx(ctx, postID, func(tx repository.Store, post *models.Post) error {
		if !actor.IsCounselor() && post.AuthorID != actor.UserID {
			return models.NewForbiddenError("only the author or a counselor can delete this post")
		}
		deleted = *post
		return tx.Posts().Delete(ctx, post.ID)
	})
	err = storeError(err, "Post", postID)
	span.End(err)
	if err != nil {
		return err
	}

	observability.ModerationDecisions.WithLabelValues("delete").Inc()
	slog.InfoContext(ctx, "post deleted", "post_id", postID, "actor_id", actor.UserID)
	if deleted.Status == models.PostStatusApproved {
		s.feed.InvalidateFeed(ctx)
	}
	if deleted.AuthorID != actor.UserID {
		s.notifyAuthor(ctx, deleted.AuthorID, notifications.Event{Type: notifications.EventPostDeleted, PostID: postID})
	}
	return nil
}

func (s *ModerationService) notifyAuthor(ctx context.Context, authorID uint, event notifications.Event) {
	if err := s.notifier.PublishUser(ctx, authorID, event); err != nil {
		slog.WarnContext(ctx, "failed to notify author", "post_id", event.PostID, "event", event.Type, "err", err)
	}
}

func (s *ModerationService) notifyModerators(ctx context.Context, event notifications.Event) {
	if err := s.notifier.PublishModerators(ctx, event); err != nil {
		slog.WarnContext(ctx, "failed to notify moderators", "post_id", event.PostID, "event", event.Type, "err", err)
	}
}
