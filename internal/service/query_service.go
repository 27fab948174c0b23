package service

import (
	"context"
	"strings"

	"campuscare/internal/cache"
	"campuscare/internal/models"
	"campuscare/internal/repository"
)

// QueryService serves the read-only views of the forum.
type QueryService struct {
	store   repository.Store
	authors AuthorDirectory
	feed    *cache.Cache
}

// ModerationStats summarizes the moderation workload.
type ModerationStats struct {
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
	Flagged  int64 `json:"flagged"`
}

// NewQueryService creates a QueryService. feed may be nil.
func NewQueryService(store repository.Store, authors AuthorDirectory, feed *cache.Cache) *QueryService {
	return &QueryService{store: store, authors: authors, feed: feed}
}

// ListApproved returns the approved feed, newest first.
func (s *QueryService) ListApproved(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	err := s.feed.Aside(ctx, cache.ApprovedFeedKey, &posts, func() error {
		loaded, err := s.store.Posts().List(ctx, repository.PostFilter{Status: models.PostStatusApproved})
		if err != nil {
			return storeError(err, "Post", 0)
		}
		renderPostAuthors(ctx, s.authors, loaded...)
		posts = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// ListByCategory narrows the approved feed to one category. An empty or
// "all" category returns the whole feed.
func (s *QueryService) ListByCategory(ctx context.Context, category string) ([]*models.Post, error) {
	if category == "" || strings.EqualFold(strings.TrimSpace(category), "all") {
		return s.ListApproved(ctx)
	}
	parsed, ok := models.ParseCategory(category)
	if !ok {
		return nil, models.NewValidationError("unknown category: " + category)
	}
	return s.list(ctx, repository.PostFilter{Status: models.PostStatusApproved, Category: &parsed})
}

// ListForModeration returns the PENDING queue, newest first.
func (s *QueryService) ListForModeration(ctx context.Context) ([]*models.Post, error) {
	return s.list(ctx, repository.PostFilter{Status: models.PostStatusPending})
}

// ListFlagged returns approved posts that carry at least one flag.
func (s *QueryService) ListFlagged(ctx context.Context) ([]*models.Post, error) {
	approved, err := s.ListApproved(ctx)
	if err != nil {
		return nil, err
	}
	flagged := make([]*models.Post, 0)
	for _, p := range approved {
		if p.FlagCount > 0 {
			flagged = append(flagged, p)
		}
	}
	return flagged, nil
}

// CountPending returns the size of the moderation queue.
func (s *QueryService) CountPending(ctx context.Context) (int64, error) {
	count, err := s.store.Posts().CountByStatus(ctx, models.PostStatusPending)
	if err != nil {
		return 0, storeError(err, "Post", 0)
	}
	return count, nil
}

// CountFlagged returns len(ListFlagged).
func (s *QueryService) CountFlagged(ctx context.Context) (int64, error) {
	flagged, err := s.ListFlagged(ctx)
	if err != nil {
		return 0, err
	}
	return int64(len(flagged)), nil
}

// Stats reports post counts per status plus the flagged count.
func (s *QueryService) Stats(ctx context.Context) (ModerationStats, error) {
	var stats ModerationStats
	counts := []struct {
		status models.PostStatus
		dest   *int64
	}{
		{models.PostStatusPending, &stats.Pending},
		{models.PostStatusApproved, &stats.Approved},
		{models.PostStatusRejected, &stats.Rejected},
	}
	for _, c := range counts {
		n, err := s.store.Posts().CountByStatus(ctx, c.status)
		if err != nil {
			return ModerationStats{}, storeError(err, "Post", 0)
		}
		*c.dest = n
	}
	flagged, err := s.CountFlagged(ctx)
	if err != nil {
		return ModerationStats{}, err
	}
	stats.Flagged = flagged
	return stats, nil
}

// GetPost returns a single post. Posts outside the approved feed are only
// visible to counselors and their author; everyone else gets not found.
func (s *QueryService) GetPost(ctx context.Context, viewer models.Actor, postID uint) (*models.Post, error) {
	post, err := s.store.Posts().GetByID(ctx, postID)
	if err != nil {
		return nil, storeError(err, "Post", postID)
	}
	if !post.IsVisibleTo(viewer) {
		return nil, models.NewNotFoundError("Post", postID)
	}
	renderPostAuthors(ctx, s.authors, post)
	return post, nil
}

func (s *QueryService) list(ctx context.Context, filter repository.PostFilter) ([]*models.Post, error) {
	posts, err := s.store.Posts().List(ctx, filter)
	if err != nil {
		return nil, storeError(err, "Post", 0)
	}
	renderPostAuthors(ctx, s.authors, posts...)
	return posts, nil
}
