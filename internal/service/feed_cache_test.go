package service

import (
	"context"
	"testing"
	"time"

	"campuscare/internal/cache"
	"campuscare/internal/models"
	"campuscare/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// interleavedStore runs afterList once, right after the first post listing
// returns and before the caller can cache it.
type interleavedStore struct {
	repository.Store
	afterList func()
}

func (s *interleavedStore) Posts() repository.PostRepository {
	return &interleavedPosts{PostRepository: s.Store.Posts(), store: s}
}

type interleavedPosts struct {
	repository.PostRepository
	store *interleavedStore
}

func (p *interleavedPosts) List(ctx context.Context, filter repository.PostFilter) ([]*models.Post, error) {
	posts, err := p.PostRepository.List(ctx, filter)
	if hook := p.store.afterList; hook != nil {
		p.store.afterList = nil
		hook()
	}
	return posts, err
}

func newRedisFeed(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return cache.New(rdb, time.Minute), mr
}

func TestQueryService_FeedNeverCachesPostRejectedDuringLoad(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	feed, _ := newRedisFeed(t)
	f.moderation = NewModerationService(f.store, feed, nil)

	post := f.approved(t, f.students[0])
	racing := &interleavedStore{Store: f.store}
	racing.afterList = func() {
		_, err := f.moderation.Reject(ctx, f.counselor, post.ID, "self-harm details")
		require.NoError(t, err)
	}
	queries := NewQueryService(racing, f.store.Users(), feed)

	first, err := queries.ListApproved(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1, "the racing read was served from the pre-decision snapshot")

	after, err := queries.ListApproved(ctx)
	require.NoError(t, err)
	assert.Empty(t, after)

	flagged, err := queries.CountFlagged(ctx)
	require.NoError(t, err)
	assert.Zero(t, flagged)
}

func TestQueryService_FeedNeverCachesPostDeletedDuringLoad(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	feed, mr := newRedisFeed(t)
	f.moderation = NewModerationService(f.store, feed, nil)

	kept := f.approved(t, f.students[0])
	removed := f.approved(t, f.students[1])
	racing := &interleavedStore{Store: f.store}
	racing.afterList = func() {
		require.NoError(t, f.moderation.Delete(ctx, f.counselor, removed.ID))
	}
	queries := NewQueryService(racing, f.store.Users(), feed)

	_, err := queries.ListApproved(ctx)
	require.NoError(t, err)
	assert.False(t, mr.Exists(cache.ApprovedFeedKey))

	after, err := queries.ListApproved(ctx)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, kept.ID, after[0].ID)
	assert.True(t, mr.Exists(cache.ApprovedFeedKey))
}
