package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type feedEntry struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, time.Minute), mr
}

func TestCache_AsideFetchesOnceThenHits(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *[]feedEntry) func() error {
		return func() error {
			calls++
			*dest = []feedEntry{{ID: 1, Title: "hello"}}
			return nil
		}
	}

	var first []feedEntry
	require.NoError(t, c.Aside(ctx, ApprovedFeedKey, &first, fetch(&first)))
	var second []feedEntry
	require.NoError(t, c.Aside(ctx, ApprovedFeedKey, &second, fetch(&second)))

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
	assert.True(t, mr.Exists(ApprovedFeedKey))
	assert.Equal(t, time.Minute, mr.TTL(ApprovedFeedKey))

	c.InvalidateFeed(ctx)
	assert.False(t, mr.Exists(ApprovedFeedKey))
}

func TestCache_AsideDropsFillThatRacedInvalidation(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	var stale []feedEntry
	err := c.Aside(ctx, ApprovedFeedKey, &stale, func() error {
		stale = []feedEntry{{ID: 1, Title: "rejected meanwhile"}}
		// a moderation decision commits while the reader is still loading
		c.InvalidateFeed(ctx)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, stale, 1, "the racing reader still gets its own result")
	assert.False(t, mr.Exists(ApprovedFeedKey))

	gen, err := mr.Get(ApprovedFeedKey + generationSuffix)
	require.NoError(t, err)
	assert.Equal(t, "1", gen)

	calls := 0
	var fresh []feedEntry
	require.NoError(t, c.Aside(ctx, ApprovedFeedKey, &fresh, func() error {
		calls++
		fresh = []feedEntry{}
		return nil
	}))
	assert.Equal(t, 1, calls)
	assert.Empty(t, fresh)
	assert.True(t, mr.Exists(ApprovedFeedKey))
	assert.Equal(t, time.Minute, mr.TTL(ApprovedFeedKey))

	var cached []feedEntry
	require.NoError(t, c.Aside(ctx, ApprovedFeedKey, &cached, func() error {
		calls++
		return nil
	}))
	assert.Equal(t, 1, calls)
	assert.Empty(t, cached)
}

func TestCache_AsideDegradesWhenRedisIsDown(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	var entries []feedEntry
	err := c.Aside(context.Background(), ApprovedFeedKey, &entries, func() error {
		entries = []feedEntry{{ID: 2}}
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCache_AsidePropagatesFetchError(t *testing.T) {
	c, mr := newTestCache(t)
	boom := errors.New("db down")

	var entries []feedEntry
	err := c.Aside(context.Background(), ApprovedFeedKey, &entries, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists(ApprovedFeedKey))
}

func TestCache_NilClientIsPassThrough(t *testing.T) {
	c := New(nil, 0)
	assert.False(t, c.Enabled())

	found, err := c.GetJSON(context.Background(), ApprovedFeedKey, &[]feedEntry{})
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, c.SetJSON(context.Background(), ApprovedFeedKey, []feedEntry{}))
	c.InvalidateFeed(context.Background())
}

func TestConnect_UnreachableReturnsNil(t *testing.T) {
	assert.Nil(t, Connect(context.Background(), "redis://%zz"))

	mr := miniredis.RunT(t)
	client := Connect(context.Background(), mr.Addr())
	require.NotNil(t, client)
	_ = client.Close()
}
