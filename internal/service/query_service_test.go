package service

import (
	"context"
	"testing"

	"campuscare/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedMixedFeed leaves two approved posts (one flagged), one pending and one rejected.
func seedMixedFeed(t *testing.T, f *fixture) (approved, flagged, pending, rejected *models.Post) {
	t.Helper()
	ctx := context.Background()

	approved = f.approved(t, f.students[0])
	flagged = f.approved(t, f.students[1])
	_, err := f.flags.FlagPost(ctx, f.students[2], flagged.ID, "worrying")
	require.NoError(t, err)

	pending = f.submit(t, f.students[2])
	rejected = f.submit(t, f.students[3])
	_, err = f.moderation.Reject(ctx, f.counselor, rejected.ID, "spam")
	require.NoError(t, err)
	// flags on non-approved posts never show up in the flagged view
	_, err = f.flags.FlagPost(ctx, f.counselor, rejected.ID, "spam")
	require.NoError(t, err)
	return approved, flagged, pending, rejected
}

func TestQueryService_ApprovedFeedOnlyHoldsApprovedPosts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	approved, flagged, _, _ := seedMixedFeed(t, f)

	feed, err := f.queries.ListApproved(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	for _, p := range feed {
		assert.Equal(t, models.PostStatusApproved, p.Status)
	}
	assert.Equal(t, flagged.ID, feed[0].ID)
	assert.Equal(t, approved.ID, feed[1].ID)
	assert.Equal(t, "alex", feed[1].AuthorName)
}

func TestQueryService_FlaggedIsSubsetOfApproved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, flagged, _, _ := seedMixedFeed(t, f)

	feed, err := f.queries.ListApproved(ctx)
	require.NoError(t, err)
	view, err := f.queries.ListFlagged(ctx)
	require.NoError(t, err)

	var expected []uint
	for _, p := range feed {
		if p.FlagCount > 0 {
			expected = append(expected, p.ID)
		}
	}
	var got []uint
	for _, p := range view {
		got = append(got, p.ID)
	}
	assert.Equal(t, expected, got)
	assert.Equal(t, []uint{flagged.ID}, got)

	count, err := f.queries.CountFlagged(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestQueryService_ModerationQueueAndStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, _, pending, _ := seedMixedFeed(t, f)

	queue, err := f.queries.ListForModeration(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, pending.ID, queue[0].ID)

	count, err := f.queries.CountPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	stats, err := f.queries.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, ModerationStats{Pending: 1, Approved: 2, Rejected: 1, Flagged: 1}, stats)
}

func TestQueryService_ListByCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	anxiety := f.approved(t, f.students[0])

	other, err := f.moderation.Submit(ctx, f.students[1], SubmitPostInput{
		Title: "Study group", Body: "Anyone for calc?", Category: "academics", Anonymous: true,
	})
	require.NoError(t, err)
	_, err = f.moderation.Approve(ctx, f.counselor, other.ID, "")
	require.NoError(t, err)

	posts, err := f.queries.ListByCategory(ctx, "ANXIETY")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, anxiety.ID, posts[0].ID)

	posts, err = f.queries.ListByCategory(ctx, "academics")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, AnonymousAuthorName, posts[0].AuthorName)

	for _, all := range []string{"", "all", "All"} {
		posts, err = f.queries.ListByCategory(ctx, all)
		require.NoError(t, err)
		assert.Len(t, posts, 2)
	}

	_, err = f.queries.ListByCategory(ctx, "memes")
	assertCode(t, err, models.CodeValidation)
}

func TestQueryService_GetPostVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.students[0]
	pending := f.submit(t, author)
	approved := f.approved(t, author)

	got, err := f.queries.GetPost(ctx, models.Anonymous, approved.ID)
	require.NoError(t, err)
	assert.Equal(t, "alex", got.AuthorName)

	_, err = f.queries.GetPost(ctx, f.students[1], pending.ID)
	assertCode(t, err, models.CodeNotFound)
	_, err = f.queries.GetPost(ctx, author, pending.ID)
	require.NoError(t, err)
	_, err = f.queries.GetPost(ctx, f.counselor, pending.ID)
	require.NoError(t, err)
	_, err = f.queries.GetPost(ctx, f.counselor, 5150)
	assertCode(t, err, models.CodeNotFound)
}
