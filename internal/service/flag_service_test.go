package service

import (
	"context"
	"strings"
	"testing"

	"campuscare/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagService_SecondReportIsDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.approved(t, f.students[0])
	reporter := f.students[1]

	flagged, err := f.flags.FlagPost(ctx, reporter, post.ID, "harassment")
	require.NoError(t, err)
	assert.Equal(t, int64(1), flagged.FlagCount)
	assert.Equal(t, models.PostStatusApproved, flagged.Status)

	_, err = f.flags.FlagPost(ctx, reporter, post.ID, "still harassment")
	assertCode(t, err, models.CodeDuplicateAction)
	assert.Equal(t, int64(1), f.reload(t, post.ID).FlagCount)

	has, err := f.flags.HasFlagged(ctx, post.ID, reporter.UserID)
	require.NoError(t, err)
	assert.True(t, has)
	has, err = f.flags.HasFlagged(ctx, post.ID, f.students[2].UserID)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestFlagService_FlagsNeverChangeStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.approved(t, f.students[0])

	for _, reporter := range append(f.students[1:], f.counselor) {
		_, err := f.flags.FlagPost(ctx, reporter, post.ID, "concerning")
		require.NoError(t, err)
	}

	stored := f.reload(t, post.ID)
	assert.Equal(t, models.PostStatusApproved, stored.Status)
	assert.Equal(t, int64(4), stored.FlagCount)

	pending := f.submit(t, f.students[1])
	_, err := f.flags.FlagPost(ctx, f.counselor, pending.ID, "concerning")
	require.NoError(t, err)
	assert.Equal(t, models.PostStatusPending, f.reload(t, pending.ID).Status)
}

func TestFlagService_HiddenPostsLookMissing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pending := f.submit(t, f.students[0])

	_, err := f.flags.FlagPost(ctx, f.students[1], pending.ID, "concerning")
	assertCode(t, err, models.CodeNotFound)
	assert.Zero(t, f.reload(t, pending.ID).FlagCount)

	_, err = f.moderation.Reject(ctx, f.counselor, pending.ID, "")
	require.NoError(t, err)
	_, err = f.flags.FlagPost(ctx, f.students[2], pending.ID, "concerning")
	assertCode(t, err, models.CodeNotFound)
}

func TestFlagService_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.approved(t, f.students[0])

	_, err := f.flags.FlagPost(ctx, f.students[1], post.ID, "  ")
	assertCode(t, err, models.CodeValidation)
	_, err = f.flags.FlagPost(ctx, f.students[1], post.ID, strings.Repeat("x", maxFlagReasonLen+1))
	assertCode(t, err, models.CodeValidation)
	_, err = f.flags.FlagPost(ctx, f.students[1], 12345, "reason")
	assertCode(t, err, models.CodeNotFound)
	_, err = f.flags.GetFlags(ctx, 12345)
	assertCode(t, err, models.CodeNotFound)
	_, err = f.flags.HasFlagged(ctx, 12345, f.students[1].UserID)
	assertCode(t, err, models.CodeNotFound)

	assert.Zero(t, f.reload(t, post.ID).FlagCount)
}

func TestFlagService_GetFlagsNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	post := f.approved(t, f.students[0])

	for _, reporter := range f.students[1:] {
		_, err := f.flags.FlagPost(ctx, reporter, post.ID, "reason")
		require.NoError(t, err)
	}

	flags, err := f.flags.GetFlags(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, flags, 3)
	for i := 1; i < len(flags); i++ {
		prev, cur := flags[i-1], flags[i]
		assert.False(t, cur.CreatedAt.After(prev.CreatedAt))
		if cur.CreatedAt.Equal(prev.CreatedAt) {
			assert.Less(t, cur.ID, prev.ID)
		}
	}
}
