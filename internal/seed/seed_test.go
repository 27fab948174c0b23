package seed

import (
	"context"
	"testing"

	"campuscare/internal/models"
	"campuscare/internal/repository"
	"campuscare/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeeder_RunKeepsCountersExact(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	store := repository.NewStore(db)

	summary, err := NewSeeder(store, 42).Run(context.Background(), Options{Students: 6, Counselors: 1, Posts: 15})
	require.NoError(t, err)

	assert.Equal(t, 7, summary.Users)
	assert.Equal(t, 15, summary.Posts)
	assert.Equal(t, summary.Posts, summary.Approved+summary.Rejected+summary.Pending)

	var posts []models.Post
	require.NoError(t, db.Find(&posts).Error)
	require.Len(t, posts, 15)

	var likeTotal, flagTotal int64
	for _, p := range posts {
		var likes, flags int64
		require.NoError(t, db.Model(&models.Like{}).Where("post_id = ?", p.ID).Count(&likes).Error)
		require.NoError(t, db.Model(&models.Flag{}).Where("post_id = ?", p.ID).Count(&flags).Error)
		assert.Equal(t, likes, p.LikeCount, "post %d", p.ID)
		assert.Equal(t, flags, p.FlagCount, "post %d", p.ID)
		likeTotal += likes
		flagTotal += flags
	}
	assert.Equal(t, int64(summary.Likes), likeTotal)
	assert.Equal(t, int64(summary.Flags), flagTotal)

	var comments int64
	require.NoError(t, db.Model(&models.Comment{}).Count(&comments).Error)
	assert.Equal(t, int64(summary.Comments), comments)
}

func TestSeeder_RequiresUsers(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	_, err := NewSeeder(repository.NewStore(db), 1).Run(context.Background(), Options{Posts: 3})
	assert.Error(t, err)
}
