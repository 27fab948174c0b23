package service

import (
	"context"
	"testing"

	"campuscare/internal/models"
	"campuscare/internal/repository"
	"campuscare/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db         *gorm.DB
	store      repository.Store
	moderation *ModerationService
	engagement *EngagementService
	flags      *FlagService
	comments   *CommentService
	queries    *QueryService

	counselor models.Actor
	students  []models.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	store := repository.NewStore(db)

	f := &fixture{
		db:         db,
		store:      store,
		moderation: NewModerationService(store, nil, nil),
		engagement: NewEngagementService(store, nil),
		flags:      NewFlagService(store, nil, nil),
		comments:   NewCommentService(store, store.Users(), nil),
		queries:    NewQueryService(store, store.Users(), nil),
	}

	kim := testutil.CreateUser(t, db, "dr_kim", models.RoleCounselor)
	f.counselor = models.Actor{UserID: kim.ID, Role: models.RoleCounselor}
	for _, name := range []string{"alex", "sam", "riley", "jo"} {
		u := testutil.CreateUser(t, db, name, models.RoleStudent)
		f.students = append(f.students, models.Actor{UserID: u.ID, Role: models.RoleStudent})
	}
	return f
}

func (f *fixture) submit(t *testing.T, author models.Actor) *models.Post {
	t.Helper()
	post, err := f.moderation.Submit(context.Background(), author, SubmitPostInput{
		Title:    "Feeling overwhelmed",
		Body:     "Midterms and work are piling up.",
		Category: "Anxiety",
	})
	require.NoError(t, err)
	return post
}

func (f *fixture) approved(t *testing.T, author models.Actor) *models.Post {
	t.Helper()
	post := f.submit(t, author)
	post, err := f.moderation.Approve(context.Background(), f.counselor, post.ID, "ok")
	require.NoError(t, err)
	return post
}

func (f *fixture) reload(t *testing.T, id uint) *models.Post {
	t.Helper()
	post, err := f.store.Posts().GetByID(context.Background(), id)
	require.NoError(t, err)
	return post
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, models.ErrorCode(err), "unexpected error: %v", err)
}
