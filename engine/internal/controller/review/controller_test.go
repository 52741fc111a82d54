package review_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mkuznetsov/filmsocial/engine/internal/controller/review"
	"github.com/mkuznetsov/filmsocial/engine/pkg/model"
	"github.com/mkuznetsov/filmsocial/engine/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, e *testutil.Engine, users []model.UserID, films []model.FilmID) {
	t.Helper()
	ctx := context.Background()
	for _, id := range users {
		_, err := e.Store.CreateUser(ctx, model.User{ID: id, Login: "user"})
		require.NoError(t, err)
	}
	for _, id := range films {
		_, err := e.Store.CreateFilm(ctx, model.Film{ID: id, Title: "film"})
		require.NoError(t, err)
	}
}

func TestCreateValidation(t *testing.T) {
	e := testutil.NewTestEngine()
	seed(t, e, []model.UserID{1}, []model.FilmID{10})
	ctx := context.Background()

	_, err := e.Review.Create(ctx, 1, 10, "", true)
	assert.ErrorIs(t, err, review.ErrEmptyContent)
	_, err = e.Review.Create(ctx, 99, 10, "fine", true)
	assert.ErrorIs(t, err, review.ErrNotFound)
	_, err = e.Review.Create(ctx, 1, 99, "fine", true)
	assert.ErrorIs(t, err, review.ErrNotFound)
}

func TestCreateAndGet(t *testing.T) {
	e := testutil.NewTestEngine()
	seed(t, e, []model.UserID{1}, []model.FilmID{10})
	ctx := context.Background()

	rev, err := e.Review.Create(ctx, 1, 10, "worth watching", true)
	require.NoError(t, err)
	assert.NotZero(t, rev.ID)

	got, err := e.Review.Get(ctx, rev.ID)
	require.NoError(t, err)
	assert.Equal(t, "worth watching", got.Content)
	assert.True(t, got.Positive)
	assert.Equal(t, model.UserID(1), got.AuthorID)
	assert.Zero(t, got.Useful)

	events, err := e.Feed.ForUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.EventTypeReview, events[0].EventType)
	assert.Equal(t, model.OperationAdd, events[0].Operation)
	assert.Equal(t, int64(rev.ID), events[0].EntityID)
}

func TestUsefulnessFollowsVotes(t *testing.T) {
	e := testutil.NewTestEngine()
	seed(t, e, []model.UserID{1, 2, 3, 4, 5}, []model.FilmID{10})
	ctx := context.Background()
	rev, err := e.Review.Create(ctx, 1, 10, "fine", true)
	require.NoError(t, err)

	for _, voter := range []model.UserID{2, 3, 4} {
		require.NoError(t, e.Review.VoteLike(ctx, rev.ID, voter))
	}
	require.NoError(t, e.Review.VoteDislike(ctx, rev.ID, 5))

	useful, err := e.Review.Usefulness(ctx, rev.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, useful)

	require.NoError(t, e.Review.RemoveVoteLike(ctx, rev.ID, 2))
	require.NoError(t, e.Review.RemoveVoteLike(ctx, rev.ID, 3))
	require.NoError(t, e.Review.RemoveVoteLike(ctx, rev.ID, 4))
	require.NoError(t, e.Review.RemoveVoteDislike(ctx, rev.ID, 5))
	useful, err = e.Review.Usefulness(ctx, rev.ID)
	require.NoError(t, err)
	assert.Zero(t, useful)
}

func TestVoteReplacesOppositePolarity(t *testing.T) {
	e := testutil.NewTestEngine()
	seed(t, e, []model.UserID{1, 2}, []model.FilmID{10})
	ctx := context.Background()
	rev, err := e.Review.Create(ctx, 1, 10, "fine", true)
	require.NoError(t, err)

	require.NoError(t, e.Review.VoteLike(ctx, rev.ID, 2))
	require.NoError(t, e.Review.VoteDislike(ctx, rev.ID, 2))
	useful, err := e.Review.Usefulness(ctx, rev.ID)
	require.NoError(t, err)
	assert.Equal(t, -1, useful)

	// Removing a vote the voter does not hold is a no-op.
	require.NoError(t, e.Review.RemoveVoteLike(ctx, rev.ID, 2))
	useful, err = e.Review.Usefulness(ctx, rev.ID)
	require.NoError(t, err)
	assert.Equal(t, -1, useful)
}

func TestVoteUnknownIDs(t *testing.T) {
	e := testutil.NewTestEngine()
	seed(t, e, []model.UserID{1}, []model.FilmID{10})
	ctx := context.Background()
	rev, err := e.Review.Create(ctx, 1, 10, "fine", true)
	require.NoError(t, err)

	assert.ErrorIs(t, e.Review.VoteLike(ctx, 99, 1), review.ErrNotFound)
	assert.ErrorIs(t, e.Review.VoteLike(ctx, rev.ID, 99), review.ErrNotFound)
	assert.ErrorIs(t, e.Review.RemoveVoteDislike(ctx, 99, 1), review.ErrNotFound)
}

func TestUpdateAttributedToOriginalAuthor(t *testing.T) {
	e := testutil.NewTestEngine()
	seed(t, e, []model.UserID{1}, []model.FilmID{10})
	ctx := context.Background()
	rev, err := e.Review.Create(ctx, 1, 10, "fine", true)
	require.NoError(t, err)

	updated, err := e.Review.Update(ctx, rev.ID, "actually bad", false)
	require.NoError(t, err)
	assert.Equal(t, "actually bad", updated.Content)
	assert.False(t, updated.Positive)
	assert.Equal(t, model.UserID(1), updated.AuthorID)

	events, err := e.Feed.ForUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, model.OperationUpdate, events[1].Operation)
	assert.Equal(t, model.UserID(1), events[1].UserID)

	_, err = e.Review.Update(ctx, rev.ID, "", true)
	assert.ErrorIs(t, err, review.ErrEmptyContent)
	_, err = e.Review.Update(ctx, 99, "text", true)
	assert.ErrorIs(t, err, review.ErrNotFound)
}

func TestRemoveCascadesVotes(t *testing.T) {
	e := testutil.NewTestEngine()
	seed(t, e, []model.UserID{1, 2}, []model.FilmID{10})
	ctx := context.Background()
	rev, err := e.Review.Create(ctx, 1, 10, "fine", true)
	require.NoError(t, err)
	require.NoError(t, e.Review.VoteLike(ctx, rev.ID, 2))

	require.NoError(t, e.Review.Remove(ctx, rev.ID))
	_, err = e.Review.Get(ctx, rev.ID)
	assert.ErrorIs(t, err, review.ErrNotFound)
	assert.ErrorIs(t, e.Review.Remove(ctx, rev.ID), review.ErrNotFound)

	likes, dislikes, err := e.Store.ReviewVotes(ctx, rev.ID)
	require.NoError(t, err)
	assert.Zero(t, likes)
	assert.Zero(t, dislikes)

	events, err := e.Feed.ForUser(ctx, 1)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, model.OperationRemove, events[1].Operation)
}

func TestListRankedByUsefulness(t *testing.T) {
	e := testutil.NewTestEngine()
	seed(t, e, []model.UserID{1, 2, 3}, []model.FilmID{10, 20})
	ctx := context.Background()

	r1, err := e.Review.Create(ctx, 1, 10, "first", true)
	require.NoError(t, err)
	r2, err := e.Review.Create(ctx, 2, 10, "second", false)
	require.NoError(t, err)
	r3, err := e.Review.Create(ctx, 3, 20, "third", true)
	require.NoError(t, err)

	require.NoError(t, e.Review.VoteLike(ctx, r2.ID, 1))
	require.NoError(t, e.Review.VoteLike(ctx, r2.ID, 3))
	require.NoError(t, e.Review.VoteDislike(ctx, r1.ID, 2))

	// Per film: only film 10's reviews, ranked useful desc, id breaking ties.
	got, err := e.Review.List(ctx, 10, 10)
	require.NoError(t, err)
	ids := make([]model.ReviewID, 0, len(got))
	for _, r := range got {
		ids = append(ids, r.ID)
	}
	if diff := cmp.Diff([]model.ReviewID{r2.ID, r1.ID}, ids); diff != "" {
		t.Errorf("per-film ranking mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, got[0].Useful)
	assert.Equal(t, -1, got[1].Useful)

	// Across all films, truncated.
	got, err = e.Review.List(ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, r2.ID, got[0].ID)
	assert.Equal(t, r3.ID, got[1].ID)

	got, err = e.Review.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = e.Review.List(ctx, 99, 10)
	assert.ErrorIs(t, err, review.ErrNotFound)
}
