package memory

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mkuznetsov/filmsocial/engine/internal/repository"
	"github.com/mkuznetsov/filmsocial/engine/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUsers(t *testing.T, r *Repository, n int) []model.User {
	t.Helper()
	ctx := context.Background()
	users := make([]model.User, 0, n)
	for i := 0; i < n; i++ {
		u, err := r.CreateUser(ctx, model.User{Login: "user", Name: "User"})
		require.NoError(t, err)
		users = append(users, u)
	}
	return users
}

func TestCreateAssignsMonotonicIDs(t *testing.T) {
	r := New()
	users := seedUsers(t, r, 3)
	assert.Equal(t, model.UserID(1), users[0].ID)
	assert.Equal(t, model.UserID(3), users[2].ID)

	ctx := context.Background()
	f1, err := r.CreateFilm(ctx, model.Film{Title: "one"})
	require.NoError(t, err)
	f2, err := r.CreateFilm(ctx, model.Film{Title: "two"})
	require.NoError(t, err)
	assert.Equal(t, model.FilmID(1), f1.ID)
	assert.Equal(t, model.FilmID(2), f2.ID)
}

func TestFriendEdgesAreASet(t *testing.T) {
	r := New()
	users := seedUsers(t, r, 3)
	ctx := context.Background()

	require.NoError(t, r.AddFriend(ctx, users[0].ID, users[1].ID))
	require.NoError(t, r.AddFriend(ctx, users[0].ID, users[1].ID))
	require.NoError(t, r.AddFriend(ctx, users[0].ID, users[2].ID))

	friends, err := r.Friends(ctx, users[0].ID)
	require.NoError(t, err)
	require.Len(t, friends, 2)
	assert.Equal(t, users[1].ID, friends[0].ID)
	assert.Equal(t, users[2].ID, friends[1].ID)

	// Directed: nothing points back.
	back, err := r.Friends(ctx, users[1].ID)
	require.NoError(t, err)
	assert.Empty(t, back)

	require.NoError(t, r.RemoveFriend(ctx, users[0].ID, users[1].ID))
	require.NoError(t, r.RemoveFriend(ctx, users[0].ID, users[1].ID))
	friends, err = r.Friends(ctx, users[0].ID)
	require.NoError(t, err)
	require.Len(t, friends, 1)
}

func TestLikeEdgesAreASet(t *testing.T) {
	r := New()
	users := seedUsers(t, r, 2)
	ctx := context.Background()
	film, err := r.CreateFilm(ctx, model.Film{Title: "film"})
	require.NoError(t, err)

	require.NoError(t, r.AddLike(ctx, film.ID, users[0].ID))
	require.NoError(t, r.AddLike(ctx, film.ID, users[0].ID))
	require.NoError(t, r.AddLike(ctx, film.ID, users[1].ID))

	n, err := r.LikeCount(ctx, film.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	likers, err := r.Likers(ctx, film.ID)
	require.NoError(t, err)
	if diff := cmp.Diff([]model.UserID{users[0].ID, users[1].ID}, likers); diff != "" {
		t.Errorf("likers mismatch (-want +got):\n%s", diff)
	}

	require.NoError(t, r.RemoveLike(ctx, film.ID, users[0].ID))
	require.NoError(t, r.RemoveLike(ctx, film.ID, users[0].ID))
	n, err = r.LikeCount(ctx, film.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	liked, err := r.LikedFilms(ctx, users[1].ID)
	require.NoError(t, err)
	if diff := cmp.Diff([]model.FilmID{film.ID}, liked); diff != "" {
		t.Errorf("liked films mismatch (-want +got):\n%s", diff)
	}
}

func TestReviewVoteBookkeeping(t *testing.T) {
	r := New()
	users := seedUsers(t, r, 2)
	ctx := context.Background()
	film, err := r.CreateFilm(ctx, model.Film{Title: "film"})
	require.NoError(t, err)
	rev, err := r.CreateReview(ctx, model.Review{Content: "fine", AuthorID: users[0].ID, FilmID: film.ID})
	require.NoError(t, err)

	require.NoError(t, r.AddReviewVote(ctx, rev.ID, users[0].ID, model.VoteLike))
	require.NoError(t, r.AddReviewVote(ctx, rev.ID, users[1].ID, model.VoteDislike))
	likes, dislikes, err := r.ReviewVotes(ctx, rev.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, likes)
	assert.Equal(t, 1, dislikes)

	// The same voter flipping polarity replaces the edge.
	require.NoError(t, r.AddReviewVote(ctx, rev.ID, users[1].ID, model.VoteLike))
	likes, dislikes, err = r.ReviewVotes(ctx, rev.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, likes)
	assert.Equal(t, 0, dislikes)

	// Removing a polarity the voter does not hold is a no-op.
	require.NoError(t, r.RemoveReviewVote(ctx, rev.ID, users[0].ID, model.VoteDislike))
	likes, _, err = r.ReviewVotes(ctx, rev.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, likes)

	require.NoError(t, r.DeleteReview(ctx, rev.ID))
	_, err = r.Review(ctx, rev.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	likes, dislikes, err = r.ReviewVotes(ctx, rev.ID)
	require.NoError(t, err)
	assert.Zero(t, likes)
	assert.Zero(t, dislikes)
}

func TestUpdateReviewUnknownID(t *testing.T) {
	r := New()
	err := r.UpdateReview(context.Background(), 42, "text", true)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestFeedOrderingAndIDs(t *testing.T) {
	r := New()
	users := seedUsers(t, r, 2)
	ctx := context.Background()

	// Identical timestamps: event id must break the tie in insertion order.
	for i := 0; i < 3; i++ {
		_, err := r.AppendEvent(ctx, model.FeedEvent{
			Timestamp: 1000,
			UserID:    users[0].ID,
			EntityID:  int64(i),
			EventType: model.EventTypeLike,
			Operation: model.OperationAdd,
		})
		require.NoError(t, err)
	}
	_, err := r.AppendEvent(ctx, model.FeedEvent{
		Timestamp: 500,
		UserID:    users[0].ID,
		EntityID:  99,
		EventType: model.EventTypeFriend,
		Operation: model.OperationAdd,
	})
	require.NoError(t, err)
	_, err = r.AppendEvent(ctx, model.FeedEvent{
		Timestamp: 1000,
		UserID:    users[1].ID,
		EntityID:  7,
		EventType: model.EventTypeReview,
		Operation: model.OperationAdd,
	})
	require.NoError(t, err)

	events, err := r.EventsForUser(ctx, users[0].ID)
	require.NoError(t, err)
	require.Len(t, events, 4)
	assert.Equal(t, int64(99), events[0].EntityID)
	var prev model.FeedEvent
	for i, e := range events {
		assert.Equal(t, users[0].ID, e.UserID)
		if i > 0 {
			assert.LessOrEqual(t, prev.Timestamp, e.Timestamp)
			if prev.Timestamp == e.Timestamp {
				assert.Less(t, prev.EventID, e.EventID)
			}
		}
		prev = e
	}
}
