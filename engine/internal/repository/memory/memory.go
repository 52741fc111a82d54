package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mkuznetsov/filmsocial/engine/internal/repository"
	"github.com/mkuznetsov/filmsocial/engine/pkg/model"
	"go.opentelemetry.io/otel"
)

const tracerID = "store-memory"

// Repository is an in-process store holding every record the engine works
// with: users, films, directors, friendship edges, like edges, reviews, vote
// edges and the activity feed. All state is guarded by one RWMutex.
type Repository struct {
	sync.RWMutex
	users     map[model.UserID]model.User
	films     map[model.FilmID]model.Film
	directors map[model.DirectorID]model.Director
	friends   map[model.UserID]map[model.UserID]struct{}
	filmLikes map[model.FilmID]map[model.UserID]struct{}
	userLikes map[model.UserID]map[model.FilmID]struct{}
	reviews   map[model.ReviewID]model.Review
	votes     map[model.ReviewID]map[model.UserID]model.VotePolarity
	feed      []model.FeedEvent

	nextUserID     model.UserID
	nextFilmID     model.FilmID
	nextDirectorID model.DirectorID
	nextReviewID   model.ReviewID
	nextEventID    int64
}

// New creates a new in-memory store.
func New() *Repository {
	return &Repository{
		users:     map[model.UserID]model.User{},
		films:     map[model.FilmID]model.Film{},
		directors: map[model.DirectorID]model.Director{},
		friends:   map[model.UserID]map[model.UserID]struct{}{},
		filmLikes: map[model.FilmID]map[model.UserID]struct{}{},
		userLikes: map[model.UserID]map[model.FilmID]struct{}{},
		reviews:   map[model.ReviewID]model.Review{},
		votes:     map[model.ReviewID]map[model.UserID]model.VotePolarity{},
	}
}

// CreateUser stores a user and assigns the next free id when none is set.
func (r *Repository) CreateUser(_ context.Context, u model.User) (model.User, error) {
	r.Lock()
	defer r.Unlock()

	if u.ID == 0 {
		r.nextUserID++
		u.ID = r.nextUserID
	} else if u.ID > r.nextUserID {
		r.nextUserID = u.ID
	}
	r.users[u.ID] = u
	return u, nil
}

// CreateFilm stores a film and assigns the next free id when none is set.
func (r *Repository) CreateFilm(_ context.Context, f model.Film) (model.Film, error) {
	r.Lock()
	defer r.Unlock()

	if f.ID == 0 {
		r.nextFilmID++
		f.ID = r.nextFilmID
	} else if f.ID > r.nextFilmID {
		r.nextFilmID = f.ID
	}
	r.films[f.ID] = f
	return f, nil
}

// CreateDirector stores a director and assigns the next free id when none is set.
func (r *Repository) CreateDirector(_ context.Context, d model.Director) (model.Director, error) {
	r.Lock()
	defer r.Unlock()

	if d.ID == 0 {
		r.nextDirectorID++
		d.ID = r.nextDirectorID
	} else if d.ID > r.nextDirectorID {
		r.nextDirectorID = d.ID
	}
	r.directors[d.ID] = d
	return d, nil
}

func (r *Repository) UserExists(_ context.Context, id model.UserID) (bool, error) {
	r.RLock()
	defer r.RUnlock()
	_, ok := r.users[id]
	return ok, nil
}

func (r *Repository) FilmExists(_ context.Context, id model.FilmID) (bool, error) {
	r.RLock()
	defer r.RUnlock()
	_, ok := r.films[id]
	return ok, nil
}

func (r *Repository) DirectorExists(_ context.Context, id model.DirectorID) (bool, error) {
	r.RLock()
	defer r.RUnlock()
	_, ok := r.directors[id]
	return ok, nil
}

// User retrieves a user by id.
func (r *Repository) User(_ context.Context, id model.UserID) (model.User, error) {
	r.RLock()
	defer r.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

// Film retrieves a film by id.
func (r *Repository) Film(ctx context.Context, id model.FilmID) (model.Film, error) {
	r.RLock()
	defer r.RUnlock()

	_, span := otel.Tracer(tracerID).Start(ctx, "Repository/Film")
	defer span.End()

	f, ok := r.films[id]
	if !ok {
		return model.Film{}, repository.ErrNotFound
	}
	return f, nil
}

// Films returns every stored film ordered by id.
func (r *Repository) Films(_ context.Context) ([]model.Film, error) {
	r.RLock()
	defer r.RUnlock()

	res := make([]model.Film, 0, len(r.films))
	for _, f := range r.films {
		res = append(res, f)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

// FilmsByDirector returns the films tagged with the given director, ordered by id.
func (r *Repository) FilmsByDirector(_ context.Context, id model.DirectorID) ([]model.Film, error) {
	r.RLock()
	defer r.RUnlock()

	var res []model.Film
	for _, f := range r.films {
		for _, d := range f.DirectorIDs {
			if d == id {
				res = append(res, f)
				break
			}
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

// AddFriend inserts the directed friendship edge. Re-adding is a no-op.
func (r *Repository) AddFriend(_ context.Context, userID, friendID model.UserID) error {
	r.Lock()
	defer r.Unlock()

	if r.friends[userID] == nil {
		r.friends[userID] = map[model.UserID]struct{}{}
	}
	r.friends[userID][friendID] = struct{}{}
	return nil
}

// RemoveFriend deletes the directed friendship edge. Removing an absent edge
// is a no-op.
func (r *Repository) RemoveFriend(_ context.Context, userID, friendID model.UserID) error {
	r.Lock()
	defer r.Unlock()

	delete(r.friends[userID], friendID)
	return nil
}

// Friends returns the users the given user points to, ordered by id.
func (r *Repository) Friends(ctx context.Context, userID model.UserID) ([]model.User, error) {
	r.RLock()
	defer r.RUnlock()

	_, span := otel.Tracer(tracerID).Start(ctx, "Repository/Friends")
	defer span.End()

	res := make([]model.User, 0, len(r.friends[userID]))
	for id := range r.friends[userID] {
		if u, ok := r.users[id]; ok {
			res = append(res, u)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

// AddLike inserts the like edge. Re-liking is a no-op.
func (r *Repository) AddLike(_ context.Context, filmID model.FilmID, userID model.UserID) error {
	r.Lock()
	defer r.Unlock()

	if r.filmLikes[filmID] == nil {
		r.filmLikes[filmID] = map[model.UserID]struct{}{}
	}
	r.filmLikes[filmID][userID] = struct{}{}
	if r.userLikes[userID] == nil {
		r.userLikes[userID] = map[model.FilmID]struct{}{}
	}
	r.userLikes[userID][filmID] = struct{}{}
	return nil
}

// RemoveLike deletes the like edge. Removing an absent edge is a no-op.
func (r *Repository) RemoveLike(_ context.Context, filmID model.FilmID, userID model.UserID) error {
	r.Lock()
	defer r.Unlock()

	delete(r.filmLikes[filmID], userID)
	delete(r.userLikes[userID], filmID)
	return nil
}

// Likers returns the ids of users who like the given film, ordered.
func (r *Repository) Likers(_ context.Context, filmID model.FilmID) ([]model.UserID, error) {
	r.RLock()
	defer r.RUnlock()

	res := make([]model.UserID, 0, len(r.filmLikes[filmID]))
	for id := range r.filmLikes[filmID] {
		res = append(res, id)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res, nil
}

// LikedFilms returns the ids of films the given user likes, ordered.
func (r *Repository) LikedFilms(_ context.Context, userID model.UserID) ([]model.FilmID, error) {
	r.RLock()
	defer r.RUnlock()

	res := make([]model.FilmID, 0, len(r.userLikes[userID]))
	for id := range r.userLikes[userID] {
		res = append(res, id)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res, nil
}

func (r *Repository) LikeCount(_ context.Context, filmID model.FilmID) (int, error) {
	r.RLock()
	defer r.RUnlock()
	return len(r.filmLikes[filmID]), nil
}

// CreateReview stores a review, assigning the next review id. Useful is not
// persisted.
func (r *Repository) CreateReview(_ context.Context, rev model.Review) (model.Review, error) {
	r.Lock()
	defer r.Unlock()

	r.nextReviewID++
	rev.ID = r.nextReviewID
	rev.Useful = 0
	r.reviews[rev.ID] = rev
	return rev, nil
}

// UpdateReview overwrites content and sentiment only.
func (r *Repository) UpdateReview(_ context.Context, id model.ReviewID, content string, positive bool) error {
	r.Lock()
	defer r.Unlock()

	rev, ok := r.reviews[id]
	if !ok {
		return repository.ErrNotFound
	}
	rev.Content = content
	rev.Positive = positive
	r.reviews[id] = rev
	return nil
}

// DeleteReview removes the review together with all of its vote edges.
func (r *Repository) DeleteReview(_ context.Context, id model.ReviewID) error {
	r.Lock()
	defer r.Unlock()

	if _, ok := r.reviews[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.reviews, id)
	delete(r.votes, id)
	return nil
}

// Review retrieves a review by id.
func (r *Repository) Review(_ context.Context, id model.ReviewID) (model.Review, error) {
	r.RLock()
	defer r.RUnlock()

	rev, ok := r.reviews[id]
	if !ok {
		return model.Review{}, repository.ErrNotFound
	}
	return rev, nil
}

// Reviews returns reviews for one film, or all reviews when filmID is zero,
// ordered by review id.
func (r *Repository) Reviews(_ context.Context, filmID model.FilmID) ([]model.Review, error) {
	r.RLock()
	defer r.RUnlock()

	var res []model.Review
	for _, rev := range r.reviews {
		if filmID == 0 || rev.FilmID == filmID {
			res = append(res, rev)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

// AddReviewVote records the voter's polarity for a review, replacing whatever
// edge the voter held before.
func (r *Repository) AddReviewVote(_ context.Context, id model.ReviewID, voterID model.UserID, polarity model.VotePolarity) error {
	r.Lock()
	defer r.Unlock()

	if _, ok := r.reviews[id]; !ok {
		return repository.ErrNotFound
	}
	if r.votes[id] == nil {
		r.votes[id] = map[model.UserID]model.VotePolarity{}
	}
	r.votes[id][voterID] = polarity
	return nil
}

// RemoveReviewVote deletes the voter's edge if it holds the given polarity.
// Removing a polarity the voter does not hold is a no-op.
func (r *Repository) RemoveReviewVote(_ context.Context, id model.ReviewID, voterID model.UserID, polarity model.VotePolarity) error {
	r.Lock()
	defer r.Unlock()

	if p, ok := r.votes[id][voterID]; ok && p == polarity {
		delete(r.votes[id], voterID)
	}
	return nil
}

// ReviewVotes counts the like and dislike edges of a review.
func (r *Repository) ReviewVotes(_ context.Context, id model.ReviewID) (likes, dislikes int, err error) {
	r.RLock()
	defer r.RUnlock()

	for _, p := range r.votes[id] {
		switch p {
		case model.VoteLike:
			likes++
		case model.VoteDislike:
			dislikes++
		}
	}
	return likes, dislikes, nil
}

// AppendEvent stores a feed event, assigning the next monotonic event id.
func (r *Repository) AppendEvent(ctx context.Context, e model.FeedEvent) (int64, error) {
	r.Lock()
	defer r.Unlock()

	_, span := otel.Tracer(tracerID).Start(ctx, "Repository/AppendEvent")
	defer span.End()

	r.nextEventID++
	e.EventID = r.nextEventID
	r.feed = append(r.feed, e)
	return e.EventID, nil
}

// EventsForUser returns the user's feed events ordered by timestamp, then by
// event id for events stamped within the same millisecond.
func (r *Repository) EventsForUser(_ context.Context, userID model.UserID) ([]model.FeedEvent, error) {
	r.RLock()
	defer r.RUnlock()

	var res []model.FeedEvent
	for _, e := range r.feed {
		if e.UserID == userID {
			res = append(res, e)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Timestamp != res[j].Timestamp {
			return res[i].Timestamp < res[j].Timestamp
		}
		return res[i].EventID < res[j].EventID
	})
	return res, nil
}
