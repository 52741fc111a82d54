package mysql

import (
	"context"
	"database/sql"
	"errors"

	// Registers the "mysql" driver with database/sql.
	_ "github.com/go-sql-driver/mysql"
	"github.com/mkuznetsov/filmsocial/engine/internal/repository"
	"github.com/mkuznetsov/filmsocial/engine/pkg/model"
	"go.opentelemetry.io/otel"
)

const tracerID = "store-mysql"

// Repository is the MySQL-backed store. Edge mutations are single statements,
// so concurrent calls touching the same aggregate serialize in the database.
// The expected tables are created by scripts/schema.sql.
type Repository struct {
	db *sql.DB
}

// New creates a MySQL store over an open connection pool.
func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser inserts a user and returns it with the generated id.
func (r *Repository) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (login, name, email, birthday) VALUES (?, ?, ?, ?)",
		u.Login, u.Name, u.Email, u.Birthday)
	if err != nil {
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	u.ID = model.UserID(id)
	return u, nil
}

// CreateFilm inserts a film together with its genre and director tags.
func (r *Repository) CreateFilm(ctx context.Context, f model.Film) (model.Film, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO films (title, mpa_id, release_date, duration) VALUES (?, ?, ?, ?)",
		f.Title, f.MpaID, f.ReleaseDate, f.Duration)
	if err != nil {
		return model.Film{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Film{}, err
	}
	f.ID = model.FilmID(id)
	for _, g := range f.GenreIDs {
		if _, err := r.db.ExecContext(ctx,
			"INSERT IGNORE INTO film_genres (film_id, genre_id) VALUES (?, ?)", f.ID, g); err != nil {
			return model.Film{}, err
		}
	}
	for _, d := range f.DirectorIDs {
		if _, err := r.db.ExecContext(ctx,
			"INSERT IGNORE INTO film_directors (film_id, director_id) VALUES (?, ?)", f.ID, d); err != nil {
			return model.Film{}, err
		}
	}
	return f, nil
}

// CreateDirector inserts a director and returns it with the generated id.
func (r *Repository) CreateDirector(ctx context.Context, d model.Director) (model.Director, error) {
	res, err := r.db.ExecContext(ctx, "INSERT INTO directors (name) VALUES (?)", d.Name)
	if err != nil {
		return model.Director{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Director{}, err
	}
	d.ID = model.DirectorID(id)
	return d, nil
}

func (r *Repository) exists(ctx context.Context, query string, id int64) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Repository) UserExists(ctx context.Context, id model.UserID) (bool, error) {
	return r.exists(ctx, "SELECT COUNT(*) FROM users WHERE user_id = ?", int64(id))
}

func (r *Repository) FilmExists(ctx context.Context, id model.FilmID) (bool, error) {
	return r.exists(ctx, "SELECT COUNT(*) FROM films WHERE film_id = ?", int64(id))
}

func (r *Repository) DirectorExists(ctx context.Context, id model.DirectorID) (bool, error) {
	return r.exists(ctx, "SELECT COUNT(*) FROM directors WHERE director_id = ?", int64(id))
}

// User retrieves a user by id.
func (r *Repository) User(ctx context.Context, id model.UserID) (model.User, error) {
	var u model.User
	err := r.db.QueryRowContext(ctx,
		"SELECT user_id, login, name, email, birthday FROM users WHERE user_id = ?", id).
		Scan(&u.ID, &u.Login, &u.Name, &u.Email, &u.Birthday)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, repository.ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}

// Film retrieves a film by id, with genre and director tags attached.
func (r *Repository) Film(ctx context.Context, id model.FilmID) (model.Film, error) {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/Film")
	defer span.End()

	var f model.Film
	err := r.db.QueryRowContext(ctx,
		"SELECT film_id, title, mpa_id, release_date, duration FROM films WHERE film_id = ?", id).
		Scan(&f.ID, &f.Title, &f.MpaID, &f.ReleaseDate, &f.Duration)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Film{}, repository.ErrNotFound
	}
	if err != nil {
		return model.Film{}, err
	}
	films := []model.Film{f}
	if err := r.loadFilmTags(ctx, films); err != nil {
		return model.Film{}, err
	}
	return films[0], nil
}

// Films returns every stored film ordered by id.
func (r *Repository) Films(ctx context.Context) ([]model.Film, error) {
	return r.queryFilms(ctx,
		"SELECT film_id, title, mpa_id, release_date, duration FROM films ORDER BY film_id")
}

// FilmsByDirector returns the films tagged with the given director, ordered by id.
func (r *Repository) FilmsByDirector(ctx context.Context, id model.DirectorID) ([]model.Film, error) {
	return r.queryFilms(ctx,
		"SELECT f.film_id, f.title, f.mpa_id, f.release_date, f.duration "+
			"FROM films f JOIN film_directors fd ON f.film_id = fd.film_id "+
			"WHERE fd.director_id = ? ORDER BY f.film_id", id)
}

func (r *Repository) queryFilms(ctx context.Context, query string, args ...interface{}) ([]model.Film, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var films []model.Film
	for rows.Next() {
		var f model.Film
		if err := rows.Scan(&f.ID, &f.Title, &f.MpaID, &f.ReleaseDate, &f.Duration); err != nil {
			return nil, err
		}
		films = append(films, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadFilmTags(ctx, films); err != nil {
		return nil, err
	}
	return films, nil
}

func (r *Repository) loadFilmTags(ctx context.Context, films []model.Film) error {
	byID := make(map[model.FilmID]*model.Film, len(films))
	for i := range films {
		byID[films[i].ID] = &films[i]
	}
	rows, err := r.db.QueryContext(ctx, "SELECT film_id, genre_id FROM film_genres")
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var filmID model.FilmID
		var genreID model.GenreID
		if err := rows.Scan(&filmID, &genreID); err != nil {
			return err
		}
		if f, ok := byID[filmID]; ok {
			f.GenreIDs = append(f.GenreIDs, genreID)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	drows, err := r.db.QueryContext(ctx, "SELECT film_id, director_id FROM film_directors")
	if err != nil {
		return err
	}
	defer drows.Close()
	for drows.Next() {
		var filmID model.FilmID
		var directorID model.DirectorID
		if err := drows.Scan(&filmID, &directorID); err != nil {
			return err
		}
		if f, ok := byID[filmID]; ok {
			f.DirectorIDs = append(f.DirectorIDs, directorID)
		}
	}
	return drows.Err()
}

// AddFriend inserts the directed friendship edge. Re-adding is a no-op.
func (r *Repository) AddFriend(ctx context.Context, userID, friendID model.UserID) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT IGNORE INTO friendship (user_id, friend_id) VALUES (?, ?)", userID, friendID)
	return err
}

// RemoveFriend deletes the directed friendship edge; absent edges are a no-op.
func (r *Repository) RemoveFriend(ctx context.Context, userID, friendID model.UserID) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM friendship WHERE user_id = ? AND friend_id = ?", userID, friendID)
	return err
}

// Friends returns the users the given user points to, ordered by id.
func (r *Repository) Friends(ctx context.Context, userID model.UserID) ([]model.User, error) {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/Friends")
	defer span.End()

	rows, err := r.db.QueryContext(ctx,
		"SELECT u.user_id, u.login, u.name, u.email, u.birthday "+
			"FROM users u JOIN friendship f ON u.user_id = f.friend_id "+
			"WHERE f.user_id = ? ORDER BY u.user_id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Login, &u.Name, &u.Email, &u.Birthday); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// AddLike inserts the like edge. Re-liking is a no-op.
func (r *Repository) AddLike(ctx context.Context, filmID model.FilmID, userID model.UserID) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT IGNORE INTO likes (film_id, user_id) VALUES (?, ?)", filmID, userID)
	return err
}

// RemoveLike deletes the like edge; absent edges are a no-op.
func (r *Repository) RemoveLike(ctx context.Context, filmID model.FilmID, userID model.UserID) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM likes WHERE film_id = ? AND user_id = ?", filmID, userID)
	return err
}

// Likers returns the ids of users who like the given film, ordered.
func (r *Repository) Likers(ctx context.Context, filmID model.FilmID) ([]model.UserID, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT user_id FROM likes WHERE film_id = ? ORDER BY user_id", filmID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []model.UserID
	for rows.Next() {
		var id model.UserID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// LikedFilms returns the ids of films the given user likes, ordered.
func (r *Repository) LikedFilms(ctx context.Context, userID model.UserID) ([]model.FilmID, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT film_id FROM likes WHERE user_id = ? ORDER BY film_id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []model.FilmID
	for rows.Next() {
		var id model.FilmID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *Repository) LikeCount(ctx context.Context, filmID model.FilmID) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM likes WHERE film_id = ?", filmID).Scan(&n)
	return n, err
}

// CreateReview inserts a review and returns it with the generated id.
func (r *Repository) CreateReview(ctx context.Context, rev model.Review) (model.Review, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO reviews (content, is_positive, user_id, film_id) VALUES (?, ?, ?, ?)",
		rev.Content, rev.Positive, rev.AuthorID, rev.FilmID)
	if err != nil {
		return model.Review{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Review{}, err
	}
	rev.ID = model.ReviewID(id)
	rev.Useful = 0
	return rev, nil
}

// UpdateReview overwrites content and sentiment only.
func (r *Repository) UpdateReview(ctx context.Context, id model.ReviewID, content string, positive bool) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE reviews SET content = ?, is_positive = ? WHERE review_id = ?", content, positive, id)
	if err != nil {
		return err
	}
	// MySQL reports zero affected rows for a no-change update as well, so an
	// existence probe keeps not-found detection honest.
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		ok, err := r.exists(ctx, "SELECT COUNT(*) FROM reviews WHERE review_id = ?", int64(id))
		if err != nil {
			return err
		}
		if !ok {
			return repository.ErrNotFound
		}
	}
	return nil
}

// DeleteReview removes the review and cascades its vote edges in one
// transaction.
func (r *Repository) DeleteReview(ctx context.Context, id model.ReviewID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM review_votes WHERE review_id = ?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM reviews WHERE review_id = ?", id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}
	return tx.Commit()
}

// Review retrieves a review by id. Useful is left to the caller to compute.
func (r *Repository) Review(ctx context.Context, id model.ReviewID) (model.Review, error) {
	var rev model.Review
	err := r.db.QueryRowContext(ctx,
		"SELECT review_id, content, is_positive, user_id, film_id FROM reviews WHERE review_id = ?", id).
		Scan(&rev.ID, &rev.Content, &rev.Positive, &rev.AuthorID, &rev.FilmID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Review{}, repository.ErrNotFound
	}
	if err != nil {
		return model.Review{}, err
	}
	return rev, nil
}

// Reviews returns reviews for one film, or all reviews when filmID is zero,
// ordered by review id.
func (r *Repository) Reviews(ctx context.Context, filmID model.FilmID) ([]model.Review, error) {
	query := "SELECT review_id, content, is_positive, user_id, film_id FROM reviews ORDER BY review_id"
	args := []interface{}{}
	if filmID != 0 {
		query = "SELECT review_id, content, is_positive, user_id, film_id FROM reviews WHERE film_id = ? ORDER BY review_id"
		args = append(args, filmID)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var revs []model.Review
	for rows.Next() {
		var rev model.Review
		if err := rows.Scan(&rev.ID, &rev.Content, &rev.Positive, &rev.AuthorID, &rev.FilmID); err != nil {
			return nil, err
		}
		revs = append(revs, rev)
	}
	return revs, rows.Err()
}

// AddReviewVote records the voter's polarity, replacing any prior edge the
// voter held on the review.
func (r *Repository) AddReviewVote(ctx context.Context, id model.ReviewID, voterID model.UserID, polarity model.VotePolarity) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO review_votes (review_id, user_id, polarity) VALUES (?, ?, ?) "+
			"ON DUPLICATE KEY UPDATE polarity = VALUES(polarity)",
		id, voterID, string(polarity))
	return err
}

// RemoveReviewVote deletes the voter's edge if it holds the given polarity;
// otherwise a no-op.
func (r *Repository) RemoveReviewVote(ctx context.Context, id model.ReviewID, voterID model.UserID, polarity model.VotePolarity) error {
	_, err := r.db.ExecContext(ctx,
		"DELETE FROM review_votes WHERE review_id = ? AND user_id = ? AND polarity = ?",
		id, voterID, string(polarity))
	return err
}

// ReviewVotes counts the like and dislike edges of a review.
func (r *Repository) ReviewVotes(ctx context.Context, id model.ReviewID) (likes, dislikes int, err error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT polarity, COUNT(*) FROM review_votes WHERE review_id = ? GROUP BY polarity", id)
	if err != nil {
		return 0, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		var polarity string
		var n int
		if err := rows.Scan(&polarity, &n); err != nil {
			return 0, 0, err
		}
		switch model.VotePolarity(polarity) {
		case model.VoteLike:
			likes = n
		case model.VoteDislike:
			dislikes = n
		}
	}
	return likes, dislikes, rows.Err()
}

// AppendEvent stores a feed event; the auto-increment key is the event id.
func (r *Repository) AppendEvent(ctx context.Context, e model.FeedEvent) (int64, error) {
	ctx, span := otel.Tracer(tracerID).Start(ctx, "Repository/AppendEvent")
	defer span.End()

	res, err := r.db.ExecContext(ctx,
		"INSERT INTO feed (timestamp, user_id, entity_id, event_type, operation) VALUES (?, ?, ?, ?, ?)",
		e.Timestamp, e.UserID, e.EntityID, string(e.EventType), string(e.Operation))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// EventsForUser returns the user's feed events ordered by timestamp, then by
// event id.
func (r *Repository) EventsForUser(ctx context.Context, userID model.UserID) ([]model.FeedEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT event_id, timestamp, user_id, entity_id, event_type, operation "+
			"FROM feed WHERE user_id = ? ORDER BY timestamp, event_id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.FeedEvent
	for rows.Next() {
		var e model.FeedEvent
		var eventType, operation string
		if err := rows.Scan(&e.EventID, &e.Timestamp, &e.UserID, &e.EntityID, &eventType, &operation); err != nil {
			return nil, err
		}
		e.EventType = model.EventType(eventType)
		e.Operation = model.Operation(operation)
		events = append(events, e)
	}
	return events, rows.Err()
}
