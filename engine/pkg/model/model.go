package model

import "time"

type UserID int64
type FilmID int64
type DirectorID int64
type GenreID int64
type MpaID int64
type ReviewID int64

// User is a registered account. Login uniqueness is a storage concern.
type User struct {
	ID       UserID    `json:"id"`
	Login    string    `json:"login"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Birthday time.Time `json:"birthday"`
}

// Film carries the attributes the engine ranks and recommends on. Genres are
// opaque tags; directors matter only for director-scoped rankings.
type Film struct {
	ID          FilmID       `json:"id"`
	Title       string       `json:"title"`
	MpaID       MpaID        `json:"mpaId"`
	GenreIDs    []GenreID    `json:"genreIds,omitempty"`
	DirectorIDs []DirectorID `json:"directorIds,omitempty"`
	ReleaseDate time.Time    `json:"releaseDate"`
	Duration    int          `json:"duration"`
}

type Director struct {
	ID   DirectorID `json:"id"`
	Name string     `json:"name"`
}

// Review holds a user's verdict on a film. Useful is likes minus dislikes
// among its votes, recomputed on every read and never persisted.
type Review struct {
	ID       ReviewID `json:"reviewId"`
	Content  string   `json:"content"`
	Positive bool     `json:"isPositive"`
	AuthorID UserID   `json:"userId"`
	FilmID   FilmID   `json:"filmId"`
	Useful   int      `json:"useful"`
}

type VotePolarity string

const (
	VoteLike    = VotePolarity("like")
	VoteDislike = VotePolarity("dislike")
)
