package likes

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/mkuznetsov/filmsocial/engine/pkg/model"
	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	// ErrNotFound is returned when a referenced user, film or director does
	// not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidSortMode is returned for a sort mode other than SortByLikes
	// or SortByYear.
	ErrInvalidSortMode = errors.New("invalid sort mode")
)

// Sort modes accepted by ByDirector.
const (
	SortByLikes = "likes"
	SortByYear  = "year"
)

// Ingestion of like events from the stream is throttled to keep a replayed
// backlog from starving interactive store traffic.
const (
	ingestEventsPerSecond = 100
	ingestBurst           = 100
)

type likeRepository interface {
	UserExists(ctx context.Context, id model.UserID) (bool, error)
	FilmExists(ctx context.Context, id model.FilmID) (bool, error)
	DirectorExists(ctx context.Context, id model.DirectorID) (bool, error)
	AddLike(ctx context.Context, filmID model.FilmID, userID model.UserID) error
	RemoveLike(ctx context.Context, filmID model.FilmID, userID model.UserID) error
	LikeCount(ctx context.Context, filmID model.FilmID) (int, error)
	Films(ctx context.Context) ([]model.Film, error)
	FilmsByDirector(ctx context.Context, id model.DirectorID) ([]model.Film, error)
}

type feedAppender interface {
	Append(ctx context.Context, actorID model.UserID, entityID int64, eventType model.EventType, operation model.Operation) error
}

type ingester interface {
	Ingest(ctx context.Context) (chan model.LikeEvent, error)
}

// Controller registers likes and serves like-count rankings.
type Controller struct {
	repo     likeRepository
	feed     feedAppender
	ingester ingester
	limiter  *rate.Limiter
	applied  tally.Counter
	dropped  tally.Counter
	logger   *zap.Logger
}

// New creates a like aggregation controller. The ingester may be nil when the
// service runs without a Kafka pipeline.
func New(repo likeRepository, feed feedAppender, ingester ingester, scope tally.Scope, logger *zap.Logger) *Controller {
	return &Controller{
		repo:     repo,
		feed:     feed,
		ingester: ingester,
		limiter:  rate.NewLimiter(rate.Limit(ingestEventsPerSecond), ingestBurst),
		applied:  scope.Counter("like_events_applied"),
		dropped:  scope.Counter("like_events_dropped"),
		logger:   logger,
	}
}

func (c *Controller) checkEdge(ctx context.Context, filmID model.FilmID, userID model.UserID) error {
	ok, err := c.repo.FilmExists(ctx, filmID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	ok, err = c.repo.UserExists(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Like records that the user likes the film. Re-liking is a no-op.
func (c *Controller) Like(ctx context.Context, filmID model.FilmID, userID model.UserID) error {
	if err := c.checkEdge(ctx, filmID, userID); err != nil {
		return err
	}
	if err := c.repo.AddLike(ctx, filmID, userID); err != nil {
		return err
	}
	c.logger.Info("Added like",
		zap.Int64("filmId", int64(filmID)), zap.Int64("userId", int64(userID)))
	return c.feed.Append(ctx, userID, int64(filmID), model.EventTypeLike, model.OperationAdd)
}

// Unlike removes the user's like from the film. Unliking a film the user does
// not like is a no-op.
func (c *Controller) Unlike(ctx context.Context, filmID model.FilmID, userID model.UserID) error {
	if err := c.checkEdge(ctx, filmID, userID); err != nil {
		return err
	}
	if err := c.repo.RemoveLike(ctx, filmID, userID); err != nil {
		return err
	}
	c.logger.Info("Removed like",
		zap.Int64("filmId", int64(filmID)), zap.Int64("userId", int64(userID)))
	return c.feed.Append(ctx, userID, int64(filmID), model.EventTypeLike, model.OperationRemove)
}

// rankByLikes orders films by like count descending, film id breaking ties.
func (c *Controller) rankByLikes(ctx context.Context, films []model.Film) ([]model.Film, error) {
	counts := make(map[model.FilmID]int, len(films))
	for _, f := range films {
		n, err := c.repo.LikeCount(ctx, f.ID)
		if err != nil {
			return nil, err
		}
		counts[f.ID] = n
	}
	sort.Slice(films, func(i, j int) bool {
		if counts[films[i].ID] != counts[films[j].ID] {
			return counts[films[i].ID] > counts[films[j].ID]
		}
		return films[i].ID < films[j].ID
	})
	return films, nil
}

// TopRated returns the count best-liked films. Films nobody likes rank at the
// tail. A non-positive count yields an empty result.
func (c *Controller) TopRated(ctx context.Context, count int) ([]model.Film, error) {
	if count <= 0 {
		return []model.Film{}, nil
	}
	films, err := c.repo.Films(ctx)
	if err != nil {
		return nil, err
	}
	films, err = c.rankByLikes(ctx, films)
	if err != nil {
		return nil, err
	}
	if len(films) > count {
		films = films[:count]
	}
	return films, nil
}

// ByDirector returns the director's films, ranked by like count or by release
// year depending on sortBy.
func (c *Controller) ByDirector(ctx context.Context, directorID model.DirectorID, sortBy string) ([]model.Film, error) {
	if sortBy != SortByLikes && sortBy != SortByYear {
		return nil, ErrInvalidSortMode
	}
	ok, err := c.repo.DirectorExists(ctx, directorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	films, err := c.repo.FilmsByDirector(ctx, directorID)
	if err != nil {
		return nil, err
	}
	if sortBy == SortByLikes {
		return c.rankByLikes(ctx, films)
	}
	sort.Slice(films, func(i, j int) bool {
		yi, yj := films[i].ReleaseDate.Year(), films[j].ReleaseDate.Year()
		if yi != yj {
			return yi < yj
		}
		return films[i].ID < films[j].ID
	})
	return films, nil
}

// StartIngestion consumes like events from the stream and applies them until
// the context is cancelled or the channel closes. Events referencing unknown
// users or films are counted and skipped, not fatal.
func (c *Controller) StartIngestion(ctx context.Context) error {
	ch, err := c.ingester.Ingest(ctx)
	if err != nil {
		return err
	}
	for e := range ch {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		switch e.EventType {
		case model.LikeEventTypeAdd:
			err = c.Like(ctx, e.FilmID, e.UserID)
		case model.LikeEventTypeRemove:
			err = c.Unlike(ctx, e.FilmID, e.UserID)
		default:
			err = fmt.Errorf("unknown like event type %q", e.EventType)
		}
		if err != nil {
			c.dropped.Inc(1)
			c.logger.Warn("Dropped like event",
				zap.Int64("filmId", int64(e.FilmID)),
				zap.Int64("userId", int64(e.UserID)),
				zap.String("eventType", string(e.EventType)),
				zap.Error(err))
			continue
		}
		c.applied.Inc(1)
	}
	return nil
}
