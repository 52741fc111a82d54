package recommend

import (
	"context"
	"errors"
	"sort"

	"github.com/mkuznetsov/filmsocial/engine/pkg/model"
	"go.uber.org/zap"
)

// ErrNotFound is returned when the target user does not exist.
var ErrNotFound = errors.New("not found")

type likeGraphRepository interface {
	UserExists(ctx context.Context, id model.UserID) (bool, error)
	LikedFilms(ctx context.Context, userID model.UserID) ([]model.FilmID, error)
	Likers(ctx context.Context, filmID model.FilmID) ([]model.UserID, error)
	Film(ctx context.Context, id model.FilmID) (model.Film, error)
}

// Controller proposes films via a single-nearest-neighbor collaborative
// filter over the user-film like graph: find the other user whose liked films
// overlap the target's the most, then return what that neighbor likes and the
// target does not. Blending several neighbors is deliberately out; one
// neighbor keeps the result explainable and matches the product behavior.
type Controller struct {
	repo   likeGraphRepository
	logger *zap.Logger
}

// New creates a recommendation controller.
func New(repo likeGraphRepository, logger *zap.Logger) *Controller {
	return &Controller{repo: repo, logger: logger}
}

// Recommend returns films for the user, ordered by film id. A user with no
// likes, or whose likes overlap nobody else's, gets an empty result.
func (c *Controller) Recommend(ctx context.Context, userID model.UserID) ([]model.Film, error) {
	ok, err := c.repo.UserExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}

	liked, err := c.repo.LikedFilms(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(liked) == 0 {
		return []model.Film{}, nil
	}
	likedSet := make(map[model.FilmID]struct{}, len(liked))
	for _, f := range liked {
		likedSet[f] = struct{}{}
	}

	// Overlap per candidate: walk the likers of every film the user likes.
	overlap := make(map[model.UserID]int)
	for _, f := range liked {
		likers, err := c.repo.Likers(ctx, f)
		if err != nil {
			return nil, err
		}
		for _, v := range likers {
			if v != userID {
				overlap[v]++
			}
		}
	}
	if len(overlap) == 0 {
		return []model.Film{}, nil
	}

	var neighbor model.UserID
	best := 0
	for v, n := range overlap {
		if n > best || (n == best && v < neighbor) {
			neighbor = v
			best = n
		}
	}
	c.logger.Info("Picked nearest neighbor",
		zap.Int64("userId", int64(userID)),
		zap.Int64("neighborId", int64(neighbor)),
		zap.Int("overlap", best))

	neighborLiked, err := c.repo.LikedFilms(ctx, neighbor)
	if err != nil {
		return nil, err
	}
	res := make([]model.Film, 0)
	for _, id := range neighborLiked {
		if _, ok := likedSet[id]; ok {
			continue
		}
		f, err := c.repo.Film(ctx, id)
		if err != nil {
			return nil, err
		}
		res = append(res, f)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}
