package review

import (
	"context"
	"errors"
	"sort"

	"github.com/mkuznetsov/filmsocial/engine/internal/repository"
	"github.com/mkuznetsov/filmsocial/engine/pkg/model"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when a referenced user, film or review does not
	// exist.
	ErrNotFound = errors.New("not found")
	// ErrEmptyContent is returned when a review is created or updated with no
	// text.
	ErrEmptyContent = errors.New("review content cannot be empty")
)

type reviewRepository interface {
	UserExists(ctx context.Context, id model.UserID) (bool, error)
	FilmExists(ctx context.Context, id model.FilmID) (bool, error)
	CreateReview(ctx context.Context, r model.Review) (model.Review, error)
	UpdateReview(ctx context.Context, id model.ReviewID, content string, positive bool) error
	DeleteReview(ctx context.Context, id model.ReviewID) error
	Review(ctx context.Context, id model.ReviewID) (model.Review, error)
	Reviews(ctx context.Context, filmID model.FilmID) ([]model.Review, error)
	AddReviewVote(ctx context.Context, id model.ReviewID, voterID model.UserID, polarity model.VotePolarity) error
	RemoveReviewVote(ctx context.Context, id model.ReviewID, voterID model.UserID, polarity model.VotePolarity) error
	ReviewVotes(ctx context.Context, id model.ReviewID) (likes, dislikes int, err error)
}

type feedAppender interface {
	Append(ctx context.Context, actorID model.UserID, entityID int64, eventType model.EventType, operation model.Operation) error
}

// Controller owns review lifecycle and vote bookkeeping. A voter holds at
// most one polarity per review; usefulness is recomputed from vote edges on
// every read. Votes do not show up in the activity feed.
type Controller struct {
	repo   reviewRepository
	feed   feedAppender
	logger *zap.Logger
}

// New creates a review controller.
func New(repo reviewRepository, feed feedAppender, logger *zap.Logger) *Controller {
	return &Controller{repo: repo, feed: feed, logger: logger}
}

// Create validates and stores a new review, emitting a REVIEW/ADD feed event
// attributed to its author.
func (c *Controller) Create(ctx context.Context, authorID model.UserID, filmID model.FilmID, content string, positive bool) (model.Review, error) {
	if content == "" {
		return model.Review{}, ErrEmptyContent
	}
	ok, err := c.repo.UserExists(ctx, authorID)
	if err != nil {
		return model.Review{}, err
	}
	if !ok {
		return model.Review{}, ErrNotFound
	}
	ok, err = c.repo.FilmExists(ctx, filmID)
	if err != nil {
		return model.Review{}, err
	}
	if !ok {
		return model.Review{}, ErrNotFound
	}
	rev, err := c.repo.CreateReview(ctx, model.Review{
		Content:  content,
		Positive: positive,
		AuthorID: authorID,
		FilmID:   filmID,
	})
	if err != nil {
		return model.Review{}, err
	}
	c.logger.Info("Created review",
		zap.Int64("reviewId", int64(rev.ID)),
		zap.Int64("userId", int64(authorID)),
		zap.Int64("filmId", int64(filmID)))
	if err := c.feed.Append(ctx, authorID, int64(rev.ID), model.EventTypeReview, model.OperationAdd); err != nil {
		return model.Review{}, err
	}
	return rev, nil
}

// Update overwrites content and sentiment. Author and film never change, and
// the feed event is attributed to the original author, not the caller.
func (c *Controller) Update(ctx context.Context, reviewID model.ReviewID, content string, positive bool) (model.Review, error) {
	if content == "" {
		return model.Review{}, ErrEmptyContent
	}
	orig, err := c.get(ctx, reviewID)
	if err != nil {
		return model.Review{}, err
	}
	if err := c.repo.UpdateReview(ctx, reviewID, content, positive); err != nil {
		return model.Review{}, c.mapErr(err)
	}
	c.logger.Info("Updated review", zap.Int64("reviewId", int64(reviewID)))
	if err := c.feed.Append(ctx, orig.AuthorID, int64(reviewID), model.EventTypeReview, model.OperationUpdate); err != nil {
		return model.Review{}, err
	}
	return c.Get(ctx, reviewID)
}

// Remove deletes the review and every vote edge attached to it. The feed
// event is attributed to the original author.
func (c *Controller) Remove(ctx context.Context, reviewID model.ReviewID) error {
	orig, err := c.get(ctx, reviewID)
	if err != nil {
		return err
	}
	if err := c.repo.DeleteReview(ctx, reviewID); err != nil {
		return c.mapErr(err)
	}
	c.logger.Info("Removed review", zap.Int64("reviewId", int64(reviewID)))
	return c.feed.Append(ctx, orig.AuthorID, int64(reviewID), model.EventTypeReview, model.OperationRemove)
}

// Get returns the review with its usefulness recomputed from vote edges.
func (c *Controller) Get(ctx context.Context, reviewID model.ReviewID) (model.Review, error) {
	rev, err := c.get(ctx, reviewID)
	if err != nil {
		return model.Review{}, err
	}
	useful, err := c.Usefulness(ctx, reviewID)
	if err != nil {
		return model.Review{}, err
	}
	rev.Useful = useful
	return rev, nil
}

// VoteLike records a like vote, replacing a dislike the voter may hold.
func (c *Controller) VoteLike(ctx context.Context, reviewID model.ReviewID, voterID model.UserID) error {
	return c.vote(ctx, reviewID, voterID, model.VoteLike)
}

// VoteDislike records a dislike vote, replacing a like the voter may hold.
func (c *Controller) VoteDislike(ctx context.Context, reviewID model.ReviewID, voterID model.UserID) error {
	return c.vote(ctx, reviewID, voterID, model.VoteDislike)
}

// RemoveVoteLike removes the voter's like vote if present; otherwise a no-op.
func (c *Controller) RemoveVoteLike(ctx context.Context, reviewID model.ReviewID, voterID model.UserID) error {
	return c.unvote(ctx, reviewID, voterID, model.VoteLike)
}

// RemoveVoteDislike removes the voter's dislike vote if present; otherwise a
// no-op.
func (c *Controller) RemoveVoteDislike(ctx context.Context, reviewID model.ReviewID, voterID model.UserID) error {
	return c.unvote(ctx, reviewID, voterID, model.VoteDislike)
}

// Usefulness is the review's like votes minus its dislike votes. A review
// with no votes scores zero.
func (c *Controller) Usefulness(ctx context.Context, reviewID model.ReviewID) (int, error) {
	if _, err := c.get(ctx, reviewID); err != nil {
		return 0, err
	}
	likes, dislikes, err := c.repo.ReviewVotes(ctx, reviewID)
	if err != nil {
		return 0, err
	}
	return likes - dislikes, nil
}

// List returns up to count reviews ranked by usefulness descending, review id
// breaking ties. A zero filmID lists across all films; a non-positive count
// yields an empty result.
func (c *Controller) List(ctx context.Context, filmID model.FilmID, count int) ([]model.Review, error) {
	if filmID != 0 {
		ok, err := c.repo.FilmExists(ctx, filmID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrNotFound
		}
	}
	if count <= 0 {
		return []model.Review{}, nil
	}
	revs, err := c.repo.Reviews(ctx, filmID)
	if err != nil {
		return nil, err
	}
	for i := range revs {
		likes, dislikes, err := c.repo.ReviewVotes(ctx, revs[i].ID)
		if err != nil {
			return nil, err
		}
		revs[i].Useful = likes - dislikes
	}
	sort.Slice(revs, func(i, j int) bool {
		if revs[i].Useful != revs[j].Useful {
			return revs[i].Useful > revs[j].Useful
		}
		return revs[i].ID < revs[j].ID
	})
	if len(revs) > count {
		revs = revs[:count]
	}
	return revs, nil
}

func (c *Controller) vote(ctx context.Context, reviewID model.ReviewID, voterID model.UserID, polarity model.VotePolarity) error {
	if _, err := c.get(ctx, reviewID); err != nil {
		return err
	}
	ok, err := c.repo.UserExists(ctx, voterID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	// Clear the opposite polarity first so the voter holds a single edge.
	opposite := model.VoteDislike
	if polarity == model.VoteDislike {
		opposite = model.VoteLike
	}
	if err := c.repo.RemoveReviewVote(ctx, reviewID, voterID, opposite); err != nil {
		return c.mapErr(err)
	}
	return c.mapErr(c.repo.AddReviewVote(ctx, reviewID, voterID, polarity))
}

func (c *Controller) unvote(ctx context.Context, reviewID model.ReviewID, voterID model.UserID, polarity model.VotePolarity) error {
	if _, err := c.get(ctx, reviewID); err != nil {
		return err
	}
	ok, err := c.repo.UserExists(ctx, voterID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return c.mapErr(c.repo.RemoveReviewVote(ctx, reviewID, voterID, polarity))
}

func (c *Controller) get(ctx context.Context, reviewID model.ReviewID) (model.Review, error) {
	rev, err := c.repo.Review(ctx, reviewID)
	if err != nil {
		return model.Review{}, c.mapErr(err)
	}
	return rev, nil
}

func (c *Controller) mapErr(err error) error {
	if err != nil && errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
