package social

import (
	"context"
	"errors"

	"github.com/mkuznetsov/filmsocial/engine/pkg/model"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when a referenced user does not exist.
	ErrNotFound = errors.New("not found")
	// ErrSelfFriend is returned when a user tries to friend themselves.
	ErrSelfFriend = errors.New("cannot friend self")
)

type socialRepository interface {
	UserExists(ctx context.Context, id model.UserID) (bool, error)
	AddFriend(ctx context.Context, userID, friendID model.UserID) error
	RemoveFriend(ctx context.Context, userID, friendID model.UserID) error
	Friends(ctx context.Context, userID model.UserID) ([]model.User, error)
}

type feedAppender interface {
	Append(ctx context.Context, actorID model.UserID, entityID int64, eventType model.EventType, operation model.Operation) error
}

// Controller maintains the directed friendship graph. An edge from A to B
// does not imply one from B to A.
type Controller struct {
	repo   socialRepository
	feed   feedAppender
	logger *zap.Logger
}

// New creates a social graph controller.
func New(repo socialRepository, feed feedAppender, logger *zap.Logger) *Controller {
	return &Controller{repo: repo, feed: feed, logger: logger}
}

func (c *Controller) checkUsers(ctx context.Context, ids ...model.UserID) error {
	for _, id := range ids {
		ok, err := c.repo.UserExists(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
	}
	return nil
}

// AddFriend inserts the directed edge userID -> friendID. Adding an existing
// edge is a no-op; both users must exist and must differ.
func (c *Controller) AddFriend(ctx context.Context, userID, friendID model.UserID) error {
	if userID == friendID {
		return ErrSelfFriend
	}
	if err := c.checkUsers(ctx, userID, friendID); err != nil {
		return err
	}
	if err := c.repo.AddFriend(ctx, userID, friendID); err != nil {
		return err
	}
	c.logger.Info("Added friend",
		zap.Int64("userId", int64(userID)), zap.Int64("friendId", int64(friendID)))
	return c.feed.Append(ctx, userID, int64(friendID), model.EventTypeFriend, model.OperationAdd)
}

// RemoveFriend deletes the directed edge userID -> friendID. Removing an
// absent edge is a no-op, but both users must exist.
func (c *Controller) RemoveFriend(ctx context.Context, userID, friendID model.UserID) error {
	if err := c.checkUsers(ctx, userID, friendID); err != nil {
		return err
	}
	if err := c.repo.RemoveFriend(ctx, userID, friendID); err != nil {
		return err
	}
	c.logger.Info("Removed friend",
		zap.Int64("userId", int64(userID)), zap.Int64("friendId", int64(friendID)))
	return c.feed.Append(ctx, userID, int64(friendID), model.EventTypeFriend, model.OperationRemove)
}

// Friends returns the users userID points to, ordered by id.
func (c *Controller) Friends(ctx context.Context, userID model.UserID) ([]model.User, error) {
	if err := c.checkUsers(ctx, userID); err != nil {
		return nil, err
	}
	return c.repo.Friends(ctx, userID)
}

// CommonFriends intersects the two users' friend sets by id, ascending. The
// result is the same whichever way the arguments are ordered.
func (c *Controller) CommonFriends(ctx context.Context, userID, otherID model.UserID) ([]model.User, error) {
	if err := c.checkUsers(ctx, userID, otherID); err != nil {
		return nil, err
	}
	a, err := c.repo.Friends(ctx, userID)
	if err != nil {
		return nil, err
	}
	b, err := c.repo.Friends(ctx, otherID)
	if err != nil {
		return nil, err
	}
	inB := make(map[model.UserID]struct{}, len(b))
	for _, u := range b {
		inB[u.ID] = struct{}{}
	}
	common := make([]model.User, 0)
	for _, u := range a {
		if _, ok := inB[u.ID]; ok {
			common = append(common, u)
		}
	}
	return common, nil
}
