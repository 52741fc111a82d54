package feed

import (
	"context"
	"errors"
	"time"

	"github.com/mkuznetsov/filmsocial/engine/pkg/model"
	"go.uber.org/zap"
)

// ErrNotFound is returned when the requested user does not exist.
var ErrNotFound = errors.New("not found")

type feedRepository interface {
	UserExists(ctx context.Context, id model.UserID) (bool, error)
	AppendEvent(ctx context.Context, e model.FeedEvent) (int64, error)
	EventsForUser(ctx context.Context, id model.UserID) ([]model.FeedEvent, error)
}

// Controller is the append-only activity log. Every social mutation in the
// other controllers goes through Append; nothing ever rewrites an event.
type Controller struct {
	repo   feedRepository
	logger *zap.Logger
}

// New creates a feed controller.
func New(repo feedRepository, logger *zap.Logger) *Controller {
	return &Controller{repo: repo, logger: logger}
}

// Append records one feed event for the acting user. The timestamp is taken
// here; the event id is assigned by the store on insert.
func (c *Controller) Append(ctx context.Context, actorID model.UserID, entityID int64, eventType model.EventType, operation model.Operation) error {
	e := model.FeedEvent{
		Timestamp: time.Now().UnixMilli(),
		UserID:    actorID,
		EntityID:  entityID,
		EventType: eventType,
		Operation: operation,
	}
	id, err := c.repo.AppendEvent(ctx, e)
	if err != nil {
		return err
	}
	c.logger.Info("Appended feed event",
		zap.Int64("eventId", id),
		zap.Int64("userId", int64(actorID)),
		zap.String("eventType", string(eventType)),
		zap.String("operation", string(operation)))
	return nil
}

// ForUser returns the user's feed ordered by timestamp ascending, event id
// breaking millisecond ties.
func (c *Controller) ForUser(ctx context.Context, userID model.UserID) ([]model.FeedEvent, error) {
	ok, err := c.repo.UserExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return c.repo.EventsForUser(ctx, userID)
}
