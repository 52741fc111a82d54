package model

type EventType string

const (
	EventTypeLike   = EventType("LIKE")
	EventTypeFriend = EventType("FRIEND")
	EventTypeReview = EventType("REVIEW")
)

type Operation string

const (
	OperationAdd    = Operation("ADD")
	OperationRemove = Operation("REMOVE")
	OperationUpdate = Operation("UPDATE")
)

// FeedEvent is one immutable entry of a user's activity feed. EventID is
// assigned by the store on insert, monotonically and never reused.
type FeedEvent struct {
	EventID   int64     `json:"eventId"`
	Timestamp int64     `json:"timestamp"`
	UserID    UserID    `json:"userId"`
	EntityID  int64     `json:"entityId"`
	EventType EventType `json:"eventType"`
	Operation Operation `json:"operation"`
}
