package model

// LikeEvent is the wire payload of a like mutation flowing through Kafka.
type LikeEvent struct {
	FilmID     FilmID        `json:"filmId"`
	UserID     UserID        `json:"userId"`
	ProviderID string        `json:"providerId"`
	EventType  LikeEventType `json:"eventType"`
}

type LikeEventType string

const (
	LikeEventTypeAdd    = LikeEventType("add")
	LikeEventTypeRemove = LikeEventType("remove")
)
