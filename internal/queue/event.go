// Package queue defines message payloads exchanged over the message broker.
package queue

// Event actions published to the movie.events queue.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// MovieEvent is published after a movie record is created, updated or
// deleted. It carries enough for downstream consumers to log or audit the
// change without querying the primary database.
type MovieEvent struct {
	Action     string  `json:"action"`
	MovieID    uint64  `json:"movie_id"`
	Title      string  `json:"title"`
	Genre      string  `json:"genre"`
	Rating     float64 `json:"rating"`
	UserID     uint64  `json:"user_id"`
	Username   string  `json:"username"`
	OccurredAt string  `json:"occurred_at"`
}
