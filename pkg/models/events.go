package models

// EventType identifies a user lifecycle event.
type EventType string

const (
	EventUserCreated EventType = "user.created"
	EventUserUpdated EventType = "user.updated"
	EventUserDeleted EventType = "user.deleted"
)

// EventData is the payload carried by a lifecycle event.
type EventData struct {
	UserID int64 `json:"user_id"`
}

// EventEnvelope is the wire format published to the user_events exchange.
// TraceID carries the correlation ID of the originating HTTP request, or
// "unknown" when the event was produced outside a request scope.
type EventEnvelope struct {
	EventType EventType `json:"event_type"`
	Data      EventData `json:"data"`
	TraceID   string    `json:"trace_id"`
}
