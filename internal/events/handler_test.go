package events

import (
	"encoding/json"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/davydenkov/user-manage/pkg/models"
)

func delivery(t *testing.T, envelope models.EventEnvelope) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return amqp.Delivery{Body: body, RoutingKey: string(envelope.EventType)}
}

func TestHandler_KnownEventTypes(t *testing.T) {
	for _, eventType := range []models.EventType{
		models.EventUserCreated,
		models.EventUserUpdated,
		models.EventUserDeleted,
	} {
		msg := delivery(t, models.EventEnvelope{
			EventType: eventType,
			Data:      models.EventData{UserID: 7},
			TraceID:   "trace-7",
		})
		if err := Handler(msg); err != nil {
			t.Errorf("%s: expected success so the message is acked, got %v", eventType, err)
		}
	}
}

func TestHandler_UnknownEventTypeDoesNotFail(t *testing.T) {
	msg := delivery(t, models.EventEnvelope{
		EventType: "user.promoted",
		Data:      models.EventData{UserID: 3},
		TraceID:   "trace-3",
	})
	if err := Handler(msg); err != nil {
		t.Errorf("unknown event types must be logged, not failed: %v", err)
	}
}

func TestHandler_BadJSONReturnsError(t *testing.T) {
	msg := amqp.Delivery{Body: []byte("{not json"), MessageId: "msg-1"}
	if err := Handler(msg); err == nil {
		t.Error("expected an error so the delivery is nacked")
	}
}

func TestHandler_MissingTraceIDFallsBackToMessageID(t *testing.T) {
	// No trace_id in the envelope; the handler must fall back to the
	// broker-assigned message ID without failing.
	msg := amqp.Delivery{
		Body:      []byte(`{"event_type":"user.created","data":{"user_id":11}}`),
		MessageId: "broker-msg-id",
	}
	if err := Handler(msg); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
