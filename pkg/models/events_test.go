package models

import (
	"encoding/json"
	"testing"
)

func TestEventEnvelopeWireFormat(t *testing.T) {
	envelope := EventEnvelope{
		EventType: EventUserCreated,
		Data:      EventData{UserID: 7},
		TraceID:   "trace-abc",
	}

	raw, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if decoded["event_type"] != "user.created" {
		t.Errorf("unexpected event_type: %v", decoded["event_type"])
	}
	if decoded["trace_id"] != "trace-abc" {
		t.Errorf("unexpected trace_id: %v", decoded["trace_id"])
	}
	data, ok := decoded["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %T", decoded["data"])
	}
	if data["user_id"] != float64(7) {
		t.Errorf("unexpected user_id: %v", data["user_id"])
	}
}

func TestEventTypes(t *testing.T) {
	cases := map[EventType]string{
		EventUserCreated: "user.created",
		EventUserUpdated: "user.updated",
		EventUserDeleted: "user.deleted",
	}
	for typ, want := range cases {
		if string(typ) != want {
			t.Errorf("expected %s, got %s", want, typ)
		}
	}
}
