package amqp

import (
	"testing"
	"time"
)

func TestChangeMessageJSONRoundTrip(t *testing.T) {
	msg := NewChangeMessage("credits", "create", "abc-123")
	if msg.OccurredAt.IsZero() {
		t.Fatal("OccurredAt not stamped")
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := ChangeMessageFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Collection != "credits" || got.Op != "create" || got.ID != "abc-123" {
		t.Fatalf("round trip lost fields: %+v", got)
	}
	if !got.OccurredAt.Truncate(time.Millisecond).Equal(msg.OccurredAt.Truncate(time.Millisecond)) {
		t.Fatalf("timestamp drifted: %v != %v", got.OccurredAt, msg.OccurredAt)
	}
}

func TestChangeMessageFromJSONInvalid(t *testing.T) {
	if _, err := ChangeMessageFromJSON([]byte(`{bad`)); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
