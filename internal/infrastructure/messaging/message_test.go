package messaging

import (
	"testing"
	"time"
)

func TestCalculateBackoff(t *testing.T) {
	cfg := BackoffConfig{
		Initial:    time.Second,
		Max:        time.Minute,
		Multiplier: 2,
	}

	tests := []struct {
		retryCount int
		want       time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{3, 8 * time.Second},
		{10, time.Minute},
	}

	for _, tt := range tests {
		if got := cfg.CalculateBackoff(tt.retryCount); got != tt.want {
			t.Errorf("CalculateBackoff(%d) = %v, want %v", tt.retryCount, got, tt.want)
		}
	}
}

func TestMessagePayloadRoundTrip(t *testing.T) {
	msg, err := NewMessage("job-1", MsgTypeIngestionJob, "city-events-corpus", &IngestionJobMessage{
		JobID:          "job-1",
		DataSourceName: "city-events-corpus",
	})
	if err != nil {
		t.Fatalf("NewMessage() error = %v", err)
	}

	var payload IngestionJobMessage
	if err := msg.UnmarshalPayload(&payload); err != nil {
		t.Fatalf("UnmarshalPayload() error = %v", err)
	}
	if payload.JobID != "job-1" || payload.DataSourceName != "city-events-corpus" {
		t.Errorf("payload = %+v", payload)
	}
}

func TestDLQStreamName(t *testing.T) {
	if got := StreamIngestion.DLQStream(); got != "dlq:stream:ingestion:jobs" {
		t.Errorf("DLQStream() = %q", got)
	}
}

func TestMessageMetadata(t *testing.T) {
	msg := &Message{}
	msg.SetMetadata("request_id", "req-1")
	if got := msg.GetMetadata("request_id"); got != "req-1" {
		t.Errorf("GetMetadata() = %q, want req-1", got)
	}
	if got := msg.GetMetadata("missing"); got != "" {
		t.Errorf("GetMetadata(missing) = %q, want empty", got)
	}
}
