package journal

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/makrx/realtime/internal/realtime"
)

func testConfig() Config {
	return Config{
		BatchSize:     10,
		FlushInterval: 100 * time.Millisecond,
	}
}

func TestJournal_RecordBuffersRow(t *testing.T) {
	j := New(testConfig(), nil, nil)

	ts := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	j.Record(realtime.Event{
		ID:        "e1",
		Type:      "order.updated",
		Source:    "store",
		Payload:   json.RawMessage(`{"order_id":42}`),
		Timestamp: ts,
	})

	j.batchMu.Lock()
	defer j.batchMu.Unlock()

	if len(j.batch) != 1 {
		t.Fatalf("batch length = %d, want 1", len(j.batch))
	}
	row := j.batch[0]
	if row.EventID != "e1" {
		t.Errorf("EventID = %q, want e1", row.EventID)
	}
	if row.EventType != "order.updated" {
		t.Errorf("EventType = %q, want order.updated", row.EventType)
	}
	if row.Source != "store" {
		t.Errorf("Source = %q, want store", row.Source)
	}
	if !row.EventTs.Equal(ts) {
		t.Errorf("EventTs = %v, want %v", row.EventTs, ts)
	}
	if row.ReceivedAt.IsZero() {
		t.Error("ReceivedAt not set")
	}
	if string(row.Payload) != `{"order_id":42}` {
		t.Errorf("Payload = %s", row.Payload)
	}
}

func TestJournal_FullBatchSignalsFlush(t *testing.T) {
	cfg := Config{BatchSize: 2, FlushInterval: time.Hour}
	j := New(cfg, nil, nil)

	j.Record(realtime.Event{ID: "e1", Type: "order.created"})
	select {
	case <-j.kick:
		t.Fatal("flush signaled before batch filled")
	default:
	}

	j.Record(realtime.Event{ID: "e2", Type: "order.updated"})
	select {
	case <-j.kick:
	default:
		t.Fatal("flush not signaled when batch filled")
	}
}

func TestJournal_Lifecycle(t *testing.T) {
	j := New(testConfig(), nil, nil)

	ctx := context.Background()
	if err := j.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// No records buffered: Stop must not touch the database
	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := j.Stop(stopCtx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
}
