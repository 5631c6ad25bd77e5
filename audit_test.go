package goYK

import (
	"bytes"
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"
)

func TestAuditDispatcherDisabled(t *testing.T) {
	d := newAuditDispatcher(AuditConfig{}, NewChannelSink(1))
	if d != nil {
		t.Fatal("disabled config must yield a nil dispatcher")
	}
	// Nil dispatchers are safe to use.
	d.Emit(context.Background(), AuditEvent{})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher reported drops")
	}
}

func TestAuditDispatcherDrainsOnClose(t *testing.T) {
	sink := NewChannelSink(8)
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 8}, sink)

	for i := 0; i < 3; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: "verify"})
	}
	d.Close()

	for i := 0; i < 3; i++ {
		select {
		case <-sink.Events():
		default:
			t.Fatalf("event %d was not drained before Close returned", i)
		}
	}
	if d.Dropped() != 0 {
		t.Fatalf("unexpected drops: %d", d.Dropped())
	}
}

// gateSink blocks every Emit until the gate opens, forcing the dispatcher
// buffer to fill.
type gateSink struct {
	gate chan struct{}
	seen atomic.Uint64
}

func (s *gateSink) Emit(_ context.Context, _ AuditEvent) {
	<-s.gate
	s.seen.Add(1)
}

func TestAuditDispatcherDropIfFull(t *testing.T) {
	sink := &gateSink{gate: make(chan struct{})}
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	const emitted = 10
	for i := 0; i < emitted; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: "verify"})
	}

	// At most one event is in flight in the sink and one in the buffer.
	if got := d.Dropped(); got < emitted-2 {
		t.Fatalf("expected at least %d drops, got %d", emitted-2, got)
	}

	close(sink.gate)
	d.Close()

	if got := sink.seen.Load(); got > 2 {
		t.Fatalf("sink saw %d events, at most 2 possible", got)
	}
}

func TestAuditDispatcherEmitAfterClose(t *testing.T) {
	sink := NewChannelSink(4)
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 4}, sink)
	d.Close()

	d.Emit(context.Background(), AuditEvent{EventType: "verify"})
	select {
	case <-sink.Events():
		t.Fatal("closed dispatcher must not deliver")
	default:
	}
}

func TestJSONWriterSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), AuditEvent{
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		EventType: "verify",
		Verdict:   "valid",
		Success:   true,
	})

	var event AuditEvent
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("unmarshal: %v (line %q)", err, buf.String())
	}
	if event.EventType != "verify" || event.Verdict != "valid" || !event.Success {
		t.Fatalf("round trip mismatch: %+v", event)
	}
}

func TestVerifierAuditEndToEnd(t *testing.T) {
	sink := NewChannelSink(4)

	cfg := newTestConfig()
	v, err := New().
		WithConfig(cfg).
		WithFetcher(statusFetcher(StatusOK)).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if err := v.Verify(context.Background(), testOTP); err != nil {
		t.Fatalf("verify: %v", err)
	}
	v.Close()

	var event AuditEvent
	select {
	case event = <-sink.Events():
	case <-time.After(2 * time.Second):
		t.Fatal("no audit event after Close")
	}

	if event.EventType != "verify" {
		t.Fatalf("event type: %q", event.EventType)
	}
	if !event.Success || event.Verdict != "valid" || event.Status != StatusOK {
		t.Fatalf("outcome fields: %+v", event)
	}
	if event.ClientID != "87" {
		t.Fatalf("client id: %q", event.ClientID)
	}
	if event.PublicID != testPrefix {
		t.Fatalf("public id must be the device prefix, got %q", event.PublicID)
	}
	if event.Endpoints != 2 {
		t.Fatalf("endpoint count: %d", event.Endpoints)
	}
	if event.Error != "" {
		t.Fatalf("unexpected error field: %q", event.Error)
	}
}
