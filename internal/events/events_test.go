package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMockEventPublisher(t *testing.T) {
	publisher := NewMockEventPublisher(testLogger())
	ctx := context.Background()

	if err := publisher.Publish(ctx, TopicResultSubmitted, ResultSubmittedEvent{StudentID: 1, TestID: 2, Score: 3}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	events := publisher.GetPublishedEvents()
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}

	event := events[0]
	if event.Type != TopicResultSubmitted {
		t.Errorf("Expected type %s, got %s", TopicResultSubmitted, event.Type)
	}
	if event.ID == "" {
		t.Error("Event ID should not be empty")
	}
	if event.Source != EventSource || event.Version != EventVersion {
		t.Errorf("Unexpected envelope: source=%s version=%s", event.Source, event.Version)
	}
	if event.Timestamp.IsZero() {
		t.Error("Event timestamp should not be zero")
	}

	publisher.FailWith(errors.New("broker down"))
	if err := publisher.Publish(ctx, TopicResultReset, ResultResetEvent{}); err == nil {
		t.Fatal("Expected publish failure")
	}

	publisher.ClearEvents()
	if len(publisher.GetPublishedEvents()) != 0 {
		t.Fatal("Expected no events after clear")
	}
}

func TestRoleChangedHandlerFunc(t *testing.T) {
	logger := testLogger()

	var got []RoleChangedEvent
	handle := func(ctx context.Context, event RoleChangedEvent) error {
		got = append(got, event)
		switch event.UserID {
		case "rejected":
			return Permanent(errors.New("has results"))
		case "flaky":
			return errors.New("database unavailable")
		}
		return nil
	}
	handler := NewRoleChangedHandlerFunc(handle, logger)

	enveloped, _ := json.Marshal(NewEvent(TopicRoleChanged, RoleChangedEvent{UserID: "u1", Role: "teacher", Enabled: true}))
	bare, _ := json.Marshal(RoleChangedEvent{UserID: "u2", Role: "student"})
	rejected, _ := json.Marshal(RoleChangedEvent{UserID: "rejected", Role: "student"})
	flaky, _ := json.Marshal(RoleChangedEvent{UserID: "flaky", Role: "student", Enabled: true})

	tests := []struct {
		name    string
		payload []byte
		wantErr bool
	}{
		{"enveloped", enveloped, false},
		{"bare", bare, false},
		{"malformed", []byte("{not json"), false},
		{"missing user", []byte(`{"role":"teacher"}`), false},
		{"permanent failure", rejected, false},
		{"transient failure", flaky, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := handler(message.NewMessage("msg-"+tt.name, tt.payload))
			if (err != nil) != tt.wantErr {
				t.Fatalf("wantErr=%v, got %v", tt.wantErr, err)
			}
		})
	}

	if len(got) != 4 {
		t.Fatalf("Expected 4 decoded events, got %d", len(got))
	}
	if got[0].UserID != "u1" || !got[0].Enabled || got[0].Role != "teacher" {
		t.Fatalf("Unexpected enveloped event: %+v", got[0])
	}
	if got[1].UserID != "u2" || got[1].Enabled {
		t.Fatalf("Unexpected bare event: %+v", got[1])
	}
}

func TestGoChannelRoundTrip(t *testing.T) {
	logger := testLogger()

	bus, err := NewBus(Config{Driver: DriverGoChannel}, logger)
	if err != nil {
		t.Fatalf("NewBus: %v", err)
	}
	defer bus.Close()

	router, err := NewRouter(bus, logger)
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	var (
		mu       sync.Mutex
		received []RoleChangedEvent
		done     = make(chan struct{})
	)
	router.OnRoleChanged(func(ctx context.Context, event RoleChangedEvent) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, event)
		close(done)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = router.Run(ctx) }()

	select {
	case <-router.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("router did not start")
	}

	publisher := NewWatermillEventPublisher(bus.Publisher, logger)
	if err := publisher.Publish(ctx, TopicRoleChanged, RoleChangedEvent{UserID: "u1", Role: "student", Enabled: true}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("role change was not delivered")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 1 || received[0].UserID != "u1" || received[0].Role != "student" {
		t.Fatalf("Unexpected delivery: %+v", received)
	}

	if err := router.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestNewBusRejectsUnknownDriver(t *testing.T) {
	if _, err := NewBus(Config{Driver: "carrier-pigeon"}, testLogger()); err == nil {
		t.Fatal("Expected error for unknown driver")
	}
	if _, err := NewBus(Config{Driver: DriverKafka}, testLogger()); err == nil {
		t.Fatal("Expected error for kafka without brokers")
	}
}
