package reporting

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/Belphemur/KodiPresence/internal/apperrors"
	"github.com/Belphemur/KodiPresence/internal/discord"
	"github.com/Belphemur/KodiPresence/internal/models"
	"github.com/Belphemur/KodiPresence/internal/publisher"
	"github.com/getsentry/sentry-go"
)

const testDSN = "https://public@example.com/1"

type captured struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (c *captured) beforeSend(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	// Dropping the event keeps the test off the network
	return nil
}

func (c *captured) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func newTestReporter(t *testing.T) (*Reporter, *captured) {
	t.Helper()
	c := &captured{}
	r, err := New(Options{DSN: testDSN, Environment: "test", beforeSend: c.beforeSend})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return r, c
}

func TestNew_EmptyDSNDisables(t *testing.T) {
	r, err := New(Options{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if r.Enabled() {
		t.Error("Expected reporter without DSN to be disabled")
	}
	// Must not panic
	r.Capture(errors.New("boom"), nil)
	r.Flush()

	var nilReporter *Reporter
	nilReporter.Capture(errors.New("boom"), nil)
	nilReporter.Flush()
}

func TestNew_InvalidDSN(t *testing.T) {
	if _, err := New(Options{DSN: "not a dsn"}); err == nil {
		t.Error("Expected an error for an invalid DSN")
	}
}

func TestReporter_CaptureWithTags(t *testing.T) {
	r, c := newTestReporter(t)

	r.Capture(&apperrors.DiscordError{Code: 4000, Message: "invalid payload"}, map[string]string{
		"action":    "update",
		"item_type": "movie",
	})

	if c.count() != 1 {
		t.Fatalf("Expected one event, got %d", c.count())
	}
	event := c.events[0]
	if event.Tags["action"] != "update" || event.Tags["item_type"] != "movie" {
		t.Errorf("Unexpected tags %v", event.Tags)
	}
	if event.Environment != "test" {
		t.Errorf("Expected environment test, got %q", event.Environment)
	}
	if len(event.Exception) == 0 {
		t.Fatal("Expected an exception on the event")
	}
	if got := event.Exception[len(event.Exception)-1].Value; got != "discord error 4000: invalid payload" {
		t.Errorf("Unexpected exception value %q", got)
	}
}

func TestReporter_CaptureScopesTags(t *testing.T) {
	r, c := newTestReporter(t)

	r.Capture(errors.New("first"), map[string]string{"action": "clear"})
	r.Capture(errors.New("second"), nil)

	if c.count() != 2 {
		t.Fatalf("Expected two events, got %d", c.count())
	}
	if _, ok := c.events[1].Tags["action"]; ok {
		t.Error("Expected tags not to leak into the next capture")
	}
}

func TestReporter_IgnoresPipeClosed(t *testing.T) {
	r, c := newTestReporter(t)

	r.Capture(fmt.Errorf("set activity: %w", apperrors.ErrPipeClosed), nil)
	r.Capture(nil, nil)

	if c.count() != 0 {
		t.Errorf("Expected no events, got %d", c.count())
	}
}

func TestReporter_IgnoresDiscordNotRunning(t *testing.T) {
	r, c := newTestReporter(t)

	client := discord.New("1234", discord.WithDialer(func(context.Context) (io.ReadWriteCloser, error) {
		return nil, errors.New("no discord-ipc socket found")
	}))
	pub := publisher.New(client)

	for i := 0; i < 3; i++ {
		err := pub.Update(context.Background(), models.PresenceUpdate{Details: "Inception"})
		if !errors.Is(err, apperrors.ErrDiscordUnavailable) {
			t.Fatalf("Expected ErrDiscordUnavailable, got %v", err)
		}
		r.Capture(err, map[string]string{"action": "update"})
	}

	if c.count() != 0 {
		t.Errorf("Expected no events while Discord is not running, got %d", c.count())
	}
}

func TestReporter_FlushEnabled(t *testing.T) {
	r, _ := newTestReporter(t)
	r.Capture(errors.New("boom"), nil)
	r.Flush()
}
