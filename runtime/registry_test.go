package runtime

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"chat-relay/domain/event"
)

type nopSink struct{}

func (nopSink) Consume(ctx context.Context, e event.ServerEvent) error {
	return nil
}

func Test_Registry_Attach_One_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sessionID := uuid.NewString()
	sink := nopSink{}

	// Given no connection is attached
	req.Zero(registry.Count())

	// When a connection attaches
	registry.Attach(sessionID, sink)

	// Then it is counted and receives broadcasts while unidentified
	req.Equal(1, registry.Count())
	req.Len(registry.Sinks(), 1)

	// And it carries no identity before join
	_, _, joined := registry.Identity(sessionID)
	req.False(joined)
}

func Test_Registry_Identify_Captures_Join_Identity(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sessionID := uuid.NewString()
	registry.Attach(sessionID, nopSink{})

	// When the connection joins
	registry.Identify(sessionID, "u1", "Ann")

	// Then the identity is remembered for that session
	userID, userName, joined := registry.Identity(sessionID)
	req.True(joined)
	req.Equal("u1", userID)
	req.Equal("Ann", userName)
}

func Test_Registry_Identify_Unknown_Session_Is_A_Noop(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	registry.Identify(uuid.NewString(), "u1", "Ann")

	req.Zero(registry.Count())
}

func Test_Registry_Detach_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sessionID := uuid.NewString()
	registry.Attach(sessionID, nopSink{})

	// When detaching twice
	registry.Detach(sessionID)
	registry.Detach(sessionID)

	// Then no connection is left and nothing blew up
	req.Zero(registry.Count())
	req.Empty(registry.Sinks())
}

func Test_Registry_SinksExcept_Excludes_The_Sender(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sender := uuid.NewString()
	other := uuid.NewString()
	registry.Attach(sender, nopSink{})
	registry.Attach(other, nopSink{})

	// When collecting everyone but the sender
	sinks := registry.SinksExcept(sender)

	// Then exactly the other connection remains
	req.Len(sinks, 1)
	req.Len(registry.Sinks(), 2)
}
