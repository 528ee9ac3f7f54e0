// Package ws implements the per-connection bidirectional event channel
// over websocket: one buffered sink plus read/write pumps per client.
package ws

import (
	"context"
	"fmt"

	"chat-relay/domain/event"
)

// Sink is the coordinator-facing side of one connection. Consume is
// called by the coordinator's fan-out; the write pump drains Events and
// pushes them onto the wire.
type Sink struct {
	Events chan event.ServerEvent
}

func NewSink(bufferSize int) *Sink {
	return &Sink{Events: make(chan event.ServerEvent, bufferSize)}
}

// Consume never blocks the coordinator: a full buffer means this
// connection is too slow and the event is dropped for it alone.
func (s *Sink) Consume(ctx context.Context, e event.ServerEvent) error {
	select {
	case s.Events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return fmt.Errorf("connection buffer full, %s dropped", e.EventName())
	}
}
