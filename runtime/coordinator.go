// Package runtime orchestrates the relay: it owns the shared session
// state and maps inbound client events to mutations, broadcasts and
// persistence triggers. It contains no transport or storage mechanics.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	errs "chat-relay/errors"
	"chat-relay/repositories"
)

// Coordinator is the single owner of the history log, the presence
// registry and the connection registry. One mutex covers every event
// handler so that mutation plus the broadcast of derived state appear
// atomic to all connections; sinks are non-blocking, so holding the
// lock across the fan-out is cheap and preserves a single global
// delivery order per connection.
//
// Disk I/O never happens under the lock: handlers snapshot the history
// and hand the snapshot to the persist worker through a coalescing
// channel.
type Coordinator struct {
	mu         sync.Mutex
	log        *slog.Logger
	presence   *domain.PresenceRegistry
	history    *domain.HistoryLog
	registry   *Registry
	repository repositories.IHistoryRepository
	persist    chan domain.HistorySnapshot
}

func NewCoordinator(log *slog.Logger, registry *Registry,
	repository repositories.IHistoryRepository) *Coordinator {
	return &Coordinator{
		log:        log,
		presence:   domain.NewPresenceRegistry(),
		history:    domain.NewHistoryLog(),
		registry:   registry,
		repository: repository,
		persist:    make(chan domain.HistorySnapshot, 1),
	}
}

// PersistRequests exposes the snapshot channel consumed by the persist
// worker.
func (c *Coordinator) PersistRequests() <-chan domain.HistorySnapshot {
	return c.persist
}

func (c *Coordinator) Attach(sessionID string, sink contract.EventSink) {
	c.registry.Attach(sessionID, sink)
}

// Join identifies the connection, upserts the user's presence and
// broadcasts the full presence snapshot to everyone, sender included.
// The history is persisted on join, matching the relay's lifecycle
// persistence points.
func (c *Coordinator) Join(ctx context.Context, sessionID, userID, userName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.registry.Identify(sessionID, userID, userName)
	c.presence.Upsert(userID, userName)
	c.log.Info("User joined", "user_id", userID, "name", userName)
	c.requestPersist(c.history.Snapshot())
	c.broadcast(ctx, c.registry.Sinks(), event.PresenceUpdated{Users: c.presence.Snapshot()})
}

// Leave tears a connection down. For identified connections the user's
// presence entry is removed, presence is rebroadcast and the history
// persisted; a connection that never joined is simply detached.
func (c *Coordinator) Leave(ctx context.Context, sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	userID, userName, joined := c.registry.Identity(sessionID)
	c.registry.Detach(sessionID)
	if !joined {
		return
	}
	c.presence.Remove(userID)
	c.log.Info("User disconnected", "user_id", userID, "name", userName)
	c.requestPersist(c.history.Snapshot())
	c.broadcast(ctx, c.registry.Sinks(), event.PresenceUpdated{Users: c.presence.Snapshot()})
}

// Relay appends a message to the history and forwards it to every
// connection except the sender, so the sender never sees a local echo.
// Messages from connections that have not joined are rejected.
func (c *Coordinator) Relay(ctx context.Context, sessionID string, message domain.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, _, joined := c.registry.Identity(sessionID); !joined {
		return fmt.Errorf("%w: chat message dropped", errs.ErrNotIdentified)
	}
	c.history.Enqueue(message)
	c.broadcast(ctx, c.registry.SinksExcept(sessionID), event.MessageRelayed{Message: message})
	return nil
}

// SetTyping flips a user's typing flag and rebroadcasts presence. A
// typing event for a user without a presence entry surfaces a protocol
// violation instead of mutating anything.
func (c *Coordinator) SetTyping(ctx context.Context, userID string, typing bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.presence.SetTyping(userID, typing); err != nil {
		return err
	}
	c.broadcast(ctx, c.registry.Sinks(), event.PresenceUpdated{Users: c.presence.Snapshot()})
	return nil
}

// ImportHistory replaces the in-memory history wholesale with the
// persisted snapshot and broadcasts the resulting ordered list. A
// missing blob imports as an empty history; any other load failure is
// returned without touching the current history.
func (c *Coordinator) ImportHistory(ctx context.Context) error {
	// Load happens before taking the lock: storage latency must not
	// stall unrelated connections.
	snapshot, err := c.repository.Load()
	switch {
	case errors.Is(err, errs.ErrSnapshotNotFound):
		snapshot = domain.HistorySnapshot{}
	case err != nil:
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = domain.FromSnapshot(snapshot)
	c.log.Info("History imported", "messages", c.history.Length())
	c.broadcast(ctx, c.registry.Sinks(), event.HistoryListed{Messages: c.history.Messages()})
	return nil
}

// ExportHistory requests an explicit persist of the current history.
// No broadcast: exporting is a pure write.
func (c *Coordinator) ExportHistory() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requestPersist(c.history.Snapshot())
}

// ClearHistory replaces the history with a fresh empty log, announces
// the now-empty list to everyone and persists the empty snapshot.
func (c *Coordinator) ClearHistory(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = domain.NewHistoryLog()
	c.log.Info("History deleted")
	c.requestPersist(c.history.Snapshot())
	c.broadcast(ctx, c.registry.Sinks(), event.HistoryListed{})
}

// HistoryLength reports the number of retained messages.
func (c *Coordinator) HistoryLength() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Length()
}

// requestPersist hands a snapshot to the persist worker without ever
// blocking. The channel keeps only the newest snapshot: snapshots are
// whole-state, so the latest one subsumes every earlier accepted write
// and durability stays best-effort without head-of-line blocking on
// storage latency.
func (c *Coordinator) requestPersist(snapshot domain.HistorySnapshot) {
	for {
		select {
		case c.persist <- snapshot:
			return
		default:
			select {
			case <-c.persist:
				// Stale snapshot discarded, retry with the newest one.
			default:
			}
		}
	}
}

func (c *Coordinator) broadcast(ctx context.Context, sinks []contract.EventSink, evt event.ServerEvent) {
	for _, sink := range sinks {
		if err := sink.Consume(ctx, evt); err != nil {
			c.log.Warn("Event dropped for connection", "event", evt.EventName(), "error", err)
		}
	}
}
