//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"chat-relay/domain"
	"chat-relay/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// lifecycle events, avoiding the need for manual naming in the Worker
// interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is one connected client's outbound channel as the
// coordinator sees it. Consume must not block: a sink that cannot
// accept an event reports it and the event is dropped for that
// connection only.
type EventSink interface {
	Consume(ctx context.Context, e event.ServerEvent) error
}

// ICoordinator is the single owner of all shared relay state: the
// history log, the presence registry and the live connection set.
// Every method is a short critical section; mutation and the broadcast
// of derived state appear atomic to all connections.
type ICoordinator interface {
	// Attach registers a connection's sink under its session id. A
	// connection receives broadcasts from attach time, identified or not.
	Attach(sessionID string, sink EventSink)
	// Join identifies the connection and upserts the user's presence.
	Join(ctx context.Context, sessionID, userID, userName string)
	// Leave removes the connection. Safe and idempotent for
	// connections that never joined.
	Leave(ctx context.Context, sessionID string)
	// Relay enqueues a message and forwards it to every other
	// connection. Rejected with a protocol violation before Join.
	Relay(ctx context.Context, sessionID string, message domain.Message) error
	// SetTyping flips a user's typing flag and rebroadcasts presence.
	SetTyping(ctx context.Context, userID string, typing bool) error
	// ImportHistory replaces the history wholesale from the durable
	// store and broadcasts the resulting list.
	ImportHistory(ctx context.Context) error
	// ExportHistory requests an explicit persist of the current history.
	ExportHistory()
	// ClearHistory replaces the history with a fresh empty log,
	// broadcasts the empty list and persists it.
	ClearHistory(ctx context.Context)
}
