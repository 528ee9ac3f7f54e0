// Package event defines the outbound events the relay pushes to
// connected clients. Event names double as the wire envelope names.
package event

import (
	"chat-relay/domain"
)

type ServerEvent interface {
	EventName() string
}

// PresenceUpdated carries the full ordered presence snapshot. Full
// snapshots rather than deltas keep client reconciliation trivial.
type PresenceUpdated struct {
	Users []domain.PresenceEntry
}

func (PresenceUpdated) EventName() string { return "presence-update" }

// MessageRelayed carries one chat message to every connection except
// its sender.
type MessageRelayed struct {
	Message domain.Message
}

func (MessageRelayed) EventName() string { return "chat-message" }

// HistoryListed carries the full ordered history, oldest first.
type HistoryListed struct {
	Messages []domain.Message
}

func (HistoryListed) EventName() string { return "history-list" }
