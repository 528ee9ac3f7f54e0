// Package domain contains core concepts of the chat relay.
// This file defines Message events and related rules.
// Messages are immutable once enqueued in the history log.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable chat event.
// The relay treats the payload as opaque: it is enqueued, relayed and
// persisted, never interpreted.
type Message struct {
	ID         uuid.UUID `json:"id"`
	SenderID   string    `json:"senderId"`
	SenderName string    `json:"senderName"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
}
