package domain

import (
	"fmt"

	"github.com/samber/lo"

	errs "chat-relay/errors"
)

// PresenceEntry is one connected user as broadcast to clients.
type PresenceEntry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsTyping bool   `json:"isTyping"`
}

// PresenceRegistry holds the currently connected users in
// insertion/replacement order. At most one entry exists per user id.
//
// PresenceRegistry is not synchronized. The coordinator owns it
// exclusively; it is never persisted and is rebuilt from live
// connections after a restart.
type PresenceRegistry struct {
	entries []PresenceEntry
}

func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{}
}

// Upsert registers a user. Last join wins: any previous entry for the
// id is dropped and the user is re-appended with a cleared typing flag.
func (r *PresenceRegistry) Upsert(id, name string) {
	r.Remove(id)
	r.entries = append(r.entries, PresenceEntry{ID: id, Name: name})
}

// Remove deletes the entry for id. Removing an absent id is a no-op.
func (r *PresenceRegistry) Remove(id string) {
	r.entries = lo.Filter(r.entries, func(entry PresenceEntry, _ int) bool {
		return entry.ID != id
	})
}

// SetTyping flips the typing flag for id. A typing event for a user
// without an entry is a protocol violation surfaced to the caller; the
// registry is left unchanged.
func (r *PresenceRegistry) SetTyping(id string, typing bool) error {
	for i := range r.entries {
		if r.entries[i].ID == id {
			r.entries[i].IsTyping = typing
			return nil
		}
	}
	return fmt.Errorf("%w: %s", errs.ErrUnknownUser, id)
}

// Snapshot returns an independent copy of all entries in order. The
// result is never nil so it always serializes as a list.
func (r *PresenceRegistry) Snapshot() []PresenceEntry {
	snapshot := make([]PresenceEntry, len(r.entries))
	copy(snapshot, r.entries)
	return snapshot
}

func (r *PresenceRegistry) Len() int {
	return len(r.entries)
}
