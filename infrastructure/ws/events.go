package ws

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"chat-relay/domain"
	"chat-relay/domain/event"
)

// Inbound event names. Outbound names come from the event types
// themselves.
const (
	EventJoin        = "join"
	EventChatMessage = "chat-message"
	EventTyping      = "typing"
	EventDoneTyping  = "done-typing"
	EventImportChat  = "import-chat"
	EventExportChat  = "export-chat"
	EventDeleteChat  = "delete-chat"
)

// Envelope is the wire frame for both directions:
// {"event": <name>, "data": <payload>}.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type JoinPayload struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
}

type TypingPayload struct {
	ID string `json:"id" validate:"required"`
}

var validate = validator.New()

// decodePayload unmarshals and validates an inbound payload. Any
// failure means the event is malformed and must be dropped.
func decodePayload[T any](data json.RawMessage) (T, error) {
	var payload T
	if err := json.Unmarshal(data, &payload); err != nil {
		return payload, err
	}
	if err := validate.Struct(payload); err != nil {
		return payload, err
	}
	return payload, nil
}

// encodeEvent frames an outbound server event. List payloads are never
// null on the wire: an empty history or presence still encodes as [].
func encodeEvent(e event.ServerEvent) ([]byte, error) {
	var payload any
	switch evt := e.(type) {
	case event.PresenceUpdated:
		users := evt.Users
		if users == nil {
			users = []domain.PresenceEntry{}
		}
		payload = users
	case event.MessageRelayed:
		payload = evt.Message
	case event.HistoryListed:
		messages := evt.Messages
		if messages == nil {
			messages = []domain.Message{}
		}
		payload = messages
	default:
		return nil, fmt.Errorf("unsupported outbound event %T", e)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: e.EventName(), Data: data})
}
