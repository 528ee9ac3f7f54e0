package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"chat-relay/contract"
	"chat-relay/domain"
	errs "chat-relay/errors"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// Session is one live client connection: a websocket, its buffered sink
// and the session id under which the coordinator knows it. The identity
// asserted on join lives in the coordinator's registry, so the session
// itself stays a dumb pipe.
type Session struct {
	id          string
	conn        *websocket.Conn
	coordinator contract.ICoordinator
	sink        *Sink
	log         *slog.Logger
}

func newSession(conn *websocket.Conn, coordinator contract.ICoordinator,
	log *slog.Logger, bufferSize int) *Session {
	return &Session{
		id:          uuid.NewString(),
		conn:        conn,
		coordinator: coordinator,
		sink:        NewSink(bufferSize),
		log:         log,
	}
}

// run attaches the session, pumps until the client goes away and tears
// everything down. Leave is safe even when the client never joined.
func (s *Session) run(ctx context.Context) {
	s.coordinator.Attach(s.id, s.sink)
	done := make(chan struct{})
	go s.writePump(done)
	s.readPump(ctx)
	s.coordinator.Leave(ctx, s.id)
	close(done)
	_ = s.conn.Close()
}

func (s *Session) readPump(ctx context.Context) {
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				s.log.Warn("Unexpected websocket close", "session_id", s.id, "error", err)
			}
			return
		}
		s.handle(ctx, raw)
	}
}

func (s *Session) writePump(done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	// Closing the connection here unblocks the read pump, so a failed
	// write tears the session down right away instead of leaving a dead
	// client in the presence list until the pong deadline expires.
	defer func() { _ = s.conn.Close() }()

	for {
		select {
		case <-done:
			return
		case evt := <-s.sink.Events:
			frame, err := encodeEvent(evt)
			if err != nil {
				s.log.Error("Outbound event not encodable", "session_id", s.id, "error", err)
				continue
			}
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				s.log.Debug("Write failed, connection closing", "session_id", s.id, "error", err)
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handle maps one inbound frame to a coordinator call. Failures are
// scoped to the event: protocol violations and malformed frames are
// logged and dropped, the connection stays open.
func (s *Session) handle(ctx context.Context, raw []byte) {
	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		s.log.Warn("Malformed frame dropped", "session_id", s.id, "error", err)
		return
	}

	var err error
	switch envelope.Event {
	case EventJoin:
		var payload JoinPayload
		if payload, err = decodePayload[JoinPayload](envelope.Data); err == nil {
			s.coordinator.Join(ctx, s.id, payload.ID, payload.Name)
		}
	case EventChatMessage:
		var message domain.Message
		if err = json.Unmarshal(envelope.Data, &message); err == nil {
			err = s.coordinator.Relay(ctx, s.id, normalize(message))
		}
	case EventTyping:
		var payload TypingPayload
		if payload, err = decodePayload[TypingPayload](envelope.Data); err == nil {
			err = s.coordinator.SetTyping(ctx, payload.ID, true)
		}
	case EventDoneTyping:
		var payload TypingPayload
		if payload, err = decodePayload[TypingPayload](envelope.Data); err == nil {
			err = s.coordinator.SetTyping(ctx, payload.ID, false)
		}
	case EventImportChat:
		err = s.coordinator.ImportHistory(ctx)
	case EventExportChat:
		s.coordinator.ExportHistory()
	case EventDeleteChat:
		s.coordinator.ClearHistory(ctx)
	default:
		s.log.Warn("Unknown event dropped", "session_id", s.id, "event", envelope.Event)
		return
	}

	switch {
	case err == nil:
	case errs.IsProtocolViolation(err):
		s.log.Warn("Protocol violation, event dropped",
			"session_id", s.id, "event", envelope.Event, "error", err)
	default:
		s.log.Error("Event handling failed",
			"session_id", s.id, "event", envelope.Event, "error", err)
	}
}

// normalize completes a relayed message so history entries are always
// whole: a missing id gets a fresh uuid, a zero timestamp the server
// time. Content is left untouched.
func normalize(message domain.Message) domain.Message {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	return message
}
