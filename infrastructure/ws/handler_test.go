package ws

import (
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"chat-relay/domain"
	"chat-relay/mocks"
	"chat-relay/runtime"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctrl := gomock.NewController(t)
	repository := mocks.NewMockIHistoryRepository(ctrl)
	coordinator := runtime.NewCoordinator(slog.Default(), runtime.NewRegistry(), repository)
	server := httptest.NewServer(NewHandler(slog.Default(), coordinator, 64))
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := strings.Replace(server.URL, "http", "ws", 1)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, frame string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var envelope Envelope
	require.NoError(t, json.Unmarshal(raw, &envelope))
	return envelope
}

func readPresence(t *testing.T, conn *websocket.Conn) []domain.PresenceEntry {
	t.Helper()
	envelope := readEnvelope(t, conn)
	require.Equal(t, "presence-update", envelope.Event)
	var users []domain.PresenceEntry
	require.NoError(t, json.Unmarshal(envelope.Data, &users))
	return users
}

func Test_Relay_Scenario_Over_Websocket(t *testing.T) {
	req := require.New(t)
	server := newTestServer(t)

	// Given Ann joined
	clientA := dial(t, server)
	send(t, clientA, `{"event":"join","data":{"id":"u1","name":"Ann"}}`)
	req.Equal([]domain.PresenceEntry{{ID: "u1", Name: "Ann"}}, readPresence(t, clientA))

	// And Bo joined after her
	clientB := dial(t, server)
	send(t, clientB, `{"event":"join","data":{"id":"u2","name":"Bo"}}`)
	expected := []domain.PresenceEntry{{ID: "u1", Name: "Ann"}, {ID: "u2", Name: "Bo"}}
	req.Equal(expected, readPresence(t, clientA))
	req.Equal(expected, readPresence(t, clientB))

	// When Ann sends a chat message
	send(t, clientA, `{"event":"chat-message","data":{"senderId":"u1","senderName":"Ann","content":"hi"}}`)

	// Then Bo receives it
	envelope := readEnvelope(t, clientB)
	req.Equal("chat-message", envelope.Event)
	var message domain.Message
	req.NoError(json.Unmarshal(envelope.Data, &message))
	req.Equal("hi", message.Content)
	req.Equal("u1", message.SenderID)

	// And Ann does not: her next frame is the history-list she asks for
	send(t, clientA, `{"event":"delete-chat"}`)
	envelope = readEnvelope(t, clientA)
	req.Equal("history-list", envelope.Event)
	req.JSONEq(`[]`, string(envelope.Data))

	// Bo gets the same empty history
	envelope = readEnvelope(t, clientB)
	req.Equal("history-list", envelope.Event)
}

func Test_Chat_Before_Join_Does_Not_Close_The_Connection(t *testing.T) {
	req := require.New(t)
	server := newTestServer(t)

	client := dial(t, server)

	// When a chat message arrives before any join
	send(t, client, `{"event":"chat-message","data":{"senderId":"u1","content":"too early"}}`)

	// Then the event was dropped but the connection still works
	send(t, client, `{"event":"join","data":{"id":"u1","name":"Ann"}}`)
	req.Equal([]domain.PresenceEntry{{ID: "u1", Name: "Ann"}}, readPresence(t, client))
}

func Test_Disconnect_Broadcasts_Departure(t *testing.T) {
	req := require.New(t)
	server := newTestServer(t)

	clientA := dial(t, server)
	send(t, clientA, `{"event":"join","data":{"id":"u1","name":"Ann"}}`)
	readPresence(t, clientA)

	clientB := dial(t, server)
	send(t, clientB, `{"event":"join","data":{"id":"u2","name":"Bo"}}`)
	readPresence(t, clientA)
	readPresence(t, clientB)

	// When Bo's connection goes away
	req.NoError(clientB.Close())

	// Then Ann sees only herself again
	req.Equal([]domain.PresenceEntry{{ID: "u1", Name: "Ann"}}, readPresence(t, clientA))
}
