package remote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normanking/neonlight/internal/neon"
)

type fakeSelector struct {
	mu      sync.Mutex
	states  []neon.State
	privacy []bool
}

func (f *fakeSelector) OnStateRequested(s neon.State) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states = append(f.states, s)
}

func (f *fakeSelector) OnPrivacyToggled(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.privacy = append(f.privacy, on)
}

func (f *fakeSelector) snapshot() ([]neon.State, []bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]neon.State(nil), f.states...), append([]bool(nil), f.privacy...)
}

// feedServer accepts one connection, records the hello and runs script
func feedServer(t *testing.T, script func(conn *websocket.Conn)) (*httptest.Server, <-chan Message) {
	t.Helper()
	upgrader := websocket.Upgrader{}
	hello := make(chan Message, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		hello <- msg
		script(conn)
	}))
	t.Cleanup(srv.Close)
	return srv, hello
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestClientForwardsStateAndPrivacy(t *testing.T) {
	srv, hello := feedServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"state","state":"thinking"}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"state","state":"dancing"}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"privacy","privacy":true}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"state","state":"speaking"}`))
		time.Sleep(500 * time.Millisecond)
	})

	sel := &fakeSelector{}
	c := NewClient(Config{URL: wsURL(srv), ReconnectDelay: time.Hour}, sel, nil, zerolog.Nop())
	require.NoError(t, c.Connect(context.Background()))
	defer c.Disconnect()

	select {
	case msg := <-hello:
		assert.Equal(t, TypeHello, msg.Type)
		assert.Equal(t, c.SessionID(), msg.Session)
		_, err := uuid.Parse(msg.Session)
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("no hello received")
	}

	require.Eventually(t, func() bool {
		states, privacy := sel.snapshot()
		return len(states) == 2 && len(privacy) == 1
	}, 5*time.Second, 10*time.Millisecond)

	states, privacy := sel.snapshot()
	assert.Equal(t, []neon.State{neon.Thinking, neon.Speaking}, states, "malformed messages are skipped")
	assert.Equal(t, []bool{true}, privacy)
}

func TestClientAnswersPing(t *testing.T) {
	pong := make(chan Message, 1)
	status := make(chan Message, 1)
	srv, _ := feedServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteJSON(Message{Type: TypePing})
		var msg Message
		if err := conn.ReadJSON(&msg); err == nil {
			pong <- msg
		}
		if err := conn.ReadJSON(&msg); err == nil {
			status <- msg
		}
	})

	c := NewClient(Config{URL: wsURL(srv), ReconnectDelay: time.Hour}, &fakeSelector{}, nil, zerolog.Nop())
	require.NoError(t, c.Connect(context.Background()))
	defer c.Disconnect()

	select {
	case msg := <-pong:
		assert.Equal(t, TypePong, msg.Type)
	case <-time.After(5 * time.Second):
		t.Fatal("no pong received")
	}

	require.Eventually(t, c.IsConnected, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, c.SendStatus(neon.Listening, true))

	select {
	case msg := <-status:
		assert.Equal(t, TypeStatus, msg.Type)
		require.NotNil(t, msg.State)
		assert.Equal(t, neon.Listening, *msg.State)
		require.NotNil(t, msg.Privacy)
		assert.True(t, *msg.Privacy)
	case <-time.After(5 * time.Second):
		t.Fatal("no status received")
	}
}

func TestSendWithoutConnection(t *testing.T) {
	c := NewClient(Config{URL: "ws://127.0.0.1:1"}, &fakeSelector{}, nil, zerolog.Nop())
	assert.ErrorIs(t, c.SendStatus(neon.Idle, false), ErrNotConnected)
	assert.False(t, c.IsConnected())
}

func TestFeedURL(t *testing.T) {
	for in, want := range map[string]string{
		"http://localhost:8765/light":  "ws://localhost:8765/light",
		"https://example.com/feed":     "wss://example.com/feed",
		"ws://127.0.0.1:9000":          "ws://127.0.0.1:9000",
		"wss://example.com/light?id=1": "wss://example.com/light?id=1",
	} {
		got, err := feedURL(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	for _, bad := range []string{"ftp://example.com", "ws://", "::"} {
		_, err := feedURL(bad)
		assert.Error(t, err, bad)
	}
}

func TestConnectRejectsBadURL(t *testing.T) {
	c := NewClient(Config{URL: "ftp://example.com"}, &fakeSelector{}, nil, zerolog.Nop())
	assert.Error(t, c.Connect(context.Background()))
	c.Disconnect()
}
