package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"

	"github.com/mkovacev/hangchat/internal/domain"
)

func TestEndpointURL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"http://localhost:8080", "ws://localhost:8080/api/chat/ws?token=tok"},
		{"https://api.example.com", "wss://api.example.com/api/chat/ws?token=tok"},
		{"ws://localhost:8080", "ws://localhost:8080/api/chat/ws?token=tok"},
		{"wss://api.example.com", "wss://api.example.com/api/chat/ws?token=tok"},
	}
	for _, tt := range tests {
		got, err := EndpointURL(tt.base, "tok")
		require.NoError(t, err, tt.base)
		assert.Equal(t, tt.want, got)
	}
}

func TestEndpointURL_EscapesToken(t *testing.T) {
	got, err := EndpointURL("http://localhost:8080", "a b&c")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/api/chat/ws?token=a+b%26c", got)
}

func TestEndpointURL_RejectsUnknownScheme(t *testing.T) {
	_, err := EndpointURL("ftp://example.com", "tok")
	assert.Error(t, err)
}

func TestManager_NoTokenNeverConnects(t *testing.T) {
	m, err := NewManager("http://localhost:8080", "", nil)
	require.NoError(t, err)

	require.NoError(t, m.Connect(context.Background()))
	assert.Equal(t, StateDisconnected, m.State())

	// Send must be a silent no-op in any non-open state.
	m.Send(Outbound{RoomID: "r1", Content: "hello", Type: "text"})
}

func TestManager_SendWhileClosedIsDropped(t *testing.T) {
	received := make(chan []byte, 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			return
		}
		defer c.Close(websocket.StatusNormalClosure, "")
		for {
			_, data, err := c.Read(r.Context())
			if err != nil {
				return
			}
			received <- data
		}
	}))
	defer srv.Close()

	m, err := NewManager(srv.URL, "tok", nil)
	require.NoError(t, err)

	// Not yet connected: dropped, not queued.
	m.Send(Outbound{RoomID: "r1", Content: "before open", Type: "text"})

	require.NoError(t, m.Connect(context.Background()))
	require.Equal(t, StateOpen, m.State())

	// Opening must not retransmit the dropped payload.
	m.Send(Outbound{RoomID: "r1", Content: "after open", Type: "text"})

	select {
	case data := <-received:
		assert.Contains(t, string(data), "after open")
	case <-time.After(2 * time.Second):
		t.Fatal("frame sent while open never arrived")
	}
	select {
	case data := <-received:
		t.Fatalf("unexpected extra frame: %s", data)
	case <-time.After(200 * time.Millisecond):
	}

	m.Close()
	assert.Equal(t, StateClosed, m.State())

	// Closed again: silent no-op.
	m.Send(Outbound{RoomID: "r1", Content: "after close", Type: "text"})
}

func TestManager_DeliversNormalizedFrames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat/ws", r.URL.Path)
		assert.Equal(t, "tok", r.URL.Query().Get("token"))

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			return
		}
		defer c.Close(websocket.StatusNormalClosure, "")

		ctx := r.Context()
		// A garbage frame first: it must be dropped without killing the
		// connection.
		c.Write(ctx, websocket.MessageText, []byte(`{not json`))
		c.Write(ctx, websocket.MessageText, []byte(`{"ID":"m1","ChatRoomID":"r1","Content":"hi","CreatedAt":1000}`))
		c.Read(ctx) // hold the connection open until the client closes
	}))
	defer srv.Close()

	got := make(chan domain.Message, 8)
	m, err := NewManager(srv.URL, "tok", func(msg domain.Message) {
		got <- msg
	})
	require.NoError(t, err)
	require.NoError(t, m.Connect(context.Background()))
	defer m.Close()

	select {
	case msg := <-got:
		assert.Equal(t, domain.MessageID("m1"), msg.ID)
		assert.Equal(t, "r1", msg.RoomID)
		assert.Equal(t, "hi", msg.Content)
		assert.Equal(t, "text", msg.Type)
		assert.False(t, msg.Optimistic)
	case <-time.After(2 * time.Second):
		t.Fatal("no message delivered")
	}
}

func TestManager_CloseIsIdempotent(t *testing.T) {
	m, err := NewManager("http://localhost:8080", "", nil)
	require.NoError(t, err)
	m.Close()
	m.Close()
	assert.Equal(t, StateClosed, m.State())
}

func TestManager_ConnectRefusedMarksClosed(t *testing.T) {
	srv := httptest.NewServer(nil)
	srv.Close() // nothing listening anymore

	m, err := NewManager(srv.URL, "tok", nil)
	require.NoError(t, err)
	assert.Error(t, m.Connect(context.Background()))
	assert.Equal(t, StateClosed, m.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "disconnected", StateDisconnected.String())
	assert.Equal(t, "connecting", StateConnecting.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "closed", StateClosed.String())
}
