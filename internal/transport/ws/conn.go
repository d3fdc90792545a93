// Package ws maintains the realtime connection to the chat service: one
// WebSocket per mounted chat view, authenticated through a token query
// parameter because the browser-style upgrade request cannot carry
// arbitrary headers. Inbound frames are normalized and handed to a single
// callback; outbound sends silently no-op unless the socket is open.
package ws

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"nhooyr.io/websocket"

	"github.com/mkovacev/hangchat/internal/domain"
	"github.com/mkovacev/hangchat/internal/wire"
)

const (
	dialTimeout    = 10 * time.Second
	writeWait      = 10 * time.Second
	pingInterval   = 30 * time.Second
	maxMessageSize = 4096
)

// State is the connection lifecycle. There is no automatic reconnect:
// once closed, a manager stays closed and the owning view builds a new
// one if it wants a live socket again.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Handler receives each normalized inbound message. Exactly one call per
// parseable frame, in arrival order; no buffering.
type Handler func(domain.Message)

// Manager owns the single socket for a chat view's lifetime.
type Manager struct {
	endpoint  string // empty when there is no auth token: never connects
	onMessage Handler

	mu     sync.Mutex
	state  State
	conn   *websocket.Conn
	cancel context.CancelFunc
}

// NewManager builds a manager for the given API base URL. An empty token
// yields a manager that never attempts to connect; its Send is a no-op,
// which keeps the chat view usable for history-only reading.
func NewManager(apiBase, token string, onMessage Handler) (*Manager, error) {
	m := &Manager{onMessage: onMessage, state: StateDisconnected}
	if token == "" {
		return m, nil
	}
	endpoint, err := EndpointURL(apiBase, token)
	if err != nil {
		return nil, err
	}
	m.endpoint = endpoint
	return m, nil
}

// EndpointURL derives the realtime endpoint from the HTTP base URL:
// http→ws, https→wss, path /api/chat/ws, token as a query parameter.
func EndpointURL(apiBase, token string) (string, error) {
	u, err := url.Parse(apiBase)
	if err != nil {
		return "", fmt.Errorf("parsing api base url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported api base scheme %q", u.Scheme)
	}
	u.Path = "/api/chat/ws"
	u.RawQuery = url.Values{"token": {token}}.Encode()
	return u.String(), nil
}

// Connect dials the realtime endpoint and starts the read loop. Without
// a token this returns nil and the manager stays disconnected.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.endpoint == "" {
		m.mu.Unlock()
		return nil
	}
	if m.state != StateDisconnected {
		m.mu.Unlock()
		return fmt.Errorf("ws: connect from state %s", m.state)
	}
	m.state = StateConnecting
	m.mu.Unlock()

	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	conn, _, err := websocket.Dial(dialCtx, m.endpoint, nil)
	cancel()
	if err != nil {
		m.mu.Lock()
		m.state = StateClosed
		m.mu.Unlock()
		return fmt.Errorf("ws: dial: %w", err)
	}
	conn.SetReadLimit(maxMessageSize)

	loopCtx, loopCancel := context.WithCancel(context.Background())
	m.mu.Lock()
	if m.state != StateConnecting {
		// Closed while the dial was in flight.
		m.mu.Unlock()
		loopCancel()
		conn.Close(websocket.StatusNormalClosure, "")
		return nil
	}
	m.conn = conn
	m.cancel = loopCancel
	m.state = StateOpen
	m.mu.Unlock()

	go m.readLoop(loopCtx, conn)
	go m.pingLoop(loopCtx, conn)
	return nil
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Send pushes one outbound frame. Not open means silent no-op: the frame
// is neither queued nor retried later, and the caller's optimistic entry
// simply stays unreconciled.
func (m *Manager) Send(out Outbound) {
	m.mu.Lock()
	conn := m.conn
	open := m.state == StateOpen
	m.mu.Unlock()
	if !open {
		return
	}

	data, err := out.encode()
	if err != nil {
		log.Printf("ws: encoding outbound frame: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		log.Printf("ws: write error: %v", err)
		m.markClosed()
	}
}

// Close tears the socket down. Mandatory on view unmount or auth-token
// change; safe to call in any state and more than once.
func (m *Manager) Close() {
	m.mu.Lock()
	conn := m.conn
	cancel := m.cancel
	m.conn = nil
	m.cancel = nil
	m.state = StateClosed
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if conn != nil {
		conn.Close(websocket.StatusNormalClosure, "")
	}
}

func (m *Manager) markClosed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateClosed
}

// readLoop delivers inbound frames until the socket dies. Frames that do
// not parse are logged and dropped; the connection stays up.
func (m *Manager) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer m.markClosed()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Printf("ws: connection closed by server")
			} else if ctx.Err() == nil {
				log.Printf("ws: read error: %v", err)
			}
			return
		}

		msg, err := wire.Message(data)
		if err != nil {
			log.Printf("ws: dropping unparseable frame: %v", err)
			continue
		}
		if m.onMessage != nil {
			m.onMessage(msg)
		}
	}
}

func (m *Manager) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				if ctx.Err() == nil {
					log.Printf("ws: ping error: %v", err)
				}
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
