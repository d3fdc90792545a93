// Package chat holds the per-room message state: the ordered message
// list, reconciliation of optimistic sends against server echoes, and the
// controller that ties the room directory, history API and realtime
// connection into one view.
package chat

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/mkovacev/hangchat/internal/domain"
	"github.com/mkovacev/hangchat/internal/transport/ws"
)

const markReadTimeout = 10 * time.Second

// Sender pushes outbound frames to the realtime connection. It must be
// safe to call regardless of connection state.
type Sender interface {
	Send(ws.Outbound)
}

// HistoryAPI is the REST surface the store needs.
type HistoryAPI interface {
	History(ctx context.Context, roomID string) ([]domain.Message, error)
	MarkRead(ctx context.Context, roomID string) error
}

// Store owns the ordered message list for the single currently-open room.
// Ordering is insertion order, append-only; the list is never re-sorted
// by timestamp because optimistic entries carry the client clock.
type Store struct {
	api    HistoryAPI
	sender Sender

	mu       sync.Mutex
	roomID   string
	messages []domain.Message
}

func NewStore(api HistoryAPI, sender Sender) *Store {
	return &Store{api: api, sender: sender}
}

// Reset switches the store to a new room, discarding the previous room's
// messages. Nothing survives navigation away from a room.
func (s *Store) Reset(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomID = roomID
	s.messages = nil
}

func (s *Store) RoomID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomID
}

// Messages returns a snapshot of the current list.
func (s *Store) Messages() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// LoadHistory fetches the room's prior messages and installs them as the
// new base list. Two guards apply:
//
//   - A nil result from the API (flaky endpoint, see rest.History) leaves
//     the current list untouched.
//   - If the store has moved to a different room while the fetch was in
//     flight, the resolved history is discarded.
//
// Installing is a merge, not a blind replace: current entries whose id is
// absent from the fetched history — optimistic sends and realtime frames
// that raced the fetch — are re-appended after the base in their existing
// order. Afterwards a detached best-effort mark-read fires for the room.
func (s *Store) LoadHistory(ctx context.Context, roomID string) error {
	hist, err := s.api.History(ctx, roomID)
	if err != nil {
		return err
	}

	if hist != nil {
		s.mu.Lock()
		if s.roomID != roomID {
			s.mu.Unlock()
			return nil
		}
		seen := make(map[domain.MessageID]struct{}, len(hist))
		for _, m := range hist {
			seen[m.ID] = struct{}{}
		}
		merged := make([]domain.Message, 0, len(hist)+len(s.messages))
		merged = append(merged, hist...)
		for _, m := range s.messages {
			if _, ok := seen[m.ID]; !ok {
				merged = append(merged, m)
			}
		}
		s.messages = merged
		s.mu.Unlock()
	}

	go s.markRead(roomID)
	return nil
}

func (s *Store) markRead(roomID string) {
	ctx, cancel := context.WithTimeout(context.Background(), markReadTimeout)
	defer cancel()
	if err := s.api.MarkRead(ctx, roomID); err != nil {
		log.Printf("chat: mark read %s: %v", roomID, err)
	}
}

// AppendRealtime takes one inbound realtime message for the active room.
// If an optimistic entry with exactly the same content exists, the server
// message replaces it in place, keeping its list position; otherwise the
// message is appended. The match is content-only — duplicates from a
// missed match are an accepted trade-off of the simple rule.
func (s *Store) AppendRealtime(msg domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.messages {
		if m.Optimistic && m.Content == msg.Content {
			s.messages[i] = msg
			return
		}
	}
	s.messages = append(s.messages, msg)
}

// SendOptimistic appends a locally-constructed message and hands the
// minimal payload to the realtime connection. It does not wait for any
// acknowledgement; there is none in this protocol.
func (s *Store) SendOptimistic(roomID, content string) domain.Message {
	msg := domain.Message{
		ID:         domain.NewTempID(),
		RoomID:     roomID,
		Content:    content,
		Type:       domain.MessageTypeText,
		CreatedAt:  domain.Now(),
		Optimistic: true,
	}

	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()

	s.sender.Send(ws.Outbound{RoomID: roomID, Content: content, Type: domain.MessageTypeText})
	return msg
}
