package domain

import (
	"strings"

	"github.com/google/uuid"
)

// MessageTypeText is the only message type this client produces. The wire
// may carry other types; they pass through normalization verbatim.
const MessageTypeText = "text"

const tempIDPrefix = "temp-"

// MessageID identifies a message. Server-assigned ids and client-generated
// temporary ids (optimistic sends) live in disjoint spaces: temporary ids
// always carry the "temp-" prefix, server ids never do.
type MessageID string

// NewTempID returns a fresh temporary id for an optimistic message.
func NewTempID() MessageID {
	return MessageID(tempIDPrefix + uuid.NewString())
}

// Temporary reports whether the id was generated client-side.
func (id MessageID) Temporary() bool {
	return strings.HasPrefix(string(id), tempIDPrefix)
}

type Message struct {
	ID        MessageID `json:"id"`
	RoomID    string    `json:"chat_room_id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
	DeletedAt Timestamp `json:"deleted_at"`

	// Optimistic marks a locally-constructed message that has not been
	// confirmed by a server echo. Never sent on the wire, never set on a
	// server-sourced message.
	Optimistic bool `json:"-"`

	// Raw is the wire object the message was decoded from, kept for
	// diagnostics. Nothing downstream may depend on it.
	Raw []byte `json:"-"`
}
