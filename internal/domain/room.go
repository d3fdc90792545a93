package domain

// RoomKind distinguishes one-on-one chats from hangout-scoped ones.
type RoomKind string

const (
	RoomDirect  RoomKind = "direct"
	RoomHangout RoomKind = "hangout"
)

type Room struct {
	ID        string    `json:"id"`
	Kind      RoomKind  `json:"type"`
	Name      string    `json:"name,omitempty"`
	HangoutID string    `json:"hangout_id,omitempty"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`

	// Raw is the wire object the room was decoded from, diagnostics only.
	Raw []byte `json:"-"`
}

// DefaultRoomName is the display label for a room with no name of its own.
func DefaultRoomName(kind RoomKind) string {
	if kind == RoomHangout {
		return "Hangout"
	}
	return "Direct Chat"
}

// RoomRef is what the room-creation endpoints hand back. The server owns
// the room row; the client only ever receives its id.
type RoomRef struct {
	ID string `json:"id"`
}
