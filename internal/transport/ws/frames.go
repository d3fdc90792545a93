package ws

import "encoding/json"

// Outbound is the only frame the client produces. The server is the sole
// authority for id, sender and timestamp assignment, so the payload stays
// minimal.
type Outbound struct {
	RoomID  string `json:"chat_room_id"`
	Content string `json:"content"`
	Type    string `json:"type"`
}

func (o Outbound) encode() ([]byte, error) {
	return json.Marshal(o)
}
