// Package wire normalizes the chat service's inconsistent payload casing.
// History responses and realtime frames emit the same logical fields under
// either snake_case or exported-Go-style keys depending on which server
// path serialized them; everything inbound funnels through here so the
// rest of the client only ever sees the canonical shape.
package wire

import (
	"encoding/json"

	"github.com/mkovacev/hangchat/internal/domain"
)

// rawMessage accepts both key-casing variants of a wire message. The
// snake_case key is the primary; the alternate is only consulted when the
// primary is absent or empty.
type rawMessage struct {
	ID           string           `json:"id"`
	AltID        string           `json:"ID"`
	RoomID       string           `json:"chat_room_id"`
	AltRoomID    string           `json:"ChatRoomID"`
	SenderID     string           `json:"sender_id"`
	AltSenderID  string           `json:"SenderID"`
	Content      *string          `json:"content"`
	AltContent   *string          `json:"Content"`
	Type         string           `json:"type"`
	AltType      string           `json:"Type"`
	CreatedAt    domain.Timestamp `json:"created_at"`
	AltCreatedAt domain.Timestamp `json:"CreatedAt"`
	UpdatedAt    domain.Timestamp `json:"updated_at"`
	AltUpdatedAt domain.Timestamp `json:"UpdatedAt"`
	DeletedAt    domain.Timestamp `json:"deleted_at"`
	AltDeletedAt domain.Timestamp `json:"DeletedAt"`
}

// Message decodes one wire object into the canonical message record.
// Only type and created_at get literal defaults ("text", current local
// time); every other absent field stays zero. Idempotent: feeding the
// canonical encoding back through yields the same record.
func Message(data []byte) (domain.Message, error) {
	var r rawMessage
	if err := json.Unmarshal(data, &r); err != nil {
		return domain.Message{}, err
	}

	msg := domain.Message{
		ID:        domain.MessageID(pick(r.ID, r.AltID)),
		RoomID:    pick(r.RoomID, r.AltRoomID),
		SenderID:  pick(r.SenderID, r.AltSenderID),
		Content:   pickText(r.Content, r.AltContent),
		Type:      pick(r.Type, r.AltType),
		CreatedAt: pickTime(r.CreatedAt, r.AltCreatedAt),
		UpdatedAt: pickTime(r.UpdatedAt, r.AltUpdatedAt),
		DeletedAt: pickTime(r.DeletedAt, r.AltDeletedAt),
		Raw:       data,
	}
	if msg.Type == "" {
		msg.Type = domain.MessageTypeText
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = domain.Now()
	}
	return msg, nil
}

type rawRoom struct {
	ID           string           `json:"id"`
	AltID        string           `json:"ID"`
	Kind         string           `json:"type"`
	AltKind      string           `json:"Type"`
	Name         *string          `json:"name"`
	AltName      *string          `json:"Name"`
	HangoutID    string           `json:"hangout_id"`
	AltHangoutID string           `json:"HangoutID"`
	CreatedAt    domain.Timestamp `json:"created_at"`
	AltCreatedAt domain.Timestamp `json:"CreatedAt"`
	UpdatedAt    domain.Timestamp `json:"updated_at"`
	AltUpdatedAt domain.Timestamp `json:"UpdatedAt"`
}

// Room decodes one wire object into the canonical room record. A room
// without a name gets the display label derived from its kind.
func Room(data []byte) (domain.Room, error) {
	var r rawRoom
	if err := json.Unmarshal(data, &r); err != nil {
		return domain.Room{}, err
	}

	room := domain.Room{
		ID:        pick(r.ID, r.AltID),
		Kind:      domain.RoomKind(pick(r.Kind, r.AltKind)),
		Name:      pickText(r.Name, r.AltName),
		HangoutID: pick(r.HangoutID, r.AltHangoutID),
		CreatedAt: pickTime(r.CreatedAt, r.AltCreatedAt),
		UpdatedAt: pickTime(r.UpdatedAt, r.AltUpdatedAt),
		Raw:       data,
	}
	if room.Name == "" {
		room.Name = domain.DefaultRoomName(room.Kind)
	}
	return room, nil
}

func pick(primary, alt string) string {
	if primary != "" {
		return primary
	}
	return alt
}

// pickText differs from pick: a present-but-empty primary wins, so an
// explicitly empty content field is not shadowed by the alternate key.
func pickText(primary, alt *string) string {
	if primary != nil {
		return *primary
	}
	if alt != nil {
		return *alt
	}
	return ""
}

func pickTime(primary, alt domain.Timestamp) domain.Timestamp {
	if !primary.IsZero() {
		return primary
	}
	return alt
}
