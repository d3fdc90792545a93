package rest

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/mkovacev/hangchat/internal/domain"
	"github.com/mkovacev/hangchat/internal/wire"
)

// ListRooms returns the rooms the current user belongs to. Any failure
// degrades to an empty list: a broken room list must not take down the
// chat view, so this call never surfaces an error.
func (c *Client) ListRooms(ctx context.Context) []domain.Room {
	var raws []json.RawMessage
	if _, err := c.do(ctx, http.MethodGet, "/api/chat/rooms", nil, &raws); err != nil {
		log.Printf("rest: listing rooms: %v", err)
		return []domain.Room{}
	}

	rooms := make([]domain.Room, 0, len(raws))
	for _, raw := range raws {
		room, err := wire.Room(raw)
		if err != nil {
			log.Printf("rest: skipping malformed room: %v", err)
			continue
		}
		rooms = append(rooms, room)
	}
	return rooms
}

type createDirectRequest struct {
	OtherUserID string `json:"other_user_id"`
}

// CreateDirect finds or creates the direct room with another user.
// Unlike ListRooms, creation errors propagate to the caller.
func (c *Client) CreateDirect(ctx context.Context, otherUserID string) (domain.RoomRef, error) {
	var ref domain.RoomRef
	_, err := c.do(ctx, http.MethodPost, "/api/chat/direct", createDirectRequest{OtherUserID: otherUserID}, &ref)
	return ref, err
}

type createHangoutRequest struct {
	HangoutID string `json:"hangout_id"`
	Type      string `json:"type"`
	Name      string `json:"name"`
}

// CreateHangout finds or creates the room attached to a hangout.
func (c *Client) CreateHangout(ctx context.Context, hangoutID, name string) (domain.RoomRef, error) {
	var ref domain.RoomRef
	req := createHangoutRequest{HangoutID: hangoutID, Type: string(domain.RoomHangout), Name: name}
	_, err := c.do(ctx, http.MethodPost, "/api/chat/hangout", req, &ref)
	return ref, err
}
