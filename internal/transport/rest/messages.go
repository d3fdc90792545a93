package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"

	"github.com/mkovacev/hangchat/internal/domain"
	"github.com/mkovacev/hangchat/internal/wire"
)

// History fetches a room's prior messages. A 5xx or an explicit 204
// resolves to a nil slice with a nil error: the sentinel telling the
// caller to leave its in-memory list untouched instead of wiping what
// the user is already reading. Every other failure propagates. A
// successful response is always a non-nil (possibly empty) slice.
func (c *Client) History(ctx context.Context, roomID string) ([]domain.Message, error) {
	var raws []json.RawMessage
	status, err := c.do(ctx, http.MethodGet, "/api/chat/"+url.PathEscape(roomID)+"/messages", nil, &raws)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status >= 500 {
			return nil, nil
		}
		return nil, err
	}
	if status == http.StatusNoContent {
		return nil, nil
	}

	msgs := make([]domain.Message, 0, len(raws))
	for _, raw := range raws {
		msg, err := wire.Message(raw)
		if err != nil {
			log.Printf("rest: skipping malformed message in %s: %v", roomID, err)
			continue
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// MarkRead records that the user has seen the room. Callers treat it as
// best-effort.
func (c *Client) MarkRead(ctx context.Context, roomID string) error {
	_, err := c.do(ctx, http.MethodPost, "/api/chat/"+url.PathEscape(roomID)+"/read", nil, nil)
	return err
}

type unreadResponse struct {
	Count int `json:"count"`
}

// Unread returns the number of unseen messages in the room.
func (c *Client) Unread(ctx context.Context, roomID string) (int, error) {
	var resp unreadResponse
	if _, err := c.do(ctx, http.MethodGet, "/api/chat/"+url.PathEscape(roomID)+"/unread", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}
