package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mkovacev/hangchat/internal/domain"
	"github.com/mkovacev/hangchat/pkg/validator"
)

var (
	ErrEmptyMessage   = errors.New("message is empty")
	ErrInvalidMessage = errors.New("invalid message")
	ErrNoRoomSelected = errors.New("no room selected")
	ErrSendInFlight   = errors.New("previous send still in flight")
)

// SendState is the UI state of the send control. The debounce window is a
// conservative guard against double-sends, not a correctness mechanism:
// it expires on a fixed timer, independent of the server, because this
// protocol has no acknowledgement channel.
type SendState int

const (
	SendIdle SendState = iota
	SendSending
)

// Directory lists the rooms the user belongs to.
type Directory interface {
	ListRooms(ctx context.Context) []domain.Room
}

// ScrollFunc is the auto-scroll hook, invoked with the new message count
// whenever it changes.
type ScrollFunc func(count int)

// Controller composes the room directory, message store and realtime
// connection into the chat view: room selection, history load, filtered
// realtime append, guarded optimistic send. All list mutations funnel
// through this one owner.
type Controller struct {
	directory Directory
	store     *Store
	debounce  time.Duration

	mu        sync.Mutex
	selected  string
	sendState SendState
	scroll    ScrollFunc
	lastCount int
}

func NewController(directory Directory, store *Store, debounce time.Duration) *Controller {
	return &Controller{
		directory: directory,
		store:     store,
		debounce:  debounce,
	}
}

// SetScroll installs the auto-scroll hook.
func (c *Controller) SetScroll(fn ScrollFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scroll = fn
}

// Rooms lists the user's rooms. Degrades to empty on failure, never errors.
func (c *Controller) Rooms(ctx context.Context) []domain.Room {
	return c.directory.ListRooms(ctx)
}

// SelectedRoom returns the active room id, empty when none is open.
func (c *Controller) SelectedRoom() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// SelectRoom opens a room: drops the previous room's messages and loads
// history. If the user has moved on again before the fetch resolves, the
// store discards the stale result (see Store.LoadHistory).
func (c *Controller) SelectRoom(ctx context.Context, roomID string) error {
	c.mu.Lock()
	c.selected = roomID
	c.mu.Unlock()

	c.store.Reset(roomID)
	c.notifyScroll()

	err := c.store.LoadHistory(ctx, roomID)
	c.notifyScroll()
	return err
}

// Messages returns a snapshot of the active room's list.
func (c *Controller) Messages() []domain.Message {
	return c.store.Messages()
}

// HandleFrame receives every inbound realtime message and appends only
// the ones addressed to the active room. Frames for other rooms are
// silently ignored by this view; the transport already delivered them.
func (c *Controller) HandleFrame(msg domain.Message) {
	c.mu.Lock()
	selected := c.selected
	c.mu.Unlock()
	if selected == "" || msg.RoomID != selected {
		return
	}

	c.store.AppendRealtime(msg)
	c.notifyScroll()
}

// Send validates and dispatches one message: appends the optimistic entry
// and pushes the frame. Rejected sends touch neither the list nor the
// transport. The debounce window blocks a second send until it expires.
func (c *Controller) Send(content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyMessage
	}
	if errs := validator.ValidateMessageContent(content); errs.HasErrors() {
		return fmt.Errorf("%w: %s", ErrInvalidMessage, errs)
	}

	c.mu.Lock()
	if c.selected == "" {
		c.mu.Unlock()
		return ErrNoRoomSelected
	}
	if c.sendState == SendSending {
		c.mu.Unlock()
		return ErrSendInFlight
	}
	c.sendState = SendSending
	roomID := c.selected
	c.mu.Unlock()

	c.store.SendOptimistic(roomID, content)
	c.notifyScroll()

	time.AfterFunc(c.debounce, func() {
		c.mu.Lock()
		c.sendState = SendIdle
		c.mu.Unlock()
	})
	return nil
}

// SendState reports the current state of the send control.
func (c *Controller) SendState() SendState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sendState
}

func (c *Controller) notifyScroll() {
	count := c.store.Len()
	c.mu.Lock()
	changed := count != c.lastCount
	c.lastCount = count
	fn := c.scroll
	c.mu.Unlock()
	if changed && fn != nil {
		fn(count)
	}
}
