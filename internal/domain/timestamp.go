package domain

import (
	"strconv"
	"strings"
	"time"
)

// Timestamp holds a created_at/updated_at wire value verbatim. The server
// emits its own encoding and optimistic messages carry client epoch millis,
// with clocks that may disagree, so the value is opaque: it is displayed
// and compared for equality, never parsed as one fixed format and never
// used to re-sort a message list.
type Timestamp struct {
	raw string
}

// Now returns a timestamp for locally-constructed messages, as epoch
// milliseconds.
func Now() Timestamp {
	return Timestamp{raw: strconv.FormatInt(time.Now().UnixMilli(), 10)}
}

func (t Timestamp) IsZero() bool {
	return t.raw == "" || t.raw == "null"
}

// String renders the value for display, without JSON quoting.
func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return strings.Trim(t.raw, `"`)
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		t.raw = ""
		return nil
	}
	t.raw = s
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(t.raw), nil
}
