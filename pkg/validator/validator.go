package validator

import (
	"fmt"
	"sort"
	"strings"
)

// MaxMessageLength matches the realtime transport's frame size limit.
const MaxMessageLength = 4000

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

func (v ValidationErrors) String() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, v[f]))
	}
	return strings.Join(parts, "; ")
}

func ValidateMessageContent(content string) ValidationErrors {
	errs := make(ValidationErrors)

	content = strings.TrimSpace(content)
	if content == "" {
		errs.Add("content", "Message content is required")
	} else if len(content) > MaxMessageLength {
		errs.Add("content", fmt.Sprintf("Message must be at most %d characters", MaxMessageLength))
	}

	return errs
}

func ValidateDirectRoom(otherUserID string) ValidationErrors {
	errs := make(ValidationErrors)

	if strings.TrimSpace(otherUserID) == "" {
		errs.Add("other_user_id", "User id is required")
	}

	return errs
}

func ValidateHangoutRoom(hangoutID, name string) ValidationErrors {
	errs := make(ValidationErrors)

	if strings.TrimSpace(hangoutID) == "" {
		errs.Add("hangout_id", "Hangout id is required")
	}

	name = strings.TrimSpace(name)
	if len(name) > 100 {
		errs.Add("name", "Room name is too long")
	}

	return errs
}
