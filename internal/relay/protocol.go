package relay

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mcoot/chatrelay-go/internal/model"
)

// Envelope is the JSON frame exchanged over the socket in both directions.
// Inbound frames with no payload (the typing events) omit data.
type Envelope struct {
	Event model.EventType `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// encodeEvent builds the wire bytes for an outbound event
func encodeEvent(event model.EventType, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", event, err)
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}

// decodeText extracts a string payload from an inbound frame
func decodeText(env Envelope) (string, error) {
	var text string
	if err := json.Unmarshal(env.Data, &text); err != nil {
		return "", fmt.Errorf("decoding %s payload: %w", env.Event, err)
	}
	return text, nil
}

// reasonForError maps a validation error to the client-facing reason string.
// Anything unrecognized is reported generically so internal detail never
// leaks to clients.
func reasonForError(err error) string {
	switch {
	case errors.Is(err, model.ErrEmptyUsername):
		return "Username cannot be empty"
	case errors.Is(err, model.ErrUsernameTooLong):
		return "Username too long (max 20 characters)"
	case errors.Is(err, model.ErrUsernameTaken):
		return "Username already taken"
	case errors.Is(err, model.ErrNotJoined):
		return "You must join with a username first"
	case errors.Is(err, model.ErrMessageTooLong):
		return "Message too long (max 1000 characters)"
	default:
		return "Internal error"
	}
}
