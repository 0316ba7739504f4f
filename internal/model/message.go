package model

// AIAuthorName is the display name attached to AI-authored messages. It is a
// fixed sentinel, distinct from any admissible human username.
const AIAuthorName = "Assistant IA"

// Message is one unit of chat content, human or AI-authored. A message is
// appended to the log exactly once and never mutated or deleted afterwards.
// The JSON field names are part of the wire protocol.
type Message struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
	IsAI      bool   `json:"isAI"`
}
