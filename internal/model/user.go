package model

// ConnID is the opaque identity of a single client connection, assigned at
// connect time. A reconnecting client receives a fresh ConnID; identities are
// never reused across the life of the process.
type ConnID string

// User represents one connected chat participant. Exactly one User exists per
// joined connection, and usernames are unique (case-insensitively) among
// currently connected users.
type User struct {
	ID       ConnID `json:"id"`
	Username string `json:"username"`
}
