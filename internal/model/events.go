package model

// EventType identifies the type of event on the client/relay channel
type EventType string

// Inbound events (client -> relay)
const (
	EventUserJoin       EventType = "user:join"
	EventMessageSend    EventType = "message:send"
	EventUserTyping     EventType = "user:typing"
	EventUserStopTyping EventType = "user:stop-typing"
)

// Outbound events (relay -> client). The typing events appear in both
// directions: inbound they carry no payload, outbound they carry the
// sender's username.
const (
	EventMessageHistory EventType = "message:history"
	EventMessageNew     EventType = "message:new"
	EventUsersList      EventType = "users:list"
	EventUserJoined     EventType = "user:joined"
	EventUserLeft       EventType = "user:left"
	EventError          EventType = "error"
)
