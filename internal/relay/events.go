package relay

import "github.com/mcoot/chatrelay-go/internal/model"

// inboundKind discriminates the events processed by the router loop
type inboundKind int

const (
	kindJoin inboundKind = iota
	kindMessage
	kindTyping
	kindStopTyping
	kindDisconnect
	kindAIReply
)

// inbound is one unit of work for the router loop. Exactly one goroutine
// consumes these, which serializes every registry and log mutation.
type inbound struct {
	conn model.ConnID
	kind inboundKind
	// text carries the username for kindJoin, the message body for
	// kindMessage, and the generated reply for kindAIReply
	text string
}
