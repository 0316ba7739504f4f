package relay

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/chatrelay-go/internal/model"
	"github.com/mcoot/chatrelay-go/internal/services/history"
	"github.com/mcoot/chatrelay-go/internal/services/registry"
	"github.com/mcoot/chatrelay-go/internal/services/responder"
)

// eventQueueSize bounds the router's inbound queue
const eventQueueSize = 256

// Router is the single-writer event loop bridging client connections to the
// registry, message log, and AI responder. Every registry/log mutation
// happens on the Run goroutine, so no two connections can race to claim the
// same username and no two messages interleave during append. The only
// suspension point is the generation call, which runs in its own goroutine
// and re-enqueues its result.
type Router struct {
	sender    Sender
	registry  *registry.Service
	history   *history.Service
	responder *responder.Service
	events    chan inbound
	logger    *slog.Logger
}

// NewRouter creates a new Router
func NewRouter(
	sender Sender,
	reg *registry.Service,
	hist *history.Service,
	resp *responder.Service,
	logger *slog.Logger,
) *Router {
	return &Router{
		sender:    sender,
		registry:  reg,
		history:   hist,
		responder: resp,
		events:    make(chan inbound, eventQueueSize),
		logger:    logger.With(slog.String("component", "router")),
	}
}

// HandleFrame converts a decoded wire frame into a router event. Unknown
// events and malformed payloads are discarded; the connection stays up.
func (r *Router) HandleFrame(id model.ConnID, env Envelope) {
	switch env.Event {
	case model.EventUserJoin:
		username, err := decodeText(env)
		if err != nil {
			r.logger.Warn("discarding malformed join", slog.Any("error", err))
			return
		}
		r.enqueue(inbound{conn: id, kind: kindJoin, text: username})
	case model.EventMessageSend:
		text, err := decodeText(env)
		if err != nil {
			r.logger.Warn("discarding malformed message", slog.Any("error", err))
			return
		}
		r.enqueue(inbound{conn: id, kind: kindMessage, text: text})
	case model.EventUserTyping:
		r.enqueue(inbound{conn: id, kind: kindTyping})
	case model.EventUserStopTyping:
		r.enqueue(inbound{conn: id, kind: kindStopTyping})
	default:
		r.logger.Debug("unknown event discarded",
			slog.String("event", string(env.Event)),
			slog.String("conn_id", string(id)))
	}
}

// Disconnect enqueues registry cleanup for a dropped connection
func (r *Router) Disconnect(id model.ConnID) {
	r.enqueue(inbound{conn: id, kind: kindDisconnect})
}

func (r *Router) enqueue(ev inbound) {
	select {
	case r.events <- ev:
	default:
		r.logger.Warn("event dropped - router queue full",
			slog.String("conn_id", string(ev.conn)))
	}
}

// Run consumes events until ctx is cancelled. It must run on exactly one
// goroutine.
func (r *Router) Run(ctx context.Context) {
	r.logger.Info("router started")
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("router stopped")
			return
		case ev := <-r.events:
			r.dispatch(ctx, ev)
		}
	}
}

// dispatch handles a single event. A panic in a handler discards the event
// and keeps the loop alive; registry and log invariants hold because each
// mutation is a single storage call.
func (r *Router) dispatch(ctx context.Context, ev inbound) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("panic in event handler, event discarded",
				slog.Any("panic", rec),
				slog.String("conn_id", string(ev.conn)))
		}
	}()

	switch ev.kind {
	case kindJoin:
		r.handleJoin(ctx, ev)
	case kindMessage:
		r.handleMessage(ctx, ev)
	case kindTyping:
		r.handleTyping(ctx, ev, model.EventUserTyping)
	case kindStopTyping:
		r.handleTyping(ctx, ev, model.EventUserStopTyping)
	case kindDisconnect:
		r.handleDisconnect(ctx, ev)
	case kindAIReply:
		r.handleAIReply(ctx, ev)
	}
}

func (r *Router) handleJoin(ctx context.Context, ev inbound) {
	user, err := r.registry.Join(ctx, ev.conn, ev.text)
	if err != nil {
		r.sender.Send(ev.conn, model.EventError, reasonForError(err))
		return
	}

	// The joiner is seeded with the full log before anyone is told about it
	messages, err := r.history.All(ctx)
	if err != nil {
		r.logger.Error("failed to load history", slog.Any("error", err))
		messages = nil
	}
	if messages == nil {
		messages = []model.Message{}
	}
	r.sender.Send(ev.conn, model.EventMessageHistory, messages)

	r.broadcastUserList(ctx)
	r.sender.Broadcast(model.EventUserJoined, user.Username)
}

func (r *Router) handleMessage(ctx context.Context, ev inbound) {
	user, err := r.registry.Lookup(ctx, ev.conn)
	if errors.Is(err, model.ErrUserNotFound) {
		r.sender.Send(ev.conn, model.EventError, reasonForError(model.ErrNotJoined))
		return
	}
	if err != nil {
		r.logger.Error("failed to look up sender", slog.Any("error", err))
		return
	}

	msg, err := r.history.AppendUserMessage(ctx, user.Username, ev.text)
	if errors.Is(err, model.ErrEmptyMessage) {
		return // silently dropped
	}
	if errors.Is(err, model.ErrMessageTooLong) {
		r.sender.Send(ev.conn, model.EventError, reasonForError(err))
		return
	}
	if err != nil {
		r.logger.Error("failed to append message", slog.Any("error", err))
		return
	}

	// The triggering message is broadcast before any AI reply can exist
	r.sender.Broadcast(model.EventMessageNew, *msg)

	if responder.Mentioned(msg.Text) {
		r.spawnReply(ctx, *msg)
	}
}

// spawnReply assembles the context window synchronously (so it reflects the
// log at trigger time) and generates the reply off-loop. The finished text
// re-enters the loop as an event, so the append and broadcast are ordered
// with everything else; overlapping generations land in completion order.
func (r *Router) spawnReply(ctx context.Context, trigger model.Message) {
	recent, err := r.history.Recent(ctx, responder.ContextSize+1)
	if err != nil {
		r.logger.Error("failed to load context", slog.Any("error", err))
		recent = nil
	}
	// Exclude the triggering message itself; it is supplied separately
	if n := len(recent); n > 0 && recent[n-1].ID == trigger.ID {
		recent = recent[:n-1]
	}

	go func() {
		text := r.responder.Reply(ctx, recent, trigger.Text)
		select {
		case r.events <- inbound{kind: kindAIReply, text: text}:
		case <-ctx.Done():
		}
	}()
}

func (r *Router) handleAIReply(ctx context.Context, ev inbound) {
	msg, err := r.history.AppendAIMessage(ctx, ev.text)
	if err != nil {
		r.logger.Error("failed to append AI message", slog.Any("error", err))
		return
	}
	r.sender.Broadcast(model.EventMessageNew, *msg)
}

func (r *Router) handleTyping(ctx context.Context, ev inbound, event model.EventType) {
	user, err := r.registry.Lookup(ctx, ev.conn)
	if err != nil {
		return // typing from unjoined connections is silently ignored
	}
	r.sender.BroadcastExcept(ev.conn, event, user.Username)
}

func (r *Router) handleDisconnect(ctx context.Context, ev inbound) {
	user, err := r.registry.Leave(ctx, ev.conn)
	if err != nil {
		r.logger.Error("failed to remove user", slog.Any("error", err))
		return
	}
	if user == nil {
		return // never joined; nothing to announce
	}

	r.sender.Broadcast(model.EventUserLeft, user.Username)
	r.broadcastUserList(ctx)
}

func (r *Router) broadcastUserList(ctx context.Context) {
	users, err := r.registry.List(ctx)
	if err != nil {
		r.logger.Error("failed to list users", slog.Any("error", err))
		return
	}
	if users == nil {
		users = []model.User{}
	}
	r.sender.Broadcast(model.EventUsersList, users)
}
