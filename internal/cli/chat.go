package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/mcoot/chatrelay-go/internal/model"
	"github.com/mcoot/chatrelay-go/internal/relay"
)

func newChatCmd() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Join the chat and relay stdin lines as messages",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runChat(cmd, username)
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username to join with (required)")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func runChat(cmd *cobra.Command, username string) error {
	wsURL, err := cfg.wsURL()
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", wsURL, err)
	}
	defer func() { _ = conn.Close() }()

	if err := writeEvent(conn, model.EventUserJoin, username); err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	// Receive loop; ends when the server closes the connection
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var env relay.Envelope
			if err := conn.ReadJSON(&env); err != nil {
				return
			}
			printEvent(out, env)
		}
	}()

	// Relay stdin lines until EOF
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		if err := writeEvent(conn, model.EventMessageSend, text); err != nil {
			return err
		}
	}

	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	<-done
	return scanner.Err()
}

func writeEvent(conn *websocket.Conn, event model.EventType, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", event, err)
	}
	if err := conn.WriteJSON(relay.Envelope{Event: event, Data: raw}); err != nil {
		return fmt.Errorf("sending %s: %w", event, err)
	}
	return nil
}

// printEvent renders one incoming event as a line of output
func printEvent(out io.Writer, env relay.Envelope) {
	switch env.Event {
	case model.EventMessageHistory:
		var messages []model.Message
		if json.Unmarshal(env.Data, &messages) != nil {
			return
		}
		for _, msg := range messages {
			printMessage(out, msg)
		}

	case model.EventMessageNew:
		var msg model.Message
		if json.Unmarshal(env.Data, &msg) != nil {
			return
		}
		printMessage(out, msg)

	case model.EventUsersList:
		var users []model.User
		if json.Unmarshal(env.Data, &users) != nil {
			return
		}
		names := make([]string, 0, len(users))
		for _, user := range users {
			names = append(names, user.Username)
		}
		fmt.Fprintf(out, "* online: %s\n", strings.Join(names, ", "))

	case model.EventUserJoined:
		fmt.Fprintf(out, "* %s joined\n", decodeString(env.Data))

	case model.EventUserLeft:
		fmt.Fprintf(out, "* %s left\n", decodeString(env.Data))

	case model.EventUserTyping:
		fmt.Fprintf(out, "* %s is typing...\n", decodeString(env.Data))

	case model.EventUserStopTyping:
		// quiet; only the start of typing is worth a line

	case model.EventError:
		fmt.Fprintf(out, "! error: %s\n", decodeString(env.Data))
	}
}

func printMessage(out io.Writer, msg model.Message) {
	if msg.IsAI {
		fmt.Fprintf(out, "[AI] %s: %s\n", msg.Username, msg.Text)
		return
	}
	fmt.Fprintf(out, "%s: %s\n", msg.Username, msg.Text)
}

func decodeString(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}
