package cli

import (
	"fmt"
	"net/url"
	"os"
)

// Config holds CLI configuration
type Config struct {
	// ServerURL is the relay's base HTTP URL
	ServerURL string
}

// DefaultConfig returns configuration from the environment with defaults
func DefaultConfig() *Config {
	serverURL := os.Getenv("CHATRELAY_SERVER")
	if serverURL == "" {
		serverURL = "http://localhost:3001"
	}
	return &Config{ServerURL: serverURL}
}

// wsURL derives the WebSocket endpoint from the server URL
func (c *Config) wsURL() (string, error) {
	parsed, err := url.Parse(c.ServerURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}

	switch parsed.Scheme {
	case "http":
		parsed.Scheme = "ws"
	case "https":
		parsed.Scheme = "wss"
	case "ws", "wss":
		// already a websocket URL
	default:
		return "", fmt.Errorf("unsupported scheme %q in server URL", parsed.Scheme)
	}

	parsed.Path = "/ws"
	return parsed.String(), nil
}
