package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var cfg *Config

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "chatrelay",
		Short: "Terminal client for the collaborative chat relay",
		Long: `chatrelay is a terminal client for the collaborative chat relay.

It joins the chat under a username, sends stdin lines as messages, and prints
incoming messages, presence changes, and typing notifications as they arrive.
Mention @chatbot in a message to get an AI reply.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Relay URL (env: CHATRELAY_SERVER)")

	// Add subcommands
	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
