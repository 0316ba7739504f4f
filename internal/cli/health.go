package cli

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check relay health",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := &http.Client{Timeout: 5 * time.Second}

			resp, err := client.Get(cfg.ServerURL + "/healthz")
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}
			defer func() { _ = resp.Body.Close() }()

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("reading health response: %w", err)
			}

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("relay unhealthy: HTTP %d: %s", resp.StatusCode, string(body))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", string(body))
			return nil
		},
	}
}
