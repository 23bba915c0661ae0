package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatusCmd creates the status command
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check daemon and Anki connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newDaemonClient()

			var health struct {
				Status string            `json:"status"`
				Checks map[string]string `json:"checks"`
			}
			// /healthz replies without the envelope.
			resp, err := client.httpClient.Get(client.baseURL + "/healthz?mode=extended")
			if err != nil {
				return fmt.Errorf("cannot reach daemon at %s: %w", client.baseURL, err)
			}
			defer resp.Body.Close()
			if err := decodeJSON(resp.Body, &health); err != nil {
				return fmt.Errorf("invalid health response: %w", err)
			}

			fmt.Printf("Daemon:  %s (%s)\n", health.Status, client.baseURL)
			for name, state := range health.Checks {
				fmt.Printf("%-8s %s\n", name+":", state)
			}

			var conn struct {
				Connected bool `json:"connected"`
			}
			if err := client.call("POST", "/api/v1/anki/test", nil, &conn); err != nil {
				return err
			}
			if conn.Connected {
				fmt.Println("AnkiConnect protocol check passed")
			} else {
				fmt.Println("AnkiConnect protocol check failed (is Anki running?)")
			}
			return nil
		},
	}
}
