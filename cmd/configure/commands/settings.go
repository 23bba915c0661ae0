package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewSettingsCmd creates the settings command
func NewSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect or change daemon settings",
	}

	cmd.AddCommand(newSettingsShowCmd())
	cmd.AddCommand(newSettingsSetCmd())
	return cmd
}

func newSettingsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current settings document",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newDaemonClient()

			var resp struct {
				Settings            json.RawMessage `json:"settings"`
				ConfiguredProviders []string        `json:"configuredProviders"`
			}
			if err := client.call("GET", "/api/v1/settings", nil, &resp); err != nil {
				return err
			}

			var pretty map[string]any
			if err := json.Unmarshal(resp.Settings, &pretty); err != nil {
				return fmt.Errorf("invalid settings document: %w", err)
			}
			formatted, err := json.MarshalIndent(pretty, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(formatted))

			if len(resp.ConfiguredProviders) > 0 {
				fmt.Printf("\nProviders with stored API keys: %s\n", strings.Join(resp.ConfiguredProviders, ", "))
			} else {
				fmt.Println("\nNo API keys configured")
			}
			return nil
		},
	}
}

func newSettingsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <field> <value>",
		Short: "Set one top-level settings field",
		Long: "Set one top-level settings field. The value is parsed as JSON when possible,\n" +
			"otherwise treated as a string. Examples:\n" +
			"  settings set ankiDeck \"Reading\"\n" +
			"  settings set apiProvider anthropic\n" +
			"  settings set autoCapture '{\"enabled\":true,\"minDwellTime\":30000}'",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			field, value := args[0], args[1]

			var parsed json.RawMessage
			if json.Valid([]byte(value)) {
				parsed = json.RawMessage(value)
			} else {
				quoted, err := json.Marshal(value)
				if err != nil {
					return err
				}
				parsed = quoted
			}

			client := newDaemonClient()
			if err := client.call("PUT", "/api/v1/settings", map[string]json.RawMessage{field: parsed}, nil); err != nil {
				return err
			}
			fmt.Printf("Updated %s\n", field)
			return nil
		},
	}
}
