package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// providerKeyFields maps provider names to the settings field the
// daemon strips into its credential store.
var providerKeyFields = map[string]string{
	"openai":    "openaiApiKey",
	"anthropic": "anthropicApiKey",
	"custom":    "customApiKey",
}

// NewAPIKeyCmd creates the apikey command
func NewAPIKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage provider API keys",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <provider> <key>",
		Short: "Store an API key for a provider (empty key removes it)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := args[0]
			field, ok := providerKeyFields[provider]
			if !ok {
				return fmt.Errorf("unknown provider %q (openai, anthropic, custom)", provider)
			}

			key := ""
			if len(args) == 2 {
				key = args[1]
			}

			client := newDaemonClient()
			if err := client.call("PUT", "/api/v1/settings", map[string]string{field: key}, nil); err != nil {
				return err
			}
			if key == "" {
				fmt.Printf("Removed API key for %s\n", provider)
			} else {
				fmt.Printf("Stored API key for %s\n", provider)
			}
			return nil
		},
	})

	return cmd
}
