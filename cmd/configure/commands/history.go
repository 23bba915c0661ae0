package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ambientanki/ambientd/internal/models"
)

// NewHistoryCmd creates the history command
func NewHistoryCmd() *cobra.Command {
	var limit int
	var clear bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear capture history",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newDaemonClient()

			if clear {
				if err := client.call("DELETE", "/api/v1/history", nil, nil); err != nil {
					return err
				}
				fmt.Println("Capture history cleared")
				return nil
			}

			var resp struct {
				Entries []models.CaptureHistoryEntry `json:"entries"`
				Total   int                          `json:"total"`
			}
			path := fmt.Sprintf("/api/v1/history?limit=%d", limit)
			if err := client.call("GET", path, nil, &resp); err != nil {
				return err
			}

			if resp.Total == 0 {
				fmt.Println("No captures recorded")
				return nil
			}

			fmt.Printf("Showing %d of %d captures:\n\n", len(resp.Entries), resp.Total)
			for _, entry := range resp.Entries {
				fmt.Printf("%s  %s\n", entry.CapturedAt.Local().Format(time.DateTime), entry.Title)
				fmt.Printf("    %s\n", entry.URL)
				if entry.Submission != nil {
					fmt.Printf("    %d cards (%d added, %d rejected)\n",
						entry.FlashcardCount, entry.Submission.Success, entry.Submission.Failed)
				} else {
					fmt.Printf("    %d cards\n", entry.FlashcardCount)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries to show")
	cmd.Flags().BoolVar(&clear, "clear", false, "Delete all capture history")
	return cmd
}
