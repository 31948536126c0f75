package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newHistoryCmd() *cobra.Command {
	var (
		n      int
		format string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent messages from a room",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagRoom == "" {
				return fmt.Errorf("room is required (use -r or BANTER_ROOM)")
			}

			hist, err := getHistory(flagServer, flagRoom, n)
			if err != nil {
				return err
			}

			if format == "json" {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(hist)
			}

			if hist.Count == 0 {
				fmt.Println("no messages")
				return nil
			}
			for _, evt := range hist.Messages {
				fmt.Println(formatEvent(evt))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&n, "latest", 50, "number of recent messages to show")
	cmd.Flags().StringVar(&format, "format", "plain", "output format: plain, json")

	return cmd
}
