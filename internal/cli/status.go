package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server health and room totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			health, err := getHealth(flagServer)
			if err != nil {
				return fmt.Errorf("server unreachable: %w", err)
			}

			fmt.Printf("Server:    %s\n", flagServer)
			fmt.Printf("Status:    %s\n", health.Status)
			fmt.Printf("Uptime:    %s\n", health.Uptime)
			fmt.Printf("Rooms:     %d\n", health.Rooms)
			fmt.Printf("Online:    %d\n", health.Users)
			fmt.Printf("Messages:  %d\n", health.Messages)

			// When a room is configured, show where the user would land.
			if flagRoom != "" {
				info, err := getRoomInfo(flagServer, flagRoom)
				if err != nil {
					fmt.Printf("\nRoom %s: not active yet\n", flagRoom)
					return nil
				}
				fmt.Printf("\nRoom %s (%s): %d online, %d messages\n",
					info.ID, info.Name, info.UserCount, info.MessageCount)
			}
			return nil
		},
	}
}
