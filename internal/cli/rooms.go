package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newRoomsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rooms",
		Short: "List active rooms on the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := getRooms(flagServer)
			if err != nil {
				return err
			}

			if len(list.Rooms) == 0 {
				fmt.Println("no active rooms")
				return nil
			}

			fmt.Printf("%-12s %-24s %6s %6s %10s\n", "ID", "NAME", "USERS", "MSGS", "CREATED")
			for _, r := range list.Rooms {
				created := time.UnixMilli(r.CreatedAt).Local().Format("15:04:05")
				fmt.Printf("%-12s %-24s %6d %6d %10s\n", r.ID, r.Name, r.UserCount, r.MessageCount, created)
			}
			return nil
		},
	}
}
