package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okeefe/banter/internal/mcp"
)

func newMCPServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "mcp-serve",
		Short:  "Start the MCP stdio server for agent access to a room",
		Long:   `Runs a Model Context Protocol (MCP) server over stdio. An agent connects to this as a subprocess and sits in a room through tools (send_message, get_history, list_rooms, room_info).`,
		Hidden: true, // Not typically called by users directly
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagServer == "" {
				return fmt.Errorf("server URL is required (use --server or .banter config)")
			}
			if flagRoom == "" {
				return fmt.Errorf("room is required (use --room or .banter config)")
			}
			nick := flagNick
			if nick == "" {
				nick = "agent"
			}

			return mcp.Serve(mcp.Config{
				ServerURL: flagServer,
				Room:      flagRoom,
				Nick:      nick,
			})
		},
	}
	return cmd
}
