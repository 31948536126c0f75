// Package cli implements the banter command-line client.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagServer string
	flagRoom   string
	flagNick   string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "banter",
		Short: "CLI for banter - ephemeral real-time group chat",
	}

	// Resolve defaults: flags > env vars > .banter config > hardcoded defaults.
	defaultServer := "http://localhost:8080"
	defaultRoom := ""
	defaultNick := ""

	if cfg := loadConfig(); cfg != nil {
		if cfg.Server != "" {
			defaultServer = cfg.Server
		}
		if cfg.Room != "" {
			defaultRoom = cfg.Room
		}
		if cfg.Nick != "" {
			defaultNick = cfg.Nick
		}
	}

	root.PersistentFlags().StringVarP(&flagServer, "server", "s", envOrDefault("BANTER_SERVER", defaultServer), "server URL")
	root.PersistentFlags().StringVarP(&flagRoom, "room", "r", envOrDefault("BANTER_ROOM", defaultRoom), "room id")
	root.PersistentFlags().StringVarP(&flagNick, "nick", "n", envOrDefault("BANTER_NICK", defaultNick), "nickname")

	root.AddCommand(
		newRoomsCmd(),
		newStatusCmd(),
		newHistoryCmd(),
		newWatchCmd(),
		newChatCmd(),
		newJoinCmd(),
		newMCPServeCmd(),
	)

	return root
}

// Execute runs the CLI.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
