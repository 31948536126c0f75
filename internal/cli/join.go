package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newJoinCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "join <url> [room] [nick]",
		Short: "Connect to a banter server and save a .banter config",
		Long: `Connects to a banter server, verifies it's reachable, and writes a
.banter config file in the current directory so all future commands
just work.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			serverURL := ""
			room := ""
			nick := ""

			if len(args) >= 1 {
				serverURL = args[0]
			}
			if len(args) >= 2 {
				room = args[1]
			}
			if len(args) >= 3 {
				nick = args[2]
			}

			return runJoin(serverURL, room, nick)
		},
	}
	return cmd
}

func runJoin(serverURL, room, nick string) error {
	reader := bufio.NewReader(os.Stdin)

	if serverURL == "" {
		fmt.Print("Server URL: ")
		line, _ := reader.ReadString('\n')
		serverURL = strings.TrimSpace(line)
	}
	if serverURL == "" {
		return fmt.Errorf("server URL is required")
	}
	serverURL = strings.TrimRight(serverURL, "/")

	fmt.Printf("Connecting to %s ...\n", serverURL)
	health, err := getHealth(serverURL)
	if err != nil {
		return fmt.Errorf("could not reach server: %w", err)
	}
	fmt.Printf("Connected! Server is %s (uptime: %s, %d rooms)\n", health.Status, health.Uptime, health.Rooms)

	if room == "" {
		fmt.Print("Room id (e.g. A1B2C3): ")
		line, _ := reader.ReadString('\n')
		room = strings.TrimSpace(line)
	}
	if room == "" {
		return fmt.Errorf("room id is required")
	}

	if nick == "" {
		fmt.Print("Your nickname (e.g. alice): ")
		line, _ := reader.ReadString('\n')
		nick = strings.TrimSpace(line)
	}
	if nick == "" {
		return fmt.Errorf("nickname is required")
	}

	cfg := Config{Server: serverURL, Room: room, Nick: nick}
	if err := saveConfig(cfg); err != nil {
		return fmt.Errorf("write %s: %w", configFileName, err)
	}
	fmt.Printf("Wrote %s\n", configFileName)

	fmt.Println()
	fmt.Printf("  Server: %s\n", serverURL)
	fmt.Printf("  Room:   %s\n", room)
	fmt.Printf("  Nick:   %s\n", nick)
	fmt.Println()
	fmt.Println("  Quick commands:")
	fmt.Println("    banter chat")
	fmt.Println("    banter history --latest 20")
	fmt.Println("    banter watch")
	fmt.Println()

	return nil
}
