package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/okeefe/banter/internal/protocol"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Join a room interactively: incoming messages print, stdin lines send",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagRoom == "" {
				return fmt.Errorf("room is required (use -r or BANTER_ROOM)")
			}
			nick := flagNick
			if nick == "" {
				nick = "Anonymous"
			}

			wsURL := buildWSURL(flagServer, flagRoom, uuid.New().String(), nick)
			conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer conn.Close()
			fmt.Fprintf(os.Stderr, "joined room %q as %q (Ctrl+D to leave)\n", flagRoom, nick)

			done := make(chan struct{})
			go func() {
				defer close(done)
				for {
					var msg protocol.ServerMessage
					if err := conn.ReadJSON(&msg); err != nil {
						if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
							fmt.Fprintf(os.Stderr, "read error: %v\n", err)
						}
						return
					}
					printServerMessage(msg)
				}
			}()

			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				line := scanner.Text()
				if strings.TrimSpace(line) == "" {
					continue
				}
				err := conn.WriteJSON(protocol.ClientMessage{
					Type:    protocol.MsgSendMessage,
					Content: line,
				})
				if err != nil {
					return fmt.Errorf("send: %w", err)
				}
				select {
				case <-done:
					return nil
				default:
				}
			}

			conn.WriteMessage(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			)
			return scanner.Err()
		},
	}
}
