package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/okeefe/banter/internal/protocol"
)

func newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch a room for live messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flagRoom == "" {
				return fmt.Errorf("room is required (use -r or BANTER_ROOM)")
			}
			nick := flagNick
			if nick == "" {
				nick = "watcher"
			}

			wsURL := buildWSURL(flagServer, flagRoom, uuid.New().String(), nick)
			conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer conn.Close()
			fmt.Fprintf(os.Stderr, "watching room %q as %q\n", flagRoom, nick)

			interrupt := make(chan os.Signal, 1)
			signal.Notify(interrupt, os.Interrupt)

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

			select {
			case <-done:
				return nil
			case <-interrupt:
				fmt.Fprintln(os.Stderr, "\ndisconnecting...")
				return conn.WriteMessage(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				)
			}
		},
	}
}

// printServerMessage renders one server frame to stdout.
func printServerMessage(msg protocol.ServerMessage) {
	switch msg.Type {
	case protocol.MsgRoomState:
		var state protocol.RoomState
		if json.Unmarshal(msg.Data, &state) != nil {
			return
		}
		fmt.Printf("--- %s (%d online) ---\n", state.Name, state.UserCount)
		for _, evt := range state.Messages {
			fmt.Println(formatEvent(evt))
		}
	case protocol.MsgMessage:
		var evt protocol.ChatEvent
		if json.Unmarshal(msg.Data, &evt) != nil {
			return
		}
		fmt.Println(formatEvent(evt))
	case protocol.MsgUserCount:
		var uc protocol.UserCount
		if json.Unmarshal(msg.Data, &uc) != nil {
			return
		}
		fmt.Fprintf(os.Stderr, "(%d online)\n", uc.Count)
	}
}
