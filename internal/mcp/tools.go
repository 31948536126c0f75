package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/okeefe/banter/internal/protocol"
)

// prop is a shorthand for building a JSON Schema property.
func prop(typ, desc string) any {
	return map[string]any{
		"type":        typ,
		"description": desc,
	}
}

// RegisterTools adds all banter tools to the MCP server.
func RegisterTools(srv *mcpserver.MCPServer, rest *RESTClient, session *Session) {
	srv.AddTool(mcplib.Tool{
		Name:        "send_message",
		Description: "Send a chat message to the room. Everyone currently connected sees it, including you.",
		InputSchema: mcplib.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"text": prop("string", "The message text to send"),
			},
			Required: []string{"text"},
		},
	}, makeSendMessageHandler(session))

	srv.AddTool(mcplib.Tool{
		Name:        "get_history",
		Description: "Read recent messages from the room, including join/leave notices.",
		InputSchema: mcplib.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"latest": prop("number", "Get the last N events (default: 20)"),
			},
		},
	}, makeGetHistoryHandler(rest))

	srv.AddTool(mcplib.Tool{
		Name:        "list_rooms",
		Description: "List all active rooms on the server.",
		InputSchema: mcplib.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, makeListRoomsHandler(rest))

	srv.AddTool(mcplib.Tool{
		Name:        "room_info",
		Description: "Show the current room's name, participant count, and message count.",
		InputSchema: mcplib.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, makeRoomInfoHandler(rest))
}

func makeSendMessageHandler(session *Session) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		text := request.GetString("text", "")
		if strings.TrimSpace(text) == "" {
			return mcplib.NewToolResultError("text is required"), nil
		}

		if err := session.Send(text); err != nil {
			return mcplib.NewToolResultError(fmt.Sprintf("failed to send: %v", err)), nil
		}
		return mcplib.NewToolResultText("Message sent."), nil
	}
}

func makeGetHistoryHandler(rest *RESTClient) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		latest := request.GetInt("latest", 20)

		hist, err := rest.GetHistory(latest)
		if err != nil {
			return mcplib.NewToolResultError(fmt.Sprintf("failed to get history: %v", err)), nil
		}

		if hist.Count == 0 {
			return mcplib.NewToolResultText("No messages yet."), nil
		}

		var sb strings.Builder
		for _, evt := range hist.Messages {
			ts := time.UnixMilli(evt.Timestamp).Local().Format("15:04:05")
			switch evt.Kind {
			case protocol.EventJoin, protocol.EventLeave:
				fmt.Fprintf(&sb, "[%s] --- %s\n", ts, evt.Content)
			default:
				fmt.Fprintf(&sb, "[%s] %s: %s\n", ts, evt.Nickname, evt.Content)
			}
		}
		return mcplib.NewToolResultText(sb.String()), nil
	}
}

func makeListRoomsHandler(rest *RESTClient) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		list, err := rest.GetRooms()
		if err != nil {
			return mcplib.NewToolResultError(fmt.Sprintf("failed to list rooms: %v", err)), nil
		}

		if len(list.Rooms) == 0 {
			return mcplib.NewToolResultText("No active rooms."), nil
		}

		var sb strings.Builder
		for _, r := range list.Rooms {
			fmt.Fprintf(&sb, "%s (%s): %d online, %d messages\n", r.ID, r.Name, r.UserCount, r.MessageCount)
		}
		return mcplib.NewToolResultText(sb.String()), nil
	}
}

func makeRoomInfoHandler(rest *RESTClient) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		info, err := rest.GetRoomInfo()
		if err != nil {
			return mcplib.NewToolResultError(fmt.Sprintf("failed to get room info: %v", err)), nil
		}

		created := time.UnixMilli(info.CreatedAt).Local().Format("2006-01-02 15:04:05")
		return mcplib.NewToolResultText(fmt.Sprintf(
			"Room %s (%q): %d online, %d messages, created %s",
			info.ID, info.Name, info.UserCount, info.MessageCount, created,
		)), nil
	}
}
