package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sandevgo/campusbot/internal/core"
	"github.com/sandevgo/campusbot/internal/service/chat"
	"github.com/sandevgo/campusbot/pkg/log"
)

const defaultUser = "mcp"

type Assistant interface {
	Chat(ctx context.Context, user, message string) (chat.Reply, error)
	History(user string) []core.Turn
	Clear(user string)
	Health(ctx context.Context, cooldown time.Duration) chat.Health
}

// Server exposes the assistant as MCP tools over stdio.
type Server struct {
	mcp       *server.MCPServer
	assistant Assistant
	cooldown  time.Duration
	in        io.Reader
	out       io.Writer
}

func NewServer(assistant Assistant, cooldown time.Duration, in io.Reader, out io.Writer) *Server {
	s := &Server{
		assistant: assistant,
		cooldown:  cooldown,
		in:        in,
		out:       out,
	}

	s.mcp = server.NewMCPServer(
		strings.ToLower(core.CampusName),
		core.CampusVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("Answers questions about the student's class schedule, tasks and announcements."),
	)

	userArg := mcp.WithString("user", mcp.Description("Conversation key; defaults to \"mcp\""))

	s.mcp.AddTool(mcp.NewTool("ask",
		mcp.WithDescription("Ask CampusBot about schedules, tasks or announcements"),
		mcp.WithString("message", mcp.Required(), mcp.Description("The question")),
		userArg,
	), s.handleAsk)

	s.mcp.AddTool(mcp.NewTool("history",
		mcp.WithDescription("Return the recent conversation turns"),
		userArg,
	), s.handleHistory)

	s.mcp.AddTool(mcp.NewTool("clear",
		mcp.WithDescription("Forget the conversation"),
		userArg,
	), s.handleClear)

	s.mcp.AddTool(mcp.NewTool("health",
		mcp.WithDescription("Report provider and data service status"),
	), s.handleHealth)

	return s
}

func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting mcp stdio server")
	err := server.NewStdioServer(s.mcp).Listen(ctx, s.in, s.out)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("mcp stdio: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return nil
}

func user(req mcp.CallToolRequest) string {
	if u := strings.TrimSpace(req.GetString("user", "")); u != "" {
		return u
	}
	return defaultUser
}

func (s *Server) handleAsk(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := req.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	reply, err := s.assistant.Chat(ctx, user(req), message)
	if errors.Is(err, chat.ErrEmptyMessage) {
		return mcp.NewToolResultError("Message is required"), nil
	}
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Msg("mcp ask failed")
		return mcp.NewToolResultError("CampusBot could not answer right now"), nil
	}
	return mcp.NewToolResultText(reply.Response), nil
}

func (s *Server) handleHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.assistant.History(user(req)))
}

func (s *Server) handleClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.assistant.Clear(user(req))
	return mcp.NewToolResultText("Chat history cleared"), nil
}

func (s *Server) handleHealth(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.assistant.Health(ctx, s.cooldown))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
