package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	moodtrend "github.com/unowned-ai/moodtrend/pkg"
	"github.com/unowned-ai/moodtrend/pkg/checkin"
	"github.com/unowned-ai/moodtrend/pkg/config"
	"github.com/unowned-ai/moodtrend/pkg/logging"
	"github.com/unowned-ai/moodtrend/pkg/records"
)

type MoodtrendMCPServer struct {
	mcpServer *server.MCPServer
	store     records.Store
	svc       *checkin.Service
	log       *logging.Logger
}

// NewMoodtrendMCPServer opens the store described by cfg and wraps it in
// an MCP server with no tools registered yet.
func NewMoodtrendMCPServer(ctx context.Context, cfg config.Config, log *logging.Logger) (*MoodtrendMCPServer, error) {
	if log == nil {
		log = logging.Nop()
	}
	store, err := records.Open(ctx, cfg.StoreOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.ResolvedBackend(), err)
	}
	return NewWithService(checkin.NewService(store, log), store, log), nil
}

// NewWithService builds the server around an existing service. store may
// be nil when the caller owns its lifecycle.
func NewWithService(svc *checkin.Service, store records.Store, log *logging.Logger) *MoodtrendMCPServer {
	s := server.NewMCPServer(
		"Moodtrend MCP Server",
		moodtrend.Version,
		server.WithResourceCapabilities(true, true),
		server.WithLogging(),
		server.WithRecovery(),
	)
	return &MoodtrendMCPServer{mcpServer: s, store: store, svc: svc, log: log}
}

// RegisterAllTools registers every moodtrend tool and returns their names.
func (s *MoodtrendMCPServer) RegisterAllTools() []string {
	RegisterPingTool(s.mcpServer)
	RegisterRecordMoodTool(s.mcpServer, s.svc)
	RegisterListMoodsTool(s.mcpServer, s.svc)
	RegisterAnalyzeMoodTool(s.mcpServer, s.svc)
	RegisterTherapySuggestionsTool(s.mcpServer, s.svc)
	RegisterMoodForecastTool(s.mcpServer, s.svc)
	RegisterMoodInsightsTool(s.mcpServer, s.svc)
	RegisterListAlertsTool(s.mcpServer, s.svc)
	RegisterDismissAlertTool(s.mcpServer, s.svc)
	RegisterReviewSubjectsTool(s.mcpServer, s.svc)
	RegisterResetSubjectTool(s.mcpServer, s.svc)
	RegisterScheduleAppointmentTool(s.mcpServer, s.svc)
	RegisterListAppointmentsTool(s.mcpServer, s.svc)
	RegisterSetAppointmentStatusTool(s.mcpServer, s.svc)
	return ToolNames
}

// Start runs the stdio event loop until stdin closes.
func (s *MoodtrendMCPServer) Start() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *MoodtrendMCPServer) Service() *checkin.Service {
	return s.svc
}

// MCPRawServer exposes the raw mcp-go server.
func (s *MoodtrendMCPServer) MCPRawServer() *server.MCPServer {
	return s.mcpServer
}

func (s *MoodtrendMCPServer) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}
