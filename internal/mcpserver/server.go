// Package mcpserver exposes the dispatcher's tools over the Model Context
// Protocol so that editor agents can seed projects over stdio.
package mcpserver

import (
	"context"
	"errors"

	"github.com/danmuck/seedctl/internal/dispatch"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

const (
	serverName    = "seedctl"
	serverVersion = "0.1.0"
)

var ErrNilServer = errors.New("mcp server is not configured")

type Server struct {
	dispatcher *dispatch.Dispatcher
	mcpServer  *mcp.Server
}

// New registers the seed, detect_project_type, and list_seeders tools.
func New(d *dispatch.Dispatcher) *Server {
	if d == nil {
		d = dispatch.New(dispatch.Options{})
	}
	s := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	descriptions := make(map[string]string)
	for _, tool := range d.Tools() {
		descriptions[tool.Name] = tool.Description
	}

	mcp.AddTool(s, &mcp.Tool{Name: dispatch.ToolSeed, Description: descriptions[dispatch.ToolSeed]}, seedHandler(d))
	mcp.AddTool(s, &mcp.Tool{Name: dispatch.ToolDetect, Description: descriptions[dispatch.ToolDetect]}, detectHandler(d))
	mcp.AddTool(s, &mcp.Tool{Name: dispatch.ToolList, Description: descriptions[dispatch.ToolList]}, listHandler(d))

	return &Server{dispatcher: d, mcpServer: s}
}

// Run serves over stdin/stdout until ctx ends or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return ErrNilServer
	}
	log.Info().Str("server", serverName).Str("version", serverVersion).Msg("mcp: serving")
	err := s.mcpServer.Run(ctx, transport)
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

func seedHandler(d *dispatch.Dispatcher) mcp.ToolHandlerFor[dispatch.SeedRequest, dispatch.SeedResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input dispatch.SeedRequest) (*mcp.CallToolResult, dispatch.SeedResult, error) {
		return nil, d.Seed(ctx, input), nil
	}
}

func detectHandler(d *dispatch.Dispatcher) mcp.ToolHandlerFor[dispatch.PathRequest, dispatch.DetectResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input dispatch.PathRequest) (*mcp.CallToolResult, dispatch.DetectResult, error) {
		return nil, d.DetectProjectType(ctx, input), nil
	}
}

func listHandler(d *dispatch.Dispatcher) mcp.ToolHandlerFor[dispatch.PathRequest, dispatch.ListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input dispatch.PathRequest) (*mcp.CallToolResult, dispatch.ListResult, error) {
		return nil, d.ListSeeders(ctx, input), nil
	}
}
