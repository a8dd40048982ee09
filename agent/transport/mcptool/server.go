package mcptool

import (
	"context"
	"io"

	"github.com/mark3labs/mcp-go/server"
	contractx "github.com/tanpawarit/llm-honeypot-agents/agent/contract"
)

const (
	serverName    = "llm-honeypot-agents"
	serverVersion = "1.0.0"
)

func NewServer(dispatcher contractx.Dispatcher, analyzer contractx.Analyzer, handlers contractx.Lookup) *server.MCPServer {
	s := server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions("Route security tasks to specialist handlers. Use analyze_threat for indicators, dispatch for a single specialist."),
	)

	dispatchTool := NewDispatchTool(dispatcher)
	s.AddTool(dispatchTool.Definition(), dispatchTool.Handle)

	analyzeTool := NewAnalyzeTool(analyzer)
	s.AddTool(analyzeTool.Definition(), analyzeTool.Handle)

	listTool := NewListHandlersTool(handlers)
	s.AddTool(listTool.Definition(), listTool.Handle)

	return s
}

// Serve speaks MCP over the given streams until ctx ends or stdin closes.
func Serve(ctx context.Context, s *server.MCPServer, stdin io.Reader, stdout io.Writer) error {
	return server.NewStdioServer(s).Listen(ctx, stdin, stdout)
}
