// Package mcptool exposes the dispatcher and the threat analysis as MCP tools.
//
// Each tool is a struct with its dependencies injected through the
// constructor, a Definition returning the schema and a Handle for calls.
package mcptool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	contractx "github.com/tanpawarit/llm-honeypot-agents/agent/contract"
)

// DispatchTool handles the dispatch MCP tool.
type DispatchTool struct {
	dispatcher contractx.Dispatcher
}

func NewDispatchTool(dispatcher contractx.Dispatcher) *DispatchTool {
	return &DispatchTool{dispatcher: dispatcher}
}

func (t *DispatchTool) Definition() mcp.Tool {
	return mcp.NewTool("dispatch",
		mcp.WithDescription(
			"Send a task to one named specialist and return its result envelope.",
		),
		mcp.WithString("agent",
			mcp.Required(),
			mcp.Description("Specialist name, e.g. architect or security_analyst"),
		),
		mcp.WithString("operation",
			mcp.Description("Capability to run. Defaults to process."),
			mcp.Enum(string(contractx.OperationProcess), string(contractx.OperationAnalyze), string(contractx.OperationCollaborate)),
		),
		mcp.WithObject("data",
			mcp.Description("Task payload handed to the specialist"),
		),
	)
}

func (t *DispatchTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agent := strings.TrimSpace(req.GetString("agent", ""))
	if agent == "" {
		return mcp.NewToolResultError("agent is required"), nil
	}
	op, ok := contractx.ParseOperation(req.GetString("operation", ""))
	if !ok {
		return mcp.NewToolResultError("operation must be one of process, analyze, collaborate"), nil
	}
	payload, err := objectArg(req, "data")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	env := t.dispatcher.Run(ctx, contractx.Request{
		Handler:   contractx.HandlerName(agent),
		Operation: op,
		Payload:   payload,
	})
	text, err := marshal(env)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !env.OK() {
		return mcp.NewToolResultError(text), nil
	}
	return mcp.NewToolResultText(text), nil
}

// AnalyzeTool handles the analyze_threat MCP tool.
type AnalyzeTool struct {
	analyzer contractx.Analyzer
}

func NewAnalyzeTool(analyzer contractx.Analyzer) *AnalyzeTool {
	return &AnalyzeTool{analyzer: analyzer}
}

func (t *AnalyzeTool) Definition() mcp.Tool {
	return mcp.NewTool("analyze_threat",
		mcp.WithDescription(
			"Run the security assessment now and queue a deeper data science pass in the background.",
		),
		mcp.WithObject("data",
			mcp.Required(),
			mcp.Description("Observed indicators, e.g. {\"indicator\": \"port-scan\"}"),
		),
	)
}

func (t *AnalyzeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	payload, err := objectArg(req, "data")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res := t.analyzer.AnalyzeThreat(ctx, payload)
	text, err := marshal(res)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

// ListHandlersTool handles the list_handlers MCP tool.
type ListHandlersTool struct {
	handlers contractx.Lookup
}

func NewListHandlersTool(handlers contractx.Lookup) *ListHandlersTool {
	return &ListHandlersTool{handlers: handlers}
}

func (t *ListHandlersTool) Definition() mcp.Tool {
	return mcp.NewTool("list_handlers",
		mcp.WithDescription("List the registered specialists."),
	)
}

func (t *ListHandlersTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var sb strings.Builder
	sb.WriteString("## Specialists\n\n")
	for _, name := range t.handlers.Names() {
		sb.WriteString(fmt.Sprintf("- %s\n", name))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// objectArg returns an empty payload when key is absent.
func objectArg(req mcp.CallToolRequest, key string) (contractx.TaskPayload, error) {
	raw, ok := req.GetArguments()[key]
	if !ok || raw == nil {
		return contractx.TaskPayload{}, nil
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s must be an object", key)
	}
	return contractx.TaskPayload(obj), nil
}

func marshal(v any) (string, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(raw), nil
}
