package specialist

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/llm-honeypot-agents/agent/contract"
)

// compileReasoningGraph renders the instruction and serialized payload into a
// system/user pair and runs them through the chat model.
func compileReasoningGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	graphName string,
) (compose.Runnable[map[string]any, *schema.Message], error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{instruction}"),
		schema.UserMessage("{input}"),
	)

	graph := compose.NewGraph[map[string]any, *schema.Message]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add reasoning prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add reasoning model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add reasoning edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add reasoning edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add reasoning edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName(graphName))
	if err != nil {
		return nil, fmt.Errorf("compile reasoning graph: %w", err)
	}
	return runner, nil
}

// graphReasoner adapts a compiled reasoning graph to contract.Reasoner.
type graphReasoner struct {
	runner compose.Runnable[map[string]any, *schema.Message]
}

var _ contractx.Reasoner = (*graphReasoner)(nil)

func newGraphReasoner(ctx context.Context, chatModel einomodel.BaseChatModel, name contractx.HandlerName) (*graphReasoner, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("%w: chat model is required for handler=%s", contractx.ErrConfiguration, name)
	}
	runner, err := compileReasoningGraph(ctx, chatModel, "specialist."+string(name))
	if err != nil {
		return nil, fmt.Errorf("%w: handler=%s: %v", contractx.ErrConfiguration, name, err)
	}
	return &graphReasoner{runner: runner}, nil
}

func (r *graphReasoner) Reason(ctx context.Context, instruction string, input string) (string, error) {
	msg, err := r.runner.Invoke(ctx, map[string]any{
		"instruction": instruction,
		"input":       input,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", contractx.ErrRemoteService, err)
	}
	if msg == nil {
		return "", fmt.Errorf("%w: empty model response", contractx.ErrSchemaViolation)
	}
	content := strings.TrimSpace(msg.Content)
	if content == "" {
		return "", fmt.Errorf("%w: model returned no content", contractx.ErrSchemaViolation)
	}
	return content, nil
}
