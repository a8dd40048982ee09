package orchestratornode

import (
	"context"

	contractx "github.com/tanpawarit/llm-honeypot-agents/agent/contract"
)

// RunStageOne blocks on the security assessment. A failed envelope is kept as
// is; it is still handed to stage two.
func RunStageOne(ctx context.Context, in *GraphState, dispatcher contractx.Dispatcher) (*GraphState, error) {
	in.Initial = dispatcher.Invoke(ctx, StageOneHandler, in.Payload)
	return in, nil
}
