package dispatchnode

import (
	"context"
	"fmt"

	contractx "github.com/tanpawarit/llm-honeypot-agents/agent/contract"
)

func ExecuteHandler(ctx context.Context, in *GraphState) (*GraphState, error) {
	if in.done() {
		return in, nil
	}
	if in.Target == nil {
		in.fail(fmt.Errorf("%w: agent %q", contractx.ErrNotFound, in.Handler))
		return in, nil
	}

	var env contractx.Envelope
	switch in.Operation {
	case contractx.OperationAnalyze:
		env = in.Target.Analyze(ctx, in.Payload)
	case contractx.OperationCollaborate:
		env = in.Target.Collaborate(ctx, in.Payload)
	default:
		env = in.Target.Process(ctx, in.Payload)
	}
	in.Envelope = &env
	return in, nil
}
