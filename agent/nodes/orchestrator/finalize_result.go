package orchestratornode

import (
	"time"

	contractx "github.com/tanpawarit/llm-honeypot-agents/agent/contract"
)

const (
	msgScheduled    = "Detailed analysis running in background"
	msgNotScheduled = "Detailed analysis could not be scheduled"
)

func FinalizeResult(in *GraphState, nowFn func() time.Time) (GraphOutput, error) {
	msg := msgScheduled
	if !in.Scheduled {
		msg = msgNotScheduled
	}
	return GraphOutput{Result: contractx.AnalysisResult{
		AnalysisID:          in.AnalysisID,
		Status:              contractx.AnalysisAccepted,
		InitialResult:       in.Initial,
		BackgroundScheduled: in.Scheduled,
		Message:             msg,
		Timestamp:           nowFn().UTC(),
	}}, nil
}
