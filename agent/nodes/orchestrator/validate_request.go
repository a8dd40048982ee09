package orchestratornode

import (
	"context"
	"strings"
	"time"

	contractx "github.com/tanpawarit/llm-honeypot-agents/agent/contract"
	workerx "github.com/tanpawarit/llm-honeypot-agents/agent/worker"
)

const (
	StageOneHandler = contractx.HandlerSecurityAnalyst
	StageTwoHandler = contractx.HandlerDataScientist
)

// Scheduler accepts detached work without blocking.
type Scheduler interface {
	Submit(ctx context.Context, job workerx.Job) error
}

type GraphInput struct {
	Payload contractx.TaskPayload
}

type GraphOutput struct {
	Result contractx.AnalysisResult
}

type GraphState struct {
	AnalysisID string
	Payload    contractx.TaskPayload
	Started    time.Time

	Initial     contractx.Envelope
	Scheduled   bool
	ScheduleErr error
}

func ValidateRequest(in GraphInput, newID func() string, nowFn func() time.Time) (*GraphState, error) {
	id := strings.TrimSpace(newID())
	if id == "" {
		id = nowFn().UTC().Format("20060102T150405.000000000")
	}
	return &GraphState{
		AnalysisID: id,
		Payload:    in.Payload.Clone(),
		Started:    nowFn().UTC(),
	}, nil
}
