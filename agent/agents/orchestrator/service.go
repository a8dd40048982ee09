package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/llm-honeypot-agents/agent/contract"
	nodex "github.com/tanpawarit/llm-honeypot-agents/agent/nodes/orchestrator"
)

// Orchestrator runs the two-stage threat analysis: a blocking security
// assessment followed by a data science pass nobody waits for.
type Orchestrator struct {
	dispatcher contractx.Dispatcher
	scheduler  nodex.Scheduler
	sink       contractx.ResultSink

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	newID func() string
	now   func() time.Time
}

var _ contractx.Analyzer = (*Orchestrator)(nil)

func New(
	dispatcher contractx.Dispatcher,
	scheduler nodex.Scheduler,
	sink contractx.ResultSink,
) (*Orchestrator, error) {
	if dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}
	if scheduler == nil {
		return nil, errors.New("background scheduler is required")
	}
	if sink == nil {
		sink = LogSink{}
	}

	o := &Orchestrator{
		dispatcher: dispatcher,
		scheduler:  scheduler,
		sink:       sink,
		newID:      uuid.NewString,
		now:        time.Now,
	}

	graphRunner, err := o.compileAnalyzeThreatGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// AnalyzeThreat returns as soon as stage one finishes. The result always has
// status accepted; callers branch on InitialResult.Status.
func (o *Orchestrator) AnalyzeThreat(ctx context.Context, payload contractx.TaskPayload) (res contractx.AnalysisResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("component", "orchestrator").Interface("panic", r).Msg("analyze threat panicked")
			res = o.fallbackResult(fmt.Errorf("analyze threat: %v", r))
		}
	}()

	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{Payload: payload})
	if err != nil {
		return o.fallbackResult(err)
	}
	return out.Result
}

func (o *Orchestrator) fallbackResult(err error) contractx.AnalysisResult {
	env := contractx.FailedFromError(err).For(nodex.StageOneHandler, contractx.OperationProcess)
	return contractx.AnalysisResult{
		AnalysisID:    o.newID(),
		Status:        contractx.AnalysisAccepted,
		InitialResult: env,
		Message:       "Initial analysis failed before background analysis could be scheduled.",
		Timestamp:     o.now().UTC(),
	}
}
