package orchestratornode

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/llm-honeypot-agents/agent/contract"
	workerx "github.com/tanpawarit/llm-honeypot-agents/agent/worker"
)

// ScheduleStageTwo queues the data science pass over the stage one envelope.
// Its outcome only ever reaches the sink.
func ScheduleStageTwo(
	ctx context.Context,
	in *GraphState,
	dispatcher contractx.Dispatcher,
	scheduler Scheduler,
	sink contractx.ResultSink,
	nowFn func() time.Time,
) (*GraphState, error) {
	analysisID := in.AnalysisID
	payload := contractx.TaskPayload{"security_result": in.Initial.AsPayload()}
	queuedAt := nowFn().UTC()

	err := scheduler.Submit(ctx, workerx.Job{
		Name: "analysis." + analysisID + "." + string(StageTwoHandler),
		Run: func(jobCtx context.Context) {
			env := dispatcher.Invoke(jobCtx, StageTwoHandler, payload)
			sink.Record(jobCtx, contractx.BackgroundResult{
				AnalysisID: analysisID,
				Handler:    StageTwoHandler,
				Envelope:   env,
				QueuedAt:   queuedAt,
				FinishedAt: nowFn().UTC(),
			})
		},
	})
	if err != nil {
		log.Warn().
			Err(err).
			Str("component", "orchestrator").
			Str("analysis_id", analysisID).
			Msg("background analysis not scheduled")
		in.ScheduleErr = err
		return in, nil
	}

	in.Scheduled = true
	return in, nil
}
