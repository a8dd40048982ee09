package orchestrator

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/llm-honeypot-agents/agent/contract"
)

// LogSink writes background results to a logger and keeps nothing.
// A nil Logger means the global one.
type LogSink struct {
	Logger *zerolog.Logger
}

var _ contractx.ResultSink = LogSink{}

func (s LogSink) Record(_ context.Context, res contractx.BackgroundResult) {
	logger := s.Logger
	if logger == nil {
		logger = &log.Logger
	}

	var ev *zerolog.Event
	if res.Envelope.OK() {
		ev = logger.Info().Interface("payload", res.Envelope.Payload)
	} else {
		ev = logger.Warn().
			Str("error_kind", string(res.Envelope.ErrorKind)).
			Str("error", res.Envelope.Message())
	}
	ev.Str("component", "orchestrator").
		Str("analysis_id", res.AnalysisID).
		Str("handler", string(res.Handler)).
		Dur("elapsed", res.FinishedAt.Sub(res.QueuedAt)).
		Msg("background analysis finished")
}
