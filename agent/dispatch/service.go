package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/llm-honeypot-agents/agent/contract"
	nodex "github.com/tanpawarit/llm-honeypot-agents/agent/nodes"
)

// Dispatcher resolves a handler by name and folds every outcome into an
// envelope. It never returns an error and never panics out.
type Dispatcher struct {
	handlers    contractx.Lookup
	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]
	now         func() time.Time
}

var _ contractx.Dispatcher = (*Dispatcher)(nil)

func New(handlers contractx.Lookup) (*Dispatcher, error) {
	if handlers == nil {
		return nil, errors.New("handler registry is required")
	}

	d := &Dispatcher{
		handlers: handlers,
		now:      time.Now,
	}

	graphRunner, err := d.compileDispatchGraph(context.Background())
	if err != nil {
		return nil, err
	}
	d.graphRunner = graphRunner

	return d, nil
}

func (d *Dispatcher) Invoke(ctx context.Context, name contractx.HandlerName, payload contractx.TaskPayload) contractx.Envelope {
	return d.Run(ctx, contractx.Request{
		Handler:   name,
		Operation: contractx.OperationProcess,
		Payload:   payload,
	})
}

// Run executes the request on its own goroutine. If ctx ends first the caller
// gets a canceled envelope; the handler call itself is left to finish.
func (d *Dispatcher) Run(ctx context.Context, req contractx.Request) contractx.Envelope {
	logger := log.With().
		Str("component", "dispatcher").
		Str("handler", string(req.Handler)).
		Str("operation", string(req.Operation)).
		Logger()

	result := make(chan contractx.Envelope, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error().Interface("panic", r).Msg("dispatch panicked")
				result <- d.failed(req, contractx.KindInternal, fmt.Sprintf("dispatch %s: %v", req.Handler, r))
			}
		}()

		out, err := d.graphRunner.Invoke(ctx, nodex.GraphInput{Request: req})
		if err != nil {
			result <- d.failedFromError(req, err)
			return
		}
		result <- out.Envelope
	}()

	select {
	case env := <-result:
		if env.OK() {
			logger.Debug().Msg("dispatch succeeded")
		} else {
			logger.Warn().Str("error_kind", string(env.ErrorKind)).Str("error", env.Message()).Msg("dispatch failed")
		}
		return env
	case <-ctx.Done():
		logger.Warn().Err(ctx.Err()).Msg("dispatch abandoned by caller")
		return d.failedFromError(req, fmt.Errorf("dispatch %s: %w", req.Handler, ctx.Err()))
	}
}

func (d *Dispatcher) failedFromError(req contractx.Request, err error) contractx.Envelope {
	return d.failed(req, contractx.KindOf(err), err.Error())
}

func (d *Dispatcher) failed(req contractx.Request, kind contractx.ErrorKind, msg string) contractx.Envelope {
	op, ok := contractx.ParseOperation(string(req.Operation))
	if !ok {
		op = req.Operation
	}
	env := contractx.Failed(kind, msg).For(req.Handler, op)
	env.Timestamp = d.now().UTC()
	return env
}
