package dispatchnode

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/llm-honeypot-agents/agent/contract"
)

type GraphInput struct {
	Request contractx.Request
}

type GraphOutput struct {
	Envelope contractx.Envelope
}

// GraphState carries one dispatch through resolve -> execute -> finalize.
// Once Envelope is set the remaining nodes only pass it along.
type GraphState struct {
	Handler   contractx.HandlerName
	Operation contractx.Operation
	Payload   contractx.TaskPayload
	Received  time.Time

	Target   contractx.Handler
	Envelope *contractx.Envelope
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	st := &GraphState{
		Handler:  contractx.HandlerName(strings.TrimSpace(string(in.Request.Handler))),
		Payload:  in.Request.Payload.Clone(),
		Received: nowFn().UTC(),
	}

	op, ok := contractx.ParseOperation(string(in.Request.Operation))
	if !ok {
		st.Operation = in.Request.Operation
		st.fail(fmt.Errorf("%w: unsupported operation %q", contractx.ErrValidation, in.Request.Operation))
		return st, nil
	}
	st.Operation = op

	if st.Handler == "" {
		st.fail(fmt.Errorf("%w: agent name is empty", contractx.ErrValidation))
	}
	return st, nil
}

func (s *GraphState) fail(err error) {
	env := contractx.FailedFromError(err)
	s.Envelope = &env
}

func (s *GraphState) done() bool {
	return s.Envelope != nil
}
