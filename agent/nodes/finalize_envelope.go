package dispatchnode

import (
	"time"

	contractx "github.com/tanpawarit/llm-honeypot-agents/agent/contract"
)

// FinalizeEnvelope stamps identity and time and repairs envelopes that break
// the success/error exclusivity.
func FinalizeEnvelope(in *GraphState, nowFn func() time.Time) (GraphOutput, error) {
	var env contractx.Envelope
	switch {
	case in.Envelope == nil:
		env = contractx.Failed(contractx.KindInternal, "handler produced no result")
	case in.Envelope.Status == contractx.StatusSuccess:
		env = contractx.Succeeded(in.Envelope.Payload)
	case in.Envelope.Status == contractx.StatusError:
		env = contractx.Failed(in.Envelope.ErrorKind, in.Envelope.Message())
	default:
		env = contractx.Failed(contractx.KindInternal, "handler returned unknown status "+string(in.Envelope.Status))
	}

	env = env.For(in.Handler, in.Operation)
	env.Timestamp = nowFn().UTC()
	return GraphOutput{Envelope: env}, nil
}
