package dispatchnode

import (
	contractx "github.com/tanpawarit/llm-honeypot-agents/agent/contract"
)

// ResolveHandler turns an unknown name into a not_found envelope instead of a
// graph error, so the caller still gets a normal result.
func ResolveHandler(in *GraphState, handlers contractx.Lookup) (*GraphState, error) {
	if in.done() {
		return in, nil
	}

	h, err := handlers.Lookup(in.Handler)
	if err != nil {
		in.fail(err)
		return in, nil
	}
	in.Target = h
	return in, nil
}
