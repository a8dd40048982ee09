package contract

import "context"

// Handler is the capability set every specialist implements.
// None of the methods return an error; failures come back as error envelopes.
type Handler interface {
	Name() HandlerName
	Process(ctx context.Context, payload TaskPayload) Envelope
	Analyze(ctx context.Context, payload TaskPayload) Envelope
	Collaborate(ctx context.Context, payload TaskPayload) Envelope
}

type Lookup interface {
	Lookup(name HandlerName) (Handler, error)
	Names() []HandlerName
}

type Dispatcher interface {
	Invoke(ctx context.Context, name HandlerName, payload TaskPayload) Envelope
	Run(ctx context.Context, req Request) Envelope
}

type Analyzer interface {
	AnalyzeThreat(ctx context.Context, payload TaskPayload) AnalysisResult
}

// ResultSink receives outcomes nobody waits for.
type ResultSink interface {
	Record(ctx context.Context, res BackgroundResult)
}

// Reasoner is the outbound call a remote handler makes.
type Reasoner interface {
	Reason(ctx context.Context, instruction string, input string) (string, error)
}
