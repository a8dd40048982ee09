package dispatchnode

import (
	"context"
	"testing"
	"time"

	contractx "github.com/tanpawarit/llm-honeypot-agents/agent/contract"
)

func fixedNow() time.Time {
	return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
}

func TestFinalizeEnvelopeRepairsBrokenResults(t *testing.T) {
	t.Parallel()

	msg := ""
	tests := []struct {
		name     string
		envelope *contractx.Envelope
		wantKind contractx.ErrorKind
		wantOK   bool
	}{
		{name: "missing", envelope: nil, wantKind: contractx.KindInternal},
		{name: "zero value", envelope: &contractx.Envelope{}, wantKind: contractx.KindInternal},
		{name: "error without message", envelope: &contractx.Envelope{Status: contractx.StatusError, ErrorKind: contractx.KindRemoteServiceFailure, ErrorMessage: &msg}, wantKind: contractx.KindRemoteServiceFailure},
		{name: "success without payload", envelope: &contractx.Envelope{Status: contractx.StatusSuccess}, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			st := &GraphState{
				Handler:   contractx.HandlerArchitect,
				Operation: contractx.OperationAnalyze,
				Envelope:  tt.envelope,
			}
			out, err := FinalizeEnvelope(st, fixedNow)
			if err != nil {
				t.Fatalf("FinalizeEnvelope() error = %v", err)
			}
			env := out.Envelope
			if env.OK() != tt.wantOK {
				t.Fatalf("OK() = %v, want %v", env.OK(), tt.wantOK)
			}
			if tt.wantOK {
				if env.Payload == nil || env.ErrorMessage != nil {
					t.Fatalf("success breaks exclusivity: %#v", env)
				}
			} else {
				if env.ErrorKind != tt.wantKind || env.Message() == "" || env.Payload != nil {
					t.Fatalf("unexpected error envelope %#v", env)
				}
			}
			if env.Handler != contractx.HandlerArchitect || env.Operation != contractx.OperationAnalyze {
				t.Fatalf("identity not stamped: %#v", env)
			}
			if !env.Timestamp.Equal(fixedNow()) {
				t.Fatalf("timestamp = %s, want %s", env.Timestamp, fixedNow())
			}
		})
	}
}

func TestValidateRequestSkipsLaterNodesOnBadInput(t *testing.T) {
	t.Parallel()

	st, err := ValidateRequest(GraphInput{Request: contractx.Request{Handler: " ", Operation: "process"}}, fixedNow)
	if err != nil {
		t.Fatalf("ValidateRequest() error = %v", err)
	}
	if !st.done() || st.Envelope.ErrorKind != contractx.KindInvalidRequest {
		t.Fatalf("expected invalid_request envelope, got %#v", st.Envelope)
	}

	st, err = ExecuteHandler(context.Background(), st)
	if err != nil || st.Envelope.ErrorKind != contractx.KindInvalidRequest {
		t.Fatalf("ExecuteHandler() overwrote the envelope: %#v, %v", st.Envelope, err)
	}
}
