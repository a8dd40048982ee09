package dispatch

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	contractx "github.com/tanpawarit/llm-honeypot-agents/agent/contract"
)

type fakeHandler struct {
	name    contractx.HandlerName
	fail    string
	panics  bool
	block   chan struct{}
	mu      sync.Mutex
	calls   []contractx.Operation
	lastArg contractx.TaskPayload
}

func (f *fakeHandler) Name() contractx.HandlerName { return f.name }

func (f *fakeHandler) Process(ctx context.Context, p contractx.TaskPayload) contractx.Envelope {
	return f.handle(contractx.OperationProcess, p)
}

func (f *fakeHandler) Analyze(ctx context.Context, p contractx.TaskPayload) contractx.Envelope {
	return f.handle(contractx.OperationAnalyze, p)
}

func (f *fakeHandler) Collaborate(ctx context.Context, p contractx.TaskPayload) contractx.Envelope {
	return f.handle(contractx.OperationCollaborate, p)
}

func (f *fakeHandler) handle(op contractx.Operation, p contractx.TaskPayload) contractx.Envelope {
	f.mu.Lock()
	f.calls = append(f.calls, op)
	f.lastArg = p
	f.mu.Unlock()

	if f.block != nil {
		<-f.block
	}
	if f.panics {
		panic("handler exploded")
	}
	if f.fail != "" {
		return contractx.Failed(contractx.KindRemoteServiceFailure, f.fail)
	}
	p["touched_by_handler"] = true
	return contractx.Succeeded(map[string]any{"handler": string(f.name), "echo": p["task"]})
}

type fakeLookup map[contractx.HandlerName]contractx.Handler

func (f fakeLookup) Lookup(name contractx.HandlerName) (contractx.Handler, error) {
	h, ok := f[name]
	if !ok {
		return nil, fmt.Errorf("%w: agent %q", contractx.ErrNotFound, name)
	}
	return h, nil
}

func (f fakeLookup) Names() []contractx.HandlerName {
	names := make([]contractx.HandlerName, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	return names
}

func newTestDispatcher(t *testing.T, handlers ...*fakeHandler) *Dispatcher {
	t.Helper()
	lookup := fakeLookup{}
	for _, h := range handlers {
		lookup[h.name] = h
	}
	d, err := New(lookup)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return d
}

func assertExclusive(t *testing.T, env contractx.Envelope) {
	t.Helper()
	switch env.Status {
	case contractx.StatusSuccess:
		if env.Payload == nil || env.ErrorMessage != nil {
			t.Fatalf("success envelope breaks exclusivity: %#v", env)
		}
	case contractx.StatusError:
		if env.Payload != nil || env.Message() == "" {
			t.Fatalf("error envelope breaks exclusivity: %#v", env)
		}
	default:
		t.Fatalf("unexpected status %q", env.Status)
	}
	if env.Timestamp.IsZero() {
		t.Fatal("envelope has no timestamp")
	}
}

func TestNewRequiresLookup(t *testing.T) {
	t.Parallel()

	if _, err := New(nil); err == nil {
		t.Fatal("expected error for nil lookup")
	}
}

func TestInvokeSuccess(t *testing.T) {
	t.Parallel()

	arch := &fakeHandler{name: contractx.HandlerArchitect}
	d := newTestDispatcher(t, arch)

	payload := contractx.TaskPayload{"task": "x"}
	env := d.Invoke(context.Background(), contractx.HandlerArchitect, payload)
	assertExclusive(t, env)
	if !env.OK() {
		t.Fatalf("expected success, got %s", env.Message())
	}
	if env.Payload["echo"] != "x" {
		t.Fatalf("unexpected payload %#v", env.Payload)
	}
	if env.Handler != contractx.HandlerArchitect || env.Operation != contractx.OperationProcess {
		t.Fatalf("unexpected identity %s/%s", env.Handler, env.Operation)
	}
	if _, touched := payload["touched_by_handler"]; touched {
		t.Fatal("handler mutated the caller's payload")
	}
}

func TestInvokeUnknownHandler(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t)
	env := d.Invoke(context.Background(), "nonexistent", contractx.TaskPayload{"task": "x"})
	assertExclusive(t, env)
	if env.Status != contractx.StatusError || env.ErrorKind != contractx.KindNotFound {
		t.Fatalf("expected not_found envelope, got %#v", env)
	}
}

func TestRunOperations(t *testing.T) {
	t.Parallel()

	h := &fakeHandler{name: contractx.HandlerHoneypotExpert}
	d := newTestDispatcher(t, h)

	for _, op := range []contractx.Operation{contractx.OperationAnalyze, contractx.OperationCollaborate, ""} {
		env := d.Run(context.Background(), contractx.Request{Handler: h.name, Operation: op, Payload: contractx.TaskPayload{}})
		assertExclusive(t, env)
	}

	want := []contractx.Operation{contractx.OperationAnalyze, contractx.OperationCollaborate, contractx.OperationProcess}
	h.mu.Lock()
	defer h.mu.Unlock()
	if fmt.Sprint(h.calls) != fmt.Sprint(want) {
		t.Fatalf("calls = %v, want %v", h.calls, want)
	}
}

func TestRunRejectsUnknownOperation(t *testing.T) {
	t.Parallel()

	h := &fakeHandler{name: contractx.HandlerArchitect}
	d := newTestDispatcher(t, h)

	env := d.Run(context.Background(), contractx.Request{Handler: h.name, Operation: "delete"})
	assertExclusive(t, env)
	if env.ErrorKind != contractx.KindInvalidRequest {
		t.Fatalf("unexpected kind %s", env.ErrorKind)
	}
	if len(h.calls) != 0 {
		t.Fatalf("handler should not be called, got %v", h.calls)
	}
}

func TestInvokeHandlerFailure(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t, &fakeHandler{name: contractx.HandlerDataScientist, fail: "upstream 503"})
	env := d.Invoke(context.Background(), contractx.HandlerDataScientist, nil)
	assertExclusive(t, env)
	if env.ErrorKind != contractx.KindRemoteServiceFailure || env.Message() != "upstream 503" {
		t.Fatalf("unexpected envelope %#v", env)
	}
}

func TestInvokeHandlerPanic(t *testing.T) {
	t.Parallel()

	d := newTestDispatcher(t, &fakeHandler{name: contractx.HandlerArchitect, panics: true})
	env := d.Invoke(context.Background(), contractx.HandlerArchitect, contractx.TaskPayload{})
	assertExclusive(t, env)
	if env.OK() {
		t.Fatal("expected error envelope after panic")
	}
}

func TestInvokeCallerCanceled(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	defer close(release)

	d := newTestDispatcher(t, &fakeHandler{name: contractx.HandlerArchitect, block: release})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	env := d.Invoke(ctx, contractx.HandlerArchitect, contractx.TaskPayload{})
	assertExclusive(t, env)
	if env.ErrorKind != contractx.KindCanceled {
		t.Fatalf("unexpected kind %s", env.ErrorKind)
	}
}

func TestInvokeConcurrentHandlersAreIndependent(t *testing.T) {
	t.Parallel()

	var handlers []*fakeHandler
	for _, name := range contractx.AllHandlers {
		handlers = append(handlers, &fakeHandler{name: name})
	}
	d := newTestDispatcher(t, handlers...)

	envs := make([]contractx.Envelope, len(handlers))
	var wg sync.WaitGroup
	for i, h := range handlers {
		wg.Add(1)
		go func(i int, name contractx.HandlerName) {
			defer wg.Done()
			envs[i] = d.Invoke(context.Background(), name, contractx.TaskPayload{"task": string(name)})
		}(i, h.name)
	}
	wg.Wait()

	for i, h := range handlers {
		env := envs[i]
		assertExclusive(t, env)
		if env.Handler != h.name {
			t.Fatalf("envelope %d handler = %s, want %s", i, env.Handler, h.name)
		}
		if env.Payload["echo"] != string(h.name) || env.Payload["handler"] != string(h.name) {
			t.Fatalf("cross-talk in envelope %d: %#v", i, env.Payload)
		}
	}
}
