package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	contractx "github.com/tanpawarit/llm-honeypot-agents/agent/contract"
)

type mockDispatcher struct {
	mu      sync.Mutex
	runFunc func(ctx context.Context, req contractx.Request) contractx.Envelope
	reqs    []contractx.Request
}

func (m *mockDispatcher) Invoke(ctx context.Context, name contractx.HandlerName, payload contractx.TaskPayload) contractx.Envelope {
	return m.Run(ctx, contractx.Request{Handler: name, Operation: contractx.OperationProcess, Payload: payload})
}

func (m *mockDispatcher) Run(ctx context.Context, req contractx.Request) contractx.Envelope {
	m.mu.Lock()
	m.reqs = append(m.reqs, req)
	m.mu.Unlock()
	return m.runFunc(ctx, req).For(req.Handler, req.Operation)
}

type mockAnalyzer struct {
	payload contractx.TaskPayload
	result  contractx.AnalysisResult
}

func (m *mockAnalyzer) AnalyzeThreat(ctx context.Context, payload contractx.TaskPayload) contractx.AnalysisResult {
	m.payload = payload
	return m.result
}

type mockLookup []contractx.HandlerName

func (m mockLookup) Lookup(name contractx.HandlerName) (contractx.Handler, error) {
	return nil, contractx.ErrNotFound
}

func (m mockLookup) Names() []contractx.HandlerName { return m }

func newTestServer(t *testing.T, d *mockDispatcher, a *mockAnalyzer) http.Handler {
	t.Helper()
	if d == nil {
		d = &mockDispatcher{runFunc: func(context.Context, contractx.Request) contractx.Envelope {
			return contractx.Succeeded(nil)
		}}
	}
	if a == nil {
		a = &mockAnalyzer{}
	}
	s, err := New(Config{Listen: "127.0.0.1:0"}, d, a, mockLookup(contractx.AllHandlers))
	require.NoError(t, err)
	return s.Routes()
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(Config{}, nil, &mockAnalyzer{}, mockLookup{})
	assert.Error(t, err)
}

func TestHandleRoot(t *testing.T) {
	rec := doRequest(t, newTestServer(t, nil, nil), http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RootResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, serviceName, resp.Name)
	assert.Equal(t, "operational", resp.Status)
}

func TestHandleStatus(t *testing.T) {
	rec := doRequest(t, newTestServer(t, nil, nil), http.MethodGet, "/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatusResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.AgentStatus, len(contractx.AllHandlers))
	assert.Equal(t, "active", resp.AgentStatus[string(contractx.HandlerSecurityAnalyst)])
}

func TestHandleProcess(t *testing.T) {
	d := &mockDispatcher{runFunc: func(_ context.Context, req contractx.Request) contractx.Envelope {
		return contractx.Succeeded(map[string]any{"response": req.Payload["task"]})
	}}
	h := newTestServer(t, d, nil)

	rec := doRequest(t, h, http.MethodPost, "/process", `{"agent":"architect","data":{"task":"x"},"operation":"analyze"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "success", resp["status"])
	assert.Equal(t, "architect", resp["agent"])
	result := resp["result"].(map[string]any)
	assert.Equal(t, "x", result["payload"].(map[string]any)["response"])
	assert.Nil(t, result["error_message"])

	require.Len(t, d.reqs, 1)
	assert.Equal(t, contractx.OperationAnalyze, d.reqs[0].Operation)
	assert.Equal(t, contractx.HandlerArchitect, d.reqs[0].Handler)
}

func TestHandleProcessErrorStatuses(t *testing.T) {
	tests := []struct {
		name     string
		envelope contractx.Envelope
		want     int
	}{
		{name: "not found", envelope: contractx.Failed(contractx.KindNotFound, "handler not found: agent \"nope\""), want: http.StatusNotFound},
		{name: "remote failure", envelope: contractx.Failed(contractx.KindRemoteServiceFailure, "timeout"), want: http.StatusBadGateway},
		{name: "internal", envelope: contractx.Failed(contractx.KindInternal, "boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &mockDispatcher{runFunc: func(context.Context, contractx.Request) contractx.Envelope { return tt.envelope }}
			rec := doRequest(t, newTestServer(t, d, nil), http.MethodPost, "/process", `{"agent":"nope","data":{}}`)
			require.Equal(t, tt.want, rec.Code)

			var resp ProcessResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, contractx.StatusError, resp.Status)
			assert.Nil(t, resp.Result.Payload)
			assert.NotEmpty(t, resp.Result.Message())
		})
	}
}

func TestHandleProcessBadRequests(t *testing.T) {
	d := &mockDispatcher{runFunc: func(context.Context, contractx.Request) contractx.Envelope {
		return contractx.Succeeded(nil)
	}}
	h := newTestServer(t, d, nil)

	for _, body := range []string{`{"agent":`, `{"data":{}}`, `{"agent":"architect","operation":"delete"}`} {
		rec := doRequest(t, h, http.MethodPost, "/process", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.Empty(t, d.reqs)
}

func TestHandleAnalyze(t *testing.T) {
	a := &mockAnalyzer{result: contractx.AnalysisResult{
		AnalysisID:          "a1",
		Status:              contractx.AnalysisAccepted,
		InitialResult:       contractx.Succeeded(map[string]any{"threat_level": "medium"}),
		BackgroundScheduled: true,
		Message:             "Detailed analysis running in background",
	}}
	h := newTestServer(t, nil, a)

	rec := doRequest(t, h, http.MethodPost, "/analyze", `{"indicator":"port-scan"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "accepted", resp["status"])
	assert.Equal(t, true, resp["background_scheduled"])
	assert.Equal(t, "port-scan", a.payload["indicator"])

	rec = doRequest(t, h, http.MethodPost, "/analyze", `[1,2]`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t, nil, nil)

	req := httptest.NewRequest(http.MethodOptions, "/process", nil)
	req.Header.Set("Origin", "http://dashboard.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStartStopsOnContextCancel(t *testing.T) {
	s, err := New(Config{Listen: "127.0.0.1:0"}, &mockDispatcher{}, &mockAnalyzer{}, mockLookup{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()
	cancel()

	assert.NoError(t, <-done)
}
