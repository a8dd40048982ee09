package contract

import (
	"strings"
	"time"
)

type HandlerName string

const (
	HandlerArchitect              HandlerName = "architect"
	HandlerLLMSpecialist          HandlerName = "llm_specialist"
	HandlerHoneypotExpert         HandlerName = "honeypot_expert"
	HandlerSecurityAnalyst        HandlerName = "security_analyst"
	HandlerInfrastructureEngineer HandlerName = "infrastructure_engineer"
	HandlerDataScientist          HandlerName = "data_scientist"
)

// AllHandlers is the registration order used at startup.
var AllHandlers = []HandlerName{
	HandlerArchitect,
	HandlerLLMSpecialist,
	HandlerHoneypotExpert,
	HandlerSecurityAnalyst,
	HandlerInfrastructureEngineer,
	HandlerDataScientist,
}

type Operation string

const (
	OperationProcess     Operation = "process"
	OperationAnalyze     Operation = "analyze"
	OperationCollaborate Operation = "collaborate"
)

// ParseOperation defaults to process when s is blank.
func ParseOperation(s string) (Operation, bool) {
	switch Operation(strings.ToLower(strings.TrimSpace(s))) {
	case "", OperationProcess:
		return OperationProcess, true
	case OperationAnalyze:
		return OperationAnalyze, true
	case OperationCollaborate:
		return OperationCollaborate, true
	default:
		return "", false
	}
}

// ResultKey is the payload key the original handlers used for each operation.
func (o Operation) ResultKey() string {
	switch o {
	case OperationAnalyze:
		return "analysis"
	case OperationCollaborate:
		return "collaboration"
	default:
		return "response"
	}
}

// TaskPayload is caller supplied and never mutated by handlers.
type TaskPayload map[string]any

// Clone returns a shallow copy so a handler cannot alter the caller's map.
func (p TaskPayload) Clone() TaskPayload {
	out := make(TaskPayload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

type ErrorKind string

const (
	KindNotFound             ErrorKind = "not_found"
	KindRemoteServiceFailure ErrorKind = "remote_service_failure"
	KindConfiguration        ErrorKind = "configuration"
	KindInvalidRequest       ErrorKind = "invalid_request"
	KindCanceled             ErrorKind = "canceled"
	KindInternal             ErrorKind = "internal"
)

// Envelope is the only result shape a handler or the dispatcher hands back.
// Exactly one of Payload and ErrorMessage is set.
type Envelope struct {
	Status       Status         `json:"status"`
	Handler      HandlerName    `json:"handler,omitempty"`
	Operation    Operation      `json:"operation,omitempty"`
	Payload      map[string]any `json:"payload"`
	ErrorKind    ErrorKind      `json:"error_kind,omitempty"`
	ErrorMessage *string        `json:"error_message"`
	Timestamp    time.Time      `json:"timestamp"`
}

func Succeeded(payload map[string]any) Envelope {
	if payload == nil {
		payload = map[string]any{}
	}
	return Envelope{
		Status:    StatusSuccess,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

func Failed(kind ErrorKind, message string) Envelope {
	if kind == "" {
		kind = KindInternal
	}
	message = strings.TrimSpace(message)
	if message == "" {
		message = string(kind)
	}
	return Envelope{
		Status:       StatusError,
		ErrorKind:    kind,
		ErrorMessage: &message,
		Timestamp:    time.Now().UTC(),
	}
}

// FailedFromError picks the kind from the wrapped sentinel.
func FailedFromError(err error) Envelope {
	if err == nil {
		return Failed(KindInternal, "unknown failure")
	}
	return Failed(KindOf(err), err.Error())
}

func (e Envelope) OK() bool {
	return e.Status == StatusSuccess
}

// Message returns the error text or "" on success.
func (e Envelope) Message() string {
	if e.ErrorMessage == nil {
		return ""
	}
	return *e.ErrorMessage
}

func (e Envelope) For(name HandlerName, op Operation) Envelope {
	e.Handler = name
	e.Operation = op
	return e
}

// AsPayload renders the envelope as a plain map for feeding into another handler.
func (e Envelope) AsPayload() map[string]any {
	out := map[string]any{
		"status":    string(e.Status),
		"timestamp": e.Timestamp.Format(time.RFC3339Nano),
	}
	if e.Handler != "" {
		out["handler"] = string(e.Handler)
	}
	if e.OK() {
		out["payload"] = e.Payload
	} else {
		out["error_kind"] = string(e.ErrorKind)
		out["error_message"] = e.Message()
	}
	return out
}

type Request struct {
	Handler   HandlerName `json:"handler"`
	Operation Operation   `json:"operation"`
	Payload   TaskPayload `json:"payload"`
}

// AnalysisStatus marks that the overall analysis was accepted.
type AnalysisStatus string

const AnalysisAccepted AnalysisStatus = "accepted"

type AnalysisResult struct {
	AnalysisID          string         `json:"analysis_id"`
	Status              AnalysisStatus `json:"status"`
	InitialResult       Envelope       `json:"initial_result"`
	BackgroundScheduled bool           `json:"background_scheduled"`
	Message             string         `json:"message"`
	Timestamp           time.Time      `json:"timestamp"`
}

// BackgroundResult is what a deferred stage leaves behind in the sink.
type BackgroundResult struct {
	AnalysisID string      `json:"analysis_id"`
	Handler    HandlerName `json:"handler"`
	Envelope   Envelope    `json:"envelope"`
	QueuedAt   time.Time   `json:"queued_at"`
	FinishedAt time.Time   `json:"finished_at"`
}
