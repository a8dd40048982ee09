package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	contractx "github.com/tanpawarit/llm-honeypot-agents/agent/contract"
)

type RootResponse struct {
	Name      string    `json:"name"`
	Version   string    `json:"version"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type StatusResponse struct {
	Status      string            `json:"status"`
	AgentStatus map[string]string `json:"agent_status"`
	LastCheck   time.Time         `json:"last_check"`
}

type ProcessRequest struct {
	Agent     string                `json:"agent"`
	Data      contractx.TaskPayload `json:"data"`
	Operation string                `json:"operation,omitempty"`
}

type ProcessResponse struct {
	Status    contractx.Status   `json:"status"`
	Agent     string             `json:"agent"`
	Result    contractx.Envelope `json:"result"`
	Timestamp time.Time          `json:"timestamp"`
}

type ErrorResponse struct {
	Status    contractx.Status `json:"status"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, RootResponse{
		Name:      serviceName,
		Version:   serviceVersion,
		Status:    "operational",
		Timestamp: s.now().UTC(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	agents := make(map[string]string)
	for _, name := range s.handlers.Names() {
		agents[string(name)] = "active"
	}
	respondJSON(w, http.StatusOK, StatusResponse{
		Status:      "operational",
		AgentStatus: agents,
		LastCheck:   s.now().UTC(),
	})
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	agent := strings.TrimSpace(req.Agent)
	if agent == "" {
		s.writeError(w, http.StatusBadRequest, "agent is required")
		return
	}
	op, ok := contractx.ParseOperation(req.Operation)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "operation must be one of process, analyze, collaborate")
		return
	}

	env := s.dispatcher.Run(r.Context(), contractx.Request{
		Handler:   contractx.HandlerName(agent),
		Operation: op,
		Payload:   req.Data,
	})

	respondJSON(w, statusForEnvelope(env), ProcessResponse{
		Status:    env.Status,
		Agent:     agent,
		Result:    env,
		Timestamp: s.now().UTC(),
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	payload := contractx.TaskPayload{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeError(w, http.StatusBadRequest, "body must be a JSON object")
		return
	}

	res := s.analyzer.AnalyzeThreat(r.Context(), payload)
	respondJSON(w, http.StatusOK, res)
}

func statusForEnvelope(env contractx.Envelope) int {
	if env.OK() {
		return http.StatusOK
	}
	switch env.ErrorKind {
	case contractx.KindNotFound:
		return http.StatusNotFound
	case contractx.KindInvalidRequest:
		return http.StatusBadRequest
	case contractx.KindRemoteServiceFailure:
		return http.StatusBadGateway
	case contractx.KindCanceled:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, ErrorResponse{
		Status:    contractx.StatusError,
		Message:   message,
		Timestamp: s.now().UTC(),
	})
}
