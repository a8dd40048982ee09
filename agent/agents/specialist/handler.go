package specialist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/llm-honeypot-agents/agent/contract"
	llmx "github.com/tanpawarit/llm-honeypot-agents/agent/llm"
	promptx "github.com/tanpawarit/llm-honeypot-agents/agent/prompt"
	openrouterx "github.com/tanpawarit/llm-honeypot-agents/pkg/openrouter"
)

// remoteHandler forwards every operation to a reasoning service and folds the
// outcome into an envelope. It keeps no state between calls.
type remoteHandler struct {
	name         contractx.HandlerName
	model        string
	instructions promptx.Instructions
	reasoner     contractx.Reasoner
}

func newRemoteHandler(
	name contractx.HandlerName,
	model string,
	instructions promptx.Instructions,
	reasoner contractx.Reasoner,
) (*remoteHandler, error) {
	if reasoner == nil {
		return nil, fmt.Errorf("%w: reasoner is required for handler=%s", contractx.ErrConfiguration, name)
	}
	return &remoteHandler{
		name:         name,
		model:        model,
		instructions: instructions,
		reasoner:     reasoner,
	}, nil
}

func (h *remoteHandler) Name() contractx.HandlerName {
	return h.name
}

func (h *remoteHandler) Process(ctx context.Context, payload contractx.TaskPayload) contractx.Envelope {
	return h.run(ctx, contractx.OperationProcess, payload)
}

func (h *remoteHandler) Analyze(ctx context.Context, payload contractx.TaskPayload) contractx.Envelope {
	return h.run(ctx, contractx.OperationAnalyze, payload)
}

func (h *remoteHandler) Collaborate(ctx context.Context, payload contractx.TaskPayload) contractx.Envelope {
	return h.run(ctx, contractx.OperationCollaborate, payload)
}

func (h *remoteHandler) run(ctx context.Context, op contractx.Operation, payload contractx.TaskPayload) (env contractx.Envelope) {
	logger := log.With().Str("handler", string(h.name)).Str("operation", string(op)).Logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("remote handler panicked")
			env = contractx.Failed(contractx.KindRemoteServiceFailure, fmt.Sprintf("%s %s: %v", h.name, op, r)).For(h.name, op)
		}
	}()

	input, err := serializePayload(payload)
	if err != nil {
		logger.Error().Err(err).Msg("serialize payload")
		return contractx.FailedFromError(err).For(h.name, op)
	}

	text, err := h.reasoner.Reason(ctx, h.instructions.For(op), input)
	if err != nil {
		logger.Error().Err(err).Msg("remote call failed")
		return contractx.FailedFromError(fmt.Errorf("%s %s: %w", h.name, op, err)).For(h.name, op)
	}

	return contractx.Succeeded(map[string]any{
		op.ResultKey(): decodeResult(text),
		"model":        h.model,
	}).For(h.name, op)
}

func serializePayload(payload contractx.TaskPayload) (string, error) {
	if payload == nil {
		payload = contractx.TaskPayload{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: marshal task payload: %v", contractx.ErrValidation, err)
	}
	return string(raw), nil
}

// decodeResult keeps structured answers structured. Anything that is not a
// JSON object comes back as plain text.
func decodeResult(text string) any {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		trimmed = strings.TrimSpace(trimmed)
	}
	if strings.HasPrefix(trimmed, "{") {
		var obj map[string]any
		if err := json.Unmarshal([]byte(trimmed), &obj); err == nil {
			return obj
		}
	}
	return text
}

// Architect reviews system design through an OpenRouter routed model.
type Architect struct{ *remoteHandler }

// LLMSpecialist talks to OpenAI directly through the SDK.
type LLMSpecialist struct{ *remoteHandler }

type HoneypotExpert struct{ *remoteHandler }

type InfrastructureEngineer struct{ *remoteHandler }

type DataScientist struct{ *remoteHandler }

func NewArchitect(ctx context.Context, cfg llmx.HandlerConfig, ins promptx.Instructions) (*Architect, error) {
	h, err := newOpenRouterHandler(ctx, contractx.HandlerArchitect, cfg, ins)
	if err != nil {
		return nil, err
	}
	return &Architect{h}, nil
}

func NewLLMSpecialist(ctx context.Context, cfg llmx.HandlerConfig, ins promptx.Instructions) (*LLMSpecialist, error) {
	cfg.Name = contractx.HandlerLLMSpecialist
	cfg.Provider = llmx.ProviderOpenAI
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	chatModel, err := openrouterx.NewSDKChatModel(cfg.OpenRouter())
	if err != nil {
		return nil, fmt.Errorf("%w: create %s model: %v", contractx.ErrConfiguration, cfg.Name, err)
	}
	h, err := newModelHandler(ctx, cfg.Name, cfg.Model, chatModel, ins)
	if err != nil {
		return nil, err
	}
	return &LLMSpecialist{h}, nil
}

func NewHoneypotExpert(ctx context.Context, cfg llmx.HandlerConfig, ins promptx.Instructions) (*HoneypotExpert, error) {
	h, err := newOpenRouterHandler(ctx, contractx.HandlerHoneypotExpert, cfg, ins)
	if err != nil {
		return nil, err
	}
	return &HoneypotExpert{h}, nil
}

func NewInfrastructureEngineer(ctx context.Context, cfg llmx.HandlerConfig, ins promptx.Instructions) (*InfrastructureEngineer, error) {
	h, err := newOpenRouterHandler(ctx, contractx.HandlerInfrastructureEngineer, cfg, ins)
	if err != nil {
		return nil, err
	}
	return &InfrastructureEngineer{h}, nil
}

func NewDataScientist(ctx context.Context, cfg llmx.HandlerConfig, ins promptx.Instructions) (*DataScientist, error) {
	h, err := newOpenRouterHandler(ctx, contractx.HandlerDataScientist, cfg, ins)
	if err != nil {
		return nil, err
	}
	return &DataScientist{h}, nil
}

func newOpenRouterHandler(
	ctx context.Context,
	name contractx.HandlerName,
	cfg llmx.HandlerConfig,
	ins promptx.Instructions,
) (*remoteHandler, error) {
	cfg.Name = name
	cfg.Provider = llmx.ProviderOpenRouter
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	modelCfg := cfg.OpenRouter()
	chatModel, err := modelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create %s model: %v", contractx.ErrConfiguration, name, err)
	}
	return newModelHandler(ctx, name, cfg.Model, chatModel, ins)
}

func newModelHandler(
	ctx context.Context,
	name contractx.HandlerName,
	model string,
	chatModel einomodel.BaseChatModel,
	ins promptx.Instructions,
) (*remoteHandler, error) {
	reasoner, err := newGraphReasoner(ctx, chatModel, name)
	if err != nil {
		return nil, err
	}
	return newRemoteHandler(name, model, ins, reasoner)
}
