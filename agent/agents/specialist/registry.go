package specialist

import (
	"context"
	"fmt"
	"sort"
	"strings"

	contractx "github.com/tanpawarit/llm-honeypot-agents/agent/contract"
	llmx "github.com/tanpawarit/llm-honeypot-agents/agent/llm"
	promptx "github.com/tanpawarit/llm-honeypot-agents/agent/prompt"
)

// Registry maps handler names to handler instances. It is filled during
// startup, frozen, and only read afterwards, so lookups take no lock.
type Registry struct {
	handlers map[contractx.HandlerName]contractx.Handler
	frozen   bool
}

var _ contractx.Lookup = (*Registry)(nil)

func NewEmptyRegistry() *Registry {
	return &Registry{
		handlers: make(map[contractx.HandlerName]contractx.Handler, len(contractx.AllHandlers)),
	}
}

// Register must only be called before Freeze, from the startup goroutine.
func (r *Registry) Register(name contractx.HandlerName, h contractx.Handler) error {
	if r.frozen {
		return fmt.Errorf("%w: cannot register %q", contractx.ErrRegistryFrozen, name)
	}
	if strings.TrimSpace(string(name)) == "" {
		return fmt.Errorf("%w: handler name is empty", contractx.ErrValidation)
	}
	if h == nil {
		return fmt.Errorf("%w: handler %q is nil", contractx.ErrValidation, name)
	}
	if _, ok := r.handlers[name]; ok {
		return fmt.Errorf("%w: %q", contractx.ErrDuplicateHandler, name)
	}
	r.handlers[name] = h
	return nil
}

func (r *Registry) Freeze() {
	r.frozen = true
}

func (r *Registry) Lookup(name contractx.HandlerName) (contractx.Handler, error) {
	h, ok := r.handlers[name]
	if !ok {
		return nil, fmt.Errorf("%w: agent %q", contractx.ErrNotFound, name)
	}
	return h, nil
}

func (r *Registry) Names() []contractx.HandlerName {
	names := make([]contractx.HandlerName, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

type handlerBuilder func(ctx context.Context, cfg llmx.HandlerConfig, ins promptx.Instructions) (contractx.Handler, error)

var builders = map[contractx.HandlerName]handlerBuilder{
	contractx.HandlerArchitect: func(ctx context.Context, cfg llmx.HandlerConfig, ins promptx.Instructions) (contractx.Handler, error) {
		return NewArchitect(ctx, cfg, ins)
	},
	contractx.HandlerLLMSpecialist: func(ctx context.Context, cfg llmx.HandlerConfig, ins promptx.Instructions) (contractx.Handler, error) {
		return NewLLMSpecialist(ctx, cfg, ins)
	},
	contractx.HandlerHoneypotExpert: func(ctx context.Context, cfg llmx.HandlerConfig, ins promptx.Instructions) (contractx.Handler, error) {
		return NewHoneypotExpert(ctx, cfg, ins)
	},
	contractx.HandlerSecurityAnalyst: func(_ context.Context, _ llmx.HandlerConfig, ins promptx.Instructions) (contractx.Handler, error) {
		return NewSecurityAnalyst(ins), nil
	},
	contractx.HandlerInfrastructureEngineer: func(ctx context.Context, cfg llmx.HandlerConfig, ins promptx.Instructions) (contractx.Handler, error) {
		return NewInfrastructureEngineer(ctx, cfg, ins)
	},
	contractx.HandlerDataScientist: func(ctx context.Context, cfg llmx.HandlerConfig, ins promptx.Instructions) (contractx.Handler, error) {
		return NewDataScientist(ctx, cfg, ins)
	},
}

// NewRegistry builds and freezes the six specialists. Credentials for all of
// them are checked before any is constructed.
func NewRegistry(ctx context.Context, cfg llmx.Config) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prompts, err := promptx.LoadPromptSet()
	if err != nil {
		return nil, err
	}

	reg := NewEmptyRegistry()
	for _, name := range contractx.AllHandlers {
		ins, err := prompts.Get(name)
		if err != nil {
			return nil, err
		}
		h, err := builders[name](ctx, cfg.For(name), ins)
		if err != nil {
			return nil, fmt.Errorf("build handler %s: %w", name, err)
		}
		if err := reg.Register(name, h); err != nil {
			return nil, err
		}
	}
	reg.Freeze()

	return reg, nil
}
