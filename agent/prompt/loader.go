package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/llm-honeypot-agents/agent/contract"
	"gopkg.in/yaml.v3"
)

//go:embed template/handlers.yaml
var handlersRaw []byte

// Instructions holds what a handler sends as the system message for each operation.
type Instructions struct {
	Persona     string `yaml:"persona"`
	Role        string `yaml:"role"`
	Expertise   string `yaml:"expertise"`
	Process     string `yaml:"process"`
	Analyze     string `yaml:"analyze"`
	Collaborate string `yaml:"collaborate"`
}

func (i Instructions) For(op contractx.Operation) string {
	switch op {
	case contractx.OperationAnalyze:
		return i.Analyze
	case contractx.OperationCollaborate:
		return i.Collaborate
	default:
		return i.Process
	}
}

// PromptSet maps handler names to their instructions.
type PromptSet map[contractx.HandlerName]Instructions

// LoadPromptSet parses the embedded catalogue. Safe to call concurrently.
func LoadPromptSet() (PromptSet, error) {
	return parse(handlersRaw)
}

func parse(raw []byte) (PromptSet, error) {
	var decoded map[string]Instructions
	if err := yaml.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: decode prompt catalogue: %v", contractx.ErrConfiguration, err)
	}

	set := make(PromptSet, len(decoded))
	for name, ins := range decoded {
		ins.Persona = strings.TrimSpace(ins.Persona)
		ins.Role = strings.TrimSpace(ins.Role)
		ins.Expertise = strings.TrimSpace(ins.Expertise)
		ins.Process = strings.TrimSpace(ins.Process)
		ins.Analyze = strings.TrimSpace(ins.Analyze)
		ins.Collaborate = strings.TrimSpace(ins.Collaborate)
		set[contractx.HandlerName(strings.TrimSpace(name))] = ins
	}
	return set, nil
}

// Get fails when a handler has no entry or an operation has no instruction.
func (s PromptSet) Get(name contractx.HandlerName) (Instructions, error) {
	ins, ok := s[name]
	if !ok {
		return Instructions{}, fmt.Errorf("%w: no prompts for handler=%s", contractx.ErrConfiguration, name)
	}
	var missing []string
	for _, op := range []contractx.Operation{contractx.OperationProcess, contractx.OperationAnalyze, contractx.OperationCollaborate} {
		if ins.For(op) == "" {
			missing = append(missing, fmt.Sprintf("%s.%s", name, op))
		}
	}
	if err := contractx.NewMissingConfigError(missing...); err != nil {
		return Instructions{}, err
	}
	return ins, nil
}
