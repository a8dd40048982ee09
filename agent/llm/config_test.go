package llm

import (
	"errors"
	"reflect"
	"testing"

	contractx "github.com/tanpawarit/llm-honeypot-agents/agent/contract"
	openrouterx "github.com/tanpawarit/llm-honeypot-agents/pkg/openrouter"
)

func fullConfig() Config {
	return Config{
		OpenRouterBaseURL:           "https://openrouter.example/api/v1",
		OpenRouterAPIKey:            "or-key",
		OpenAIBaseURL:               "https://openai.example/v1",
		OpenAIAPIKey:                "oa-key",
		MaxCompletionToken:          512,
		Temperature:                 0.7,
		ArchitectModel:              "anthropic/claude-3-opus",
		LLMSpecialistModel:          "gpt-4-turbo-preview",
		HoneypotExpertModel:         "anthropic/claude-3-sonnet",
		InfrastructureEngineerModel: "cohere/command-r-plus",
		DataScientistModel:          "cohere/command-r",
	}
}

func TestConfigValidatePasses(t *testing.T) {
	t.Parallel()

	if err := fullConfig().Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestConfigValidateListsEveryMissingValue(t *testing.T) {
	t.Parallel()

	cfg := fullConfig()
	cfg.OpenRouterAPIKey = ""
	cfg.OpenAIAPIKey = ""
	cfg.DataScientistModel = ""

	err := cfg.Validate()
	if !errors.Is(err, contractx.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}

	var missing *contractx.MissingConfigError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingConfigError, got %T", err)
	}
	want := []string{"DATA_SCIENTIST_MODEL", "OPENAI_API_KEY", "OPENROUTER_API_KEY"}
	if !reflect.DeepEqual(missing.Missing, want) {
		t.Fatalf("missing = %v, want %v", missing.Missing, want)
	}
}

func TestHandlerConfigMissingBoth(t *testing.T) {
	t.Parallel()

	hc := HandlerConfig{Name: contractx.HandlerArchitect, Provider: ProviderOpenRouter}
	got := hc.Missing()
	want := []string{"OPENROUTER_API_KEY", "ARCHITECT_MODEL"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Missing() = %v, want %v", got, want)
	}
}

func TestForRoutesProviders(t *testing.T) {
	t.Parallel()

	cfg := fullConfig()

	arch := cfg.For(contractx.HandlerArchitect)
	if arch.Provider != ProviderOpenRouter || arch.APIKey != "or-key" || arch.Model != "anthropic/claude-3-opus" {
		t.Fatalf("unexpected architect config: %#v", arch)
	}

	llmSpec := cfg.For(contractx.HandlerLLMSpecialist)
	if llmSpec.Provider != ProviderOpenAI || llmSpec.APIKey != "oa-key" || llmSpec.BaseURL != "https://openai.example/v1" {
		t.Fatalf("unexpected llm specialist config: %#v", llmSpec)
	}

	sec := cfg.For(contractx.HandlerSecurityAnalyst)
	if sec.Provider != ProviderLocal || len(sec.Missing()) != 0 {
		t.Fatalf("unexpected security config: %#v", sec)
	}

	or := arch.OpenRouter()
	if or.MaxCompletionToken == nil || *or.MaxCompletionToken != 512 {
		t.Fatalf("unexpected max completion token: %v", or.MaxCompletionToken)
	}
}

func TestOpenRouterFallsBackToProviderBaseURL(t *testing.T) {
	t.Parallel()

	or := HandlerConfig{Provider: ProviderOpenRouter}.OpenRouter()
	if or.BaseURL != openrouterx.DefaultBaseURL {
		t.Fatalf("unexpected openrouter base url: %q", or.BaseURL)
	}
	oa := HandlerConfig{Provider: ProviderOpenAI}.OpenRouter()
	if oa.BaseURL != openrouterx.OpenAIBaseURL {
		t.Fatalf("unexpected openai base url: %q", oa.BaseURL)
	}
}
