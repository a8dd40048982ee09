package llm

import (
	"strings"
	"time"

	contractx "github.com/tanpawarit/llm-honeypot-agents/agent/contract"
	openrouterx "github.com/tanpawarit/llm-honeypot-agents/pkg/openrouter"
)

type Provider string

const (
	ProviderOpenRouter Provider = "openrouter"
	ProviderOpenAI     Provider = "openai"
	// ProviderLocal handlers answer without an outbound call.
	ProviderLocal Provider = "local"
)

// Config is loaded with prefix AGENTS; envconfig falls back to the bare
// names (OPENROUTER_API_KEY, OPENAI_API_KEY, ...) when the prefixed ones are unset.
type Config struct {
	OpenRouterBaseURL  string        `envconfig:"OPENROUTER_BASE_URL" default:"https://openrouter.ai/api/v1"`
	OpenRouterAPIKey   string        `envconfig:"OPENROUTER_API_KEY"`
	OpenAIBaseURL      string        `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	OpenAIAPIKey       string        `envconfig:"OPENAI_API_KEY"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" default:"1024"`
	Temperature        float32       `envconfig:"TEMPERATURE" default:"0.7"`
	Timeout            time.Duration `envconfig:"TIMEOUT" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL"`
	SiteName           string        `envconfig:"SITE_NAME"`

	ArchitectModel              string `envconfig:"ARCHITECT_MODEL" default:"anthropic/claude-3-opus"`
	LLMSpecialistModel          string `envconfig:"LLM_SPECIALIST_MODEL" default:"gpt-4-turbo-preview"`
	HoneypotExpertModel         string `envconfig:"HONEYPOT_EXPERT_MODEL" default:"anthropic/claude-3-sonnet"`
	InfrastructureEngineerModel string `envconfig:"INFRASTRUCTURE_ENGINEER_MODEL" default:"cohere/command-r-plus"`
	DataScientistModel          string `envconfig:"DATA_SCIENTIST_MODEL" default:"cohere/command-r"`
}

// HandlerConfig is everything one handler needs to reach its reasoning service.
type HandlerConfig struct {
	Name               contractx.HandlerName
	Provider           Provider
	BaseURL            string
	APIKey             string
	Model              string
	MaxCompletionToken int
	Temperature        float32
	Timeout            time.Duration
	SiteURL            string
	SiteName           string
}

// ProviderFor is fixed per handler.
func ProviderFor(name contractx.HandlerName) Provider {
	switch name {
	case contractx.HandlerLLMSpecialist:
		return ProviderOpenAI
	case contractx.HandlerSecurityAnalyst:
		return ProviderLocal
	default:
		return ProviderOpenRouter
	}
}

func (c Config) For(name contractx.HandlerName) HandlerConfig {
	hc := HandlerConfig{
		Name:               name,
		Provider:           ProviderFor(name),
		MaxCompletionToken: c.MaxCompletionToken,
		Temperature:        c.Temperature,
		Timeout:            c.Timeout,
	}

	switch hc.Provider {
	case ProviderOpenRouter:
		hc.BaseURL = strings.TrimSpace(c.OpenRouterBaseURL)
		hc.APIKey = strings.TrimSpace(c.OpenRouterAPIKey)
		hc.SiteURL = strings.TrimSpace(c.SiteURL)
		hc.SiteName = strings.TrimSpace(c.SiteName)
	case ProviderOpenAI:
		hc.BaseURL = strings.TrimSpace(c.OpenAIBaseURL)
		hc.APIKey = strings.TrimSpace(c.OpenAIAPIKey)
	}

	switch name {
	case contractx.HandlerArchitect:
		hc.Model = strings.TrimSpace(c.ArchitectModel)
	case contractx.HandlerLLMSpecialist:
		hc.Model = strings.TrimSpace(c.LLMSpecialistModel)
	case contractx.HandlerHoneypotExpert:
		hc.Model = strings.TrimSpace(c.HoneypotExpertModel)
	case contractx.HandlerInfrastructureEngineer:
		hc.Model = strings.TrimSpace(c.InfrastructureEngineerModel)
	case contractx.HandlerDataScientist:
		hc.Model = strings.TrimSpace(c.DataScientistModel)
	}

	return hc
}

// Validate checks every handler at once and reports all missing values together.
func (c Config) Validate() error {
	var missing []string
	for _, name := range contractx.AllHandlers {
		missing = append(missing, c.For(name).Missing()...)
	}
	return contractx.NewMissingConfigError(missing...)
}

// Missing names the environment variables this handler still needs.
func (h HandlerConfig) Missing() []string {
	var missing []string
	switch h.Provider {
	case ProviderLocal:
		return nil
	case ProviderOpenAI:
		if strings.TrimSpace(h.APIKey) == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	default:
		if strings.TrimSpace(h.APIKey) == "" {
			missing = append(missing, "OPENROUTER_API_KEY")
		}
	}
	if strings.TrimSpace(h.Model) == "" {
		missing = append(missing, strings.ToUpper(string(h.Name))+"_MODEL")
	}
	return missing
}

func (h HandlerConfig) Validate() error {
	return contractx.NewMissingConfigError(h.Missing()...)
}

func (h HandlerConfig) OpenRouter() openrouterx.Config {
	maxCompletionToken := h.MaxCompletionToken
	baseURL := h.BaseURL
	if baseURL == "" {
		baseURL = openrouterx.DefaultBaseURL
		if h.Provider == ProviderOpenAI {
			baseURL = openrouterx.OpenAIBaseURL
		}
	}
	return openrouterx.Config{
		BaseURL:            baseURL,
		APIKey:             h.APIKey,
		Model:              h.Model,
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        h.Temperature,
		Timeout:            h.Timeout,
		SiteURL:            h.SiteURL,
		SiteName:           h.SiteName,
	}
}
