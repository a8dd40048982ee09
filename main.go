package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	orchestratorx "github.com/tanpawarit/llm-honeypot-agents/agent/agents/orchestrator"
	"github.com/tanpawarit/llm-honeypot-agents/agent/agents/specialist"
	contractx "github.com/tanpawarit/llm-honeypot-agents/agent/contract"
	dispatchx "github.com/tanpawarit/llm-honeypot-agents/agent/dispatch"
	llmx "github.com/tanpawarit/llm-honeypot-agents/agent/llm"
	"github.com/tanpawarit/llm-honeypot-agents/agent/transport/httpapi"
	"github.com/tanpawarit/llm-honeypot-agents/agent/transport/mcptool"
	workerx "github.com/tanpawarit/llm-honeypot-agents/agent/worker"
	configx "github.com/tanpawarit/llm-honeypot-agents/pkg/config"
	logx "github.com/tanpawarit/llm-honeypot-agents/pkg/logger"
)

const (
	transportHTTP = "http"
	transportMCP  = "mcp"
)

type AppConfig struct {
	Transport      string        `envconfig:"TRANSPORT" default:"http"`
	Listen         string        `envconfig:"LISTEN" default:"127.0.0.1:8000"`
	AllowedOrigins []string      `envconfig:"ALLOWED_ORIGINS" default:"*"`
	DrainTimeout   time.Duration `envconfig:"DRAIN_TIMEOUT" default:"30s"`
	workerx.Config
}

func main() {
	appCfg := configx.MustNew[AppConfig]("APP")
	logCfg := configx.MustNew[logx.Config]("LOG")
	if strings.EqualFold(appCfg.Transport, transportMCP) {
		logCfg.Stderr = true
	}
	logx.Init(*logCfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *appCfg); err != nil {
		stop()
		log.Fatal().Err(err).Msg("llm honeypot agents stopped")
	}
}

func run(ctx context.Context, appCfg AppConfig) error {
	agentsCfg, err := configx.New[llmx.Config]("AGENTS")
	if err != nil {
		var missing *contractx.MissingConfigError
		if errors.As(err, &missing) {
			log.Error().Strs("missing", missing.Missing).Msg("handler credentials are incomplete")
		}
		return err
	}

	registry, err := specialist.NewRegistry(ctx, *agentsCfg)
	if err != nil {
		return fmt.Errorf("build handler registry: %w", err)
	}

	dispatcher, err := dispatchx.New(registry)
	if err != nil {
		return fmt.Errorf("build dispatcher: %w", err)
	}

	runner := workerx.New(appCfg.Config)
	runner.Start()
	defer func() {
		drainCtx, cancel := context.WithTimeout(context.Background(), appCfg.DrainTimeout)
		defer cancel()
		if err := runner.Stop(drainCtx); err != nil {
			log.Warn().Err(err).Msg("background analyses still running at shutdown")
		}
	}()

	analyzer, err := orchestratorx.New(dispatcher, runner, orchestratorx.LogSink{})
	if err != nil {
		return fmt.Errorf("build orchestrator: %w", err)
	}

	log.Info().
		Str("transport", appCfg.Transport).
		Interface("handlers", registry.Names()).
		Msg("handlers registered")

	switch strings.ToLower(strings.TrimSpace(appCfg.Transport)) {
	case transportHTTP:
		srv, err := httpapi.New(httpapi.Config{
			Listen:         appCfg.Listen,
			AllowedOrigins: appCfg.AllowedOrigins,
		}, dispatcher, analyzer, registry)
		if err != nil {
			return err
		}
		return srv.Start(ctx)
	case transportMCP:
		return mcptool.Serve(ctx, mcptool.NewServer(dispatcher, analyzer, registry), os.Stdin, os.Stdout)
	default:
		return fmt.Errorf("unsupported transport %q: want %s or %s", appCfg.Transport, transportHTTP, transportMCP)
	}
}
