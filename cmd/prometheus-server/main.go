// prometheus-server is the central multi-tenant server: it owns every
// configured instance's OCR record store and vector index, exposes the
// JSON-RPC tool surface over HTTP, and serves the chat UI.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/memexlabs/prometheus/pkg/api"
	"github.com/memexlabs/prometheus/pkg/audit"
	"github.com/memexlabs/prometheus/pkg/auth"
	"github.com/memexlabs/prometheus/pkg/chat"
	"github.com/memexlabs/prometheus/pkg/config"
	"github.com/memexlabs/prometheus/pkg/instance"
	"github.com/memexlabs/prometheus/pkg/llm"
	"github.com/memexlabs/prometheus/pkg/ratelimit"
	"github.com/memexlabs/prometheus/pkg/rpc"
	"github.com/memexlabs/prometheus/pkg/validator"
	"github.com/memexlabs/prometheus/pkg/vectorindex"

	"github.com/gin-gonic/gin"
)

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func main() {
	envPath := flag.String("env-file", getEnv("ENV_FILE", "./.env"), "Path to .env file")
	flag.Parse()

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load(*envPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	log.Info().Strs("instances", cfg.Instances).Msg("configuration loaded")

	authStore, err := auth.Load(cfg.APIKeysPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load api keys")
	}

	auditLog, err := audit.Open(cfg.LogDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open audit log")
	}
	defer auditLog.Close()

	chromaBaseURL := cfg.ChromaBaseURL()
	manager, err := instance.NewManager(cfg.DataBaseDir, cfg.PagesDir, cfg.Instances, func(collection string) vectorindex.Index {
		return vectorindex.NewHTTPClient(chromaBaseURL, collection)
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build instance manager")
	}

	var aiValidator *validator.Validator
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		validatorModel := getEnv("VALIDATOR_MODEL", "claude-3-5-haiku-latest")
		validatorLLM := validator.NewAnthropicLLM(apiKey, validatorModel, log)
		aiValidator, err = validator.New(validatorLLM, cfg.SecurityPolicyPath, validator.DefaultTimeout, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load security policy")
		}
		log.Info().Msg("AI tool-call validator enabled")
	} else {
		log.Warn().Msg("ANTHROPIC_API_KEY not set, tool-call validation disabled")
	}

	dispatcher := rpc.NewDispatcher(aiValidator, auditLog)

	var chatProvider llm.ChatProvider
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		chatModel := getEnv("CHAT_MODEL", "claude-sonnet-4-5")
		chatProvider = llm.NewAnthropicProvider(apiKey, chatModel, log)
	} else {
		log.Warn().Msg("ANTHROPIC_API_KEY not set, chat endpoint will report errors")
	}

	chatStore := chat.NewStore()
	orchestrator := chat.NewOrchestrator(chatStore, chatProvider, manager, cfg.PagesDir, log)

	sweeper := chat.NewSweeper(chatStore, 5*time.Minute, log)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sweeper.Start(ctx)
	defer sweeper.Stop()

	limiter := ratelimit.New()

	deps := api.Deps{
		Instances:    manager,
		Auth:         authStore,
		RateLimiter:  limiter,
		Audit:        auditLog,
		Dispatcher:   dispatcher,
		Orchestrator: orchestrator,
		ChatStore:    chatStore,
		DataBaseDir:  cfg.DataBaseDir,
		PagesDir:     cfg.PagesDir,
		LogDir:       cfg.LogDir,
		StartedAt:    time.Now(),
		Log:          log,
	}

	gin.SetMode(getEnv("GIN_MODE", "release"))
	router := api.NewRouter(deps)

	log.Info().Str("addr", cfg.ListenAddr()).Msg("starting prometheus-server")
	if err := router.Run(cfg.ListenAddr()); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
