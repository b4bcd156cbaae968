package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/resume-coach/internal/analyzer"
	"github.com/jonathan/resume-coach/internal/chat"
	"github.com/jonathan/resume-coach/internal/config"
	"github.com/jonathan/resume-coach/internal/db"
	"github.com/jonathan/resume-coach/internal/ingestion"
	"github.com/jonathan/resume-coach/internal/llm"
	"github.com/jonathan/resume-coach/internal/server"
	"github.com/jonathan/resume-coach/internal/server/ratelimit"
	"github.com/spf13/cobra"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web shell and JSON API",
	Long: `Start an HTTP server with the upload form, the analysis report page, the JSON analysis API
and the chat API. Chat is enabled when the selected provider's API key is set.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Port = servePort
	}

	sessionConfig, err := config.NewSessionConfig()
	if err != nil {
		return fmt.Errorf("failed to load session config: %w", err)
	}
	shellAuth, err := config.NewShellAuth()
	if err != nil {
		return fmt.Errorf("failed to load shell auth: %w", err)
	}
	rateLimit, err := ratelimit.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load rate limit config: %w", err)
	}

	extractor, err := ingestion.NewExtractor(cfg.PDFBackend)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	deps := server.Deps{
		Analyzer:  analyzer.New(extractor, analyzer.Options{}),
		Sessions:  server.NewSessionService(sessionConfig),
		ShellAuth: shellAuth,
		RateLimit: rateLimit,
	}

	chats, cleanup, err := newChatRegistry(ctx, cfg)
	if err != nil {
		return err
	}
	if chats != nil {
		deps.Chats = chats
		deps.OnShutdown = append(deps.OnShutdown, cleanup)
	} else {
		log.Printf("[serve] chat disabled: no API key for provider %s", cfg.Provider())
	}

	srv, err := server.New(server.Config{Port: cfg.Port, MaxUploadBytes: cfg.MaxUploadBytes()}, deps)
	if err != nil {
		cleanup()
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

// newChatRegistry wires the completion provider and history store. It returns a nil registry
// when the provider's API key is not configured.
func newChatRegistry(ctx context.Context, cfg *config.Config) (*chat.Registry, func(), error) {
	llmConfig := cfg.LLMConfig()
	if llmConfig.APIKey == "" {
		return nil, func() {}, nil
	}

	completer, err := llm.NewCompleter(ctx, llmConfig)
	if err != nil {
		return nil, func() {}, fmt.Errorf("failed to create completion client: %w", err)
	}

	store, closeStore, err := newHistoryStore(ctx, cfg)
	if err != nil {
		_ = completer.Close()
		return nil, func() {}, err
	}

	cleanup := func() {
		closeStore()
		if err := completer.Close(); err != nil {
			log.Printf("[serve] failed to close completion client: %v", err)
		}
	}
	return chat.NewRegistry(completer, chat.NewTokenCounter(), store, cfg.ChatConfig()), cleanup, nil
}

// newHistoryStore uses Postgres when DATABASE_URL is set and per-session JSON files otherwise.
func newHistoryStore(ctx context.Context, cfg *config.Config) (chat.Store, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Printf("[serve] storing chat histories in %s", cfg.HistoryDir)
		return chat.NewFileStore(cfg.HistoryDir), func() {}, nil
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Printf("[serve] storing chat histories in Postgres")
	return db.NewChatStore(database), database.Close, nil
}
