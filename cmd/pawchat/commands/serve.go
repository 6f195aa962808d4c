package commands

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pawchat-ai/pawchat/internal/chat"
	"github.com/pawchat-ai/pawchat/internal/config"
	"github.com/pawchat-ai/pawchat/internal/event"
	"github.com/pawchat-ai/pawchat/internal/logging"
	"github.com/pawchat-ai/pawchat/internal/prompt"
	"github.com/pawchat-ai/pawchat/internal/provider"
	"github.com/pawchat-ai/pawchat/internal/server"
	"github.com/pawchat-ai/pawchat/internal/storage"
	"github.com/pawchat-ai/pawchat/pkg/types"
)

var (
	servePort int
	serveDir  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the PawChat HTTP server",
	Long: `Start the PawChat chatbot backend. The server exposes the chat API,
persists sessions in a local document store, and streams lifecycle
events over SSE.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&serveDir, "directory", "", "Working directory for project-level configuration")
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logging.Component("serve")

	// Local .env files are a development convenience; absence is fine.
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}

	workDir := serveDir
	if workDir == "" {
		var err error
		workDir, err = os.Getwd()
		if err != nil {
			return err
		}
	}

	log.Info().Str("version", Version).Str("directory", workDir).Msg("starting pawchat server")

	paths := config.GetPaths()
	if err := paths.EnsurePaths(); err != nil {
		return err
	}

	cfg, err := config.Load(workDir)
	if err != nil {
		return err
	}

	store := chat.NewStore(storage.New(paths.StoragePath()))

	prompts, watcher, err := loadPrompts(cfg.PromptsPath)
	if err != nil {
		return err
	}
	if watcher != nil {
		watcher.Start()
		defer watcher.Stop()
	}

	generator := buildGenerator(cmd.Context(), cfg)

	bus := event.NewBus()
	defer bus.Close()

	engine := chat.NewEngine(store, generator, prompts, bus)

	serverConfig := server.DefaultConfig()
	serverConfig.Port = servePort
	srv := server.New(serverConfig, engine, bus)

	go func() {
		log.Info().Int("port", servePort).Msg("server listening")
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logging.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	log.Info().Msg("server stopped")
	return nil
}

// loadPrompts builds the prompt library, seeded from the override file when
// one is configured, plus a watcher that hot reloads it.
func loadPrompts(path string) (*prompt.Library, *prompt.Watcher, error) {
	if path == "" {
		return prompt.NewLibrary(), nil, nil
	}

	library, err := prompt.NewLibraryFromFile(path)
	if err != nil {
		return nil, nil, err
	}

	watcher, err := prompt.NewWatcher(library, path)
	if err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("prompt hot reload unavailable")
		return library, nil, nil
	}
	return library, watcher, nil
}

// buildGenerator selects the default provider and wraps it with the retry
// policy. A nil return means no provider is configured; the engine then
// serves fallback texts only.
func buildGenerator(ctx context.Context, cfg *types.Config) provider.Generator {
	registry, err := provider.InitializeProviders(ctx, cfg)
	if err != nil {
		logging.Warn().Err(err).Msg("provider initialization failed")
		return nil
	}

	p, err := registry.Default()
	if err != nil {
		logging.Warn().Msg("no LLM provider configured, serving fallback texts")
		return nil
	}

	retryCfg := provider.DefaultRetryConfig()
	if cfg.GenerationTimeoutSeconds > 0 {
		retryCfg.Timeout = time.Duration(cfg.GenerationTimeoutSeconds) * time.Second
	}

	logging.Info().Str("provider", p.ID()).Msg("using LLM provider")
	return provider.WithRetry(p, retryCfg)
}
