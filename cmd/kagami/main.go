// Package main is the Kagami CLI entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hyperjump/kagami/internal/config"
	"github.com/hyperjump/kagami/internal/drive"
	"github.com/hyperjump/kagami/internal/embed"
	"github.com/hyperjump/kagami/internal/extract"
	"github.com/hyperjump/kagami/internal/reconcile"
	"github.com/hyperjump/kagami/internal/server"
	"github.com/hyperjump/kagami/internal/store"
	"github.com/hyperjump/kagami/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kagami/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used. When neither exists the config comes from environment variables
// alone, which is the usual production deployment.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			return config.FromEnv(), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	// A local .env is a development convenience; its absence is fine.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "bootstrap":
		runBootstrap()
	case "reindex":
		runReindex()
	case "version", "--version", "-v":
		fmt.Printf("kagami version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// components holds the wired pipeline shared by all subcommands.
type components struct {
	Store      store.Store
	Reconciler *reconcile.Reconciler
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*components, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	serviceAccount, err := cfg.ServiceAccountJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to read service account: %w", err)
	}
	provider, err := drive.NewClient(ctx, serviceAccount)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize drive client: %w", err)
	}

	st := store.NewSupabaseStore(cfg.Supabase.URL, cfg.Supabase.ServiceKey)

	var annotator embed.Annotator
	if cfg.HasEmbeddings() {
		annotator = embed.NewOpenAIAnnotator(cfg.Embedding.APIKey,
			embed.WithModel(cfg.Embedding.Model),
			embed.WithConcurrency(cfg.Embedding.MaxConcurrent),
			embed.WithCache(cfg.Embedding.CacheSize),
		)
	} else {
		annotator = embed.NewPassthrough(logger)
	}

	reconciler := reconcile.New(
		provider,
		st,
		annotator,
		cfg.Drive.RootNodeID,
		cfg.Sync.MaxTokens,
		cfg.Sync.OverlapTokens,
		reconcile.WithLogger(logger),
		reconcile.WithExtractor(extract.New()),
	)

	return &components{Store: st, Reconciler: reconciler}, nil
}

// setup is the shared subcommand preamble: flags, config, logger, components.
func setup(name string, args []string) (*config.Config, *zap.Logger, *components, *flag.FlagSet) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(args)

	cfg, resolvedPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		zap.String("config_path", resolvedPath),
		zap.Bool("debug", debugMode),
		zap.Bool("has_embeddings", cfg.HasEmbeddings()),
	)

	comps, err := initializeComponents(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	return cfg, logger, comps, fs
}

func runServer() {
	cfg, logger, comps, _ := setup("server", os.Args[2:])
	defer logger.Sync()

	srv := server.NewServer(comps.Reconciler, comps.Store, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runBootstrap() {
	cfg, logger, comps, _ := setup("bootstrap", os.Args[2:])
	defer logger.Sync()

	logger.Info("bootstrapping full tree", zap.String("root_id", cfg.Drive.RootNodeID))
	if err := comps.Reconciler.Bootstrap(context.Background()); err != nil {
		logger.Fatal("Bootstrap failed", zap.Error(err))
	}
	logger.Info("bootstrap complete")
}

func runReindex() {
	_, logger, comps, fs := setup("reindex", os.Args[2:])
	defer logger.Sync()

	if fs.NArg() < 1 {
		fmt.Println("Usage: kagami reindex [flags] <node-id>")
		os.Exit(1)
	}
	nodeID := fs.Arg(0)
	logger.Info("reindexing node", zap.String("node_id", nodeID))
	if err := comps.Reconciler.HandleChange(context.Background(), nodeID); err != nil {
		logger.Fatal("Reindex failed", zap.String("node_id", nodeID), zap.Error(err))
	}
	logger.Info("reindex complete", zap.String("node_id", nodeID))
}

func printUsage() {
	fmt.Println(`kagami - Drive-to-Supabase document mirror

Usage:
  kagami server [flags]             Start the HTTP trigger server
  kagami bootstrap [flags]          Reconcile the full tree under the configured root
  kagami reindex [flags] <node-id>  Reconcile a single node
  kagami version                    Show version
  kagami help                       Show this help

Flags:
  --config string    Config file path (default: /usr/local/etc/kagami/config.yaml)
  --debug            Enable debug logging

Configuration also comes from the environment (overriding the file):
  SUPABASE_URL, SUPABASE_SERVICE_ROLE_KEY, OPENAI_API_KEY,
  GOOGLE_SERVICE_ACCOUNT (raw or base64 JSON), KAGAMI_ROOT_NODE_ID,
  KAGAMI_TRIGGER_TOKEN, PORT, KAGAMI_DEBUG

Examples:
  kagami server
  kagami bootstrap
  kagami reindex 1AbCdEfGh`)
}
