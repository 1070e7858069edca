package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shoplens/shopsearch/internal/config"
	"github.com/shoplens/shopsearch/internal/db"
	dbBolt "github.com/shoplens/shopsearch/internal/db/bolt"
	dbRedis "github.com/shoplens/shopsearch/internal/db/redis"
	"github.com/shoplens/shopsearch/internal/domain"
	logpkg "github.com/shoplens/shopsearch/internal/logger"
	catalogrepo "github.com/shoplens/shopsearch/internal/repository/catalog"
	"github.com/shoplens/shopsearch/internal/repository/embcache"
	openaiEmb "github.com/shoplens/shopsearch/internal/transport/openai"
	embeddinguc "github.com/shoplens/shopsearch/internal/usecase/embedding"
	"github.com/shoplens/shopsearch/internal/usecase/ingest"
	"github.com/shoplens/shopsearch/internal/version"
)

var (
	envName   string
	batchSize int
	cfg       config.Config
	logger    *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:     "catalogctl",
	Short:   "Manage the product catalog: import, seed, and re-embed",
	Version: fmt.Sprintf("%s (%s)", version.Version, version.Commit),
	Long: `catalogctl loads products into the search catalog and maintains
their embedding vectors.

Example usage:
  catalogctl import products.csv   # Import a CSV export
  catalogctl seed                  # Load the built-in demo catalog
  catalogctl reembed               # Regenerate all stored embeddings`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envName == "" {
			envName = config.GetEnv()
		}

		var err error
		cfg, err = config.Load(envName)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger, err = logpkg.NewLogger(envName, cfg.Logging.Level)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&envName, "env", "e", "", "config environment (default is ENV or local)")
	rootCmd.PersistentFlags().IntVar(&batchSize, "batch-size", ingest.DefaultBatchSize, "products embedded per provider call")
}

// openStore connects to the configured database and waits for readiness.
func openStore() (db.Store, error) {
	var (
		store db.Store
		err   error
	)
	switch cfg.Database.Driver {
	case "redis":
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
	case "bolt":
		store, err = dbBolt.NewStore(dbBolt.Config{
			Path: cfg.Database.Path,
		})
	default:
		return nil, fmt.Errorf("unknown database driver: %s", cfg.Database.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create database store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	return store, nil
}

// newIngestService wires the embedder chain and catalog repository for one run.
func newIngestService(store db.Store) *ingest.Service {
	catalog := catalogrepo.New(store, cfg.Storage.KeyPrefix)
	embedder := buildEmbedder(store)
	return ingest.New(catalog, asBatchEmbedder(embedder), logger).WithBatchSize(batchSize)
}

// buildEmbedder assembles the same decorator chain the API server uses, so
// imports populate the cache the server reads from.
func buildEmbedder(store db.Store) domain.Embedder {
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Timeout:    time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		Logger:     logger,
	})

	var embedder domain.Embedder = base
	if store != nil {
		embedder = embcache.New(
			base, store, cfg.Storage.KeyPrefix,
			time.Duration(cfg.Embedding.CacheTTLSec)*time.Second,
			nil, logger,
		)
	}

	embedder = embeddinguc.NewInstrumentedEmbedder(
		embedder, cfg.Embedding.Provider, cfg.Embedding.Model, logger,
	)

	if cfg.Embedding.Instruction != "" {
		return domain.NewInstructionEmbedder(embedder, cfg.Embedding.Instruction)
	}
	return embedder
}

// batchAdapter exposes the BatchEmbed contract over any embedder.
type batchAdapter struct {
	inner domain.Embedder
}

func (a batchAdapter) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if be, ok := a.inner.(domain.BatchEmbedder); ok {
		return be.BatchEmbed(ctx, texts)
	}
	return domain.BatchFallback(ctx, a.inner, texts)
}

func asBatchEmbedder(e domain.Embedder) ingest.BatchEmbedder {
	if be, ok := e.(ingest.BatchEmbedder); ok {
		return be
	}
	return batchAdapter{inner: e}
}
