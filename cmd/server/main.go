package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/carsuggester/vehiclesearch/api"
	"github.com/carsuggester/vehiclesearch/catalog"
	"github.com/carsuggester/vehiclesearch/config"
	"github.com/carsuggester/vehiclesearch/core"
	"github.com/carsuggester/vehiclesearch/core/query"
	"github.com/carsuggester/vehiclesearch/core/rank"
	"github.com/carsuggester/vehiclesearch/core/suggest"
	"github.com/carsuggester/vehiclesearch/history"
)

func main() {
	// Parse command line flags
	var (
		configPath  = flag.String("config", "", "Path to configuration file (default: ~/.vehiclesearch.yml)")
		host        = flag.String("host", "", "Host to listen on (overrides config)")
		port        = flag.Int("port", 0, "Port to listen on (overrides config)")
		catalogType = flag.String("catalog", "", "Catalog backend: memory, bolt, badger, elastic (overrides config)")
		catalogPath = flag.String("path", "", "Catalog database path (overrides config)")
	)
	flag.Parse()

	// Load optional .env before reading environment overrides
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override with command-line flags
	if *host != "" {
		cfg.Server.Host = *host
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *catalogType != "" {
		cfg.Catalog.Type = catalog.StoreType(*catalogType)
	}
	if *catalogPath != "" {
		cfg.Catalog.Path = *catalogPath
	}

	logger, err := buildLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting vehiclesearch",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("catalog", string(cfg.Catalog.Type)),
	)

	// Catalog
	store, err := catalog.NewStore(cfg.Catalog)
	if err != nil {
		logger.Fatal("failed to create catalog store", zap.Error(err))
	}
	defer store.Close()

	// Reference data for parsing and suggestions
	ref := query.DefaultReferenceData()
	if cfg.Search.ReferencePath != "" {
		ref, err = query.LoadReferenceData(cfg.Search.ReferencePath)
		if err != nil {
			logger.Warn("failed to load reference data, parsing degrades to keyword matching",
				zap.String("path", cfg.Search.ReferencePath), zap.Error(err))
			ref = nil
		}
	}

	// Ranking pipeline
	weights := rank.DefaultScoringWeights()
	if cfg.Search.Weights != nil {
		weights = *cfg.Search.Weights
	}
	parser := query.NewParser(ref)
	ranker := rank.NewRanker(parser, rank.NewScorer(weights), rank.NewFilterEngine())

	// Suggestion generator over the current catalog contents
	vehicles, err := store.ListVehicles(context.Background())
	if err != nil {
		logger.Fatal("failed to list vehicles for suggestion index", zap.Error(err))
	}
	generator := suggest.NewGenerator(suggest.IndexFromVehicles(vehicles), ref)

	// Search history
	var hist core.SearchHistory
	switch cfg.History.Type {
	case "bolt":
		boltHist, err := history.NewBoltHistory(cfg.History.Path)
		if err != nil {
			logger.Fatal("failed to open history store", zap.Error(err))
		}
		defer boltHist.Close()
		hist = boltHist
	default:
		hist = history.NewMemoryHistory()
	}

	// Trending store
	var trending suggest.TrendingStore
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		trending = suggest.NewRedisTrending(client, "")
		logger.Info("trending suggestions backed by redis", zap.String("addr", cfg.Redis.Addr))
	} else {
		var phrases []string
		if ref != nil {
			phrases = ref.NLExamples
		}
		trending = suggest.NewStaticTrending(phrases)
	}

	server := api.NewServer(store, ranker, generator, hist, trending, cfg.Server.ToServerConfig(), logger)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}

func buildLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zapCfg.Level = level

	if cfg.Output != "" && cfg.Output != "stdout" {
		zapCfg.OutputPaths = []string{cfg.Output}
	}

	return zapCfg.Build()
}
