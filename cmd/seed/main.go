package main

import (
	"context"
	"flag"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/penline/core/internal/config"
	"github.com/penline/core/internal/database"
	"github.com/penline/core/internal/modules/content/category"
	"github.com/penline/core/internal/pkg/metrics"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigPath, "Path to YAML config file")
	reset := flag.Bool("reset", false, "Delete existing categories before seeding")
	flag.Parse()

	_ = godotenv.Load()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	st, err := database.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer st.Close(ctx)

	n, err := category.NewService(st, logger, metrics.New()).Seed(ctx, *reset)
	if err != nil {
		logger.Fatal("seeding failed", zap.Error(err), zap.Int("created", n))
	}
	logger.Info("categories seeded", zap.Int("created", n), zap.Bool("reset", *reset))
}
