package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/aaravmahajanofficial/art-storefront/internal/config"
	"github.com/aaravmahajanofficial/art-storefront/internal/migrate"
	repository "github.com/aaravmahajanofficial/art-storefront/internal/repositories"
)

func main() {

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(slog.String("component", "migrate"))
	slog.SetDefault(logger)

	cfg := config.MustLoad()

	repos, err := repository.New(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer repos.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := migrate.Apply(ctx, repos.DB); err != nil {
		slog.Error("❌ Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("✅ Migrations applied")
}
