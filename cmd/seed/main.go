// Seed tool: creates the demo admin and user accounts plus a few published posts.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/content-service/internal/config"
	"github.com/spec-kit/content-service/internal/observability"
	"github.com/spec-kit/content-service/internal/persistence"
	"github.com/spec-kit/content-service/internal/repository"
	"github.com/spec-kit/content-service/internal/seed"
	"github.com/spec-kit/content-service/internal/service"
	"github.com/spec-kit/content-service/internal/storage"
)

func main() {
	var reset bool
	var migrate bool
	flag.BoolVar(&reset, "reset", false, "delete all posts and users before seeding")
	flag.BoolVar(&migrate, "migrate", true, "apply migrations before seeding")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.Postgres.DSN == "" {
		log.Fatal("POSTGRES_DSN is required for seeding")
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	pool := pg.PoolHandle()

	if migrate {
		if err := persistence.RunMigrations(ctx, pool, cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}
	if reset {
		if _, err := pool.Exec(ctx, `TRUNCATE posts, users`); err != nil {
			logger.Fatal("failed to reset tables", zap.Error(err))
		}
		logger.Warn("existing posts and users removed")
	}

	objects, err := storage.NewLocalStore(cfg.Storage)
	if err != nil {
		logger.Fatal("failed to prepare object store", zap.Error(err))
	}
	users := repository.NewUserRepository(pool)
	posts := service.NewPostService(service.PostDependencies{
		PostRepo:    repository.NewPostRepository(pool),
		UserRepo:    users,
		ObjectStore: objects,
		Logger:      logger,
	})

	start := time.Now()
	res, err := seed.NewSeeder(users, posts, cfg.Auth.BcryptCost, logger).Run(ctx)
	if err != nil {
		logger.Fatal("seed failed", zap.Error(err))
	}
	logger.Info("seed complete",
		zap.Int("users_created", res.UsersCreated),
		zap.Int("posts_created", res.PostsCreated),
		zap.Duration("elapsed", time.Since(start)))
}
