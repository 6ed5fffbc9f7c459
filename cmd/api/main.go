package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/pageza/dietrec/backend/config"
	"github.com/pageza/dietrec/backend/internal/database"
	"github.com/pageza/dietrec/backend/internal/dataset"
	"github.com/pageza/dietrec/backend/internal/logging"
	"github.com/pageza/dietrec/backend/internal/middleware"
	"github.com/pageza/dietrec/backend/internal/router"
	"github.com/pageza/dietrec/backend/internal/server"
	"github.com/pageza/dietrec/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Caller: cfg.Log.Caller,
		Output: os.Stderr,
	})
	gin.SetMode(cfg.Environment.GinMode())
	logging.Info().
		Str("environment", string(cfg.Environment)).
		Strs("dataset_sources", cfg.Dataset.Sources).
		Bool("standardize", cfg.Recommend.Standardize).
		Msg("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := newStore(ctx, cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to configure dataset sources")
	}
	if cfg.Dataset.Preload {
		if err := store.Preload(ctx); err != nil {
			logging.Fatal().Err(err).Msg("Failed to load dataset")
		}
	}

	recommender := service.NewRecommendationService(store, service.RecommendationOptions{
		MaxNeighbors: cfg.Recommend.MaxNeighbors,
		Standardize:  cfg.Recommend.Standardize,
	})
	deps := router.Dependencies{
		Dataset:     store,
		Recommender: recommender,
		Planner:     service.NewDietPlanService(recommender, nil),
		Limiter:     newLimiter(ctx, cfg),
	}

	srv := server.New(cfg.Server, router.SetupRouter(cfg, deps))
	ln, err := net.Listen("tcp", cfg.Server.Addr())
	if err != nil {
		logging.Fatal().Err(err).Str("addr", cfg.Server.Addr()).Msg("Failed to listen")
	}
	if err := srv.Run(ctx, ln); err != nil {
		logging.Fatal().Err(err).Msg("Server error")
	}
	logging.Info().Msg("Server stopped")
}

func newStore(ctx context.Context, cfg *config.Config) (*dataset.Store, error) {
	var getter dataset.ObjectGetter
	if dataset.NeedsS3(cfg.Dataset.Sources) {
		client, err := config.NewS3Client(ctx, cfg.AWS)
		if err != nil {
			return nil, err
		}
		getter = client
	}
	sources, err := dataset.ParseSources(cfg.Dataset.Sources, getter)
	if err != nil {
		return nil, err
	}
	return dataset.NewStore(dataset.NewLoader(sources...), cfg.Dataset.LoadTimeout), nil
}

// newLimiter prefers the shared Redis limiter and falls back to a local one
// when Redis is not configured or unreachable.
func newLimiter(ctx context.Context, cfg *config.Config) middleware.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	rlCfg := middleware.RateLimitConfig{
		Window: cfg.RateLimit.Window,
		Limit:  cfg.RateLimit.Requests,
		Burst:  cfg.RateLimit.Burst,
	}

	if cfg.Redis.Enabled() {
		client, err := database.NewRedisClient(ctx, cfg.Redis)
		if err == nil {
			return middleware.NewRateLimiter(client, rlCfg)
		}
		logging.Warn().Err(err).Msg("Redis unavailable, using in-process rate limiting")
	}
	return middleware.NewLocalRateLimiter(rlCfg)
}
