package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"civictrack-be/config"
	"civictrack-be/repositories"
	"civictrack-be/services"
	"civictrack-be/utils"
)

// app holds the connections and services every command shares.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	location *time.Location
	mongo    *mongo.Client
	redis    *redis.Client
	repo     *repositories.Repository
	tokens   *utils.TokenManager
	svc      *services.Service
}

func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := config.NewLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", cfg.Timezone, err)
	}

	client, db, err := config.ConnectDB(ctx, &cfg.Mongo, logger)
	if err != nil {
		return nil, err
	}

	if err := repositories.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ensure indexes: %w", err)
	}

	rdb, err := config.ConnectRedis(ctx, &cfg.Redis, logger)
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	repo := repositories.NewRepository(db)
	tokens := utils.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	svc := services.NewService(repo, services.Options{
		Tokens:     tokens,
		Google:     services.NewGoogleVerifier(cfg.Auth.GoogleClientID),
		Classifier: services.NewGroqClassifier(cfg.Groq.APIKey, cfg.Groq.BaseURL, cfg.Groq.Model, logger),
		Location:   loc,
	}, logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		location: loc,
		mongo:    client,
		redis:    rdb,
		repo:     repo,
		tokens:   tokens,
		svc:      svc,
	}, nil
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis client", zap.Error(err))
		}
	}
	if err := a.mongo.Disconnect(ctx); err != nil {
		a.logger.Warn("failed to disconnect from MongoDB", zap.Error(err))
	}
	_ = a.logger.Sync()
}
