package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"civictrack-be/controllers"
	"civictrack-be/routes"
	"civictrack-be/scheduler"
	"civictrack-be/storage"
)

const shutdownTimeout = 30 * time.Second

var withoutScheduler bool

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long:  `Start the HTTP API together with the monthly suggestion scheduler.`,
		RunE:  runServe,
	}

	cmd.Flags().BoolVar(&withoutScheduler, "no-scheduler", false, "Do not run the monthly suggestion jobs in this process")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	var uploader *storage.Uploader
	if a.cfg.Storage.Endpoint != "" {
		store, err := storage.NewMinioStore(ctx, a.cfg.Storage, a.logger)
		if err != nil {
			return fmt.Errorf("failed to connect to object storage: %w", err)
		}
		uploader = storage.NewUploader(store)
	} else {
		a.logger.Warn("MINIO_ENDPOINT not set, attachment uploads are disabled")
	}

	checks := map[string]controllers.HealthCheck{
		"mongo": func(ctx context.Context) error { return a.mongo.Ping(ctx, readpref.Primary()) },
		"redis": nil,
	}
	if a.redis != nil {
		checks["redis"] = func(ctx context.Context) error { return a.redis.Ping(ctx).Err() }
	}

	ctrl := controllers.NewController(a.svc, controllers.Options{
		Cookie: controllers.CookieSettings{
			Domain:     a.cfg.Domain,
			Production: a.cfg.IsProduction(),
			TTL:        a.cfg.Auth.TokenTTL,
		},
		Uploader: uploader,
		Checks:   checks,
	}, a.logger)

	router := routes.Setup(routes.Deps{
		Config:     a.cfg,
		Controller: ctrl,
		Tokens:     a.tokens,
		Users:      a.repo.Users,
		Redis:      a.redis,
		Logger:     a.logger,
	})

	if !withoutScheduler {
		sched, err := scheduler.New(a.svc.Suggestions, a.location, a.logger)
		if err != nil {
			return fmt.Errorf("failed to create scheduler: %w", err)
		}
		if err := sched.RegisterSuggestionJobs(); err != nil {
			return fmt.Errorf("failed to register scheduled jobs: %w", err)
		}
		sched.Start()
		defer func() {
			if err := sched.Stop(); err != nil {
				a.logger.Error("failed to stop scheduler", zap.Error(err))
			}
		}()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", zap.String("address", srv.Addr), zap.String("env", a.cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	a.logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server forced to shutdown", zap.Error(err))
		return err
	}
	a.logger.Info("server exited gracefully")
	return nil
}
