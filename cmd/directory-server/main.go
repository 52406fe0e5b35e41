// cmd/directory-server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"provider-directory/internal/api"
	"provider-directory/internal/common/camunda"
	"provider-directory/internal/common/config"
	"provider-directory/internal/common/logger"
	"provider-directory/internal/common/observability"
	"provider-directory/internal/common/ratelimit"

	hcq "provider-directory/internal/workers/ai-conversation/handle-chat-query"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.WithError(err).Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	log, zapLog := logger.FromConfig(cfg.Logging)
	defer zapLog.Sync()
	log = log.WithFields(map[string]interface{}{"service": cfg.App.Name, "version": cfg.App.Version})

	log.Info("starting directory server", map[string]interface{}{"environment": cfg.App.Environment})
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		return err
	}
	defer obs.Shutdown(context.Background())

	ctx := context.Background()

	infra, err := connect(ctx, cfg, pingWithBackoff(log), log)
	if err != nil {
		return err
	}
	defer func() {
		if err := infra.Close(); err != nil {
			log.WithError(err).Error("error closing connections", nil)
		}
	}()

	workerCfg := config.GetWorkerConfig(cfg, hcq.TaskType)
	chat := hcq.NewHandler(
		hcq.LoadConfigFrom(cfg.Chat, config.GetDuration(workerCfg.Timeout)),
		infra.store,
		log,
	)

	// --- Optional Zeebe worker ---
	var jobWorker worker.JobWorker
	if cfg.Camunda.Enabled {
		zeebe, err := camunda.Connect(ctx, cfg.Camunda, camunda.DefaultRetryConfig)
		if err != nil {
			return err
		}
		infra.deps = append(infra.deps, zeebe)
		log.Info("Zeebe client connected successfully", nil)

		jobWorker = camunda.StartWorker(zeebe.Zeebe(), hcq.TaskType, workerCfg, chat, log)
	}
	router, err := api.NewRouter(api.Dependencies{
		Server:        cfg.Server,
		Chat:          chat,
		Limiter:       ratelimit.New(cfg.RateLimit, infra.redis),
		Observability: obs,
		Readiness:     infra.deps,
		Logger:        log,
	})
	if err != nil {
		return err
	}
	srv := api.NewServer(cfg.Server, router)

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", map[string]interface{}{"address": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", map[string]interface{}{"signal": sig.String()})
	case err := <-serveErr:
		if err != nil {
			log.WithError(err).Error("HTTP server failed", nil)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if jobWorker != nil {
		jobWorker.Close()
		jobWorker.AwaitClose()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown failed", nil)
	}

	zapLog.Info("directory server stopped gracefully", zap.String("service", cfg.App.Name))
	return nil
}
