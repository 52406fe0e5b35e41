// Package api exposes the chat pipeline over HTTP.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"provider-directory/internal/common/config"
	"provider-directory/internal/common/database"
	"provider-directory/internal/common/logger"
	"provider-directory/internal/common/observability"
	"provider-directory/internal/common/ratelimit"
	"provider-directory/internal/common/validation"
)

const defaultMaxBodyBytes = 16 << 10

// Dependencies is everything the router needs.
type Dependencies struct {
	Server        config.ServerConfig
	Chat          ChatService
	Limiter       ratelimit.Limiter
	Observability *observability.Observability
	Readiness     []database.Dependency
	Logger        logger.Logger
}

func NewRouter(deps Dependencies) (*gin.Engine, error) {
	validator, err := validation.NewChatRequestValidator()
	if err != nil {
		return nil, err
	}
	if deps.Limiter == nil {
		deps.Limiter = ratelimit.Unlimited{}
	}
	if deps.Server.MaxBodyBytes <= 0 {
		deps.Server.MaxBodyBytes = defaultMaxBodyBytes
	}

	log := deps.Logger.WithFields(map[string]interface{}{"component": "http"})

	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), Telemetry(deps.Observability, log), SecurityHeaders())

	r.GET("/health", health)
	r.GET("/ready", ready(deps.Readiness))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	chat := NewChatHandler(deps.Chat, validator, deps.Logger)
	r.POST("/api/chat",
		RequestSizeLimiter(deps.Server.MaxBodyBytes),
		RateLimit(deps.Limiter, log),
		chat.Chat,
	)

	return r, nil
}

// NewServer wraps the router in an http.Server using the configured
// timeouts.
func NewServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Address(),
		Handler:           handler,
		ReadTimeout:       config.GetDuration(cfg.ReadTimeout),
		ReadHeaderTimeout: config.GetDuration(cfg.ReadTimeout),
		WriteTimeout:      config.GetDuration(cfg.WriteTimeout),
	}
}
