package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopmetrics/insights/internal/api"
	v1 "github.com/shopmetrics/insights/internal/api/v1"
	"github.com/shopmetrics/insights/internal/config"
	"github.com/shopmetrics/insights/internal/domain/commerce"
	"github.com/shopmetrics/insights/internal/logger"
	"github.com/shopmetrics/insights/internal/repository/csvstore"
	"github.com/shopmetrics/insights/internal/service"
	"github.com/shopmetrics/insights/internal/validator"
	"go.uber.org/fx"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	app := fx.New(
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Record store
			csvstore.NewStore,

			// Dataset snapshot (loaded once at startup)
			provideDataset,

			// Services
			service.NewServiceParams,
			service.NewAnalyticsService,
			service.NewDashboardService,

			// API
			v1.NewDashboardHandler,
			v1.NewHealthHandler,
			api.NewHandlers,
			provideRouter,
		),
		fx.Invoke(startServer),
	)

	app.Run()
}

func provideDataset(params service.ServiceParams) (*commerce.Dataset, error) {
	return service.LoadDataset(context.Background(), params)
}

func provideRouter(handlers api.Handlers, log *logger.Logger) *gin.Engine {
	return api.NewRouter(handlers, log)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infof("Starting API server on %s", cfg.Server.Address)
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return nil
		},
	})
}
