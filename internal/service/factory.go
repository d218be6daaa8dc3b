package service

import (
	"github.com/shopmetrics/insights/internal/config"
	"github.com/shopmetrics/insights/internal/domain/commerce"
	"github.com/shopmetrics/insights/internal/logger"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration

	// Repositories
	CommerceRepo commerce.Repository
}

// NewServiceParams builds the shared dependency bundle for service constructors
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	commerceRepo commerce.Repository,
) ServiceParams {
	return ServiceParams{
		Logger:       logger,
		Config:       config,
		CommerceRepo: commerceRepo,
	}
}
