package services

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/KarlaDampilag/dailysalesexpenses/internal/cache"
	"github.com/KarlaDampilag/dailysalesexpenses/internal/repositories"
)

// ServiceContainer holds all service instances
type ServiceContainer struct {
	ReportService ReportService
	LedgerService LedgerService
}

// ServiceConfig holds configuration for services
type ServiceConfig struct {
	Reports ReportConfig
	Cache   *cache.ReportCache
}

// NewServiceContainer creates a new service container with all services
func NewServiceContainer(repos *repositories.Repositories, config *ServiceConfig, logger *logrus.Logger) (*ServiceContainer, error) {
	if repos == nil {
		return nil, fmt.Errorf("repository container cannot be nil")
	}

	if config == nil {
		config = &ServiceConfig{}
	}

	return &ServiceContainer{
		ReportService: NewReportService(repos.Snapshots, repos.Sales, config.Cache, config.Reports, logger),
		LedgerService: NewLedgerService(repos, config.Cache, logger),
	}, nil
}
