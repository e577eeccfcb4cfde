package integration

import (
	"context"

	"github.com/wozzarvl/InterfazInAction/internal/domain/integration"
	"go.uber.org/zap"
)

// ConfigurationService exposes the mapping configuration read-only
type ConfigurationService struct {
	processes integration.ProcessReader
	logger    *zap.Logger
}

// NewConfigurationService creates a new ConfigurationService
func NewConfigurationService(processes integration.ProcessReader, log *zap.Logger) *ConfigurationService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ConfigurationService{processes: processes, logger: log}
}

// ListProcesses returns every configured process with its fields
func (s *ConfigurationService) ListProcesses(ctx context.Context) ([]ProcessResponse, error) {
	processes, err := s.processes.FindAll(ctx)
	if err != nil {
		contextLogger(ctx, s.logger).Error("Failed to list processes", zap.Error(err))
		return nil, err
	}
	return ToProcessResponses(processes), nil
}

// GetInterface returns the processes of one interface in evaluation order
func (s *ConfigurationService) GetInterface(ctx context.Context, interfaceName string) ([]ProcessResponse, error) {
	processes, err := s.processes.FindByInterface(ctx, interfaceName)
	if err != nil {
		return nil, err
	}
	return ToProcessResponses(processes), nil
}
