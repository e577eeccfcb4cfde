package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/wozzarvl/InterfazInAction/internal/application/integration"
	"github.com/wozzarvl/InterfazInAction/internal/interfaces/http/middleware"
)

// ConfigurationReader lists the mapping configuration
type ConfigurationReader interface {
	ListProcesses(ctx context.Context) ([]integration.ProcessResponse, error)
	GetInterface(ctx context.Context, interfaceName string) ([]integration.ProcessResponse, error)
}

// ConfigurationHandler exposes the mapping configuration read-only
type ConfigurationHandler struct {
	BaseHandler
	config ConfigurationReader
}

// NewConfigurationHandler creates a new ConfigurationHandler
func NewConfigurationHandler(config ConfigurationReader) *ConfigurationHandler {
	return &ConfigurationHandler{config: config}
}

// ListProcesses godoc
// @ID           listProcesses
// @Summary      List configured processes
// @Tags         configuration
// @Produce      json
// @Success      200 {object} dto.Response{data=[]integration.ProcessResponse}
// @Failure      500 {object} dto.Response
// @Router       /configuration [get]
func (h *ConfigurationHandler) ListProcesses(c *gin.Context) {
	processes, err := h.config.ListProcesses(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, processes)
}

// GetInterface godoc
// @ID           getInterfaceConfiguration
// @Summary      Get the processes of one interface in evaluation order
// @Tags         configuration
// @Produce      json
// @Param        interfaceName path string true "Interface name"
// @Success      200 {object} dto.Response{data=[]integration.ProcessResponse}
// @Failure      404 {object} dto.Response
// @Router       /configuration/{interfaceName} [get]
func (h *ConfigurationHandler) GetInterface(c *gin.Context) {
	processes, err := h.config.GetInterface(c.Request.Context(), c.Param(middleware.InterfaceParam))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, processes)
}
