package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wozzarvl/InterfazInAction/internal/application/integration"
	"github.com/wozzarvl/InterfazInAction/internal/interfaces/http/dto"
	"github.com/wozzarvl/InterfazInAction/internal/interfaces/http/middleware"
)

// InboundApplier applies inbound documents
type InboundApplier interface {
	Apply(ctx context.Context, interfaceName, xmlContent string) (*integration.ApplyResult, error)
}

// OutboundRenderer renders outbound documents
type OutboundRenderer interface {
	RenderOutboundXML(ctx context.Context, name string, recordIDs []int64) (map[int64]string, error)
}

// IntegrationHandler exposes the inbound and outbound engines
type IntegrationHandler struct {
	BaseHandler
	inbound  InboundApplier
	outbound OutboundRenderer
	now      func() time.Time
}

// NewIntegrationHandler creates a new IntegrationHandler
func NewIntegrationHandler(inbound InboundApplier, outbound OutboundRenderer) *IntegrationHandler {
	return &IntegrationHandler{
		inbound:  inbound,
		outbound: outbound,
		now:      time.Now,
	}
}

// ReceiveInbound godoc
// @ID           receiveInboundDocument
// @Summary      Apply an inbound ERP document
// @Description  Maps the raw XML body into the target tables configured for the interface, in one transaction
// @Tags         integration
// @Accept       xml
// @Produce      json
// @Param        interfaceName path string true "Interface name, e.g. MMI019"
// @Success      200 {object} dto.Response{data=dto.InboundResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /integration/{interfaceName} [post]
func (h *IntegrationHandler) ReceiveInbound(c *gin.Context) {
	interfaceName := c.Param(middleware.InterfaceParam)
	body, ok := h.ReadBody(c)
	if !ok {
		return
	}

	result, err := h.inbound.Apply(c.Request.Context(), interfaceName, body)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.NewInboundResponse(result, h.now()))
}

// RenderOutbound godoc
// @ID           renderOutboundDocuments
// @Summary      Render outbound ERP documents
// @Description  Renders one XML document per header record id; ids without a row are omitted
// @Tags         integration
// @Accept       json
// @Produce      json
// @Param        interfaceName path string true "Process or interface name"
// @Param        request body dto.OutboundRequest true "Record ids"
// @Success      200 {object} dto.Response{data=dto.OutboundResponse}
// @Failure      400 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /integration/{interfaceName}/outbound [post]
func (h *IntegrationHandler) RenderOutbound(c *gin.Context) {
	interfaceName := c.Param(middleware.InterfaceParam)

	var req dto.OutboundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, err.Error())
		return
	}

	documents, err := h.outbound.RenderOutboundXML(c.Request.Context(), interfaceName, req.RecordIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.OutboundResponse{
		InterfaceName: interfaceName,
		Documents:     documents,
	})
}
