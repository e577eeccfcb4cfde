package dto

import (
	"time"

	"github.com/wozzarvl/InterfazInAction/internal/application/integration"
)

// InboundResponse is returned after an inbound document is committed
type InboundResponse struct {
	InterfaceName     string                      `json:"interface_name"`
	TotalRowsInserted int                         `json:"total_rows_inserted"`
	TotalRowsUpdated  int                         `json:"total_rows_updated"`
	TotalRowsSkipped  int                         `json:"total_rows_skipped"`
	Processes         []integration.ProcessResult `json:"processes"`
	Timestamp         time.Time                   `json:"timestamp"`
}

// NewInboundResponse converts an apply result
func NewInboundResponse(r *integration.ApplyResult, at time.Time) InboundResponse {
	return InboundResponse{
		InterfaceName:     r.InterfaceName,
		TotalRowsInserted: r.Inserted,
		TotalRowsUpdated:  r.Updated,
		TotalRowsSkipped:  r.Skipped,
		Processes:         r.Processes,
		Timestamp:         at,
	}
}

// OutboundRequest selects the header rows to render
type OutboundRequest struct {
	RecordIDs []int64 `json:"record_ids" binding:"omitempty,dive,gt=0"`
}

// OutboundResponse maps each rendered record id to its XML document
type OutboundResponse struct {
	InterfaceName string           `json:"interface_name"`
	Documents     map[int64]string `json:"documents"`
}
