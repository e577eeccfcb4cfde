package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsError reports a failure while registering instruments.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewMappingMetrics", Err: "meter cannot be nil"}

// Direction values for AttrDirection.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// MappingMetrics records what the inbound and outbound engines did.
// A nil *MappingMetrics is valid and records nothing.
type MappingMetrics struct {
	rowsInserted      *Counter
	rowsUpdated       *Counter
	rowsSkipped       *Counter
	inboundFailures   *Counter
	outboundDocuments *Counter
	duration          *Histogram
}

// NewMappingMetrics registers the engine instruments on the given meter.
func NewMappingMetrics(meter metric.Meter) (*MappingMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &MappingMetrics{}
	var err error

	if m.rowsInserted, err = NewCounter(meter,
		"mapping_rows_inserted_total", "Rows inserted by inbound documents", "{row}"); err != nil {
		return nil, err
	}
	if m.rowsUpdated, err = NewCounter(meter,
		"mapping_rows_updated_total", "Rows updated by inbound documents", "{row}"); err != nil {
		return nil, err
	}
	if m.rowsSkipped, err = NewCounter(meter,
		"mapping_rows_skipped_total", "Iterator nodes skipped for having no values", "{row}"); err != nil {
		return nil, err
	}
	if m.inboundFailures, err = NewCounter(meter,
		"mapping_inbound_failures_total", "Inbound documents rejected or rolled back", "{document}"); err != nil {
		return nil, err
	}
	if m.outboundDocuments, err = NewCounter(meter,
		"mapping_outbound_documents_total", "Outbound documents rendered", "{document}"); err != nil {
		return nil, err
	}
	if m.duration, err = NewHistogram(meter, HistogramOpts{
		Name:        "mapping_document_duration_seconds",
		Description: "Time spent applying or rendering one request",
		Unit:        "s",
		Boundaries:  MappingDurationBuckets,
	}); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordInbound records a committed inbound document.
func (m *MappingMetrics) RecordInbound(ctx context.Context, iface string, inserted, updated, skipped int, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{AttrInterface.String(iface)}
	m.rowsInserted.Add(ctx, int64(inserted), attrs...)
	m.rowsUpdated.Add(ctx, int64(updated), attrs...)
	m.rowsSkipped.Add(ctx, int64(skipped), attrs...)
	m.duration.RecordDuration(ctx, elapsed, append(attrs, AttrDirection.String(DirectionInbound))...)
}

// RecordInboundFailure records a rejected or rolled back inbound document.
func (m *MappingMetrics) RecordInboundFailure(ctx context.Context, iface, code string) {
	if m == nil {
		return
	}
	m.inboundFailures.Inc(ctx, AttrInterface.String(iface), AttrErrorCode.String(code))
}

// RecordOutbound records rendered outbound documents.
func (m *MappingMetrics) RecordOutbound(ctx context.Context, iface string, documents int, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{AttrInterface.String(iface)}
	m.outboundDocuments.Add(ctx, int64(documents), attrs...)
	m.duration.RecordDuration(ctx, elapsed, append(attrs, AttrDirection.String(DirectionOutbound))...)
}
