package integration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
	"github.com/google/uuid"
	"github.com/wozzarvl/InterfazInAction/internal/domain/integration"
	"github.com/wozzarvl/InterfazInAction/internal/domain/shared"
	"github.com/wozzarvl/InterfazInAction/internal/infrastructure/logger"
	"github.com/wozzarvl/InterfazInAction/internal/infrastructure/telemetry"
	"github.com/wozzarvl/InterfazInAction/internal/infrastructure/xmldoc"
	"go.uber.org/zap"
)

// ProcessResult counts what one process did during an inbound call
type ProcessResult struct {
	ProcessName string `json:"process_name"`
	TargetTable string `json:"target_table"`
	Nodes       int    `json:"nodes"`
	Inserted    int    `json:"inserted"`
	Updated     int    `json:"updated"`
	Unchanged   int    `json:"unchanged"`
	Skipped     int    `json:"skipped"`
}

// ApplyResult summarizes one committed inbound call
type ApplyResult struct {
	InterfaceName string          `json:"interface_name"`
	Processes     []ProcessResult `json:"processes"`
	Inserted      int             `json:"inserted"`
	Updated       int             `json:"updated"`
	Skipped       int             `json:"skipped"`
}

type nodeOutcome int

const (
	outcomeSkipped nodeOutcome = iota
	outcomeInserted
	outcomeUpdated
	outcomeUnchanged
)

// inboundPlan is a validated process with its compiled iterator
type inboundPlan struct {
	process  *integration.IntegrationProcess
	iterator *xpath.Expr
}

// InboundService applies inbound ERP documents to the configured target tables
type InboundService struct {
	processes integration.ProcessReader
	tables    integration.TableGateway
	guard     integration.IdentifierGuard
	logger    *zap.Logger
	archive   integration.PayloadArchive
	metrics   *telemetry.MappingMetrics
	now       func() time.Time
}

// NewInboundService creates a new InboundService
func NewInboundService(
	processes integration.ProcessReader,
	tables integration.TableGateway,
	guard integration.IdentifierGuard,
	log *zap.Logger,
) *InboundService {
	if log == nil {
		log = zap.NewNop()
	}
	return &InboundService{
		processes: processes,
		tables:    tables,
		guard:     guard,
		logger:    log,
		now:       time.Now,
	}
}

// SetPayloadArchive sets the archive receiving committed payloads
func (s *InboundService) SetPayloadArchive(archive integration.PayloadArchive) {
	s.archive = archive
}

// SetMappingMetrics sets the metrics recorder
func (s *InboundService) SetMappingMetrics(m *telemetry.MappingMetrics) {
	s.metrics = m
}

// ApplyInboundXML applies xmlContent to every process of interfaceName in one
// transaction and returns the number of inserted rows. Updated rows are not counted.
func (s *InboundService) ApplyInboundXML(ctx context.Context, interfaceName, xmlContent string) (int, error) {
	result, err := s.Apply(ctx, interfaceName, xmlContent)
	if err != nil {
		return 0, err
	}
	return result.Inserted, nil
}

// Apply is ApplyInboundXML returning the per-process counts
func (s *InboundService) Apply(ctx context.Context, interfaceName, xmlContent string) (result *ApplyResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "InboundService", "Apply",
		telemetry.WithAttribute(telemetry.SpanAttrInterface, interfaceName),
		telemetry.WithAttribute(telemetry.SpanAttrPayloadBytes, len(xmlContent)),
	)
	defer span.End()

	start := s.now()
	ctx, log := logger.ForInterface(ctx, s.logger, interfaceName)

	defer func() {
		if err == nil {
			return
		}
		telemetry.RecordError(span, err)
		s.metrics.RecordInboundFailure(ctx, interfaceName, errorCode(err))
		log.Error("Inbound document rejected", zap.Error(err))
	}()

	processes, err := s.processes.FindByInterface(ctx, interfaceName)
	if err != nil {
		return nil, err
	}

	plans, err := s.plan(processes)
	if err != nil {
		return nil, err
	}

	doc, err := xmldoc.ParseString(xmlContent)
	if err != nil {
		return nil, integration.ErrMalformedInput.Wrap(err)
	}

	result = &ApplyResult{InterfaceName: interfaceName}
	err = s.tables.WithinTransaction(ctx, func(ctx context.Context, w integration.TableWriter) error {
		for _, plan := range plans {
			pr, err := s.applyProcess(ctx, w, doc, plan)
			if err != nil {
				return err
			}
			result.Processes = append(result.Processes, pr)
			result.Inserted += pr.Inserted
			result.Updated += pr.Updated
			result.Skipped += pr.Skipped
		}
		return nil
	})
	if err != nil {
		var de *shared.DomainError
		if !errors.As(err, &de) {
			err = integration.NewPersistenceFailure(err)
		}
		return nil, err
	}

	elapsed := s.now().Sub(start)
	s.metrics.RecordInbound(ctx, interfaceName, result.Inserted, result.Updated, result.Skipped, elapsed)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrRowsInserted, result.Inserted,
		telemetry.SpanAttrRowsUpdated, result.Updated,
		telemetry.SpanAttrRowsSkipped, result.Skipped,
	)
	telemetry.SetOK(span)

	log.Info("Inbound document committed",
		zap.Int("inserted", result.Inserted),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
		zap.Duration("elapsed", elapsed),
	)

	s.archivePayload(ctx, log, interfaceName, xmlContent)
	return result, nil
}

// plan validates every process before the document is touched
func (s *InboundService) plan(processes []integration.IntegrationProcess) ([]inboundPlan, error) {
	plans := make([]inboundPlan, 0, len(processes))
	for i := range processes {
		p := &processes[i]
		if err := p.ValidateInbound(s.guard); err != nil {
			return nil, err
		}
		iterator, err := xmldoc.Compile(p.XmlIterator)
		if err != nil {
			return nil, integration.ErrConfigurationInvalid.Wrap(fmt.Errorf("process %s: %w", p.ProcessName, err))
		}
		plans = append(plans, inboundPlan{process: p, iterator: iterator})
	}
	return plans, nil
}

func (s *InboundService) applyProcess(ctx context.Context, w integration.TableWriter, doc *xmldoc.Document, plan inboundPlan) (ProcessResult, error) {
	p := plan.process
	pr := ProcessResult{ProcessName: p.ProcessName, TargetTable: p.TargetTable}

	nodes := doc.Select(plan.iterator)
	pr.Nodes = len(nodes)
	if len(nodes) == 0 {
		return pr, nil
	}

	ctx, span := telemetry.StartSpan(ctx, "inbound.process",
		telemetry.WithAttribute(telemetry.SpanAttrProcess, p.ProcessName),
		telemetry.WithAttribute(telemetry.SpanAttrTargetTable, p.TargetTable),
		telemetry.WithAttribute(telemetry.SpanAttrRecordCount, len(nodes)),
	)
	defer span.End()

	for _, node := range nodes {
		outcome, err := s.applyNode(ctx, w, p, node)
		if err != nil {
			telemetry.RecordError(span, err)
			return pr, err
		}
		switch outcome {
		case outcomeInserted:
			pr.Inserted++
		case outcomeUpdated:
			pr.Updated++
		case outcomeUnchanged:
			pr.Unchanged++
		default:
			pr.Skipped++
		}
	}

	s.log(ctx).Debug("Process applied",
		zap.String("process", p.ProcessName),
		zap.String("table", p.TargetTable),
		zap.Int("nodes", pr.Nodes),
		zap.Int("inserted", pr.Inserted),
		zap.Int("updated", pr.Updated),
		zap.Int("skipped", pr.Skipped),
	)
	return pr, nil
}

// applyNode resolves every field at node in ID order and writes one row.
// A key resolving to null abandons the node; reference rows written for
// earlier fields stay in the transaction.
func (s *InboundService) applyNode(ctx context.Context, w integration.TableWriter, p *integration.IntegrationProcess, node *xmlquery.Node) (nodeOutcome, error) {
	now := s.now()
	var columns, keys, set []integration.Column

	for i := range p.Fields {
		f := &p.Fields[i]
		v := resolveInbound(f, node, now)
		if v.IsNull() {
			if f.IsKey {
				return outcomeSkipped, nil
			}
			continue
		}

		if f.HasDependency() {
			mainColumn, extraColumn := f.ReferenceColumns()
			if err := w.UpsertDependency(ctx, f.ReferenceTable, mainColumn, extraColumn, v.Interface(), now); err != nil {
				return outcomeSkipped, err
			}
		}

		c := integration.Column{Name: f.DbColumn, Value: v.Interface()}
		columns = append(columns, c)
		if f.IsKey {
			keys = append(keys, c)
		} else {
			set = append(set, c)
		}
	}

	if len(columns) == 0 {
		return outcomeSkipped, nil
	}

	if len(keys) > 0 {
		exists, err := w.Exists(ctx, p.TargetTable, keys)
		if err != nil {
			return outcomeSkipped, err
		}
		if exists {
			if len(set) == 0 {
				return outcomeUnchanged, nil
			}
			if err := w.Update(ctx, p.TargetTable, set, keys); err != nil {
				return outcomeSkipped, err
			}
			return outcomeUpdated, nil
		}
	}

	if err := w.Insert(ctx, p.TargetTable, columns); err != nil {
		return outcomeSkipped, err
	}
	return outcomeInserted, nil
}

func (s *InboundService) archivePayload(ctx context.Context, log *zap.Logger, interfaceName, xmlContent string) {
	if s.archive == nil {
		return
	}
	key := archiveKey("inbound", interfaceName, uuid.NewString(), s.now())
	if err := s.archive.Archive(ctx, key, []byte(xmlContent)); err != nil {
		log.Warn("Failed to archive inbound payload", zap.String("key", key), zap.Error(err))
	}
}

func (s *InboundService) log(ctx context.Context) *zap.Logger {
	return contextLogger(ctx, s.logger)
}

// contextLogger prefers the request logger carried by ctx
func contextLogger(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if _, ok := logger.Lookup(ctx); ok {
		return logger.L(ctx)
	}
	return fallback
}

// archiveKey builds "<direction>/<name>/<yyyy>/<mm>/<dd>/<stamp>-<id>.xml"
func archiveKey(direction, name, id string, at time.Time) string {
	at = at.UTC()
	return fmt.Sprintf("%s/%s/%s/%s-%s.xml", direction, name, at.Format("2006/01/02"), at.Format("150405.000"), id)
}

// errorCode returns the domain code of err, or "UNKNOWN"
func errorCode(err error) string {
	var de *shared.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return "UNKNOWN"
}
