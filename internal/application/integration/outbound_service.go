package integration

import (
	"context"
	"encoding/xml"
	"strconv"
	"strings"
	"time"

	"github.com/wozzarvl/InterfazInAction/internal/domain/integration"
	"github.com/wozzarvl/InterfazInAction/internal/infrastructure/logger"
	"github.com/wozzarvl/InterfazInAction/internal/infrastructure/telemetry"
	"github.com/wozzarvl/InterfazInAction/internal/infrastructure/xmldoc"
	"go.uber.org/zap"
)

// headerIDColumn is the primary key read from header rows
const headerIDColumn = "id"

// OutboundService renders relational rows into ERP XML documents
type OutboundService struct {
	processes  integration.ProcessReader
	tables     integration.TableGateway
	guard      integration.IdentifierGuard
	generators integration.Generators
	logger     *zap.Logger
	archive    integration.PayloadArchive
	metrics    *telemetry.MappingMetrics
}

// NewOutboundService creates a new OutboundService
func NewOutboundService(
	processes integration.ProcessReader,
	tables integration.TableGateway,
	guard integration.IdentifierGuard,
	generators integration.Generators,
	log *zap.Logger,
) *OutboundService {
	if log == nil {
		log = zap.NewNop()
	}
	if generators.Now == nil {
		generators.Now = time.Now
	}
	return &OutboundService{
		processes:  processes,
		tables:     tables,
		guard:      guard,
		generators: generators,
		logger:     log,
	}
}

// SetPayloadArchive sets the archive receiving rendered documents
func (s *OutboundService) SetPayloadArchive(archive integration.PayloadArchive) {
	s.archive = archive
}

// SetMappingMetrics sets the metrics recorder
func (s *OutboundService) SetMappingMetrics(m *telemetry.MappingMetrics) {
	s.metrics = m
}

// RenderOutboundXML renders one document per header row whose id is in recordIDs.
// name is a process name or an interface name. Ids without a header row are absent
// from the result.
func (s *OutboundService) RenderOutboundXML(ctx context.Context, name string, recordIDs []int64) (documents map[int64]string, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "OutboundService", "Render",
		telemetry.WithAttribute(telemetry.SpanAttrInterface, name),
		telemetry.WithAttribute(telemetry.SpanAttrRecordCount, len(recordIDs)),
	)
	defer span.End()

	start := s.generators.Now()
	ctx, log := logger.ForInterface(ctx, s.logger, name)
	defer func() {
		if err != nil {
			telemetry.RecordError(span, err)
			log.Error("Outbound render failed", zap.Error(err))
		}
	}()

	process, err := s.processes.FindOutbound(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := process.ValidateOutbound(s.guard); err != nil {
		return nil, err
	}

	documents = make(map[int64]string, len(recordIDs))
	if len(recordIDs) == 0 {
		return documents, nil
	}

	headers, err := s.tables.SelectIn(ctx, process.TargetTable, headerIDColumn, recordIDs)
	if err != nil {
		return nil, err
	}

	linesByHeader := map[int64][]integration.Row{}
	if process.HasDetail() {
		fk := process.DetailForeignKey()
		lines, err := s.tables.SelectIn(ctx, process.DetailTable, fk, recordIDs)
		if err != nil {
			return nil, err
		}
		for _, line := range lines {
			if id, ok := line.Int64(fk); ok {
				linesByHeader[id] = append(linesByHeader[id], line)
			}
		}
	}

	for _, header := range headers {
		id, ok := header.Int64(headerIDColumn)
		if !ok {
			continue
		}
		doc, err := s.render(process, header, linesByHeader[id])
		if err != nil {
			return nil, err
		}
		documents[id] = doc
	}

	elapsed := s.generators.Now().Sub(start)
	s.metrics.RecordOutbound(ctx, process.InterfaceName, len(documents), elapsed)
	telemetry.SetAttributes(span, telemetry.SpanAttrProcess, process.ProcessName)
	telemetry.SetOK(span)
	log.Info("Outbound documents rendered",
		zap.String("process", process.ProcessName),
		zap.Int("requested", len(recordIDs)),
		zap.Int("rendered", len(documents)),
		zap.Duration("elapsed", elapsed),
	)

	s.archiveDocuments(ctx, log, process.ProcessName, documents)
	return documents, nil
}

// render fills the template for one header row and its detail lines.
// Header values fall back to the first line; line values never fall back.
func (s *OutboundService) render(p *integration.IntegrationProcess, header integration.Row, lines []integration.Row) (string, error) {
	var fallback integration.Row
	if len(lines) > 0 {
		fallback = lines[0]
	}

	text := p.XmlTemplate
	for i := range p.Fields {
		f := &p.Fields[i]
		if !f.IsPlaceholder() {
			continue
		}
		value := integration.ResolveRowValue(*f, header, fallback, s.generators)
		text = strings.ReplaceAll(text, f.XmlPath, escapeText(value))
	}

	doc, err := xmldoc.ParseString(text)
	if err != nil {
		return "", integration.ErrConfigurationInvalid.Wrap(err)
	}

	if p.BodyNodeName != "" {
		if body := doc.FindElement(p.BodyNodeName); body != nil {
			for i := range p.Fields {
				f := &p.Fields[i]
				if f.IsPlaceholder() || f.IsDetailLine || strings.TrimSpace(f.XmlPath) == "" {
					continue
				}
				xmldoc.SetPath(body, f.XmlPath, integration.ResolveRowValue(*f, header, fallback, s.generators))
			}
		}
	}

	if p.DetailNodeName != "" && len(lines) > 0 {
		root := doc.Root()
		for _, line := range lines {
			el := xmldoc.AppendElement(root, p.DetailNodeName)
			for i := range p.Fields {
				f := &p.Fields[i]
				if !f.IsDetailLine || f.IsPlaceholder() || strings.TrimSpace(f.XmlPath) == "" {
					continue
				}
				xmldoc.SetPath(el, f.XmlPath, integration.ResolveRowValue(*f, line, nil, s.generators))
			}
		}
	}

	return doc.String(), nil
}

func (s *OutboundService) archiveDocuments(ctx context.Context, log *zap.Logger, processName string, documents map[int64]string) {
	if s.archive == nil {
		return
	}
	now := s.generators.Now()
	for id, doc := range documents {
		key := archiveKey("outbound", processName, strconv.FormatInt(id, 10), now)
		if err := s.archive.Archive(ctx, key, []byte(doc)); err != nil {
			log.Warn("Failed to archive outbound document", zap.String("key", key), zap.Error(err))
		}
	}
}

func escapeText(s string) string {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return s
	}
	return b.String()
}
