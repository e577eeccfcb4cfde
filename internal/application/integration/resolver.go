package integration

import (
	"strings"
	"time"

	"github.com/antchfx/xmlquery"
	"github.com/wozzarvl/InterfazInAction/internal/domain/integration"
	"github.com/wozzarvl/InterfazInAction/internal/infrastructure/xmldoc"
)

// resolveInbound turns one field into a typed value at node.
// Missing elements and parse failures end as the null marker.
func resolveInbound(f *integration.IntegrationField, node *xmlquery.Node, now time.Time) integration.Value {
	if f.DataType.IsCurrentTimestamp() {
		return integration.NewValue(now)
	}
	if f.XmlPath == "" {
		return integration.Coerce(f.DefaultValue, f.DataType)
	}

	path := integration.ParseFieldPath(f.XmlPath)
	value := extract(node, path.Extract)

	if path.HasRule() {
		// only a matched target is a template; unmatched values pass through as read
		if mapped, ok := integration.ParseMappingRule(path.Rule).Apply(value); ok {
			value = mapped
			if integration.IsTemplate(value) {
				value = integration.ExpandTemplate(value, xmldoc.Lookup(node))
			}
		}
	}

	if value == "" && f.DefaultValue != "" {
		value = f.DefaultValue
	}
	return integration.Coerce(value, f.DataType)
}

func extract(node *xmlquery.Node, path string) string {
	if strings.TrimSpace(path) == "" {
		return ""
	}
	if integration.IsTemplate(path) {
		return integration.ExpandTemplate(path, xmldoc.Lookup(node))
	}
	value, _ := xmldoc.Navigate(node, path)
	return value
}
