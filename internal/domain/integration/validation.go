package integration

import (
	"fmt"
	"strings"
)

// ValidateInbound checks every identifier an inbound run interpolates into SQL
func (p *IntegrationProcess) ValidateInbound(guard IdentifierGuard) error {
	if err := guard.CheckTable(p.TargetTable); err != nil {
		return p.invalid(err)
	}
	if strings.TrimSpace(p.XmlIterator) == "" {
		return p.invalid(fmt.Errorf("empty xml iterator"))
	}
	for i := range p.Fields {
		f := &p.Fields[i]
		if err := guard.CheckColumn(f.DbColumn); err != nil {
			return p.invalid(fmt.Errorf("field %d: %w", f.ID, err))
		}
		if !f.HasDependency() {
			continue
		}
		if err := guard.CheckTable(f.ReferenceTable); err != nil {
			return p.invalid(fmt.Errorf("field %d: %w", f.ID, err))
		}
		main, extra := f.ReferenceColumns()
		if err := guard.CheckColumn(main); err != nil {
			return p.invalid(fmt.Errorf("field %d: %w", f.ID, err))
		}
		if extra != "" {
			if err := guard.CheckColumn(extra); err != nil {
				return p.invalid(fmt.Errorf("field %d: %w", f.ID, err))
			}
		}
	}
	return nil
}

// ValidateOutbound checks the tables an outbound render reads from
func (p *IntegrationProcess) ValidateOutbound(guard IdentifierGuard) error {
	if !p.IsOutbound() {
		return ErrConfigurationNotFound.WithMessage(
			fmt.Sprintf("integration: process %s has no xml template", p.ProcessName))
	}
	if err := guard.CheckTable(p.TargetTable); err != nil {
		return p.invalid(err)
	}
	if p.HasDetail() {
		if err := guard.CheckTable(p.DetailTable); err != nil {
			return p.invalid(err)
		}
		if err := guard.CheckColumn(p.DetailForeignKey()); err != nil {
			return p.invalid(err)
		}
	}
	return nil
}

func (p *IntegrationProcess) invalid(cause error) error {
	return ErrConfigurationInvalid.Wrap(fmt.Errorf("process %s: %w", p.ProcessName, cause))
}
