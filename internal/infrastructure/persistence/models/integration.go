package models

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/wozzarvl/InterfazInAction/internal/domain/integration"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// IntegrationProcessModel is the persistence model for IntegrationProcess.
type IntegrationProcessModel struct {
	ProcessName    string                  `gorm:"type:varchar(50);primaryKey" validate:"required,max=50"`
	InterfaceName  string                  `gorm:"type:varchar(50);not null;index:idx_integration_process_interface,priority:1" validate:"required,max=50"`
	TargetTable    string                  `gorm:"type:varchar(100);not null" validate:"required,max=100"`
	XmlIterator    string                  `gorm:"type:varchar(200)" validate:"max=200"`
	Order          int                     `gorm:"column:process_order;not null;default:0;index:idx_integration_process_interface,priority:2" validate:"gte=0"`
	XmlTemplate    string                  `gorm:"type:text"`
	BodyNodeName   string                  `gorm:"type:varchar(100)" validate:"max=100"`
	DetailNodeName string                  `gorm:"type:varchar(100)" validate:"max=100"`
	DetailTable    string                  `gorm:"type:varchar(100)" validate:"max=100"`
	Fields         []IntegrationFieldModel `gorm:"foreignKey:ProcessName;references:ProcessName;constraint:OnDelete:CASCADE" validate:"dive"`
}

// TableName returns the table name for GORM
func (IntegrationProcessModel) TableName() string {
	return "integration_processes"
}

// IntegrationFieldModel is the persistence model for IntegrationField.
type IntegrationFieldModel struct {
	ID              int64  `gorm:"primaryKey;autoIncrement"`
	ProcessName     string `gorm:"type:varchar(50);not null;index" validate:"max=50"`
	XmlPath         string `gorm:"type:varchar(200)" validate:"max=200"`
	DbColumn        string `gorm:"type:varchar(100);not null;default:''" validate:"max=100"`
	DataType        string `gorm:"type:varchar(50);not null;default:'string'" validate:"max=50"`
	DefaultValue    string `gorm:"type:text"`
	ReferenceTable  string `gorm:"type:varchar(100)" validate:"max=100"`
	ReferenceColumn string `gorm:"type:varchar(100)" validate:"max=100"`
	IsKey           bool   `gorm:"not null;default:false"`
	IsDetailLine    bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (IntegrationFieldModel) TableName() string {
	return "integration_fields"
}

// Validate checks the stored row against the column limits and required values.
func (m *IntegrationProcessModel) Validate() error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("process %s: %w", m.ProcessName, err)
	}
	return nil
}

// ToDomain converts the persistence model to a domain IntegrationProcess with
// fields ordered by ID.
//
// Rows written before IsDetailLine existed marked outbound detail fields with a
// ReferenceTable; on a templated process such a field is read as a detail line.
func (m *IntegrationProcessModel) ToDomain() *integration.IntegrationProcess {
	p := &integration.IntegrationProcess{
		ProcessName:    m.ProcessName,
		InterfaceName:  m.InterfaceName,
		TargetTable:    m.TargetTable,
		XmlIterator:    m.XmlIterator,
		Order:          m.Order,
		XmlTemplate:    m.XmlTemplate,
		BodyNodeName:   m.BodyNodeName,
		DetailNodeName: m.DetailNodeName,
		DetailTable:    m.DetailTable,
		Fields:         make([]integration.IntegrationField, len(m.Fields)),
	}
	outbound := p.IsOutbound()
	for i := range m.Fields {
		f := m.Fields[i].ToDomain()
		if outbound && !f.IsDetailLine && strings.TrimSpace(f.ReferenceTable) != "" {
			f.IsDetailLine = true
		}
		p.Fields[i] = f
	}
	p.SortFields()
	return p
}

// FromDomain populates the persistence model from a domain IntegrationProcess.
func (m *IntegrationProcessModel) FromDomain(p *integration.IntegrationProcess) {
	m.ProcessName = p.ProcessName
	m.InterfaceName = p.InterfaceName
	m.TargetTable = p.TargetTable
	m.XmlIterator = p.XmlIterator
	m.Order = p.Order
	m.XmlTemplate = p.XmlTemplate
	m.BodyNodeName = p.BodyNodeName
	m.DetailNodeName = p.DetailNodeName
	m.DetailTable = p.DetailTable
	m.Fields = make([]IntegrationFieldModel, len(p.Fields))
	for i := range p.Fields {
		m.Fields[i].FromDomain(&p.Fields[i])
		m.Fields[i].ProcessName = p.ProcessName
	}
}

// ToDomain converts the persistence model to a domain IntegrationField.
func (m *IntegrationFieldModel) ToDomain() integration.IntegrationField {
	return integration.IntegrationField{
		ID:              m.ID,
		ProcessName:     m.ProcessName,
		XmlPath:         m.XmlPath,
		DbColumn:        m.DbColumn,
		DataType:        integration.DataType(m.DataType),
		DefaultValue:    m.DefaultValue,
		ReferenceTable:  m.ReferenceTable,
		ReferenceColumn: m.ReferenceColumn,
		IsKey:           m.IsKey,
		IsDetailLine:    m.IsDetailLine,
	}
}

// FromDomain populates the persistence model from a domain IntegrationField.
func (m *IntegrationFieldModel) FromDomain(f *integration.IntegrationField) {
	m.ID = f.ID
	m.ProcessName = f.ProcessName
	m.XmlPath = f.XmlPath
	m.DbColumn = f.DbColumn
	m.DataType = string(f.DataType)
	m.DefaultValue = f.DefaultValue
	m.ReferenceTable = f.ReferenceTable
	m.ReferenceColumn = f.ReferenceColumn
	m.IsKey = f.IsKey
	m.IsDetailLine = f.IsDetailLine
}
