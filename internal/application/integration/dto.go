package integration

import "github.com/wozzarvl/InterfazInAction/internal/domain/integration"

// ---------------------------------------------------------------------------
// Configuration DTOs
// ---------------------------------------------------------------------------

// ProcessResponse represents a configured process in API responses
type ProcessResponse struct {
	ProcessName    string          `json:"process_name"`
	InterfaceName  string          `json:"interface_name"`
	TargetTable    string          `json:"target_table"`
	XmlIterator    string          `json:"xml_iterator,omitempty"`
	Order          int             `json:"order"`
	Direction      string          `json:"direction"`
	XmlTemplate    string          `json:"xml_template,omitempty"`
	BodyNodeName   string          `json:"body_node_name,omitempty"`
	DetailNodeName string          `json:"detail_node_name,omitempty"`
	DetailTable    string          `json:"detail_table,omitempty"`
	Fields         []FieldResponse `json:"fields"`
}

// FieldResponse represents a field mapping in API responses
type FieldResponse struct {
	ID              int64  `json:"id"`
	XmlPath         string `json:"xml_path"`
	DbColumn        string `json:"db_column"`
	DataType        string `json:"data_type"`
	DefaultValue    string `json:"default_value,omitempty"`
	ReferenceTable  string `json:"reference_table,omitempty"`
	ReferenceColumn string `json:"reference_column,omitempty"`
	IsKey           bool   `json:"is_key"`
	IsDetailLine    bool   `json:"is_detail_line"`
}

// Direction values of ProcessResponse
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// ToProcessResponse converts a domain process to its response DTO
func ToProcessResponse(p *integration.IntegrationProcess) ProcessResponse {
	direction := DirectionInbound
	if p.IsOutbound() {
		direction = DirectionOutbound
	}
	resp := ProcessResponse{
		ProcessName:    p.ProcessName,
		InterfaceName:  p.InterfaceName,
		TargetTable:    p.TargetTable,
		XmlIterator:    p.XmlIterator,
		Order:          p.Order,
		Direction:      direction,
		XmlTemplate:    p.XmlTemplate,
		BodyNodeName:   p.BodyNodeName,
		DetailNodeName: p.DetailNodeName,
		DetailTable:    p.DetailTable,
		Fields:         make([]FieldResponse, len(p.Fields)),
	}
	for i, f := range p.Fields {
		resp.Fields[i] = FieldResponse{
			ID:              f.ID,
			XmlPath:         f.XmlPath,
			DbColumn:        f.DbColumn,
			DataType:        string(f.DataType),
			DefaultValue:    f.DefaultValue,
			ReferenceTable:  f.ReferenceTable,
			ReferenceColumn: f.ReferenceColumn,
			IsKey:           f.IsKey,
			IsDetailLine:    f.IsDetailLine,
		}
	}
	return resp
}

// ToProcessResponses converts a list of domain processes
func ToProcessResponses(processes []integration.IntegrationProcess) []ProcessResponse {
	out := make([]ProcessResponse, len(processes))
	for i := range processes {
		out[i] = ToProcessResponse(&processes[i])
	}
	return out
}
