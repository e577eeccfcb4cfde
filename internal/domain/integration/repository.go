package integration

import (
	"context"
	"time"
)

// ProcessReader loads mapping configuration. Every call reads the store; nothing is cached.
type ProcessReader interface {
	// FindByInterface returns the processes of an interface ordered by Order,
	// each with its fields ordered by ID. ErrConfigurationNotFound when none exist.
	FindByInterface(ctx context.Context, interfaceName string) ([]IntegrationProcess, error)
	// FindOutbound returns the process named name, or else the first templated
	// process of the interface named name. ErrConfigurationNotFound when none exist.
	FindOutbound(ctx context.Context, name string) (*IntegrationProcess, error)
	// FindAll returns every configured process with its fields
	FindAll(ctx context.Context) ([]IntegrationProcess, error)
}

// ProcessWriter stores mapping configuration
type ProcessWriter interface {
	Save(ctx context.Context, process *IntegrationProcess) error
}

// ProcessRepository combines configuration reads and writes
type ProcessRepository interface {
	ProcessReader
	ProcessWriter
}

// Column is a column name bound to a value
type Column struct {
	Name  string
	Value any
}

// TableWriter issues dynamic statements against target tables.
// Implementations run every call on the same transaction.
type TableWriter interface {
	// Exists reports whether a row matches every key column
	Exists(ctx context.Context, table string, keys []Column) (bool, error)
	Insert(ctx context.Context, table string, columns []Column) error
	Update(ctx context.Context, table string, set []Column, keys []Column) error
	// UpsertDependency inserts a reference row, doing nothing when mainColumn already holds value.
	// extraColumn is optional and receives the same value.
	UpsertDependency(ctx context.Context, table, mainColumn, extraColumn string, value any, now time.Time) error
}

// TableGateway runs dynamic SQL against configured target tables
type TableGateway interface {
	// WithinTransaction runs fn on one transaction, committing when fn returns nil
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, w TableWriter) error) error
	// SelectIn returns the rows of table whose column is one of values,
	// ordered by column then by primary key id
	SelectIn(ctx context.Context, table, column string, values []int64) ([]Row, error)
}

// IdentifierGuard validates table and column names taken from configuration
// before they are interpolated into SQL
type IdentifierGuard interface {
	CheckTable(name string) error
	CheckColumn(name string) error
}

// PayloadArchive stores processed documents for audit. Implementations are best effort.
type PayloadArchive interface {
	Archive(ctx context.Context, key string, body []byte) error
}
