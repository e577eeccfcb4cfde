package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/wozzarvl/InterfazInAction/internal/domain/integration"
	"github.com/wozzarvl/InterfazInAction/internal/infrastructure/persistence/dynsql"
	"gorm.io/gorm"
)

// errUnkeyedUpdate rejects an UPDATE that would touch every row of a table
var errUnkeyedUpdate = errors.New("update without key columns")

// GormTableGateway implements integration.TableGateway with raw statements
// built by dynsql. Identifiers must have passed the guard before reaching it.
type GormTableGateway struct {
	db *gorm.DB
}

// NewGormTableGateway creates a new GormTableGateway
func NewGormTableGateway(db *gorm.DB) *GormTableGateway {
	return &GormTableGateway{db: db}
}

// WithinTransaction runs fn on one transaction. Any error from fn rolls back
// every statement it issued.
func (g *GormTableGateway) WithinTransaction(ctx context.Context, fn func(ctx context.Context, w integration.TableWriter) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &gormTableWriter{tx: tx})
	})
}

// SelectIn returns the rows of table whose column is one of values
func (g *GormTableGateway) SelectIn(ctx context.Context, table, column string, values []int64) ([]integration.Row, error) {
	if len(values) == 0 {
		return nil, nil
	}
	stmt := dynsql.SelectIn(table, column, values)

	var results []map[string]any
	if err := g.db.WithContext(ctx).Raw(stmt.SQL, stmt.Args...).Scan(&results).Error; err != nil {
		return nil, integration.NewPersistenceFailure(err)
	}

	rows := make([]integration.Row, len(results))
	for i, r := range results {
		rows[i] = integration.Row(r)
	}
	return rows, nil
}

// gormTableWriter issues statements on a single transaction
type gormTableWriter struct {
	tx *gorm.DB
}

func (w *gormTableWriter) Exists(ctx context.Context, table string, keys []integration.Column) (bool, error) {
	stmt := dynsql.Count(table, keys)
	var count int64
	if err := w.tx.WithContext(ctx).Raw(stmt.SQL, stmt.Args...).Scan(&count).Error; err != nil {
		return false, integration.NewPersistenceFailure(err)
	}
	return count > 0, nil
}

func (w *gormTableWriter) Insert(ctx context.Context, table string, columns []integration.Column) error {
	return w.exec(ctx, dynsql.Insert(table, columns))
}

func (w *gormTableWriter) Update(ctx context.Context, table string, set []integration.Column, keys []integration.Column) error {
	if len(keys) == 0 {
		return integration.NewPersistenceFailure(errUnkeyedUpdate)
	}
	stmt, ok := dynsql.Update(table, set, keys)
	if !ok {
		return nil
	}
	return w.exec(ctx, stmt)
}

func (w *gormTableWriter) UpsertDependency(ctx context.Context, table, mainColumn, extraColumn string, value any, now time.Time) error {
	return w.exec(ctx, dynsql.DependencyUpsert(table, mainColumn, extraColumn, value, now))
}

func (w *gormTableWriter) exec(ctx context.Context, stmt dynsql.Statement) error {
	if err := w.tx.WithContext(ctx).Exec(stmt.SQL, stmt.Args...).Error; err != nil {
		return integration.NewPersistenceFailure(err)
	}
	return nil
}

// Ensure GormTableGateway implements the interface
var _ integration.TableGateway = (*GormTableGateway)(nil)
