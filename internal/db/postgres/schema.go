package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/kailas-cloud/storeqa/internal/db"
)

// idColumn is the primary key of every collection table.
const idColumn = "id"

// CreateIndex creates the collection table and, for a vector field, an HNSW cosine index.
// An existing table yields db.ErrIndexExists.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	stmts, err := createTableSQL(def)
	if err != nil {
		return err
	}

	for i, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			if i > 0 || pqCode(err) != codeDuplicateTable {
				return &db.Error{Op: db.OpCreateTable, Err: err}
			}
			return db.ErrIndexExists
		}
	}
	return nil
}

// DropIndex drops the collection table.
func (s *Store) DropIndex(ctx context.Context, name string) error {
	if !db.IsValidIdentifier(name) {
		return fmt.Errorf("invalid collection name %q", name)
	}
	if _, err := s.db.ExecContext(ctx, "DROP TABLE "+pq.QuoteIdentifier(name)); err != nil {
		if pqCode(err) == codeUndefinedTable {
			return db.ErrIndexNotFound
		}
		return &db.Error{Op: db.OpDropTable, Err: err}
	}
	return nil
}

// IndexExists reports whether the collection table exists.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, "SELECT to_regclass($1) IS NOT NULL", name).Scan(&exists)
	if err != nil {
		return false, &db.Error{Op: db.OpTableInfo, Err: err}
	}
	return exists, nil
}

// createTableSQL renders the DDL for a collection: CREATE TABLE first, then one HNSW index
// per vector field. The vector extension itself is created by WaitForReady.
func createTableSQL(def *db.IndexDefinition) ([]string, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}

	table := pq.QuoteIdentifier(def.Name)
	cols := []string{pq.QuoteIdentifier(idColumn) + " text PRIMARY KEY"}
	var post []string

	for _, f := range def.Fields {
		if f.Name == idColumn {
			return nil, fmt.Errorf("field name %q is reserved", idColumn)
		}
		col := pq.QuoteIdentifier(f.Name)
		switch f.Type {
		case db.IndexFieldText, db.IndexFieldTag:
			cols = append(cols, col+" text")
		case db.IndexFieldNumeric:
			cols = append(cols, col+" double precision")
		case db.IndexFieldVector:
			cols = append(cols, fmt.Sprintf("%s vector(%d)", col, f.VectorDim))
			post = append(post, vectorIndexSQL(def.Name, f))
		default:
			return nil, fmt.Errorf("unknown field type for %s", f.Name)
		}
	}

	create := fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(cols, ", "))
	return append([]string{create}, post...), nil
}

func vectorIndexSQL(table string, f db.IndexField) string {
	ops := "vector_cosine_ops"
	switch f.VectorDistance {
	case db.DistanceL2:
		ops = "vector_l2_ops"
	case db.DistanceIP:
		ops = "vector_ip_ops"
	}

	var with []string
	if f.VectorM > 0 {
		with = append(with, fmt.Sprintf("m = %d", f.VectorM))
	}
	if f.VectorEFConstruct > 0 {
		with = append(with, fmt.Sprintf("ef_construction = %d", f.VectorEFConstruct))
	}

	stmt := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s USING hnsw (%s %s)",
		pq.QuoteIdentifier(table+"_"+f.Name+"_hnsw"),
		pq.QuoteIdentifier(table),
		pq.QuoteIdentifier(f.Name),
		ops,
	)
	if len(with) > 0 {
		stmt += " WITH (" + strings.Join(with, ", ") + ")"
	}
	return stmt
}

func createKVTableSQL() string {
	return "CREATE EXTENSION IF NOT EXISTS vector; " +
		"CREATE TABLE IF NOT EXISTS " + pq.QuoteIdentifier(kvTable) +
		" (key text PRIMARY KEY, value bytea NOT NULL, expires_at timestamptz)"
}
