package postgres

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/kailas-cloud/storeqa/internal/db"
)

// Upsert inserts or replaces records by id inside one transaction.
func (s *Store) Upsert(ctx context.Context, collection string, records []db.Record) error {
	if len(records) == 0 {
		return nil
	}
	if !db.IsValidIdentifier(collection) {
		return fmt.Errorf("invalid collection name %q", collection)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &db.Error{Op: db.OpUpsert, Err: fmt.Errorf("begin tx: %w", err)}
	}
	defer func() { _ = tx.Rollback() }()

	for i := range records {
		query, args, err := upsertSQL(collection, &records[i])
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return &db.Error{Op: db.OpUpsert, Err: fmt.Errorf("id %s: %w", records[i].ID, err)}
		}
	}

	if err := tx.Commit(); err != nil {
		return &db.Error{Op: db.OpUpsert, Err: fmt.Errorf("commit: %w", err)}
	}
	return nil
}

// upsertSQL renders one INSERT ... ON CONFLICT statement. Columns are emitted in sorted order
// so the statement text is stable for identical field sets.
func upsertSQL(table string, rec *db.Record) (string, []any, error) {
	if rec.ID == "" {
		return "", nil, fmt.Errorf("id is required")
	}

	names := make([]string, 0, len(rec.Fields))
	for name := range rec.Fields {
		if !db.IsValidIdentifier(name) || name == idColumn {
			return "", nil, fmt.Errorf("invalid field name %q", name)
		}
		names = append(names, name)
	}
	slices.Sort(names)

	cols := []string{pq.QuoteIdentifier(idColumn)}
	vals := []string{"$1"}
	args := []any{rec.ID}
	for _, name := range names {
		args = append(args, rec.Fields[name])
		cols = append(cols, pq.QuoteIdentifier(name))
		vals = append(vals, "$"+strconv.Itoa(len(args)))
	}
	if len(rec.Vector) > 0 && rec.VectorField != "" {
		if !db.IsValidIdentifier(rec.VectorField) {
			return "", nil, fmt.Errorf("invalid vector field %q", rec.VectorField)
		}
		args = append(args, vectorToString(rec.Vector))
		cols = append(cols, pq.QuoteIdentifier(rec.VectorField))
		vals = append(vals, "$"+strconv.Itoa(len(args))+"::vector")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s)",
		pq.QuoteIdentifier(table), strings.Join(cols, ", "), strings.Join(vals, ", "), pq.QuoteIdentifier(idColumn))
	if len(cols) == 1 {
		b.WriteString(" DO NOTHING")
		return b.String(), args, nil
	}

	sets := make([]string, 0, len(cols)-1)
	for _, c := range cols[1:] {
		sets = append(sets, c+" = EXCLUDED."+c)
	}
	b.WriteString(" DO UPDATE SET " + strings.Join(sets, ", "))
	return b.String(), args, nil
}

// vectorToString converts a float32 slice to pgvector text format: [0.1,0.2,0.3].
func vectorToString(v []float32) string {
	parts := make([]string, len(v))
	for i, val := range v {
		parts[i] = strconv.FormatFloat(float64(val), 'g', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
