package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/kailas-cloud/storeqa/internal/db"
)

// SearchKNN runs a cosine similarity search. With a floor, rows whose similarity
// (1 - cosine distance) is below it are excluded in SQL.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	query, args, err := knnSQL(q)
	if err != nil {
		return nil, err
	}
	return s.query(ctx, query, args, q.ReturnFields, true)
}

// SearchText runs a case-insensitive substring (ILIKE) search over the given fields.
func (s *Store) SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	query, args, err := textSQL(q)
	if err != nil {
		return nil, err
	}
	if query == "" {
		return &db.SearchResult{}, nil
	}
	return s.query(ctx, query, args, q.ReturnFields, false)
}

func (s *Store) query(ctx context.Context, query string, args []any, fields []string, scored bool) (*db.SearchResult, error) {
	n := len(fields)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	defer rows.Close()

	var entries []db.SearchEntry
	for rows.Next() {
		var (
			id    string
			score float64
		)
		values := make([]sql.NullString, n)
		dest := make([]any, 0, n+2)
		dest = append(dest, &id)
		for i := range values {
			dest = append(dest, &values[i])
		}
		if scored {
			dest = append(dest, &score)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, &db.Error{Op: db.OpSelect, Err: fmt.Errorf("scan: %w", err)}
		}

		entry := db.SearchEntry{Key: id, Score: score, Fields: make(map[string]string, n)}
		for i, v := range values {
			if v.Valid {
				entry.Fields[fields[i]] = v.String
			}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}

	return &db.SearchResult{Total: len(entries), Entries: entries}, nil
}

func knnSQL(q *db.KNNQuery) (string, []any, error) {
	if !db.IsValidIdentifier(q.Collection) {
		return "", nil, fmt.Errorf("invalid collection name %q", q.Collection)
	}
	if !db.IsValidIdentifier(q.VectorField) {
		return "", nil, fmt.Errorf("invalid vector field %q", q.VectorField)
	}
	if len(q.Vector) == 0 {
		return "", nil, fmt.Errorf("vector is required")
	}
	if q.K <= 0 {
		return "", nil, fmt.Errorf("k must be positive")
	}
	if q.MinSimilarity < 0 || q.MinSimilarity > 1 {
		return "", nil, fmt.Errorf("similarity floor must be within [0, 1]")
	}
	cols, err := selectColumns(q.ReturnFields)
	if err != nil {
		return "", nil, err
	}

	vec := pq.QuoteIdentifier(q.VectorField)
	distance := vec + " <=> $1::vector"
	args := []any{vectorToString(q.Vector), q.K}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s, 1 - (%s) AS similarity FROM %s", cols, distance, pq.QuoteIdentifier(q.Collection))
	if q.MinSimilarity > 0 {
		args = append(args, q.MinSimilarity)
		fmt.Fprintf(&b, " WHERE 1 - (%s) >= $3", distance)
	}
	fmt.Fprintf(&b, " ORDER BY %s LIMIT $2", distance)
	return b.String(), args, nil
}

func textSQL(q *db.TextQuery) (string, []any, error) {
	if !db.IsValidIdentifier(q.Collection) {
		return "", nil, fmt.Errorf("invalid collection name %q", q.Collection)
	}
	if len(q.Fields) == 0 {
		return "", nil, fmt.Errorf("at least one field is required")
	}
	if q.Limit <= 0 {
		return "", nil, fmt.Errorf("limit must be positive")
	}
	cols, err := selectColumns(q.ReturnFields)
	if err != nil {
		return "", nil, err
	}
	term := strings.TrimSpace(q.Term)
	if term == "" {
		return "", nil, nil
	}

	preds := make([]string, 0, len(q.Fields))
	for _, f := range q.Fields {
		if !db.IsValidIdentifier(f) {
			return "", nil, fmt.Errorf("invalid field %q", f)
		}
		preds = append(preds, pq.QuoteIdentifier(f)+" ILIKE $1")
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s LIMIT $2",
		cols, pq.QuoteIdentifier(q.Collection), strings.Join(preds, " OR "))
	return query, []any{"%" + likeEscaper.Replace(term) + "%", q.Limit}, nil
}

// selectColumns renders the id column followed by each return field cast to text.
func selectColumns(fields []string) (string, error) {
	cols := make([]string, 0, len(fields)+1)
	cols = append(cols, pq.QuoteIdentifier(idColumn))
	for _, f := range fields {
		if !db.IsValidIdentifier(f) {
			return "", fmt.Errorf("invalid return field %q", f)
		}
		cols = append(cols, pq.QuoteIdentifier(f)+"::text")
	}
	return strings.Join(cols, ", "), nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
