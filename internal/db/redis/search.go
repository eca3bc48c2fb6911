package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/storeqa/internal/db"
)

const scoreField = "__vector_score"

// minInfixLen is the shortest term Redis expands in an infix wildcard.
const minInfixLen = 2

// SearchKNN runs a vector similarity search via FT.SEARCH. With a similarity floor it issues a
// VECTOR_RANGE query (radius = 1 - floor over cosine distance) sorted by distance and limited to K;
// without one it issues a plain KNN query.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if q.Collection == "" {
		return nil, fmt.Errorf("collection is required")
	}
	if q.VectorField == "" {
		return nil, fmt.Errorf("vector field is required")
	}
	if len(q.Vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}
	if q.K <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}
	if q.MinSimilarity < 0 || q.MinSimilarity > 1 {
		return nil, fmt.Errorf("similarity floor must be within [0, 1]")
	}

	var queryStr string
	var params []string
	if q.MinSimilarity > 0 {
		queryStr = fmt.Sprintf("@%s:[VECTOR_RANGE $RADIUS $BLOB]=>{$YIELD_DISTANCE_AS: %s}", q.VectorField, scoreField)
		radius := strconv.FormatFloat(math.Round((1-q.MinSimilarity)*1e6)/1e6, 'f', -1, 64)
		params = []string{"PARAMS", "4", "RADIUS", radius, "BLOB", vectorToBytes(q.Vector)}
	} else {
		queryStr = fmt.Sprintf("*=>[KNN %d @%s $BLOB AS %s]", q.K, q.VectorField, scoreField)
		params = []string{"PARAMS", "2", "BLOB", vectorToBytes(q.Vector)}
	}

	args := []string{q.Collection, queryStr}

	if len(q.ReturnFields) > 0 {
		fields := append(append([]string{}, q.ReturnFields...), scoreField)
		args = append(args, "RETURN", strconv.Itoa(len(fields)))
		args = append(args, fields...)
	}

	args = append(args,
		"SORTBY", scoreField, "ASC",
		"LIMIT", "0", strconv.Itoa(q.K),
	)
	args = append(args, params...)
	args = append(args, "DIALECT", "2")

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseKNNResult(raw, s.collectionPrefix(q.Collection), q.MinSimilarity)
}

// SearchText runs a case-insensitive substring search via an infix wildcard over TEXT fields.
// Terms shorter than two characters after sanitizing match nothing.
func (s *Store) SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if q.Collection == "" {
		return nil, fmt.Errorf("collection is required")
	}
	if len(q.Fields) == 0 {
		return nil, fmt.Errorf("at least one field is required")
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	term := sanitizeTerm(q.Term)
	if len(term) < minInfixLen {
		return &db.SearchResult{}, nil
	}

	queryStr := fmt.Sprintf("@%s:(*%s*)", strings.Join(q.Fields, "|"), term)
	args := []string{q.Collection, queryStr}

	if len(q.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(q.ReturnFields)))
		args = append(args, q.ReturnFields...)
	}

	args = append(args,
		"LIMIT", "0", strconv.Itoa(q.Limit),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return parseListResult(raw, s.collectionPrefix(q.Collection))
}

// --- Result parsing ---

func parseKNNResult(raw []rueidis.RedisMessage, prefix string, floor float64) (*db.SearchResult, error) {
	res, err := parseListResult(raw, prefix)
	if err != nil {
		return nil, err
	}

	kept := res.Entries[:0]
	for _, entry := range res.Entries {
		if scoreStr, ok := entry.Fields[scoreField]; ok {
			if d, err := strconv.ParseFloat(scoreStr, 64); err == nil {
				entry.Score = max(0, 1.0-d) // cosine distance → similarity, clamped to [0,1]
			}
			delete(entry.Fields, scoreField)
		}
		// float32 distance rounding can put a boundary row just under the floor
		if floor > 0 && entry.Score < floor-1e-6 {
			continue
		}
		kept = append(kept, entry)
	}
	res.Entries = kept
	return res, nil
}

func parseListResult(raw []rueidis.RedisMessage, prefix string) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, total)
	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		entries = append(entries, db.SearchEntry{
			Key:    strings.TrimPrefix(key, prefix),
			Fields: parseFieldPairs(fields),
		})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Query helpers ---

// sanitizeTerm lowercases the term and keeps letters and digits only, so nothing in it
// can be read as query syntax.
func sanitizeTerm(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
