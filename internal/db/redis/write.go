package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/storeqa/internal/db"
)

// Upsert stores records as hashes under the collection prefix in a single DoMulti round-trip.
// HSET overwrites fields in place, so re-ingesting a page replaces its row.
func (s *Store) Upsert(ctx context.Context, collection string, records []db.Record) error {
	if len(records) == 0 {
		return nil
	}
	if !db.IsValidIdentifier(collection) {
		return fmt.Errorf("invalid collection name %q", collection)
	}

	prefix := s.collectionPrefix(collection)
	cmds := make([]rueidis.Completed, 0, len(records))
	for i := range records {
		rec := &records[i]
		if rec.ID == "" {
			return fmt.Errorf("record %d: id is required", i)
		}
		cmd := s.b().Hset().Key(prefix + rec.ID).FieldValue()
		for k, v := range rec.Fields {
			cmd = cmd.FieldValue(k, v)
		}
		if len(rec.Vector) > 0 && rec.VectorField != "" {
			cmd = cmd.FieldValue(rec.VectorField, vectorToBytes(rec.Vector))
		}
		cmds = append(cmds, cmd.Build())
	}

	results := s.client.DoMulti(ctx, cmds...)
	for i, res := range results {
		if err := res.Error(); err != nil {
			return &db.Error{Op: db.OpHSet, Err: fmt.Errorf("key %s: %w", prefix+records[i].ID, err)}
		}
	}
	return nil
}
