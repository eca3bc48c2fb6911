package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/kailas-cloud/storeqa/internal/db"
	"github.com/kailas-cloud/storeqa/internal/domain"
	"github.com/kailas-cloud/storeqa/internal/domain/page"
)

// chunkNamespace seeds deterministic chunk ids so re-ingesting a page overwrites its chunks.
var chunkNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("storeqa/web_chunks"))

// PageID returns the stable record id of a page url.
func PageID(url string) string {
	h := sha256.Sum256([]byte(url))
	return hex.EncodeToString(h[:16])
}

// ChunkID returns the stable record id of chunk index of a page url.
func ChunkID(url string, index int) string {
	return uuid.NewSHA1(chunkNamespace, []byte(url+"#"+strconv.Itoa(index))).String()
}

// UpsertPage stores a page, replacing any previous crawl of the same url.
func (r *Repo) UpsertPage(ctx context.Context, p page.Page) error {
	rec := db.Record{
		ID: PageID(p.URL),
		Fields: map[string]string{
			domain.FieldURL:       p.URL,
			domain.FieldTitle:     p.Title,
			domain.FieldCrawledAt: strconv.FormatInt(p.CrawledAt.Unix(), 10),
		},
	}
	if err := r.store.Upsert(ctx, domain.CollectionPages, []db.Record{rec}); err != nil {
		return fmt.Errorf("upsert page %s: %w", p.URL, err)
	}
	return nil
}

// InsertChunks stores embedded chunks. Chunks without an id get one derived from url and index.
func (r *Repo) InsertChunks(ctx context.Context, chunks []page.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	records := make([]db.Record, 0, len(chunks))
	for _, c := range chunks {
		if len(c.Embedding) != r.vectorDim {
			return fmt.Errorf("chunk %s#%d: embedding has %d dims, want %d: %w",
				c.URL, c.Index, len(c.Embedding), r.vectorDim, domain.ErrValidation)
		}
		id := c.ID
		if id == "" {
			id = ChunkID(c.URL, c.Index)
		}
		records = append(records, db.Record{
			ID: id,
			Fields: map[string]string{
				domain.FieldURL:        c.URL,
				domain.FieldChunkIndex: strconv.Itoa(c.Index),
				domain.FieldContent:    c.Content,
			},
			Vector:      c.Embedding,
			VectorField: domain.FieldEmbedding,
		})
	}

	if err := r.store.Upsert(ctx, domain.CollectionChunks, records); err != nil {
		return fmt.Errorf("insert %d chunks: %w", len(records), err)
	}
	return nil
}
