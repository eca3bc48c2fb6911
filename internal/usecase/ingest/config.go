package ingest

import (
	"errors"
	"fmt"
)

// Config holds crawl limits and chunking parameters.
type Config struct {
	Sitemaps         []string
	Limit            int
	ChunkSize        int
	ChunkOverlap     int
	BatchSize        int
	MinTextChars     int
	SeedMinTextChars int
	// MaxSitemapDepth bounds sitemap index expansion. 1 reads only the listed sitemaps.
	MaxSitemapDepth int
}

// DefaultConfig returns the stock crawl configuration.
func DefaultConfig() Config {
	return Config{
		Sitemaps: []string{
			"https://megaska.com/sitemap.xml",
			"https://megaska.com/sitemap_pages_1.xml",
			"https://megaska.com/sitemap_products_1.xml",
		},
		Limit:            120,
		ChunkSize:        900,
		ChunkOverlap:     150,
		BatchSize:        64,
		MinTextChars:     300,
		SeedMinTextChars: 200,
		MaxSitemapDepth:  2,
	}
}

// Validate checks chunking and batching parameters.
func (c *Config) Validate() error {
	if c.Limit <= 0 {
		return errors.New("ingest limit must be positive")
	}
	if c.ChunkSize <= 0 {
		return errors.New("chunk size must be positive")
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk overlap %d must be within [0, %d)", c.ChunkOverlap, c.ChunkSize)
	}
	if c.BatchSize <= 0 {
		return errors.New("embedding batch size must be positive")
	}
	if c.MinTextChars < 0 || c.SeedMinTextChars < 0 {
		return errors.New("minimum text lengths must not be negative")
	}
	if c.MaxSitemapDepth <= 0 {
		return errors.New("sitemap depth must be positive")
	}
	return nil
}
