package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/storeqa/internal/db"
)

var _ db.Store = (*Store)(nil)

// DefaultKeyPrefix namespaces catalog hashes and cache keys when Config.KeyPrefix is empty.
const DefaultKeyPrefix = "storeqa:"

// readyPollInterval spaces readiness pings while the catalog store boots.
const readyPollInterval = 100 * time.Millisecond

// ErrNoAddrs is returned by NewStore when no catalog store address is configured.
var ErrNoAddrs = errors.New("redis: at least one address is required")

// Config holds connection parameters for the catalog store.
type Config struct {
	Addrs     []string
	Username  string
	Password  string
	DB        int
	KeyPrefix string
}

// Store keeps catalog chunks, their vector indexes and the embedding cache in Redis 8+.
type Store struct {
	client    rueidis.Client
	keyPrefix string
}

// NewStore dials the catalog store. Client-side caching stays off because chunk
// hashes are rewritten on every ingest run.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, ErrNoAddrs
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
		// FT.SEARCH replies are decoded from the RESP2 flat array layout.
		AlwaysRESP2: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect catalog store %v: %w", cfg.Addrs, err)
	}

	return newStore(client, cfg.KeyPrefix), nil
}

func newStore(client rueidis.Client, keyPrefix string) *Store {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &Store{client: client, keyPrefix: keyPrefix}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, s.b().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("ping catalog store: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings right away, then every readyPollInterval until the store
// answers or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()

	for {
		err := s.Ping(ctx)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("catalog store not ready after %s: %w", timeout, err)
		case <-ticker.C:
		}
	}
}

// collectionPrefix is the key prefix shared by every chunk hash of a collection.
func (s *Store) collectionPrefix(collection string) string {
	return s.keyPrefix + collection + ":"
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

// isRedisErr reports whether err is a server reply whose message contains msg,
// ignoring case. RediSearch wording differs in case across versions.
func isRedisErr(err error, msg string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(re.Error()), strings.ToLower(msg))
}
