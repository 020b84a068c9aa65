package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/senkronix/b2b-bridge/internal/domain/catalog"
)

const (
	catalogKey  = "snapshot:catalog"
	balancesKey = "snapshot:balances"
)

// RedisStore keeps the latest published snapshots in Redis so every API
// instance serves the same data. Each snapshot is a single JSON array under
// one key; replacement is one SET.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(cfg RedisConfig, logger *zap.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{client: client, logger: logger}, nil
}

// NewRedisStoreWithClient wraps an existing client. Useful for tests and for
// sharing a client across components.
func NewRedisStoreWithClient(client *redis.Client, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{client: client, logger: logger}
}

var _ catalog.SnapshotStore = (*RedisStore)(nil)

// ReplaceCatalog implements catalog.SnapshotStore.
func (s *RedisStore) ReplaceCatalog(ctx context.Context, items []catalog.Item) error {
	if items == nil {
		items = []catalog.Item{}
	}
	return s.replace(ctx, catalogKey, items)
}

// Catalog implements catalog.SnapshotStore.
func (s *RedisStore) Catalog(ctx context.Context) ([]catalog.Item, error) {
	items := []catalog.Item{}
	if err := s.fetch(ctx, catalogKey, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ReplaceBalances implements catalog.SnapshotStore.
func (s *RedisStore) ReplaceBalances(ctx context.Context, balances []catalog.CustomerBalance) error {
	if balances == nil {
		balances = []catalog.CustomerBalance{}
	}
	return s.replace(ctx, balancesKey, balances)
}

// Balances implements catalog.SnapshotStore.
func (s *RedisStore) Balances(ctx context.Context) ([]catalog.CustomerBalance, error) {
	balances := []catalog.CustomerBalance{}
	if err := s.fetch(ctx, balancesKey, &balances); err != nil {
		return nil, err
	}
	return balances, nil
}

func (s *RedisStore) replace(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding snapshot %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("storing snapshot %s: %w", key, err)
	}
	s.logger.Debug("snapshot replaced", zap.String("key", key), zap.Int("bytes", len(raw)))
	return nil
}

func (s *RedisStore) fetch(ctx context.Context, key string, dest any) error {
	raw, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		// Nothing published yet; callers get an empty snapshot.
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading snapshot %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decoding snapshot %s: %w", key, err)
	}
	return nil
}

// Ping verifies the Redis connection. Used by the health endpoint.
func (s *RedisStore) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
