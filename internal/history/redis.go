package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"nutristat-api/internal/shared"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore keeps records as JSON strings in one redis list, so a record's
// id is also its 1-based list position. Appends use WATCH/MULTI and retry
// when another writer got in first.
type RedisStore struct {
	rdb *redis.Client
	key string
	log *zap.SugaredLogger
}

// OpenRedisStore connects to addr and pings it.
func OpenRedisStore(ctx context.Context, addr, key string, log *zap.SugaredLogger) (*RedisStore, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "",
		DB:       0,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("failed ping to redis db: %w", err)
	}
	return NewRedisStore(redisClient, key, log), nil
}

func NewRedisStore(rdb *redis.Client, key string, log *zap.SugaredLogger) *RedisStore {
	if key == "" {
		key = shared.DefaultHistoryRedisKey
	}
	return &RedisStore{rdb: rdb, key: key, log: log}
}

func (s *RedisStore) Append(ctx context.Context, rec Record) (Record, error) {
	rec = normalize(rec)
	for range shared.RedisTxMaxRetries {
		err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
			n, err := tx.LLen(ctx, s.key).Result()
			if err != nil {
				return err
			}
			rec.ID = int(n) + 1
			data, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.RPush(ctx, s.key, data)
				return nil
			})
			return err
		}, s.key)
		if errors.Is(err, redis.TxFailedErr) {
			s.log.Debugw("History append raced, retrying", "key", s.key)
			continue
		}
		if err != nil {
			return Record{}, fmt.Errorf("failed to append history record: %w", err)
		}
		return rec, nil
	}
	return Record{}, fmt.Errorf("failed to append history record after %d attempts", shared.RedisTxMaxRetries)
}

func (s *RedisStore) All(ctx context.Context) ([]Record, error) {
	raw, err := s.rdb.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read history list: %w", err)
	}
	records := make([]Record, 0, len(raw))
	for i, item := range raw {
		var rec Record
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			s.log.Warnw("Skipping unreadable history entry", "key", s.key, "index", i, "error", err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *RedisStore) Get(ctx context.Context, id int) (Record, error) {
	if id < 1 {
		return Record{}, ErrNotFound
	}
	item, err := s.rdb.LIndex(ctx, s.key, int64(id-1)).Result()
	if errors.Is(err, redis.Nil) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to read history record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal([]byte(item), &rec); err == nil && rec.ID == id {
		return rec, nil
	}

	// position and id disagree, fall back to a scan
	records, err := s.All(ctx)
	if err != nil {
		return Record{}, err
	}
	for _, r := range records {
		if r.ID == id {
			return r, nil
		}
	}
	return Record{}, ErrNotFound
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
