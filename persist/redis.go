package persist

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rushteam/slimrec/core"
)

// RedisStore 是 Redis 实现的 ObjectStore，把整个模型快照存到单个 key。
// 适合多实例共享最新模型快照的场景（离线训练进程写，在线进程读）。
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 连接 Redis 并创建存储。
func NewRedisStore(addr string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("persist: connect redis %s: %w", addr, err)
	}
	return &RedisStore{client: client}, nil
}

func (r *RedisStore) Name() string { return "redis" }

func (r *RedisStore) Put(ctx context.Context, key string, data []byte) error {
	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("persist: redis set %s: %w", key, err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, core.ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("persist: redis get %s: %w", key, err)
	}
	return val, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
