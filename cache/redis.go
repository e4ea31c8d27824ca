package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Keys of the cached list responses.
const (
	CategoriesKey = "categories"
	ProductsKey   = "products"
)

// Store holds serialized list responses between writes.
//
// Every key carries a generation that Invalidate bumps. Load reports the
// current generation on a miss. A value saved under that generation is only
// served while no invalidation has happened since.
type Store interface {
	Load(ctx context.Context, key string, dst any) (hit bool, gen int64, err error)
	Save(ctx context.Context, key string, gen int64, v any) error
	Invalidate(ctx context.Context, keys ...string) error
}

// Nop never hits. It is used when no Redis address is configured.
type Nop struct{}

func (Nop) Load(context.Context, string, any) (bool, int64, error) { return false, 0, nil }

func (Nop) Save(context.Context, string, int64, any) error { return nil }

func (Nop) Invalidate(context.Context, ...string) error { return nil }

// Redis is a cache-aside Store backed by a Redis server.
type Redis struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewRedis(client redis.Cmdable, prefix string, ttl time.Duration) *Redis {
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

// Connect opens a client and checks the server answers.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

func (r *Redis) Key(key string) string {
	return r.prefix + key
}

func (r *Redis) genKey(key string) string {
	return r.prefix + key + ":gen"
}

type entry struct {
	Gen  int64           `json:"gen"`
	Data json.RawMessage `json:"data"`
}

func (r *Redis) Load(ctx context.Context, key string, dst any) (bool, int64, error) {
	vals, err := r.client.MGet(ctx, r.Key(key), r.genKey(key)).Result()
	if err != nil {
		return false, 0, err
	}
	var gen int64
	if raw, ok := vals[1].(string); ok {
		if gen, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return false, 0, fmt.Errorf("decode %s generation: %w", key, err)
		}
	}
	raw, ok := vals[0].(string)
	if !ok {
		return false, gen, nil
	}

	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return false, gen, fmt.Errorf("decode cached %s: %w", key, err)
	}
	if e.Gen != gen {
		return false, gen, nil
	}
	if err := json.Unmarshal(e.Data, dst); err != nil {
		return false, gen, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return true, gen, nil
}

func (r *Redis) Save(ctx context.Context, key string, gen int64, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(entry{Gen: gen, Data: data})
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.Key(key), payload, r.ttl).Err()
}

// Invalidate bumps the generation of each key before dropping its value.
func (r *Redis) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		if err := r.client.Incr(ctx, r.genKey(k)).Err(); err != nil {
			return err
		}
		full[i] = r.Key(k)
	}
	return r.client.Del(ctx, full...).Err()
}
