package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Ensure Redis implements Store at compile time.
var _ Store = (*Redis)(nil)

const defaultRedisPrefix = "pantry"

// Redis stores each document as a hash of JSON-encoded field values. A sorted
// set per collection, scored by a per-collection counter, keeps insertion order.
//
// A document whose hash has no fields reads as missing.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis wraps an existing client. An empty prefix uses "pantry".
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

// OpenRedis connects to addr and verifies the server answers PING.
func OpenRedis(ctx context.Context, addr, password string, db int, prefix string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, unavailable("redis", "ping", err)
	}
	return NewRedis(client, prefix), nil
}

// ListAll implements Store.
func (r *Redis) ListAll(ctx context.Context, collection string) ([]Document, error) {
	keys, err := r.client.ZRange(ctx, r.indexKey(collection), 0, -1).Result()
	if err != nil {
		return nil, r.wrap("list", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(keys))
	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, key := range keys {
			cmds[i] = pipe.HGetAll(ctx, r.docKey(collection, key))
		}
		return nil
	})
	if err != nil {
		return nil, r.wrap("list", err)
	}

	docs := make([]Document, 0, len(keys))
	for i, key := range keys {
		raw := cmds[i].Val()
		if len(raw) == 0 {
			continue
		}
		fields, err := decodeHash(raw)
		if err != nil {
			return nil, fmt.Errorf("redis list %q: %w", key, err)
		}
		docs = append(docs, Document{Key: key, Fields: fields})
	}
	return docs, nil
}

// GetOne implements Store.
func (r *Redis) GetOne(ctx context.Context, collection, key string) (Document, bool, error) {
	if err := validateKey(key); err != nil {
		return Document{}, false, err
	}
	raw, err := r.client.HGetAll(ctx, r.docKey(collection, key)).Result()
	if err != nil {
		return Document{}, false, r.wrap("get", err)
	}
	if len(raw) == 0 {
		return Document{}, false, nil
	}
	fields, err := decodeHash(raw)
	if err != nil {
		return Document{}, false, fmt.Errorf("redis get %q: %w", key, err)
	}
	return Document{Key: key, Fields: fields}, true, nil
}

// SetOne implements Store.
func (r *Redis) SetOne(ctx context.Context, collection, key string, fields Fields, merge bool) error {
	if err := validateKey(key); err != nil {
		return err
	}
	normalized, err := Normalize(fields)
	if err != nil {
		return err
	}
	values := make(map[string]any, len(normalized))
	for name, value := range normalized {
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode field %q: %w", name, err)
		}
		values[name] = string(data)
	}

	seq, err := r.client.Incr(ctx, r.seqKey(collection)).Result()
	if err != nil {
		return r.wrap("set", err)
	}
	docKey := r.docKey(collection, key)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if !merge {
			pipe.Del(ctx, docKey)
		}
		switch {
		case len(values) > 0:
			pipe.HSet(ctx, docKey, values)
			pipe.ZAddNX(ctx, r.indexKey(collection), redis.Z{Score: float64(seq), Member: key})
		case !merge:
			// Replacing with no fields leaves no hash, so the key leaves the index too.
			pipe.ZRem(ctx, r.indexKey(collection), key)
		}
		return nil
	})
	if err != nil {
		return r.wrap("set", err)
	}
	return nil
}

// DeleteOne implements Store.
func (r *Redis) DeleteOne(ctx context.Context, collection, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.docKey(collection, key))
		pipe.ZRem(ctx, r.indexKey(collection), key)
		return nil
	})
	if err != nil {
		return r.wrap("delete", err)
	}
	return nil
}

// Close implements Store.
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) docKey(collection, key string) string {
	return r.prefix + ":" + collection + ":doc:" + key
}

func (r *Redis) indexKey(collection string) string {
	return r.prefix + ":" + collection + ":keys"
}

func (r *Redis) seqKey(collection string) string {
	return r.prefix + ":" + collection + ":seq"
}

// wrap reports server replies as plain errors and everything else as
// ErrUnavailable.
func (r *Redis) wrap(op string, err error) error {
	var replyErr redis.Error
	if errors.As(err, &replyErr) {
		return fmt.Errorf("redis %s: %w", op, err)
	}
	return unavailable("redis", op, err)
}

func decodeHash(raw map[string]string) (Fields, error) {
	fields := make(Fields, len(raw))
	for name, data := range raw {
		value, err := decodeValue(data)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		fields[name] = value
	}
	return fields, nil
}
