package store

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/easelkit/easel/pkg/errors"
	"github.com/easelkit/easel/pkg/scene"
)

const (
	redisDocPrefix = "easel:doc:"
	redisIndexKey  = "easel:docs"
)

// RedisStore persists documents as JSON values under easel:doc:<id>, with a
// set at easel:docs indexing the known ids.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to the Redis instance named by the URL
// (redis://host:port/db) and verifies the connection.
func NewRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "redis url %q", url)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "redis ping")
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Save(ctx context.Context, doc *scene.Document) error {
	if err := validateDoc(doc); err != nil {
		return err
	}
	data, err := scene.MarshalDocument(doc)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, redisDocPrefix+doc.ID, data, 0)
	pipe.SAdd(ctx, redisIndexKey, doc.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "redis save %q", doc.ID)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (*scene.Document, error) {
	data, err := s.client.Get(ctx, redisDocPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "redis load %q", id)
	}
	return scene.UnmarshalDocument(data)
}

func (s *RedisStore) List(ctx context.Context) ([]Info, error) {
	ids, err := s.client.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "redis list")
	}

	out := make([]Info, 0, len(ids))
	for _, id := range ids {
		doc, err := s.Load(ctx, id)
		if err != nil {
			// Index entries can outlive their document; self-heal the set.
			s.client.SRem(ctx, redisIndexKey, id)
			continue
		}
		out = append(out, InfoOf(doc))
	}
	return out, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, redisDocPrefix+id)
	pipe.SRem(ctx, redisIndexKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "redis delete %q", id)
	}
	return nil
}

func (s *RedisStore) Close() error { return s.client.Close() }

var _ Store = (*RedisStore)(nil)
