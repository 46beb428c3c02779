package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/celerix-dev/celerix-records/pkg/engine"
)

const redisKeyPrefix = "records"

// RedisStore keeps each document as a JSON string under records:<collection>:<id>
// and indexes the ids of a collection in the set records:<collection>.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new RedisStore.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func docKey(collection string, id uuid.UUID) string {
	return fmt.Sprintf("%s:%s:%s", redisKeyPrefix, collection, id)
}

func indexKey(collection string) string {
	return fmt.Sprintf("%s:%s", redisKeyPrefix, collection)
}

func (s *RedisStore) InsertOne(ctx context.Context, collection string, id uuid.UUID, doc engine.Document) error {
	if !doc.Valid() {
		return fmt.Errorf("insert into %s: document is not a JSON object", collection)
	}
	stamped, err := doc.WithID(id)
	if err != nil {
		return err
	}
	pipe := s.client.Pipeline()
	pipe.Set(ctx, docKey(collection, id), []byte(stamped), 0)
	pipe.SAdd(ctx, indexKey(collection), id.String())
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) FindOne(ctx context.Context, collection string, id uuid.UUID) (engine.Document, error) {
	data, err := s.client.Get(ctx, docKey(collection, id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, engine.ErrNotFound
		}
		return nil, err
	}
	return engine.Document(data), nil
}

func (s *RedisStore) Find(ctx context.Context, collection string, filter *engine.Filter) ([]engine.Document, error) {
	ids, err := s.client.SMembers(ctx, indexKey(collection)).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []engine.Document{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, raw := range ids {
		cmds[i] = pipe.Get(ctx, fmt.Sprintf("%s:%s:%s", redisKeyPrefix, collection, raw))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}

	docs := make([]engine.Document, 0, len(ids))
	for _, cmd := range cmds {
		data, err := cmd.Bytes()
		if err != nil {
			// index entry left behind by a concurrent delete
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, err
		}
		doc := engine.Document(data)
		if filter.Match(doc) {
			docs = append(docs, doc)
		}
	}
	engine.SortByID(docs)
	return docs, nil
}

func (s *RedisStore) UpdateOne(ctx context.Context, collection string, id uuid.UUID, set map[string]any) error {
	existing, err := s.FindOne(ctx, collection, id)
	if err != nil {
		return err
	}
	merged, err := existing.Merge(set)
	if err != nil {
		return err
	}
	// XX: only overwrite if the document still exists
	ok, err := s.client.SetXX(ctx, docKey(collection, id), []byte(merged), 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return engine.ErrNotFound
	}
	return nil
}

func (s *RedisStore) DeleteOne(ctx context.Context, collection string, id uuid.UUID) (engine.Document, error) {
	existing, err := s.FindOne(ctx, collection, id)
	if err != nil {
		return nil, err
	}

	pipe := s.client.TxPipeline()
	del := pipe.Del(ctx, docKey(collection, id))
	pipe.SRem(ctx, indexKey(collection), id.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	if del.Val() == 0 {
		return nil, engine.ErrNotFound
	}
	return existing, nil
}

func (s *RedisStore) CountBy(ctx context.Context, collection, field string) ([]engine.Group, error) {
	docs, err := s.Find(ctx, collection, nil)
	if err != nil {
		return nil, err
	}
	return engine.GroupBy(docs, field), nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
