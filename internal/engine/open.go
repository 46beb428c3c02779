package engine

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"github.com/celerix-dev/celerix-records/pkg/sdk"
)

// Backend names accepted by Open.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Options selects and configures a storage backend.
type Options struct {
	Backend   string
	DataDir   string
	MasterKey []byte

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	PostgresDSN string
}

// Open initializes the store named by opts.Backend.
// It returns the interface, so the API doesn't care where documents live.
func Open(ctx context.Context, opts Options) (sdk.DocumentStore, error) {
	switch opts.Backend {
	case BackendFile, "":
		p, err := NewPersistence(opts.DataDir)
		if err != nil {
			return nil, err
		}
		if opts.MasterKey != nil {
			p.SetMasterKey(opts.MasterKey)
		}
		allData, err := p.LoadAll()
		if err != nil {
			return nil, err
		}
		log.Info().Str("dir", opts.DataDir).Int("collections", len(allData)).Msg("embedded store loaded")
		return NewMemStore(allData, p), nil

	case BackendMemory:
		return NewMemStore(nil, nil), nil

	case BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("could not connect to redis (%s): %w", opts.RedisAddr, err)
		}
		return NewRedisStore(client), nil

	case BackendPostgres:
		if err := MigratePostgres(ctx, opts.PostgresDSN); err != nil {
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		orm, err := ConnectPostgres(ctx, opts.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return NewPostgresStore(orm), nil

	default:
		return nil, fmt.Errorf("unknown backend %q", opts.Backend)
	}
}
