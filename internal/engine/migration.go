package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/celerix-dev/celerix-records/pkg/sdk"
)

// Migrate copies every document of the named collections from src to dst, keeping ids.
// This works for:
// - Embedded -> Redis/Postgres (the "Upgrade")
// - Redis/Postgres -> Embedded (the "Backup/Offline")
func Migrate(ctx context.Context, src, dst sdk.DocumentStore, collections ...string) (int, error) {
	copied := 0
	for _, name := range collections {
		from, to := sdk.Collection(src, name), sdk.Collection(dst, name)
		docs, err := from.Find(ctx, nil)
		if err != nil {
			return copied, fmt.Errorf("failed to list collection %s: %w", name, err)
		}

		for _, doc := range docs {
			id, err := doc.ID()
			if err != nil {
				return copied, fmt.Errorf("document in %s: %w", name, err)
			}
			if err := to.InsertOne(ctx, id, doc); err != nil {
				return copied, fmt.Errorf("failed to insert %s/%s in destination: %w", name, id, err)
			}
			copied++
		}
		log.Info().Str("collection", name).Int("documents", len(docs)).Msg("collection migrated")
	}
	return copied, nil
}
