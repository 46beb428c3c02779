package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/celerix-dev/celerix-records/internal/engine"
	"github.com/celerix-dev/celerix-records/internal/vault"
	pkgengine "github.com/celerix-dev/celerix-records/pkg/engine"
)

type storeFlags struct {
	backend, dataDir, masterKey string
	redisAddr, redisPassword    string
	redisDB                     int
	dsn                         string
}

func (f *storeFlags) register(cmd *cobra.Command, prefix string) {
	cmd.Flags().StringVar(&f.backend, prefix+"backend", "file", "Backend: file, redis or postgres")
	cmd.Flags().StringVar(&f.dataDir, prefix+"data-dir", "./data", "Data directory of the file backend")
	cmd.Flags().StringVar(&f.masterKey, prefix+"master-key", "", "Hex master key of an encrypted file backend")
	cmd.Flags().StringVar(&f.redisAddr, prefix+"redis-addr", "localhost:6379", "Redis address")
	cmd.Flags().StringVar(&f.redisPassword, prefix+"redis-password", "", "Redis password")
	cmd.Flags().IntVar(&f.redisDB, prefix+"redis-db", 0, "Redis database")
	cmd.Flags().StringVar(&f.dsn, prefix+"dsn", "", "Postgres DSN")
}

func (f *storeFlags) options() (engine.Options, error) {
	opts := engine.Options{
		Backend:       f.backend,
		DataDir:       f.dataDir,
		RedisAddr:     f.redisAddr,
		RedisPassword: f.redisPassword,
		RedisDB:       f.redisDB,
		PostgresDSN:   f.dsn,
	}
	if f.masterKey != "" {
		key, err := vault.ParseMasterKey(f.masterKey)
		if err != nil {
			return engine.Options{}, err
		}
		opts.MasterKey = key
	}
	return opts, nil
}

func newMigrateCommand() *cobra.Command {
	var from, to storeFlags

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Copy every record from one backend to another, keeping ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			srcOpts, err := from.options()
			if err != nil {
				return fmt.Errorf("source: %w", err)
			}
			dstOpts, err := to.options()
			if err != nil {
				return fmt.Errorf("destination: %w", err)
			}

			src, err := engine.Open(ctx, srcOpts)
			if err != nil {
				return fmt.Errorf("open source: %w", err)
			}
			defer src.Close()
			dst, err := engine.Open(ctx, dstOpts)
			if err != nil {
				return fmt.Errorf("open destination: %w", err)
			}
			defer dst.Close()

			n, err := engine.Migrate(ctx, src, dst, pkgengine.ClockInCollection, pkgengine.ItemCollection)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %d records from %s to %s\n", n, from.backend, to.backend)
			return nil
		},
	}
	from.register(cmd, "from-")
	to.register(cmd, "to-")
	return cmd
}
