package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/celerix-dev/celerix-records/pkg/sdk"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	addr string
}

func (o *rootOptions) client() (*sdk.Client, error) {
	return sdk.Connect(o.addr)
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "celerix-records",
		Short:         "Command line client for the Celerix Records API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultAddr := os.Getenv("CELERIX_RECORDS_ADDR")
	if defaultAddr == "" {
		defaultAddr = "http://localhost:7002"
	}
	cmd.PersistentFlags().StringVar(&opts.addr, "addr", defaultAddr, "Base URL of the records API")

	cmd.AddCommand(newClockInCommand(opts))
	cmd.AddCommand(newItemCommand(opts))
	cmd.AddCommand(newMigrateCommand())
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
