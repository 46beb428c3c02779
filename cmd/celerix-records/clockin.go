package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/celerix-dev/celerix-records/pkg/engine"
	"github.com/celerix-dev/celerix-records/pkg/sdk"
)

func newClockInCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "clockin",
		Aliases: []string{"clock-in"},
		Short:   "Clock-in record operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every clock-in record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			recs, err := client.ListClockIns(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), recs)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show one clock-in record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			rec, err := client.GetClockIn(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rec)
		},
	})

	cmd.AddCommand(newClockInFilterCommand(opts))
	cmd.AddCommand(newClockInCreateCommand(opts))
	cmd.AddCommand(newClockInUpdateCommand(opts))

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a clock-in record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			rec, err := client.DeleteClockIn(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rec)
		},
	})
	return cmd
}

func newClockInFilterCommand(opts *rootOptions) *cobra.Command {
	var (
		q     sdk.ClockInQuery
		since string
	)
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "List clock-in records matching every given flag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if since != "" {
				t, err := engine.ParseTime(since)
				if err != nil {
					return err
				}
				q.Since = t
			}
			client, err := opts.client()
			if err != nil {
				return err
			}
			recs, err := client.FilterClockIns(cmd.Context(), q)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), recs)
		},
	}
	cmd.Flags().StringVar(&q.Email, "email", "", "Exact email")
	cmd.Flags().StringVar(&q.Location, "location", "", "Exact location")
	cmd.Flags().StringVar(&since, "since", "", "Earliest clock_in (date or RFC 3339 timestamp)")
	return cmd
}

func newClockInCreateCommand(opts *rootOptions) *cobra.Command {
	var email, location string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Record a clock-in stamped with the server time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			rec, err := client.CreateClockIn(cmd.Context(), email, location)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rec)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "User email")
	cmd.Flags().StringVar(&location, "location", "", "Clock-in location")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("location")
	return cmd
}

func newClockInUpdateCommand(opts *rootOptions) *cobra.Command {
	var email, location, at string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Move the clock_in of a record (now when --at is omitted)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var t time.Time
			if at != "" {
				var err error
				if t, err = engine.ParseTime(at); err != nil {
					return err
				}
			}
			client, err := opts.client()
			if err != nil {
				return err
			}
			rec, err := client.UpdateClockIn(cmd.Context(), args[0], email, location, t)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rec)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "User email")
	cmd.Flags().StringVar(&location, "location", "", "Clock-in location")
	cmd.Flags().StringVar(&at, "at", "", "New clock_in (date or RFC 3339 timestamp)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("location")
	return cmd
}
