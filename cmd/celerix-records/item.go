package main

import (
	"github.com/spf13/cobra"

	"github.com/celerix-dev/celerix-records/pkg/engine"
	"github.com/celerix-dev/celerix-records/pkg/sdk"
)

func newItemCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Inventory item operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			items, err := client.ListItems(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), items)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show one item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			item, err := client.GetItem(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), item)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "count-by-email",
		Short: "Count items per email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			rows, err := client.CountItemsByEmail(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rows)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			item, err := client.DeleteItem(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), item)
		},
	})

	cmd.AddCommand(newItemFilterCommand(opts))
	cmd.AddCommand(newItemCreateCommand(opts))
	cmd.AddCommand(newItemUpdateCommand(opts))
	return cmd
}

func newItemFilterCommand(opts *rootOptions) *cobra.Command {
	var (
		q                  sdk.ItemQuery
		minQuantity        int
		insertedAt, expiry string
	)
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "List items matching every given flag",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("min-quantity") {
				q.MinQuantity = &minQuantity
			}
			var err error
			if insertedAt != "" {
				if q.InsertedAt, err = engine.ParseTime(insertedAt); err != nil {
					return err
				}
			}
			if expiry != "" {
				if q.ExpiresAt, err = engine.ParseTime(expiry); err != nil {
					return err
				}
			}
			client, err := opts.client()
			if err != nil {
				return err
			}
			items, err := client.FilterItems(cmd.Context(), q)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), items)
		},
	}
	cmd.Flags().StringVar(&q.Email, "email", "", "Exact email")
	cmd.Flags().IntVar(&minQuantity, "min-quantity", 0, "Smallest quantity")
	cmd.Flags().StringVar(&insertedAt, "inserted-since", "", "Earliest insert_date")
	cmd.Flags().StringVar(&expiry, "expires-after", "", "Earliest expiry_date")
	return cmd
}

func newItemCreateCommand(opts *rootOptions) *cobra.Command {
	var item sdk.NewItem
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Store a new item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			created, err := client.CreateItem(cmd.Context(), item)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), created)
		},
	}
	cmd.Flags().StringVar(&item.Email, "email", "", "Owner email")
	cmd.Flags().StringVar(&item.Name, "name", "", "Name")
	cmd.Flags().StringVar(&item.ItemName, "item-name", "", "Item name")
	cmd.Flags().StringVar(&item.ExpiryDate, "expiry-date", "", "Expiry date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&item.Quantity, "quantity", 0, "Quantity")
	for _, f := range []string{"email", "name", "item-name", "expiry-date", "quantity"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newItemUpdateCommand(opts *rootOptions) *cobra.Command {
	var (
		email, name, itemName, expiry string
		quantity                      int
	)
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the given fields of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var changes sdk.ItemChanges
			flags := cmd.Flags()
			if flags.Changed("email") {
				changes.Email = &email
			}
			if flags.Changed("name") {
				changes.Name = &name
			}
			if flags.Changed("item-name") {
				changes.ItemName = &itemName
			}
			if flags.Changed("expiry-date") {
				changes.ExpiryDate = &expiry
			}
			if flags.Changed("quantity") {
				changes.Quantity = &quantity
			}
			client, err := opts.client()
			if err != nil {
				return err
			}
			item, err := client.UpdateItemDetails(cmd.Context(), args[0], changes)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), item)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Owner email")
	cmd.Flags().StringVar(&name, "name", "", "Name")
	cmd.Flags().StringVar(&itemName, "item-name", "", "Item name")
	cmd.Flags().StringVar(&expiry, "expiry-date", "", "Expiry date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&quantity, "quantity", 0, "Quantity")
	return cmd
}
