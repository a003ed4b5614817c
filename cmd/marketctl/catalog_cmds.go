package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newEntrepotsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "entrepots",
		Short: "List the fulfillment warehouses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(a *app) error {
				entrepots, err := a.catalog.Entrepots(cmd.Context())
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tCODE\tNOM\tVILLE\tTELEPHONE")
				for _, e := range entrepots {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", e.ID, e.Code, e.Name, e.City, e.Phone)
				}
				return w.Flush()
			})
		},
	}
}

func newProductsCommand() *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "products <entrepot-id>",
		Short: "List the products stocked by a warehouse",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entrepotID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid entrepot id %q", args[0])
			}
			return withApp(cmd, func(a *app) error {
				products, err := a.catalog.SearchProducts(cmd.Context(), entrepotID, search)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tCODE\tNOM\tPRIX\tDISPONIBLE")
				for _, p := range products {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
						p.ID, p.Code, p.Name, p.UnitPrice.String(), p.QuantityAvailable.String())
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "filter by product name or code")
	return cmd
}

func newZonesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "zones <entrepot-id>",
		Short: "List the delivery zones a warehouse serves",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entrepotID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid entrepot id %q", args[0])
			}
			return withApp(cmd, func(a *app) error {
				zones, err := a.pricing.LoadZones(cmd.Context(), entrepotID)
				if err != nil {
					return err
				}
				if len(zones) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No delivery available for this warehouse; pickup only.")
					return nil
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tZONE\tDESCRIPTION\tPRIX")
				for _, z := range zones {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", z.ID, z.Zone, z.Description, z.Price.String())
				}
				return w.Flush()
			})
		},
	}
}
