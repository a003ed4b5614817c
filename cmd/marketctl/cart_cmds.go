package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/sorodev/marketplace-client/internal/cart"
	pkgerrors "github.com/sorodev/marketplace-client/pkg/errors"
)

func newCartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the durable cart",
	}
	cmd.AddCommand(
		newCartAddCommand(),
		newCartListCommand(),
		newCartSetCommand(),
		newCartRemoveCommand(),
		newCartClearCommand(),
	)
	return cmd
}

func newCartAddCommand() *cobra.Command {
	var (
		entrepotID int64
		quantity   string
	)

	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart, merging with an existing line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid product id %q", args[0])
			}
			qty, err := decimal.NewFromString(quantity)
			if err != nil || !qty.IsPositive() {
				return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive number")
			}
			return withApp(cmd, func(a *app) error {
				product, err := a.catalog.Product(cmd.Context(), productID, entrepotID)
				if err != nil {
					return err
				}
				item := cart.Item{
					ProductID:    product.ID,
					ProductName:  product.Name,
					ProductCode:  product.Code,
					EntrepotID:   product.EntrepotID,
					EntrepotName: product.EntrepotName,
					Quantity:     qty,
					UnitPrice:    product.UnitPrice,
					ImagePath:    product.ImagePath,
				}
				if item.EntrepotID == 0 {
					item.EntrepotID = entrepotID
				}
				if err := a.cart.Add(cmd.Context(), item); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s x %s. Cart total: %s\n",
					qty.String(), product.Name, a.cart.Total().String())
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&entrepotID, "entrepot", 0, "warehouse the product belongs to")
	cmd.Flags().StringVar(&quantity, "qty", "1", "quantity, fractional values allowed")
	_ = cmd.MarkFlagRequired("entrepot")
	return cmd
}

func newCartListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the cart contents and total",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(a *app) error {
				items := a.cart.Items()
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Cart is empty.")
					return nil
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "PRODUIT\tENTREPOT\tQTE\tPRIX UNITAIRE\tSOUS-TOTAL")
				for _, item := range items {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
						item.ProductName, item.EntrepotName,
						item.Quantity.String(), item.UnitPrice.String(), item.Subtotal.String())
				}
				if err := w.Flush(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Total: %s\n", a.cart.Total().String())
				return nil
			})
		},
	}
}

func newCartSetCommand() *cobra.Command {
	var (
		entrepotID int64
		quantity   string
	)

	cmd := &cobra.Command{
		Use:   "set <product-id>",
		Short: "Change the quantity of a cart line, zero removes it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid product id %q", args[0])
			}
			qty, err := decimal.NewFromString(quantity)
			if err != nil {
				return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a number")
			}
			return withApp(cmd, func(a *app) error {
				if err := a.cart.UpdateQuantity(cmd.Context(), productID, entrepotID, qty); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated. Cart total: %s\n", a.cart.Total().String())
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&entrepotID, "entrepot", 0, "warehouse the product belongs to")
	cmd.Flags().StringVar(&quantity, "qty", "", "new quantity")
	_ = cmd.MarkFlagRequired("entrepot")
	_ = cmd.MarkFlagRequired("qty")
	return cmd
}

func newCartRemoveCommand() *cobra.Command {
	var entrepotID int64

	cmd := &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a line from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid product id %q", args[0])
			}
			return withApp(cmd, func(a *app) error {
				if err := a.cart.Remove(cmd.Context(), productID, entrepotID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed. Cart total: %s\n", a.cart.Total().String())
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&entrepotID, "entrepot", 0, "warehouse the product belongs to")
	_ = cmd.MarkFlagRequired("entrepot")
	return cmd
}

func newCartClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(a *app) error {
				if err := a.cart.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Cart cleared.")
				return nil
			})
		},
	}
}
