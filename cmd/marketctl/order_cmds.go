package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sorodev/marketplace-client/internal/api"
	"github.com/sorodev/marketplace-client/internal/cart"
	"github.com/sorodev/marketplace-client/internal/checkout"
	"github.com/sorodev/marketplace-client/internal/payment"
	"github.com/sorodev/marketplace-client/pkg/enums"
	pkgerrors "github.com/sorodev/marketplace-client/pkg/errors"
)

func newCheckoutCommand() *cobra.Command {
	var (
		buyer    checkout.BuyerInput
		delivery bool
		zoneID   int64
	)

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Submit the cart as an order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(a *app) error {
				var zones []api.DeliveryZone
				if delivery {
					items := a.cart.Items()
					entrepots := cart.EntrepotIDs(items)
					if len(entrepots) != 1 {
						return pkgerrors.New(pkgerrors.CodeValidation,
							"cart must hold items from exactly one warehouse")
					}
					var err error
					zones, err = a.pricing.LoadZones(cmd.Context(), entrepots[0])
					if err != nil {
						return err
					}
				}

				result, err := a.checkout.Submit(cmd.Context(), checkout.Input{
					Buyer:          buyer,
					Delivery:       delivery,
					SelectedZoneID: zoneID,
					Zones:          zones,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Order submitted. ID: %d\n", result.OrderID)
				fmt.Fprintf(cmd.OutOrStdout(), "Pay with: marketctl pay %d --method LIVRAISON|WAVE|ORANGE_MONEY\n", result.OrderID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&buyer.LastName, "name", "", "buyer last name")
	cmd.Flags().StringVar(&buyer.FirstName, "first-name", "", "buyer first name")
	cmd.Flags().StringVar(&buyer.Phone, "phone", "", "buyer phone, digits only")
	cmd.Flags().StringVar(&buyer.Email, "email", "", "buyer email")
	cmd.Flags().StringVar(&buyer.Address, "address", "", "delivery address")
	cmd.Flags().StringVar(&buyer.City, "city", "", "delivery city")
	cmd.Flags().BoolVar(&delivery, "delivery", false, "request home delivery")
	cmd.Flags().Int64Var(&zoneID, "zone", 0, "delivery zone id, see the zones command")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("phone")
	return cmd
}

func newPayCommand() *cobra.Command {
	var (
		method   string
		phone    string
		holder   string
		operator string
	)

	cmd := &cobra.Command{
		Use:   "pay <order-id>",
		Short: "Pay a submitted order and download its receipt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid order id %q", args[0])
			}
			return withApp(cmd, func(a *app) error {
				order, err := a.payment.LoadOrder(cmd.Context(), orderID)
				if err != nil {
					return err
				}
				if order.IsPaid {
					fmt.Fprintln(cmd.OutOrStdout(), "Order is already paid.")
					if path := a.payment.ReceiptPath(); path != "" {
						fmt.Fprintf(cmd.OutOrStdout(), "Receipt: %s\n", path)
					}
					return nil
				}

				if method != "" {
					parsed, err := enums.ParsePaymentMethod(method)
					if err != nil {
						return pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method").
							WithDetails(map[string]any{"method": method})
					}
					if err := a.payment.SelectMethod(parsed); err != nil {
						return err
					}
				}

				details := payment.WalletDetails{
					PhoneNumber:   phone,
					AccountHolder: holder,
					Operator:      enums.MobileOperator(operator),
				}
				if err := a.payment.Pay(cmd.Context(), details); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Payment confirmed.")
				if path := a.payment.ReceiptPath(); path != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "Receipt: %s\n", path)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&method, "method", "", "LIVRAISON, WAVE or ORANGE_MONEY")
	cmd.Flags().StringVar(&phone, "wallet-phone", "", "wallet phone number, digits only")
	cmd.Flags().StringVar(&holder, "wallet-holder", "", "wallet account holder name")
	cmd.Flags().StringVar(&operator, "operator", "", "ORANGE_MONEY, MTN_MOBILE_MONEY or MOOV_MONEY")
	return cmd
}

func newOrderCommand() *cobra.Command {
	var orderNumber string

	cmd := &cobra.Command{
		Use:   "order [order-id]",
		Short: "Show an order by id or number",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && orderNumber == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "pass an order id or --number")
			}
			return withApp(cmd, func(a *app) error {
				var (
					order *api.Order
					err   error
				)
				if orderNumber != "" {
					order, err = a.client.GetOrderByNumber(cmd.Context(), orderNumber)
				} else {
					var orderID int64
					orderID, err = strconv.ParseInt(args[0], 10, 64)
					if err != nil {
						return fmt.Errorf("invalid order id %q", args[0])
					}
					order, err = a.client.GetOrder(cmd.Context(), orderID)
				}
				if err != nil {
					return err
				}
				printOrder(cmd, order)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&orderNumber, "number", "", "order number, e.g. CMD-2024-001")
	return cmd
}

func printOrder(cmd *cobra.Command, order *api.Order) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Commande:  %s (id %d)\n", order.OrderNumber, order.ID)
	fmt.Fprintf(out, "Date:      %s\n", order.CreatedAt)
	fmt.Fprintf(out, "Statut:    %s\n", order.Status)
	fmt.Fprintf(out, "Total:     %s\n", order.TotalAmount.String())
	fmt.Fprintf(out, "Livraison: %t\n", order.Delivery)
	fmt.Fprintf(out, "Payee:     %t\n", order.IsPaid)
}

func newReceiptCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "receipt <order-id>",
		Short: "Download the receipt for an order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orderID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid order id %q", args[0])
			}
			return withApp(cmd, func(a *app) error {
				data, err := a.client.DownloadReceipt(cmd.Context(), orderID)
				if err != nil {
					return err
				}
				path, err := payment.NewDirWriter(a.cfg.Receipts).Write(orderID, data)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Receipt saved to %s\n", path)
				return nil
			})
		},
	}
}
