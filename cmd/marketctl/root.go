package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "marketctl",
		Short:         "Order goods from the marketplace warehouses",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newEntrepotsCommand(),
		newProductsCommand(),
		newZonesCommand(),
		newCartCommand(),
		newCheckoutCommand(),
		newPayCommand(),
		newOrderCommand(),
		newReceiptCommand(),
	)
	return root
}

// withApp wires the engines for one command invocation.
func withApp(cmd *cobra.Command, run func(a *app) error) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()
	return run(a)
}
