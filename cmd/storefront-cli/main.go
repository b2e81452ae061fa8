package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront client - browse, shop and manage orders from a terminal",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	opts.register(rootCmd)

	// Add subcommands
	rootCmd.AddCommand(loginCmd(opts))
	rootCmd.AddCommand(registerCmd(opts))
	rootCmd.AddCommand(logoutCmd(opts))
	rootCmd.AddCommand(whoamiCmd(opts))
	rootCmd.AddCommand(productsCmd(opts))
	rootCmd.AddCommand(productCmd(opts))
	rootCmd.AddCommand(categoriesCmd(opts))
	rootCmd.AddCommand(cartCmd(opts))
	rootCmd.AddCommand(couponCmd(opts))
	rootCmd.AddCommand(checkoutCmd(opts))
	rootCmd.AddCommand(ordersCmd(opts))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, describe(err))
		os.Exit(1)
	}
}
