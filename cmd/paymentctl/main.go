package main

import (
	"context"
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"github.com/imrishuroy/go-idempotent-payments/internal/app"
	"github.com/imrishuroy/go-idempotent-payments/internal/config"
)

var Version = "dev"

// appBuilder opens the configured backends. Tests swap it for an in-memory one.
type appBuilder func(ctx context.Context) (*app.App, error)

func loadApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg)
}

func newRootCmd(build appBuilder) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "paymentctl",
		Short:         "paymentctl - operate the payment gateway's ledger",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(migrateCmd(build))
	rootCmd.AddCommand(getCmd(build))
	return rootCmd
}

func main() {
	if err := newRootCmd(loadApp).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
