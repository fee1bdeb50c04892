// Package main is the CLI entrypoint: a thin cobra wrapper around
// package serv's bootstrap.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/pgqlgate/pgqlgate/serv"
)

var (
	version string
	commit  string
)

var cpath string

func Cmd() {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:   "pgqlgate",
		Short: "Automatic GraphQL-over-PostgreSQL gateway",
	}
	rootCmd.PersistentFlags().StringVar(&cpath, "path", "./config", "path to config files")

	rootCmd.AddCommand(servCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func servCmd() *cobra.Command {
	var configName string

	cmd := &cobra.Command{
		Use:   "serv",
		Short: "Start the gateway HTTP/WebSocket server",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := serv.LoadConfig(afero.NewOsFs(), cpath, configName)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := serv.New(ctx, cfg)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			defer s.Close()

			if err := s.Run(ctx); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
		},
	}
	cmd.Flags().StringVar(&configName, "config-name", "config", "base name of the config file (without extension)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("pgqlgate %s (%s)\n", version, commit)
		},
	}
}
