package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nhle/todo-tracker/internal/api"
	"github.com/nhle/todo-tracker/internal/logging"
	"github.com/nhle/todo-tracker/internal/store"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var (
		addr   string
		driver string
		dsn    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("driver") {
				cfg.Storage.Driver = driver
			}
			if cmd.Flags().Changed("dsn") {
				cfg.Storage.DSN = dsn
			}

			logger := logging.New(cmd.ErrOrStderr(), cfg.Log)

			st, err := store.Open(cfg.Storage.Driver, cfg.Storage.DSN)
			if err != nil {
				return fmt.Errorf("opening %s store: %w", cfg.Storage.Driver, err)
			}
			defer st.Close()

			server, err := api.NewServer(api.ServerOptions{Store: st, Logger: logger})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger.Info("listening", "addr", cfg.Server.Addr, "driver", cfg.Storage.Driver)
			if err := server.Serve(ctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout()); err != nil {
				return err
			}
			logger.Info("server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	cmd.Flags().StringVar(&driver, "driver", "", "Storage driver: sqlite or postgres")
	cmd.Flags().StringVar(&dsn, "dsn", "", "Storage DSN: file path for sqlite, URL for postgres")
	return cmd
}
