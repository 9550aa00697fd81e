package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/todo-tracker/internal/model"
)

func newConfigCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}
	cmd.AddCommand(newConfigInitCmd(root), newConfigPathCmd(root), newConfigShowCmd(root))
	return cmd
}

func newConfigInitCmd(root *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !force {
				if _, err := os.Stat(root.configPath); err == nil {
					return fmt.Errorf("config %s already exists (use --force to overwrite)", root.configPath)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return err
				}
			}
			if err := model.SaveConfig(root.configPath, model.DefaultAppConfig()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", root.configPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func newConfigPathCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), root.configPath)
		},
	}
}

// newConfigShowCmd prints the effective configuration after the file,
// .env and TODO_* environment overrides are applied.
func newConfigShowCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}

			rows := [][]string{
				{"server.addr", cfg.Server.Addr},
				{"server.shutdown_timeout_sec", fmt.Sprint(cfg.Server.ShutdownTimeoutSec)},
				{"storage.driver", cfg.Storage.Driver},
				{"storage.dsn", cfg.Storage.DSN},
				{"log.level", cfg.Log.Level},
				{"log.format", cfg.Log.Format},
				{"client.base_url", cfg.Client.BaseURL},
				{"client.timeout_sec", fmt.Sprint(cfg.Client.TimeoutSec)},
				{"display.theme", cfg.Display.Theme},
				{"display.poll_interval_sec", fmt.Sprint(cfg.Display.PollIntervalSec)},
			}
			fmt.Fprint(cmd.OutOrStdout(), formatColumns([]string{"KEY", "VALUE"}, rows))
			return nil
		},
	}
}
