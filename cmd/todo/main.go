// Package main implements the todo CLI: the REST API server, one-shot client
// commands and the interactive terminal UI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nhle/todo-tracker/internal/client"
	"github.com/nhle/todo-tracker/internal/model"
	"github.com/nhle/todo-tracker/internal/notify"
)

// errReported marks a failure that was already shown to the user.
var errReported = errors.New("error reported")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	apiURL     string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "todo",
		Short:         "Todo tracker: REST API server, client and terminal UI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", model.DefaultConfigPath(), "Config file path")
	cmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "API base URL (overrides client.base_url)")

	cmd.AddCommand(
		newServeCmd(opts),
		newListCmd(opts),
		newGetCmd(opts),
		newAddCmd(opts),
		newUpdateCmd(opts),
		newDoneCmd(opts, true),
		newDoneCmd(opts, false),
		newDeleteCmd(opts),
		newUICmd(opts),
		newConfigCmd(opts),
	)
	return cmd
}

// loadConfig reads the config file and applies flag overrides.
func (o *rootOptions) loadConfig() (*model.AppConfig, error) {
	cfg, err := model.LoadConfig(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.apiURL != "" {
		cfg.Client.BaseURL = o.apiURL
	}
	return cfg, nil
}

func newAPIClient(cfg *model.AppConfig) *client.Client {
	return client.New(cfg.Client.BaseURL, client.WithTimeout(cfg.Client.Timeout()))
}

// runAPI calls fn with a configured client. A failure is printed to stderr
// as an error notification; a non-empty success message is printed to
// stdout as a success notification.
func (o *rootOptions) runAPI(cmd *cobra.Command, fn func(ctx context.Context, c *client.Client) (string, error)) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}

	notices := notify.NewStore()
	success, err := fn(cmd.Context(), newAPIClient(cfg))
	if err != nil {
		notices.HandleError(err)
		printNotifications(cmd.ErrOrStderr(), notices.List())
		return errReported
	}

	if success != "" {
		notices.Success(success)
		printNotifications(cmd.OutOrStdout(), notices.List())
	}
	return nil
}
