package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/TusharChauhan09/Eclipse0.2-CLI/internal/config"
)

func newConfigCommand(rt *runtimeState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the eclipse configuration file",
	}
	cmd.AddCommand(newConfigInitCommand(rt), newConfigViewCommand(rt))
	return cmd
}

func newConfigInitCommand(rt *runtimeState) *cobra.Command {
	var force bool
	var clientID, serverURL string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(rt.configPath); err == nil && !force {
				return fmt.Errorf("config file %s already exists (use --force to overwrite)", rt.configPath)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			var cfg config.Config
			cfg.Auth.ServerURL = config.DefaultServerURL
			cfg.Auth.ClientID = clientID
			if serverURL != "" {
				cfg.Auth.ServerURL = serverURL
			}
			cfg.Auth.Scope = config.DefaultScope
			cfg.Auth.TokenStorage = config.TokenStorageFile
			cfg.AI.Model = config.DefaultModel
			if err := config.Save(rt.configPath, cfg); err != nil {
				return err
			}
			fmt.Fprintf(rt.errOut(), "Config written to %s\n", rt.configPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth client ID to store")
	cmd.Flags().StringVar(&serverURL, "server-url", "", "Authorization server URL to store")
	return cmd
}

func newConfigViewCommand(rt *runtimeState) *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Print the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := rt.cfg
			if cfg.AI.APIKey != "" {
				cfg.AI.APIKey = "********"
			}
			return toml.NewEncoder(rt.out()).Encode(cfg)
		},
	}
}
