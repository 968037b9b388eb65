package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/idilsaglam/shoplist/internal/config"
	"github.com/idilsaglam/shoplist/internal/ui"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the config file",
		// Config commands never touch the list, so the store stays closed.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		Args:  exactArgs(0, "config init [--force]"),
		RunE: func(_ *cobra.Command, _ []string) error {
			path := a.configPath()
			_, err := os.Stat(path)
			switch {
			case err == nil && !force:
				return usagef("config file already exists: %s (use --force to overwrite)", path)
			case err != nil && !errors.Is(err, os.ErrNotExist):
				return err
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return err
			}
			ui.OK("wrote " + path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective config, environment overrides included",
		Args:  exactArgs(0, "config show"),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.configPath())
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}
