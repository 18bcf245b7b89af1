package main

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/popwin/internal/config"
)

var configOpts struct {
	init   bool
	force  bool
	themes bool
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print or write the configuration",
	Long: `Print the configuration in effect as TOML.

With --init, write the default configuration to the config file instead.
An existing file is only replaced with --force. Set popup.theme to one of
the names printed by --themes to start from a bundled highlight preset.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().BoolVar(&configOpts.init, "init", false,
		"Write the default configuration file")
	configCmd.Flags().BoolVar(&configOpts.force, "force", false,
		"Overwrite an existing file with --init")
	configCmd.Flags().BoolVar(&configOpts.themes, "themes", false,
		"List the bundled highlight themes")
}

func runConfig(cmd *cobra.Command, args []string) error {
	if configOpts.themes {
		for _, name := range config.ListPresets() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	}
	if !configOpts.init {
		data, err := toml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to encode config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	path := configPath()
	if _, err := os.Stat(path); err == nil && !configOpts.force {
		return fmt.Errorf("%s already exists, use --force to replace it", path)
	}
	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}
