package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ── config ───────────────────────────────────────────────────────────────────

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Persist default settings to ~/.cardctl/config.yaml",
}

var configSetServerCmd = &cobra.Command{
	Use:   "set-server <url>",
	Short: "Set the default server URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeConfigKey(cmd, "server", args[0])
	},
}

var configSetPrincipalCmd = &cobra.Command{
	Use:   "set-principal <principal>",
	Short: "Set the default principal to act as",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeConfigKey(cmd, "principal", args[0])
	},
}

func init() {
	configCmd.AddCommand(configSetServerCmd)
	configCmd.AddCommand(configSetPrincipalCmd)
}

func writeConfigKey(cmd *cobra.Command, key, value string) error {
	path := cfgFile
	if path == "" {
		path = filepath.Join(configDir(), "config.yaml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	viper.Set(key, value)
	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s set to %s in %s\n", key, value, path)
	return nil
}
