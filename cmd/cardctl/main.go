package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jmerrifield20/cardledger/pkg/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is overridden via -ldflags "-X main.version=...".
var version = "dev"

const defaultServer = "http://localhost:8080"

var (
	serverURL    string
	principalArg string
	cfgFile      string
	outputFormat string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cardctl",
	Short: "cardledger CLI",
	Long: `cardctl talks to a cardledger server.

It registers cards, manages verified graders, records grades, and tracks
card ownership. Mutating commands act as the principal given by --as (or
the "principal" key in ~/.cardctl/config.yaml).`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			viper.AddConfigPath(configDir())
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
		viper.SetEnvPrefix("CARDCTL")
		viper.AutomaticEnv()
		_ = viper.ReadInConfig()

		if serverURL == "" {
			serverURL = viper.GetString("server")
		}
		if serverURL == "" {
			serverURL = defaultServer
		}
		if principalArg == "" {
			principalArg = viper.GetString("principal")
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.cardctl/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "cardledger server URL (default "+defaultServer+")")
	rootCmd.PersistentFlags().StringVar(&principalArg, "as", "", "principal to act as")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "Output format: text or json")

	rootCmd.AddCommand(cardCmd)
	rootCmd.AddCommand(graderCmd)
	rootCmd.AddCommand(gradeCmd)
	rootCmd.AddCommand(ownerCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(journalCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

func configDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cardctl")
}

// newClient builds a client for the configured server and principal.
func newClient() (*client.Client, error) {
	return client.New(serverURL, client.WithPrincipal(principalArg))
}

// requirePrincipal fails early for commands that mutate the ledger.
func requirePrincipal() error {
	if principalArg == "" {
		return fmt.Errorf("no principal set: pass --as or run 'cardctl config set-principal'")
	}
	return nil
}

func parseID(s, what string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be a non-negative integer", what, s)
	}
	return v, nil
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// emit prints v as JSON when -o json is set and calls text otherwise.
func emit(cmd *cobra.Command, v any, text func(w io.Writer)) error {
	if outputFormat == "json" {
		return printJSON(cmd.OutOrStdout(), v)
	}
	text(cmd.OutOrStdout())
	return nil
}

// ── version ──────────────────────────────────────────────────────────────────

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the cardctl version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "cardctl %s\n", version)
	},
}
