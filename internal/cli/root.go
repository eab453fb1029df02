// Package cli implements the civilex command-line client.
package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Lllllllleong/civilex/internal/client"
	"github.com/Lllllllleong/civilex/internal/config"
)

var apiBase string

// newClient is replaced in tests.
var newClient = func(cfg config.Config) *client.Client {
	return client.FromConfig(cfg)
}

var rootCmd = &cobra.Command{
	Use:   "civilex",
	Short: "Upload contracts and ask questions about them",
	Long: `civilex talks to the contract intake service: it requests an upload
destination, uploads the file, runs extraction and summarisation, and asks
follow-up questions about the extracted text.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiBase, "api", "", "service base URL (overrides API_BASE)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadClient() (*client.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if apiBase != "" {
		cfg.APIBase = apiBase
	}
	slog.Debug("Using API.", "base", cfg.APIBase)
	return newClient(cfg), nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
