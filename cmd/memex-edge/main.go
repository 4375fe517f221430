// memex-edge is the edge-machine CLI: it captures screenshots, OCRs them,
// and syncs the resulting records to a central prometheus-server instance
// per the hosting mode declared in ~/.memex/instance.json.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/memexlabs/prometheus/pkg/instanceconfig"
)

var (
	homeConfigDir string
	dataDir       string
	apiToken      string

	cfg instanceconfig.Config
	log zerolog.Logger

	// cmdInput is where the chat REPL reads lines from; a package var so
	// tests can swap it for a fixed script.
	cmdInput io.Reader = os.Stdin
)

var rootCmd = &cobra.Command{
	Use:   "memex-edge",
	Short: "Capture, OCR, and sync screenshots to a prometheus-server instance",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log = zerolog.New(os.Stderr).With().Timestamp().Logger()

		instancePath := filepath.Join(homeConfigDir, "instance.json")
		loaded, err := instanceconfig.Load(instancePath)
		if err != nil {
			return fmt.Errorf("load instance config: %w", err)
		}
		cfg = loaded

		if apiToken == "" {
			apiToken = os.Getenv("MEMEX_API_TOKEN")
		}
		return nil
	},
}

func defaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".memex"
	}
	return filepath.Join(home, ".memex")
}

func init() {
	defaultDir := defaultConfigDir()
	rootCmd.PersistentFlags().StringVar(&homeConfigDir, "config-dir", defaultDir, "Directory holding instance.json")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", filepath.Join(defaultDir, "data"), "Directory holding images/ and ocr/ subdirectories")
	rootCmd.PersistentFlags().StringVar(&apiToken, "token", "", "Bearer token for the tunneled transport (defaults to $MEMEX_API_TOKEN)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
