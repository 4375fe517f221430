package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/memexlabs/prometheus/pkg/edgesync"
	"github.com/memexlabs/prometheus/pkg/vectorindex"
)

var syncDryRun bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync locally captured OCR records to the configured transport",
	Long: `Scans the local ocr/ directory, diffs against the known id set on
the configured transport (tunneled over HTTP to prometheus-server when the
active hosting mode has a tunnel URL configured, otherwise direct to the
vector index), and uploads the difference in batches.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ocrDir := filepath.Join(dataDir, "ocr")
		local, err := edgesync.ScanLocalRecords(ocrDir)
		if err != nil {
			return fmt.Errorf("scan local records: %w", err)
		}
		log.Info().Int("count", len(local)).Str("dir", ocrDir).Msg("scanned local records")

		transport, err := buildTransport()
		if err != nil {
			return err
		}

		report, err := edgesync.Run(context.Background(), transport, local, edgesync.Config{
			BatchSize: edgesync.DefaultBatchSize,
			DryRun:    syncDryRun,
		})
		if err != nil {
			return fmt.Errorf("sync run: %w", err)
		}

		log.Info().Int("synced", report.Synced).Int("errors", len(report.Errors)).Msg("sync complete")
		for _, e := range report.Errors {
			log.Warn().Str("error", e).Msg("sync document error")
		}
		return nil
	},
}

func buildTransport() (edgesync.Transport, error) {
	endpoint := cfg.ResolveEndpoint()
	collection := cfg.InstanceName + "_ocr_history"

	if cfg.UseTunnel() {
		if apiToken == "" {
			return nil, fmt.Errorf("tunneled hosting mode requires --token or $MEMEX_API_TOKEN")
		}
		return edgesync.NewTunneledTransport(cfg.TunnelURL(), cfg.InstanceName, apiToken), nil
	}

	baseURL := fmt.Sprintf("http://%s:%d", endpoint.ChromaHost, endpoint.ChromaPort)
	index := vectorindex.NewHTTPClient(baseURL, collection)
	return edgesync.NewDirectTransport(index), nil
}

func init() {
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "Fetch existing ids and report what would sync, without uploading")
	rootCmd.AddCommand(syncCmd)
}
