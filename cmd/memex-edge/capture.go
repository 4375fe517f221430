package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/memexlabs/prometheus/pkg/edgecapture"
	"github.com/memexlabs/prometheus/pkg/vectorindex"
)

var captureInterval time.Duration

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Run the capture loop: screenshot, OCR, and local persistence",
	Long: `Runs forever, capturing every detected screen on capture-interval,
OCRing each one through a bounded worker pool, and writing the resulting
records to disk. When the active hosting mode has no tunnel URL configured
(always the case in local mode), each OCR'd record is also upserted into the
vector index directly; when it has one, the sync command owns getting
records into the index instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := edgecapture.DetectBackend()
		if err != nil {
			return err
		}
		log.Info().Str("backend", backend.Name()).Msg("OCR backend detected")

		var upserter vectorindex.Index
		if !cfg.UseTunnel() {
			endpoint := cfg.ResolveEndpoint()
			baseURL := fmt.Sprintf("http://%s:%d", endpoint.ChromaHost, endpoint.ChromaPort)
			collection := cfg.InstanceName + "_ocr_history"
			upserter = vectorindex.NewHTTPClient(baseURL, collection)
			log.Info().Str("chroma", baseURL).Str("collection", collection).Msg("direct upsert enabled")
		} else {
			log.Info().Msg("tunneled hosting mode, capture will not upsert directly")
		}

		loopCfg := edgecapture.Config{
			InstanceName:     cfg.InstanceName,
			ImagesDir:        filepath.Join(dataDir, "images"),
			OCRDir:           filepath.Join(dataDir, "ocr"),
			CaptureInterval:  captureInterval,
			MaxConcurrentOCR: edgecapture.DefaultMaxConcurrentOCR,
		}

		loop := edgecapture.NewLoop(loopCfg, edgecapture.NewDisplayCapturer(), backend, upserter, log)

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		log.Info().Dur("interval", loopCfg.CaptureInterval).Msg("starting capture loop")
		return loop.Run(ctx)
	},
}

func init() {
	captureCmd.Flags().DurationVar(&captureInterval, "interval", edgecapture.DefaultCaptureInterval, "Capture interval")
	rootCmd.AddCommand(captureCmd)
}
