package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/jonathan/resume-coach/internal/analyzer"
	"github.com/jonathan/resume-coach/internal/ingestion"
	"github.com/jonathan/resume-coach/internal/objectstore"
	"github.com/jonathan/resume-coach/internal/worker"
	"github.com/spf13/cobra"
)

var workerCount int

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume analysis requests from RabbitMQ",
	Long: `Consume analysis requests from the analysis_requests queue, download each document from
object storage, analyze it and publish the result to the analysis_results exchange.`,
	RunE: runWorker,
}

func init() {
	workerCmd.Flags().IntVarP(&workerCount, "workers", "w", 0, "Number of concurrent workers (overrides config)")
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.RabbitMQURL == "" {
		return fmt.Errorf("RABBITMQ_URL environment variable is required")
	}
	if workerCount > 0 {
		cfg.Workers = workerCount
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	extractor, err := ingestion.NewExtractor(cfg.PDFBackend)
	if err != nil {
		return err
	}
	store, err := objectstore.New(ctx, objectstore.Options{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		MaxBytes:        cfg.MaxUploadBytes(),
	})
	if err != nil {
		return err
	}

	processor := worker.NewProcessor(store, analyzer.New(extractor, analyzer.Options{}))
	consumer, err := worker.Dial(cfg.RabbitMQURL, processor, cfg.Workers)
	if err != nil {
		return err
	}
	defer func() { _ = consumer.Close() }()

	log.Printf("[worker] starting %d workers", cfg.Workers)
	if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	log.Printf("[worker] stopped")
	return nil
}
