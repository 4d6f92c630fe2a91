package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"zaad/internal/aggregate"
	"zaad/internal/amqp"
	"zaad/internal/backend"
	"zaad/internal/cli"
	"zaad/internal/config"
	"zaad/internal/log"
	"zaad/internal/services"
	ports "zaad/internal/sheets"
	gsheet "zaad/internal/sheets/google"
	"zaad/internal/sheets/xlsx"
	"zaad/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), log.ComponentWorker, true)
	logger.Info("Starting zaad-worker")
	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger).
		CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	exporter, err := newExporter(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize exporter", log.FieldError, err)
		os.Exit(1)
	}

	summary := services.NewSummaryService(result.Store, result.Store, aggregate.Options{
		Location: cfg.Location(),
		SelfTag:  cfg.SelfTag,
	})
	exportWorker := worker.NewExportWorker(summary, exporter)

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, exporting on the interval only", log.FieldError, err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
			logger.Info("AMQP client initialized", "queue", cfg.AMQPQueue)
		}
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return exportWorker.RunPeriodic(gctx, cfg.ExportInterval)
	})
	if amqpClient != nil {
		g.Go(func() error {
			return amqpClient.ConsumeRecordChanged(gctx, exportWorker.HandleRecordChanged)
		})
	}

	logger.Info("Export worker running",
		"interval", cfg.ExportInterval,
		"amqp", amqpClient != nil,
		"target", exporterName(cfg))

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	<-done

	stats := exportWorker.Stats()
	logger.Info("Worker shutdown complete",
		"exports", stats.Exports,
		"failures", stats.Failures,
		"last_reference_date", stats.LastRef)
}

// newExporter picks the Google Sheet when one is configured and local xlsx
// files otherwise.
func newExporter(ctx context.Context, cfg *config.Config, logger *log.Logger) (ports.ReportExporter, error) {
	if !cfg.ExportEnabled() {
		dir := filepath.Join(cfg.DataDirectory, "exports")
		logger.Info("Google Sheets disabled - exporting workbooks locally", "directory", dir)
		return xlsx.FileExporter{Dir: dir}, nil
	}

	credentialsFile := cfg.GoogleServiceAccountFile
	if credentialsFile == "" {
		credentialsFile = cfg.GoogleApplicationCredentials
	}
	client, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: credentialsFile,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return client, nil
}

func exporterName(cfg *config.Config) string {
	if cfg.ExportEnabled() {
		return "google-sheets"
	}
	return "xlsx"
}
