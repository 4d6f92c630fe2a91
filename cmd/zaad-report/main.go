// Command zaad-report prints the dashboard summary for one reference date,
// as JSON or as an xlsx workbook.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jinzhu/now"

	"zaad/internal/aggregate"
	"zaad/internal/backend"
	"zaad/internal/cli"
	"zaad/internal/log"
	"zaad/internal/services"
	"zaad/internal/sheets/xlsx"
)

func main() {
	date := flag.String("date", "", "reference date YYYY-MM-DD (default today)")
	format := flag.String("format", "json", "output format: json or xlsx")
	out := flag.String("out", "", "output file (default stdout for json, zaad-summary-<date>.xlsx for xlsx)")
	flag.Parse()

	cli.LoadEnvFile()
	// Logs go to stderr so stdout stays clean for the report.
	logger := log.NewJSON(os.Stderr, log.ParseLevel(os.Getenv("LOG_LEVEL")), log.ComponentSummary)
	log.SetDefault(logger)
	cfg := cli.LoadAndValidateConfig(logger)

	if *format != "json" && *format != "xlsx" {
		fmt.Fprintf(os.Stderr, "unknown format %q\n", *format)
		os.Exit(2)
	}

	var ref time.Time
	if *date != "" {
		t, err := time.ParseInLocation(time.DateOnly, *date, cfg.Location())
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -date %q: want YYYY-MM-DD\n", *date)
			os.Exit(2)
		}
		ref = now.With(t).EndOfDay()
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", log.FieldError, err)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	summary := services.NewSummaryService(result.Store, result.Store, aggregate.Options{
		Location: cfg.Location(),
		SelfTag:  cfg.SelfTag,
	})
	rep, err := summary.Report(ctx, ref)
	if err != nil {
		logger.Error("Failed to compute summary", log.FieldError, err)
		os.Exit(1)
	}

	if err := write(rep, *format, *out); err != nil {
		logger.Error("Failed to write report", log.FieldError, err)
		os.Exit(1)
	}
}

func write(rep aggregate.Report, format, out string) error {
	if format == "xlsx" {
		if out == "" {
			out = xlsx.FileName(rep)
		}
		if err := xlsx.SaveAs(out, rep); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, out)
		return nil
	}

	var w io.Writer = os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
		defer f.Close()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}
