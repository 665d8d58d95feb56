package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"abrdata/internal/abr"
	"abrdata/internal/config"
	"abrdata/internal/exporter"
	"abrdata/internal/frame"
	"abrdata/internal/infrastructure"
)

func main() {
	location := flag.String("location", "", "recording or session-folder location (required)")
	operation := flag.String("op", "epochs", "epochs | epochs-filtered | segments | segments-filtered | metadata")
	n := flag.Int("n", 10, "segment count for the segments operations")
	refresh := flag.Bool("refresh", false, "bypass and rewrite the result cache")
	out := flag.String("out", "", "output file path (defaults under the configured export dir)")
	format := flag.String("format", "", "csv | xlsx (defaults to the configured export format)")
	flag.Parse()

	if *location == "" {
		fmt.Fprintln(os.Stderr, "usage: abr-export -location <path> [-op <operation>]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = &config.Config{
			Logging: config.LoggingConfig{Level: "info", Format: "json", Output: "console"},
			Paths:   config.PathsConfig{ExportDir: "exports"},
			Export:  config.ExportConfig{Format: "csv"},
		}
	}
	if _, err := infrastructure.InitializeLogger(cfg.Logging); err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}

	if *format == "" {
		*format = cfg.Export.Format
	}
	if *out == "" {
		name := fmt.Sprintf("%s %s.%s", filepath.Base(*location), *operation, *format)
		*out = filepath.Join(cfg.Paths.ExportDir, name)
	}

	if err := run(cfg, *location, *operation, *n, *refresh, *out, *format); err != nil {
		slog.Error("Export failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Export complete", slog.String("output", *out))
}

func run(cfg *config.Config, location, operation string, n int, refresh bool, out, format string) error {
	ds, err := abr.Load(location)
	if err != nil {
		return err
	}

	if operation == "metadata" {
		md, err := ds.ERPMetadata()
		if err != nil {
			return err
		}
		return exporter.NewCSVWriter(cfg.Export.BOMPrefix).WriteTable(out, md)
	}

	epochs, err := extract(ds, operation, n, refresh)
	if err != nil {
		return err
	}

	switch format {
	case "xlsx":
		return exporter.NewExcelWriter().WriteEpochs(out, epochs)
	case "csv":
		return exporter.NewCSVWriter(cfg.Export.BOMPrefix).WriteEpochs(out, epochs)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

func extract(ds abr.Dataset, operation string, n int, refresh bool) (*frame.Epochs, error) {
	switch operation {
	case "epochs":
		opts := abr.DefaultEpochOptions()
		opts.RefreshCache = refresh
		return ds.Epochs(opts)
	case "epochs-filtered":
		opts := abr.DefaultFilteredEpochOptions()
		opts.RefreshCache = refresh
		return ds.EpochsFiltered(opts)
	case "segments":
		opts := abr.DefaultSegmentOptions()
		opts.RefreshCache = refresh
		return ds.RandomSegments(n, opts)
	case "segments-filtered":
		opts := abr.DefaultFilteredSegmentOptions()
		opts.RefreshCache = refresh
		return ds.RandomSegmentsFiltered(n, opts)
	default:
		return nil, fmt.Errorf("unknown operation %q", operation)
	}
}
