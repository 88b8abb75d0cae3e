// scorecard-export loads a scorecard, aggregates it, and writes the summary
// and full CSV exports.
//
// Usage:
//
//	scorecard-export -in deal.xlsx -out ./exports [-config scorecard.yaml]
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/MikeSquared-Agency/Scorecard/internal/config"
	"github.com/MikeSquared-Agency/Scorecard/internal/export"
	"github.com/MikeSquared-Agency/Scorecard/internal/scorecard"
	"github.com/MikeSquared-Agency/Scorecard/internal/scoring"
	"github.com/MikeSquared-Agency/Scorecard/internal/sheet"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	in := flag.String("in", "", "scorecard to load (.xlsx or .csv); defaults to the bundled example")
	out := flag.String("out", "", "directory for the CSV exports; defaults to export.out_dir")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, *in, *out, logger); err != nil {
		logger.Error("export failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, in, out string, logger *slog.Logger) error {
	aliases, err := cfg.Aliases()
	if err != nil {
		return err
	}

	path := in
	if path == "" {
		path = cfg.Input.DefaultPath
	}
	table, err := sheet.LoadFile(path)
	if err != nil {
		if in == "" && errors.Is(err, fs.ErrNotExist) {
			return &scorecard.NoInputError{DefaultPath: path}
		}
		return err
	}

	card, err := scorecard.Build(table, aliases)
	if err != nil {
		return err
	}

	res := scoring.NewAggregator(cfg.Thresholds(), logger).Aggregate(card.Items)

	if out == "" {
		out = cfg.Export.OutDir
	}
	paths, err := export.NewFormatter(cfg.Export.BOM, logger).WriteFiles(out, card.Schema, res)
	if err != nil {
		return fmt.Errorf("write exports: %w", err)
	}

	h := scoring.NewHeadline(res.Overall)
	logger.Info("scorecard exported",
		"source", card.Source,
		"items", len(res.Items),
		"categories", len(res.Categories),
		"overall_weighted", h.OverallWeighted,
		"total_weight", h.TotalWeight,
		"overall_score", h.OverallScore,
		"signal", res.Overall.Signal,
		"files", paths,
	)
	return nil
}
