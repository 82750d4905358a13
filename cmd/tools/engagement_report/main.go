package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/classpulse/classpulse/internal/analytics/engagement"
	"github.com/classpulse/classpulse/internal/ingest"
	"github.com/classpulse/classpulse/internal/logging"
)

func main() {
	input := flag.String("input", "", "Samples file (.json array or .csv with timestamp,score)")
	format := flag.String("format", "text", "Output format: text or json")
	dropThreshold := flag.Float64("drop-threshold", engagement.DefaultDropThreshold, "Minimum score drop reported as a dropoff")
	peakWindow := flag.Int("peak-window", engagement.DefaultPeakWindow, "Samples per peak window")
	minSustained := flag.Int("min-sustained", engagement.DefaultMinSustainedSec, "Minimum sustained period in seconds")
	flag.Parse()

	logger := logging.NewDevelopment()

	if *input == "" {
		logger.Fatal("-input is required")
	}

	f, err := os.Open(*input)
	if err != nil {
		logger.Fatal("Failed to open input", "path", *input, "error", err)
	}
	defer func() { _ = f.Close() }()

	samples, err := ingest.ReadSamples(f, filepath.Ext(*input))
	if err != nil {
		logger.Fatal("Failed to read samples", "path", *input, "error", err)
	}

	engine := engagement.NewEngine(engagement.Config{
		DropThreshold:   *dropThreshold,
		PeakWindow:      *peakWindow,
		MinSustainedSec: *minSustained,
	})
	result := engine.Analyze(samples)

	for _, p := range result.Diagnostics.SkippedPeriods {
		logger.Warn("Skipped period", "start", p.Start, "end", p.End, "reason", p.Reason)
	}

	if err := writeReport(os.Stdout, result, *format); err != nil {
		logger.Fatal("Failed to write report", "error", err)
	}
}

func writeReport(w io.Writer, result *engagement.AnalyticsResult, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "text":
		_, err := fmt.Fprintf(w, "%s\n\n%s\n", engagement.RenderSummaryReport(result), engagement.RenderDropoffDetails(result))
		return err
	default:
		return errors.New("unknown format: " + format)
	}
}
