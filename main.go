package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/TechNerdXp/csv-statement/internal/api"
	"github.com/TechNerdXp/csv-statement/internal/config"
	"github.com/TechNerdXp/csv-statement/internal/extractor"
	"github.com/TechNerdXp/csv-statement/internal/logger"
	"github.com/TechNerdXp/csv-statement/internal/parser"
	"github.com/TechNerdXp/csv-statement/internal/writer"
)

const version = "1.1.0"

func main() {
	cfg := config.Load()

	sourceFlag := flag.String("source", cfg.SourceDir, "Directory containing statement PDFs")
	outputFlag := flag.String("output", cfg.OutputDir, "Directory for CSV output")
	combinedFlag := flag.Bool("combined", cfg.Combined, "Write one combined CSV instead of one per PDF")
	mergeFlag := flag.String("merge", cfg.MergeStrategy, "Split-row merge strategy: nearest, delta-validated")
	directionFlag := flag.String("direction", cfg.DirectionStrategy, "Direction strategy: rule-table, tolerance-band")
	metaFlag := flag.Bool("meta", false, "Include account metadata header rows in CSV")
	serveFlag := flag.Bool("serve", false, "Start the HTTP convert API instead of batch processing")
	addrFlag := flag.String("addr", cfg.ListenAddr, "HTTP listen address for --serve")
	levelFlag := flag.String("log-level", cfg.LogLevel, "Log level: trace, debug, info, warn, error")
	versionFlag := flag.Bool("version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Statement PDF to CSV Converter

Reconstructs transactions from HSBC statement PDFs and writes them as
six-column CSV files (Date, Payment type, Details, Paid out, Paid in,
Balance).

Usage:
  csv-statement [flags]

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Convert every PDF in ./pdfs to one CSV each in ./csvs
  csv-statement --source=pdfs --output=csvs

  # One combined CSV across all statements
  csv-statement --source=pdfs --output=csvs --combined

  # Run the HTTP convert API
  csv-statement --serve --addr=:8080
`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("csv-statement v%s\n", version)
		os.Exit(0)
	}

	cfg.SourceDir = *sourceFlag
	cfg.OutputDir = *outputFlag
	cfg.Combined = *combinedFlag
	cfg.MergeStrategy = *mergeFlag
	cfg.DirectionStrategy = *directionFlag
	cfg.ListenAddr = *addrFlag
	cfg.LogLevel = *levelFlag

	log := logger.New(cfg.LogLevel)

	pipeline, err := buildPipeline(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	if *serveFlag {
		log.Info().Str("addr", cfg.ListenAddr).Msg("starting convert API")
		if err := api.NewApp().Listen(cfg.ListenAddr); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
		return
	}

	if err := runBatch(cfg, pipeline, *metaFlag, log); err != nil {
		log.Fatal().Err(err).Msg("batch failed")
	}
}

func buildPipeline(cfg *config.Config) (*parser.Pipeline, error) {
	merge, err := parser.MergeStrategyByName(cfg.MergeStrategy)
	if err != nil {
		return nil, err
	}
	direction, err := parser.DirectionStrategyByName(cfg.DirectionStrategy)
	if err != nil {
		return nil, err
	}
	p := parser.NewPipeline()
	p.Merge = merge
	p.Direction = direction
	return p, nil
}

// runBatch processes every PDF under the source directory sequentially. A
// failed document is logged and skipped; it never aborts its siblings.
func runBatch(cfg *config.Config, pipeline *parser.Pipeline, includeMeta bool, log zerolog.Logger) error {
	for _, dir := range []string{cfg.SourceDir, cfg.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create directory %q: %w", dir, err)
		}
	}

	pdfFiles, err := filepath.Glob(filepath.Join(cfg.SourceDir, "*.pdf"))
	if err != nil {
		return err
	}
	if len(pdfFiles) == 0 {
		log.Warn().Str("dir", cfg.SourceDir).Msg("no PDF files found")
		return nil
	}

	log.Info().
		Int("files", len(pdfFiles)).
		Bool("combined", cfg.Combined).
		Str("merge", pipeline.Merge.Name()).
		Str("direction", pipeline.Direction.Name()).
		Msg("processing statements")

	csvWriter := &writer.CSVWriter{IncludeMeta: includeMeta}
	var combinedDocs []*parser.Document
	processed := 0

	for _, pdfPath := range pdfFiles {
		docLog := log.With().Str("file", filepath.Base(pdfPath)).Logger()

		pages, err := extractor.ExtractText(pdfPath)
		if err != nil {
			docLog.Error().Err(err).Msg("extraction failed, skipping document")
			continue
		}
		docLog.Debug().Int("pages", len(pages)).Msg("extracted text")

		doc := pipeline.Assemble(pages)
		docLog.Info().Int("records", len(doc.Records)).Msg("assembled transactions")

		if cfg.Combined {
			combinedDocs = append(combinedDocs, doc)
			processed++
			continue
		}

		records := pipeline.Reconstruct(doc.Records, doc.RawLines)
		records = parser.FilterForExport(records)

		base := strings.TrimSuffix(filepath.Base(pdfPath), filepath.Ext(pdfPath))
		outPath := filepath.Join(cfg.OutputDir, base+"_transactions.csv")

		info := doc.Info
		info.Transactions = records
		if err := csvWriter.WriteToFile(outPath, &info, parser.ExportRows(records)); err != nil {
			docLog.Error().Err(err).Msg("CSV write failed, skipping document")
			continue
		}
		docLog.Info().Int("transactions", len(records)).Str("output", outPath).Msg("wrote CSV")
		processed++
	}

	if cfg.Combined && len(combinedDocs) > 0 {
		records := pipeline.Combine(combinedDocs)
		if len(records) == 0 {
			log.Warn().Msg("no transactions found across documents")
			return nil
		}

		outPath := filepath.Join(cfg.OutputDir, "All_Transactions_"+parser.DateRangeLabel(records)+".csv")
		if err := csvWriter.WriteToFile(outPath, nil, parser.ExportRows(records)); err != nil {
			return fmt.Errorf("combined CSV write failed: %w", err)
		}
		log.Info().Int("transactions", len(records)).Str("output", outPath).Msg("wrote combined CSV")
	}

	log.Info().Int("processed", processed).Int("total", len(pdfFiles)).Msg("done")
	return nil
}
