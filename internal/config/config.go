package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config carries everything the pipeline entry points need. It is built
// once by the driver and passed in explicitly; nothing reads globals.
type Config struct {
	SourceDir string // directory scanned for *.pdf statements
	OutputDir string // directory CSV files are written to
	Combined  bool   // one combined CSV instead of one per document

	MergeStrategy     string // "nearest" or "delta-validated"
	DirectionStrategy string // "rule-table" or "tolerance-band"

	ListenAddr string // HTTP convert API address, used with --serve
	LogLevel   string
}

// Load builds a Config from the environment, after loading a .env file if
// one is present. Missing values fall back to sensible defaults; CLI flags
// may override the result afterwards.
func Load() *Config {
	_ = godotenv.Load() // .env is optional

	return &Config{
		SourceDir:         getenv("STATEMENT_SOURCE_DIR", "pdfs"),
		OutputDir:         getenv("STATEMENT_OUTPUT_DIR", "csvs"),
		Combined:          getenv("STATEMENT_COMBINED", "false") == "true",
		MergeStrategy:     getenv("STATEMENT_MERGE_STRATEGY", "nearest"),
		DirectionStrategy: getenv("STATEMENT_DIRECTION_STRATEGY", "rule-table"),
		ListenAddr:        getenv("STATEMENT_LISTEN_ADDR", ":8080"),
		LogLevel:          getenv("STATEMENT_LOG_LEVEL", "info"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
