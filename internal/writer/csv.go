package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/TechNerdXp/csv-statement/internal/models"
)

// CSVWriter serializes export rows to the six-column statement CSV.
type CSVWriter struct {
	// IncludeMeta prepends account metadata rows when set.
	IncludeMeta bool
}

// WriteToFile writes rows to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, info *models.StatementInfo, rows []models.ExportRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, info, rows)
}

// Write serializes rows in CSV format to the given writer.
func (w *CSVWriter) Write(out io.Writer, info *models.StatementInfo, rows []models.ExportRow) error {
	writer := csv.NewWriter(out)
	defer writer.Flush()

	if w.IncludeMeta && info != nil {
		if info.AccountHolder != "" {
			writer.Write([]string{"# Account Holder", info.AccountHolder})
		}
		if info.AccountNumber != "" {
			writer.Write([]string{"# Account Number", info.AccountNumber})
		}
		if info.SortCode != "" {
			writer.Write([]string{"# Sort Code", info.SortCode})
		}
		if info.StatementPeriod != "" {
			writer.Write([]string{"# Statement Period", info.StatementPeriod})
		}
	}

	header := []string{"Date", "Payment type", "Details", "£Paid out", "£Paid in", "£Balance"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.Date,
			row.PaymentType,
			row.Details,
			row.PaidOut,
			row.PaidIn,
			row.Balance,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	return writer.Error()
}
