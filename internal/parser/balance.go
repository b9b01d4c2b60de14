package parser

import (
	"strings"

	"github.com/TechNerdXp/csv-statement/internal/models"
)

// WorkingBalance is one entry of the inferred running-balance series. OK is
// false for leading records before the first printed anchor.
type WorkingBalance struct {
	Value float64
	OK    bool
}

// ComputeWorkingBalances builds the working series used for direction
// inference, one entry per record. A printed balance anchors the series;
// where absent, the prior value is projected forward by the record's signed
// amount (credit prefixes add, everything else subtracts). The series is
// transient: it is never written back to a record's Balance field, which
// stays traceable to document text.
func ComputeWorkingBalances(records []models.TransactionRecord) []WorkingBalance {
	series := make([]WorkingBalance, len(records))
	var last WorkingBalance

	for i, rec := range records {
		if rec.Balance != "" {
			if val, err := parseAmount(rec.Balance); err == nil {
				last = WorkingBalance{Value: val, OK: true}
				series[i] = last
				continue
			}
		}

		if !last.OK {
			continue // nothing to project from yet
		}

		amt, err := parseAmount(rec.Amount)
		if err != nil {
			amt = 0 // unparseable amounts degrade to a no-op projection
		}
		if strings.HasPrefix(rec.Description, "CR") {
			last.Value += amt
		} else {
			last.Value -= amt
		}
		series[i] = last
	}
	return series
}
