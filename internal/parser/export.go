package parser

import (
	"regexp"
	"strings"

	"github.com/TechNerdXp/csv-statement/internal/models"
)

// paymentTypes maps prefix codes to the closed label set, longest codes
// first so CRS/CRA resolve to Credit Transfer rather than Credit.
var paymentTypes = []struct {
	code  string
	label string
}{
	{"DD", "Direct Debit"},
	{"VISA", "Visa Card"},
	{"VIS", "Visa Card"},
	{"BP", "Bank Payment"},
	{"CRS", "Credit Transfer"},
	{"CRA", "Credit Transfer"},
	{"CR", "Credit"},
	{")))", "Contactless"},
}

// PaymentType classifies a description by its prefix code.
func PaymentType(description string) string {
	for _, pt := range paymentTypes {
		if strings.HasPrefix(description, pt.code) {
			return pt.label
		}
	}
	return "Other"
}

var (
	prefixCodePattern = regexp.MustCompile(`^(DD|VISA|VIS|BP|CRS|CRA|CR|\)\)\))`)
	// DR glued onto the non-sterling fee wording by extraction.
	drFeePattern      = regexp.MustCompile(`^DR(Non-Sterling Transaction Fee)`)
	multiSpacePattern = regexp.MustCompile(`\s+`)
)

// CleanDescription strips the payment-type prefix code and redundant
// whitespace from a description, leaving the human-readable text.
func CleanDescription(description string) string {
	description = prefixCodePattern.ReplaceAllString(description, "")
	description = drFeePattern.ReplaceAllString(description, "$1")
	description = multiSpacePattern.ReplaceAllString(description, " ")
	return strings.TrimSpace(description)
}

// Rows the serializer must never see: the monthly maintenance wording
// duplicates the itemized account fee row, and any settlement-rate line that
// survived the merge pass is exchange-rate information, not a transaction.
var exportExclusions = []string{
	"Fee for maintaining the account Monthly",
	"Visa Rate",
}

// FilterForExport drops known-duplicate and informational rows. This is the
// last point a record can be discarded, and the pass is idempotent: running
// it on its own output removes nothing further.
func FilterForExport(records []models.TransactionRecord) []models.TransactionRecord {
	result := make([]models.TransactionRecord, 0, len(records))
	for _, rec := range records {
		if excludedFromExport(rec) {
			continue
		}
		result = append(result, rec)
	}
	return result
}

func excludedFromExport(rec models.TransactionRecord) bool {
	cleaned := CleanDescription(rec.Description)
	for _, phrase := range exportExclusions {
		if strings.Contains(cleaned, phrase) {
			return true
		}
	}
	return false
}

// ExportRows projects final records onto the six-column serializer shape.
// The date keeps its source tokens with a dash separator.
func ExportRows(records []models.TransactionRecord) []models.ExportRow {
	rows := make([]models.ExportRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, models.ExportRow{
			Date:        strings.ReplaceAll(rec.Date, " ", "-"),
			PaymentType: PaymentType(rec.Description),
			Details:     CleanDescription(rec.Description),
			PaidOut:     rec.PaidOut,
			PaidIn:      rec.PaidIn,
			Balance:     rec.Balance,
		})
	}
	return rows
}
