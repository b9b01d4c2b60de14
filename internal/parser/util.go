package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// Patterns for the statement dialect: dates are DD Mon YY, amounts are
// decimals with two places and optional thousands separators.
var (
	// Date token at the start of a line, capturing the rest.
	leadingDatePattern = regexp.MustCompile(`^(\d{2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+\d{2})\s+(.+)`)
	// Date token at the start of a line with nothing captured.
	datePattern = regexp.MustCompile(`^\d{2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+\d{2}`)
	// Monetary amount: 1,234.56 or 25.99.
	amountPattern = regexp.MustCompile(`[\d,]+\.\d{2}`)
	// Exchange-rate annotation, e.g. "@ 1.1606". The trailing number must
	// not be mistaken for a transaction amount.
	ratePattern = regexp.MustCompile(`@\s*[\d,]+\.\d+`)
	// Structured reference code printed on associated-charge lines,
	// e.g. RBC08042JE908KCG.
	referencePattern = regexp.MustCompile(`[A-Z]{3}\d{5}[A-Z]{2}\d{3}[A-Z]{3}`)
	// Payment-type prefix at the start of a line marks a transaction start
	// even without a date. Longer codes first so CRS is not matched as CR.
	paymentCodePattern = regexp.MustCompile(`^(DD|VISA|VIS|BP|CRS|CRA|CR|\)\)\))`)
)

// cleanAmount strips thousands separators: "4,500.00" -> "4500.00".
func cleanAmount(s string) string {
	return strings.ReplaceAll(s, ",", "")
}

// parseAmount converts a string like "1,234.56" or "£1,234.56" to a float64.
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "£", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")

	if s == "" || s == "-" {
		return 0, nil
	}

	return strconv.ParseFloat(s, 64)
}

// startsWithDate checks if a line begins with a DD Mon YY date token.
func startsWithDate(line string) bool {
	return datePattern.MatchString(strings.TrimSpace(line))
}

// startsWithPaymentCode checks if a line begins with a known payment-type
// prefix code.
func startsWithPaymentCode(line string) bool {
	return paymentCodePattern.MatchString(line)
}

// splitLeadingDate returns the date token and the remainder of a line that
// begins with one.
func splitLeadingDate(line string) (date, rest string, ok bool) {
	m := leadingDatePattern.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return m[1], strings.TrimSpace(m[2]), true
}

// findAmounts returns all amount tokens on a line, in order.
func findAmounts(line string) []string {
	return amountPattern.FindAllString(line, -1)
}

// findAmountsExcludingRates returns amount tokens but ignores any that are
// part of an exchange-rate annotation ("@ 1.1606").
func findAmountsExcludingRates(line string) []string {
	return findAmounts(ratePattern.ReplaceAllString(line, "@"))
}

// stripAmounts removes the given amount substrings from a line.
func stripAmounts(line string, amounts []string) string {
	for _, amt := range amounts {
		line = strings.Replace(line, amt, "", 1)
	}
	return strings.TrimSpace(line)
}

// normalizeLine cleans up common text-extraction artifacts.
func normalizeLine(line string) string {
	line = strings.ReplaceAll(line, "Â£", "£")
	line = strings.ReplaceAll(line, "​", "")
	line = strings.ReplaceAll(line, " ", " ")
	return strings.TrimSpace(line)
}

var monthNumbers = map[string]string{
	"Jan": "01", "Feb": "02", "Mar": "03", "Apr": "04",
	"May": "05", "Jun": "06", "Jul": "07", "Aug": "08",
	"Sep": "09", "Oct": "10", "Nov": "11", "Dec": "12",
}

// sortableDateKey converts "21 Mar 22" to "20220321". The key is only used
// for labeling output ranges; record order is never sorted by it.
func sortableDateKey(date string) string {
	parts := strings.Fields(strings.ReplaceAll(date, "-", " "))
	if len(parts) != 3 {
		return date
	}
	month, ok := monthNumbers[parts[1]]
	if !ok {
		month = "00"
	}
	day := parts[0]
	if len(day) == 1 {
		day = "0" + day
	}
	return "20" + parts[2] + month + day
}

// isoDate formats a sortable key "20220321" as "2022-03-21".
func isoDate(key string) string {
	if len(key) != 8 {
		return key
	}
	return key[:4] + "-" + key[4:6] + "-" + key[6:8]
}

// Account metadata patterns: UK account numbers are 8 digits, sort codes
// are XX-XX-XX.
var (
	accountNumberPattern = regexp.MustCompile(`\b(\d{8})\b`)
	sortCodePattern      = regexp.MustCompile(`\b(\d{2}-\d{2}-\d{2})\b`)
	periodDatePattern    = regexp.MustCompile(`\d{1,2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{2,4}`)
)

func findAccountNumber(text string) string {
	return accountNumberPattern.FindString(text)
}

func findSortCode(text string) string {
	return sortCodePattern.FindString(text)
}

// extractNameNearLabel returns the text following the first matching label
// on a line, used for the account holder name.
func extractNameNearLabel(text string, labels []string) string {
	for _, line := range strings.Split(text, "\n") {
		for _, label := range labels {
			idx := strings.Index(line, label)
			if idx < 0 {
				continue
			}
			rest := strings.TrimSpace(line[idx+len(label):])
			rest = strings.TrimPrefix(rest, ":")
			rest = strings.TrimSpace(rest)
			if rest != "" {
				parts := strings.Split(rest, "  ")
				return strings.TrimSpace(parts[0])
			}
		}
	}
	return ""
}

// extractPeriod looks for a statement-period line containing two dates.
func extractPeriod(text string) string {
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		if !strings.Contains(lower, "period") {
			continue
		}
		dates := periodDatePattern.FindAllString(line, 2)
		if len(dates) == 2 {
			return dates[0] + " to " + dates[1]
		}
	}
	return ""
}
