package parser

import (
	"regexp"
	"strings"
)

// PageLines is the line classifier's view of one page: the lines that feed
// the assembler, plus every normalized line on the page. Repair passes scan
// Raw because orphaned charge lines often sit in the footer, past the point
// where Transactions is truncated.
type PageLines struct {
	Transactions []string
	Raw          []string
	Skip         bool
}

// Extraction sometimes fuses a transaction's trailing amount with the next
// line. The two shapes seen in practice: amount glued to a dated
// carried-forward marker, and amount glued directly to BALANCE.
var (
	fusedDateBalancePattern = regexp.MustCompile(`(\d+\.\d{2})(\d{2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+\d{2})\s+BALANCE`)
	fusedBalancePattern     = regexp.MustCompile(`(\d+\.\d{2})BALANCE`)
)

// Banner text that marks a whole page as non-transactional.
var infoPageMarkers = []string{
	"Commercial Banking Customers",
	"Personal Banking Customers",
}

// ClassifyPage partitions one page's raw text into transaction-relevant
// lines and noise. A page carrying a customer-information banner is skipped
// entirely.
func ClassifyPage(pageText string) PageLines {
	for _, marker := range infoPageMarkers {
		if strings.Contains(pageText, marker) {
			return PageLines{Skip: true}
		}
	}

	pageText = splitFusedLines(pageText)

	var raw []string
	for _, line := range strings.Split(pageText, "\n") {
		raw = append(raw, normalizeLine(line))
	}

	return PageLines{
		Transactions: transactionLines(raw),
		Raw:          raw,
	}
}

// splitFusedLines separates amount tokens fused onto a following balance
// marker so each logical row gets its own line.
func splitFusedLines(text string) string {
	text = fusedDateBalancePattern.ReplaceAllString(text, "$1\n$2 BALANCE")
	text = fusedBalancePattern.ReplaceAllString(text, "$1\nBALANCE")
	return text
}

// transactionLines collects the in-scope lines for the assembler: the
// opening brought-forward balance is dropped, the stream is truncated at the
// carried-forward footer, a repeated column header or the interest-rate
// summary, and header noise before the first transaction start is discarded.
func transactionLines(raw []string) []string {
	var collected []string
	for _, line := range raw {
		if strings.Contains(line, "BALANCEBROUGHTFORWARD") && !strings.Contains(line, "BALANCECARRIEDFORWARD") {
			continue
		}
		if strings.Contains(line, "BALANCECARRIEDFORWARD") {
			break
		}
		if strings.Contains(line, "Date Paymenttypeanddetails") {
			break
		}
		if (strings.Contains(line, "Creditinterest") && strings.Contains(line, "%")) ||
			(strings.Contains(line, "upto 25") && strings.Contains(line, "%")) {
			break
		}
		collected = append(collected, line)
	}

	var result []string
	foundFirst := false
	for _, line := range collected {
		if line == "" || strings.Contains(line, "BALANCE") {
			continue
		}
		if !foundFirst {
			if !startsWithDate(line) && !startsWithPaymentCode(line) {
				continue
			}
			foundFirst = true
		}
		result = append(result, line)
	}
	return result
}
