package parser

import (
	"strings"

	"github.com/TechNerdXp/csv-statement/internal/models"
)

// AssemblerState names the two states of the per-page assembly machine.
type AssemblerState int

const (
	// AwaitingTransaction: no partial record in flight.
	AwaitingTransaction AssemblerState = iota
	// Accumulating: description parts collected, waiting for amounts.
	Accumulating
)

// minDescriptionLen is the threshold below which a lone amount is read as a
// balance-only row rather than a transaction value.
const minDescriptionLen = 3

// Assembler turns classified page lines into raw transaction records.
//
// The machine carries the current date (seeded from the previous page's
// last date, the sole cross-page state) and the pending description parts
// of an in-flight record. Every call to Step consumes exactly one line, so
// the machine always makes progress.
type Assembler struct {
	state   AssemblerState
	date    string
	pending []string
}

// NewAssembler returns an assembler seeded with the date carried over from
// the previous page ("" at the start of a document).
func NewAssembler(carriedDate string) *Assembler {
	return &Assembler{state: AwaitingTransaction, date: carriedDate}
}

// LastDate returns the most recent date token seen, for carry-over to the
// next page.
func (a *Assembler) LastDate() string {
	return a.date
}

// State returns the current machine state.
func (a *Assembler) State() AssemblerState {
	return a.state
}

// Step feeds one line to the machine and reports a completed record, if
// the line closed one.
func (a *Assembler) Step(line string) (models.TransactionRecord, bool) {
	if date, rest, ok := splitLeadingDate(line); ok {
		// A dated line starts fresh, implicitly abandoning any pending
		// accumulation.
		a.date = date
		amounts := findAmounts(rest)
		if len(amounts) == 0 {
			a.pending = []string{rest}
			a.state = Accumulating
			return models.TransactionRecord{}, false
		}

		desc := stripAmounts(rest, amounts)
		rec := a.resolve(desc, amounts, true)
		a.reset()
		return rec, true
	}

	if a.date == "" {
		// No date context yet; nothing to attach this line to.
		return models.TransactionRecord{}, false
	}

	amounts := findAmountsExcludingRates(line)
	if len(amounts) == 0 {
		a.pending = append(a.pending, line)
		a.state = Accumulating
		return models.TransactionRecord{}, false
	}

	// The closing line: its amounts complete the pending record. The
	// original line (rate annotations included) contributes to the
	// description so the export filter can recognize settlement rows.
	if part := stripAmounts(line, amounts); part != "" {
		a.pending = append(a.pending, part)
	}
	desc := strings.TrimSpace(strings.Join(a.pending, " "))
	rec := a.resolve(desc, amounts, false)
	a.reset()
	return rec, true
}

// resolve applies the amount-resolution rule for a closing line. With two
// or more amounts the statement's column layout fixes their meaning:
// second-to-last is the transaction value, last is the running balance. A
// single amount is a balance when there is no real description to go with
// it. clearDesc drops a balance-only row's description entirely (the dated
// single-amount form never has one worth keeping).
func (a *Assembler) resolve(desc string, amounts []string, clearDesc bool) models.TransactionRecord {
	rec := models.TransactionRecord{Date: a.date, Description: desc}

	switch {
	case len(amounts) >= 2:
		rec.Amount = cleanAmount(amounts[len(amounts)-2])
		rec.Balance = cleanAmount(amounts[len(amounts)-1])
	case len(desc) < minDescriptionLen:
		rec.Balance = cleanAmount(amounts[0])
		if clearDesc {
			rec.Description = ""
		}
	default:
		rec.Amount = cleanAmount(amounts[0])
	}
	return rec
}

func (a *Assembler) reset() {
	a.pending = nil
	a.state = AwaitingTransaction
}

// AssemblePage runs the machine over one page's transaction lines and
// returns the records plus the last date seen, which seeds the next page.
func AssemblePage(lines []string, carriedDate string) ([]models.TransactionRecord, string) {
	a := NewAssembler(carriedDate)
	var records []models.TransactionRecord
	for _, line := range lines {
		if rec, ok := a.Step(line); ok {
			records = append(records, rec)
		}
	}
	return records, a.LastDate()
}
