package parser

import (
	"math"
	"strings"

	"github.com/TechNerdXp/csv-statement/internal/models"
)

// DirectionStrategy assigns paid-in/paid-out to every record with a
// resolved amount. Balance-only rows are left untouched.
//
// Two policies exist because source statements differ in which one is
// accurate: RuleTable (prefix codes first, simple balance movement for the
// ambiguous ones) and ToleranceBand (matches the balance delta numerically
// against ± the amount). RuleTable is the default.
type DirectionStrategy interface {
	Name() string
	Classify(records []models.TransactionRecord, balances []WorkingBalance)
}

// Prefix codes with a fixed direction. Credit codes (CR, CRS, CRA,
// CRADVICE) all share the CR prefix. BP and TFR are deliberately absent:
// a bank payment or transfer can go either way.
var debitPrefixes = []string{"DD", "VIS", "ATM", ")))", "DR"}

func hasDebitPrefix(desc string) bool {
	for _, p := range debitPrefixes {
		if strings.HasPrefix(desc, p) {
			return true
		}
	}
	return false
}

func isAmbiguousPrefix(desc string) bool {
	return strings.HasPrefix(desc, "BP") || strings.HasPrefix(desc, "TFR")
}

// balanceComparator decides direction from the working-balance pair around
// a record. Returns false when no usable pair exists.
type balanceComparator func(rec models.TransactionRecord, cur, prev WorkingBalance) (paidOut, usable bool)

// simpleComparator: balance went down, money went out.
func simpleComparator(_ models.TransactionRecord, cur, prev WorkingBalance) (bool, bool) {
	if !cur.OK || !prev.OK {
		return false, false
	}
	return cur.Value < prev.Value, true
}

// toleranceComparator matches the observed delta against ± the record
// amount within a band, falling back to the simple comparison when neither
// side is close enough.
func toleranceComparator(tolerance float64) balanceComparator {
	return func(rec models.TransactionRecord, cur, prev WorkingBalance) (bool, bool) {
		if !cur.OK || !prev.OK {
			return false, false
		}
		amt, err := parseAmount(rec.Amount)
		if err == nil && amt != 0 {
			delta := cur.Value - prev.Value
			if math.Abs(delta+amt) <= tolerance {
				return true, true
			}
			if math.Abs(delta-amt) <= tolerance {
				return false, true
			}
		}
		return cur.Value < prev.Value, true
	}
}

// RuleTable is the default direction strategy.
type RuleTable struct{}

func (RuleTable) Name() string { return "rule-table" }

func (RuleTable) Classify(records []models.TransactionRecord, balances []WorkingBalance) {
	classify(records, balances, simpleComparator)
}

// ToleranceBand decides the ambiguous cases by the numeric distance between
// the balance delta and ± the record amount.
type ToleranceBand struct {
	// Zero means the default band of 0.01.
	Tolerance float64
}

func (ToleranceBand) Name() string { return "tolerance-band" }

func (s ToleranceBand) Classify(records []models.TransactionRecord, balances []WorkingBalance) {
	tol := s.Tolerance
	if tol == 0 {
		tol = 0.01
	}
	classify(records, balances, toleranceComparator(tol))
}

func classify(records []models.TransactionRecord, balances []WorkingBalance, compare balanceComparator) {
	var prev WorkingBalance

	for i := range records {
		rec := &records[i]
		cur := balances[i]

		if rec.Amount != "" {
			assignDirection(rec, cur, prev, compare)
		}

		if cur.OK {
			prev = cur
		}
	}
}

// assignDirection applies the precedence rules: fixed credit prefixes, fixed
// debit prefixes, then balance comparison for the ambiguous/unknown rest
// with a paid-out default. Orphan-reattached rows with no real description
// are always debits.
func assignDirection(rec *models.TransactionRecord, cur, prev WorkingBalance, compare balanceComparator) {
	desc := rec.Description

	switch {
	case strings.HasPrefix(desc, "CR"):
		setPaidIn(rec)
	case hasDebitPrefix(desc):
		setPaidOut(rec)
	case isAmbiguousPrefix(desc):
		byBalance(rec, cur, prev, compare)
	case len(desc) < minDescriptionLen:
		if rec.Orphan {
			setPaidOut(rec)
			return
		}
		byBalance(rec, cur, prev, compare)
	default:
		byBalance(rec, cur, prev, compare)
	}
}

func byBalance(rec *models.TransactionRecord, cur, prev WorkingBalance, compare balanceComparator) {
	paidOut, usable := compare(*rec, cur, prev)
	if !usable {
		// No usable balance pair: documented low-confidence default.
		setPaidOut(rec)
		return
	}
	if paidOut {
		setPaidOut(rec)
	} else {
		setPaidIn(rec)
	}
}

func setPaidOut(rec *models.TransactionRecord) {
	rec.PaidOut = rec.Amount
	rec.PaidIn = ""
}

func setPaidIn(rec *models.TransactionRecord) {
	rec.PaidIn = rec.Amount
	rec.PaidOut = ""
}
