package parser

import (
	"testing"

	"github.com/TechNerdXp/csv-statement/internal/models"
)

func classifyWith(s DirectionStrategy, records []models.TransactionRecord) []models.TransactionRecord {
	s.Classify(records, ComputeWorkingBalances(records))
	return records
}

func TestRuleTable_PrefixCodes(t *testing.T) {
	tests := []struct {
		desc    string
		paidOut bool
	}{
		{"DD ACME LTD", true},
		{"VISA PAYMENT SHOP", true},
		{"VIS COFFEE SHOP", true},
		{"ATM WITHDRAWAL HIGH ST", true},
		{")))CONTACTLESS SHOP", true},
		{"DRNon-Sterling Transaction Fee", true},
		{"CR PAYROLL LTD", false},
		{"CRSALARY APRIL", false},
	}

	for _, tt := range tests {
		records := []models.TransactionRecord{
			{Date: "21 Mar 22", Description: tt.desc, Amount: "50.00", Balance: "100.00"},
		}
		classifyWith(RuleTable{}, records)
		rec := records[0]

		if tt.paidOut {
			if rec.PaidOut != "50.00" || rec.PaidIn != "" {
				t.Errorf("%q: got out=%q in=%q, want paid out", tt.desc, rec.PaidOut, rec.PaidIn)
			}
		} else {
			if rec.PaidIn != "50.00" || rec.PaidOut != "" {
				t.Errorf("%q: got out=%q in=%q, want paid in", tt.desc, rec.PaidOut, rec.PaidIn)
			}
		}
	}
}

func TestRuleTable_AmbiguousPrefixUsesBalance(t *testing.T) {
	records := []models.TransactionRecord{
		{Date: "21 Mar 22", Description: "DD OPENER", Amount: "1.00", Balance: "1000.00"},
		{Date: "22 Mar 22", Description: "BP RENT PAYMENT", Amount: "200.00", Balance: "800.00"},
		{Date: "23 Mar 22", Description: "TFR FROM SAVINGS", Amount: "300.00", Balance: "1100.00"},
	}
	classifyWith(RuleTable{}, records)

	if records[1].PaidOut != "200.00" {
		t.Errorf("falling balance: got out=%q in=%q", records[1].PaidOut, records[1].PaidIn)
	}
	if records[2].PaidIn != "300.00" {
		t.Errorf("rising balance: got out=%q in=%q", records[2].PaidOut, records[2].PaidIn)
	}
}

func TestRuleTable_NoBalancePairDefaultsPaidOut(t *testing.T) {
	records := []models.TransactionRecord{
		{Date: "21 Mar 22", Description: "BP RENT PAYMENT", Amount: "200.00"},
	}
	classifyWith(RuleTable{}, records)

	if records[0].PaidOut != "200.00" {
		t.Errorf("got out=%q in=%q, want paid-out default", records[0].PaidOut, records[0].PaidIn)
	}
}

func TestRuleTable_OrphanAlwaysPaidOut(t *testing.T) {
	records := []models.TransactionRecord{
		{Date: "21 Mar 22", Description: "DD OPENER", Amount: "1.00", Balance: "1000.00"},
		{Date: "21 Mar 22", Amount: "5.00", Balance: "1005.00", Orphan: true},
	}
	classifyWith(RuleTable{}, records)

	// Balance rose, but the orphan rule wins.
	if records[1].PaidOut != "5.00" {
		t.Errorf("got out=%q in=%q", records[1].PaidOut, records[1].PaidIn)
	}
}

func TestRuleTable_BalanceOnlyRowsUntouched(t *testing.T) {
	records := []models.TransactionRecord{
		{Date: "21 Mar 22", Balance: "1000.00"},
	}
	classifyWith(RuleTable{}, records)

	if records[0].PaidOut != "" || records[0].PaidIn != "" {
		t.Errorf("balance-only row classified: %+v", records[0])
	}
}

func TestDirectionCompleteness(t *testing.T) {
	records := []models.TransactionRecord{
		{Date: "21 Mar 22", Description: "DD ACME LTD", Amount: "123.45", Balance: "4576.55"},
		{Date: "21 Mar 22", Description: "CR PAYROLL", Amount: "2000.00", Balance: "6576.55"},
		{Date: "22 Mar 22", Description: "BP RENT PAYMENT", Amount: "2020.00", Balance: "4556.55"},
		{Date: "22 Mar 22", Description: "mystery merchant", Amount: "9.99"},
	}
	classifyWith(RuleTable{}, records)

	for i, rec := range records {
		if rec.Amount == "" {
			continue
		}
		out := rec.PaidOut != ""
		in := rec.PaidIn != ""
		if out == in {
			t.Errorf("record %d: exactly one direction required, got out=%q in=%q", i, rec.PaidOut, rec.PaidIn)
		}
	}
}

func TestToleranceBand_MatchesDeltaAgainstAmount(t *testing.T) {
	// The working balance rose by exactly the amount, so the transaction is
	// a credit even though the description gives nothing away.
	records := []models.TransactionRecord{
		{Date: "21 Mar 22", Description: "DD OPENER", Amount: "1.00", Balance: "1000.00"},
		{Date: "22 Mar 22", Description: "BP REFUND LANDLORD", Amount: "200.00", Balance: "1200.00"},
	}
	classifyWith(ToleranceBand{}, records)

	if records[1].PaidIn != "200.00" {
		t.Errorf("got out=%q in=%q", records[1].PaidOut, records[1].PaidIn)
	}
}

func TestToleranceBand_FallsBackToComparison(t *testing.T) {
	// Delta (−150) matches neither +200 nor −200 within the band, so the
	// simple falling-balance comparison decides.
	records := []models.TransactionRecord{
		{Date: "21 Mar 22", Description: "DD OPENER", Amount: "1.00", Balance: "1000.00"},
		{Date: "22 Mar 22", Description: "BP PART SETTLED", Amount: "200.00", Balance: "850.00"},
	}
	classifyWith(ToleranceBand{}, records)

	if records[1].PaidOut != "200.00" {
		t.Errorf("got out=%q in=%q", records[1].PaidOut, records[1].PaidIn)
	}
}

func TestDirectionStrategyNames(t *testing.T) {
	if got := (RuleTable{}).Name(); got != "rule-table" {
		t.Errorf("got %q", got)
	}
	if got := (ToleranceBand{}).Name(); got != "tolerance-band" {
		t.Errorf("got %q", got)
	}
}
