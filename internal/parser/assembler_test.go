package parser

import (
	"testing"

	"github.com/TechNerdXp/csv-statement/internal/models"
)

func TestAssemblePage_SingleLineTransaction(t *testing.T) {
	records, lastDate := AssemblePage([]string{"21 Mar 22 DD ACME LTD 123.45 4,500.00"}, "")

	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	if rec.Date != "21 Mar 22" {
		t.Errorf("date: got %q", rec.Date)
	}
	if rec.Description != "DD ACME LTD" {
		t.Errorf("description: got %q", rec.Description)
	}
	if rec.Amount != "123.45" {
		t.Errorf("amount: got %q", rec.Amount)
	}
	if rec.Balance != "4500.00" {
		t.Errorf("balance: got %q", rec.Balance)
	}
	if lastDate != "21 Mar 22" {
		t.Errorf("last date: got %q", lastDate)
	}
}

func TestAssemblePage_BalanceOnlyLine(t *testing.T) {
	records, _ := AssemblePage([]string{"21 Mar 22 4,500.00"}, "")

	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	if !rec.BalanceOnly() {
		t.Errorf("expected balance-only record, got %+v", rec)
	}
	if rec.Balance != "4500.00" {
		t.Errorf("balance: got %q", rec.Balance)
	}
}

func TestAssemblePage_MultiLineAccumulation(t *testing.T) {
	lines := []string{
		"21 Mar 22 VIS COFFEE SHOP",
		"HIGH STREET LONDON",
		"12.50 4,487.50",
	}
	records, _ := AssemblePage(lines, "")

	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	if rec.Description != "VIS COFFEE SHOP HIGH STREET LONDON" {
		t.Errorf("description: got %q", rec.Description)
	}
	if rec.Amount != "12.50" || rec.Balance != "4487.50" {
		t.Errorf("amounts: got amount=%q balance=%q", rec.Amount, rec.Balance)
	}
}

func TestAssemblePage_ExchangeRateNotAnAmount(t *testing.T) {
	lines := []string{
		"21 Mar 22 VIS INT'L 0012345 AMAZON",
		"100.00 USD @ 1.1606",
	}
	records, _ := AssemblePage(lines, "")

	// 1.1606 is a rate, so only 100.00 counts: the line completes the
	// record as an amount-without-balance transaction.
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	rec := records[0]
	if rec.Amount != "100.00" {
		t.Errorf("amount: got %q", rec.Amount)
	}
	if rec.Balance != "" {
		t.Errorf("balance should be empty, got %q", rec.Balance)
	}
}

func TestAssemblePage_CarriedDateSeedsFirstRecord(t *testing.T) {
	records, _ := AssemblePage([]string{"BP RENT PAYMENT 2,020.00"}, "23 Mar 22")

	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Date != "23 Mar 22" {
		t.Errorf("date: got %q, want carried date", records[0].Date)
	}
	if records[0].Amount != "2020.00" {
		t.Errorf("amount: got %q", records[0].Amount)
	}
}

func TestAssemblePage_NoDateContextDropsLine(t *testing.T) {
	records, lastDate := AssemblePage([]string{"BP RENT PAYMENT 2,020.00"}, "")

	if len(records) != 0 {
		t.Errorf("expected no records without date context, got %+v", records)
	}
	if lastDate != "" {
		t.Errorf("last date: got %q", lastDate)
	}
}

func TestAssemblePage_DatedLineAbandonsPendingAccumulation(t *testing.T) {
	lines := []string{
		"21 Mar 22 VIS COFFEE SHOP",
		"22 Mar 22 DD ACME LTD 123.45 4,500.00",
	}
	records, _ := AssemblePage(lines, "")

	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Description != "DD ACME LTD" {
		t.Errorf("description: got %q", records[0].Description)
	}
}

func TestAssemblerStep_StateTransitions(t *testing.T) {
	a := NewAssembler("")
	if a.State() != AwaitingTransaction {
		t.Fatal("fresh assembler should await a transaction")
	}

	if _, done := a.Step("21 Mar 22 VIS COFFEE SHOP"); done {
		t.Error("dated line without amounts should not complete a record")
	}
	if a.State() != Accumulating {
		t.Error("expected Accumulating after a description start")
	}

	rec, done := a.Step("12.50 4,487.50")
	if !done {
		t.Fatal("closing line should complete the record")
	}
	if a.State() != AwaitingTransaction {
		t.Error("expected AwaitingTransaction after completion")
	}
	if rec.Amount != "12.50" {
		t.Errorf("amount: got %q", rec.Amount)
	}
}

func TestAssemblePage_ShortLoneAmountIsBalance(t *testing.T) {
	// A lone amount on a continuation line with no meaningful description
	// accumulated is a printed balance, not a transaction value.
	lines := []string{
		"21 Mar 22 DD ACME LTD 123.45 4,500.00",
		"4,376.55",
	}
	records, _ := AssemblePage(lines, "")

	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	second := records[1]
	if second.Amount != "" || second.Balance != "4376.55" {
		t.Errorf("got %+v, want balance-only", second)
	}
}

func TestAssemblePage_EmptyInput(t *testing.T) {
	var records []models.TransactionRecord
	records, lastDate := AssemblePage(nil, "21 Mar 22")
	if len(records) != 0 {
		t.Errorf("expected no records")
	}
	if lastDate != "21 Mar 22" {
		t.Errorf("carried date should pass through, got %q", lastDate)
	}
}
