package models

// TransactionRecord is a single reconstructed statement transaction.
//
// Amount and Balance are decimal strings in statement formatting with
// thousands separators stripped. Balance is only ever set from text printed
// in the source document; inferred balances live in a separate working
// series and are never written back here.
type TransactionRecord struct {
	Date        string `json:"date"`        // DD Mon YY as printed
	Description string `json:"description"` // accumulated source text, may be empty
	Amount      string `json:"amount"`      // transaction value, empty for balance-only rows
	Balance     string `json:"balance"`     // printed running balance, empty if absent
	PaidOut     string `json:"paidOut"`     // set by direction classification
	PaidIn      string `json:"paidIn"`      // set by direction classification
	Orphan      bool   `json:"orphan"`      // synthesized by reference-code reattachment
}

// BalanceOnly reports whether the record carries just a printed balance,
// the signature of a row split across a page break.
func (t TransactionRecord) BalanceOnly() bool {
	return t.Description == "" && t.Amount == "" && t.Balance != ""
}

// DescriptionOnly reports whether the record has details and an amount but
// no printed balance, the footer half of a split row.
func (t TransactionRecord) DescriptionOnly() bool {
	return t.Description != "" && t.Amount != "" && t.Balance == ""
}

// ExportRow is the six-column shape handed to the CSV serializer.
type ExportRow struct {
	Date        string `json:"date"`        // DD-Mon-YY
	PaymentType string `json:"paymentType"` // closed label set, see parser.PaymentType
	Details     string `json:"details"`     // cleaned description
	PaidOut     string `json:"paidOut"`
	PaidIn      string `json:"paidIn"`
	Balance     string `json:"balance"`
}

// StatementInfo holds one document's reconstructed transactions plus the
// account metadata printed on the statement.
type StatementInfo struct {
	AccountHolder   string
	AccountNumber   string
	SortCode        string
	StatementPeriod string
	Transactions    []TransactionRecord
}
