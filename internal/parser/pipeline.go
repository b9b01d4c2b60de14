package parser

import (
	"fmt"
	"strings"

	"github.com/TechNerdXp/csv-statement/internal/models"
)

// Document is one source document after page assembly: the raw transaction
// records in page order, every normalized page line (for the orphan scan),
// and the statement metadata.
type Document struct {
	Records  []models.TransactionRecord
	RawLines []string
	Info     models.StatementInfo
}

// Pipeline reconstructs transactions from extracted page text. The two
// strategy slots cover the repair and classification policies that differ
// between statement dialects.
type Pipeline struct {
	Merge     MergeStrategy
	Direction DirectionStrategy
}

// NewPipeline returns a pipeline with the default strategies: nearest-index
// split merging and rule-table direction classification.
func NewPipeline() *Pipeline {
	return &Pipeline{Merge: NearestMerge{}, Direction: RuleTable{}}
}

// MergeStrategyByName resolves a configured merge strategy.
func MergeStrategyByName(name string) (MergeStrategy, error) {
	switch name {
	case "", "nearest":
		return NearestMerge{}, nil
	case "delta-validated":
		return DeltaValidatedMerge{}, nil
	default:
		return nil, fmt.Errorf("unknown merge strategy: %q", name)
	}
}

// DirectionStrategyByName resolves a configured direction strategy.
func DirectionStrategyByName(name string) (DirectionStrategy, error) {
	switch name {
	case "", "rule-table":
		return RuleTable{}, nil
	case "tolerance-band":
		return ToleranceBand{}, nil
	default:
		return nil, fmt.Errorf("unknown direction strategy: %q", name)
	}
}

// Assemble runs line classification and per-page assembly over a document's
// pages, threading the carried date across page boundaries. Empty or
// skipped pages contribute no records.
func (p *Pipeline) Assemble(pages []string) *Document {
	doc := &Document{}
	carried := ""

	for _, pageText := range pages {
		page := ClassifyPage(pageText)
		if page.Skip {
			continue
		}
		doc.RawLines = append(doc.RawLines, page.Raw...)

		records, lastDate := AssemblePage(page.Transactions, carried)
		doc.Records = append(doc.Records, records...)
		carried = lastDate
	}

	allText := strings.Join(pages, "\n")
	doc.Info = models.StatementInfo{
		AccountNumber:   findAccountNumber(allText),
		SortCode:        findSortCode(allText),
		AccountHolder:   extractNameNearLabel(allText, []string{"Account holder", "Account name", "Mr ", "Mrs ", "Ms "}),
		StatementPeriod: extractPeriod(allText),
	}
	return doc
}

// Reconstruct applies the document-wide passes to assembled records: the
// three structural repairs, then balance reconciliation and direction
// classification. Repair order matters: settlement folding first, orphan
// reattachment next (it positions orphans relative to balance-only rows),
// split merging last (it consumes those balance-only rows).
func (p *Pipeline) Reconstruct(records []models.TransactionRecord, rawLines []string) []models.TransactionRecord {
	records = MergeSettlements(records)
	records = ReattachOrphans(records, rawLines)
	records = p.Merge.Merge(records)

	balances := ComputeWorkingBalances(records)
	p.Direction.Classify(records, balances)
	return records
}

// ProcessDocument runs the full pipeline over one document's pages and
// returns export-ready statement data.
func (p *Pipeline) ProcessDocument(pages []string) (*models.StatementInfo, error) {
	doc := p.Assemble(pages)
	records := p.Reconstruct(doc.Records, doc.RawLines)

	info := doc.Info
	info.Transactions = FilterForExport(records)
	return &info, nil
}

// Combine reconstructs the concatenation of several documents' assembled
// output. The repair and direction passes must see the whole sequence, not
// each document alone: split rows and balance anchoring can span a
// document boundary. Record order follows document arrival order and is
// never re-sorted by date.
func (p *Pipeline) Combine(docs []*Document) []models.TransactionRecord {
	var records []models.TransactionRecord
	var rawLines []string
	for _, doc := range docs {
		records = append(records, doc.Records...)
		rawLines = append(rawLines, doc.RawLines...)
	}

	records = p.Reconstruct(records, rawLines)
	return FilterForExport(records)
}

// DateRangeLabel derives an ISO date range from the first and last record
// of a sequence, for labeling combined output. This is the only use of the
// sortable date key; the sequence itself keeps arrival order.
func DateRangeLabel(records []models.TransactionRecord) string {
	if len(records) == 0 {
		return ""
	}
	first := isoDate(sortableDateKey(records[0].Date))
	last := isoDate(sortableDateKey(records[len(records)-1].Date))
	return first + "_to_" + last
}
