package parser

import (
	"math"
	"strings"

	"github.com/TechNerdXp/csv-statement/internal/models"
)

// Structural repair passes run once over the whole assembled sequence.
// Each pass builds a fresh slice instead of editing indices in place, so a
// merge applied early can never shift the targets of a later one.

// MergeSettlements folds an international transaction's settlement row into
// the original record. The statement prints the foreign-currency row and
// its local-currency settlement ("Visa Rate ...") as two adjacent rows with
// the same date; only the settlement amount is the real transaction value.
func MergeSettlements(records []models.TransactionRecord) []models.TransactionRecord {
	result := make([]models.TransactionRecord, 0, len(records))
	for i := 0; i < len(records); i++ {
		rec := records[i]
		if isInternational(rec.Description) && i+1 < len(records) {
			next := records[i+1]
			if next.Date == rec.Date && strings.Contains(next.Description, "Visa Rate") {
				rec.Amount = next.Amount
				result = append(result, rec)
				i++ // settlement row consumed
				continue
			}
		}
		result = append(result, rec)
	}
	return result
}

func isInternational(desc string) bool {
	return strings.Contains(desc, "INT'L") || strings.Contains(desc, "International")
}

// ReattachOrphans recovers charge lines that extraction detached from their
// transaction: lines with an amount and a structured reference code but no
// date. The reference code is the only reliable join key back to the dated
// record. Each orphan becomes a new flagged record inserted after the
// nearest balance-only row sharing the matched record's date (that row is
// what a later split merge will pair up, so the orphan must sit after it).
//
// rawLines must cover whole pages, not just the assembler's input: orphans
// frequently sit in the footer past the carried-forward truncation point.
func ReattachOrphans(records []models.TransactionRecord, rawLines []string) []models.TransactionRecord {
	inserts := make(map[int][]models.TransactionRecord)

	for _, line := range rawLines {
		line = strings.TrimSpace(line)
		if startsWithDate(line) {
			continue
		}
		if len(findAmounts(line)) == 0 {
			continue
		}
		if strings.Contains(line, "BALANCE") || strings.Contains(line, "Date Payment") {
			continue
		}
		reference := referencePattern.FindString(line)
		if reference == "" {
			continue
		}
		amounts := findAmounts(line)
		orphanAmount := cleanAmount(amounts[len(amounts)-1])

		for idx, rec := range records {
			if !strings.Contains(rec.Description, reference) {
				continue
			}
			desc := stripAmounts(strings.ReplaceAll(line, reference, ""), amounts)

			insertAfter := idx
			orphanBalance := ""
			for balIdx, cand := range records {
				if cand.Date == rec.Date && cand.BalanceOnly() {
					orphanBalance = cand.Balance
					insertAfter = balIdx
					break
				}
			}

			orphan := models.TransactionRecord{
				Date:    rec.Date,
				Amount:  orphanAmount,
				Balance: orphanBalance,
				Orphan:  true,
			}
			if desc != "" {
				orphan.Description = desc + " " + reference
			}
			inserts[insertAfter] = append(inserts[insertAfter], orphan)
			break
		}
	}

	if len(inserts) == 0 {
		return records
	}

	result := make([]models.TransactionRecord, 0, len(records)+len(inserts))
	for i, rec := range records {
		result = append(result, rec)
		result = append(result, inserts[i]...)
	}
	return result
}

// MergeStrategy pairs balance-only rows with the description-only rows they
// were split from across a page break.
//
// Two policies exist because neither has been proven correct on every
// statement dialect: plain nearest-index pairing, and pairing validated
// against the implied balance delta. NearestMerge is the default.
type MergeStrategy interface {
	Name() string
	Merge(records []models.TransactionRecord) []models.TransactionRecord
}

// NearestMerge pairs each balance-only row with the same-date
// description-only row closest to it by position. Ties break toward the
// earlier row, which keeps the pass deterministic.
type NearestMerge struct{}

func (NearestMerge) Name() string { return "nearest" }

func (NearestMerge) Merge(records []models.TransactionRecord) []models.TransactionRecord {
	return mergeSplit(records, func(balIdx int, bal models.TransactionRecord, candidates []int) int {
		best := -1
		bestDist := 0
		for _, idx := range candidates {
			dist := abs(idx - balIdx)
			if best == -1 || dist < bestDist {
				best = idx
				bestDist = dist
			}
		}
		return best
	})
}

// DeltaValidatedMerge prefers the candidate whose amount explains the
// balance movement: the difference between the balance-only row's printed
// balance and the last printed balance before it must match the candidate
// amount within a fixed tolerance. When no candidate validates (or no
// earlier balance exists) it falls back to nearest-index pairing.
type DeltaValidatedMerge struct {
	// Tolerance for matching the implied delta, in currency units.
	// Zero means the default of 0.01.
	Tolerance float64
}

func (DeltaValidatedMerge) Name() string { return "delta-validated" }

func (s DeltaValidatedMerge) Merge(records []models.TransactionRecord) []models.TransactionRecord {
	tol := s.Tolerance
	if tol == 0 {
		tol = 0.01
	}
	return mergeSplit(records, func(balIdx int, bal models.TransactionRecord, candidates []int) int {
		balVal, err := parseAmount(bal.Balance)
		if err != nil {
			return nearestOf(balIdx, candidates)
		}
		prevVal, prevOK := lastPrintedBalanceBefore(records, balIdx)
		if !prevOK {
			return nearestOf(balIdx, candidates)
		}
		delta := math.Abs(balVal - prevVal)

		best := -1
		bestDist := 0
		for _, idx := range candidates {
			amt, err := parseAmount(records[idx].Amount)
			if err != nil || math.Abs(delta-amt) > tol {
				continue
			}
			dist := abs(idx - balIdx)
			if best == -1 || dist < bestDist {
				best = idx
				bestDist = dist
			}
		}
		if best == -1 {
			return nearestOf(balIdx, candidates)
		}
		return best
	})
}

func nearestOf(balIdx int, candidates []int) int {
	best := -1
	bestDist := 0
	for _, idx := range candidates {
		dist := abs(idx - balIdx)
		if best == -1 || dist < bestDist {
			best = idx
			bestDist = dist
		}
	}
	return best
}

func lastPrintedBalanceBefore(records []models.TransactionRecord, idx int) (float64, bool) {
	for i := idx - 1; i >= 0; i-- {
		if records[i].Balance == "" {
			continue
		}
		val, err := parseAmount(records[i].Balance)
		if err != nil {
			continue
		}
		return val, true
	}
	return 0, false
}

// mergeSplit drives a split-transaction merge: for each balance-only row,
// pick applies the pairing policy to the unclaimed same-date
// description-only candidates. A successful pairing yields one merged
// record at the balance row's position; both originals disappear.
func mergeSplit(records []models.TransactionRecord, pick func(balIdx int, bal models.TransactionRecord, candidates []int) int) []models.TransactionRecord {
	replacements := make(map[int]models.TransactionRecord)
	claimed := make(map[int]bool)

	var descOnly []int
	for i, rec := range records {
		if rec.DescriptionOnly() {
			descOnly = append(descOnly, i)
		}
	}

	for balIdx, bal := range records {
		if !bal.BalanceOnly() || claimed[balIdx] {
			continue
		}
		var candidates []int
		for _, idx := range descOnly {
			if !claimed[idx] && records[idx].Date == bal.Date {
				candidates = append(candidates, idx)
			}
		}
		if len(candidates) == 0 {
			continue
		}
		chosen := pick(balIdx, bal, candidates)
		if chosen < 0 {
			continue
		}
		replacements[balIdx] = models.TransactionRecord{
			Date:        bal.Date,
			Description: records[chosen].Description,
			Amount:      records[chosen].Amount,
			Balance:     bal.Balance,
		}
		claimed[chosen] = true
	}

	result := make([]models.TransactionRecord, 0, len(records))
	for i, rec := range records {
		if claimed[i] {
			continue
		}
		if merged, ok := replacements[i]; ok {
			result = append(result, merged)
			continue
		}
		result = append(result, rec)
	}
	return result
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
