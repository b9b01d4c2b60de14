package extractor

import (
	"fmt"
	"math"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// ExtractText reads a PDF statement and returns one text blob per page.
// The structured library is tried first; pages it cannot read are retried
// with the external pdftotext command (poppler-utils), mirroring how a
// second extraction engine recovers individual pages the first one chokes
// on. Pages that stay unreadable come back as empty strings; the parser
// tolerates empty pages, so one bad page never sinks the document.
func ExtractText(filePath string) ([]string, error) {
	pages, failed, libErr := extractWithLibrary(filePath)
	if libErr != nil {
		// Library could not open the file at all; let pdftotext try the
		// whole document.
		popplerPages, popplerErr := extractWithPdftotext(filePath, nil)
		if popplerErr == nil && IsReadableText(popplerPages) {
			return popplerPages, nil
		}
		return nil, fmt.Errorf("PDF text extraction failed: %w (the file may be image-based or use undecodable font encodings)", libErr)
	}

	if len(failed) > 0 {
		recovered, err := extractWithPdftotext(filePath, failed)
		if err == nil {
			for i, pageNum := range failed {
				if i < len(recovered) && strings.TrimSpace(recovered[i]) != "" {
					pages[pageNum-1] = recovered[i]
				}
			}
		}
	}

	if !IsReadableText(pages) {
		popplerPages, popplerErr := extractWithPdftotext(filePath, nil)
		if popplerErr == nil && IsReadableText(popplerPages) {
			return popplerPages, nil
		}
		return nil, fmt.Errorf("no readable text could be extracted from %s", filePath)
	}

	return pages, nil
}

// extractWithLibrary extracts page text with ledongthuc/pdf, reconstructing
// rows from text-object coordinates. Returns the pages (empty string for
// failures), the 1-based numbers of pages that produced nothing, and an
// error only when the document itself cannot be opened.
func extractWithLibrary(filePath string) (pages []string, failed []int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("PDF library crashed: %v", r)
		}
	}()

	f, r, openErr := pdf.Open(filePath)
	if openErr != nil {
		return nil, nil, openErr
	}
	defer f.Close()

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, nil, fmt.Errorf("PDF has no pages")
	}

	for i := 1; i <= numPages; i++ {
		text := extractPage(r, i)
		pages = append(pages, text)
		if strings.TrimSpace(text) == "" {
			failed = append(failed, i)
		}
	}
	return pages, failed, nil
}

// extractPage pulls one page's text, trying row extraction first and
// falling back to coordinate-grouped content objects.
func extractPage(r *pdf.Reader, pageNum int) string {
	defer func() {
		// Individual pages can still panic inside the library; an empty
		// page string is the recoverable outcome.
		_ = recover()
	}()

	page := r.Page(pageNum)
	if page.V.IsNull() {
		return ""
	}

	if rows, err := page.GetTextByRow(); err == nil {
		var lines []string
		for _, row := range rows {
			var parts []string
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			if line := strings.TrimSpace(strings.Join(parts, " ")); line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			return strings.Join(lines, "\n")
		}
	}

	return extractPageByContent(page)
}

// extractPageByContent groups text objects into rows by Y coordinate and
// orders them by X, inserting column gaps where the layout leaves large
// horizontal space.
func extractPageByContent(page pdf.Page) string {
	content := page.Content()
	if len(content.Text) == 0 {
		return ""
	}

	type textItem struct {
		x float64
		s string
	}
	rowMap := make(map[int][]textItem)
	for _, t := range content.Text {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		yKey := int(math.Round(t.Y))
		rowMap[yKey] = append(rowMap[yKey], textItem{x: t.X, s: t.S})
	}

	yKeys := make([]int, 0, len(rowMap))
	for y := range rowMap {
		yKeys = append(yKeys, y)
	}
	// PDF Y runs bottom-to-top
	sort.Sort(sort.Reverse(sort.IntSlice(yKeys)))

	var lines []string
	for _, y := range yKeys {
		items := rowMap[y]
		sort.Slice(items, func(a, b int) bool { return items[a].x < items[b].x })

		var parts []string
		var prevX float64
		for j, item := range items {
			if j > 0 && item.x-prevX > 15 {
				parts = append(parts, "  ")
			}
			parts = append(parts, item.s)
			prevX = item.x
		}
		if line := strings.TrimSpace(strings.Join(parts, "")); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// extractWithPdftotext shells out to poppler's pdftotext. With pageNums nil
// it extracts every page; otherwise only the given 1-based pages, in order.
func extractWithPdftotext(filePath string, pageNums []int) ([]string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return nil, fmt.Errorf("pdftotext not available: %w", err)
	}

	if pageNums == nil {
		numPages := pageCount(filePath)
		for i := 1; i <= numPages; i++ {
			pageNums = append(pageNums, i)
		}
	}

	var pages []string
	for _, n := range pageNums {
		pageStr := strconv.Itoa(n)
		out, err := exec.Command("pdftotext", "-layout", "-f", pageStr, "-l", pageStr, filePath, "-").Output()
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, strings.TrimSpace(string(out)))
	}

	if totalTextLen(pages) == 0 {
		return nil, fmt.Errorf("pdftotext produced no output")
	}
	return pages, nil
}

// pageCount asks pdfinfo for the page count, defaulting to 1.
func pageCount(filePath string) int {
	out, err := exec.Command("pdfinfo", filePath).Output()
	if err != nil {
		return 1
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.HasPrefix(line, "Pages:") {
			if n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Pages:"))); err == nil && n > 0 {
				return n
			}
		}
	}
	return 1
}

// commonWords that appear in virtually all bank statements. Extracted text
// containing none of them is treated as garbage.
var commonWords = []string{
	"bank", "account", "balance", "date", "payment", "statement",
	"total", "amount", "credit", "debit", "transaction", "sort code",
	"money", "paid", "opening", "closing", "transfer", "direct",
	"number", "page", "period",
}

// IsReadableText checks that pages contain enough text, that it is mostly
// readable ASCII rather than decode garbage, and that at least one word a
// bank statement would contain is present.
func IsReadableText(pages []string) bool {
	if totalTextLen(pages) <= 50 {
		return false
	}
	if textQuality(pages) <= 0.6 {
		return false
	}
	combined := strings.ToLower(strings.Join(pages, " "))
	for _, word := range commonWords {
		if strings.Contains(combined, word) {
			return true
		}
	}
	return false
}

// textQuality returns the ratio of basic readable characters to total.
// A strict ASCII check is deliberate: unicode.IsLetter matches the accented
// garbage that identity-encoded fonts decode into.
func textQuality(pages []string) float64 {
	total := 0
	readable := 0
	for _, page := range pages {
		for _, r := range page {
			total++
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
				(r >= '0' && r <= '9') || unicode.IsSpace(r) ||
				strings.ContainsRune(`.,-/:;()'"£$€%&@#!?+=*`+"\t", r) {
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

func totalTextLen(pages []string) int {
	n := 0
	for _, p := range pages {
		n += len(strings.TrimSpace(p))
	}
	return n
}
