package api

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/TechNerdXp/csv-statement/internal/extractor"
	"github.com/TechNerdXp/csv-statement/internal/models"
	"github.com/TechNerdXp/csv-statement/internal/parser"
	"github.com/TechNerdXp/csv-statement/internal/writer"
)

const version = "1.1.0"

// pageBreakMarker separates pages in pre-extracted text uploads.
const pageBreakMarker = "\n---PAGE_BREAK---\n"

// ConvertResponse is the JSON response from POST /api/convert.
type ConvertResponse struct {
	Success      bool                       `json:"success"`
	Error        string                     `json:"error,omitempty"`
	AccountInfo  *AccountInfo               `json:"accountInfo,omitempty"`
	Transactions []models.TransactionRecord `json:"transactions"`
	Rows         []models.ExportRow         `json:"rows"`
	CSV          string                     `json:"csv,omitempty"`
	TotalPaidOut float64                    `json:"totalPaidOut"`
	TotalPaidIn  float64                    `json:"totalPaidIn"`
	Count        int                        `json:"count"`
	Version      string                     `json:"version,omitempty"`
}

// AccountInfo holds account metadata for the JSON response.
type AccountInfo struct {
	Holder   string `json:"holder,omitempty"`
	Number   string `json:"number,omitempty"`
	SortCode string `json:"sortCode,omitempty"`
	Period   string `json:"period,omitempty"`
}

// NewApp builds the fiber app with the convert API routes registered.
func NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: 32 << 20, // statements are small; 32MB is generous
	})
	app.Get("/api/health", HandleHealth)
	app.Post("/api/convert", HandleConvert)
	return app
}

// HandleHealth reports service liveness.
func HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"engine":  "fiber",
		"version": version,
	})
}

// HandleConvert accepts a statement PDF upload (form field "file") or
// pre-extracted page text (form field "extractedText", pages separated by
// the PAGE_BREAK marker) and returns the reconstructed transactions plus
// the CSV rendering.
func HandleConvert(c *fiber.Ctx) error {
	pages, err := requestPages(c)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}
	if len(pages) == 0 {
		return writeError(c, fiber.StatusUnprocessableEntity, "no page text could be extracted")
	}

	merge, err := parser.MergeStrategyByName(c.FormValue("merge"))
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}
	direction, err := parser.DirectionStrategyByName(c.FormValue("direction"))
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}

	pipeline := parser.NewPipeline()
	pipeline.Merge = merge
	pipeline.Direction = direction

	info, err := pipeline.ProcessDocument(pages)
	if err != nil {
		return writeError(c, fiber.StatusUnprocessableEntity, fmt.Sprintf("parsing failed: %v", err))
	}

	rows := parser.ExportRows(info.Transactions)

	var csvBuf bytes.Buffer
	csvWriter := &writer.CSVWriter{IncludeMeta: c.FormValue("meta") == "true"}
	if err := csvWriter.Write(&csvBuf, info, rows); err != nil {
		return writeError(c, fiber.StatusInternalServerError, fmt.Sprintf("CSV generation failed: %v", err))
	}

	totalOut, totalIn := totals(info.Transactions)

	txns := info.Transactions
	if txns == nil {
		txns = []models.TransactionRecord{}
	}

	resp := ConvertResponse{
		Success:      true,
		Transactions: txns,
		Rows:         rows,
		CSV:          csvBuf.String(),
		TotalPaidOut: totalOut,
		TotalPaidIn:  totalIn,
		Count:        len(txns),
		Version:      version,
	}
	if info.AccountHolder != "" || info.AccountNumber != "" || info.SortCode != "" || info.StatementPeriod != "" {
		resp.AccountInfo = &AccountInfo{
			Holder:   info.AccountHolder,
			Number:   info.AccountNumber,
			SortCode: info.SortCode,
			Period:   info.StatementPeriod,
		}
	}
	return c.JSON(resp)
}

// requestPages resolves the page text for a convert request, preferring
// pre-extracted text over server-side extraction of an uploaded PDF.
func requestPages(c *fiber.Ctx) ([]string, error) {
	if extracted := c.FormValue("extractedText"); extracted != "" {
		var pages []string
		for _, page := range strings.Split(extracted, pageBreakMarker) {
			pages = append(pages, strings.TrimSpace(page))
		}
		return pages, nil
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("no file uploaded; use form field 'file'")
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".pdf") {
		return nil, fmt.Errorf("only PDF files are supported")
	}

	tmpFile, err := os.CreateTemp("", "statement-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())
	tmpFile.Close()

	if err := c.SaveFile(fileHeader, tmpFile.Name()); err != nil {
		return nil, fmt.Errorf("failed to save uploaded file: %w", err)
	}

	pages, err := extractor.ExtractText(tmpFile.Name())
	if err != nil {
		return nil, fmt.Errorf("PDF extraction failed: %w", err)
	}
	return pages, nil
}

func totals(records []models.TransactionRecord) (paidOut, paidIn float64) {
	for _, rec := range records {
		if v, err := strconv.ParseFloat(rec.PaidOut, 64); err == nil {
			paidOut += v
		}
		if v, err := strconv.ParseFloat(rec.PaidIn, 64); err == nil {
			paidIn += v
		}
	}
	return paidOut, paidIn
}

func writeError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ConvertResponse{
		Success: false,
		Error:   msg,
	})
}
