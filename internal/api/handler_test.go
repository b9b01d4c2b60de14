package api

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const samplePageText = `21 Mar 22 DD ACME LTD 123.45 4,576.55
22 Mar 22 CR PAYROLL 2,000.00 6,576.55`

func newConvertRequest(t *testing.T, fields map[string]string) *http.Request {
	t.Helper()

	var body strings.Builder
	form := multipart.NewWriter(&body)
	for key, value := range fields {
		if err := form.WriteField(key, value); err != nil {
			t.Fatal(err)
		}
	}
	form.Close()

	req := httptest.NewRequest("POST", "/api/convert", strings.NewReader(body.String()))
	req.Header.Set("Content-Type", form.FormDataContentType())
	return req
}

func TestHandleHealth(t *testing.T) {
	app := NewApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/api/health", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status: got %d", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q", body["status"])
	}
	if body["engine"] != "fiber" {
		t.Errorf("engine field: got %q", body["engine"])
	}
	if body["version"] == "" {
		t.Error("version field missing")
	}
}

func TestHandleConvert_ExtractedText(t *testing.T) {
	app := NewApp()

	resp, err := app.Test(newConvertRequest(t, map[string]string{
		"extractedText": samplePageText,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status: got %d", resp.StatusCode)
	}

	var body ConvertResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if !body.Success {
		t.Fatalf("success=false: %s", body.Error)
	}
	if body.Count != 2 {
		t.Errorf("count: got %d", body.Count)
	}
	if body.TotalPaidOut != 123.45 {
		t.Errorf("total paid out: got %v", body.TotalPaidOut)
	}
	if body.TotalPaidIn != 2000.00 {
		t.Errorf("total paid in: got %v", body.TotalPaidIn)
	}
	if !strings.Contains(body.CSV, "£Paid out") {
		t.Errorf("CSV missing header: %q", body.CSV)
	}
	if !strings.Contains(body.CSV, "ACME LTD") {
		t.Errorf("CSV missing row: %q", body.CSV)
	}
}

func TestHandleConvert_NoInput(t *testing.T) {
	app := NewApp()

	resp, err := app.Test(newConvertRequest(t, nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("status: got %d, want 400", resp.StatusCode)
	}

	var body ConvertResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Success {
		t.Error("success should be false")
	}
	if body.Error == "" {
		t.Error("error message missing")
	}
}

func TestHandleConvert_UnknownStrategy(t *testing.T) {
	app := NewApp()

	resp, err := app.Test(newConvertRequest(t, map[string]string{
		"extractedText": samplePageText,
		"merge":         "bogus",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("status: got %d, want 400", resp.StatusCode)
	}
}

func TestHandleConvert_PageBreakMarkerSplitsPages(t *testing.T) {
	app := NewApp()

	text := "23 Mar 22 DD ACME LTD 123.45 4,576.55" + pageBreakMarker + "24 Mar 22 VIS COFFEE SHOP 12.50 4,564.05"
	resp, err := app.Test(newConvertRequest(t, map[string]string{
		"extractedText": text,
	}))
	if err != nil {
		t.Fatal(err)
	}

	var body ConvertResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Count != 2 {
		t.Errorf("count: got %d, want 2", body.Count)
	}
}

func TestHandleConvert_NoTransactions(t *testing.T) {
	app := NewApp()

	resp, err := app.Test(newConvertRequest(t, map[string]string{
		"extractedText": "nothing statement-shaped here",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("status: got %d", resp.StatusCode)
	}

	var body ConvertResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if !body.Success || body.Count != 0 {
		t.Errorf("got success=%v count=%d", body.Success, body.Count)
	}
	if body.Transactions == nil {
		t.Error("transactions should serialize as an empty array")
	}
}

func TestHandleConvert_MetaRowsInCSV(t *testing.T) {
	app := NewApp()

	text := "Account name: MR J SMITH\n" + samplePageText
	resp, err := app.Test(newConvertRequest(t, map[string]string{
		"extractedText": text,
		"meta":          "true",
	}))
	if err != nil {
		t.Fatal(err)
	}

	var body ConvertResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(body.CSV, "# Account Holder") {
		t.Errorf("meta rows missing from CSV: %q", body.CSV)
	}
	if body.AccountInfo == nil || body.AccountInfo.Holder != "MR J SMITH" {
		t.Errorf("account info: got %+v", body.AccountInfo)
	}
}
