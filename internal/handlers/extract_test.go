package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/ambientanki/ambientd/internal/extract"
)

func newExtractHandler() *ExtractHandler {
	return NewExtractHandler(extract.New(zap.NewNop()), zap.NewNop())
}

func postCheck(t *testing.T, h *ExtractHandler, body string) extract.SuitabilityResult {
	t.Helper()
	rec := httptest.NewRecorder()
	h.CheckSuitability(rec, httptest.NewRequest(http.MethodPost, "/api/v1/extract/check", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	env := decodeEnvelope(t, rec)

	var result extract.SuitabilityResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("bad data payload: %v", err)
	}
	return result
}

func TestCheckSuitabilityEndpoint(t *testing.T) {
	t.Parallel()

	h := newExtractHandler()

	article := fmt.Sprintf(
		`<html><head><title>Go Concurrency</title></head><body><article><p>%s</p></article></body></html>`,
		strings.Repeat("Goroutines communicate over channels. ", 20),
	)
	body := fmt.Sprintf(`{"url":"https://example.com/article","html":%q}`, article)

	result := postCheck(t, h, body)
	if !result.Suitable {
		t.Fatalf("article page reported unsuitable: %+v", result)
	}
}

func TestCheckSuitabilityEmptyBodyText(t *testing.T) {
	t.Parallel()

	h := newExtractHandler()

	// Markup alone exceeds the content length threshold; only extracted
	// body text may count toward it.
	page := `<html><head><title>Placeholder</title>` +
		strings.Repeat(`<meta name="generator" content="static site builder v2"/>`, 10) +
		`</head><body><div id="content"></div></body></html>`
	body := fmt.Sprintf(`{"url":"https://example.com/empty","html":%q}`, page)

	result := postCheck(t, h, body)
	if result.Suitable {
		t.Fatal("page with no body text reported suitable")
	}
	if result.Reason != "insufficient_content" {
		t.Errorf("reason = %q", result.Reason)
	}
}

func TestCheckSuitabilityRequiresURL(t *testing.T) {
	t.Parallel()

	h := newExtractHandler()
	rec := httptest.NewRecorder()
	h.CheckSuitability(rec, httptest.NewRequest(http.MethodPost, "/api/v1/extract/check", strings.NewReader(`{}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}
