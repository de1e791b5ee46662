package mcp

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/1Sheikhhamza/case-search-app/internal/config"
	"github.com/1Sheikhhamza/case-search-app/internal/document"
	"github.com/1Sheikhhamza/case-search-app/internal/extract"
	"github.com/1Sheikhhamza/case-search-app/internal/relay"
)

const resultsMarkup = `<html><body><table>
<tr>
  <td>1</td>
  <td><a href="../judgments/appeal_1.pdf">Civil Appeal No. 1 of 2025</a> Uploaded on : 08-SEP-25 From : High Court Division</td>
  <td>Karim vs. State</td>
  <td>Short description</td>
</tr>
</table></body></html>`

// makeTestPDF assembles a minimal single-page PDF with a correct xref table.
func makeTestPDF(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	var offsets []int

	addObj := func(body string) {
		offsets = append(offsets, buf.Len())
		buf.WriteString(body)
	}

	buf.WriteString("%PDF-1.4\n")
	addObj("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	addObj("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")
	addObj("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>\nendobj\n")

	xrefPos := buf.Len()
	buf.WriteString("xref\n0 4\n0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size 4 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xrefPos)

	return buf.Bytes()
}

// newTestServer wires an MCP server against a fake upstream site.
func newTestServer(t *testing.T, upstreamHandler http.Handler) (*Server, *httptest.Server) {
	t.Helper()

	upstream := httptest.NewServer(upstreamHandler)
	t.Cleanup(upstream.Close)

	cfg := config.DefaultConfig()
	cfg.SiteRoot = upstream.URL

	relayClient := relay.NewClient(cfg.SearchURL(), 5*time.Second, cfg.MaxDocumentSize)
	engine := extract.NewEngine(cfg.SiteRoot)
	docs := document.NewService(relayClient, cfg.MaxDocumentSize, cfg.Attribution, cfg.RenderScale)

	srv, err := NewServer(cfg, relayClient, engine, docs)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return srv, upstream
}

func toolRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func extractTextFromResult(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			return textContent.Text
		}
		if textContentPtr, ok := content.(*mcp.TextContent); ok {
			return textContentPtr.Text
		}
	}
	return ""
}

func TestNewServer(t *testing.T) {
	srv, _ := newTestServer(t, http.NotFoundHandler())
	if srv == nil {
		t.Fatal("server should not be nil")
	}
	if srv.mcpServer == nil {
		t.Error("MCP server should be initialized")
	}
}

func TestNewServer_NilDependencies(t *testing.T) {
	cfg := config.DefaultConfig()
	if _, err := NewServer(cfg, nil, nil, nil); err == nil {
		t.Error("expected error for nil dependencies")
	}
}

func TestServer_HandleJudgmentSearch(t *testing.T) {
	var gotQuery string
	srv, _ := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(resultsMarkup))
	}))

	request := toolRequest(map[string]any{
		"case_type_id": "12",
		"year":         "2025",
	})

	result, err := srv.handleJudgmentSearch(context.Background(), request)
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	resultText := extractTextFromResult(result)
	if !strings.Contains(resultText, "Found 1 judgment(s)") {
		t.Errorf("expected one judgment found, got: %s", resultText)
	}
	if !strings.Contains(resultText, "Civil Appeal No. 1 of 2025") {
		t.Errorf("expected judgment title in output, got: %s", resultText)
	}
	if !strings.Contains(gotQuery, "case_type_id=12") || !strings.Contains(gotQuery, "year=2025") {
		t.Errorf("search params not forwarded, got query: %s", gotQuery)
	}
}

func TestServer_HandleJudgmentSearch_NoResults(t *testing.T) {
	srv, _ := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>nothing</p></body></html>"))
	}))

	result, err := srv.handleJudgmentSearch(context.Background(), toolRequest(nil))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	resultText := extractTextFromResult(result)
	if !strings.Contains(resultText, "No judgments found") {
		t.Errorf("expected no-results message, got: %s", resultText)
	}
}

func TestServer_HandleJudgmentOpen(t *testing.T) {
	fixture := makeTestPDF(t)
	mux := http.NewServeMux()
	mux.HandleFunc("/judgments/appeal_1.pdf", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(fixture)
	})

	srv, upstream := newTestServer(t, mux)

	request := toolRequest(map[string]any{
		"document_url": upstream.URL + "/judgments/appeal_1.pdf",
		"title":        "Civil Appeal No. 1 of 2025",
	})

	result, err := srv.handleJudgmentOpen(context.Background(), request)
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	resultText := extractTextFromResult(result)
	if !strings.Contains(resultText, "Successfully opened judgment") {
		t.Errorf("expected success message, got: %s", resultText)
	}
	if !strings.Contains(resultText, "Pages: 1") {
		t.Errorf("expected page count in output, got: %s", resultText)
	}
}

func TestServer_HandleJudgmentOpen_MissingURL(t *testing.T) {
	srv, _ := newTestServer(t, http.NotFoundHandler())

	result, err := srv.handleJudgmentOpen(context.Background(), toolRequest(nil))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if result == nil || !result.IsError {
		t.Error("expected tool error for missing document_url")
	}
}

func TestServer_HandleJudgmentOpen_ErrorPage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/judgments/missing.pdf", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body>404</body></html>"))
	})

	srv, upstream := newTestServer(t, mux)

	request := toolRequest(map[string]any{
		"document_url": upstream.URL + "/judgments/missing.pdf",
	})

	result, err := srv.handleJudgmentOpen(context.Background(), request)
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if result == nil || !result.IsError {
		t.Error("expected tool error for HTML error page")
	}
	if !strings.Contains(extractTextFromResult(result), "HTML error page") {
		t.Errorf("expected error page classification, got: %s", extractTextFromResult(result))
	}
}

func TestServer_HandleJudgmentDownload(t *testing.T) {
	fixture := makeTestPDF(t)
	mux := http.NewServeMux()
	mux.HandleFunc("/judgments/appeal_1.pdf", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(fixture)
	})

	srv, upstream := newTestServer(t, mux)
	outputDir := t.TempDir()

	request := toolRequest(map[string]any{
		"document_url": upstream.URL + "/judgments/appeal_1.pdf",
		"output_dir":   outputDir,
		"title":        "Civil Appeal No. 1 of 2025",
	})

	result, err := srv.handleJudgmentDownload(context.Background(), request)
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", extractTextFromResult(result))
	}

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		t.Fatalf("failed to read output dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one saved file, found %d", len(entries))
	}

	saved, err := os.ReadFile(filepath.Join(outputDir, entries[0].Name()))
	if err != nil {
		t.Fatalf("failed to read saved file: %v", err)
	}
	if !document.HasSignature(saved) {
		t.Error("saved file must carry the PDF signature")
	}
	if !strings.HasPrefix(entries[0].Name(), "Digital_BLD_Judgment_") {
		t.Errorf("unexpected saved filename: %s", entries[0].Name())
	}
}
