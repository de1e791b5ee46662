package relay

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func newTestClient(upstream *httptest.Server, maxBodySize int64) *Client {
	return NewClient(upstream.URL+"/web/index.php", 5*time.Second, maxBodySize)
}

func TestClient_Search_ForwardsParamsVerbatim(t *testing.T) {
	var gotQuery url.Values
	var gotUA string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<html><body>results</body></html>"))
	}))
	defer upstream.Close()

	client := newTestClient(upstream, 1<<20)

	params := url.Values{}
	params.Set("case_type_id", "12")
	params.Set("year", "2024")

	markup, err := client.Search(context.Background(), params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if markup != "<html><body>results</body></html>" {
		t.Errorf("unexpected markup: %q", markup)
	}
	if gotQuery.Get("case_type_id") != "12" || gotQuery.Get("year") != "2024" {
		t.Errorf("query parameters not forwarded verbatim: %v", gotQuery)
	}
	if gotUA != userAgent {
		t.Errorf("expected browser user agent, got %q", gotUA)
	}
}

func TestClient_Search_Non2xxIsNetworkError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer upstream.Close()

	client := newTestClient(upstream, 1<<20)

	_, err := client.Search(context.Background(), nil)
	if err == nil {
		t.Fatalf("expected error for non-2xx response")
	}

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected *NetworkError, got %T", err)
	}
	if netErr.StatusCode != http.StatusBadGateway {
		t.Errorf("expected status 502 in error, got %d", netErr.StatusCode)
	}
	if netErr.Op != "search" {
		t.Errorf("expected op 'search', got %q", netErr.Op)
	}
}

func TestClient_FetchDocument_ReturnsRawBytes(t *testing.T) {
	pdfBytes := []byte("%PDF-1.4 fake body")
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// Misconfigured servers advertise the wrong type; the relay must
		// not care.
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write(pdfBytes)
	}))
	defer upstream.Close()

	client := newTestClient(upstream, 1<<20)

	got, err := client.FetchDocument(context.Background(), upstream.URL+"/doc.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != string(pdfBytes) {
		t.Errorf("fetched bytes differ from upstream body")
	}
}

func TestClient_FetchDocument_SizeLimit(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(make([]byte, 2048))
	}))
	defer upstream.Close()

	client := newTestClient(upstream, 1024)

	_, err := client.FetchDocument(context.Background(), upstream.URL+"/doc.pdf")
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected *NetworkError for oversized response, got %v", err)
	}
}

func TestClient_FetchDocument_ContextCancellation(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer upstream.Close()

	client := newTestClient(upstream, 1<<20)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchDocument(ctx, upstream.URL+"/doc.pdf")
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected *NetworkError for cancelled fetch, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected wrapped context.Canceled, got %v", netErr.Err)
	}
}

func TestClient_TransportFailureIsNetworkError(t *testing.T) {
	client := NewClient("http://127.0.0.1:0/web/index.php", time.Second, 1<<20)

	_, err := client.Search(context.Background(), nil)
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected *NetworkError for transport failure, got %v", err)
	}
	if netErr.StatusCode != 0 {
		t.Errorf("transport failure should carry no status code, got %d", netErr.StatusCode)
	}
}
