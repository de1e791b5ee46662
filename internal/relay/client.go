package relay

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// The upstream site rejects requests without a browser user agent.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Client is the boundary to the upstream judicial records site. It forwards
// search parameters verbatim and streams back raw bytes; it interprets
// nothing beyond HTTP status.
type Client struct {
	httpClient  *http.Client
	searchURL   string
	maxBodySize int64
}

// NewClient creates a relay client. searchURL is the absolute URL of the
// upstream search endpoint; maxBodySize caps how many bytes any single
// response may carry.
func NewClient(searchURL string, timeout time.Duration, maxBodySize int64) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		searchURL:   searchURL,
		maxBodySize: maxBodySize,
	}
}

// Search submits the user's search parameters verbatim and returns the raw
// response markup. Transport failures and non-2xx statuses surface as
// *NetworkError.
func (c *Client) Search(ctx context.Context, params url.Values) (string, error) {
	target := c.searchURL
	if encoded := params.Encode(); encoded != "" {
		target += "?" + encoded
	}

	body, err := c.get(ctx, "search", target)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// FetchDocument retrieves the raw bytes behind an absolute document URL.
// The advertised content type is deliberately ignored: the document pipeline
// trusts only the byte signature.
func (c *Client) FetchDocument(ctx context.Context, docURL string) ([]byte, error) {
	return c.get(ctx, "fetch", docURL)
}

func (c *Client) get(ctx context.Context, op, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &NetworkError{Op: op, URL: target, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &NetworkError{Op: op, URL: target, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return nil, &NetworkError{Op: op, URL: target, Err: err}
	}
	if int64(len(body)) > c.maxBodySize {
		return nil, &NetworkError{
			Op:  op,
			URL: target,
			Err: fmt.Errorf("response exceeds maximum size of %d bytes", c.maxBodySize),
		}
	}

	return body, nil
}
