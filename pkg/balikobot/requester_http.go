package balikobot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/tournevent/balikobot/pkg/shipper"
)

// HTTPRequester is the production implementation of Requester using HTTP/JSON.
type HTTPRequester struct {
	apiUser    string
	apiKey     string
	userAgent  string
	httpClient *http.Client
}

// HTTPRequesterConfig holds configuration for the HTTP requester.
type HTTPRequesterConfig struct {
	APIUser   string
	APIKey    string
	UserAgent string
	Timeout   time.Duration
}

// NewHTTPRequester creates a new HTTP-based requester for production use.
func NewHTTPRequester(cfg HTTPRequesterConfig) *HTTPRequester {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "tournevent-balikobot/1.0"
	}

	httpClient := cleanhttp.DefaultPooledClient()
	httpClient.Timeout = timeout

	return &HTTPRequester{
		apiUser:    cfg.APIUser,
		apiKey:     cfg.APIKey,
		userAgent:  userAgent,
		httpClient: httpClient,
	}
}

// Request POSTs the batch as a JSON array and returns status and body verbatim.
func (r *HTTPRequester) Request(ctx context.Context, url string, payload []shipper.PackageRequest) (*Response, error) {
	if payload == nil {
		payload = []shipper.PackageRequest{}
	}

	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Balikobot authenticates with Basic auth: API user and API key
	req.SetBasicAuth(r.apiUser, r.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}

// Ensure HTTPRequester implements Requester interface
var _ Requester = (*HTTPRequester)(nil)
