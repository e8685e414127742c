package balikobot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tournevent/balikobot/pkg/shipper"
)

// RequestCall records one call received by MockRequester.
type RequestCall struct {
	URL     string
	Payload []shipper.PackageRequest
}

// MockRequester is an offline Requester answering every batch with a
// well-formed envelope. It backs BALIKOBOT_USE_MOCK and tests.
type MockRequester struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnRequest func(ctx context.Context, url string, payload []shipper.PackageRequest) (*Response, error)

	mu    sync.Mutex
	calls []RequestCall
}

// NewMockRequester creates a new mock requester with default behavior.
func NewMockRequester() *MockRequester {
	return &MockRequester{}
}

// Request returns a mock answer for the batch.
func (m *MockRequester) Request(ctx context.Context, url string, payload []shipper.PackageRequest) (*Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, RequestCall{URL: url, Payload: payload})
	m.mu.Unlock()

	if m.SimulateLatency > 0 {
		select {
		case <-time.After(m.SimulateLatency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if m.SimulateErrors {
		return &Response{
			StatusCode: http.StatusServiceUnavailable,
			Body:       []byte(`{"status":503}`),
		}, nil
	}

	if m.OnRequest != nil {
		return m.OnRequest(ctx, url, payload)
	}

	carrier := carrierFromURL(url)
	batchID := uuid.New().String()[:8]

	envelope := map[string]any{
		keyStatus:    http.StatusOK,
		keyLabelsURL: fmt.Sprintf("https://pdf.balikobot.mock/%s/labels-%s.pdf", carrier, batchID),
	}
	for i := range payload {
		packageID := fmt.Sprintf("%d", 40000+i)
		envelope[strconv.Itoa(i)] = map[string]any{
			shipper.FieldCarrierID: strings.ToUpper(carrier) + "-" + batchID + "-" + strconv.Itoa(i),
			shipper.FieldPackageID: packageID,
			shipper.FieldLabelURL:  fmt.Sprintf("https://pdf.balikobot.mock/%s/%s-%s.pdf", carrier, batchID, packageID),
			shipper.FieldStatus:    "200",
		}
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal mock envelope: %w", err)
	}

	return &Response{StatusCode: http.StatusOK, Body: body}, nil
}

// Calls returns the requests received so far.
func (m *MockRequester) Calls() []RequestCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RequestCall(nil), m.calls...)
}

// carrierFromURL extracts the carrier code from ".../{carrier}/add".
func carrierFromURL(url string) string {
	parts := strings.Split(strings.TrimRight(url, "/"), "/")
	if len(parts) < 2 {
		return "unknown"
	}
	return parts[len(parts)-2]
}

var _ Requester = (*MockRequester)(nil)
