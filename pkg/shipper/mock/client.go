// Package mock provides a mock shipper implementation for testing.
package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tournevent/balikobot/pkg/shipper"
)

// Client is a mock shipper for testing.
type Client struct {
	name string

	// Err, when set, is returned by every AddPackages call.
	Err error

	mu       sync.Mutex
	requests []*shipper.AddPackagesRequest
}

// New creates a new mock shipper for the given carrier code.
func New(name string) *Client {
	return &Client{name: name}
}

// Name returns the carrier code.
func (c *Client) Name() string {
	return c.name
}

// AddPackages returns one well-formed result per submitted package.
func (c *Client) AddPackages(ctx context.Context, req *shipper.AddPackagesRequest) (*shipper.AddPackagesResponse, error) {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	c.mu.Unlock()

	if c.Err != nil {
		return nil, c.Err
	}

	now := time.Now().UnixNano()
	results := make([]shipper.PackageResult, len(req.Packages))
	for i := range req.Packages {
		packageID := fmt.Sprintf("%d", now%100000+int64(i))
		results[i] = shipper.PackageResult{
			shipper.FieldCarrierID: fmt.Sprintf("%s-%d-%d", c.name, now, i),
			shipper.FieldPackageID: packageID,
			shipper.FieldLabelURL:  fmt.Sprintf("https://labels.%s.mock/%s.pdf", c.name, packageID),
			shipper.FieldStatus:    "200",
		}
	}

	return &shipper.AddPackagesResponse{
		Carrier:      c.name,
		Packages:     results,
		LabelsURL:    fmt.Sprintf("https://labels.%s.mock/batch-%d.pdf", c.name, now),
		HasLabelsURL: true,
	}, nil
}

// Requests returns the batches received so far.
func (c *Client) Requests() []*shipper.AddPackagesRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*shipper.AddPackagesRequest(nil), c.requests...)
}
