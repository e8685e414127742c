package balikobot

import (
	"context"

	"github.com/tournevent/balikobot/pkg/shipper"
)

//go:generate mockgen -source=api.go -destination=mocks/requester.go -package=mocks

// Requester performs the network round-trip for a fully built endpoint URL.
// This abstraction allows for mock implementations during testing
// and real implementations in production.
type Requester interface {
	// Request sends the package batch and returns the raw answer.
	// A non-nil error means no answer was received at all.
	Request(ctx context.Context, url string, payload []shipper.PackageRequest) (*Response, error)
}

// Response is the raw answer of the Balikobot API.
type Response struct {
	StatusCode int
	Body       []byte
}
