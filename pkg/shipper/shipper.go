// Package shipper provides an abstraction layer for shipping carriers.
package shipper

import (
	"context"
)

// Shipper defines the interface that every carrier backend must implement.
type Shipper interface {
	// Name returns the carrier code (e.g., "cp", "ups", "ppl").
	Name() string

	// AddPackages submits a batch of packages and returns one result per package.
	AddPackages(ctx context.Context, req *AddPackagesRequest) (*AddPackagesResponse, error)
}
