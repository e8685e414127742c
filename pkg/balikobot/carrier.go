package balikobot

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/tournevent/balikobot/pkg/shipper"
)

// Carrier exposes one Balikobot carrier code as a shipper.Shipper.
type Carrier struct {
	client  *Client
	code    string
	version Version
}

// NewCarrier binds a carrier code and its default API version to a client.
func NewCarrier(client *Client, code string, version Version) *Carrier {
	return &Carrier{client: client, code: code, version: version}
}

// Name returns the carrier code.
func (c *Carrier) Name() string {
	return c.code
}

// AddPackages submits the batch. A non-empty req.Version overrides the
// carrier default.
func (c *Carrier) AddPackages(ctx context.Context, req *shipper.AddPackagesRequest) (*shipper.AddPackagesResponse, error) {
	if len(req.Packages) == 0 {
		return nil, shipper.NewShipperError(c.code, "invalid_package", "no packages to add").
			WithCause(shipper.ErrInvalidPackage)
	}

	version := c.version
	if req.Version != "" {
		version = Version(req.Version)
	}

	env, err := c.client.addPackages(ctx, c.code, req.Packages, version)
	if err != nil {
		return nil, c.toShipperError(err)
	}

	resp := &shipper.AddPackagesResponse{
		Carrier:  c.code,
		Packages: env.Packages(len(req.Packages)),
	}
	if env.LabelsURL != nil {
		resp.LabelsURL = *env.LabelsURL
		resp.HasLabelsURL = true
	}
	return resp, nil
}

func (c *Carrier) toShipperError(err error) error {
	var badReq *BadRequestError
	if errors.As(err, &badReq) {
		cause := err
		if sentinel := transportSentinel(badReq); sentinel != nil {
			cause = fmt.Errorf("%w: %w", sentinel, err)
		}
		return shipper.NewShipperError(c.code, string(badReq.Reason), badReq.Message()).
			WithStatusCode(badReq.StatusCode).
			WithRetryable(badReq.Retryable()).
			WithCause(cause)
	}

	if errors.Is(err, shipper.ErrCarrierNotFound) {
		return shipper.NewShipperError(c.code, "carrier_not_found", "carrier code is required").
			WithCause(err)
	}

	retryable := !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	return shipper.NewShipperError(c.code, "request_failed", "request failed").
		WithRetryable(retryable).
		WithCause(err)
}

// transportSentinel classifies HTTP statuses that have a shipper-level meaning.
func transportSentinel(e *BadRequestError) error {
	if e.Reason != ReasonTransportStatus {
		return nil
	}
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return shipper.ErrAuthenticationFailed
	case http.StatusTooManyRequests:
		return shipper.ErrRateLimitExceeded
	case http.StatusServiceUnavailable:
		return shipper.ErrServiceUnavailable
	}
	return nil
}

var _ shipper.Shipper = (*Carrier)(nil)
