// Package balikobot provides integration with the Balikobot shipping
// aggregation API: one client reaching many carriers by carrier code.
package balikobot

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tournevent/balikobot/pkg/shipper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/tournevent/balikobot/pkg/balikobot"

// Config holds Balikobot configuration.
type Config struct {
	APIUser string
	APIKey  string
	BaseURL string
	Timeout time.Duration
	UseMock bool // When true, uses MockRequester instead of HTTP
}

// Client submits package batches to Balikobot and validates the answers.
// It holds no state between calls.
type Client struct {
	baseURL   string
	requester Requester
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a new Balikobot client.
// If cfg.UseMock is true, it uses a mock requester.
// Otherwise, it uses the real HTTP requester.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var requester Requester

	if cfg.UseMock {
		requester = NewMockRequester()
	} else {
		requester = NewHTTPRequester(HTTPRequesterConfig{
			APIUser: cfg.APIUser,
			APIKey:  cfg.APIKey,
			Timeout: cfg.Timeout,
		})
	}

	return NewWithRequester(cfg, requester, logger, tracer)
}

// NewWithRequester creates a new Balikobot client with a custom requester.
// This is useful for injecting mock requesters in tests.
func NewWithRequester(cfg Config, requester Requester, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if tracer == nil {
		tracer = otel.Tracer(instrumentationName)
	}

	return &Client{
		baseURL:   baseURL,
		requester: requester,
		logger:    logger,
		tracer:    tracer,
	}
}

// AddPackages submits packages to the carrier and returns one result per
// package, in submission order, with every carrier field preserved.
//
// When labelsURL is non-nil and the answer carries a combined label archive,
// its URL is stored there; otherwise labelsURL is left untouched.
func (c *Client) AddPackages(ctx context.Context, carrier string, packages []shipper.PackageRequest, version Version, labelsURL *string) ([]shipper.PackageResult, error) {
	env, err := c.addPackages(ctx, carrier, packages, version)
	if err != nil {
		return nil, err
	}

	if labelsURL != nil && env.LabelsURL != nil {
		*labelsURL = *env.LabelsURL
	}

	return env.Packages(len(packages)), nil
}

func (c *Client) addPackages(ctx context.Context, carrier string, packages []shipper.PackageRequest, version Version) (*Envelope, error) {
	if carrier == "" {
		return nil, fmt.Errorf("%w: empty carrier code", shipper.ErrCarrierNotFound)
	}

	url := EndpointURL(c.baseURL, carrier, version)

	ctx, span := c.tracer.Start(ctx, "balikobot.AddPackages", trace.WithAttributes(
		attribute.String("balikobot.carrier", carrier),
		attribute.String("balikobot.version", string(version)),
		attribute.Int("balikobot.package_count", len(packages)),
	))
	defer span.End()

	logger := c.logger.Ctx(ctx)
	logger.Info("Adding Balikobot packages",
		zap.String("carrier", carrier),
		zap.String("url", url),
		zap.Int("package_count", len(packages)),
	)

	resp, err := c.requester.Request(ctx, url, packages)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		logger.Error("Balikobot request failed", zap.String("carrier", carrier), zap.Error(err))
		return nil, fmt.Errorf("balikobot %s add: %w", carrier, err)
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		badReq := newBadRequest(ReasonTransportStatus, carrier)
		badReq.StatusCode = resp.StatusCode
		return nil, c.fail(logger, span, badReq)
	}

	env := DecodeEnvelope(resp.Body)
	if err := env.Validate(carrier, len(packages)); err != nil {
		return nil, c.fail(logger, span, err)
	}

	logger.Debug("Balikobot packages added",
		zap.String("carrier", carrier),
		zap.Int("package_count", len(packages)),
		zap.Bool("labels_url", env.LabelsURL != nil),
	)
	return env, nil
}

func (c *Client) fail(logger otelzap.LoggerWithCtx, span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	logger.Warn("Balikobot rejected batch", zap.Error(err))
	return err
}
