package graphql

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tournevent/balikobot/internal/telemetry"
	"github.com/tournevent/balikobot/pkg/shipper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Resolver is the root resolver for the GraphQL schema.
// It holds dependencies needed by all resolvers.
type Resolver struct {
	Registry *shipper.Registry
	Logger   *otelzap.Logger
	Metrics  *telemetry.Metrics
}

// NewResolver creates a new resolver with the given dependencies.
func NewResolver(registry *shipper.Registry, logger *otelzap.Logger, metrics *telemetry.Metrics) *Resolver {
	return &Resolver{
		Registry: registry,
		Logger:   logger,
		Metrics:  metrics,
	}
}

// Query returns the query resolver.
func (r *Resolver) Query() *QueryResolver { return &QueryResolver{r} }

// Mutation returns the mutation resolver.
func (r *Resolver) Mutation() *MutationResolver { return &MutationResolver{r} }

// QueryResolver resolves the Query root fields.
type QueryResolver struct{ *Resolver }

// Health reports the service status and the number of registered carriers.
func (r *QueryResolver) Health(ctx context.Context) (*Health, error) {
	return &Health{Status: "ok", Carriers: r.Registry.Count()}, nil
}

// Carriers lists the registered carrier codes.
func (r *QueryResolver) Carriers(ctx context.Context) ([]string, error) {
	return r.Registry.Names(), nil
}

// MutationResolver resolves the Mutation root fields.
type MutationResolver struct{ *Resolver }

// AddPackages submits one batch to its carrier.
func (r *MutationResolver) AddPackages(ctx context.Context, input AddPackagesInput) (*AddPackagesResult, error) {
	requestID := uuid.New().String()
	start := time.Now()

	logger := r.Logger.Ctx(ctx)
	logger.Info("Adding packages",
		zap.String("request_id", requestID),
		zap.String("carrier", input.Carrier),
		zap.Int("packages", len(input.Packages)),
	)

	resp, err := r.Registry.AddPackages(ctx, inputToRequest(input))
	r.record("add_packages", input.Carrier, start, resp, err)
	if err != nil {
		logger.Warn("Add packages failed",
			zap.String("request_id", requestID),
			zap.String("carrier", input.Carrier),
			zap.Error(err),
		)
		return failedResult(requestID, input.Carrier, err), nil
	}

	return responseToGraphQL(requestID, resp), nil
}

// AddShipments submits batches for several carriers in parallel. Results
// follow the order of inputs.
func (r *MutationResolver) AddShipments(ctx context.Context, inputs []AddPackagesInput) ([]*AddPackagesResult, error) {
	requestID := uuid.New().String()
	start := time.Now()

	reqs := make([]*shipper.AddPackagesRequest, len(inputs))
	for i, input := range inputs {
		reqs[i] = inputToRequest(input)
	}

	r.Logger.Ctx(ctx).Info("Adding shipments",
		zap.String("request_id", requestID),
		zap.Int("batches", len(reqs)),
	)

	responses, errs := r.Registry.AddToCarriers(ctx, reqs)

	results := make([]*AddPackagesResult, len(inputs))
	for i, input := range inputs {
		r.record("add_shipments", input.Carrier, start, responses[i], errs[i])
		if errs[i] != nil {
			results[i] = failedResult(requestID, input.Carrier, errs[i])
			continue
		}
		results[i] = responseToGraphQL(requestID, responses[i])
	}

	return results, nil
}

func (r *Resolver) record(operation, carrier string, start time.Time, resp *shipper.AddPackagesResponse, err error) {
	duration := time.Since(start).Seconds()
	if err != nil {
		r.Metrics.RecordRequest(operation, carrier, "error", duration)
		r.Metrics.RecordError(carrier, errorCode(err))
		return
	}
	r.Metrics.RecordRequest(operation, carrier, "success", duration)
	r.Metrics.RecordPackages(carrier, len(resp.Packages))
}
