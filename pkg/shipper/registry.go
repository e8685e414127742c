package shipper

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Registry manages registered shipping carriers by carrier code.
type Registry struct {
	shippers map[string]Shipper
	mu       sync.RWMutex
}

// NewRegistry creates a new shipper registry.
func NewRegistry() *Registry {
	return &Registry{
		shippers: make(map[string]Shipper),
	}
}

// Register adds a shipper to the registry.
func (r *Registry) Register(s Shipper) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shippers[s.Name()] = s
}

// Get returns a shipper by carrier code.
func (r *Registry) Get(name string) (Shipper, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.shippers[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrCarrierNotFound, name)
}

// All returns all registered shippers.
func (r *Registry) All() []Shipper {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Shipper, 0, len(r.shippers))
	for _, s := range r.shippers {
		result = append(result, s)
	}
	return result
}

// Names returns the sorted carrier codes of all registered shippers.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.shippers))
	for name := range r.shippers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered shippers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.shippers)
}

// AddPackages routes a single batch to the shipper registered for its carrier.
func (r *Registry) AddPackages(ctx context.Context, req *AddPackagesRequest) (*AddPackagesResponse, error) {
	s, err := r.Get(req.Carrier)
	if err != nil {
		return nil, err
	}
	return s.AddPackages(ctx, req)
}

// AddToCarriers submits several batches in parallel, one call per request.
// responses[i] belongs to reqs[i] and is nil when errs[i] is set. A failing
// carrier does not cancel the others.
func (r *Registry) AddToCarriers(ctx context.Context, reqs []*AddPackagesRequest) ([]*AddPackagesResponse, []error) {
	responses := make([]*AddPackagesResponse, len(reqs))
	errs := make([]error, len(reqs))

	var g errgroup.Group
	for i, req := range reqs {
		g.Go(func() error {
			resp, err := r.AddPackages(ctx, req)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", req.Carrier, err)
				return nil // keep the other carriers going
			}
			responses[i] = resp
			return nil
		})
	}

	_ = g.Wait()
	return responses, errs
}
