package graphql

// Health reports service liveness.
type Health struct {
	Status   string `json:"status"`
	Carriers int    `json:"carriers"`
}

// AddPackagesInput is one batch submitted through the API.
type AddPackagesInput struct {
	Carrier  string
	Version  *string
	Packages []map[string]any
}

// AddPackagesResult is the outcome of one batch. Carrier failures are
// reported in Errors rather than as GraphQL errors.
type AddPackagesResult struct {
	RequestID string           `json:"requestId"`
	Carrier   string           `json:"carrier"`
	Success   bool             `json:"success"`
	Packages  []*PackageResult `json:"packages"`
	LabelsURL *string          `json:"labelsUrl"`
	Errors    []*Error         `json:"errors"`
}

// PackageResult exposes the common fields of a carrier result. Fields holds
// the full record as returned by the carrier.
type PackageResult struct {
	CarrierID *string        `json:"carrierId"`
	PackageID *string        `json:"packageId"`
	LabelURL  *string        `json:"labelUrl"`
	Status    *int           `json:"status"`
	Fields    map[string]any `json:"fields"`
}

// Error describes a failed batch.
type Error struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}
