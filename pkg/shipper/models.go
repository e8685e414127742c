package shipper

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Result field names shared by every carrier.
const (
	FieldCarrierID = "carrier_id"
	FieldPackageID = "package_id"
	FieldLabelURL  = "label_url"
	FieldStatus    = "status"
)

// PackageRequest holds the carrier-specific fields of one package.
// The client never inspects it; it is forwarded as-is.
type PackageRequest map[string]any

// PackageResult is the per-package record returned by the carrier.
// Carrier-specific fields are kept untouched next to the common ones.
type PackageResult map[string]any

// CarrierID returns the carrier tracking identifier, if present.
func (r PackageResult) CarrierID() (string, bool) {
	return r.stringField(FieldCarrierID)
}

// PackageID returns the aggregator package identifier, if present.
func (r PackageResult) PackageID() (string, bool) {
	return r.stringField(FieldPackageID)
}

// LabelURL returns the label URL of this package, if present.
func (r PackageResult) LabelURL() (string, bool) {
	return r.stringField(FieldLabelURL)
}

// Status returns the package status code. Both numeric and string
// encodings ("200" and 200) are accepted.
func (r PackageResult) Status() (int, bool) {
	v, ok := r[FieldStatus]
	if !ok {
		return 0, false
	}
	code, err := ParseStatus(v)
	if err != nil {
		return 0, true
	}
	return code, true
}

// HasField reports whether the given key is present, whatever its value.
func (r PackageResult) HasField(key string) bool {
	_, ok := r[key]
	return ok
}

func (r PackageResult) stringField(key string) (string, bool) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case json.Number:
		return s.String(), true
	default:
		return fmt.Sprint(s), true
	}
}

// ParseStatus converts a decoded status value into an integer code.
// Integral decimals such as 200.0 are accepted.
func ParseStatus(v any) (int, error) {
	switch s := v.(type) {
	case int:
		return s, nil
	case int64:
		return int(s), nil
	case float64:
		return integralStatus(s)
	case json.Number:
		if n, err := s.Int64(); err == nil {
			return int(n), nil
		}
		f, err := s.Float64()
		if err != nil {
			return 0, fmt.Errorf("status %q is not an integer: %w", s, err)
		}
		return integralStatus(f)
	case string:
		if n, err := strconv.Atoi(s); err == nil {
			return n, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("status %q is not an integer: %w", s, err)
		}
		return integralStatus(f)
	default:
		return 0, fmt.Errorf("unsupported status type %T", v)
	}
}

func integralStatus(f float64) (int, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("status %v is not an integer", f)
	}
	return int(f), nil
}

// ============================================================================
// Request/Response Types
// ============================================================================

// AddPackagesRequest is the request for submitting a batch of packages.
type AddPackagesRequest struct {
	Carrier  string // carrier code, e.g. "cp"
	Version  string // API version; empty selects the carrier default
	Packages []PackageRequest
}

// AddPackagesResponse is the response from submitting a batch of packages.
type AddPackagesResponse struct {
	Carrier      string
	Packages     []PackageResult // same order as the request
	LabelsURL    string          // combined label archive, when HasLabelsURL
	HasLabelsURL bool
}
