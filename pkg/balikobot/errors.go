package balikobot

import (
	"errors"
	"fmt"
	"net/http"
)

// Reason identifies why an add-package call was rejected.
// Reasons are errors themselves so callers can match them with errors.Is.
type Reason string

const (
	// ReasonTransportStatus: the HTTP status was not 200.
	ReasonTransportStatus Reason = "transport_status"
	// ReasonMissingStatus: the envelope carries no aggregate status.
	ReasonMissingStatus Reason = "missing_status"
	// ReasonStatus: the aggregate status was not 200.
	ReasonStatus Reason = "status"
	// ReasonPackageCount: the number of returned packages differs from the submitted batch.
	ReasonPackageCount Reason = "package_count"
	// ReasonMissingPackageData: a package entry is absent or lacks status or package_id.
	ReasonMissingPackageData Reason = "missing_package_data"
)

// Error implements the error interface.
func (r Reason) Error() string {
	return string(r)
}

// ErrBadRequest matches every BadRequestError.
var ErrBadRequest = errors.New("balikobot bad request")

// BadRequestError is returned when the API answer fails validation.
// No partial result accompanies it: one bad entry rejects the whole batch.
type BadRequestError struct {
	Reason     Reason
	Carrier    string
	StatusCode int // offending status (transport or aggregate)
	Index      int // package index, -1 when not package specific
	Got        int // returned package count, for ReasonPackageCount
	Want       int // submitted package count, for ReasonPackageCount
}

func newBadRequest(reason Reason, carrier string) *BadRequestError {
	return &BadRequestError{Reason: reason, Carrier: carrier, Index: -1}
}

// Error implements the error interface.
func (e *BadRequestError) Error() string {
	return fmt.Sprintf("balikobot %s add: %s", e.Carrier, e.Message())
}

// Message describes the failure without the carrier prefix.
func (e *BadRequestError) Message() string {
	switch e.Reason {
	case ReasonTransportStatus:
		return fmt.Sprintf("unexpected HTTP status %d", e.StatusCode)
	case ReasonMissingStatus:
		return "response is missing aggregate status"
	case ReasonStatus:
		return fmt.Sprintf("batch rejected with status %d", e.StatusCode)
	case ReasonPackageCount:
		return fmt.Sprintf("wrong number of packages returned: got %d, want %d", e.Got, e.Want)
	case ReasonMissingPackageData:
		return fmt.Sprintf("missing package result data at index %d", e.Index)
	default:
		return string(e.Reason)
	}
}

// Is matches ErrBadRequest and the error's own Reason.
func (e *BadRequestError) Is(target error) bool {
	if target == ErrBadRequest {
		return true
	}
	r, ok := target.(Reason)
	return ok && r == e.Reason
}

// Retryable reports whether repeating the same call may succeed.
func (e *BadRequestError) Retryable() bool {
	if e.Reason != ReasonTransportStatus {
		return false
	}
	return e.StatusCode >= http.StatusInternalServerError || e.StatusCode == http.StatusTooManyRequests
}
