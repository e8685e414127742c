package graphql

import (
	"errors"
	"fmt"

	"github.com/99designs/gqlgen/graphql"
	"github.com/tournevent/balikobot/pkg/shipper"
)

func addPackagesInputFromArg(v any) (AddPackagesInput, error) {
	var input AddPackagesInput

	fields, err := graphql.UnmarshalMap(v)
	if err != nil {
		return input, fmt.Errorf("input: %w", err)
	}

	if input.Carrier, err = graphql.UnmarshalString(fields["carrier"]); err != nil {
		return input, fmt.Errorf("input.carrier: %w", err)
	}
	if raw, ok := fields["version"]; ok && raw != nil {
		version, err := graphql.UnmarshalString(raw)
		if err != nil {
			return input, fmt.Errorf("input.version: %w", err)
		}
		input.Version = &version
	}

	packages, ok := fields["packages"].([]any)
	if !ok {
		return input, errors.New("input.packages: must be a list")
	}
	input.Packages = make([]map[string]any, len(packages))
	for i, p := range packages {
		if input.Packages[i], err = graphql.UnmarshalMap(p); err != nil {
			return input, fmt.Errorf("input.packages[%d]: %w", i, err)
		}
	}

	return input, nil
}

func addPackagesInputsFromArg(v any) ([]AddPackagesInput, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, errors.New("inputs: must be a list")
	}
	inputs := make([]AddPackagesInput, len(list))
	for i, item := range list {
		input, err := addPackagesInputFromArg(item)
		if err != nil {
			return nil, fmt.Errorf("inputs[%d]: %w", i, err)
		}
		inputs[i] = input
	}
	return inputs, nil
}

func inputToRequest(input AddPackagesInput) *shipper.AddPackagesRequest {
	req := &shipper.AddPackagesRequest{
		Carrier:  input.Carrier,
		Packages: make([]shipper.PackageRequest, len(input.Packages)),
	}
	if input.Version != nil {
		req.Version = *input.Version
	}
	for i, p := range input.Packages {
		req.Packages[i] = shipper.PackageRequest(p)
	}
	return req
}

func responseToGraphQL(requestID string, resp *shipper.AddPackagesResponse) *AddPackagesResult {
	result := &AddPackagesResult{
		RequestID: requestID,
		Carrier:   resp.Carrier,
		Success:   true,
		Packages:  make([]*PackageResult, len(resp.Packages)),
		Errors:    []*Error{},
	}
	if resp.HasLabelsURL {
		labelsURL := resp.LabelsURL
		result.LabelsURL = &labelsURL
	}
	for i, p := range resp.Packages {
		result.Packages[i] = packageResultToGraphQL(p)
	}
	return result
}

func packageResultToGraphQL(p shipper.PackageResult) *PackageResult {
	result := &PackageResult{Fields: map[string]any(p)}
	if result.Fields == nil {
		result.Fields = map[string]any{}
	}
	if v, ok := p.CarrierID(); ok {
		result.CarrierID = &v
	}
	if v, ok := p.PackageID(); ok {
		result.PackageID = &v
	}
	if v, ok := p.LabelURL(); ok {
		result.LabelURL = &v
	}
	if v, ok := p.Status(); ok {
		result.Status = &v
	}
	return result
}

func failedResult(requestID, carrier string, err error) *AddPackagesResult {
	return &AddPackagesResult{
		RequestID: requestID,
		Carrier:   carrier,
		Packages:  []*PackageResult{},
		Errors:    []*Error{errorToGraphQL(err)},
	}
}

func errorToGraphQL(err error) *Error {
	return &Error{
		Code:      errorCode(err),
		Message:   err.Error(),
		Retryable: shipper.IsRetryable(err),
	}
}

func errorCode(err error) string {
	if errors.Is(err, shipper.ErrCarrierNotFound) {
		return "carrier_not_found"
	}
	return shipper.ErrorCode(err)
}
