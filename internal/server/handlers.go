package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tournevent/balikobot/internal/graphql"
	"github.com/tournevent/balikobot/pkg/shipper"
	"go.uber.org/zap"
)

type addPackagesResponse struct {
	RequestID string                  `json:"request_id"`
	Carrier   string                  `json:"carrier"`
	Packages  []shipper.PackageResult `json:"packages"`
	LabelsURL *string                 `json:"labels_url,omitempty"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// handleAddPackages accepts a JSON array of package objects for the carrier
// named in the path. The optional version query parameter selects the API
// version.
func (s *Server) handleAddPackages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	carrier := chi.URLParam(r, "carrier")
	start := time.Now()

	var packages []shipper.PackageRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&packages); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error: errorDetail{Code: "invalid_json", Message: "invalid JSON: " + err.Error()},
		})
		return
	}

	resp, err := s.registry.AddPackages(ctx, &shipper.AddPackagesRequest{
		Carrier:  carrier,
		Version:  r.URL.Query().Get("version"),
		Packages: packages,
	})
	duration := time.Since(start).Seconds()
	if err != nil {
		code := errorCode(err)
		s.metrics.RecordRequest("rest_add_packages", carrier, "error", duration)
		s.metrics.RecordError(carrier, code)
		s.logger.Ctx(ctx).Warn("Add packages failed",
			zap.String("request_id", RequestID(ctx)),
			zap.String("carrier", carrier),
			zap.Error(err),
		)
		writeJSON(w, statusForError(err), errorBody{
			Error: errorDetail{Code: code, Message: err.Error(), Retryable: shipper.IsRetryable(err)},
		})
		return
	}

	s.metrics.RecordRequest("rest_add_packages", carrier, "success", duration)
	s.metrics.RecordPackages(carrier, len(resp.Packages))

	body := addPackagesResponse{
		RequestID: RequestID(ctx),
		Carrier:   resp.Carrier,
		Packages:  resp.Packages,
	}
	if resp.HasLabelsURL {
		body.LabelsURL = &resp.LabelsURL
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	var req graphql.Request
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"errors": []map[string]string{{"message": "Invalid JSON: " + err.Error()}},
		})
		return
	}

	writeJSON(w, http.StatusOK, s.resolver.Execute(r.Context(), req))
}

func errorCode(err error) string {
	if errors.Is(err, shipper.ErrCarrierNotFound) {
		return "carrier_not_found"
	}
	return shipper.ErrorCode(err)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, shipper.ErrCarrierNotFound):
		return http.StatusNotFound
	case errors.Is(err, shipper.ErrInvalidPackage):
		return http.StatusBadRequest
	case shipper.IsRetryable(err):
		return http.StatusServiceUnavailable
	}
	var shipperErr *shipper.ShipperError
	if errors.As(err, &shipperErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
