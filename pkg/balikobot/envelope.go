package balikobot

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/tournevent/balikobot/pkg/shipper"
)

const (
	keyStatus    = "status"
	keyLabelsURL = "labels_url"
)

// Envelope is the decoded body of an add-package answer.
// Nil pointers mean the field was absent.
type Envelope struct {
	Status    *int
	LabelsURL *string
	Entries   map[int]shipper.PackageResult
}

// DecodeEnvelope parses a response body. Bodies that are empty, not JSON or
// not a JSON object decode to an empty envelope; validation reports them.
func DecodeEnvelope(body []byte) *Envelope {
	env := &Envelope{Entries: make(map[int]shipper.PackageResult)}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return env
	}

	for key, value := range raw {
		switch key {
		case keyStatus:
			var v any
			if err := decodeValue(value, &v); err != nil || v == nil {
				continue
			}
			code, err := shipper.ParseStatus(v)
			if err != nil {
				code = 0
			}
			env.Status = &code
		case keyLabelsURL:
			var s string
			if err := json.Unmarshal(value, &s); err == nil {
				env.LabelsURL = &s
			}
		default:
			index, ok := packageIndex(key)
			if !ok {
				continue
			}
			var entry shipper.PackageResult
			if err := decodeValue(value, &entry); err != nil {
				entry = nil
			}
			env.Entries[index] = entry
		}
	}

	return env
}

// Validate checks the envelope against a batch of want packages.
func (e *Envelope) Validate(carrier string, want int) error {
	if e.Status == nil {
		return newBadRequest(ReasonMissingStatus, carrier)
	}
	if *e.Status != http.StatusOK {
		err := newBadRequest(ReasonStatus, carrier)
		err.StatusCode = *e.Status
		return err
	}
	if len(e.Entries) != want {
		err := newBadRequest(ReasonPackageCount, carrier)
		err.Got = len(e.Entries)
		err.Want = want
		return err
	}

	for i := 0; i < want; i++ {
		entry, ok := e.Entries[i]
		if !ok || !entry.HasField(shipper.FieldStatus) {
			err := newBadRequest(ReasonMissingPackageData, carrier)
			err.Index = i
			return err
		}
		if _, ok := entry.PackageID(); !ok {
			err := newBadRequest(ReasonMissingPackageData, carrier)
			err.Index = i
			return err
		}
	}

	return nil
}

// Packages returns entries 0..n-1 in order. Call it after Validate.
func (e *Envelope) Packages(n int) []shipper.PackageResult {
	results := make([]shipper.PackageResult, n)
	for i := 0; i < n; i++ {
		results[i] = e.Entries[i]
	}
	return results
}

func decodeValue(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// packageIndex accepts canonical non-negative integers only ("0", "12", not "01").
func packageIndex(key string) (int, bool) {
	n, err := strconv.Atoi(key)
	if err != nil || n < 0 || strconv.Itoa(n) != key {
		return 0, false
	}
	return n, true
}
