package balikobot

import "strings"

// DefaultBaseURL is the production Balikobot API host.
const DefaultBaseURL = "https://apiv2.balikobot.cz"

// Version selects the API flavour for a carrier.
type Version string

const (
	VersionDefault Version = ""
	V2             Version = "v2"
)

const actionAdd = "add"

// EndpointURL returns the add-package URL for a carrier.
//
// Only V2 gets a version segment. Any other value, including versions the
// API does not know such as "v4", silently falls back to the unversioned
// endpoint.
func EndpointURL(baseURL, carrier string, version Version) string {
	return endpointURL(baseURL, carrier, version, actionAdd)
}

func endpointURL(baseURL, carrier string, version Version, action string) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if version == V2 {
		return base + "/" + string(V2) + "/" + carrier + "/" + action
	}
	return base + "/" + carrier + "/" + action
}
