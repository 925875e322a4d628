// Package common contains shared constants, sentinel errors and small helpers
// used by the escrow server and client.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the access
// token on outbound requests.
const AccessTokenHeaderName = "access_token"

// EvidenceScheme prefixes evidence URIs that point into the evidence bucket.
const EvidenceScheme = "s3://"
