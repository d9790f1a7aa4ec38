// Package httpapi carries verification lookups over HTTP.
//
// Client is a verify.Authority that asks a remote service; Server answers the
// same endpoint from a local authority. Both speak one request shape:
//
//	POST /api/verify
//	{"digest":"<64 lowercase hex>"}
//
// A 2xx response body is a model.Result. Any other status carries a
// model.CodedError whose "error" field is the message shown to users.
package httpapi

const (
	// VerifyPath is the lookup endpoint.
	VerifyPath = "/api/verify"
	// HealthPath answers 200 while the server is up.
	HealthPath = "/healthz"

	// HeaderRequestID correlates client and server logs.
	HeaderRequestID = "X-Request-ID"

	maxBodyBytes = 1 << 20
)
