// Package constants holds the small set of HTTP-related literals shared
// across the delegator's packages.
package constants

// HTTP methods used in service registry entries and test fixtures.
const (
	HTTPMethodGET    = "GET"
	HTTPMethodPOST   = "POST"
	HTTPMethodPUT    = "PUT"
	HTTPMethodPATCH  = "PATCH"
	HTTPMethodDELETE = "DELETE"
)

// Content types the server and invoker set on requests/responses.
const (
	ContentTypeJSON = "application/json"
	ContentTypeText = "text/plain"
)

// Header names read or written by the server and invoker.
const (
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderAccept        = "Accept"
	HeaderRequestID     = "X-Request-Id"
)
