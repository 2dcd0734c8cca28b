// Package reqctx carries request-scoped values through context.Context:
// request metadata set by the HTTP middleware and, for authenticated
// requests, the caller's principal.
//
// Keys are unexported; use the With*/*FromContext helpers.
package reqctx
