// Package middleware holds the gin middleware shared by the launcher API:
// CORS, per-client rate limiting, request ids and access logging.
package middleware
