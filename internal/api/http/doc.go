// Package http exposes the app handler over a REST API built on Gin.
//
// Endpoints:
//   - Health: / and /health
//   - Apps: GET/POST /apps, GET/PATCH/DELETE /apps/:id
//   - Launch: POST /apps/:id/activate
//
// Controller error kinds map to status codes: invalid_input 400,
// not_found 404, already_terminated 503, internal 500.
//
// Example Usage:
//
//	handlers := http.NewHandlers(controller, version)
//	handlers.Register(router)
package http
