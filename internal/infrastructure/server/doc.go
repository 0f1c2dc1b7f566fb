// Package server assembles the launcher: it loads the registry from the
// config store, builds the app handler with its directory, launcher and
// store, and exposes it over REST, a WebSocket event stream, Prometheus
// metrics and a gRPC health service.
package server
