// Package main is the entry point for the AgentOS launcher.
//
// The launcher keeps the set of apps installed on this machine, shared by
// identity with every other machine of the same account, and starts them on
// request.
//
// The server provides:
//   - REST API for adding, removing, modifying and activating apps
//   - WebSocket stream of registry events
//   - Prometheus metrics on /metrics
//   - gRPC health service
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	./launcher -port 8000 -store ~/.agentos/apps.yaml -account alice
//
//	# Development mode (colored logs, debug level, event log)
//	./launcher -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
