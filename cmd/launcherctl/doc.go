// Package main is launcherctl, a command line client for the launcher API.
//
// Usage:
//
//	launcherctl add /usr/bin/editor
//	launcherctl list
//	launcherctl modify app-3f2a9c01d4e5b6a7 -name Editor -safe=true
//	launcherctl activate app-3f2a9c01d4e5b6a7
//	launcherctl health -grpc localhost:50061
//
// The base URL defaults to $LAUNCHER_ADDR or http://localhost:8000.
package main
