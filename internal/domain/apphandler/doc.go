// Package apphandler owns the set of apps installed on this machine.
//
// A Controller runs one goroutine that executes queued commands in order:
// add, remove, activate, modify settings and observer registration. Apps
// are reference counted by identity, so the same app added from several
// places shares one record until its last reference is removed. Observers
// registered per category are told about every change, in registration
// order, each bounded by a timeout and its own circuit breaker.
//
// Identity policy, process launching and persistence are injected through
// NetworkDirectory, ProcessLauncher and ConfigStore.
package apphandler
