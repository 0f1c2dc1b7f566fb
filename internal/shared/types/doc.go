// Package types provides shared data structures for the launcher.
//
// Core Types:
//   - AppIdentity: Cross-machine app identifier
//   - ManagedApp: Registry record with reference count
//   - AppDetail: Input of an add request
//   - ModifyAppSettings: Partial settings update
//   - Category, Event: Observer notifications
//
// Request Types:
//   - AddAppRequest, ModifyAppRequest: HTTP bodies
//   - WSMessage: Observer stream messages
//
// Example Usage:
//
//	app := types.ManagedApp{
//	    ID:             identity,
//	    Name:           "foo",
//	    LocalPath:      &path,
//	    ReferenceCount: 1,
//	}
package types
