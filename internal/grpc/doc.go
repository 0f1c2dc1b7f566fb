// Package grpc serves the standard gRPC health protocol for the app handler.
//
// The service agentos.launcher.AppHandler reports SERVING while the
// controller accepts commands and NOT_SERVING once it has terminated, so
// supervisors can probe the launcher without speaking its REST API.
//
// Example Usage:
//
//	hs := grpc.NewHealthServer(logger)
//	hs.Track(controller.Done())
//	go hs.ListenAndServe("localhost:50061")
//
//	status, err := grpc.Check(ctx, "localhost:50061")
package grpc
