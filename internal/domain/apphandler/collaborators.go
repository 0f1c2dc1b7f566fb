package apphandler

import (
	"context"

	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/types"
)

// ProcessLauncher starts an app binary. The controller calls it on a
// separate goroutine and never waits for the process to exit.
type ProcessLauncher interface {
	Spawn(ctx context.Context, path string) (pid int, err error)
}

// LauncherFunc adapts a function to ProcessLauncher
type LauncherFunc func(ctx context.Context, path string) (int, error)

// Spawn calls f
func (f LauncherFunc) Spawn(ctx context.Context, path string) (int, error) {
	return f(ctx, path)
}

// NetworkDirectory decides which identity an added binary has. Two adds
// resolving to the same identity share one registry entry.
type NetworkDirectory interface {
	ResolveIdentity(ctx context.Context, detail types.AppDetail) (types.AppIdentity, error)
}

// DirectoryFunc adapts a function to NetworkDirectory
type DirectoryFunc func(ctx context.Context, detail types.AppDetail) (types.AppIdentity, error)

// ResolveIdentity calls f
func (f DirectoryFunc) ResolveIdentity(ctx context.Context, detail types.AppDetail) (types.AppIdentity, error) {
	return f(ctx, detail)
}

// ConfigStore receives the registry after every committed mutation.
// Failures are logged and do not undo the mutation.
type ConfigStore interface {
	Persist(ctx context.Context, snapshot []types.ManagedApp) error
}

type nopStore struct{}

func (nopStore) Persist(context.Context, []types.ManagedApp) error { return nil }
