package apphandler

import (
	"context"

	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/types"
)

// submitAndWait queues a command and waits for its reply
func submitAndWait[T any](ctx context.Context, c *Controller, cmd Command, reply *Reply[T]) (T, error) {
	if err := c.Submit(ctx, cmd); err != nil {
		var zero T
		return zero, err
	}
	return reply.Wait(ctx)
}

// Add adds an app and returns its record after observers have been told
func (c *Controller) Add(ctx context.Context, detail types.AppDetail) (types.ManagedApp, error) {
	reply := NewReply[types.ManagedApp]()
	return submitAndWait(ctx, c, AddApp{Detail: detail, Reply: reply}, reply)
}

// Remove drops one reference to an app
func (c *Controller) Remove(ctx context.Context, appID types.AppIdentity) (RemoveResult, error) {
	reply := NewReply[RemoveResult]()
	return submitAndWait(ctx, c, RemoveApp{ID: appID, Reply: reply}, reply)
}

// Activate asks the launcher to start an app. It returns once the launch has
// been handed off, not when the process starts.
func (c *Controller) Activate(ctx context.Context, appID types.AppIdentity) (types.ManagedApp, error) {
	reply := NewReply[types.ManagedApp]()
	return submitAndWait(ctx, c, ActivateApp{ID: appID, Reply: reply}, reply)
}

// ModifySettings applies a partial update
func (c *Controller) ModifySettings(ctx context.Context, settings types.ModifyAppSettings) (types.ManagedApp, error) {
	reply := NewReply[types.ManagedApp]()
	return submitAndWait(ctx, c, ModifyAppSettings{Settings: settings, Reply: reply}, reply)
}

// RegisterObserver appends o to the category's list
func (c *Controller) RegisterObserver(ctx context.Context, category types.Category, o Observer) (id.HandleID, error) {
	reply := NewReply[id.HandleID]()
	return submitAndWait(ctx, c, RegisterObserver{Category: category, Observer: o, Reply: reply}, reply)
}

// GetAllManagedApps returns a snapshot of every managed app
func (c *Controller) GetAllManagedApps(ctx context.Context) ([]types.ManagedApp, error) {
	reply := NewReply[[]types.ManagedApp]()
	return submitAndWait(ctx, c, GetAllManagedApps{Reply: reply}, reply)
}

// GetApp returns one managed app
func (c *Controller) GetApp(ctx context.Context, appID types.AppIdentity) (types.ManagedApp, error) {
	reply := NewReply[types.ManagedApp]()
	return submitAndWait(ctx, c, GetApp{ID: appID, Reply: reply}, reply)
}

// Stats returns controller counters
func (c *Controller) Stats(ctx context.Context) (types.Stats, error) {
	reply := NewReply[types.Stats]()
	return submitAndWait(ctx, c, GetStats{Reply: reply}, reply)
}

// Terminate stops the controller and waits until it has drained its queue.
// Calling it on a stopped controller returns an AlreadyTerminated error.
func (c *Controller) Terminate(ctx context.Context) error {
	if err := c.Submit(ctx, Terminate{}); err != nil {
		return err
	}
	select {
	case <-c.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
