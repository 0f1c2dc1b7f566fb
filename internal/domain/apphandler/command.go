package apphandler

import (
	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/types"
)

// Command is one request to the controller. The set is closed: only the
// types in this file implement it.
type Command interface {
	kind() string
	// reject answers the command's reply, if any, without executing it
	reject(err error)
	// cancel closes the command's reply without a value
	cancel()
}

// RemoveResult reports whether the entry survived a remove
type RemoveResult struct {
	ID      types.AppIdentity
	Present bool
	// App is the remaining record when Present
	App *types.ManagedApp
}

// AddApp adds an app on this machine. Reply is optional.
type AddApp struct {
	Detail types.AppDetail
	Reply  *Reply[types.ManagedApp]
}

// RemoveApp drops one reference to an app. Reply is optional.
type RemoveApp struct {
	ID    types.AppIdentity
	Reply *Reply[RemoveResult]
}

// ActivateApp starts an app without waiting for the process. Reply is optional.
type ActivateApp struct {
	ID    types.AppIdentity
	Reply *Reply[types.ManagedApp]
}

// ModifyAppSettings applies a partial update. Reply is optional.
type ModifyAppSettings struct {
	Settings types.ModifyAppSettings
	Reply    *Reply[types.ManagedApp]
}

// RegisterObserver appends an observer to one category. Reply is optional.
type RegisterObserver struct {
	Category types.Category
	Observer Observer
	Reply    *Reply[id.HandleID]
}

// GetAllManagedApps asks for a snapshot of the registry
type GetAllManagedApps struct {
	Reply *Reply[[]types.ManagedApp]
}

// GetApp asks for one record
type GetApp struct {
	ID    types.AppIdentity
	Reply *Reply[types.ManagedApp]
}

// GetStats asks for controller counters
type GetStats struct {
	Reply *Reply[types.Stats]
}

// Terminate stops the controller after the current command
type Terminate struct{}

// RegisterAddObserver registers for "added" events
func RegisterAddObserver(o Observer) RegisterObserver {
	return RegisterObserver{Category: types.CategoryAdded, Observer: o}
}

// RegisterRemoveObserver registers for "removed" events
func RegisterRemoveObserver(o Observer) RegisterObserver {
	return RegisterObserver{Category: types.CategoryRemoved, Observer: o}
}

// RegisterActivateObserver registers for "activated" events. An event means
// the launch was attempted; the process may still fail afterwards.
func RegisterActivateObserver(o Observer) RegisterObserver {
	return RegisterObserver{Category: types.CategoryActivated, Observer: o}
}

// RegisterModifyObserver registers for "modified" events
func RegisterModifyObserver(o Observer) RegisterObserver {
	return RegisterObserver{Category: types.CategoryModified, Observer: o}
}

func (AddApp) kind() string            { return "add" }
func (RemoveApp) kind() string         { return "remove" }
func (ActivateApp) kind() string       { return "activate" }
func (ModifyAppSettings) kind() string { return "modify" }
func (RegisterObserver) kind() string  { return "register_observer" }
func (GetAllManagedApps) kind() string { return "get_all" }
func (GetApp) kind() string            { return "get" }
func (GetStats) kind() string          { return "stats" }
func (Terminate) kind() string         { return "terminate" }

func (c AddApp) reject(err error)            { c.Reply.Fail(err) }
func (c RemoveApp) reject(err error)         { c.Reply.Fail(err) }
func (c ActivateApp) reject(err error)       { c.Reply.Fail(err) }
func (c ModifyAppSettings) reject(err error) { c.Reply.Fail(err) }
func (c RegisterObserver) reject(err error)  { c.Reply.Fail(err) }
func (c GetAllManagedApps) reject(err error) { c.Reply.Fail(err) }
func (c GetApp) reject(err error)            { c.Reply.Fail(err) }
func (c GetStats) reject(err error)          { c.Reply.Fail(err) }
func (Terminate) reject(error)               {}

func (c AddApp) cancel()            { c.Reply.Close() }
func (c RemoveApp) cancel()         { c.Reply.Close() }
func (c ActivateApp) cancel()       { c.Reply.Close() }
func (c ModifyAppSettings) cancel() { c.Reply.Close() }
func (c RegisterObserver) cancel()  { c.Reply.Close() }
func (c GetAllManagedApps) cancel() { c.Reply.Close() }
func (c GetApp) cancel()            { c.Reply.Close() }
func (c GetStats) cancel()          { c.Reply.Close() }
func (Terminate) cancel()           {}
