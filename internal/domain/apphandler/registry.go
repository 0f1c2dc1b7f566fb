package apphandler

import (
	"errors"
	"fmt"
	"math"

	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/utils"
)

// registry is the app store. It has no locking: only the controller
// goroutine touches it.
type registry struct {
	apps  map[types.AppIdentity]*types.ManagedApp
	order []types.AppIdentity // first-insertion order, for stable snapshots
}

func newRegistry(initial []types.ManagedApp) (*registry, error) {
	r := &registry{
		apps:  make(map[types.AppIdentity]*types.ManagedApp, len(initial)),
		order: make([]types.AppIdentity, 0, len(initial)),
	}

	for _, app := range initial {
		if app.ID == "" {
			return nil, errors.New("app with empty id")
		}
		if app.ReferenceCount == 0 {
			return nil, fmt.Errorf("app %s has reference count 0", app.ID)
		}
		if _, exists := r.apps[app.ID]; exists {
			return nil, fmt.Errorf("duplicate app %s", app.ID)
		}
		stored := app.Clone()
		r.apps[app.ID] = &stored
		r.order = append(r.order, app.ID)
	}

	return r, nil
}

func (r *registry) len() int {
	return len(r.apps)
}

func (r *registry) get(id types.AppIdentity) (*types.ManagedApp, bool) {
	app, ok := r.apps[id]
	return app, ok
}

// add creates the entry or takes one more reference on it. In both cases the
// local path becomes the path given on this machine.
func (r *registry) add(id types.AppIdentity, detail types.AppDetail) (types.ManagedApp, error) {
	path := detail.AbsolutePath

	if app, ok := r.apps[id]; ok {
		if app.ReferenceCount == math.MaxUint32 {
			return types.ManagedApp{}, fmt.Errorf("reference count of %s would overflow", id)
		}
		app.ReferenceCount++
		app.LocalPath = &path
		return app.Clone(), nil
	}

	app := &types.ManagedApp{
		ID:              id,
		Name:            utils.BinaryName(path),
		LocalPath:       &path,
		ReferenceCount:  1,
		SafeDriveAccess: detail.SafeDriveAccess,
	}
	r.apps[id] = app
	r.order = append(r.order, id)
	return app.Clone(), nil
}

// release drops one reference. The entry is deleted in the same step that
// brings its count to zero, so a zero count is never observable.
func (r *registry) release(id types.AppIdentity) (remaining *types.ManagedApp, present bool, found bool) {
	app, ok := r.apps[id]
	if !ok {
		return nil, false, false
	}
	if app.ReferenceCount == 0 {
		// A stored zero count means the registry is corrupt; continuing would
		// underflow and hand out garbage.
		panic(internal("remove", id, errors.New("registry invariant violated: stored reference count is 0")))
	}

	app.ReferenceCount--
	if app.ReferenceCount == 0 {
		delete(r.apps, id)
		r.dropOrder(id)
		return nil, false, true
	}

	clone := app.Clone()
	return &clone, true, true
}

// modify applies the set fields of m; the caller has validated them
func (r *registry) modify(app *types.ManagedApp, m types.ModifyAppSettings) types.ManagedApp {
	if m.Name != nil {
		app.Name = *m.Name
	}
	if m.LocalPath != nil {
		path := *m.LocalPath
		app.LocalPath = &path
	}
	if m.SafeDriveAccess != nil {
		app.SafeDriveAccess = *m.SafeDriveAccess
	}
	return app.Clone()
}

// snapshot returns deep copies in first-insertion order
func (r *registry) snapshot() []types.ManagedApp {
	apps := make([]types.ManagedApp, 0, len(r.order))
	for _, id := range r.order {
		apps = append(apps, r.apps[id].Clone())
	}
	return apps
}

func (r *registry) dropOrder(id types.AppIdentity) {
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}
