package apphandler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/launcher/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/utils"
)

const (
	DefaultCommandBuffer = 64
	DefaultNotifyTimeout = 2 * time.Second
)

// Options configures a Controller
type Options struct {
	Directory NetworkDirectory // required
	Launcher  ProcessLauncher  // required
	Store     ConfigStore
	Logger    *logging.Logger
	Metrics   *monitoring.Metrics

	CommandBuffer   int
	NotifyTimeout   time.Duration
	ObserverBreaker *resilience.Settings

	// Initial seeds the registry, typically from the config store
	Initial []types.ManagedApp

	// Now overrides event timestamps in tests
	Now func() time.Time
}

// Controller is the only owner of the app registry and the observer lists.
// Commands from any number of goroutines are queued and executed one at a
// time by Run, so the registries need no locks.
type Controller struct {
	commands chan Command
	done     chan struct{} // closed when Run stops accepting commands
	stopped  chan struct{} // closed when Run has returned and drained the queue

	mu     sync.RWMutex
	closed bool

	running atomic.Bool

	// Owned by the Run goroutine
	registry   *registry
	observers  *observerRegistry
	dispatcher *dispatcher
	seq        uint64
	processed  uint64

	directory NetworkDirectory
	launcher  ProcessLauncher
	launches  *resilience.Breaker
	store     ConfigStore
	logger    *logging.Logger
	metrics   *monitoring.Metrics
	now       func() time.Time

	spawns sync.WaitGroup
}

// New creates a controller. It does nothing until Run is called.
func New(opts Options) (*Controller, error) {
	if opts.Directory == nil {
		return nil, invalidInput("new", errors.New("network directory is required"))
	}
	if opts.Launcher == nil {
		return nil, invalidInput("new", errors.New("process launcher is required"))
	}

	reg, err := newRegistry(opts.Initial)
	if err != nil {
		return nil, invalidInput("new", fmt.Errorf("initial registry: %w", err))
	}

	if opts.Store == nil {
		opts.Store = nopStore{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = monitoring.NewMetrics()
	}
	if opts.CommandBuffer <= 0 {
		opts.CommandBuffer = DefaultCommandBuffer
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = DefaultNotifyTimeout
	}
	breaker := DefaultObserverBreaker()
	if opts.ObserverBreaker != nil {
		breaker = *opts.ObserverBreaker
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	c := &Controller{
		commands:  make(chan Command, opts.CommandBuffer),
		done:      make(chan struct{}),
		stopped:   make(chan struct{}),
		registry:  reg,
		observers: newObserverRegistry(breaker),
		directory: opts.Directory,
		launcher:  opts.Launcher,
		launches:  resilience.New("launcher", DefaultLauncherBreaker()),
		store:     opts.Store,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		now:       opts.Now,
	}
	c.dispatcher = &dispatcher{
		timeout: opts.NotifyTimeout,
		logger:  c.logger,
		metrics: c.metrics,
	}
	c.metrics.SetManagedApps(reg.len())

	return c, nil
}

// Submit queues a command. It blocks only while the queue is full, and
// returns an AlreadyTerminated error (also delivered to the command's
// reply) once the controller has stopped.
func (c *Controller) Submit(ctx context.Context, cmd Command) error {
	if cmd == nil {
		return invalidInput("submit", errors.New("nil command"))
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		err := terminated(cmd.kind())
		cmd.reject(err)
		return err
	}

	select {
	case c.commands <- cmd:
		return nil
	case <-c.done:
		err := terminated(cmd.kind())
		cmd.reject(err)
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed after the controller has stopped and rejected every
// command left in its queue
func (c *Controller) Done() <-chan struct{} {
	return c.stopped
}

// Run executes commands until a Terminate command is processed or ctx is
// cancelled. It must be called once.
func (c *Controller) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return errors.New("apphandler: controller already started")
	}
	defer c.shutdown()

	c.logger.Info("App handler started", zap.Int("managed_apps", c.registry.len()))

	// Commands run to completion even if ctx is cancelled mid-way
	work := context.WithoutCancel(ctx)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("App handler context cancelled, terminating")
			return ctx.Err()
		case cmd := <-c.commands:
			if c.handle(work, cmd) {
				c.logger.Info("App handler terminated", zap.Uint64("commands_processed", c.processed))
				return nil
			}
		}
	}
}

// WaitSpawns blocks until every launched spawn call has returned
func (c *Controller) WaitSpawns() {
	c.spawns.Wait()
}

func (c *Controller) shutdown() {
	close(c.done)

	// Producers blocked in Submit see done and release the read lock
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	rejected := 0
	for {
		select {
		case cmd := <-c.commands:
			cmd.reject(terminated(cmd.kind()))
			rejected++
		default:
			if rejected > 0 {
				c.logger.Info("Rejected commands queued after terminate", zap.Int("count", rejected))
			}
			close(c.stopped)
			return
		}
	}
}

// handle executes one command and reports whether the loop must stop
func (c *Controller) handle(ctx context.Context, cmd Command) (stop bool) {
	timer := monitoring.NewTimer(c.metrics, cmd.kind())
	c.processed++

	defer func() {
		if r := recover(); r != nil {
			// Invariant violation: leave the caller a cancellation, not a hang,
			// then crash loudly.
			cmd.cancel()
			timer.Stop(KindInternal.String())
			c.logger.Error("App handler invariant violated", zap.Any("panic", r))
			panic(r)
		}
	}()

	var err error
	switch cmd := cmd.(type) {
	case AddApp:
		err = c.addApp(ctx, cmd)
	case RemoveApp:
		err = c.removeApp(ctx, cmd)
	case ActivateApp:
		err = c.activateApp(ctx, cmd)
	case ModifyAppSettings:
		err = c.modifyApp(ctx, cmd)
	case RegisterObserver:
		err = c.registerObserver(cmd)
	case GetAllManagedApps:
		cmd.Reply.Send(c.registry.snapshot())
	case GetApp:
		err = c.getApp(cmd)
	case GetStats:
		cmd.Reply.Send(c.stats())
	case Terminate:
		timer.Stop(status(nil))
		return true
	default:
		err = internal("handle", "", fmt.Errorf("unknown command %T", cmd))
		cmd.reject(err)
	}

	timer.Stop(status(err))
	if err != nil {
		c.logger.Warn("Command rejected", zap.String("command", cmd.kind()), zap.Error(err))
	}
	return false
}

func (c *Controller) addApp(ctx context.Context, cmd AddApp) error {
	const op = "add"

	if err := utils.ValidateAbsolutePath(cmd.Detail.AbsolutePath, "absolute_path"); err != nil {
		return c.fail(cmd, invalidInput(op, err))
	}

	identity, err := c.directory.ResolveIdentity(ctx, cmd.Detail)
	if err != nil {
		return c.fail(cmd, internal(op, "", fmt.Errorf("resolve identity: %w", err)))
	}
	if identity == "" {
		return c.fail(cmd, internal(op, "", errors.New("network directory returned an empty identity")))
	}

	app, err := c.registry.add(identity, cmd.Detail)
	if err != nil {
		return c.fail(cmd, internal(op, identity, err))
	}

	c.logger.Info("App added",
		zap.String("app_id", identity.String()),
		zap.String("path", cmd.Detail.AbsolutePath),
		zap.Uint32("reference_count", app.ReferenceCount),
	)
	c.commit(ctx)
	c.notify(ctx, types.CategoryAdded, identity, &app, true)
	cmd.Reply.Send(app)
	return nil
}

func (c *Controller) removeApp(ctx context.Context, cmd RemoveApp) error {
	const op = "remove"

	remaining, present, found := c.registry.release(cmd.ID)
	if !found {
		return c.fail(cmd, notFound(op, cmd.ID))
	}

	c.logger.Info("App reference removed",
		zap.String("app_id", cmd.ID.String()),
		zap.Bool("present", present),
	)
	c.commit(ctx)
	c.notify(ctx, types.CategoryRemoved, cmd.ID, remaining, present)
	cmd.Reply.Send(RemoveResult{ID: cmd.ID, Present: present, App: remaining})
	return nil
}

func (c *Controller) activateApp(ctx context.Context, cmd ActivateApp) error {
	const op = "activate"

	app, ok := c.registry.get(cmd.ID)
	if !ok {
		return c.fail(cmd, notFound(op, cmd.ID))
	}
	if app.LocalPath == nil {
		return c.fail(cmd, &Error{
			Kind: KindInvalidInput,
			Op:   op,
			ID:   cmd.ID,
			Err:  errors.New("app is not added on this machine"),
		})
	}

	c.spawn(ctx, cmd.ID, *app.LocalPath)

	snapshot := app.Clone()
	c.notify(ctx, types.CategoryActivated, cmd.ID, &snapshot, true)
	cmd.Reply.Send(snapshot)
	return nil
}

func (c *Controller) modifyApp(ctx context.Context, cmd ModifyAppSettings) error {
	const op = "modify"
	m := cmd.Settings

	app, ok := c.registry.get(m.ID)
	if !ok {
		return c.fail(cmd, notFound(op, m.ID))
	}
	if m.Name != nil {
		if err := utils.ValidateName(*m.Name, "name"); err != nil {
			return c.fail(cmd, invalidInput(op, err))
		}
	}
	if m.LocalPath != nil {
		if err := utils.ValidateAbsolutePath(*m.LocalPath, "local_path"); err != nil {
			return c.fail(cmd, invalidInput(op, err))
		}
	}

	updated := c.registry.modify(app, m)
	if !m.IsEmpty() {
		c.logger.Info("App settings modified", zap.String("app_id", m.ID.String()))
		c.commit(ctx)
	}
	c.notify(ctx, types.CategoryModified, m.ID, &updated, true)
	cmd.Reply.Send(updated)
	return nil
}

func (c *Controller) registerObserver(cmd RegisterObserver) error {
	const op = "register_observer"

	if !cmd.Category.Valid() {
		return c.fail(cmd, invalidInput(op, fmt.Errorf("unknown category %q", cmd.Category)))
	}
	if cmd.Observer == nil {
		return c.fail(cmd, invalidInput(op, errors.New("nil observer")))
	}

	h := c.observers.register(cmd.Category, cmd.Observer)
	c.metrics.SetObservers(string(cmd.Category), len(c.observers.handles(cmd.Category)))
	c.logger.Debug("Observer registered",
		zap.String("handle", h.id.String()),
		zap.String("category", string(cmd.Category)),
	)
	cmd.Reply.Send(h.id)
	return nil
}

func (c *Controller) getApp(cmd GetApp) error {
	app, ok := c.registry.get(cmd.ID)
	if !ok {
		return c.fail(cmd, notFound("get", cmd.ID))
	}
	cmd.Reply.Send(app.Clone())
	return nil
}

func (c *Controller) stats() types.Stats {
	return types.Stats{
		ManagedApps:       c.registry.len(),
		Observers:         c.observers.counts(),
		CommandsProcessed: c.processed,
		Running:           true,
	}
}

// spawn hands the path to the launcher without waiting for it
func (c *Controller) spawn(ctx context.Context, appID types.AppIdentity, path string) {
	c.spawns.Add(1)
	go func() {
		defer c.spawns.Done()
		defer func() {
			if r := recover(); r != nil {
				c.metrics.RecordSpawn("failed")
				c.logger.Error("App launcher panicked", zap.String("app_id", appID.String()), zap.Any("panic", r))
			}
		}()

		pid, err := resilience.Call(c.launches, func() (int, error) {
			return c.launcher.Spawn(ctx, path)
		})
		if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, resilience.ErrTooManyRequests) {
			c.metrics.RecordSpawn("skipped")
			c.logger.Warn("App launch skipped, launcher is failing",
				zap.String("app_id", appID.String()),
				zap.Error(err),
			)
			return
		}
		if err != nil {
			c.metrics.RecordSpawn("failed")
			c.logger.Warn("App launch failed",
				zap.String("app_id", appID.String()),
				zap.String("path", path),
				zap.Error(err),
			)
			return
		}
		c.metrics.RecordSpawn("ok")
		c.logger.Info("App launched",
			zap.String("app_id", appID.String()),
			zap.Int("pid", pid),
		)
	}()
}

// commit runs after every registry mutation
func (c *Controller) commit(ctx context.Context) {
	c.metrics.SetManagedApps(c.registry.len())
	if err := c.store.Persist(ctx, c.registry.snapshot()); err != nil {
		c.metrics.IncPersistFailures()
		c.logger.Warn("Failed to persist registry", zap.Error(err))
	}
}

func (c *Controller) notify(ctx context.Context, category types.Category, appID types.AppIdentity, app *types.ManagedApp, present bool) {
	c.seq++
	c.dispatcher.dispatch(ctx, c.observers.handles(category), types.Event{
		Seq:       c.seq,
		Category:  category,
		AppID:     appID,
		App:       app,
		Present:   present,
		Timestamp: c.now(),
	})
}

func (c *Controller) fail(cmd Command, err *Error) error {
	cmd.reject(err)
	return err
}
