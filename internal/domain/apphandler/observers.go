package apphandler

import (
	"context"
	"time"

	"github.com/GriffinCanCode/AgentOS/launcher/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/types"
)

// Observer is anything that can be told about an event. How the event
// travels (in-process call, queue, network hop) is up to the implementation.
type Observer interface {
	Notify(ctx context.Context, event types.Event) error
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(ctx context.Context, event types.Event) error

// Notify calls f
func (f ObserverFunc) Notify(ctx context.Context, event types.Event) error {
	return f(ctx, event)
}

// DefaultObserverBreaker trips after three consecutive failed deliveries and
// retries the handle after thirty seconds.
func DefaultObserverBreaker() resilience.Settings {
	return resilience.Settings{
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	}
}

// DefaultLauncherBreaker stops calling a launcher that failed five times in a
// row for ten seconds.
func DefaultLauncherBreaker() resilience.Settings {
	return resilience.Settings{
		MaxRequests: 1,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
}

type handle struct {
	id       id.HandleID
	category types.Category
	observer Observer
	breaker  *resilience.Breaker
}

// observerRegistry keeps one ordered list per category. Only the controller
// goroutine touches it.
type observerRegistry struct {
	lists    map[types.Category][]*handle
	settings resilience.Settings
}

func newObserverRegistry(settings resilience.Settings) *observerRegistry {
	return &observerRegistry{
		lists:    make(map[types.Category][]*handle, len(types.Categories())),
		settings: settings,
	}
}

// register appends without a uniqueness check: registering the same observer
// twice makes it fire twice.
func (o *observerRegistry) register(category types.Category, observer Observer) *handle {
	h := &handle{
		id:       id.NewHandleID(),
		category: category,
		observer: observer,
	}
	h.breaker = resilience.New(h.id.String(), o.settings)
	o.lists[category] = append(o.lists[category], h)
	return h
}

func (o *observerRegistry) handles(category types.Category) []*handle {
	return o.lists[category]
}

func (o *observerRegistry) counts() map[types.Category]int {
	counts := make(map[types.Category]int, len(types.Categories()))
	for _, c := range types.Categories() {
		counts[c] = len(o.lists[c])
	}
	return counts
}
