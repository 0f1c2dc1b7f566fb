package ws

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/launcher/internal/domain/apphandler"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/id"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/types"
)

// Registrar is the part of the controller the hub needs
type Registrar interface {
	RegisterObserver(ctx context.Context, category types.Category, o apphandler.Observer) (id.HandleID, error)
}

// Hub is registered once per category with the controller and fans each
// event out to the connected streams. Controller observers cannot be
// removed, so connections come and go here instead.
type Hub struct {
	logger  *logging.Logger
	metrics *monitoring.Metrics
	buffer  int

	mu      sync.RWMutex
	clients map[id.ConnID]*client
}

// NewHub creates a hub. buffer is the per-connection event backlog.
func NewHub(logger *logging.Logger, metrics *monitoring.Metrics, buffer int) *Hub {
	if logger == nil {
		logger = logging.NewNop()
	}
	if buffer < 1 {
		buffer = 64
	}
	return &Hub{
		logger:  logger,
		metrics: metrics,
		buffer:  buffer,
		clients: make(map[id.ConnID]*client),
	}
}

// Attach registers the hub for every category
func (h *Hub) Attach(ctx context.Context, r Registrar) error {
	for _, category := range types.Categories() {
		if _, err := r.RegisterObserver(ctx, category, h); err != nil {
			return err
		}
	}
	return nil
}

// Notify implements apphandler.Observer. Slow clients lose events rather
// than slowing the controller.
func (h *Hub) Notify(_ context.Context, event types.Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, cl := range h.clients {
		if !cl.wants(event.Category) {
			continue
		}
		ev := event
		msg := types.WSMessage{Type: "event", Event: &ev}
		select {
		case cl.send <- msg:
		default:
			h.logger.Warn("Dropping event for slow stream client",
				zap.String("conn_id", cl.id.String()),
				zap.Uint64("seq", event.Seq),
			)
			h.recordMessage("dropped", "event")
		}
	}
	return nil
}

// Clients returns the number of connected streams
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(cl *client) {
	h.mu.Lock()
	h.clients[cl.id] = cl
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.IncWSConnections()
	}
}

func (h *Hub) remove(cl *client) {
	h.mu.Lock()
	delete(h.clients, cl.id)
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.DecWSConnections()
	}
}

func (h *Hub) recordMessage(direction, msgType string) {
	if h.metrics != nil {
		h.metrics.RecordWSMessage(direction, msgType)
	}
}

// client is one stream connection
type client struct {
	id   id.ConnID
	send chan types.WSMessage

	mu         sync.RWMutex
	categories map[types.Category]bool
}

func newClient(buffer int, categories []types.Category) *client {
	cl := &client{
		id:   id.NewConnID(),
		send: make(chan types.WSMessage, buffer),
	}
	cl.subscribe(categories)
	return cl
}

func (c *client) subscribe(categories []types.Category) {
	set := make(map[types.Category]bool, len(categories))
	for _, category := range categories {
		set[category] = true
	}
	c.mu.Lock()
	c.categories = set
	c.mu.Unlock()
}

func (c *client) wants(category types.Category) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.categories[category]
}

func (c *client) subscribed() []types.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]types.Category, 0, len(c.categories))
	for _, category := range types.Categories() {
		if c.categories[category] {
			out = append(out, category)
		}
	}
	return out
}
