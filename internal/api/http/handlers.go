package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/AgentOS/launcher/internal/domain/apphandler"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/utils"
)

// DefaultRequestTimeout bounds how long a request waits for the controller
const DefaultRequestTimeout = 10 * time.Second

// AppHandler is the part of the controller the HTTP API drives
type AppHandler interface {
	Add(ctx context.Context, detail types.AppDetail) (types.ManagedApp, error)
	Remove(ctx context.Context, id types.AppIdentity) (apphandler.RemoveResult, error)
	Activate(ctx context.Context, id types.AppIdentity) (types.ManagedApp, error)
	ModifySettings(ctx context.Context, settings types.ModifyAppSettings) (types.ManagedApp, error)
	GetAllManagedApps(ctx context.Context) ([]types.ManagedApp, error)
	GetApp(ctx context.Context, id types.AppIdentity) (types.ManagedApp, error)
	Stats(ctx context.Context) (types.Stats, error)
}

// Handlers contains all HTTP handlers
type Handlers struct {
	apps    AppHandler
	timeout time.Duration
	version string
}

// NewHandlers creates a new handler set
func NewHandlers(apps AppHandler, version string) *Handlers {
	return &Handlers{
		apps:    apps,
		timeout: DefaultRequestTimeout,
		version: version,
	}
}

// Register mounts the app routes
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	r.GET("/apps", h.ListApps)
	r.POST("/apps", h.AddApp)
	r.GET("/apps/:id", h.GetApp)
	r.PATCH("/apps/:id", h.ModifyApp)
	r.DELETE("/apps/:id", h.RemoveApp)
	r.POST("/apps/:id/activate", h.ActivateApp)
}

func (h *Handlers) context(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

// appID reads and validates the :id path parameter
func appID(c *gin.Context) (types.AppIdentity, bool) {
	id := c.Param("id")
	if err := utils.ValidateID(id, "app_id", true); err != nil {
		badRequest(c, err)
		return "", false
	}
	return types.AppIdentity(id), true
}

// Root identifies the service
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "AgentOS Launcher",
		"version": h.version,
	})
}

// Health reports controller state
func (h *Handlers) Health(c *gin.Context) {
	ctx, cancel := h.context(c)
	defer cancel()

	stats, err := h.apps.Stats(ctx)
	if err != nil {
		c.JSON(statusFor(err), gin.H{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"app_handler": stats,
	})
}

// ListApps lists every managed app
func (h *Handlers) ListApps(c *gin.Context) {
	ctx, cancel := h.context(c)
	defer cancel()

	apps, err := h.apps.GetAllManagedApps(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.ListAppsResponse{Apps: apps, Count: len(apps)})
}

// GetApp returns one managed app
func (h *Handlers) GetApp(c *gin.Context) {
	id, ok := appID(c)
	if !ok {
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	app, err := h.apps.GetApp(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

// AddApp adds an app on this machine
func (h *Handlers) AddApp(c *gin.Context) {
	var req types.AddAppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	app, err := h.apps.Add(ctx, types.AppDetail{
		AbsolutePath:    req.AbsolutePath,
		SafeDriveAccess: req.SafeDriveAccess,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, app)
}

// ModifyApp applies a partial settings update
func (h *Handlers) ModifyApp(c *gin.Context) {
	id, ok := appID(c)
	if !ok {
		return
	}

	var req types.ModifyAppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	app, err := h.apps.ModifySettings(ctx, types.ModifyAppSettings{
		ID:              id,
		Name:            req.Name,
		LocalPath:       req.LocalPath,
		SafeDriveAccess: req.SafeDriveAccess,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, app)
}

// RemoveApp drops one reference to an app
func (h *Handlers) RemoveApp(c *gin.Context) {
	id, ok := appID(c)
	if !ok {
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	res, err := h.apps.Remove(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.RemoveAppResponse{ID: res.ID, Present: res.Present, App: res.App})
}

// ActivateApp launches an app. 202 means the launch was handed off.
func (h *Handlers) ActivateApp(c *gin.Context) {
	id, ok := appID(c)
	if !ok {
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	app, err := h.apps.Activate(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, app)
}
