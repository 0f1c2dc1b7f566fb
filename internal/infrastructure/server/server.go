package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/AgentOS/launcher/internal/api/http"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/api/middleware"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/api/ws"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/domain/apphandler"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/domain/directory"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/domain/launcher"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/domain/notify"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/domain/store"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/grpc"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/shared/utils"
)

// Version is reported by the root endpoint
const Version = "0.1.0"

// Server wires the app handler to its collaborators and outer surfaces
type Server struct {
	config  *config.Config
	logger  *logging.Logger
	metrics *monitoring.Metrics

	controller *apphandler.Controller
	store      *store.FileStore
	launcher   *launcher.ExecLauncher
	hub        *ws.Hub
	health     *grpc.HealthServer

	router     *gin.Engine
	httpServer *http.Server
	runErr     chan error
}

// New builds the launcher from configuration. Nothing runs until Start.
func New(cfg *config.Config) (*Server, error) {
	logger := logging.FromConfig(cfg.Logging.Level, cfg.Logging.Development)

	logger.Info("Initializing AgentOS Launcher",
		zap.String("port", cfg.Server.Port),
		zap.String("store", cfg.Store.Path),
		zap.String("account", cfg.Directory.Account),
	)

	metrics := monitoring.NewMetrics()

	algorithm, err := utils.ParseHashAlgorithm(cfg.Directory.HashAlgorithm)
	if err != nil {
		return nil, err
	}
	dir, err := directory.New(cfg.Directory.Account, algorithm)
	if err != nil {
		return nil, fmt.Errorf("invalid directory config: %w", err)
	}
	aliases, err := cfg.Directory.ParseAliases()
	if err != nil {
		return nil, fmt.Errorf("invalid directory config: %w", err)
	}
	for _, alias := range aliases {
		if err := dir.Alias(alias.BinaryName, alias.Target); err != nil {
			return nil, fmt.Errorf("invalid directory alias %s: %w", alias.BinaryName, err)
		}
	}

	fileStore, err := store.New(cfg.Store.Path, logger.Named("store"))
	if err != nil {
		return nil, fmt.Errorf("invalid store config: %w", err)
	}
	initial, err := fileStore.Load(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}

	execLauncher := launcher.New(logger.Named("launcher"), launcher.WithEnv(cfg.Handler.LaunchEnv...))

	controller, err := apphandler.New(apphandler.Options{
		Directory:     dir,
		Launcher:      execLauncher,
		Store:         fileStore,
		Logger:        logger.Named("apphandler"),
		Metrics:       metrics,
		CommandBuffer: cfg.Handler.CommandBuffer,
		NotifyTimeout: cfg.Handler.NotifyTimeout,
		Initial:       initial,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create app handler: %w", err)
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog(logger.Named("http")))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
			zap.Bool("global", cfg.RateLimit.Global),
		)
		limits := middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}
		if cfg.RateLimit.Global {
			router.Use(middleware.GlobalRateLimit(limits))
		} else {
			router.Use(middleware.RateLimit(limits))
		}
	}

	handlers := apihttp.NewHandlers(controller, Version)
	handlers.Register(router)

	hub := ws.NewHub(logger.Named("stream"), metrics, 64)
	router.GET("/stream", hub.HandleConnection)

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	s := &Server{
		config:     cfg,
		logger:     logger,
		metrics:    metrics,
		controller: controller,
		store:      fileStore,
		launcher:   execLauncher,
		hub:        hub,
		router:     router,
		runErr:     make(chan error, 3),
	}
	if cfg.GRPC.Enabled {
		s.health = grpc.NewHealthServer(logger.Named("grpc"))
	}

	logger.Info("Launcher initialized", zap.Int("managed_apps", len(initial)))
	return s, nil
}

// Router exposes the HTTP handler
func (s *Server) Router() http.Handler {
	return s.router
}

// Controller exposes the app handler
func (s *Server) Controller() *apphandler.Controller {
	return s.controller
}

// Start runs the controller and registers the built-in observers. It does
// not open any listener. Cancelling ctx does not stop the controller: Close
// terminates it once the listeners have drained.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		if err := s.controller.Run(context.WithoutCancel(ctx)); err != nil {
			s.runErr <- fmt.Errorf("app handler stopped: %w", err)
		}
	}()

	if err := s.hub.Attach(ctx, s.controller); err != nil {
		return fmt.Errorf("failed to attach stream hub: %w", err)
	}

	if s.config.Logging.Development {
		logObserver := notify.NewLog(s.logger.Named("events"))
		for _, category := range types.Categories() {
			if _, err := s.controller.RegisterObserver(ctx, category, logObserver); err != nil {
				return fmt.Errorf("failed to attach event log: %w", err)
			}
		}
	}

	targets, err := s.config.Webhooks.Parse()
	if err != nil {
		return err
	}
	for _, target := range targets {
		hook := notify.NewWebhook(target.URL, notify.DefaultWebhookConfig())
		if _, err := s.controller.RegisterObserver(ctx, target.Category, hook); err != nil {
			return fmt.Errorf("failed to register webhook %s: %w", target.URL, err)
		}
		s.logger.Info("Webhook registered",
			zap.String("category", string(target.Category)),
			zap.String("url", target.URL),
		)
	}

	return nil
}

// Run starts everything and blocks until ctx is cancelled or a listener fails
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}

	if s.health != nil {
		s.health.Track(s.controller.Done())
		go func() {
			if err := s.health.ListenAndServe(s.config.GRPC.Address); err != nil {
				s.runErr <- err
			}
		}()
	}

	addr := net.JoinHostPort(s.config.Server.Host, s.config.Server.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.runErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-s.runErr:
		return err
	}
}

// Close stops the listeners, then the controller
func (s *Server) Close(ctx context.Context) error {
	s.logger.Info("Shutting down launcher...")

	var errs []error
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	if s.health != nil {
		s.health.Stop()
	}

	if err := s.controller.Terminate(ctx); err != nil && !errors.Is(err, apphandler.ErrAlreadyTerminated) {
		errs = append(errs, fmt.Errorf("app handler terminate: %w", err))
	}
	s.controller.WaitSpawns()

	_ = s.logger.Sync()
	return errors.Join(errs...)
}
