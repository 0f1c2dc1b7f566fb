package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GriffinCanCode/AgentOS/launcher/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/launcher/internal/infrastructure/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags override env vars
	port := flag.String("port", cfg.Server.Port, "HTTP port")
	storePath := flag.String("store", cfg.Store.Path, "Registry file (.json, .yaml, .toml, optionally .zst)")
	account := flag.String("account", cfg.Directory.Account, "Account namespace for app identities")
	grpcAddr := flag.String("grpc", cfg.GRPC.Address, "gRPC health address")
	dev := flag.Bool("dev", cfg.Logging.Development, "Development logging")
	flag.Parse()

	cfg.Server.Port = *port
	cfg.Store.Path = *storePath
	cfg.Directory.Account = *account
	cfg.GRPC.Address = *grpcAddr
	if *dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}

	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create launcher: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runErr := srv.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Close(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	if runErr != nil {
		log.Fatalf("Launcher error: %v", runErr)
	}
}
