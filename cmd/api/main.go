// Package main provides the entry point for the Savvy API server
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/fx"

	"github.com/savvykitchen/savvy/internal/infrastructure/config"
	"github.com/savvykitchen/savvy/internal/infrastructure/container"
)

const defaultStopTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", os.Getenv("SAVVY_CONFIG"), "Configuration file path")
	flag.Parse()

	var cfg *config.Config
	app := fx.New(
		fx.NopLogger, // Use our own logger instead of Fx's
		fx.Supply(container.ConfigPath(*configPath)),
		container.Module,
		fx.Populate(&cfg),
	)
	if err := app.Err(); err != nil {
		log.Fatalf("Failed to build application: %v", err)
	}

	// Create context that cancels on interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	select {
	case <-ctx.Done():
	case sig := <-app.Wait():
		if sig.ExitCode != 0 {
			fmt.Fprintf(os.Stderr, "Application requested shutdown with code %d\n", sig.ExitCode)
		}
	}

	stopTimeout := cfg.Server.ShutdownTimeout
	if stopTimeout <= 0 {
		stopTimeout = defaultStopTimeout
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), stopTimeout)
	defer shutdownCancel()

	if err := app.Stop(shutdownCtx); err != nil {
		log.Fatalf("Failed to stop application gracefully: %v", err)
	}
}
