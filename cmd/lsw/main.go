// Package main is the entry point for the location-weather assistant CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/cmd/lsw/app"
	"github.com/CarmenAPuccio/strands-location-service-weather-sub000/pkg/logger"
)

func main() {
	// Initialize the logger
	logger.Initialize()

	// Create a context that will be canceled on signal
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.NewRootCmd().ExecuteContext(ctx); err != nil {
		logger.Errorf("Error executing command: %v", err)
		os.Exit(1)
	}
}
