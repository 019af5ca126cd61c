// Command launcher is the container entrypoint. It brings up the virtual
// display stack and then runs the application server in the foreground,
// exiting with the server's exit code.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/presswatch/presswatch/internal/infrastructure/config"
	"github.com/presswatch/presswatch/internal/infrastructure/logging"
	"github.com/presswatch/presswatch/internal/supervisor"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.LoadOrDefault()
	log := logging.NewDefault()
	defer log.Sync()

	launcher := supervisor.New(supervisor.Config{
		Display:   cfg.Display.Display,
		Geometry:  cfg.Display.Geometry,
		VNCPort:   cfg.Display.VNCPort,
		ServerBin: serverBin(),
	}, log)

	// SIGTERM reaches the foreground server through the shared context.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code, err := launcher.Run(ctx)
	if err != nil {
		log.Error("launcher failed", zap.Error(err))
	}
	return code
}

// serverBin resolves the application server binary, preferring the one
// installed next to the launcher.
func serverBin() string {
	if bin := os.Getenv("SERVER_BIN"); bin != "" {
		return bin
	}
	return "/app/server"
}
