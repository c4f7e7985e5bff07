package main

import (
	"os"
	"os/signal"
	"syscall"

	"humesync/internal/bootstrap"
	"humesync/pkg/logger"
)

func main() {
	c := bootstrap.NewContainer()
	c.MustInit()
	defer logger.Sync()

	if err := c.Start(); err != nil {
		c.Log.Errorw("Failed to start", "error", err)
		c.Shutdown()
		os.Exit(1)
	}

	c.Log.Info("System initialized successfully")

	waitForShutdown(c)
}

// waitForShutdown blocks until SIGINT or SIGTERM, then shuts the container down
func waitForShutdown(c *bootstrap.Container) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		c.Log.Infof("Received signal: %v", sig)
	case <-c.Context.Done():
	}

	c.Shutdown()
}
