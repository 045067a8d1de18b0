package main

import (
	"github.com/wfunc/duet/config"
	"github.com/wfunc/duet/logger"
	"github.com/wfunc/duet/monitor"
	"github.com/wfunc/duet/server"
)

func main() {
	// Initialize logger
	logger.Init()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Metrics endpoint
	mon := monitor.NewMonitor("duet")
	mon.StartServer(cfg.Server.MetricsAddress)

	// Start the relay
	relay := server.NewRelayServer(cfg.Server.ListenAddress, mon)
	logger.Log.Infof("Starting relay on %s", cfg.Server.ListenAddress)
	if err := relay.Start(); err != nil {
		logger.Log.Fatalf("Relay stopped: %v", err)
	}
}
