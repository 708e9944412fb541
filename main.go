package main

import (
	"github.com/satyamsb1/Tic-tack-toe/config"
	"github.com/satyamsb1/Tic-tack-toe/logger"
	"github.com/satyamsb1/Tic-tack-toe/monitor"
	"github.com/satyamsb1/Tic-tack-toe/server"
)

func main() {
	// Initialize logger
	logger.Init()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Metrics endpoint
	mon := monitor.NewMonitor("tictactoe")
	mon.StartServer(cfg.Metrics.Address)
	logger.Log.Infof("Metrics listening on %s", cfg.Metrics.Address)

	// Start Server
	gameServer := server.NewGameServer(cfg, mon)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
