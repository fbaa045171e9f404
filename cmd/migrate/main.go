package main

import (
	"os"

	"bingo-groups-backend/config"
	"bingo-groups-backend/utils/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Errorf("configuration: %v", err)
		os.Exit(1)
	}
	if _, err := config.SetupDatabase(cfg.DatabaseURL); err != nil {
		logger.Errorf("migration: %v", err)
		os.Exit(1)
	}
	logger.Info("database migration completed")
}
