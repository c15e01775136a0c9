package main

import (
	"log"
	"os"

	"reseller_hub/internal/config"
	"reseller_hub/internal/logger"
)

func main() {
	cfg := config.Load()
	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	code := execute(cfg)
	logger.Close()
	os.Exit(code)
}
