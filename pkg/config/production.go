package config

import (
	"os"
	"strconv"
)

func loadProductionConfig(cfg *Config) {
	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err == nil {
		cfg.ServerPort = port
	}
	if host := os.Getenv("HOST"); host != "" {
		cfg.ServerHost = host
	} else {
		cfg.ServerHost = "0.0.0.0"
	}

	dataDir := os.Getenv("DATA_DIRECTORY")
	if dataDir == "" {
		dataDir = "/data"
	}

	cfg.CacheDir = dataDir + "/cache"
	cfg.DatabaseFilePath = dataDir + "/pica.sqlite"
}
