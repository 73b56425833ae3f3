package config

import (
	"os"
	"strconv"
)

func loadDevelopmentConfig(cfg *Config) {
	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err == nil {
		cfg.ServerPort = port
	}

	cfg.CacheDir = "./tmp/cache"
	cfg.DatabaseDebug = true
	cfg.DatabaseFilePath = "./tmp/pica.sqlite"
	cfg.ServerHost = "127.0.0.1"
}
