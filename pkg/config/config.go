package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
)

type Config struct {
	CacheDir                  string
	DatabaseBusyTimeout       time.Duration
	DatabaseConnectRetryCount int
	DatabaseConnectRetryDelay time.Duration
	DatabaseDebug             bool
	DatabaseFilePath          string
	DatabaseMaxRetries        int
	Hostname                  string
	LibraryRoots              []string
	ServerHost                string
	ServerPort                int
	ThumbnailMaxAge           time.Duration
	WorkerProcesses           int
}

const (
	environmentENV  = "ENVIRONMENT"
	libraryRootsENV = "MANGA_LIBRARY_PATH"
)

func New() (*Config, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cfg := &Config{
		DatabaseBusyTimeout:       5 * time.Second,
		DatabaseConnectRetryCount: 5,
		DatabaseConnectRetryDelay: 2 * time.Second,
		DatabaseMaxRetries:        3,
		Hostname:                  hostname,
		ServerPort:                3000,
		ThumbnailMaxAge:           30 * 24 * time.Hour,
		WorkerProcesses:           2,
	}

	cfg.LibraryRoots = parseLibraryRoots(os.Getenv(libraryRootsENV))

	switch os.Getenv(environmentENV) {
	case "development", "":
		loadDevelopmentConfig(cfg)
	case "test":
		loadTestConfig(cfg)
	case "production":
		loadProductionConfig(cfg)
	}

	return cfg, nil
}

// ThumbnailDir is the flat directory that holds the generated thumbnail cache
// files, inside the main cache directory.
func (cfg *Config) ThumbnailDir() string {
	return filepath.Join(cfg.CacheDir, "thumbnails")
}

// parseLibraryRoots splits the comma-separated library root list. These roots
// are the fallback allow-list for externally supplied image paths when no
// libraries are registered in the database.
func parseLibraryRoots(raw string) []string {
	roots := make([]string, 0)
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		roots = append(roots, abs)
	}
	return roots
}
