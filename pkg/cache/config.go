package cache

import (
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"time"
)

// Config selects a Storage by URL: "memory://" or "file:///some/dir".
type Config struct {
	URL  string        `yaml:"url"`
	Size int           `yaml:"size"`
	TTL  time.Duration `yaml:"ttl"`
}

func StorageFromConfig(cfg Config) (Storage, error) {
	if cfg.URL == "" {
		slog.Debug("no cache URL specified, using in-memory")
		return NewLRUStorage(LRUConfig{Size: cfg.Size, TTL: cfg.TTL}), nil
	}

	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("error parsing cache URL: %w", err)
	}
	switch u.Scheme {
	case "memory":
		return NewLRUStorage(LRUConfig{Size: cfg.Size, TTL: cfg.TTL}), nil

	case "file":
		p := filepath.Join(u.Hostname(), u.Path)
		slog.Debug("using file cache", slog.String("path", p))
		return NewFileStorage(FileConfig{Path: p, TTL: cfg.TTL}), nil

	default:
		return nil, fmt.Errorf("unsupported cache scheme %q", u.Scheme)
	}
}
