package cache

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStorage caches values as files under Path, one directory per namespace.
// Entries expire based on file modification time.
type FileStorage struct {
	Path string
	ttl  time.Duration

	mu    sync.RWMutex
	nsTTL map[Namespace]time.Duration
}

type FileConfig struct {
	Path string        `yaml:"path"`
	TTL  time.Duration `yaml:"ttl"`
}

func NewFileStorage(cfg FileConfig) *FileStorage {
	var ttl time.Duration
	if cfg.TTL == 0 {
		ttl = time.Hour
	} else {
		ttl = cfg.TTL
	}
	return &FileStorage{
		Path:  cfg.Path,
		ttl:   ttl,
		nsTTL: map[Namespace]time.Duration{},
	}
}

var _ Storage = (*FileStorage)(nil)

func (f *FileStorage) Get(_ context.Context, key Key) ([]byte, bool) {
	p := f.path(key)

	f.mu.RLock()
	ttl, ok := f.nsTTL[key.Namespace()]
	f.mu.RUnlock()
	if !ok {
		ttl = f.ttl
	}
	if ttl > 0 {
		// Check the file's mtime and ignore if expired:
		stat, err := os.Stat(p)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false
		} else if err == nil && time.Since(stat.ModTime()) > ttl {
			return nil, false
		}
	}

	b, err := os.ReadFile(p)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Error("cache.FileStorage.get error", slog.String("error", err.Error()))
		}
		return nil, false
	}
	return b, true
}

func (f *FileStorage) Add(_ context.Context, key Key, value []byte) {
	p := f.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		slog.Error("cache.FileStorage.add mkdir error", slog.String("error", err.Error()))
		return
	}

	if err := os.WriteFile(p, value, 0644); err != nil {
		slog.Error("cache.FileStorage.add write error", slog.String("error", err.Error()))
	}
}

func (f *FileStorage) NamespaceTTL(namespace Namespace, ttl time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nsTTL[namespace] = ttl
}

func (f *FileStorage) path(key Key) string {
	ns := string(key.Namespace())
	if ns == "" {
		ns = "_"
	}
	return filepath.Join(f.Path, url.PathEscape(ns), url.PathEscape(key.Name()))
}
