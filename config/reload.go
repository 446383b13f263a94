// Config snapshot store with polling reload.
//
// Generation reads one immutable *Config per request. The reloader polls the
// YAML file's modification time and swaps the snapshot only when the new
// file loads and validates.
package config

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Store holds the current configuration snapshot.
type Store struct {
	current atomic.Pointer[Config]
}

// NewStore creates a store seeded with cfg.
func NewStore(cfg *Config) *Store {
	s := &Store{}
	s.current.Store(cfg)
	return s
}

// Current returns the active snapshot. Callers must not mutate it.
func (s *Store) Current() *Config {
	return s.current.Load()
}

// Swap replaces the snapshot and returns the previous one.
func (s *Store) Swap(cfg *Config) *Config {
	return s.current.Swap(cfg)
}

// --- Reloader ---

// ReloadOption configures a Reloader.
type ReloadOption func(*Reloader)

// WithPollInterval sets how often the file is checked.
func WithPollInterval(d time.Duration) ReloadOption {
	return func(r *Reloader) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithReloadLogger sets the logger.
func WithReloadLogger(logger *zap.Logger) ReloadOption {
	return func(r *Reloader) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithOnReload registers a callback invoked after a successful swap.
func WithOnReload(fn func(oldCfg, newCfg *Config)) ReloadOption {
	return func(r *Reloader) {
		r.onReload = append(r.onReload, fn)
	}
}

// Reloader watches one config file and refreshes a Store.
type Reloader struct {
	mu sync.Mutex

	store    *Store
	loader   *Loader
	path     string
	interval time.Duration
	logger   *zap.Logger
	onReload []func(oldCfg, newCfg *Config)

	running bool
	lastMod time.Time
	stopCh  chan struct{}
}

// NewReloader creates a reloader for path. loader must already be configured
// with the same path.
func NewReloader(store *Store, loader *Loader, path string, opts ...ReloadOption) *Reloader {
	r := &Reloader{
		store:    store,
		loader:   loader,
		path:     path,
		interval: time.Second,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(zap.String("component", "config_reloader"))
	return r
}

// Start begins polling until ctx is done or Stop is called.
func (r *Reloader) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("reloader already running")
	}
	if info, err := os.Stat(r.path); err == nil {
		r.lastMod = info.ModTime()
	}
	r.running = true
	r.stopCh = make(chan struct{})
	stopCh := r.stopCh
	r.mu.Unlock()

	go r.pollLoop(ctx, stopCh)

	r.logger.Info("config reloader started",
		zap.String("path", r.path),
		zap.Duration("interval", r.interval))
	return nil
}

// Stop ends polling.
func (r *Reloader) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return
	}
	close(r.stopCh)
	r.running = false
}

func (r *Reloader) pollLoop(ctx context.Context, stopCh <-chan struct{}) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			if r.changed() {
				_ = r.Reload()
			}
		}
	}
}

func (r *Reloader) changed() bool {
	info, err := os.Stat(r.path)
	if err != nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if info.ModTime().After(r.lastMod) {
		r.lastMod = info.ModTime()
		return true
	}
	return false
}

// Reload loads and validates the file, then swaps the snapshot. On failure
// the previous snapshot stays active.
func (r *Reloader) Reload() error {
	cfg, err := r.loader.Load()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		r.logger.Warn("config reload rejected, keeping previous snapshot",
			zap.String("path", r.path), zap.Error(err))
		return err
	}

	old := r.store.Swap(cfg)
	r.logger.Info("config reloaded", zap.String("path", r.path))
	for _, fn := range r.onReload {
		fn(old, cfg)
	}
	return nil
}
