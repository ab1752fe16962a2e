// Package configwatcher provides config file monitoring for fahlink.
// When enabled, it watches the fahlink config file and notifies the host
// application when the folding client endpoint changes, so it can restart
// the client against the new host/port without a process restart.
package configwatcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/fold-labs/fahlink/internal/cliconfig"
	"github.com/fold-labs/fahlink/internal/ports"
	"github.com/fold-labs/fahlink/pkg/fahlink"
)

// Endpoint is the client endpoint read from the watched config file.
type Endpoint struct {
	Host string
	Port int
}

// OnEndpointChange is called with the new endpoint after the config file
// changes. It runs on the watcher goroutine; implementations should hand
// off long work (like restarting a client) to their own goroutine.
type OnEndpointChange func(Endpoint)

// Plugin implements config watching functionality. It monitors the fahlink
// config file and fires the callback when host or port change.
type Plugin struct {
	mu sync.Mutex

	// Configuration
	path          string
	debounceDelay time.Duration
	onChange      OnEndpointChange

	// Runtime state
	logger   ports.Logger
	last     Endpoint
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
}

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// Path is the config file to watch.
	// Default: cliconfig.DefaultConfigPath().
	Path string

	// DebounceDelay is the delay to wait after a file change before
	// reloading. Editors often emit several events per save.
	// Default: 100 milliseconds
	DebounceDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Path:          cliconfig.DefaultConfigPath(),
		DebounceDelay: 100 * time.Millisecond,
	}
}

// New creates a new config watcher plugin with the given configuration.
func New(cfg Config, onChange OnEndpointChange) *Plugin {
	if cfg.Path == "" {
		cfg.Path = cliconfig.DefaultConfigPath()
	}
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	return &Plugin{
		path:          cfg.Path,
		debounceDelay: cfg.DebounceDelay,
		onChange:      onChange,
	}
}

// WithConfigWatcher returns a fahlink Option that enables config file
// watching.
//
// Usage:
//
//	client, err := fahlink.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.DefaultConfig(), onChange),
//	)
func WithConfigWatcher(cfg Config, onChange OnEndpointChange) fahlink.Option {
	return fahlink.WithPlugin(New(cfg, onChange))
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Initialize sets up the plugin and starts the watcher loop.
func (p *Plugin) Initialize(ctx context.Context, cfg fahlink.PluginConfig) error {
	p.mu.Lock()
	p.logger = cfg.Logger
	p.last = Endpoint{Host: cfg.Host, Port: cfg.Port}
	p.mu.Unlock()

	if p.path == "" || p.onChange == nil {
		p.logger.Warn("config watcher disabled: no path or callback configured")
		return nil
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.logger.Info("config watcher plugin initialized", ports.String("path", p.path))

	p.wg.Add(1)
	go p.watchLoop(watchCtx)

	return nil
}

// Shutdown stops the watcher.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	p.mu.Lock()
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()
	return nil
}

// watchLoop watches the config file's directory for changes.
// Watching the directory instead of the file survives the rename dance
// editors do on save.
func (p *Plugin) watchLoop(ctx context.Context) {
	defer p.wg.Done()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		p.logger.Error("config watcher: failed to create watcher", ports.Err(err))
		return
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		p.logger.Error("config watcher: failed to watch directory", ports.Err(err))
		return
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(p.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			p.debounceReload()

		case werr, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("config watcher: watcher error", ports.Err(werr))
		}
	}
}

func (p *Plugin) debounceReload() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, p.reload)
}

// reload re-reads the config file and fires the callback when the endpoint
// actually changed.
func (p *Plugin) reload() {
	fc, err := cliconfig.LoadFileConfig(p.path)
	if err != nil {
		p.logger.Warn("config watcher: reload failed", ports.Err(err))
		return
	}

	next := Endpoint{Host: fc.Host, Port: fc.Port}
	if next.Host == "" {
		return
	}
	if next.Port == 0 {
		next.Port = cliconfig.DefaultPort
	}

	p.mu.Lock()
	changed := next != p.last
	if changed {
		p.last = next
	}
	onChange := p.onChange
	p.mu.Unlock()

	if !changed {
		return
	}

	p.logger.Info("config watcher: endpoint changed",
		ports.String("host", next.Host),
		ports.Int("port", next.Port))
	onChange(next)
}
