// Package browser owns the single shared headless-browser process used by the
// search scraper. The browser is launched lazily on first acquire and torn
// down after every pipeline run, so a corrupted session never outlives a job.
package browser

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"gamenews-web-memory/internal/config"
)

// LaunchFunc starts a browser and returns it with its cleanup hook.
// Injectable for tests.
type LaunchFunc func(ctx context.Context) (*rod.Browser, func(), error)

// SessionManager hands out one process-wide *rod.Browser. Concurrent callers
// racing the first launch all await the same in-flight launch; a failed
// launch leaves no cached state, so the next acquire retries from scratch.
type SessionManager struct {
	launch LaunchFunc
	sf     singleflight.Group
	log    *zerolog.Logger

	mu      sync.Mutex
	browser *rod.Browser
	cleanup func()
}

func NewSessionManager(cfg config.BrowserConfig, logger *zerolog.Logger) *SessionManager {
	l := logger.With().Str("component", "BrowserSessionManager").Logger()
	return &SessionManager{
		launch: defaultLaunch(cfg),
		log:    &l,
	}
}

// NewSessionManagerWithLaunch injects a custom launcher. Used by tests.
func NewSessionManagerWithLaunch(launch LaunchFunc, logger *zerolog.Logger) *SessionManager {
	l := logger.With().Str("component", "BrowserSessionManager").Logger()
	return &SessionManager{launch: launch, log: &l}
}

// Acquire returns the shared browser, launching it if needed. The first
// caller pays the launch cost; everyone else either gets the cached handle or
// joins the in-flight launch.
func (m *SessionManager) Acquire(ctx context.Context) (*rod.Browser, error) {
	m.mu.Lock()
	if m.browser != nil {
		b := m.browser
		m.mu.Unlock()
		return b, nil
	}
	m.mu.Unlock()

	v, err, _ := m.sf.Do("launch", func() (interface{}, error) {
		b, cleanup, err := m.launch(ctx)
		if err != nil {
			return nil, fmt.Errorf("browser launch: %w", err)
		}
		m.mu.Lock()
		m.browser = b
		m.cleanup = cleanup
		m.mu.Unlock()
		m.log.Info().Msg("browser session launched")
		return b, nil
	})
	if err != nil {
		// Nothing was cached; the next Acquire starts a fresh launch.
		return nil, err
	}
	return v.(*rod.Browser), nil
}

// ReleaseAll closes the shared browser and clears the cached reference so a
// subsequent acquire re-launches. Safe to call when nothing is cached.
func (m *SessionManager) ReleaseAll() {
	m.mu.Lock()
	b, cleanup := m.browser, m.cleanup
	m.browser, m.cleanup = nil, nil
	m.mu.Unlock()

	if b == nil {
		return
	}
	if err := b.Close(); err != nil {
		m.log.Warn().Err(err).Msg("browser close failed")
	}
	if cleanup != nil {
		cleanup()
	}
	m.log.Debug().Msg("browser session released")
}

func defaultLaunch(cfg config.BrowserConfig) LaunchFunc {
	return func(ctx context.Context) (*rod.Browser, func(), error) {
		l := launcher.New().
			Headless(cfg.Headless).
			NoSandbox(cfg.NoSandbox)
		if cfg.ExecPath != "" {
			l = l.Bin(cfg.ExecPath)
		}
		url, err := l.Launch()
		if err != nil {
			return nil, nil, err
		}
		b := rod.New().Context(ctx).ControlURL(url)
		if err := b.Connect(); err != nil {
			l.Cleanup()
			return nil, nil, err
		}
		return b, l.Cleanup, nil
	}
}
