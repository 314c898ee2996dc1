package ratelimit

import (
	"sync"
	"time"
)

const (
	DefaultWindow      = 60 * time.Second
	DefaultMaxRequests = 20
)

// Config holds rate limiting configuration
type Config struct {
	Window      time.Duration // length of one fixed window
	MaxRequests int           // requests allowed per window
}

func DefaultConfig() Config {
	return Config{
		Window:      DefaultWindow,
		MaxRequests: DefaultMaxRequests,
	}
}

type window struct {
	count   int
	resetAt time.Time
}

// Limiter is a per-user fixed-window counter. Windows are not smoothed:
// a user may spend a full budget just before a reset and another just
// after it. Entries live for the lifetime of the process and are not
// shared between instances.
type Limiter struct {
	cfg     Config
	mu      sync.Mutex
	windows map[string]*window
}

func New(cfg Config) *Limiter {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = DefaultMaxRequests
	}
	return &Limiter{
		cfg:     cfg,
		windows: make(map[string]*window),
	}
}

// Allow records one request for userID at now and reports whether it fits
// in the current window.
func (l *Limiter) Allow(userID string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[userID]
	if !ok || now.After(w.resetAt) {
		l.windows[userID] = &window{count: 1, resetAt: now.Add(l.cfg.Window)}
		return true
	}

	if w.count >= l.cfg.MaxRequests {
		return false
	}

	w.count++
	return true
}
