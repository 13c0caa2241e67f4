package ratelimit

import (
	"sync"
	"time"

	"github.com/garyellow/xoso-linebot-go/internal/metrics"
)

const (
	defaultCleanupPeriod = 5 * time.Minute
	dailyWindow          = 24 * time.Hour
)

// KeyedConfig configures a KeyedLimiter.
type KeyedConfig struct {
	// Name is the limiter_type label on drop metrics (e.g. "chat").
	Name string

	Burst      float64 // bucket capacity per key
	RefillRate float64 // tokens per second per key

	// DailyLimit caps requests per key over a rolling 24h window. 0 disables it.
	DailyLimit int

	// CleanupPeriod defaults to 5 minutes.
	CleanupPeriod time.Duration

	Metrics *metrics.Metrics
}

// KeyedLimiter keeps one bucket (and optional daily window) per key, such as a
// LINE chat id. Idle keys are dropped by a background loop; call Stop when done.
type KeyedLimiter struct {
	mu      sync.RWMutex
	entries map[string]*keyedEntry
	cfg     KeyedConfig
	now     func() time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// keyedEntry's mutex makes the two-layer check-then-take atomic.
type keyedEntry struct {
	mu     sync.Mutex
	bucket *Limiter
	daily  *WindowCounter
}

// NewKeyedLimiter starts the cleanup loop.
func NewKeyedLimiter(cfg KeyedConfig) *KeyedLimiter {
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = defaultCleanupPeriod
	}
	kl := &KeyedLimiter{
		entries: make(map[string]*keyedEntry),
		cfg:     cfg,
		now:     time.Now,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
	go kl.cleanupLoop()
	return kl
}

// Allow reports whether a request for key may proceed, consuming quota if so.
// An empty key is never limited.
func (kl *KeyedLimiter) Allow(key string) bool {
	if key == "" {
		return true
	}

	entry := kl.entry(key)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if !entry.daily.check() || !entry.bucket.check() {
		if kl.cfg.Metrics != nil {
			kl.cfg.Metrics.RecordRateLimiterDrop(kl.cfg.Name)
		}
		return false
	}

	entry.daily.take()
	entry.bucket.take()
	return true
}

func (kl *KeyedLimiter) entry(key string) *keyedEntry {
	kl.mu.RLock()
	e, ok := kl.entries[key]
	kl.mu.RUnlock()
	if ok {
		return e
	}

	kl.mu.Lock()
	defer kl.mu.Unlock()

	if e, ok = kl.entries[key]; ok {
		return e
	}
	e = &keyedEntry{
		bucket: newWithClock(kl.cfg.Burst, kl.cfg.RefillRate, kl.now),
		daily:  newWindowWithClock(kl.cfg.DailyLimit, dailyWindow, kl.now),
	}
	kl.entries[key] = e
	return e
}

// Available returns the tokens left for key; unseen keys report Burst.
func (kl *KeyedLimiter) Available(key string) float64 {
	kl.mu.RLock()
	e, ok := kl.entries[key]
	kl.mu.RUnlock()
	if !ok {
		return kl.cfg.Burst
	}
	return e.bucket.Available()
}

// DailyRemaining returns -1 when the daily window is disabled.
func (kl *KeyedLimiter) DailyRemaining(key string) int {
	if kl.cfg.DailyLimit <= 0 {
		return -1
	}

	kl.mu.RLock()
	e, ok := kl.entries[key]
	kl.mu.RUnlock()
	if !ok {
		return kl.cfg.DailyLimit
	}
	return e.daily.Remaining()
}

// Limits returns the configured burst and daily cap (0 when disabled).
func (kl *KeyedLimiter) Limits() (burst float64, daily int) {
	return kl.cfg.Burst, max(kl.cfg.DailyLimit, 0)
}

// RefillRate returns tokens restored per second.
func (kl *KeyedLimiter) RefillRate() float64 {
	return kl.cfg.RefillRate
}

// ActiveCount returns the number of tracked keys.
func (kl *KeyedLimiter) ActiveCount() int {
	kl.mu.RLock()
	defer kl.mu.RUnlock()
	return len(kl.entries)
}

func (kl *KeyedLimiter) cleanupLoop() {
	defer close(kl.doneCh)

	ticker := time.NewTicker(kl.cfg.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-kl.stopCh:
			return
		case <-ticker.C:
			kl.sweep()
		}
	}
}

// sweep drops keys whose bucket is full and whose daily window is empty.
// Keys with daily usage are kept so the quota survives.
func (kl *KeyedLimiter) sweep() {
	kl.mu.Lock()
	for key, e := range kl.entries {
		if e.bucket.IsFull() && e.daily.Idle() {
			delete(kl.entries, key)
		}
	}
	active := len(kl.entries)
	kl.mu.Unlock()

	if kl.cfg.Metrics != nil {
		kl.cfg.Metrics.SetRateLimiterUsers(active)
	}
}

// Stop ends the cleanup loop and waits for it to exit. Safe to call twice.
func (kl *KeyedLimiter) Stop() {
	kl.stopOnce.Do(func() { close(kl.stopCh) })
	<-kl.doneCh
}
