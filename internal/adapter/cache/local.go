package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/voice-banking/internal/ports"
)

type cacheEntry struct {
	value     string
	expiresAt time.Time
}

func (e cacheEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && e.expiresAt.Before(now)
}

// LocalCache keeps sessions in process memory when Redis is not configured.
// Sessions do not survive a restart and are not shared between replicas.
type LocalCache struct {
	data      map[string]cacheEntry
	mu        sync.RWMutex
	log       *zap.Logger
	stopCh    chan struct{}
	closeOnce sync.Once
}

func NewLocalCache(cleanupInterval time.Duration, log *zap.Logger) *LocalCache {
	if cleanupInterval <= 0 {
		cleanupInterval = time.Minute
	}

	c := &LocalCache{
		data:   make(map[string]cacheEntry),
		log:    log,
		stopCh: make(chan struct{}),
	}

	go c.cleanupLoop(cleanupInterval)

	log.Info("In-memory session cache initialized",
		zap.Duration("cleanup_interval", cleanupInterval),
	)
	return c
}

func (c *LocalCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.data[key]
	if !ok || entry.expired(time.Now()) {
		return "", fmt.Errorf("%w: %s", ports.ErrCacheMiss, key)
	}

	return entry.value, nil
}

func (c *LocalCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	var strVal string
	switch v := value.(type) {
	case string:
		strVal = v
	case []byte:
		strVal = string(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal value: %w", err)
		}
		strVal = string(data)
	}

	entry := cacheEntry{value: strVal}
	if expiration > 0 {
		entry.expiresAt = time.Now().Add(expiration)
	}

	c.mu.Lock()
	c.data[key] = entry
	c.mu.Unlock()
	return nil
}

func (c *LocalCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *LocalCache) Ping() error {
	return nil
}

func (c *LocalCache) Close() error {
	c.closeOnce.Do(func() { close(c.stopCh) })
	return nil
}

// Len counts live entries.
func (c *LocalCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := time.Now()
	n := 0
	for _, entry := range c.data {
		if !entry.expired(now) {
			n++
		}
	}
	return n
}

func (c *LocalCache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stopCh:
			return
		}
	}
}

func (c *LocalCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	expired := 0
	for key, entry := range c.data {
		if entry.expired(now) {
			delete(c.data, key)
			expired++
		}
	}

	if expired > 0 {
		c.log.Debug("Cache cleanup completed", zap.Int("expired_entries", expired))
	}
}
