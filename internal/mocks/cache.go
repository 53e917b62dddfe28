package mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/seu-repo/voice-banking/internal/ports"
)

// MockCache is a mock implementation of ports.Cache
type MockCache struct {
	mu         sync.Mutex
	data       map[string]string
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error
	PingFunc   func() error
	CloseFunc  func() error
}

func NewMockCache() *MockCache {
	return &MockCache{
		data: make(map[string]string),
	}
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if val, ok := m.data[key]; ok {
		return val, nil
	}
	return "", fmt.Errorf("%w: %s", ports.ErrCacheMiss, key)
}

func (m *MockCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, expiration)
	}
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		s = string(data)
	}
	m.mu.Lock()
	m.data[key] = s
	m.mu.Unlock()
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

func (m *MockCache) Ping() error {
	if m.PingFunc != nil {
		return m.PingFunc()
	}
	return nil
}

func (m *MockCache) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Keys returns the stored keys, for assertions.
func (m *MockCache) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys
}
