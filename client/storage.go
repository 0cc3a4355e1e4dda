// Package client is the Go SDK for the PeakReach funnel pipeline: a session
// store that resolves the current visitor session with at most one in-flight
// initialization, and a local funnel cache that accumulates funnel-step data
// across page loads.
package client

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Storage keys used by the SDK.
const (
	SessionIDKey     = "peakreach_session_id"
	FunnelDataKey    = "peakreach_funnel_data"
	CookieConsentKey = "peakreach_cookie_consent"
)

// Storage is the durable local key/value store backing the session store and
// funnel cache. The file implementation stands in for browser localStorage;
// embedders can supply their own.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// MemoryStorage is a non-durable Storage for tests and ephemeral contexts.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (s *MemoryStorage) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok
}

func (s *MemoryStorage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// FileStorage keeps one file per key under a directory.
type FileStorage struct {
	dir string
}

func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileStorage{dir: dir}, nil
}

func (s *FileStorage) path(key string) string {
	return filepath.Join(s.dir, key)
}

func (s *FileStorage) Get(key string) (string, bool) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return "", false
	}
	return string(data), true
}

func (s *FileStorage) Set(key, value string) error {
	return os.WriteFile(s.path(key), []byte(value), 0644)
}

func (s *FileStorage) Delete(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
