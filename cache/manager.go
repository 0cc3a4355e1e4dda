// Package cache provides the in-memory session cache used by the API layer.
package cache

import (
	"log"
	"sync"
	"time"

	"github.com/PeakReachMedia/peakreach-go/config"
	"github.com/PeakReachMedia/peakreach-go/models"
)

// GlobalInstance is set once at startup by main.
var GlobalInstance *Manager

// GetGlobalManager returns the global cache manager instance
func GetGlobalManager() *Manager {
	return GlobalInstance
}

type sessionEntry struct {
	session      *models.Session
	lastAccessed time.Time
}

// Manager caches validated sessions so repeated validation of the same id
// does not hit the database. Entries expire after the configured TTL of
// inactivity.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
	ttl      time.Duration
}

// NewManager creates a new cache manager
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*sessionEntry),
		ttl:      config.SessionCacheTTL,
	}
}

// GetSession retrieves session data from cache. A hit refreshes the entry's
// activity timestamp.
func (m *Manager) GetSession(sessionID string) (*models.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, found := m.sessions[sessionID]
	if !found {
		return nil, false
	}
	if time.Since(entry.lastAccessed) > m.ttl {
		delete(m.sessions, sessionID)
		return nil, false
	}

	entry.lastAccessed = time.Now()
	return entry.session, true
}

// SetSession stores session data in cache
func (m *Manager) SetSession(session *models.Session) {
	if session == nil || session.ID == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[session.ID] = &sessionEntry{
		session:      session,
		lastAccessed: time.Now(),
	}
}

// InvalidateSession removes a session from cache
func (m *Manager) InvalidateSession(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

// Len returns the number of cached sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) purgeExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	purged := 0
	for id, entry := range m.sessions {
		if time.Since(entry.lastAccessed) > m.ttl {
			delete(m.sessions, id)
			purged++
		}
	}
	return purged
}

// StartCleanupRoutine starts the background purge of expired sessions.
func StartCleanupRoutine(m *Manager) {
	go func() {
		ticker := time.NewTicker(config.CacheCleanupInterval)
		defer ticker.Stop()

		for range ticker.C {
			if purged := m.purgeExpired(); purged > 0 {
				log.Printf("Cache cleanup: purged %d expired sessions", purged)
			}
		}
	}()
}
