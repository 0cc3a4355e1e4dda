package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PeakReachMedia/peakreach-go/models"
)

func TestSetAndGetSession(t *testing.T) {
	m := NewManager()

	session := &models.Session{ID: "c9b1f6a2-3e4d-4f5a-8b6c-7d8e9f0a1b2c", FirstPageURL: "https://peakreach.io/"}
	m.SetSession(session)

	got, found := m.GetSession(session.ID)
	require.True(t, found)
	assert.Equal(t, session, got)
	assert.Equal(t, 1, m.Len())

	_, found = m.GetSession("3f2e1d0c-9b8a-4756-a3b2-c1d0e9f8a7b6")
	assert.False(t, found)
}

func TestSetSessionIgnoresEmpty(t *testing.T) {
	m := NewManager()

	m.SetSession(nil)
	m.SetSession(&models.Session{})

	assert.Equal(t, 0, m.Len())
}

func TestInvalidateSession(t *testing.T) {
	m := NewManager()
	m.SetSession(&models.Session{ID: "c9b1f6a2-3e4d-4f5a-8b6c-7d8e9f0a1b2c"})

	m.InvalidateSession("c9b1f6a2-3e4d-4f5a-8b6c-7d8e9f0a1b2c")

	_, found := m.GetSession("c9b1f6a2-3e4d-4f5a-8b6c-7d8e9f0a1b2c")
	assert.False(t, found)
	assert.Equal(t, 0, m.Len())
}

func TestExpiredEntriesAreEvicted(t *testing.T) {
	m := NewManager()
	m.ttl = 10 * time.Millisecond

	m.SetSession(&models.Session{ID: "c9b1f6a2-3e4d-4f5a-8b6c-7d8e9f0a1b2c"})
	time.Sleep(25 * time.Millisecond)

	_, found := m.GetSession("c9b1f6a2-3e4d-4f5a-8b6c-7d8e9f0a1b2c")
	assert.False(t, found)

	m.SetSession(&models.Session{ID: "3f2e1d0c-9b8a-4756-a3b2-c1d0e9f8a7b6"})
	time.Sleep(25 * time.Millisecond)
	assert.Equal(t, 1, m.purgeExpired())
	assert.Equal(t, 0, m.Len())
}
