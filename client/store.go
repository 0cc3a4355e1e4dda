package client

import (
	"context"
	"log"
	"sync"

	"github.com/PeakReachMedia/peakreach-go/models"
	"github.com/PeakReachMedia/peakreach-go/utils"
)

// PageContext describes the page the visitor is on when the session
// initializes. The embedding app supplies it via a provider function so the
// store always sees the live URL.
type PageContext struct {
	URL       string
	Referrer  string
	UserAgent string
}

type initOp struct {
	done    chan struct{}
	session *models.Session
}

// SessionStore provides the current session to any number of concurrent
// callers while guaranteeing at most one initialization round trip.
// Construct one per browsing context at application start; failure to
// initialize degrades to a nil session, never an error the caller must
// handle.
type SessionStore struct {
	mu       sync.Mutex
	session  *models.Session
	inflight *initOp

	api     *API
	storage Storage
	page    func() PageContext
}

func NewSessionStore(api *API, storage Storage, page func() PageContext) *SessionStore {
	return &SessionStore{
		api:     api,
		storage: storage,
		page:    page,
	}
}

// Resolve returns the current session, initializing it if needed. Concurrent
// callers join the single in-flight initialization and all observe the same
// resolved value. A nil return means initialization failed; dependent
// features must treat it as "capture without session association".
func (s *SessionStore) Resolve(ctx context.Context) *models.Session {
	s.mu.Lock()
	if s.session != nil {
		session := s.session
		s.mu.Unlock()
		return session
	}
	if s.inflight != nil {
		op := s.inflight
		s.mu.Unlock()
		select {
		case <-op.done:
			return op.session
		case <-ctx.Done():
			return nil
		}
	}

	op := &initOp{done: make(chan struct{})}
	s.inflight = op
	s.mu.Unlock()

	session := s.initialize(ctx)

	s.mu.Lock()
	s.session = session
	s.inflight = nil
	s.mu.Unlock()

	op.session = session
	close(op.done)

	return session
}

func (s *SessionStore) initialize(ctx context.Context) *models.Session {
	page := s.page()

	if storedID, ok := s.storage.Get(SessionIDKey); ok && storedID != "" {
		session, err := s.api.ValidateSession(ctx, storedID)
		if err == nil {
			session.CurrentPageURL = page.URL
			return session
		}
		// Invalid or unreachable: the stored id is discarded and a fresh
		// session is created.
		log.Printf("WARN: stored session rejected, creating a new one: %v", err)
		if err := s.storage.Delete(SessionIDKey); err != nil {
			log.Printf("WARN: failed to discard stored session id: %v", err)
		}
	}

	referrer := page.Referrer
	if referrer == "" {
		referrer = "Direct"
	}

	session, err := s.api.CreateSession(ctx, models.CreateSessionRequest{
		FirstPageURL: page.URL,
		Referrer:     referrer,
		UserAgent:    page.UserAgent,
		Browser:      utils.DeriveBrowserName(page.UserAgent),
	})
	if err != nil {
		log.Printf("WARN: session creation failed: %v", err)
		return nil
	}

	if err := s.storage.Set(SessionIDKey, session.ID); err != nil {
		log.Printf("WARN: failed to store session id: %v", err)
	}

	return session
}

// Current returns the last-known session (possibly nil) and whether an
// initialization is in flight.
func (s *SessionStore) Current() (*models.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session, s.inflight != nil
}

// UpdateCurrentPage refreshes the in-memory session's current page URL
// without a network call. No-op when no session exists yet.
func (s *SessionStore) UpdateCurrentPage(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil {
		s.session.CurrentPageURL = url
	}
}

// Invalidate drops the in-memory session and the stored identifier. The next
// Resolve performs a fresh initialization.
func (s *SessionStore) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	if err := s.storage.Delete(SessionIDKey); err != nil {
		log.Printf("WARN: failed to delete stored session id: %v", err)
	}
}
