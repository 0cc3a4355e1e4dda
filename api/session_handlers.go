package api

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/PeakReachMedia/peakreach-go/cache"
	"github.com/PeakReachMedia/peakreach-go/geo"
	"github.com/PeakReachMedia/peakreach-go/models"
	"github.com/PeakReachMedia/peakreach-go/utils"
	"github.com/gin-gonic/gin"
)

// SessionService is the authority for session identity creation and
// validation.
type SessionService struct {
	db    *sql.DB
	cache *cache.Manager
	geo   *geo.Client
}

func NewSessionService(db *sql.DB, cacheManager *cache.Manager, geoClient *geo.Client) *SessionService {
	return &SessionService{
		db:    db,
		cache: cacheManager,
		geo:   geoClient,
	}
}

// ValidateHandler checks a client-supplied session id against the store.
// Malformed ids are rejected before any storage access.
func (s *SessionService) ValidateHandler(c *gin.Context) {
	sessionID := c.GetHeader(SessionIDHeader)
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session ID required"})
		return
	}
	if !utils.IsSessionID(sessionID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID format"})
		return
	}

	if cached, found := s.cache.GetSession(sessionID); found {
		c.JSON(http.StatusOK, gin.H{"valid": true, "session": cached})
		return
	}

	session, err := s.GetSessionByID(sessionID)
	if err != nil {
		log.Printf("ERROR: ValidateHandler - session lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if session == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	s.cache.SetSession(session)
	c.JSON(http.StatusOK, gin.H{"valid": true, "session": session})
}

// CreateHandler persists a new session row. Geolocation is looked up from
// the client IP on a best-effort basis; its absence is not an error.
func (s *SessionService) CreateHandler(c *gin.Context) {
	var req models.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}

	if req.FirstPageURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "First page URL required"})
		return
	}

	browser := req.Browser
	if browser == "" {
		browser = utils.DeriveBrowserName(req.UserAgent)
	}

	session := &models.Session{
		ID:             utils.GenerateSessionID(),
		FirstPageURL:   req.FirstPageURL,
		CurrentPageURL: req.FirstPageURL,
		Referrer:       req.Referrer,
		Browser:        browser,
		UserAgent:      req.UserAgent,
		FirstLandedAt:  time.Now().UTC(),
	}

	if s.geo != nil {
		location, err := s.geo.Lookup(c.Request.Context(), c.ClientIP())
		if err != nil {
			log.Printf("WARN: geolocation lookup failed for session %s: %v", session.ID, err)
		} else if location != nil {
			session.City = &location.City
			session.State = &location.State
			session.Country = &location.Country
		}
	}

	if err := s.CreateSession(session); err != nil {
		log.Printf("ERROR: CreateHandler - failed to create session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	s.cache.SetSession(session)
	c.JSON(http.StatusOK, session)
}

// GetSessionByID returns the stored session, or nil when absent.
func (s *SessionService) GetSessionByID(sessionID string) (*models.Session, error) {
	query := `SELECT id, first_page_url, current_page_url, referrer, city, state, country, browser, user_agent, first_landed_at
	          FROM sessions
	          WHERE id = ?
	          LIMIT 1`

	var session models.Session
	var city, state, country sql.NullString

	err := s.db.QueryRow(query, sessionID).Scan(
		&session.ID,
		&session.FirstPageURL,
		&session.CurrentPageURL,
		&session.Referrer,
		&city,
		&state,
		&country,
		&session.Browser,
		&session.UserAgent,
		&session.FirstLandedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if city.Valid {
		session.City = &city.String
	}
	if state.Valid {
		session.State = &state.String
	}
	if country.Valid {
		session.Country = &country.String
	}

	return &session, nil
}

// CreateSession inserts a new session row.
func (s *SessionService) CreateSession(session *models.Session) error {
	query := `INSERT INTO sessions (id, first_page_url, current_page_url, referrer, city, state, country, browser, user_agent, first_landed_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.Exec(
		query,
		session.ID,
		session.FirstPageURL,
		session.CurrentPageURL,
		session.Referrer,
		session.City,
		session.State,
		session.Country,
		session.Browser,
		session.UserAgent,
		session.FirstLandedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// SessionExists reports whether a session row exists without scanning it.
func (s *SessionService) SessionExists(sessionID string) (bool, error) {
	query := `SELECT 1 FROM sessions WHERE id = ? LIMIT 1`

	var exists int
	err := s.db.QueryRow(query, sessionID).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check session existence: %w", err)
	}

	return true, nil
}
