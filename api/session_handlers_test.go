package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PeakReachMedia/peakreach-go/cache"
	"github.com/PeakReachMedia/peakreach-go/models"
	"github.com/PeakReachMedia/peakreach-go/utils"
)

const testSessionID = "c9b1f6a2-3e4d-4f5a-8b6c-7d8e9f0a1b2c"

var sessionColumnsTest = []string{
	"id", "first_page_url", "current_page_url", "referrer",
	"city", "state", "country", "browser", "user_agent", "first_landed_at",
}

func newSessionRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock, *SessionService) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gin.SetMode(gin.TestMode)
	svc := NewSessionService(db, cache.NewManager(), nil)

	r := gin.New()
	r.POST("/api/v1/session/validate", svc.ValidateHandler)
	r.POST("/api/v1/session/create", svc.CreateHandler)
	return r, mock, svc
}

func doValidate(r *gin.Engine, sessionID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/validate", nil)
	if sessionID != "" {
		req.Header.Set(SessionIDHeader, sessionID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestValidateRequiresHeader(t *testing.T) {
	r, mock, _ := newSessionRouter(t)

	w := doValidate(r, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Session ID required")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateRejectsMalformedIDWithoutQueryingStorage(t *testing.T) {
	r, mock, _ := newSessionRouter(t)

	for _, id := range []string{"not-a-uuid", "c9b1f6a23e4d4f5a8b6c7d8e9f0a1b2c", "{c9b1f6a2-3e4d-4f5a-8b6c-7d8e9f0a1b2c}"} {
		w := doValidate(r, id)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid session ID format")
	}

	// No expectations were registered: any storage access would fail here.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateUnknownSessionReturnsNotFound(t *testing.T) {
	r, mock, _ := newSessionRouter(t)

	mock.ExpectQuery("SELECT id, first_page_url").
		WithArgs(testSessionID).
		WillReturnError(sql.ErrNoRows)

	w := doValidate(r, testSessionID)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Session not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateIsIdempotentAndCached(t *testing.T) {
	r, mock, _ := newSessionRouter(t)

	landed := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, first_page_url").
		WithArgs(testSessionID).
		WillReturnRows(sqlmock.NewRows(sessionColumnsTest).
			AddRow(testSessionID, "https://peakreach.io/", "https://peakreach.io/work", "Direct",
				"Austin", "Texas", "United States", "Chrome", "Mozilla/5.0", landed))

	first := doValidate(r, testSessionID)
	require.Equal(t, http.StatusOK, first.Code)

	// The second call is served from cache: no second query expectation.
	second := doValidate(r, testSessionID)
	require.Equal(t, http.StatusOK, second.Code)

	assert.JSONEq(t, first.Body.String(), second.Body.String())

	var body struct {
		Valid   bool           `json:"valid"`
		Session models.Session `json:"session"`
	}
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &body))
	assert.True(t, body.Valid)
	assert.Equal(t, testSessionID, body.Session.ID)
	require.NotNil(t, body.Session.City)
	assert.Equal(t, "Austin", *body.Session.City)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSessionPersistsAndReturnsGeneratedID(t *testing.T) {
	r, mock, _ := newSessionRouter(t)

	mock.ExpectExec("INSERT INTO sessions").
		WillReturnResult(sqlmock.NewResult(1, 1))

	payload, _ := json.Marshal(models.CreateSessionRequest{
		FirstPageURL: "https://peakreach.io/",
		Referrer:     "Direct",
		UserAgent:    "Mozilla/5.0 Chrome/120.0",
		Browser:      "Chrome",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/create", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var session models.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	assert.True(t, utils.IsSessionID(session.ID), "generated id must be UUID-shaped")
	assert.Equal(t, "https://peakreach.io/", session.FirstPageURL)
	assert.Equal(t, session.FirstPageURL, session.CurrentPageURL)
	assert.Equal(t, "Chrome", session.Browser)
	assert.False(t, session.FirstLandedAt.IsZero())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSessionRequiresFirstPageURL(t *testing.T) {
	r, mock, _ := newSessionRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/create", bytes.NewReader([]byte(`{"referrer":"Direct"}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSessionDerivesBrowserWhenMissing(t *testing.T) {
	r, mock, _ := newSessionRouter(t)

	mock.ExpectExec("INSERT INTO sessions").
		WillReturnResult(sqlmock.NewResult(1, 1))

	payload := []byte(`{"first_page_url":"https://peakreach.io/","user_agent":"Mozilla/5.0 Chrome/120.0 Safari/537.36 Edg/120.0"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/create", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var session models.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	assert.Equal(t, "Edge", session.Browser)
	assert.NoError(t, mock.ExpectationsWereMet())
}
